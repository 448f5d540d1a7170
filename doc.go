// Package tutorkit holds the shared data model for a supervised tutoring
// assistant: a lightweight front-line agent defers decisions to a supervisor
// reasoning process, which may run a sequence of tools before producing one
// final reply, and every agent utterance is screened by a moderation
// guardrail before it reaches the student.
//
// The root package is imported as ai by convention:
//
//	import ai "github.com/englify/tutorkit"
//
// # Conversation items
//
// A resolution is an ordered sequence of [Item] values. Three kinds exist:
//
//   - [Message]: an utterance with a role
//   - [FunctionCall]: a tool invocation the reasoning backend asked for
//   - [FunctionCallOutput]: the serialized result of that invocation
//
// A [FunctionCallOutput] always sits immediately after the [FunctionCall]
// with the same call id. [Items.Validate] checks this.
//
// # Requests and responses
//
// A [Request] carries the model, instructions, items and the fixed tool list.
// Only the items grow between rounds. Every request disables parallel tool
// calls so tool side effects happen one at a time, in the order the backend
// listed them.
//
//	req := ai.NewRequest("gpt-4.1", tutor.Specs(),
//	    ai.NewSystemMessage(instructions),
//	    ai.NewUserMessage("How am I doing this week?"),
//	)
//
// A [Response] exposes [Response.FunctionCalls] and [Response.Text].
//
// # Related packages
//
//   - [github.com/englify/tutorkit/gateway]: reasoning backends
//   - [github.com/englify/tutorkit/supervisor]: the tool-call resolution loop
//   - [github.com/englify/tutorkit/guardrail]: moderation classification
//   - [github.com/englify/tutorkit/tool]: tool registry
//   - [github.com/englify/tutorkit/telemetry]: breadcrumb sinks
package tutorkit
