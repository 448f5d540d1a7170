// Package supervisor drives a reasoning backend through tool calls until it
// produces a final text answer.
//
// A [Resolver] owns one request at a time. Each round it sends the request
// through a gateway. When the response asks for tools, the calls run one at
// a time in the order the backend listed them. Each call and its output are
// appended to the conversation, and the grown request is sent again. The
// first response without function calls ends the resolution.
//
//	reg := tool.NewRegistry()
//	tutor.Register(reg)
//
//	r := supervisor.New(gateway.New(openai.New(key)), reg,
//		supervisor.WithMaxRounds(8),
//		supervisor.WithSink(telemetry.NewSlog(logger)),
//	)
//	result, err := r.Resolve(ctx, ai.NewRequest("gpt-4.1", reg.Specs(), items...))
//
// # Escalation
//
// A [Supervisor] wraps a resolver behind the getNextResponseFromSupervisor
// tool. A front-line agent calls the tool with its conversation history and
// receives the next message to speak, or a generic error:
//
//	sup := &supervisor.Supervisor{Resolver: r}
//	reply := sup.NextResponse(ctx, supervisor.Escalation{History: history})
//
// # Breadcrumbs
//
// Every tool call is recorded to the configured telemetry sink before and
// after execution, titled "[supervisorAgent] function call: NAME" and
// "[supervisorAgent] function call result: NAME". A tool that fails also
// produces "[supervisorAgent] function call error: NAME".
package supervisor
