// Package agui streams supervisor resolutions to AG-UI frontends.
//
// AG-UI is an event protocol between agents and user-facing applications.
// A resolution is reported as RUN_STARTED, one TOOL_CALL_START / ARGS / END
// triple and one TOOL_CALL_RESULT per tool the supervisor ran, a text
// message with the final answer, a MESSAGES_SNAPSHOT of the conversation
// and RUN_FINISHED. A failed resolution ends with RUN_ERROR instead.
//
// Tool events are derived from the telemetry breadcrumbs the resolver
// records, so any [telemetry.Channel] attached to a resolver can feed a
// [Mapper]:
//
//	ch := telemetry.NewChannel(0)
//	r := resolver.With(supervisor.WithSink(ch))
//	m := agui.NewMapper(threadID, runID)
//	go func() {
//		for b := range ch.Events() {
//			for _, ev := range m.MapBreadcrumb(b) {
//				sse.Write(ev)
//			}
//		}
//	}()
//
// [Stream] wires all of this together for an HTTP handler.
//
// A Mapper is not safe for concurrent use. Message conversion functions
// are stateless.
package agui
