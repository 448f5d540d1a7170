// Package tool maps tool names to handlers for the supervisor loop.
//
// Execution through a [Registry] is total: [Registry.Execute] always yields a
// JSON-serializable value. An unknown name produces the fallback payload
// (by default {"result": true}), and a handler error or panic produces
// {"error": "..."}. The accompanying [Result.Err] tells the caller what
// happened without forcing it to abort.
//
// # Basic Usage
//
//	type quizArgs struct {
//	    Level string `json:"level"`
//	    Topic string `json:"topic"`
//	}
//
//	registry := tool.NewRegistry().Add(
//	    tool.Func(quizSpec, func(ctx context.Context, args quizArgs) (any, error) {
//	        return buildQuiz(args.Level, args.Topic), nil
//	    }),
//	)
//
//	res := registry.Execute(ctx, "miniQuiz", map[string]any{"level": "B1", "topic": "food"})
//
// Specs are returned in registration order so every round of a resolution
// sends the backend an identical tool list.
package tool
