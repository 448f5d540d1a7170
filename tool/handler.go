package tool

import (
	"context"
	"encoding/json"
	"strings"
)

// Handler executes a tool with parsed arguments. The returned value must be
// JSON-serializable.
type Handler func(ctx context.Context, args map[string]any) (any, error)

// TypedHandler executes a tool with arguments decoded into T.
type TypedHandler[T any] func(ctx context.Context, args T) (any, error)

// ParseArguments decodes the raw argument text of a function call. Empty,
// malformed or non-object input yields an empty map; it never fails.
func ParseArguments(raw string) map[string]any {
	args := map[string]any{}
	if strings.TrimSpace(raw) == "" {
		return args
	}
	var parsed map[string]any
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil || parsed == nil {
		return args
	}
	return parsed
}

// decodeArgs converts loosely typed arguments into T through JSON.
func decodeArgs[T any](args map[string]any) (T, error) {
	var out T
	if len(args) == 0 {
		return out, nil
	}
	b, err := json.Marshal(args)
	if err != nil {
		return out, err
	}
	err = json.Unmarshal(b, &out)
	return out, err
}
