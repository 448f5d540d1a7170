package agui

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ai "github.com/englify/tutorkit"
	"github.com/englify/tutorkit/gateway/gatewaytest"
	"github.com/englify/tutorkit/supervisor"
	"github.com/englify/tutorkit/tool"
)

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func sseTypes(t *testing.T, body string) []string {
	t.Helper()
	var out []string
	sc := bufio.NewScanner(strings.NewReader(body))
	for sc.Scan() {
		if name, ok := strings.CutPrefix(sc.Text(), "event: "); ok {
			out = append(out, name)
		}
	}
	require.NoError(t, sc.Err())
	return out
}

func newSupervisor(gw *gatewaytest.Gateway) *supervisor.Supervisor {
	reg := tool.NewRegistry().Add(tool.WithHandler(ai.ToolSpec{Name: "getLearnerProfile"},
		func(context.Context, map[string]any) (any, error) {
			return map[string]any{"level": "B1"}, nil
		}))
	return &supervisor.Supervisor{
		Resolver: supervisor.New(gw, reg, supervisor.WithLogger(quietLogger)),
		Logger:   quietLogger,
	}
}

type noFlush struct {
	http.ResponseWriter
}

func TestNewWriter(t *testing.T) {
	rec := httptest.NewRecorder()
	_, err := NewWriter(rec)
	require.NoError(t, err)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))

	_, err = NewWriter(noFlush{rec})
	assert.ErrorIs(t, err, ErrStreamingUnsupported)
}

func TestStream(t *testing.T) {
	esc := supervisor.Escalation{
		History:         ai.Items{ai.NewUserMessage("What level am I?")},
		RelevantContext: "asks about level",
	}

	t.Run("tool round then answer", func(t *testing.T) {
		gw := gatewaytest.New(
			gatewaytest.CallTools(gatewaytest.Call("c1", "getLearnerProfile", "{}")),
			gatewaytest.Reply("You are at B1."),
		)
		rec := httptest.NewRecorder()
		w, err := NewWriter(rec)
		require.NoError(t, err)

		err = Stream(context.Background(), w, newSupervisor(gw), esc, NewMapper("t1", "r1"))
		require.NoError(t, err)

		assert.Equal(t, []string{
			"RUN_STARTED",
			"TOOL_CALL_START",
			"TOOL_CALL_ARGS",
			"TOOL_CALL_END",
			"TOOL_CALL_RESULT",
			"TEXT_MESSAGE_START",
			"TEXT_MESSAGE_CONTENT",
			"TEXT_MESSAGE_END",
			"MESSAGES_SNAPSHOT",
			"RUN_FINISHED",
		}, sseTypes(t, rec.Body.String()))
		assert.Contains(t, rec.Body.String(), "You are at B1.")
		assert.Contains(t, rec.Body.String(), `"threadId":"t1"`)
	})

	t.Run("gateway failure", func(t *testing.T) {
		gw := gatewaytest.New(gatewaytest.Fail(errors.New("upstream 503")))
		rec := httptest.NewRecorder()
		w, err := NewWriter(rec)
		require.NoError(t, err)

		err = Stream(context.Background(), w, newSupervisor(gw), esc, NewMapper("", ""))
		assert.ErrorIs(t, err, supervisor.ErrGateway)

		assert.Equal(t, []string{"RUN_STARTED", "RUN_ERROR"}, sseTypes(t, rec.Body.String()))
		assert.Contains(t, rec.Body.String(), supervisor.GenericErrorMessage)
		assert.NotContains(t, rec.Body.String(), "upstream 503")
	})
}
