package main

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/englify/tutorkit/gateway/gatewaytest"
	"github.com/englify/tutorkit/guardrail"
	"github.com/englify/tutorkit/supervisor"
	"github.com/englify/tutorkit/tutor"
)

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func newTestServer(steps ...gatewaytest.Step) *Server {
	gw := gatewaytest.New(steps...)
	return &Server{
		supervisor: &supervisor.Supervisor{
			Resolver: supervisor.New(gw, tutor.Registry(), supervisor.WithLogger(quietLogger)),
			Logger:   quietLogger,
		},
		guardrail:     guardrail.New(guardrail.NewClassifier(gw), guardrail.WithLogger(quietLogger)),
		allowedOrigin: "*",
		logger:        quietLogger,
	}
}

func post(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

const escalationBody = `{
	"history": [{"type": "message", "role": "user", "content": "What should I study next?"}],
	"relevantContextFromLastUserMessage": "wants a study suggestion"
}`

func TestHandleSupervisor(t *testing.T) {
	t.Run("answers", func(t *testing.T) {
		srv := newTestServer(
			gatewaytest.CallTools(gatewaytest.Call("c1", "getProgressSummary", "{}")),
			gatewaytest.Reply("Review the past perfect next."),
		)
		rec := post(t, srv.Routes(), "/api/supervisor", escalationBody)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.JSONEq(t, `{"nextResponse":"Review the past perfect next."}`, rec.Body.String())
	})

	t.Run("generic error on gateway failure", func(t *testing.T) {
		srv := newTestServer(gatewaytest.Fail(errors.New("upstream down")))
		rec := post(t, srv.Routes(), "/api/supervisor", escalationBody)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"error":"`+supervisor.GenericErrorMessage+`"}`, rec.Body.String())
	})

	t.Run("bad body", func(t *testing.T) {
		srv := newTestServer()
		rec := post(t, srv.Routes(), "/api/supervisor", "{not json")
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = post(t, srv.Routes(), "/api/supervisor", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleStream(t *testing.T) {
	t.Run("streams events", func(t *testing.T) {
		srv := newTestServer(gatewaytest.Reply("Try a B1 quiz."))
		rec := post(t, srv.Routes(), "/api/supervisor/stream", escalationBody)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
		body := rec.Body.String()
		assert.Contains(t, body, "event: RUN_STARTED")
		assert.Contains(t, body, "Try a B1 quiz.")
		assert.Contains(t, body, "event: RUN_FINISHED")
	})

	t.Run("accepts ag-ui messages", func(t *testing.T) {
		srv := newTestServer(gatewaytest.Reply("Hello!"))
		rec := post(t, srv.Routes(), "/api/supervisor/stream", `{
			"threadId": "thread-1",
			"runId": "run-1",
			"messages": [{"id": "m1", "role": "user", "content": "hi"}]
		}`)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"threadId":"thread-1"`)
	})

	t.Run("empty input", func(t *testing.T) {
		srv := newTestServer()
		rec := post(t, srv.Routes(), "/api/supervisor/stream", `{}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleGuardrail(t *testing.T) {
	srv := newTestServer(gatewaytest.Step{Response: gatewaytest.JSON(map[string]any{
		"moderationCategory": "OFF_TOPIC",
		"reason":             "not about learning English",
	})})
	rec := post(t, srv.Routes(), "/api/guardrail", `{"text":"best pizza in town?"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		TripwireTriggered bool `json:"tripwireTriggered"`
		OutputInfo        struct {
			ModerationCategory string `json:"moderationCategory"`
			TestText           string `json:"testText"`
		} `json:"outputInfo"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.True(t, got.TripwireTriggered)
	assert.Equal(t, "OFF_TOPIC", got.OutputInfo.ModerationCategory)
	assert.Equal(t, "best pizza in town?", got.OutputInfo.TestText)
}

func TestCORSAndHealth(t *testing.T) {
	srv := newTestServer()
	srv.allowedOrigin = "https://app.englify.example"
	h := srv.Routes()

	req := httptest.NewRequest(http.MethodOptions, "/api/supervisor", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://app.englify.example", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Content-Type, Authorization", rec.Header().Get("Access-Control-Allow-Headers"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/api/supervisor", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
