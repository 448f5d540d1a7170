package agui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/ag-ui-protocol/ag-ui/sdks/community/go/pkg/core/events"

	"github.com/englify/tutorkit/supervisor"
	"github.com/englify/tutorkit/telemetry"
)

// ErrStreamingUnsupported is returned by NewWriter when the response
// cannot be flushed.
var ErrStreamingUnsupported = errors.New("agui: streaming not supported")

const breadcrumbBuffer = 256

// Writer writes AG-UI events as server-sent events.
type Writer struct {
	w       io.Writer
	flusher http.Flusher
}

// NewWriter sets the SSE headers on w and returns a Writer for it.
func NewWriter(w http.ResponseWriter) (*Writer, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, ErrStreamingUnsupported
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	return &Writer{w: w, flusher: flusher}, nil
}

// Write sends one event and flushes it.
func (s *Writer) Write(ev events.Event) error {
	data, err := ev.ToJSON()
	if err != nil {
		return fmt.Errorf("serialize event: %w", err)
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", ev.Type(), data); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	s.flusher.Flush()
	return nil
}

// Stream resolves esc with sup and writes the run to w as it happens.
// Tool events are written while the resolution is in progress; the answer,
// a snapshot of the conversation and RUN_FINISHED follow once it ends. A
// failed resolution ends with RUN_ERROR carrying only the generic message
// and its error is returned.
func Stream(ctx context.Context, w *Writer, sup *supervisor.Supervisor, esc supervisor.Escalation, m *Mapper) error {
	if err := w.Write(m.RunStarted()); err != nil {
		return err
	}

	req, err := sup.BuildRequest(esc)
	if err != nil {
		return errors.Join(err, w.Write(m.RunError(supervisor.GenericErrorMessage)))
	}

	ch := telemetry.NewChannel(breadcrumbBuffer)
	resolver := sup.Resolver.With(supervisor.AddSink(ch))

	type outcome struct {
		result *supervisor.Result
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := resolver.Resolve(ctx, req)
		ch.Close()
		done <- outcome{result, err}
	}()

	var writeErr error
	for b := range ch.Events() {
		if writeErr != nil {
			continue
		}
		for _, ev := range m.MapBreadcrumb(b) {
			if writeErr = w.Write(ev); writeErr != nil {
				break
			}
		}
	}
	out := <-done
	if writeErr != nil {
		return writeErr
	}
	if out.err != nil {
		return errors.Join(out.err, w.Write(m.RunError(supervisor.GenericErrorMessage)))
	}

	final := append(m.Text(out.result.Text), m.Snapshot(out.result.Items), m.RunFinished())
	for _, ev := range final {
		if err := w.Write(ev); err != nil {
			return err
		}
	}
	return nil
}
