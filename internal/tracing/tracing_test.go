package tracing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/englify/tutorkit/internal/config"
)

func TestSetup(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	t.Run("disabled without endpoint", func(t *testing.T) {
		shutdown, err := Setup(context.Background(), config.TracingConfig{})
		require.NoError(t, err)
		assert.NoError(t, shutdown(context.Background()))
		assert.Equal(t, prev, otel.GetTracerProvider())
	})

	t.Run("installs provider", func(t *testing.T) {
		collector := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer collector.Close()

		shutdown, err := Setup(context.Background(), config.TracingConfig{
			Endpoint:    collector.URL + "/v1/traces",
			ServiceName: "tutorkit-test",
		})
		require.NoError(t, err)

		_, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider)
		assert.True(t, ok)
		assert.NoError(t, shutdown(context.Background()))
	})
}
