package gateway

import (
	"context"
	"errors"
	"testing"
	"time"

	ai "github.com/englify/tutorkit"
	"github.com/englify/tutorkit/gateway/gatewaytest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuardedSend(t *testing.T) {
	t.Run("passes responses through and forces sequential tools", func(t *testing.T) {
		fake := gatewaytest.New(gatewaytest.Reply("Done."))
		gw := New(fake, WithoutRetry())

		req := ai.NewRequest("gpt-4.1", nil, ai.NewUserMessage("hi"))
		req.ParallelToolCalls = true

		resp, err := gw.Send(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, "Done.", resp.Text())
		assert.False(t, fake.Requests()[0].ParallelToolCalls)
	})

	t.Run("collapses failures into the sentinel", func(t *testing.T) {
		cause := ai.NewPermanentError(ai.ProviderOpenAI, "unauthorized", 401, nil)
		gw := New(gatewaytest.New(gatewaytest.Fail(cause)), WithProvider(ai.ProviderOpenAI))

		_, err := gw.Send(context.Background(), ai.NewRequest("m", nil))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnavailable)
		assert.ErrorIs(t, err, cause)

		var gwErr *Error
		require.ErrorAs(t, err, &gwErr)
		assert.Equal(t, ai.ProviderOpenAI, gwErr.Provider)
		assert.Equal(t, 1, gwErr.Attempts)
	})

	t.Run("retries transient failures", func(t *testing.T) {
		busy := ai.NewTransientError(ai.ProviderOpenAI, "overloaded", 503, nil)
		fake := gatewaytest.New(gatewaytest.Fail(busy), gatewaytest.Reply("ok"))
		gw := New(fake, WithRetry(3, time.Millisecond, time.Millisecond))

		resp, err := gw.Send(context.Background(), ai.NewRequest("m", nil))
		require.NoError(t, err)
		assert.Equal(t, "ok", resp.Text())
		assert.Equal(t, 2, fake.Calls())
	})

	t.Run("recovers provider panics", func(t *testing.T) {
		gw := New(Func(func(context.Context, *ai.Request) (*ai.Response, error) {
			panic("sdk bug")
		}), WithoutRetry())

		_, err := gw.Send(context.Background(), ai.NewRequest("m", nil))
		assert.ErrorIs(t, err, ErrUnavailable)
		var p *PanicError
		assert.ErrorAs(t, err, &p)
	})

	t.Run("nil response is a failure", func(t *testing.T) {
		gw := New(Func(func(context.Context, *ai.Request) (*ai.Response, error) {
			return nil, nil
		}), WithoutRetry())

		_, err := gw.Send(context.Background(), ai.NewRequest("m", nil))
		assert.ErrorIs(t, err, ErrUnavailable)
	})

	t.Run("applies the per-call deadline", func(t *testing.T) {
		gw := New(Func(func(ctx context.Context, _ *ai.Request) (*ai.Response, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		}), WithTimeout(5*time.Millisecond), WithoutRetry())

		_, err := gw.Send(context.Background(), ai.NewRequest("m", nil))
		assert.ErrorIs(t, err, ErrUnavailable)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("rejects nil requests", func(t *testing.T) {
		_, err := New(gatewaytest.New()).Send(context.Background(), nil)
		assert.ErrorIs(t, err, ErrUnavailable)
	})
}

func TestErrorMessage(t *testing.T) {
	err := &Error{Provider: ai.ProviderGoogle, Err: errors.New("quota")}
	assert.Equal(t, "google: reasoning backend unavailable: quota", err.Error())
}
