package llm

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedEngine struct {
	calls   atomic.Int32
	replies []func(ctx context.Context) (string, error)
}

func (s *scriptedEngine) Invoke(ctx context.Context, prompt string) (string, error) {
	n := int(s.calls.Add(1)) - 1
	if n >= len(s.replies) {
		return "", errors.New("unexpected call")
	}
	return s.replies[n](ctx)
}

func reply(text string) func(context.Context) (string, error) {
	return func(context.Context) (string, error) { return text, nil }
}

func fail(err error) func(context.Context) (string, error) {
	return func(context.Context) (string, error) { return "", err }
}

func TestClassify(t *testing.T) {
	assert.Nil(t, Classify("x", nil))

	err := Classify("openai", context.DeadlineExceeded)
	assert.ErrorIs(t, err, ErrEngineTimeout)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, "openai: reasoning engine timeout: context deadline exceeded", err.Error())

	err = Classify("openai", errors.New("http status 502"))
	assert.ErrorIs(t, err, ErrEngineUnavailable)
	assert.NotErrorIs(t, err, ErrEngineTimeout)

	already := Timeout("gemini", nil)
	assert.Same(t, already, Classify("other", already))
	assert.Equal(t, "gemini: reasoning engine timeout", already.Error())
}

func TestRetrySucceedsAfterOneFailure(t *testing.T) {
	base := &scriptedEngine{replies: []func(context.Context) (string, error){
		fail(errors.New("connection reset by peer")),
		reply("ok"),
	}}
	out, err := WithRetry(base, RetryOptions{Provider: "test"}).Invoke(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.EqualValues(t, 2, base.calls.Load())
}

func TestRetrySurfacesSecondFailure(t *testing.T) {
	base := &scriptedEngine{replies: []func(context.Context) (string, error){
		fail(Unavailable("test", nil)),
		fail(errors.New("still down")),
	}}
	_, err := WithRetry(base, RetryOptions{Provider: "test"}).Invoke(context.Background(), "p")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEngineUnavailable)
	assert.EqualValues(t, 2, base.calls.Load())
}

func TestRetryAttemptTimeout(t *testing.T) {
	block := func(ctx context.Context) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}
	base := &scriptedEngine{replies: []func(context.Context) (string, error){block, block}}
	engine := WithRetry(base, RetryOptions{Provider: "test", AttemptTimeout: 20 * time.Millisecond})

	start := time.Now()
	_, err := engine.Invoke(context.Background(), "p")
	assert.ErrorIs(t, err, ErrEngineTimeout)
	assert.EqualValues(t, 2, base.calls.Load())
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestRetryStopsWhenCallerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	base := &scriptedEngine{replies: []func(context.Context) (string, error){
		func(context.Context) (string, error) {
			cancel()
			return "", errors.New("boom")
		},
	}}
	_, err := WithRetry(base, RetryOptions{Delay: time.Hour}).Invoke(ctx, "p")
	require.Error(t, err)
	assert.EqualValues(t, 1, base.calls.Load())
}

func TestPlaceholderReplies(t *testing.T) {
	ctx := context.Background()
	out, err := Placeholder{}.Invoke(ctx, "You are a Data Extraction Assistant.")
	require.NoError(t, err)
	assert.Equal(t, "{}", out)

	out, err = Placeholder{}.Invoke(ctx, "Analyze the following product for export readiness to Japan:")
	require.NoError(t, err)
	assert.Contains(t, out, `"category_scores"`)

	out, err = Placeholder{}.Invoke(ctx, "user: halo")
	require.NoError(t, err)
	assert.Contains(t, out, "Exporo")
}
