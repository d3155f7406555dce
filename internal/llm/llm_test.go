package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestStripCitations(t *testing.T) {
	got := StripCitations("  The tank holds 300 gallons【4:2†source】 (p.12)【7:0†manual.pdf】 ")
	assert.Equal(t, "The tank holds 300 gallons (p.12)", got)
}

func TestMockProviderReplaysInOrder(t *testing.T) {
	mock := NewMockProvider(MockResponse{Text: "first"}, MockResponse{Text: "second【1:1†src】"})

	resp, err := mock.Complete(context.Background(), Request{Prompt: "a"})
	require.NoError(t, err)
	assert.Equal(t, "first", resp.Text)

	resp, err = mock.Complete(context.Background(), Request{Prompt: "b"})
	require.NoError(t, err)
	assert.Equal(t, "second", resp.Text)

	_, err = mock.Complete(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	require.ErrorAs(t, err, &unavail)
	assert.Equal(t, 3, mock.CallCount())
	assert.Equal(t, "b", mock.Calls[1].Prompt)
}

func TestMockProviderRepeatsLastResponse(t *testing.T) {
	mock := NewMockProvider(MockResponse{Text: "again"})
	mock.Repeat = true
	for i := 0; i < 3; i++ {
		resp, err := mock.Complete(context.Background(), Request{})
		require.NoError(t, err)
		assert.Equal(t, "again", resp.Text)
	}
}

func newTestRetry(p Provider, attempts int) (*RetryProvider, *[]time.Duration) {
	r := WithRetry(p, RetryConfig{MaxAttempts: attempts, InitialWait: time.Second, MaxWait: 4 * time.Second, Multiplier: 2})
	var waits []time.Duration
	r.sleep = func(_ context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}
	return r, &waits
}

func TestRetryRecoversFromTransientErrors(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("502")}},
		MockResponse{Err: &ErrRateLimit{RetryAfter: 3 * time.Second}},
		MockResponse{Text: "ok"},
	)
	r, waits := newTestRetry(mock, 3)

	resp, err := r.Complete(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Text)
	require.Len(t, *waits, 2)
	assert.Equal(t, 3*time.Second, (*waits)[1], "rate limit RetryAfter is honoured")
}

func TestRetryStopsOnInvalidResponse(t *testing.T) {
	mock := NewMockProvider(MockResponse{Err: &ErrInvalidResponse{Err: errors.New("empty")}}, MockResponse{Text: "unused"})
	r, _ := newTestRetry(mock, 3)

	_, err := r.Complete(context.Background(), Request{})
	var invalid *ErrInvalidResponse
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, 1, mock.CallCount())
}

func TestRetryGivesUpAfterMaxAttempts(t *testing.T) {
	mock := NewMockProvider()
	r, waits := newTestRetry(mock, 3)

	_, err := r.Complete(context.Background(), Request{})
	require.Error(t, err)
	assert.Equal(t, 3, mock.CallCount())
	assert.Len(t, *waits, 2)
}

func TestLoggingProviderRecordsReplies(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	p := WithLogging(NewMockProvider(MockResponse{Text: "reply"}), zap.New(core))

	_, err := p.Complete(WithPurpose(context.Background(), "quiz-gen"), Request{Prompt: "hi"})
	require.NoError(t, err)
	_, err = p.Complete(context.Background(), Request{Prompt: "again"})
	require.Error(t, err)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "question source replied", entries[0].Message)
	assert.Equal(t, "quiz-gen", entries[0].ContextMap()["purpose"])
	assert.Equal(t, "reply", entries[0].ContextMap()["reply"])
	assert.Equal(t, "question source request failed", entries[1].Message)
}

func TestTimeoutProviderBoundsCalls(t *testing.T) {
	slow := providerFunc(func(ctx context.Context, _ Request) (*Response, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	_, err := WithTimeout(slow, 10*time.Millisecond).Complete(context.Background(), Request{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"openai without key", Config{Provider: "openai"}, true},
		{"openai with key", Config{Provider: "openai", OpenAI: OpenAIConfig{APIKey: "sk"}}, false},
		{"assistant without id", Config{Provider: "assistant", Assistant: AssistantConfig{APIKey: "sk"}}, true},
		{"assistant complete", Config{Provider: "assistant", Assistant: AssistantConfig{APIKey: "sk", AssistantID: "asst_1"}}, false},
		{"anthropic without key", Config{Provider: "anthropic"}, true},
		{"gemini with key", Config{Provider: "gemini", Gemini: GeminiConfig{APIKey: "g"}}, false},
		{"mock", Config{Provider: "mock"}, false},
		{"unknown", Config{Provider: "carrier-pigeon"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			assert.Equal(t, tt.wantErr, err != nil, "Validate() = %v", err)
		})
	}
}

func TestNewProviderMock(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{Provider: "mock"}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "mock", p.ModelID())
}

func TestTruncateKeepsRunes(t *testing.T) {
	assert.Equal(t, "ab...", truncate("abcdef", 2))
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "...", truncate("é", 1))
}

type providerFunc func(ctx context.Context, req Request) (*Response, error)

func (f providerFunc) Complete(ctx context.Context, req Request) (*Response, error) { return f(ctx, req) }
func (f providerFunc) ModelID() string                                             { return "func" }
