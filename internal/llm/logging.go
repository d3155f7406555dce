package llm

import (
	"context"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
)

const maxLoggedReply = 500

// LoggingProvider logs every request and reply.
type LoggingProvider struct {
	inner  Provider
	logger *zap.Logger
}

func WithLogging(p Provider, logger *zap.Logger) *LoggingProvider {
	return &LoggingProvider{inner: p, logger: logger}
}

func (l *LoggingProvider) Complete(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := l.inner.Complete(ctx, req)

	fields := []zap.Field{
		zap.String("model", l.inner.ModelID()),
		zap.String("purpose", PurposeFrom(ctx)),
		zap.Duration("latency", time.Since(start)),
		zap.Int("prompt_chars", len(req.Prompt)),
	}
	if err != nil {
		l.logger.Warn("question source request failed", append(fields, zap.Error(err))...)
		return nil, err
	}
	l.logger.Info("question source replied", append(fields,
		zap.Int("input_tokens", resp.Usage.InputTokens),
		zap.Int("output_tokens", resp.Usage.OutputTokens),
		zap.String("stop_reason", resp.StopReason),
		zap.String("reply", truncate(resp.Text, maxLoggedReply)),
	)...)
	return resp, nil
}

func (l *LoggingProvider) ModelID() string { return l.inner.ModelID() }

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
