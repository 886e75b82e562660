package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"interviewbot/internal/observability/metrics"
)

var llmTracer = otel.Tracer("interviewbot.internal.llm")

// GuardedClient bounds every call with a timeout and records latency.
// A call that outlives the timeout is reported as ErrUnavailable even if the
// provider ignores context cancellation.
type GuardedClient struct {
	inner   Client
	timeout time.Duration
	metrics *metrics.EngineMetrics
	tracer  trace.Tracer
}

func NewGuardedClient(inner Client, timeout time.Duration, m *metrics.EngineMetrics) *GuardedClient {
	if inner == nil {
		inner = Disabled{}
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &GuardedClient{inner: inner, timeout: timeout, metrics: m, tracer: llmTracer}
}

type completion struct {
	text string
	err  error
}

func (c *GuardedClient) Complete(ctx context.Context, req Request) (string, error) {
	ctx, span := c.tracer.Start(ctx, "llm.complete", trace.WithAttributes(
		attribute.String("llm.operation", req.Operation),
		attribute.String("llm.model", req.Model),
	))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	done := make(chan completion, 1)
	go func() {
		text, err := c.inner.Complete(ctx, req)
		done <- completion{text: text, err: err}
	}()

	var res completion
	select {
	case res = <-done:
	case <-ctx.Done():
		res = completion{err: fmt.Errorf("%w: %v", ErrUnavailable, ctx.Err())}
	}

	if res.err != nil && !errors.Is(res.err, ErrUnavailable) && !errors.Is(res.err, ErrMalformed) {
		res.err = fmt.Errorf("%w: %v", ErrUnavailable, res.err)
	}

	status := "ok"
	switch {
	case errors.Is(res.err, ErrMalformed):
		status = "malformed"
	case res.err != nil:
		status = "unavailable"
	}
	c.metrics.ObserveLLMLatency(req.Operation, status, time.Since(start).Seconds())

	if res.err != nil {
		span.RecordError(res.err)
		span.SetStatus(codes.Error, status)
		return "", res.err
	}
	return res.text, nil
}
