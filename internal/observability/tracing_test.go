package observability_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"gatekeeper/internal/observability"
)

type capturingPublisher struct {
	messages []*message.Message
}

func (p *capturingPublisher) Publish(_ string, messages ...*message.Message) error {
	p.messages = append(p.messages, messages...)
	return nil
}

func (p *capturingPublisher) Close() error {
	return nil
}

func TestTracePropagatesThroughMessages(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := tracesdk.NewTracerProvider(tracesdk.WithSpanProcessor(recorder))
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	ctx, parent := tp.Tracer("test").Start(context.Background(), "redeem")

	msg := message.NewMessage("1", []byte("{}"))
	msg.SetContext(ctx)

	captured := &capturingPublisher{}
	err := observability.PublisherWithTracing{Publisher: captured}.Publish("events", msg)
	require.NoError(t, err)
	parent.End()

	require.Len(t, captured.messages, 1)
	assert.NotEmpty(t, captured.messages[0].Metadata.Get("traceparent"))

	received := message.NewMessage("1", []byte("{}"))
	received.Metadata = captured.messages[0].Metadata

	var handlerSpan trace.SpanContext
	handler := observability.TracingMiddleware(func(msg *message.Message) ([]*message.Message, error) {
		handlerSpan = trace.SpanContextFromContext(msg.Context())
		return nil, errors.New("handler failed")
	})

	_, err = handler(received)
	require.Error(t, err)

	assert.Equal(t, parent.SpanContext().TraceID(), handlerSpan.TraceID())
	assert.NotEqual(t, parent.SpanContext().SpanID(), handlerSpan.SpanID())
	assert.Len(t, recorder.Ended(), 2)
}
