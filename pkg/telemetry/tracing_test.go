package telemetry

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

func TestTraceContextSurvivesSQSAttributes(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})
	otel.SetTracerProvider(sdktrace.NewTracerProvider())

	ctx, producer := otel.Tracer("test").Start(context.Background(), "publish")
	attrs := InjectTraceContext(ctx)
	producer.End()
	require.Contains(t, attrs, "traceparent")

	msg := types.Message{
		MessageId:         aws.String("m1"),
		Body:              aws.String(`{"requestId":"r1","userId":"u1"}`),
		MessageAttributes: attrs,
	}
	ctx, consumer := StartSpanFromSQSMessage(context.Background(), msg)
	defer consumer.End()

	assert.Equal(t, producer.SpanContext().TraceID(), trace.SpanContextFromContext(ctx).TraceID())
	assert.Equal(t, "u1", GetUserIDFromContext(ctx))
}

func TestUserIDContext(t *testing.T) {
	assert.Empty(t, GetUserIDFromContext(context.Background()))
	assert.Equal(t, "u9", GetUserIDFromContext(WithUserID(context.Background(), "u9")))
}
