package tracing

import (
	"context"
	"errors"
	"testing"

	. "github.com/onsi/gomega"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func withRecorder(t *testing.T) *tracetest.SpanRecorder {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)

	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
		_ = provider.Shutdown(context.Background())
	})

	return recorder
}

func TestSpanWrapperRecordsError(t *testing.T) {
	RegisterTestingT(t)
	recorder := withRecorder(t)

	boom := errors.New("boom")
	err := HandlerSpanWrapper(context.Background(), "task", "create", 7, func(ctx context.Context) error {
		Expect(GetTraceID(ctx)).NotTo(BeEmpty())
		Expect(GetSpanID(ctx)).NotTo(BeEmpty())
		return boom
	})

	Expect(err).To(MatchError(boom))

	spans := recorder.Ended()
	Expect(spans).To(HaveLen(1))
	Expect(spans[0].Name()).To(Equal("handler.task.create"))
	Expect(spans[0].Status().Code).To(Equal(codes.Error))
}

func TestSpanWrapperSuccess(t *testing.T) {
	RegisterTestingT(t)
	recorder := withRecorder(t)

	err := SpanWrapper(context.Background(), "noop", nil, func(context.Context) error { return nil })

	Expect(err).NotTo(HaveOccurred())
	Expect(recorder.Ended()).To(HaveLen(1))
	Expect(recorder.Ended()[0].Status().Code).To(Equal(codes.Unset))
}

func TestGetTraceIDWithoutSpan(t *testing.T) {
	RegisterTestingT(t)

	Expect(GetTraceID(context.Background())).To(BeEmpty())
	Expect(GetSpanID(context.Background())).To(BeEmpty())
}
