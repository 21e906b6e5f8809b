package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"tasklist/internal/core/port"
)

const tracerName = "tasklist"

// OTELProbe implements port.Telemetry on top of the global OpenTelemetry
// tracer provider.
type OTELProbe struct {
	logger *zap.Logger
}

func NewOTELProbe(logger *zap.Logger) port.Telemetry {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &OTELProbe{
		logger: logger,
	}
}

type OTelSpan struct {
	span trace.Span
}

func (s *OTelSpan) End() {
	s.span.End()
}

func (s *OTelSpan) SetAttributes(attrs map[string]interface{}) {
	s.span.SetAttributes(toAttributes(attrs)...)
}

func (s *OTelSpan) SetStatus(code string, message string) {
	var statusCode codes.Code

	switch code {
	case "ok":
		statusCode = codes.Ok
	case "error":
		statusCode = codes.Error
	default:
		statusCode = codes.Unset
	}

	s.span.SetStatus(statusCode, message)
}

func (s *OTelSpan) RecordError(err error) {
	s.span.RecordError(err)
}

func (p *OTELProbe) StartRepositorySpan(ctx context.Context, operation string, entity string, attrs map[string]interface{}) (context.Context, port.Span) {
	spanName := fmt.Sprintf("repository.%s.%s", entity, operation)

	standardAttrs := []attribute.KeyValue{
		attribute.String("repository.entity", entity),
		attribute.String("repository.operation", operation),
		attribute.String("component", "repository"),
	}

	standardAttrs = append(standardAttrs, toAttributes(attrs)...)

	ctx, span := otel.Tracer(tracerName).Start(ctx, spanName, trace.WithAttributes(standardAttrs...))
	return ctx, &OTelSpan{span: span}
}

func (p *OTELProbe) StartServiceSpan(ctx context.Context, service string, operation string, userID int, attrs map[string]interface{}) (context.Context, port.Span) {
	spanName := fmt.Sprintf("service.%s.%s", service, operation)

	standardAttrs := []attribute.KeyValue{
		attribute.String("service.name", service),
		attribute.String("service.operation", operation),
		attribute.Int("user.id", userID),
		attribute.String("component", "service"),
	}

	standardAttrs = append(standardAttrs, toAttributes(attrs)...)

	ctx, span := otel.Tracer(tracerName).Start(ctx, spanName, trace.WithAttributes(standardAttrs...))
	return ctx, &OTelSpan{span: span}
}

func (p *OTELProbe) RecordRepositoryOperation(ctx context.Context, operation string, entity string, duration time.Duration, err error) {
	span := trace.SpanFromContext(ctx)

	span.SetAttributes(
		attribute.String("operation", operation),
		attribute.String("entity", entity),
		attribute.Int64("duration_ns", duration.Nanoseconds()),
		attribute.Bool("has_error", err != nil),
	)

	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)

		p.logger.Error("Repository operation failed",
			zap.String("operation", operation),
			zap.String("entity", entity),
			zap.Duration("duration", duration),
			zap.Error(err))

		return
	}

	span.SetStatus(codes.Ok, "")
}

func (p *OTELProbe) RecordRepositoryQuery(ctx context.Context, operation string, entity string, query string, args []interface{}) {
	// argument values may carry user data, only their types are logged
	argTypes := make([]string, len(args))
	for i := range args {
		argTypes[i] = fmt.Sprintf("%T", args[i])
	}

	p.logger.Debug("Executing repository query",
		zap.String("operation", operation),
		zap.String("entity", entity),
		zap.String("query", query),
		zap.Strings("args_types", argTypes))
}

func (p *OTELProbe) RecordServiceOperation(ctx context.Context, service string, operation string, userID int, duration time.Duration, err error) {
	span := trace.SpanFromContext(ctx)

	span.SetAttributes(
		attribute.String("service", service),
		attribute.String("operation", operation),
		attribute.Int("user_id", userID),
		attribute.Int64("duration_ns", duration.Nanoseconds()),
		attribute.Bool("has_error", err != nil),
	)

	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)

		p.logger.Warn("Service operation failed",
			zap.String("service", service),
			zap.String("operation", operation),
			zap.Int("user_id", userID),
			zap.Duration("duration", duration),
			zap.Error(err))

		return
	}

	span.SetStatus(codes.Ok, "")
}

func (p *OTELProbe) RecordBusinessEvent(ctx context.Context, event string, entity string, entityID string, userID int, metadata map[string]interface{}) {
	span := trace.SpanFromContext(ctx)

	attrs := []attribute.KeyValue{
		attribute.String("entity", entity),
		attribute.String("entity_id", entityID),
		attribute.Int("user_id", userID),
	}

	span.AddEvent(fmt.Sprintf("%s.%s", entity, event), trace.WithAttributes(append(attrs, toAttributes(metadata)...)...))

	p.logger.Info("Business event recorded",
		zap.String("event", event),
		zap.String("entity", entity),
		zap.String("entity_id", entityID),
		zap.Int("user_id", userID),
		zap.Any("metadata", metadata))
}

func (p *OTELProbe) RecordError(ctx context.Context, operation string, err error, metadata map[string]interface{}) {
	p.logger.Error("Operation error recorded",
		zap.String("operation", operation),
		zap.Error(err),
		zap.Any("metadata", metadata))
}

func toAttributes(attrs map[string]interface{}) []attribute.KeyValue {
	result := make([]attribute.KeyValue, 0, len(attrs))

	for key, value := range attrs {
		switch v := value.(type) {
		case string:
			result = append(result, attribute.String(key, v))
		case int:
			result = append(result, attribute.Int(key, v))
		case int64:
			result = append(result, attribute.Int64(key, v))
		case float64:
			result = append(result, attribute.Float64(key, v))
		case bool:
			result = append(result, attribute.Bool(key, v))
		default:
			result = append(result, attribute.String(key, fmt.Sprintf("%v", v)))
		}
	}

	return result
}
