package repository

import (
	"context"
	"errors"
	"time"

	"tasklist/internal/core/domain"
	"tasklist/internal/core/port"
)

func track(ctx context.Context, telemetry port.Telemetry, operation, entity, table string, attrs map[string]interface{}) (context.Context, func(error)) {
	spanAttrs := map[string]interface{}{
		"db.system": "postgresql",
		"db.table":  table,
	}

	for k, v := range attrs {
		spanAttrs[k] = v
	}

	ctx, span := telemetry.StartRepositorySpan(ctx, operation, entity, spanAttrs)
	startTime := time.Now()

	return ctx, func(err error) {
		duration := time.Since(startTime)

		span.SetAttributes(map[string]interface{}{
			"operation.duration_ns": duration.Nanoseconds(),
		})

		if err != nil && !errors.Is(err, domain.ErrTaskNotFound) && !errors.Is(err, domain.ErrUserNotFound) {
			span.SetStatus("error", err.Error())
			span.RecordError(err)
		} else {
			span.SetStatus("ok", "")
		}

		telemetry.RecordRepositoryOperation(ctx, operation, entity, duration, err)
		span.End()
	}
}
