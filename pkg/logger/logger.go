package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const lokiPushPath = "/loki/api/v1/push"

// LokiLogger logs through zap with trace correlation and, when a Loki URL is
// configured, mirrors entries to Loki's push API.
type LokiLogger struct {
	Logger      *otelzap.Logger
	ServiceName string
	lokiURL     string
	httpClient  *http.Client
}

type LokiLogEntry struct {
	Streams []LokiStream `json:"streams"`
}

type LokiStream struct {
	Stream map[string]string `json:"stream"`
	Values [][]string        `json:"values"`
}

func NewLokiLogger(serviceName, lokiURL string) (*LokiLogger, error) {
	config := zap.NewProductionConfig()
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.TimeKey = "timestamp"

	zapLogger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create zap logger: %w", err)
	}

	return wrap(zapLogger, serviceName, lokiURL), nil
}

// NewNop discards everything. Handy in tests.
func NewNop() *LokiLogger {
	return wrap(zap.NewNop(), "test", "")
}

func wrap(zapLogger *zap.Logger, serviceName, lokiURL string) *LokiLogger {
	l := &LokiLogger{
		Logger:      otelzap.New(zapLogger.With(zap.String("service", serviceName))),
		ServiceName: serviceName,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}

	if lokiURL != "" {
		l.lokiURL = strings.TrimRight(lokiURL, "/") + lokiPushPath
	}

	return l
}

// Zap returns the plain zap logger for components that take one.
func (l *LokiLogger) Zap() *zap.Logger {
	return l.Logger.Logger
}

func (l *LokiLogger) Sync() error {
	return l.Logger.Sync()
}

func (l *LokiLogger) InfoWithTrace(ctx context.Context, msg string, fields ...zap.Field) {
	l.logWithTrace(ctx, zapcore.InfoLevel, msg, fields...)
}

func (l *LokiLogger) WarnWithTrace(ctx context.Context, msg string, fields ...zap.Field) {
	l.logWithTrace(ctx, zapcore.WarnLevel, msg, fields...)
}

func (l *LokiLogger) ErrorWithTrace(ctx context.Context, msg string, fields ...zap.Field) {
	l.logWithTrace(ctx, zapcore.ErrorLevel, msg, fields...)
}

func (l *LokiLogger) logWithTrace(ctx context.Context, level zapcore.Level, msg string, fields ...zap.Field) {
	switch level {
	case zapcore.ErrorLevel:
		l.Logger.Ctx(ctx).Error(msg, fields...)
	case zapcore.WarnLevel:
		l.Logger.Ctx(ctx).Warn(msg, fields...)
	default:
		l.Logger.Ctx(ctx).Info(msg, fields...)
	}

	if l.lokiURL != "" {
		entry := l.buildEntry(ctx, level, msg, fields)
		go l.push(entry)
	}
}

func (l *LokiLogger) buildEntry(ctx context.Context, level zapcore.Level, msg string, fields []zap.Field) LokiLogEntry {
	enc := zapcore.NewMapObjectEncoder()

	for _, field := range fields {
		field.AddTo(enc)
	}

	line := enc.Fields
	line["timestamp"] = time.Now().UTC().Format(time.RFC3339Nano)
	line["level"] = level.String()
	line["message"] = msg
	line["service"] = l.ServiceName

	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		line["trace_id"] = span.SpanContext().TraceID().String()
		line["span_id"] = span.SpanContext().SpanID().String()
	}

	body, err := json.Marshal(line)
	if err != nil {
		body = []byte(strconv.Quote(msg))
	}

	return LokiLogEntry{
		Streams: []LokiStream{
			{
				Stream: map[string]string{
					"service": l.ServiceName,
					"level":   level.String(),
				},
				Values: [][]string{
					{strconv.FormatInt(time.Now().UnixNano(), 10), string(body)},
				},
			},
		},
	}
}

func (l *LokiLogger) push(entry LokiLogEntry) {
	body, err := json.Marshal(entry)
	if err != nil {
		return
	}

	req, err := http.NewRequest(http.MethodPost, l.lokiURL, bytes.NewReader(body))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return
	}
	defer resp.Body.Close()

	_, _ = io.Copy(io.Discard, resp.Body)
}
