package graphql

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// LoggerLink logs each operation at debug level and failures at warn.
func LoggerLink(log *slog.Logger) Link {
	if log == nil {
		return nil
	}
	return LinkFunc(func(ctx context.Context, op *Operation, forward NextLink) (*Response, error) {
		start := time.Now()
		res, err := forward(ctx, op)
		attrs := []any{
			"operation", op.Name,
			"kind", string(op.Kind),
			"id", op.ID.String(),
			"duration", time.Since(start),
		}
		switch {
		case err != nil:
			log.WarnContext(ctx, "graphql.failed", append(attrs, "error", err)...)
		case res.Err() != nil:
			log.WarnContext(ctx, "graphql.errors", append(attrs, "error", res.Err())...)
		default:
			log.DebugContext(ctx, "graphql.done", attrs...)
		}
		return res, err
	})
}

const (
	outcomeOK          = "ok"
	outcomeGraphQL     = "graphql_error"
	outcomeServer      = "server_error"
	outcomeTransport   = "transport_error"
	metricsNamespace   = "redwood"
	metricsSubsystem   = "graphql"
	labelOperation     = "operation"
	labelOperationKind = "kind"
	labelOutcome       = "outcome"
)

// MetricsLink counts operations and observes their latency. Registering twice
// on the same registerer reuses the existing collectors.
func MetricsLink(reg prometheus.Registerer) (Link, error) {
	labels := []string{labelOperation, labelOperationKind, labelOutcome}

	total := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: metricsSubsystem,
		Name:      "operations_total",
		Help:      "GraphQL operations by name, kind and outcome.",
	}, labels)
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Subsystem: metricsSubsystem,
		Name:      "operation_duration_seconds",
		Help:      "GraphQL operation latency.",
		Buckets:   prometheus.DefBuckets,
	}, labels)

	var err error
	if total, err = register(reg, total); err != nil {
		return nil, err
	}
	if latency, err = register(reg, latency); err != nil {
		return nil, err
	}

	return LinkFunc(func(ctx context.Context, op *Operation, forward NextLink) (*Response, error) {
		start := time.Now()
		res, err := forward(ctx, op)
		lv := []string{operationLabel(op), string(op.Kind), outcome(res, err)}
		total.WithLabelValues(lv...).Inc()
		latency.WithLabelValues(lv...).Observe(time.Since(start).Seconds())
		return res, err
	}), nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func operationLabel(op *Operation) string {
	if op.Name == "" {
		return "anonymous"
	}
	return op.Name
}

func outcome(res *Response, err error) string {
	var se *ServerError
	switch {
	case errors.As(err, &se):
		return outcomeServer
	case err != nil:
		return outcomeTransport
	case res.Err() != nil:
		return outcomeGraphQL
	default:
		return outcomeOK
	}
}

// TracingLink opens a client span around each operation.
func TracingLink(tracer trace.Tracer) Link {
	if tracer == nil {
		return nil
	}
	return LinkFunc(func(ctx context.Context, op *Operation, forward NextLink) (*Response, error) {
		ctx, span := tracer.Start(ctx, "graphql."+string(op.Kind)+" "+operationLabel(op),
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(
				attribute.String("graphql.operation.name", op.Name),
				attribute.String("graphql.operation.type", string(op.Kind)),
				attribute.String("graphql.operation.id", op.ID.String()),
			),
		)
		defer span.End()

		res, err := forward(ctx, op)
		switch {
		case err != nil:
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		case res.Err() != nil:
			span.SetAttributes(attribute.Int("graphql.errors", len(res.Errors)))
			span.SetStatus(codes.Error, res.Err().Error())
		}
		return res, err
	})
}
