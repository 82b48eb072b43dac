package calculator

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go-chi-calculator/internal/handlers"
	"go-chi-calculator/internal/observability"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// tracer is the calculator's dedicated OpenTelemetry tracer.
var tracer = otel.Tracer("calculator")

// Path parameter names.
var (
	foldParams   = []string{"operand1", "operand2", "operand3"}
	divideParams = []string{"dividend", "divisor"}
)

// Handler serves the calculator endpoints on top of a Service.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Add handles GET /calculator/add/{operand1}/{operand2}[/{operand3}]
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, OpAdd, foldParams, h.svc.Add)
}

// Subtract handles GET /calculator/subtract/{operand1}/{operand2}[/{operand3}]
func (h *Handler) Subtract(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, OpSubtract, foldParams, h.svc.Subtract)
}

// Multiply handles GET /calculator/multiply/{operand1}/{operand2}[/{operand3}]
func (h *Handler) Multiply(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, OpMultiply, foldParams, h.svc.Multiply)
}

// Divide handles GET /calculator/divide/{dividend}/{divisor}
func (h *Handler) Divide(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, OpDivide, divideParams, func(ctx context.Context, ops Operands) (Result, error) {
		return h.svc.Divide(ctx, ops[0], ops[1])
	})
}

// serve is the shared request pipeline: child span, path parsing, the
// service call, metrics, logging and the response envelope.
func (h *Handler) serve(w http.ResponseWriter, r *http.Request, op Operation, params []string, compute func(context.Context, Operands) (Result, error)) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)
	opName := op.String()

	// --- 1. Custom child span ---
	ctx, span := tracer.Start(ctx, fmt.Sprintf("calculator.%s", opName),
		trace.WithAttributes(
			attribute.String("calculator.operation", opName),
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	// --- 2. Parse path parameters ---
	operands, err := parseOperands(r, params...)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, opName, "invalid operand", err, statusFor(err), w)
		return
	}
	span.SetAttributes(attribute.StringSlice("calculator.operands", operands.Strings()))

	// --- 3. Compute through the cache (timed for histogram) ---
	start := time.Now()
	result, err := compute(ctx, operands)
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0 // ms

	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, opName, "calculation failed", err, statusFor(err), w)
		return
	}

	// --- 4. Record metrics ---
	attrs := metric.WithAttributes(attribute.String("operation", opName))
	opsCounter.Add(ctx, 1, attrs)
	opsHistogram.Record(ctx, elapsed, attrs)
	if d, ok := result.Value(); ok {
		resultGauge.Record(ctx, d.InexactFloat64(), attrs)
	}

	// --- 5. Span event with the result ---
	span.AddEvent("computation.complete", trace.WithAttributes(
		attribute.String("result", result.String()),
		attribute.Float64("duration_ms", elapsed),
	))
	span.SetAttributes(attribute.String("calculator.result", result.String()))
	span.SetStatus(codes.Ok, "")

	// --- 6. Structured log with trace correlation ---
	logger.Info("calculator operation completed",
		zap.String("operation", opName),
		zap.Strings("operands", operands.Strings()),
		zap.Stringer("result", result),
		zap.String("request_id", requestID),
		zap.Float64("duration_ms", elapsed),
	)

	// --- 7. Write JSON envelope ---
	handlers.WriteOK(w, result)
}
