package calculator

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Service performs decimal arithmetic and memoizes every successful result
// in its Store. Concurrent misses on the same key share one computation.
type Service struct {
	store    Store
	group    singleflight.Group
	addDelay time.Duration
	logger   *zap.Logger
}

type Option func(*Service)

// WithAddDelay sets the pause taken by every uncached add.
func WithAddDelay(d time.Duration) Option {
	return func(s *Service) { s.addDelay = d }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add sums the present operands left to right.
func (s *Service) Add(ctx context.Context, operands Operands) (Result, error) {
	return s.memoize(ctx, OpAdd, operands, func(context.Context) (Result, error) {
		if s.addDelay > 0 {
			time.Sleep(s.addDelay)
		}
		return fold(operands, decimal.Decimal.Add), nil
	})
}

// Subtract computes o0 - o1 - o2 ... over the present operands.
func (s *Service) Subtract(ctx context.Context, operands Operands) (Result, error) {
	return s.memoize(ctx, OpSubtract, operands, func(context.Context) (Result, error) {
		return fold(operands, decimal.Decimal.Sub), nil
	})
}

// Multiply computes the product of the present operands.
func (s *Service) Multiply(ctx context.Context, operands Operands) (Result, error) {
	return s.memoize(ctx, OpMultiply, operands, func(context.Context) (Result, error) {
		return fold(operands, decimal.Decimal.Mul), nil
	})
}

// Divide returns dividend / divisor rounded HALF_DOWN at the dividend's
// scale. Both arguments are required.
func (s *Service) Divide(ctx context.Context, dividend, divisor decimal.NullDecimal) (Result, error) {
	return s.memoize(ctx, OpDivide, Operands{dividend, divisor}, func(context.Context) (Result, error) {
		if !dividend.Valid {
			return Result{}, &ArgumentError{Argument: "dividend"}
		}
		if !divisor.Valid {
			return Result{}, &ArgumentError{Argument: "divisor"}
		}
		if divisor.Decimal.IsZero() {
			return Result{}, ErrDivisionByZero
		}
		return NewResult(divideHalfDown(dividend.Decimal, divisor.Decimal)), nil
	})
}

// memoize returns the stored result for (op, operands) or runs compute and
// stores what it returns. Errors are passed through and never stored.
func (s *Service) memoize(ctx context.Context, op Operation, operands Operands, compute func(context.Context) (Result, error)) (Result, error) {
	key := cacheKey(op, operands)
	span := trace.SpanFromContext(ctx)
	attrs := metric.WithAttributes(attribute.String("operation", op.String()))

	if res, ok := s.lookup(ctx, key); ok {
		cacheHits.Add(ctx, 1, attrs)
		span.AddEvent("cache.hit", trace.WithAttributes(attribute.String("cache.key", key)))
		return res, nil
	}

	cacheMisses.Add(ctx, 1, attrs)
	span.AddEvent("cache.miss", trace.WithAttributes(attribute.String("cache.key", key)))

	// The shared computation must outlive any single caller.
	flightCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan(key, func() (any, error) {
		// Another flight may have stored the key after our lookup.
		if res, ok := s.lookup(flightCtx, key); ok {
			return res, nil
		}

		res, err := compute(flightCtx)
		if err != nil {
			return Result{}, err
		}

		if err := s.store.Set(flightCtx, key, res); err != nil {
			s.logger.Warn("storing result failed", zap.String("key", key), zap.Error(err))
		}
		s.logger.Debug("result computed", zap.String("key", key), zap.Stringer("result", res))

		return res, nil
	})

	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case out := <-ch:
		if out.Err != nil {
			return Result{}, out.Err
		}
		if out.Shared {
			span.AddEvent("cache.shared")
		}
		return out.Val.(Result), nil
	}
}

// lookup treats a failing store as a miss.
func (s *Service) lookup(ctx context.Context, key string) (Result, bool) {
	res, ok, err := s.store.Get(ctx, key)
	if err != nil {
		s.logger.Warn("reading result cache failed", zap.String("key", key), zap.Error(err))
		return Result{}, false
	}
	return res, ok
}

// fold drops absent operands and left-folds the rest with fn.
// Nothing to fold yields Empty, a single operand is returned as is.
func fold(operands Operands, fn func(decimal.Decimal, decimal.Decimal) decimal.Decimal) Result {
	var (
		acc  decimal.Decimal
		seen bool
	)
	for _, o := range operands {
		if !o.Valid {
			continue
		}
		if !seen {
			acc, seen = o.Decimal, true
			continue
		}
		acc = fn(acc, o.Decimal)
	}

	if !seen {
		return Empty
	}
	return NewResult(acc)
}

// divideHalfDown divides at the scale of dividend, rounding ties toward
// zero. divisor must not be zero.
func divideHalfDown(dividend, divisor decimal.Decimal) decimal.Decimal {
	exp := dividend.Exponent()

	// q is truncated toward zero and r carries the sign of the dividend.
	q, r := dividend.QuoRem(divisor, -exp)
	if r.IsZero() {
		return q
	}

	unit := decimal.New(1, exp)
	twiceRem := r.Abs().Mul(decimal.NewFromInt(2))
	if twiceRem.Cmp(divisor.Abs().Mul(unit)) <= 0 {
		return q
	}

	if dividend.Sign()*divisor.Sign() < 0 {
		return q.Sub(unit)
	}
	return q.Add(unit)
}
