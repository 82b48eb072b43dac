package calculator

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// countingStore wraps a MemoryStore and counts writes, i.e. how often a
// computation body actually ran to completion.
type countingStore struct {
	*MemoryStore
	sets atomic.Int64
}

func newCountingStore() *countingStore {
	return &countingStore{MemoryStore: NewMemoryStore(0)}
}

func (s *countingStore) Set(ctx context.Context, key string, res Result) error {
	s.sets.Add(1)
	return s.MemoryStore.Set(ctx, key, res)
}

func ops(values ...string) Operands {
	out := make(Operands, len(values))
	for i, v := range values {
		if v == "" {
			out[i] = Absent
			continue
		}
		out[i] = Present(dec(v))
	}
	return out
}

func TestServiceFolds(t *testing.T) {
	svc := NewService(NewMemoryStore(0))
	ctx := context.Background()

	tests := []struct {
		name     string
		call     func(context.Context, Operands) (Result, error)
		operands Operands
		want     string
	}{
		{name: "add two", call: svc.Add, operands: ops("3.5", "4.2"), want: "7.7"},
		{name: "add with absent third", call: svc.Add, operands: ops("3.5", "4.2", ""), want: "7.7"},
		{name: "add three", call: svc.Add, operands: ops("1.5", "2.2", "4"), want: "7.7"},
		{name: "add absent in the middle", call: svc.Add, operands: ops("1", "", "2"), want: "3"},
		{name: "subtract", call: svc.Subtract, operands: ops("10", "2.3"), want: "7.7"},
		{name: "subtract is left fold", call: svc.Subtract, operands: ops("10", "3", "2"), want: "5"},
		{name: "multiply two", call: svc.Multiply, operands: ops("2", "2"), want: "4"},
		{name: "multiply three", call: svc.Multiply, operands: ops("2", "2", "2"), want: "8"},
		{name: "single operand unchanged", call: svc.Subtract, operands: ops("", "-4.25"), want: "-4.25"},
		{name: "no binary float drift", call: svc.Add, operands: ops("0.1", "0.2"), want: "0.3"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res, err := tc.call(ctx, tc.operands)
			require.NoError(t, err)
			assert.True(t, res.Equal(NewResult(dec(tc.want))), "got %s, want %s", res, tc.want)
		})
	}
}

func TestServiceFoldWithoutOperandsIsEmpty(t *testing.T) {
	svc := NewService(NewMemoryStore(0))
	ctx := context.Background()

	for _, call := range []func(context.Context, Operands) (Result, error){svc.Add, svc.Subtract, svc.Multiply} {
		res, err := call(ctx, nil)
		require.NoError(t, err)
		assert.True(t, res.IsEmpty())

		res, err = call(ctx, ops("", "", ""))
		require.NoError(t, err)
		assert.True(t, res.IsEmpty())
	}
}

func TestServiceDivide(t *testing.T) {
	svc := NewService(NewMemoryStore(0))
	ctx := context.Background()

	tests := []struct {
		dividend, divisor string
		want              string
	}{
		{dividend: "14", divisor: "2", want: "7"},
		{dividend: "14", divisor: "4", want: "3"},
		{dividend: "15", divisor: "4", want: "4"},
		{dividend: "-14", divisor: "4", want: "-3"},
		{dividend: "-15", divisor: "4", want: "-4"},
		{dividend: "5", divisor: "-2", want: "-2"},
		{dividend: "10", divisor: "3", want: "3"},
		{dividend: "1", divisor: "-3", want: "0"},
		{dividend: "7.0", divisor: "2", want: "3.5"},
		{dividend: "1.0", divisor: "3", want: "0.3"},
		{dividend: "2.0", divisor: "3", want: "0.7"},
		{dividend: "0.25", divisor: "2", want: "0.12"},
		{dividend: "-0.25", divisor: "2", want: "-0.12"},
		{dividend: "0.27", divisor: "2", want: "0.13"},
		{dividend: "0.29", divisor: "3", want: "0.10"},
		{dividend: "1", divisor: "0.3", want: "3"},
		{dividend: "0", divisor: "5", want: "0"},
	}

	for _, tc := range tests {
		t.Run(tc.dividend+"/"+tc.divisor, func(t *testing.T) {
			res, err := svc.Divide(ctx, Present(dec(tc.dividend)), Present(dec(tc.divisor)))
			require.NoError(t, err)
			assert.True(t, res.Equal(NewResult(dec(tc.want))), "got %s, want %s", res, tc.want)
		})
	}
}

func TestServiceDivideKeepsDividendScale(t *testing.T) {
	svc := NewService(NewMemoryStore(0))

	res, err := svc.Divide(context.Background(), Present(dec("1.00")), Present(dec("4")))
	require.NoError(t, err)

	d, ok := res.Value()
	require.True(t, ok)
	assert.Equal(t, "0.25", d.String())
	assert.EqualValues(t, -2, d.Exponent())
}

func TestServiceDivideErrors(t *testing.T) {
	store := newCountingStore()
	svc := NewService(store)
	ctx := context.Background()

	_, err := svc.Divide(ctx, Present(dec("14")), Present(dec("0")))
	assert.ErrorIs(t, err, ErrDivisionByZero)
	assert.EqualError(t, err, "/ by zero")

	_, err = svc.Divide(ctx, Present(dec("14")), Present(dec("0.00")))
	assert.ErrorIs(t, err, ErrDivisionByZero)

	_, err = svc.Divide(ctx, Absent, Present(dec("2")))
	assert.ErrorIs(t, err, ErrArgumentRequired)
	assert.EqualError(t, err, "Dividend should not be null")

	_, err = svc.Divide(ctx, Present(dec("14")), Absent)
	assert.ErrorIs(t, err, ErrArgumentRequired)
	assert.EqualError(t, err, "Divisor should not be null")

	assert.Zero(t, store.sets.Load(), "failures are never cached")
	assert.Zero(t, store.Len())
}

func TestServiceMemoizesResults(t *testing.T) {
	store := newCountingStore()
	svc := NewService(store)
	ctx := context.Background()

	first, err := svc.Add(ctx, ops("3.5", "4.2", ""))
	require.NoError(t, err)
	second, err := svc.Add(ctx, ops("3.5", "4.2", ""))
	require.NoError(t, err)

	assert.True(t, first.Equal(second))
	assert.EqualValues(t, 1, store.sets.Load())

	// Same values, different shape or order: separate entries.
	_, err = svc.Add(ctx, ops("3.5", "4.2"))
	require.NoError(t, err)
	_, err = svc.Add(ctx, ops("4.2", "3.5", ""))
	require.NoError(t, err)
	_, err = svc.Multiply(ctx, ops("3.5", "4.2", ""))
	require.NoError(t, err)

	assert.EqualValues(t, 4, store.sets.Load())
	assert.Equal(t, 4, store.Len())
}

func TestServiceCachedAddSkipsDelay(t *testing.T) {
	delay := 50 * time.Millisecond
	svc := NewService(NewMemoryStore(0), WithAddDelay(delay))
	ctx := context.Background()

	start := time.Now()
	_, err := svc.Add(ctx, ops("1", "2"))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), delay)

	start = time.Now()
	_, err = svc.Add(ctx, ops("1", "2"))
	require.NoError(t, err)
	assert.Less(t, time.Since(start), delay)
}

func TestServiceDelayOnlyAppliesToAdd(t *testing.T) {
	delay := 200 * time.Millisecond
	svc := NewService(NewMemoryStore(0), WithAddDelay(delay))

	start := time.Now()
	_, err := svc.Multiply(context.Background(), ops("3", "3"))
	require.NoError(t, err)
	assert.Less(t, time.Since(start), delay)
}

func TestServiceConcurrentMissesComputeOnce(t *testing.T) {
	store := newCountingStore()
	svc := NewService(store, WithAddDelay(50*time.Millisecond))
	ctx := context.Background()

	const callers = 16
	var wg sync.WaitGroup
	results := make([]Result, callers)
	errs := make([]error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.Add(ctx, ops("2", "40"))
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.True(t, results[i].Equal(NewResult(dec("42"))))
	}
	assert.EqualValues(t, 1, store.sets.Load())
}

func TestServiceCanceledCallerStillCachesResult(t *testing.T) {
	store := newCountingStore()
	svc := NewService(store, WithAddDelay(50*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Add(ctx, ops("5", "5"))
	assert.ErrorIs(t, err, context.Canceled)

	assert.Eventually(t, func() bool { return store.sets.Load() == 1 }, time.Second, 10*time.Millisecond)

	res, err := svc.Add(context.Background(), ops("5", "5"))
	require.NoError(t, err)
	assert.True(t, res.Equal(NewResult(dec("10"))))
	assert.EqualValues(t, 1, store.sets.Load())
}

func TestDivideHalfDownMatchesExactQuotient(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		dividend := genDecimal(t, "dividend")
		divisor := genDecimal(t, "divisor")
		if divisor.IsZero() {
			divisor = decimal.NewFromInt(7)
		}

		got := divideHalfDown(dividend, divisor)
		exact := dividend.DivRound(divisor, 40)
		unit := decimal.New(1, dividend.Exponent())

		// Within half a unit of the exact quotient, and a tie never
		// rounds away from zero.
		diff := exact.Sub(got).Abs().Mul(decimal.NewFromInt(2))
		if diff.GreaterThan(unit) {
			t.Fatalf("%s / %s = %s, exact %s", dividend, divisor, got, exact)
		}
		if diff.Equal(unit) && got.Abs().GreaterThan(exact.Abs()) {
			t.Fatalf("%s / %s = %s rounded a tie away from zero", dividend, divisor, got)
		}
	})
}

func TestFoldProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := genDecimal(t, "a")
		b := genDecimal(t, "b")
		c := genDecimal(t, "c")
		svc := NewService(NewMemoryStore(0))
		ctx := context.Background()

		cases := []struct {
			call func(context.Context, Operands) (Result, error)
			want decimal.Decimal
		}{
			{call: svc.Add, want: a.Add(b).Add(c)},
			{call: svc.Subtract, want: a.Sub(b).Sub(c)},
			{call: svc.Multiply, want: a.Mul(b).Mul(c)},
		}

		for _, tc := range cases {
			full, err := tc.call(ctx, Operands{Present(a), Present(b), Present(c)})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !full.Equal(NewResult(tc.want)) {
				t.Fatalf("got %s, want %s", full, tc.want)
			}

			// Absent markers are filtered wherever they appear.
			padded, err := tc.call(ctx, Operands{Absent, Present(a), Absent, Present(b), Present(c), Absent})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !padded.Equal(full) {
				t.Fatalf("padded %s != %s", padded, full)
			}

			again, err := tc.call(ctx, Operands{Present(a), Present(b), Present(c)})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !again.Equal(full) {
				t.Fatalf("cached %s != %s", again, full)
			}
		}
	})
}

func genDecimal(t *rapid.T, label string) decimal.Decimal {
	value := rapid.Int64Range(-1_000_000, 1_000_000).Draw(t, label+"_value")
	exp := rapid.Int32Range(-4, 2).Draw(t, label+"_exp")
	return decimal.New(value, exp)
}
