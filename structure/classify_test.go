package structure

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flatPrices(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestKnockOutOnFourthObservation(t *testing.T) {
	prices := flatPrices(252, 100)
	prices[83] = 105
	path := SimulatedPath(prices)

	sess := NewSession(classicParams())
	sched := sess.SimulatedSchedule(path.LastDay())
	ev := sess.Evaluate(path, sched)

	assert.Equal(t, KnockedOut, ev.Class)
	assert.Equal(t, 84, ev.Duration)
	require.NotNil(t, ev.KnockOut)
	assert.Equal(t, 4, ev.KnockOut.Period)
	assert.Equal(t, KnockedOut, sess.Classify(path, sched))
	assert.Equal(t, 84, sess.Duration(path, KnockedOut, sched))
}

func TestKnockInWithoutKnockOut(t *testing.T) {
	prices := flatPrices(252, 100)
	prices[9] = 60
	path := SimulatedPath(prices)

	sess := NewSession(classicParams())
	sched := sess.SimulatedSchedule(path.LastDay())
	ev := sess.Evaluate(path, sched)

	assert.Equal(t, KnockedInNoKnockOut, ev.Class)
	assert.Equal(t, 252, ev.Duration)
	assert.Nil(t, ev.KnockOut)

	day, ok := sess.KnockInDay(path)
	require.True(t, ok)
	assert.Equal(t, 10, day)
}

func TestNeverBreachedNeverKnockedOut(t *testing.T) {
	p := classicParams()
	p.KnockIn = nd("0.8")
	prices := flatPrices(252, 100)
	for i := 1; i < len(prices); i++ {
		prices[i] = 85 + float64(i%10)
	}
	path := SimulatedPath(prices)

	sess := NewSession(p)
	ev := sess.Evaluate(path, sess.SimulatedSchedule(path.LastDay()))
	assert.Equal(t, NoKnockInNoKnockOut, ev.Class)
	assert.Equal(t, 252, ev.Duration)
}

func TestKnockOutTieIsInclusive(t *testing.T) {
	prices := flatPrices(252, 100)
	prices[20] = 102
	path := SimulatedPath(prices)

	sess := NewSession(classicParams())
	assert.Equal(t, KnockedOut, sess.Classify(path, sess.SimulatedSchedule(252)))
}

func TestKnockInTieIsStrict(t *testing.T) {
	prices := flatPrices(252, 100)
	prices[30] = 70
	path := SimulatedPath(prices)

	sess := NewSession(classicParams())
	_, ok := sess.KnockInDay(path)
	assert.False(t, ok)
	assert.Equal(t, NoKnockInNoKnockOut, sess.Classify(path, sess.SimulatedSchedule(252)))
}

func TestKnockOutTakesPrecedenceOverKnockIn(t *testing.T) {
	prices := flatPrices(252, 100)
	prices[5] = 50
	prices[41] = 110
	path := SimulatedPath(prices)

	sess := NewSession(classicParams())
	ev := sess.Evaluate(path, sess.SimulatedSchedule(252))
	assert.Equal(t, KnockedOut, ev.Class)
	assert.Equal(t, 42, ev.Duration)
}

func TestPricesBetweenObservationsDoNotKnockOut(t *testing.T) {
	prices := flatPrices(252, 100)
	prices[21] = 150
	path := SimulatedPath(prices)

	sess := NewSession(classicParams())
	assert.Equal(t, NoKnockInNoKnockOut, sess.Classify(path, sess.SimulatedSchedule(252)))
}

func TestAutocallIgnoresKnockIn(t *testing.T) {
	p := Params{
		Type:             TypeAutocall,
		KnockIn:          nd("0.7"),
		KnockOut:         dec("1.0"),
		StartObservation: 1,
		Duration:         12,
		Coupons:          Coupons{Guaranteed: nd("0.02")},
	}
	prices := flatPrices(252, 90)
	prices[0] = 100
	prices[100] = 10
	path := SimulatedPath(prices)

	sess := NewSession(p)
	_, ok := sess.KnockInDay(path)
	assert.False(t, ok)
	assert.Equal(t, NoKnockInNoKnockOut, sess.Classify(path, sess.SimulatedSchedule(252)))
}

func TestOpenPathsAreActive(t *testing.T) {
	sess := NewSession(classicParams())

	prices := flatPrices(30, 100)
	open := Path{Prices: prices, Open: true}
	sched := sess.SimulatedSchedule(open.LastDay())
	ev := sess.Evaluate(open, sched)
	assert.Equal(t, ActiveNoKnockIn, ev.Class)
	assert.Equal(t, 29, ev.Duration)
	assert.True(t, ev.Class.IsActive())

	knocked := flatPrices(30, 100)
	knocked[12] = 65
	ev = sess.Evaluate(Path{Prices: knocked, Open: true}, sched)
	assert.Equal(t, ActiveKnockedIn, ev.Class)
	assert.True(t, ev.Class.KnockedIn())
}

func TestNonFinitePricesAreSkipped(t *testing.T) {
	prices := flatPrices(252, 100)
	prices[20] = math.NaN()
	prices[50] = math.Inf(-1)
	path := SimulatedPath(prices)

	sess := NewSession(classicParams())
	assert.Equal(t, NoKnockInNoKnockOut, sess.Classify(path, sess.SimulatedSchedule(252)))
}

func TestExplicitInitialPrice(t *testing.T) {
	prices := flatPrices(252, 100)
	path := SimulatedPath(prices)
	path.Initial = 90

	sess := NewSession(classicParams())
	ev := sess.Evaluate(path, sess.SimulatedSchedule(252))
	assert.Equal(t, KnockedOut, ev.Class)
	assert.Equal(t, 21, ev.Duration)
}

func TestEveryPathGetsExactlyOneClassification(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	sess := NewSession(classicParams())

	paths := make([]Path, 0, 500)
	for i := 0; i < 500; i++ {
		n := 100 + rng.Intn(200)
		prices := make([]float64, n)
		px := 100.0
		for j := range prices {
			prices[j] = px
			px *= math.Exp(rng.NormFloat64() * 0.02)
		}
		paths = append(paths, SimulatedPath(prices))
	}

	known := map[Classification]bool{}
	for _, c := range Classifications {
		known[c] = true
	}

	for _, p := range paths {
		sched := sess.SimulatedSchedule(p.LastDay())
		ev := sess.Evaluate(p, sched)
		require.True(t, known[ev.Class], "unexpected class %q", ev.Class)
		if ev.Class == KnockedOut {
			require.NotNil(t, ev.KnockOut)
			assert.LessOrEqual(t, ev.Duration, p.LastDay())
			assert.Zero(t, ev.Duration%DefaultBlockSize)
		} else {
			assert.Equal(t, p.LastDay(), ev.Duration)
		}
	}

	sum := sess.Aggregate(paths)
	count := 0
	prob := 0.0
	for _, b := range sum.Buckets {
		count += b.Count
		if b.Probability.Valid() {
			prob += float64(b.Probability)
		}
	}
	assert.Equal(t, 500, count)
	assert.InDelta(t, 1.0, prob, 1e-9)
}
