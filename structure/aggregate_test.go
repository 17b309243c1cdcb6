package structure

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateTerminalStatistics(t *testing.T) {
	p := classicParams()
	p.KnockOut = dec("1.5")
	sess := NewSession(p)

	var paths []Path
	for _, last := range []float64{100, 110, 90} {
		prices := flatPrices(252, 100)
		prices[251] = last
		paths = append(paths, SimulatedPath(prices))
	}

	sum := sess.Aggregate(paths)
	require.Equal(t, 3, sum.Total)
	assert.Equal(t, 3, sum.All.Count)
	assert.InDelta(t, 100, float64(sum.All.MeanLast), 1e-9)
	assert.InDelta(t, 66.667, float64(sum.All.VarianceLast), 1e-3)
	assert.InDelta(t, 110, float64(sum.All.MaxLast), 1e-9)
	assert.InDelta(t, 90, float64(sum.All.MinLast), 1e-9)
	assert.InDelta(t, 252, float64(sum.All.MeanDuration), 1e-9)

	settled := sum.Bucket(NoKnockInNoKnockOut)
	assert.Equal(t, 3, settled.Count)
	assert.InDelta(t, 1.0, float64(settled.Probability), 1e-12)

	ko := sum.Bucket(KnockedOut)
	assert.Equal(t, 0, ko.Count)
	assert.InDelta(t, 0.0, float64(ko.Probability), 1e-12)
	assert.False(t, ko.MeanLast.Valid())
	assert.False(t, ko.VarianceLast.Valid())
}

func TestSummarizeBucketOrder(t *testing.T) {
	sum := Summarize(nil)
	require.Len(t, sum.Buckets, len(Classifications))
	for i, c := range Classifications {
		assert.Equal(t, string(c), sum.Buckets[i].State)
	}
	assert.Equal(t, AllState, sum.All.State)
	assert.False(t, sum.All.Probability.Valid())
}

func TestEmptyStatisticsMarshalAsNull(t *testing.T) {
	raw, err := json.Marshal(Summarize(nil).Bucket(KnockedOut))
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Nil(t, m["mean_last"])
	assert.Nil(t, m["variance_last"])
	assert.Equal(t, float64(0), m["count"])
}

func TestValueJSON(t *testing.T) {
	raw, err := json.Marshal([]Value{1.5, NaN(), Value(math.Inf(1))})
	require.NoError(t, err)
	assert.JSONEq(t, `[1.5, null, null]`, string(raw))

	var back []Value
	require.NoError(t, json.Unmarshal(raw, &back))
	require.Len(t, back, 3)
	assert.Equal(t, Value(1.5), back[0])
	assert.False(t, back[1].Valid())
}

func TestDescribePath(t *testing.T) {
	sess := NewSession(classicParams())
	prices := flatPrices(63, 100)
	prices[10] = 60
	path := SimulatedPath(prices)

	r := sess.Describe(path, sess.SimulatedSchedule(path.LastDay()))
	assert.Equal(t, KnockedInNoKnockOut, r.State)
	assert.Equal(t, 11, r.KnockDay)
	assert.Equal(t, 63, r.Duration)
	assert.InDelta(t, 100, float64(r.Max), 1e-9)
	assert.InDelta(t, 60, float64(r.Min), 1e-9)
}
