package structure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistributeGroupsEqualBarriers(t *testing.T) {
	p := Params{
		Type:             TypeStepDown,
		KnockIn:          nd("0.7"),
		KnockOut:         dec("1.05"),
		StepDown:         nd("0.01"),
		StepDownStart:    3,
		StartObservation: 1,
		Duration:         4,
	}
	sess := NewSession(p)
	sched := sess.SimulatedSchedule(84)

	var paths []Path
	for _, idx := range []int{20, 41, 41, 62} {
		prices := flatPrices(84, 100)
		prices[idx] = 120
		paths = append(paths, SimulatedPath(prices))
	}
	flat := flatPrices(84, 80)
	flat[0] = 100
	paths = append(paths, SimulatedPath(flat))

	evals := make([]Evaluation, 0, len(paths))
	for _, path := range paths {
		evals = append(evals, sess.Evaluate(path, sched))
	}

	d := Distribute(sched, evals)
	require.Len(t, d.Points, 4)
	counts := []int{}
	for _, pt := range d.Points {
		counts = append(counts, pt.Count)
	}
	assert.Equal(t, []int{1, 2, 1, 0}, counts)

	require.Len(t, d.Groups, 3)
	assert.True(t, d.Groups[0].Barrier.Equal(dec("1.05")))
	assert.Equal(t, 3, d.Groups[0].Count)
	assert.Equal(t, 1, d.Groups[1].Count)
	assert.Equal(t, 0, d.Groups[2].Count)
}
