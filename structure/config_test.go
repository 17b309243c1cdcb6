package structure

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadParams(t *testing.T) {
	raw := `
structure:
  type: stepdown
  knock_in: 0.75
  knock_out: 1.0
  start_observation: 3
  duration: 24
  step_down: 0.005
  coupons:
    ko: 0.18
    dividend: 0.18
`
	path := filepath.Join(t.TempDir(), "params.yaml")
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	p, err := LoadParams(path)
	require.NoError(t, err)

	assert.Equal(t, TypeStepDown, p.Type)
	assert.True(t, p.KnockIn.Valid)
	assert.True(t, p.KnockIn.Decimal.Equal(dec("0.75")))
	assert.True(t, p.KnockOut.Equal(dec("1")))
	assert.Equal(t, 3, p.StartObservation)
	assert.Equal(t, 24, p.Duration)
	assert.True(t, p.StepDown.Decimal.Equal(dec("0.005")))
	assert.False(t, p.ParachuteFinal.Valid)
	assert.True(t, p.Coupons.KO.Valid)
	assert.NoError(t, p.Validate())
}

func TestParseParamsYAMLDefaults(t *testing.T) {
	p, err := ParseParamsYAML([]byte("structure:\n  knock_in: 0.8\n  knock_out: 1.03\n"))
	require.NoError(t, err)
	assert.Equal(t, TypeClassic, p.Type)
	assert.Equal(t, 12, p.Duration)
	assert.Equal(t, 1, p.StartObservation)
}

func TestParseParamsYAMLRejectsUnknownType(t *testing.T) {
	_, err := ParseParamsYAML([]byte("structure:\n  type: digital\n"))
	assert.Error(t, err)
}
