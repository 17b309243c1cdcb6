package structure

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type YAMLParams struct {
	Structure struct {
		Type             string   `yaml:"type"`
		KnockIn          *float64 `yaml:"knock_in"`
		KnockOut         float64  `yaml:"knock_out"`
		StartObservation int      `yaml:"start_observation"`
		Duration         int      `yaml:"duration"`
		StepDown         *float64 `yaml:"step_down"`
		StepDownStart    int      `yaml:"step_down_start"`
		ParachuteFinal   *float64 `yaml:"parachute_final"`

		Coupons struct {
			KO          *float64 `yaml:"ko"`
			Dividend    *float64 `yaml:"dividend"`
			KO2         *float64 `yaml:"ko_2"`
			Period2     int      `yaml:"period_2"`
			KO3         *float64 `yaml:"ko_3"`
			Period3     int      `yaml:"period_3"`
			Guaranteed  *float64 `yaml:"guaranteed"`
			LimitedLoss *float64 `yaml:"limited_loss"`
		} `yaml:"coupons"`
	} `yaml:"structure"`
}

func LoadParams(path string) (Params, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Params{}, fmt.Errorf("read params: %w", err)
	}
	return ParseParamsYAML(raw)
}

func ParseParamsYAML(raw []byte) (Params, error) {
	var yp YAMLParams
	if err := yaml.Unmarshal(raw, &yp); err != nil {
		return Params{}, fmt.Errorf("parse yaml: %w", err)
	}
	ys := yp.Structure

	t, err := ParseType(ys.Type)
	if err != nil {
		return Params{}, err
	}

	p := Params{
		Type:             t,
		KnockIn:          nullable(ys.KnockIn),
		KnockOut:         decimal.NewFromFloat(ys.KnockOut),
		StartObservation: ys.StartObservation,
		Duration:         ys.Duration,
		StepDown:         nullable(ys.StepDown),
		StepDownStart:    ys.StepDownStart,
		ParachuteFinal:   nullable(ys.ParachuteFinal),
		Coupons: Coupons{
			KO:          nullable(ys.Coupons.KO),
			Dividend:    nullable(ys.Coupons.Dividend),
			KO2:         nullable(ys.Coupons.KO2),
			Period2:     ys.Coupons.Period2,
			KO3:         nullable(ys.Coupons.KO3),
			Period3:     ys.Coupons.Period3,
			Guaranteed:  nullable(ys.Coupons.Guaranteed),
			LimitedLoss: nullable(ys.Coupons.LimitedLoss),
		},
	}
	if p.Duration <= 0 {
		p.Duration = 12
	}
	if p.StartObservation <= 0 {
		p.StartObservation = 1
	}
	return p, nil
}

// NullableFloat 可选浮点数转为 NullDecimal
func NullableFloat(v float64, ok bool) decimal.NullDecimal {
	if !ok {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(decimal.NewFromFloat(v))
}

func nullable(v *float64) decimal.NullDecimal {
	if v == nil {
		return decimal.NullDecimal{}
	}
	return NullableFloat(*v, true)
}
