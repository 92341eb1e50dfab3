package configfile

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/zclconf/go-cty/cty"

	"memarea/core/types"
	"memarea/internal/errors"
)

// MaxSweepPoints bounds the number of configurations one sweep may produce
const MaxSweepPoints = 10000

// Range returns from, from+step, ... up to and including to
func Range(from, to, step decimal.Decimal) ([]decimal.Decimal, error) {
	if !step.IsPositive() {
		return nil, errors.Newf(errors.TypeInput, "sweep step must be positive, got %s", step)
	}
	if to.LessThan(from) {
		return nil, errors.Newf(errors.TypeInput, "sweep range is empty: %s > %s", from, to)
	}
	steps := to.Sub(from).Div(step).Floor()
	if steps.GreaterThanOrEqual(decimal.NewFromInt(MaxSweepPoints)) {
		return nil, errors.Newf(errors.TypeInput, "sweep has %s points, limit is %d", steps.Add(decimal.NewFromInt(1)), MaxSweepPoints)
	}
	n := steps.IntPart() + 1

	values := make([]decimal.Decimal, 0, n)
	for i := int64(0); i < n; i++ {
		values = append(values, from.Add(step.Mul(decimal.NewFromInt(i))))
	}
	return values, nil
}

// Sweep loads the HCL template at path once per value with var.<param> bound
// to it. Each configuration's name is suffixed with "[param=value]".
func (l *Loader) Sweep(path, param string, values []decimal.Decimal) ([]*types.Configuration, error) {
	if FormatFromPath(path) != FormatHCL {
		return nil, errors.Newf(errors.TypeNotSupported, "sweeps need an HCL template, got %s", path)
	}

	configs := make([]*types.Configuration, 0, len(values))
	for _, v := range values {
		num, err := cty.ParseNumberVal(v.String())
		if err != nil {
			return nil, errors.Internal("invalid sweep value "+v.String(), err)
		}
		cfg, err := l.WithVariables(map[string]cty.Value{param: num}).Load(path)
		if err != nil {
			return nil, err
		}
		cfg.Name = fmt.Sprintf("%s[%s=%s]", cfg.Name, param, v)
		configs = append(configs, cfg)
	}
	return configs, nil
}
