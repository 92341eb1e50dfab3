// Package selector - Best-fit component selection
// Finds the smallest tiled-area catalog component that meets a requirement.
package selector

import (
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"memarea/core/catalog"
	"memarea/core/types"
	"memarea/internal/errors"
)

// Selection is the winning candidate of a Select call
type Selection struct {
	Name      string
	Component types.Component

	// Area is the unscaled tiled area at the requested tiling
	Area decimal.Decimal
}

// Selector picks components. The zero value is not usable; use New.
type Selector struct {
	log *zap.Logger
}

// New creates a selector that writes candidate traces to log at debug level
func New(log *zap.Logger) *Selector {
	if log == nil {
		log = zap.NewNop()
	}
	return &Selector{log: log}
}

// Select walks view in name order. The first qualifying candidate becomes
// the best; a later qualifying candidate replaces it when its area is less
// than or equal to the best, so on an exact tie the greater name wins.
func (s *Selector) Select(view catalog.View, req Requirement, tiling types.Tiling) (Selection, error) {
	if view.Kind() != req.Kind() {
		return Selection{}, errors.Newf(errors.TypeInternal,
			"requirement for %s applied to %s section", req.Kind(), view.Kind())
	}

	var best Selection
	found := false

	view.Each(func(e catalog.Entry) bool {
		if !req.SatisfiedBy(e.Component) {
			return true
		}
		area := e.Component.Footprint().TiledArea(tiling)
		if !found || area.LessThanOrEqual(best.Area) {
			best = Selection{Name: e.Name, Component: e.Component, Area: area}
			found = true
		}
		return true
	})

	if !found {
		err := errors.Newf(errors.TypeNoSuitableCandidate,
			"no %s in catalog meets %s", req.Kind(), req).
			WithContext("kind", req.Kind().String()).
			WithContext("tiling", tiling.String()).
			WithContext("candidates", view.Len())
		for k, v := range req.Fields() {
			err.WithContext(k, v)
		}
		return Selection{}, err
	}

	s.log.Debug("selected component",
		zap.Stringer("kind", req.Kind()),
		zap.String("name", best.Name),
		zap.Stringer("requirement", req),
		zap.Stringer("tiling", tiling),
		zap.String("area", best.Area.String()),
	)
	return best, nil
}

// Switch selects a switch for one rail voltage
func (s *Selector) Switch(view catalog.View, req SwitchRequirement, tiling types.Tiling) (string, types.Switch, decimal.Decimal, error) {
	sel, err := s.Select(view, req, tiling)
	if err != nil {
		return "", types.Switch{}, decimal.Zero, err
	}
	return sel.Name, sel.Component.(types.Switch), sel.Area, nil
}

// Logic selects a decoder/driver logic block
func (s *Selector) Logic(view catalog.View, req LogicRequirement, tiling types.Tiling) (string, types.LogicBlock, decimal.Decimal, error) {
	sel, err := s.Select(view, req, tiling)
	if err != nil {
		return "", types.LogicBlock{}, decimal.Zero, err
	}
	return sel.Name, sel.Component.(types.LogicBlock), sel.Area, nil
}

// ADC selects a converter
func (s *Selector) ADC(view catalog.View, req ADCRequirement, tiling types.Tiling) (string, types.ADC, decimal.Decimal, error) {
	sel, err := s.Select(view, req, tiling)
	if err != nil {
		return "", types.ADC{}, decimal.Zero, err
	}
	return sel.Name, sel.Component.(types.ADC), sel.Area, nil
}
