// Package metadata exposes the indicator catalog and validates alert
// definitions at the boundary, before they are stored.
package metadata

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Heightsdesign/stockwatch/internal/indicator"
	"github.com/Heightsdesign/stockwatch/internal/model"
)

var (
	ErrNoConditions      = errors.New("chain has no conditions")
	ErrTooManyConditions = fmt.Errorf("chain exceeds %d conditions", model.MaxChainConditions)
	ErrDuplicatePosition = errors.New("duplicate condition position")
)

// ParamInfo describes one parameter of an indicator for catalog consumers.
type ParamInfo struct {
	Name     string   `json:"name"`
	Type     string   `json:"type"`
	Required bool     `json:"required"`
	Default  any      `json:"default,omitempty"`
	Choices  []string `json:"choices,omitempty"`
}

// IndicatorInfo describes one indicator: identity, output lines and the
// parameter schema clients must satisfy.
type IndicatorInfo struct {
	Name        string      `json:"name"`
	DisplayName string      `json:"display_name"`
	Lines       []string    `json:"lines"`
	Params      []ParamInfo `json:"params"`
}

// Catalog returns every registered indicator, sorted by name.
func Catalog() []IndicatorInfo {
	names := indicator.Names()
	infos := make([]IndicatorInfo, 0, len(names))
	for _, name := range names {
		def, err := indicator.Lookup(name)
		if err != nil {
			continue
		}
		info := IndicatorInfo{
			Name:        def.Name,
			DisplayName: def.DisplayName,
			Lines:       append([]string(nil), def.Lines...),
		}
		for _, p := range def.Params {
			info.Params = append(info.Params, ParamInfo{
				Name:     p.Name,
				Type:     string(p.Type),
				Required: p.Required,
				Default:  p.Default,
				Choices:  append([]string(nil), p.Choices...),
			})
		}
		infos = append(infos, info)
	}
	return infos
}

// ValidateCondition checks one chain condition against the indicator
// registry: names, lines, parameter schemas and operand completeness.
func ValidateCondition(cond model.Condition) error {
	def, err := indicator.Lookup(cond.Indicator)
	if err != nil {
		return err
	}
	if _, err := def.CoerceParams(cond.Params); err != nil {
		return fmt.Errorf("%s: %w", def.Name, err)
	}
	if err := validateLine(def, cond.Line); err != nil {
		return err
	}
	if _, err := model.ParseTimeframe(string(cond.Timeframe)); err != nil {
		return err
	}
	switch cond.Operator {
	case model.OpGreaterThan, model.OpLessThan, model.OpEqualTo:
	default:
		return fmt.Errorf("unknown operator %q", cond.Operator)
	}

	switch cond.ValueType {
	case model.ValueNumber:
		// Any float is acceptable.
	case model.ValuePrice:
		if cond.ValueTimeframe != "" {
			if _, err := model.ParseTimeframe(string(cond.ValueTimeframe)); err != nil {
				return err
			}
		}
	case model.ValueIndicatorLine:
		if cond.ValueIndicator == "" || cond.ValueTimeframe == "" {
			return errors.New("indicator comparison needs value_indicator and value_timeframe")
		}
		valueDef, err := indicator.Lookup(cond.ValueIndicator)
		if err != nil {
			return err
		}
		if _, err := valueDef.CoerceParams(cond.ValueParams); err != nil {
			return fmt.Errorf("%s: %w", valueDef.Name, err)
		}
		if err := validateLine(valueDef, cond.ValueLine); err != nil {
			return err
		}
		if _, err := model.ParseTimeframe(string(cond.ValueTimeframe)); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown value type %q", cond.ValueType)
	}
	return nil
}

// ValidateChain checks chain shape (size, unique positions) and every
// condition in it.
func ValidateChain(conditions []model.Condition) error {
	if len(conditions) == 0 {
		return ErrNoConditions
	}
	if len(conditions) > model.MaxChainConditions {
		return ErrTooManyConditions
	}
	seen := make(map[int]bool, len(conditions))
	for _, cond := range conditions {
		if seen[cond.Position] {
			return fmt.Errorf("%w: %d", ErrDuplicatePosition, cond.Position)
		}
		seen[cond.Position] = true
		if err := ValidateCondition(cond); err != nil {
			return fmt.Errorf("condition %d: %w", cond.Position, err)
		}
	}
	return nil
}

// ValidateAlert runs structural validation plus kind-specific checks.
func ValidateAlert(alert *model.Alert) error {
	if err := alert.Validate(); err != nil {
		return err
	}
	if alert.Kind == model.KindIndicatorChain {
		return ValidateChain(alert.IndicatorChain.Conditions)
	}
	return nil
}

func validateLine(def indicator.Definition, line string) error {
	line = strings.ToUpper(strings.TrimSpace(line))
	if line == "" {
		if len(def.Lines) == 1 {
			return nil
		}
		return fmt.Errorf("%s has %d output lines, one must be chosen", def.Name, len(def.Lines))
	}
	for _, l := range def.Lines {
		if l == line {
			return nil
		}
	}
	return fmt.Errorf("%s has no line %q", def.Name, line)
}
