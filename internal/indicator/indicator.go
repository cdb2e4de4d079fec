// Package indicator computes technical indicator values from OHLCV series.
//
// Every indicator is a Definition in a registry keyed by its canonical
// (uppercase) name: a parameter schema, a minimum-history formula and a
// compute function producing one or more named output lines. Compute returns
// the most recent value of one requested line; the package never returns
// whole series to callers.
package indicator

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Heightsdesign/stockwatch/internal/model"
)

var (
	// ErrUnknownIndicator means the identifier is not in the registry.
	ErrUnknownIndicator = errors.New("unknown indicator")
	// ErrUnknownLine means the indicator exists but has no such output line.
	ErrUnknownLine = errors.New("unknown indicator line")
	// ErrInsufficientHistory means the series is shorter than the indicator's
	// minimum required history for the given parameters.
	ErrInsufficientHistory = errors.New("insufficient history")
	// ErrInvalidParameter means a parameter is missing, of the wrong type or
	// outside its declared choice set.
	ErrInvalidParameter = errors.New("invalid parameter")
)

// Definition declares one indicator: its identity, output lines, parameter
// schema, history requirement and computation.
type Definition struct {
	Name        string
	DisplayName string
	Lines       []string
	Params      []Param

	// MinBars returns the minimum series length required to produce a value
	// with the given (already coerced) parameters.
	MinBars func(v Values) int

	// Compute calculates the latest value of every output line.
	Compute func(bars []model.OHLCV, v Values) (map[string]float64, error)
}

var registry = map[string]Definition{}

func register(def Definition) {
	name := strings.ToUpper(def.Name)
	if _, dup := registry[name]; dup {
		panic(fmt.Sprintf("indicator: duplicate registration of %q", name))
	}
	def.Name = name
	for i, l := range def.Lines {
		def.Lines[i] = strings.ToUpper(l)
	}
	registry[name] = def
}

// Lookup returns the definition for a (case-insensitive) indicator name.
func Lookup(name string) (Definition, error) {
	def, ok := registry[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %q", ErrUnknownIndicator, name)
	}
	return def, nil
}

// Names returns all registered canonical indicator names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Compute calculates the latest value of one line of the named indicator.
// An empty line selects the indicator's only line; indicators with several
// lines require an explicit choice.
func Compute(name string, bars []model.OHLCV, line string, params model.Params) (float64, error) {
	def, err := Lookup(name)
	if err != nil {
		return 0, err
	}

	values, err := def.CoerceParams(params)
	if err != nil {
		return 0, err
	}

	line = strings.ToUpper(strings.TrimSpace(line))
	if line == "" && len(def.Lines) == 1 {
		line = def.Lines[0]
	}
	if !def.hasLine(line) {
		return 0, fmt.Errorf("%w: %q for %s", ErrUnknownLine, line, def.Name)
	}

	if need := def.MinBars(values); len(bars) < need {
		return 0, fmt.Errorf("%w: %s needs %d bars, have %d", ErrInsufficientHistory, def.Name, need, len(bars))
	}

	out, err := def.Compute(bars, values)
	if err != nil {
		return 0, err
	}
	value, ok := out[line]
	if !ok {
		return 0, fmt.Errorf("%w: %q not produced by %s", ErrUnknownLine, line, def.Name)
	}
	return value, nil
}

// MinBars returns the minimum history for the named indicator with the given
// parameters, after default substitution.
func MinBars(name string, params model.Params) (int, error) {
	def, err := Lookup(name)
	if err != nil {
		return 0, err
	}
	values, err := def.CoerceParams(params)
	if err != nil {
		return 0, err
	}
	return def.MinBars(values), nil
}

func (d Definition) hasLine(line string) bool {
	for _, l := range d.Lines {
		if l == line {
			return true
		}
	}
	return false
}
