package indicator

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Heightsdesign/stockwatch/internal/model"
)

// ParamType enumerates the supported parameter value types.
type ParamType string

const (
	ParamInt    ParamType = "int"
	ParamFloat  ParamType = "float"
	ParamString ParamType = "string"
	ParamChoice ParamType = "choice"
)

// MaxLengthParam caps every length-like parameter; longer windows would force
// unbounded history fetches.
const MaxLengthParam = 400

// Param declares one parameter of an indicator.
type Param struct {
	Name     string
	Type     ParamType
	Required bool
	Default  any
	Choices  []string
}

// Values holds coerced parameters. Accessors assume CoerceParams validated
// the value; a missing optional parameter yields the zero value.
type Values map[string]any

// Int returns an integer parameter.
func (v Values) Int(name string) int {
	n, _ := v[name].(int)
	return n
}

// Float returns a float parameter (accepting an int value).
func (v Values) Float(name string) float64 {
	switch f := v[name].(type) {
	case float64:
		return f
	case int:
		return float64(f)
	}
	return 0
}

// Str returns a string or choice parameter.
func (v Values) Str(name string) string {
	s, _ := v[name].(string)
	return s
}

// CoerceParams validates raw user parameters against the schema: type checks,
// required flags, default substitution, choice membership and the hard cap on
// length-like parameters. Unknown parameter names are rejected.
func (d Definition) CoerceParams(raw model.Params) (Values, error) {
	out := make(Values, len(d.Params))

	known := make(map[string]bool, len(d.Params))
	for _, p := range d.Params {
		known[p.Name] = true
	}
	for name := range raw {
		if !known[name] {
			return nil, fmt.Errorf("%w: %s does not accept %q", ErrInvalidParameter, d.Name, name)
		}
	}

	for _, p := range d.Params {
		rawVal, present := raw[p.Name]
		if !present || rawVal == nil {
			if p.Required && p.Default == nil {
				return nil, fmt.Errorf("%w: %s requires %q", ErrInvalidParameter, d.Name, p.Name)
			}
			if p.Default != nil {
				out[p.Name] = p.Default
			}
			continue
		}

		val, err := coerceValue(p, rawVal)
		if err != nil {
			return nil, fmt.Errorf("%w: %s parameter %q: %v", ErrInvalidParameter, d.Name, p.Name, err)
		}
		// Every integer parameter is a bar count; zero or negative windows
		// would index past slice bounds in the compute code.
		if n, ok := val.(int); ok {
			if n < 1 {
				return nil, fmt.Errorf("%w: %s parameter %q must be positive", ErrInvalidParameter, d.Name, p.Name)
			}
			if lengthLike(p.Name) && n > MaxLengthParam {
				return nil, fmt.Errorf("%w: %s parameter %q exceeds maximum of %d", ErrInvalidParameter, d.Name, p.Name, MaxLengthParam)
			}
		}
		out[p.Name] = val
	}
	return out, nil
}

// lengthLike reports whether a parameter name denotes a history window.
func lengthLike(name string) bool {
	switch name {
	case "length", "lookback":
		return true
	}
	return strings.HasSuffix(name, "_period") || strings.HasSuffix(name, "_length")
}

func coerceValue(p Param, raw any) (any, error) {
	switch p.Type {
	case ParamInt:
		return toInt(raw)
	case ParamFloat:
		return toFloat(raw)
	case ParamString:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("must be a string")
		}
		return s, nil
	case ParamChoice:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("must be a string choice")
		}
		for _, c := range p.Choices {
			if strings.EqualFold(s, c) {
				return c, nil
			}
		}
		return nil, fmt.Errorf("invalid choice %q, allowed: %v", s, p.Choices)
	}
	return nil, fmt.Errorf("unsupported parameter type %q", p.Type)
}

// toInt accepts native ints, round floats (JSON numbers decode as float64)
// and numeric strings.
func toInt(raw any) (int, error) {
	switch n := raw.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("must be an integer")
		}
		return int(n), nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, fmt.Errorf("must be an integer")
		}
		return i, nil
	}
	return 0, fmt.Errorf("must be an integer")
}

func toFloat(raw any) (float64, error) {
	switch n := raw.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("must be a number")
		}
		return f, nil
	}
	return 0, fmt.Errorf("must be a number")
}
