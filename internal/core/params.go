package core

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"sync/atomic"
)

// ParamType enumerates supported parameter value kinds.
type ParamType string

const (
	// ParamTypeInt denotes integer-valued parameters.
	ParamTypeInt ParamType = "int"
	// ParamTypeFloat denotes floating-point parameters.
	ParamTypeFloat ParamType = "float"
)

// Parameter is a named, bounded numeric value a behavior reads while it
// executes. Values are stored atomically so an external layer may adjust
// them while tiles are running.
type Parameter struct {
	Key         string
	Label       string
	Description string
	Type        ParamType

	Min     float64
	Max     float64
	Default float64

	bits atomic.Uint64
}

// NewIntParameter returns an integer parameter initialised to def.
func NewIntParameter(key, label, desc string, lo, def, hi int) *Parameter {
	return newParameter(key, label, desc, ParamTypeInt, float64(lo), float64(def), float64(hi))
}

// NewFloatParameter returns a floating point parameter initialised to def.
func NewFloatParameter(key, label, desc string, lo, def, hi float64) *Parameter {
	return newParameter(key, label, desc, ParamTypeFloat, lo, def, hi)
}

func newParameter(key, label, desc string, typ ParamType, lo, def, hi float64) *Parameter {
	if hi < lo {
		hi = lo
	}
	p := &Parameter{Key: key, Label: label, Description: desc, Type: typ, Min: lo, Max: hi}
	p.Default = p.clamp(def)
	p.bits.Store(math.Float64bits(p.Default))
	return p
}

// Float returns the current value.
func (p *Parameter) Float() float64 { return math.Float64frombits(p.bits.Load()) }

// Int returns the current value truncated to an int.
func (p *Parameter) Int() int { return int(p.Float()) }

// Set stores v clamped to [Min, Max]. It reports whether v was inside the
// bounds.
func (p *Parameter) Set(v float64) bool {
	c := p.clamp(v)
	p.bits.Store(math.Float64bits(c))
	return c == v
}

// Reset restores the default value.
func (p *Parameter) Reset() { p.bits.Store(math.Float64bits(p.Default)) }

// String formats the current value according to the parameter type.
func (p *Parameter) String() string {
	if p.Type == ParamTypeInt {
		return strconv.Itoa(p.Int())
	}
	return strconv.FormatFloat(p.Float(), 'f', -1, 64)
}

func (p *Parameter) clamp(v float64) float64 {
	if math.IsNaN(v) {
		return p.Min
	}
	if p.Type == ParamTypeInt {
		v = math.Trunc(v)
	}
	if v < p.Min {
		return p.Min
	}
	if v > p.Max {
		return p.Max
	}
	return v
}

// ParameterSet groups the parameters of one behavior.
type ParameterSet struct {
	byKey map[string]*Parameter
}

// NewParameterSet builds a set from the provided parameters.
func NewParameterSet(params ...*Parameter) *ParameterSet {
	s := &ParameterSet{byKey: make(map[string]*Parameter, len(params))}
	for _, p := range params {
		s.byKey[p.Key] = p
	}
	return s
}

// Get returns the parameter with the given key.
func (s *ParameterSet) Get(key string) (*Parameter, bool) {
	if s == nil {
		return nil, false
	}
	p, ok := s.byKey[key]
	return p, ok
}

// Params returns the parameters sorted by key.
func (s *ParameterSet) Params() []*Parameter {
	if s == nil {
		return nil
	}
	out := make([]*Parameter, 0, len(s.byKey))
	for _, p := range s.byKey {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Apply sets parameters from a string map (flag-style key/value pairs).
// Unknown keys are ignored; malformed values are reported.
func (s *ParameterSet) Apply(cfg map[string]string) error {
	if s == nil {
		return nil
	}
	for k, v := range cfg {
		p, ok := s.byKey[k]
		if !ok {
			continue
		}
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("parameter %q: %w", k, err)
		}
		p.Set(parsed)
	}
	return nil
}
