// Package units knows about measurement units and conversions between
// them. A Converter is built from layered TOML unit files; the bundled
// layer covers the units most recipes use.
package units

import (
	"fmt"
	"sort"

	"golang.org/x/text/cases"
)

// System is a measurement system.
type System uint8

const (
	SystemNone System = iota
	Metric
	Imperial
)

func (s System) String() string {
	switch s {
	case Metric:
		return "metric"
	case Imperial:
		return "imperial"
	default:
		return "none"
	}
}

// PhysicalQuantity is what a unit measures.
type PhysicalQuantity uint8

const (
	Volume PhysicalQuantity = iota
	Mass
	Length
	Temperature
	Time
)

func (q PhysicalQuantity) String() string {
	switch q {
	case Volume:
		return "volume"
	case Mass:
		return "mass"
	case Length:
		return "length"
	case Temperature:
		return "temperature"
	case Time:
		return "time"
	default:
		return "unknown"
	}
}

// Unit is one known unit. Converting a value to the base unit of its
// physical quantity is `val*Ratio + Difference`.
type Unit struct {
	Names      []string
	Symbols    []string
	Aliases    []string
	Ratio      float64
	Difference float64
	Quantity   PhysicalQuantity
	System     System
}

// Symbol returns the display form: first symbol, else first name, else
// first alias.
func (u *Unit) Symbol() string {
	if len(u.Symbols) > 0 {
		return u.Symbols[0]
	}
	if len(u.Names) > 0 {
		return u.Names[0]
	}
	if len(u.Aliases) > 0 {
		return u.Aliases[0]
	}
	return ""
}

// Name returns the long form when available.
func (u *Unit) Name() string {
	if len(u.Names) > 0 {
		return u.Names[0]
	}
	return u.Symbol()
}

func (u *Unit) allKeys() []string {
	keys := make([]string, 0, len(u.Names)+len(u.Symbols)+len(u.Aliases))
	keys = append(keys, u.Names...)
	keys = append(keys, u.Symbols...)
	keys = append(keys, u.Aliases...)
	return keys
}

// UnknownUnitError reports a unit the converter does not know.
type UnknownUnitError struct {
	Name string
}

func (e UnknownUnitError) Error() string {
	return fmt.Sprintf("unknown unit: %q", e.Name)
}

// IncompatibleUnitsError reports a conversion across physical quantities.
type IncompatibleUnitsError struct {
	From, To *Unit
}

func (e IncompatibleUnitsError) Error() string {
	return fmt.Sprintf("cannot convert %s (%s) to %s (%s)",
		e.From.Symbol(), e.From.Quantity, e.To.Symbol(), e.To.Quantity)
}

// Converter holds the known units and their conversion tables.
type Converter struct {
	units []*Unit
	// index maps case-folded names, symbols and aliases to units.
	index map[string]*Unit
	// best lists, per quantity and system, the units the converter may
	// pick when fitting a value, sorted by ratio ascending.
	best          map[PhysicalQuantity]map[System][]*Unit
	defaultSystem System
}

// foldKey case-folds a lookup key. A cases.Caser is stateful, so a fresh
// one is used per call to stay safe under concurrent lookups.
func foldKey(s string) string { return cases.Fold().String(s) }

// Empty returns a converter that knows no units. Every lookup fails, which
// effectively disables unit behavior.
func Empty() *Converter {
	return &Converter{
		index: map[string]*Unit{},
		best:  map[PhysicalQuantity]map[System][]*Unit{},
	}
}

// UnitCount is the number of distinct known units.
func (c *Converter) UnitCount() int { return len(c.units) }

// AllUnits returns every known unit.
func (c *Converter) AllUnits() []*Unit { return c.units }

// DefaultSystem is the system assumed when a unit belongs to none.
func (c *Converter) DefaultSystem() System { return c.defaultSystem }

// FindUnit looks a unit up by any of its names, symbols or aliases,
// case-insensitively.
func (c *Converter) FindUnit(name string) (*Unit, bool) {
	u, ok := c.index[foldKey(name)]
	return u, ok
}

// Convert converts a value between two units given by name.
func (c *Converter) Convert(value float64, from, to string) (float64, error) {
	fu, ok := c.FindUnit(from)
	if !ok {
		return 0, UnknownUnitError{Name: from}
	}
	tu, ok := c.FindUnit(to)
	if !ok {
		return 0, UnknownUnitError{Name: to}
	}
	return c.ConvertUnits(value, fu, tu)
}

// ConvertUnits converts a value between two known units.
func (c *Converter) ConvertUnits(value float64, from, to *Unit) (float64, error) {
	if from.Quantity != to.Quantity {
		return 0, IncompatibleUnitsError{From: from, To: to}
	}
	base := value*from.Ratio + from.Difference
	return (base - to.Difference) / to.Ratio, nil
}

// BestFit converts a value to the unit of the target system that fits it
// best: the largest best-list unit keeping the value at or above one, or
// the smallest one otherwise. SystemNone means keep the unit's own system,
// falling back to the converter default.
func (c *Converter) BestFit(value float64, from *Unit, system System) (float64, *Unit, error) {
	if system == SystemNone {
		system = from.System
		if system == SystemNone {
			system = c.defaultSystem
		}
	}
	candidates := c.best[from.Quantity][system]
	if len(candidates) == 0 {
		return value, from, nil
	}

	bestVal, bestUnit := 0.0, (*Unit)(nil)
	for _, u := range candidates {
		v, err := c.ConvertUnits(value, from, u)
		if err != nil {
			return 0, nil, err
		}
		if bestUnit == nil || (v >= 1 && (bestVal < 1 || v < bestVal)) {
			bestVal, bestUnit = v, u
		}
	}
	return bestVal, bestUnit, nil
}

// IsTimeUnit reports whether name is a known time unit. Timers with the
// advanced units extension must use one.
func (c *Converter) IsTimeUnit(name string) bool {
	u, ok := c.FindUnit(name)
	return ok && u.Quantity == Time
}

func (c *Converter) add(u *Unit) error {
	c.units = append(c.units, u)
	for _, key := range u.allKeys() {
		k := foldKey(key)
		if prev, exists := c.index[k]; exists && prev != u {
			return fmt.Errorf("unit key %q defined twice", key)
		}
		c.index[k] = u
	}
	return nil
}

func (c *Converter) setBest(q PhysicalQuantity, system System, names []string) error {
	list := make([]*Unit, 0, len(names))
	for _, name := range names {
		u, ok := c.FindUnit(name)
		if !ok {
			return UnknownUnitError{Name: name}
		}
		if u.Quantity != q {
			return fmt.Errorf("best unit %q is not a %s unit", name, q)
		}
		list = append(list, u)
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].Ratio < list[j].Ratio })
	if c.best[q] == nil {
		c.best[q] = map[System][]*Unit{}
	}
	c.best[q][system] = list
	return nil
}
