package units

import (
	_ "embed"
	"fmt"

	"github.com/BurntSushi/toml"
)

//go:embed units.toml
var bundledTOML []byte

// UnitsFile is the TOML layout of a units layer.
type UnitsFile struct {
	DefaultSystem string          `toml:"default_system"`
	Quantity      []QuantityGroup `toml:"quantity"`
}

// QuantityGroup declares the units of one physical quantity.
type QuantityGroup struct {
	Quantity string     `toml:"quantity"`
	Best     BestUnits  `toml:"best"`
	Units    UnitLayers `toml:"units"`
}

// BestUnits lists, per system, the units the converter may pick when
// fitting a value.
type BestUnits struct {
	Metric   []string `toml:"metric"`
	Imperial []string `toml:"imperial"`
}

// UnitLayers separates unit entries by system.
type UnitLayers struct {
	Metric      []UnitEntry `toml:"metric"`
	Imperial    []UnitEntry `toml:"imperial"`
	Unspecified []UnitEntry `toml:"unspecified"`
}

// UnitEntry is one unit declaration.
type UnitEntry struct {
	Names      []string `toml:"names"`
	Symbols    []string `toml:"symbols"`
	Aliases    []string `toml:"aliases"`
	Ratio      float64  `toml:"ratio"`
	Difference float64  `toml:"difference"`
}

// Bundled returns the converter with the embedded unit set: the basic
// metric and imperial units most recipes need.
func Bundled() *Converter {
	c, err := FromTOML(bundledTOML)
	if err != nil {
		panic("bundled units are invalid: " + err.Error())
	}
	return c
}

// Default is Bundled. The name mirrors what callers mean: the converter
// you get when you do not configure one.
func Default() *Converter { return Bundled() }

// FromTOML builds a converter from one TOML units layer.
func FromTOML(data []byte) (*Converter, error) {
	var file UnitsFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse units file: %w", err)
	}
	return FromFile(file)
}

// FromFile builds a converter from a decoded units file.
func FromFile(file UnitsFile) (*Converter, error) {
	c := Empty()

	switch file.DefaultSystem {
	case "", "none":
	case "metric":
		c.defaultSystem = Metric
	case "imperial":
		c.defaultSystem = Imperial
	default:
		return nil, fmt.Errorf("unknown default system %q", file.DefaultSystem)
	}

	for _, group := range file.Quantity {
		q, err := parseQuantity(group.Quantity)
		if err != nil {
			return nil, err
		}
		layers := []struct {
			system  System
			entries []UnitEntry
		}{
			{Metric, group.Units.Metric},
			{Imperial, group.Units.Imperial},
			{SystemNone, group.Units.Unspecified},
		}
		for _, layer := range layers {
			for _, entry := range layer.entries {
				if entry.Ratio == 0 {
					return nil, fmt.Errorf("unit %q has no ratio", firstKey(entry))
				}
				u := &Unit{
					Names:      entry.Names,
					Symbols:    entry.Symbols,
					Aliases:    entry.Aliases,
					Ratio:      entry.Ratio,
					Difference: entry.Difference,
					Quantity:   q,
					System:     layer.system,
				}
				if len(u.allKeys()) == 0 {
					return nil, fmt.Errorf("unit in %s group has no names", group.Quantity)
				}
				if err := c.add(u); err != nil {
					return nil, err
				}
			}
		}
	}

	// best lists resolve after all units exist
	for _, group := range file.Quantity {
		q, _ := parseQuantity(group.Quantity)
		if len(group.Best.Metric) > 0 {
			if err := c.setBest(q, Metric, group.Best.Metric); err != nil {
				return nil, err
			}
		}
		if len(group.Best.Imperial) > 0 {
			if err := c.setBest(q, Imperial, group.Best.Imperial); err != nil {
				return nil, err
			}
		}
	}
	return c, nil
}

func parseQuantity(name string) (PhysicalQuantity, error) {
	switch name {
	case "volume":
		return Volume, nil
	case "mass":
		return Mass, nil
	case "length":
		return Length, nil
	case "temperature":
		return Temperature, nil
	case "time":
		return Time, nil
	default:
		return 0, fmt.Errorf("unknown physical quantity %q", name)
	}
}

func firstKey(e UnitEntry) string {
	if len(e.Names) > 0 {
		return e.Names[0]
	}
	if len(e.Symbols) > 0 {
		return e.Symbols[0]
	}
	if len(e.Aliases) > 0 {
		return e.Aliases[0]
	}
	return "?"
}
