package units

import (
	"math"
	"testing"
)

func almost(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestBundledLoads(t *testing.T) {
	c := Bundled()
	if c.UnitCount() == 0 {
		t.Fatal("bundled converter has no units")
	}
	if c.DefaultSystem() != Metric {
		t.Errorf("default system = %v", c.DefaultSystem())
	}
}

func TestFindUnit(t *testing.T) {
	c := Bundled()
	tests := []struct {
		query  string
		symbol string
		q      PhysicalQuantity
	}{
		{query: "g", symbol: "g", q: Mass},
		{query: "grams", symbol: "g", q: Mass},
		{query: "ML", symbol: "ml", q: Volume},
		{query: "tablespoons", symbol: "tbsp", q: Volume},
		{query: "minutes", symbol: "min", q: Time},
	}
	for _, tt := range tests {
		u, ok := c.FindUnit(tt.query)
		if !ok {
			t.Errorf("FindUnit(%q) not found", tt.query)
			continue
		}
		if u.Symbol() != tt.symbol || u.Quantity != tt.q {
			t.Errorf("FindUnit(%q) = %s (%s)", tt.query, u.Symbol(), u.Quantity)
		}
	}
	if _, ok := c.FindUnit("parsec"); ok {
		t.Error("unknown unit found")
	}
}

func TestConvert(t *testing.T) {
	c := Bundled()
	tests := []struct {
		value    float64
		from, to string
		want     float64
	}{
		{value: 1, from: "kg", to: "g", want: 1000},
		{value: 2, from: "l", to: "ml", want: 2000},
		{value: 1, from: "cup", to: "ml", want: 236.5882365},
		{value: 100, from: "°C", to: "°F", want: 212},
		{value: 32, from: "°F", to: "°C", want: 0},
		{value: 90, from: "min", to: "h", want: 1.5},
	}
	for _, tt := range tests {
		got, err := c.Convert(tt.value, tt.from, tt.to)
		if err != nil {
			t.Errorf("Convert(%v %s -> %s): %v", tt.value, tt.from, tt.to, err)
			continue
		}
		if !almost(got, tt.want) {
			t.Errorf("Convert(%v %s -> %s) = %v, want %v", tt.value, tt.from, tt.to, got, tt.want)
		}
	}
}

func TestConvertIncompatible(t *testing.T) {
	c := Bundled()
	if _, err := c.Convert(1, "g", "ml"); err == nil {
		t.Error("expected incompatible units error")
	}
	if _, err := c.Convert(1, "g", "parsec"); err == nil {
		t.Error("expected unknown unit error")
	}
}

func TestBestFit(t *testing.T) {
	c := Bundled()
	ml, _ := c.FindUnit("ml")
	v, u, err := c.BestFit(2500, ml, Metric)
	if err != nil {
		t.Fatal(err)
	}
	if u.Symbol() != "l" || !almost(v, 2.5) {
		t.Errorf("BestFit(2500 ml) = %v %s", v, u.Symbol())
	}

	g, _ := c.FindUnit("g")
	v, u, err = c.BestFit(0.5, g, Metric)
	if err != nil {
		t.Fatal(err)
	}
	if u.Symbol() != "mg" || !almost(v, 500) {
		t.Errorf("BestFit(0.5 g) = %v %s", v, u.Symbol())
	}

	v, u, err = c.BestFit(1000, ml, Imperial)
	if err != nil {
		t.Fatal(err)
	}
	if u.Quantity != Volume || u.System != Imperial {
		t.Errorf("BestFit across systems = %v %s", v, u.Symbol())
	}
	if v < 1 {
		t.Errorf("BestFit value = %v, want >= 1", v)
	}
}

func TestIsTimeUnit(t *testing.T) {
	c := Bundled()
	if !c.IsTimeUnit("minutes") || !c.IsTimeUnit("h") {
		t.Error("time units not recognized")
	}
	if c.IsTimeUnit("g") || c.IsTimeUnit("banana") {
		t.Error("non-time unit recognized as time")
	}
}

func TestEmptyConverter(t *testing.T) {
	c := Empty()
	if c.UnitCount() != 0 {
		t.Errorf("unit count = %d", c.UnitCount())
	}
	if _, ok := c.FindUnit("g"); ok {
		t.Error("empty converter found a unit")
	}
	ml := &Unit{Symbols: []string{"ml"}, Ratio: 1, Quantity: Volume}
	v, u, err := c.BestFit(10, ml, Metric)
	if err != nil || u != ml || v != 10 {
		t.Errorf("BestFit on empty = %v %v %v", v, u, err)
	}
}

func TestFromTOMLErrors(t *testing.T) {
	tests := []string{
		"default_system = \"stellar\"\n",
		"[[quantity]]\nquantity = \"magic\"\n",
		"[[quantity]]\nquantity = \"mass\"\n[[quantity.units.metric]]\nnames = [\"x\"]\n",
	}
	for _, src := range tests {
		if _, err := FromTOML([]byte(src)); err == nil {
			t.Errorf("FromTOML(%q) succeeded", src)
		}
	}
}
