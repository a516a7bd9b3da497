package parser

// Extensions enables optional cooklang language rules beyond the canonical
// syntax. Each flag is independent unless noted.
type Extensions uint16

const (
	// ComponentModifiers enables the `@`, `&`, `+`, `-`, `?` flags between
	// a component marker and its name.
	ComponentModifiers Extensions = 1 << iota
	// ComponentNote enables `(...)` notes after ingredients and cookware.
	ComponentNote
	// ComponentAlias enables `@name|alias{}`.
	ComponentAlias
	// AdvancedUnits allows omitting the `%` in simple cases like `@igr{10 kg}`.
	AdvancedUnits
	// Modes enables parse mode switching with `>> [key]: value` metadata.
	Modes
	// InlineQuantities detects temperatures inside step text.
	InlineQuantities
	// MultilineSteps joins consecutive non-blank lines into one step.
	MultilineSteps
	// RangeValues enables range quantities like `@igr{2-3}`.
	RangeValues
	// TimerRequiresTime makes a timer without a time an error.
	TimerRequiresTime
	// IntermediatePreparations enables `@&(~1)` references to earlier steps
	// or sections. Requires ComponentModifiers to do anything, so enabling
	// it pulls that in too.
	IntermediatePreparations
)

// AllExtensions enables every optional language rule. This is the default
// parser configuration and the one the fuzz harness locks in.
func AllExtensions() Extensions {
	return ComponentModifiers | ComponentNote | ComponentAlias | AdvancedUnits |
		Modes | InlineQuantities | MultilineSteps | RangeValues |
		TimerRequiresTime | IntermediatePreparations
}

// NoExtensions is the canonical cooklang syntax.
func NoExtensions() Extensions {
	return 0
}

// CompatExtensions enables everything except TimerRequiresTime, maximizing
// compatibility with other cooklang implementations.
func CompatExtensions() Extensions {
	return AllExtensions() &^ TimerRequiresTime
}

// Contains reports whether all flags in ext are enabled.
func (e Extensions) Contains(ext Extensions) bool {
	// IntermediatePreparations implies ComponentModifiers
	full := e
	if e&IntermediatePreparations != 0 {
		full |= ComponentModifiers
	}
	return full&ext == ext
}
