package diag

import (
	"fmt"
)

// Code is a compact, stable identifier for a class of diagnostics.
type Code uint16

const (
	UnknownCode Code = 0

	// I/O (1000s)
	IOLoadFileError Code = 1001

	// Parser (2000s)
	ParseInfo              Code = 2000
	ParseEmptyName         Code = 2001
	ParseEmptyMetadataKey  Code = 2002
	ParseEmptyQuantityVal  Code = 2003
	ParseEmptyUnit         Code = 2004
	ParseBadNumber         Code = 2005
	ParseDivisionByZero    Code = 2006
	ParseScalingConflict   Code = 2007
	ParseDuplicateModifier Code = 2008
	ParseBadIntermediate   Code = 2009
	ParseUnitNotAllowed    Code = 2010
	ParseScaleNotAllowed   Code = 2011
	ParseNoteIgnored       Code = 2012
	ParseTimerMissingTime  Code = 2013
	ParseTimerInvalid      Code = 2014
	ParseEmptyMetadataVal  Code = 2015

	// Analysis (3000s)
	AnaInfo              Code = 3000
	AnaRefNotFound       Code = 3001
	AnaRefToFuture       Code = 3002
	AnaConflictingRef    Code = 3003
	AnaTextInComponents  Code = 3004
	AnaComponentInText   Code = 3005
	AnaBadModeValue      Code = 3006
	AnaRedundantModifier Code = 3007
	AnaRefQuantityClash  Code = 3008

	// Metadata (4000s)
	MetaInfo             Code = 4000
	MetaBadTag           Code = 4001
	MetaNotEmoji         Code = 4002
	MetaBadServings      Code = 4003
	MetaBadTime          Code = 4004
	MetaBadYAML          Code = 4005
	MetaDuplicateKey     Code = 4006
	MetaBadSpecialValue  Code = 4007

	// Units (5000s)
	UnitInfo       Code = 5000
	UnitUnknown    Code = 5001
	UnitAmbiguous  Code = 5002
	UnitBadConvert Code = 5003
)

// ID returns the stable string form used in machine-readable output.
func (c Code) ID() string {
	return fmt.Sprintf("COOK%04d", uint16(c))
}

func (c Code) String() string {
	return c.ID()
}

// Phase names the pipeline stage a code belongs to.
func (c Code) Phase() string {
	switch {
	case c >= 1000 && c < 2000:
		return "io"
	case c >= 2000 && c < 3000:
		return "parser"
	case c >= 3000 && c < 4000:
		return "analysis"
	case c >= 4000 && c < 5000:
		return "metadata"
	case c >= 5000 && c < 6000:
		return "units"
	}
	return "unknown"
}
