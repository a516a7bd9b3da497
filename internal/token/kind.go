package token

// Kind represents the category of a cooklang token.
type Kind uint8

const (
	// Invalid indicates an erroneous token. The lexer never produces it.
	Invalid Kind = iota
	// EOF marks the end of the input.
	EOF

	// MetaStart is the ">>" metadata marker.
	MetaStart
	// TextStep is a single ">" at any position.
	TextStep
	// Colon is ":".
	Colon
	// At is "@", starts an ingredient.
	At
	// Hash is "#", starts cookware.
	Hash
	// Tilde is "~", starts a timer.
	Tilde
	// Question is "?".
	Question
	// Plus is "+".
	Plus
	// Minus is a single "-".
	Minus
	// Slash is "/".
	Slash
	// Star is "*".
	Star
	// Amp is "&".
	Amp
	// Pipe is "|".
	Pipe
	// Eq is "=".
	Eq
	// Percent is "%".
	Percent
	// LBrace is "{".
	LBrace
	// RBrace is "}".
	RBrace
	// LParen is "(".
	LParen
	// RParen is ")".
	RParen

	// Int is a digit run without a leading zero, like "14" or "0".
	Int
	// ZeroInt is a digit run with a leading zero, like "014".
	ZeroInt
	// Float is digits '.' digits, like "1.5".
	Float
	// Punct is any other unicode punctuation character.
	Punct
	// Word is everything else.
	Word
	// Escaped is "\" followed by any single character.
	Escaped

	// Whitespace is a run of spaces and tabs (including unicode spaces).
	Whitespace
	// Newline is "\n" or "\r\n".
	Newline
	// LineComment is "--" until the end of the line.
	LineComment
	// BlockComment is "[- ... -]", possibly unterminated at EOF.
	BlockComment
)

var kindNames = map[Kind]string{
	Invalid:      "invalid",
	EOF:          "eof",
	MetaStart:    ">>",
	TextStep:     ">",
	Colon:        ":",
	At:           "@",
	Hash:         "#",
	Tilde:        "~",
	Question:     "?",
	Plus:         "+",
	Minus:        "-",
	Slash:        "/",
	Star:         "*",
	Amp:          "&",
	Pipe:         "|",
	Eq:           "=",
	Percent:      "%",
	LBrace:       "{",
	RBrace:       "}",
	LParen:       "(",
	RParen:       ")",
	Int:          "int",
	ZeroInt:      "zeroint",
	Float:        "float",
	Punct:        "punctuation",
	Word:         "word",
	Escaped:      "escaped",
	Whitespace:   "whitespace",
	Newline:      "newline",
	LineComment:  "line comment",
	BlockComment: "block comment",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// IsEOF reports whether the kind marks the end of input.
func (k Kind) IsEOF() bool { return k == EOF }

// IsBlank reports whether the token carries no content: whitespace,
// newlines and both comment forms. Blocks made only of blank tokens are
// skipped by the parser.
func (k Kind) IsBlank() bool {
	switch k {
	case Whitespace, Newline, LineComment, BlockComment:
		return true
	default:
		return false
	}
}

// IsComponentMarker reports whether the kind starts a step component.
func (k Kind) IsComponentMarker() bool {
	switch k {
	case At, Hash, Tilde:
		return true
	default:
		return false
	}
}
