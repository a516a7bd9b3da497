package analysis

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"cooklang/internal/ast"
	"cooklang/internal/model"
	"cooklang/internal/source"
	"cooklang/internal/units"
)

// findInlineQuantity scans step text for a number followed by a temperature
// unit, like "180°C" or "350 F". It returns the text before the match, the
// detected quantity and the remaining text.
func (w *walker) findInlineQuantity(text string) (string, model.Quantity, string, bool) {
	re := w.temperatureRe()
	if re == nil {
		return "", model.Quantity{}, "", false
	}
	rest := text
	offset := 0
	for {
		loc := re.FindStringSubmatchIndex(rest)
		if loc == nil {
			return "", model.Quantity{}, "", false
		}
		numText := rest[loc[2]:loc[3]]
		unitText := rest[loc[4]:loc[5]]
		end := loc[1]

		// reject matches glued to a longer word, like the C of "25Celsius"
		if r, _ := utf8.DecodeRuneInString(rest[end:]); !boundary(r) {
			offset += end
			rest = rest[end:]
			continue
		}

		v, err := strconv.ParseFloat(numText, 64)
		if err != nil {
			offset += end
			rest = rest[end:]
			continue
		}
		q := model.Quantity{
			Value: model.FixedValue(ast.NumberValue(ast.Regular(v), source.Span{})),
			Unit:  unitText,
		}
		return text[:offset+loc[0]], q, text[offset+end:], true
	}
}

func boundary(r rune) bool {
	return r == utf8.RuneError || !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// temperatureRe builds the detection pattern from the converter's
// temperature units, longest alternatives first. nil when the converter
// knows no temperature units.
func (w *walker) temperatureRe() *regexp.Regexp {
	if w.tempReBuilt {
		return w.tempRe
	}
	w.tempReBuilt = true

	var keys []string
	for _, u := range w.conv.AllUnits() {
		if u.Quantity != units.Temperature {
			continue
		}
		keys = append(keys, u.Names...)
		keys = append(keys, u.Symbols...)
		keys = append(keys, u.Aliases...)
	}
	if len(keys) == 0 {
		return nil
	}
	sort.Slice(keys, func(i, j int) bool { return len(keys[i]) > len(keys[j]) })
	for i, k := range keys {
		keys[i] = regexp.QuoteMeta(k)
	}
	pattern := `(\d+(?:\.\d+)?)\s*(` + strings.Join(keys, "|") + `)`
	w.tempRe = regexp.MustCompile(pattern)
	return w.tempRe
}
