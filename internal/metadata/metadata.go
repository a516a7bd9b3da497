package metadata

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"gopkg.in/yaml.v2"

	"cooklang/internal/diag"
	"cooklang/internal/source"
)

// Metadata is the collected metadata of a recipe: the raw ordered map plus
// the parsed special keys. A value that fails its special-key parse stays
// in the map and produces a diagnostic, it is never lost.
type Metadata struct {
	Description string
	Tags        []string
	Emoji       string
	Author      *NameAndURL
	Source      *NameAndURL
	Time        *RecipeTime
	Servings    []uint32

	keys   []string
	values map[string]string
}

// New returns an empty metadata collection.
func New() *Metadata {
	return &Metadata{values: make(map[string]string)}
}

// specialKeys are the keys with parsed representations.
var specialKeys = map[string]bool{
	"description": true,
	"tag":         true,
	"tags":        true,
	"emoji":       true,
	"author":      true,
	"source":      true,
	"time":        true,
	"prep_time":   true,
	"prep time":   true,
	"cook_time":   true,
	"cook time":   true,
	"servings":    true,
}

// Insert records a key/value pair and parses it when the key is special.
// Diagnostics go to r anchored at sp.
func (m *Metadata) Insert(key, value string, sp source.Span, r diag.Reporter) {
	if _, exists := m.values[key]; exists {
		diag.ReportWarning(r, diag.MetaDuplicateKey, sp,
			fmt.Sprintf("metadata key %q is defined more than once", key)).
			WithHelp("the last value wins").
			Emit()
	} else {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value

	switch key {
	case "description":
		m.Description = value
	case "tag", "tags":
		for _, raw := range strings.Split(value, ",") {
			tag := strings.TrimSpace(raw)
			if !IsValidTag(tag) {
				diag.ReportWarning(r, diag.MetaBadTag, sp,
					fmt.Sprintf("invalid tag: %q", tag)).
					WithHelp("tags are lowercase words separated by single hyphens, like 'italian-food'").
					Emit()
				continue
			}
			m.Tags = append(m.Tags, tag)
		}
	case "emoji":
		if isEmoji(value) {
			m.Emoji = value
		} else {
			diag.ReportWarning(r, diag.MetaNotEmoji, sp,
				fmt.Sprintf("value is not an emoji: %q", value)).
				Emit()
		}
	case "author":
		nu := ParseNameAndURL(value)
		m.Author = &nu
	case "source":
		nu := ParseNameAndURL(value)
		m.Source = &nu
	case "time":
		if t, ok := parseMinutes(value); ok {
			m.Time = &RecipeTime{Total: t}
		} else {
			m.badTime(value, sp, r)
		}
	case "prep_time", "prep time":
		if t, ok := parseMinutes(value); ok {
			m.composedTime().Prep = &t
		} else {
			m.badTime(value, sp, r)
		}
	case "cook_time", "cook time":
		if t, ok := parseMinutes(value); ok {
			m.composedTime().Cook = &t
		} else {
			m.badTime(value, sp, r)
		}
	case "servings":
		m.parseServings(value, sp, r)
	}
}

func (m *Metadata) badTime(value string, sp source.Span, r diag.Reporter) {
	diag.ReportWarning(r, diag.MetaBadTime, sp,
		fmt.Sprintf("invalid time: %q", value)).
		WithHelp("write a duration like '30 min' or '1h 15m', or plain minutes").
		Emit()
}

// composedTime switches Time to the prep/cook form, discarding a plain
// total set earlier.
func (m *Metadata) composedTime() *RecipeTime {
	if m.Time == nil || !m.Time.Composed() {
		m.Time = &RecipeTime{}
	}
	return m.Time
}

func (m *Metadata) parseServings(value string, sp source.Span, r diag.Reporter) {
	var servings []uint32
	seen := map[uint64]bool{}
	for _, part := range strings.Split(value, "|") {
		n, err := strconv.ParseUint(strings.TrimSpace(part), 10, 32)
		if err != nil {
			diag.ReportWarning(r, diag.MetaBadServings, sp,
				fmt.Sprintf("invalid servings: %q", value)).
				WithHelp("write a number or '|' separated numbers, like '2|4|8'").
				Emit()
			return
		}
		if seen[n] {
			diag.ReportWarning(r, diag.MetaBadServings, sp,
				fmt.Sprintf("duplicate servings value: %d", n)).
				Emit()
			return
		}
		seen[n] = true
		servings = append(servings, uint32(n))
	}
	m.Servings = servings
}

// Get returns the raw value for a key.
func (m *Metadata) Get(key string) (string, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (m *Metadata) Keys() []string {
	return m.keys
}

// Len is the number of raw entries.
func (m *Metadata) Len() int { return len(m.keys) }

// Pair is one raw metadata entry.
type Pair struct {
	Key   string
	Value string
}

// All returns the raw entries in insertion order.
func (m *Metadata) All() []Pair {
	out := make([]Pair, 0, len(m.keys))
	for _, k := range m.keys {
		out = append(out, Pair{Key: k, Value: m.values[k]})
	}
	return out
}

// MapFiltered returns the raw entries without the special keys.
func (m *Metadata) MapFiltered() []Pair {
	var out []Pair
	for _, k := range m.keys {
		if specialKeys[k] {
			continue
		}
		out = append(out, Pair{Key: k, Value: m.values[k]})
	}
	return out
}

// ParseYAML parses a frontmatter block into metadata. Every scalar entry
// goes through Insert; sequences flatten to comma separated values. sp
// anchors diagnostics, usually the span of the frontmatter block.
func ParseYAML(yamlText string, sp source.Span, r diag.Reporter) *Metadata {
	m := New()
	var doc yaml.MapSlice
	if err := yaml.Unmarshal([]byte(yamlText), &doc); err != nil {
		diag.ReportError(r, diag.MetaBadYAML, sp,
			"invalid YAML frontmatter").
			WithNote(sp, err.Error()).
			Emit()
		return m
	}
	for _, item := range doc {
		key := yamlScalar(item.Key)
		value, ok := yamlValue(item.Value)
		if !ok {
			diag.ReportWarning(r, diag.MetaBadYAML, sp,
				fmt.Sprintf("frontmatter key %q has a nested value", key)).
				WithHelp("only scalars and lists of scalars are supported").
				Emit()
			continue
		}
		m.Insert(key, value, sp, r)
	}
	return m
}

func yamlScalar(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case nil:
		return ""
	default:
		return fmt.Sprint(x)
	}
}

func yamlValue(v interface{}) (string, bool) {
	switch x := v.(type) {
	case yaml.MapSlice:
		return "", false
	case []interface{}:
		parts := make([]string, 0, len(x))
		for _, e := range x {
			s, ok := yamlValue(e)
			if !ok {
				return "", false
			}
			parts = append(parts, s)
		}
		return strings.Join(parts, ", "), true
	default:
		return yamlScalar(v), true
	}
}

// NameAndURL is a `Name <https://url>` style value, as used by the author
// and source keys. At least one field is set.
type NameAndURL struct {
	Name string
	URL  string
}

var nameURLRe = regexp.MustCompile(`^(\w+(?:\s\w+)*)\s+<([^>]+)>$`)

// ParseNameAndURL splits `Name <Url>`, a bare url or a bare name. The url
// must parse as an absolute URL, otherwise everything is the name.
func ParseNameAndURL(s string) NameAndURL {
	if m := nameURLRe.FindStringSubmatch(s); m != nil {
		if u := validURL(strings.TrimSpace(m[2])); u != "" {
			return NameAndURL{Name: m[1], URL: u}
		}
	}
	if u := validURL(s); u != "" {
		return NameAndURL{URL: u}
	}
	return NameAndURL{Name: s}
}

func validURL(s string) string {
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.String()
}

// RecipeTime is the recipe time in minutes, either a plain total or a
// prep/cook combination.
type RecipeTime struct {
	Total uint32
	Prep  *uint32
	Cook  *uint32
}

// Composed reports whether the time is split into prep and cook parts.
func (t *RecipeTime) Composed() bool {
	return t.Prep != nil || t.Cook != nil
}

// TotalMinutes sums whatever parts are set.
func (t *RecipeTime) TotalMinutes() uint32 {
	if !t.Composed() {
		return t.Total
	}
	var sum uint32
	if t.Prep != nil {
		sum += *t.Prep
	}
	if t.Cook != nil {
		sum += *t.Cook
	}
	return sum
}

var tagRe = regexp.MustCompile(`^\p{Ll}[\p{Ll}\d]*(-[\p{Ll}\d]+)*$`)

// IsValidTag reports whether tag is 1 to 32 runes of lowercase letters,
// digits and single hyphens, starting with a letter.
func IsValidTag(tag string) bool {
	n := len([]rune(tag))
	return n >= 1 && n <= 32 && tagRe.MatchString(tag)
}

var tagCollapseRe = regexp.MustCompile(`--+`)

// Tagify turns free text into a tag: whitespace and underscores become
// hyphens, everything not alphanumeric drops, runs of hyphens collapse.
// Length is not checked.
func Tagify(text string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsSpace(r) || r == '_':
			return '-'
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-':
			return unicode.ToLower(r)
		default:
			return -1
		}
	}, strings.TrimSpace(text))
	mapped = tagCollapseRe.ReplaceAllString(mapped, "-")
	return strings.Trim(mapped, "-")
}

// isEmoji accepts values made of emoji-ish runes: symbols, joiners,
// variation selectors and keycap combinations.
func isEmoji(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case unicode.Is(unicode.So, r) || unicode.Is(unicode.Sk, r):
		case r == 0x200D || r == 0xFE0F || r == 0x20E3:
		case r >= 0x1F000 && r <= 0x1FAFF:
		case r >= '0' && r <= '9' || r == '#' || r == '*':
			// keycap bases
		default:
			return false
		}
	}
	return true
}
