package tools

import (
	"strconv"
	"strings"

	"github.com/max22/vera/parser"
)

// FormatStyle selects how much whitespace the formatter inserts.
type FormatStyle int

const (
	FormatDefault  FormatStyle = iota // one space after separators
	FormatCompact                     // no space after separators
	FormatExpanded                    // default spacing plus a blank line between rules
)

// FormatOptions controls formatter behavior.
type FormatOptions struct {
	Style        FormatStyle
	BlankBetween bool // blank line between rules
}

// DefaultFormatOptions is the formatter's default style.
func DefaultFormatOptions() *FormatOptions {
	return &FormatOptions{Style: FormatDefault, BlankBetween: false}
}

// CompactFormatOptions packs rules with minimal whitespace.
func CompactFormatOptions() *FormatOptions {
	return &FormatOptions{Style: FormatCompact, BlankBetween: false}
}

// ExpandedFormatOptions spaces rules out for readability.
func ExpandedFormatOptions() *FormatOptions {
	return &FormatOptions{Style: FormatExpanded, BlankBetween: true}
}

// Formatter re-serializes a parsed Vera program into a canonical
// textual form: one rule per line, facts comma-separated, markers
// normalized, interior whitespace within a fact collapsed to single
// spaces (matching intern.Scmp's notion of equivalence).
type Formatter struct {
	options *FormatOptions
}

// NewFormatter creates a Formatter; nil options uses DefaultFormatOptions.
func NewFormatter(options *FormatOptions) *Formatter {
	if options == nil {
		options = DefaultFormatOptions()
	}
	return &Formatter{options: options}
}

// Format parses input and renders it in canonical form. Ports are not
// part of the textual grammar, so they are not re-emitted.
func (f *Formatter) Format(input, filename string) (string, error) {
	pool, err := parser.Parse(input, filename)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	rules := parser.BuildRules(pool)
	for i, rule := range rules {
		f.writeRule(&sb, pool, rule)
		sb.WriteByte('\n')
		if f.options.BlankBetween && i != len(rules)-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String(), nil
}

func (f *Formatter) writeRule(sb *strings.Builder, pool *parser.Pool, rule parser.Rule) {
	sep := ", "
	bar := " | "
	if f.options.Style == FormatCompact {
		sep, bar = ",", "|"
	}

	f.writeSide(sb, pool, rule.LHS, sep, true)
	sb.WriteString(bar)
	f.writeSide(sb, pool, rule.RHS, sep, false)
}

func (f *Formatter) writeSide(sb *strings.Builder, pool *parser.Pool, indices []int, sep string, isLHS bool) {
	for i, idx := range indices {
		if i > 0 {
			sb.WriteString(sep)
		}
		obj := pool.Objects[idx]
		sb.WriteString(canonicalize(obj.Text))
		if isLHS {
			if obj.Keep {
				sb.WriteByte('?')
			}
		} else if obj.Count != 1 {
			sb.WriteString(": ")
			sb.WriteString(strconv.FormatUint(uint64(obj.Count), 10))
		}
	}
}

// canonicalize trims a fact's text and collapses interior whitespace
// runs to single spaces, the same normalization intern.Scmp treats two
// facts as equal under.
func canonicalize(s string) string {
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}

// FormatString is a convenience wrapper using DefaultFormatOptions.
func FormatString(input, filename string) (string, error) {
	return NewFormatter(DefaultFormatOptions()).Format(input, filename)
}

// FormatStringWithStyle formats input with the given style.
func FormatStringWithStyle(input, filename string, style FormatStyle) (string, error) {
	var options *FormatOptions
	switch style {
	case FormatCompact:
		options = CompactFormatOptions()
	case FormatExpanded:
		options = ExpandedFormatOptions()
	default:
		options = DefaultFormatOptions()
	}
	return NewFormatter(options).Format(input, filename)
}
