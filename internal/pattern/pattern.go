// # internal/pattern/pattern.go
package pattern

import (
	"strconv"
	"strings"

	"github.com/gobwas/glob"

	"importlens/internal/value"
)

// Segment is one piece of a request pattern: either literal text or a
// dynamic hole whose content is only known at runtime.
type Segment struct {
	Literal string
	Dynamic bool
}

// Pattern is a request string with zero or more dynamic holes, e.g.
// `./locale/<dynamic>.json` for require("./locale/" + lang + ".json").
type Pattern struct {
	Segments []Segment
}

// FromValue derives the request patterns a settled value can describe.
// Alternatives expand to one pattern each; values that cannot contribute to
// a request string become fully dynamic patterns.
func FromValue(v value.Value) []Pattern {
	switch v := v.(type) {
	case *value.Alternatives:
		patterns := make([]Pattern, 0, len(v.Values))
		for _, alt := range v.Values {
			patterns = append(patterns, FromValue(alt)...)
		}
		return patterns
	case *value.URL:
		return FromValue(v.Inner)
	}
	return []Pattern{singleFromValue(v)}
}

func singleFromValue(v value.Value) Pattern {
	switch v := v.(type) {
	case *value.Constant:
		return Pattern{Segments: []Segment{{Literal: constantText(v)}}}
	case *value.Concat:
		return fromParts(v.Parts)
	case *value.Add:
		return fromParts(v.Parts)
	}
	return Pattern{Segments: []Segment{{Dynamic: true}}}
}

func fromParts(parts []value.Value) Pattern {
	segments := make([]Segment, 0, len(parts))
	for _, part := range parts {
		if c, ok := part.(*value.Constant); ok {
			segments = append(segments, Segment{Literal: constantText(c)})
			continue
		}
		segments = append(segments, Segment{Dynamic: true})
	}
	return Pattern{Segments: normalize(segments)}
}

// normalize merges adjacent literals and collapses adjacent dynamic holes.
func normalize(segments []Segment) []Segment {
	out := make([]Segment, 0, len(segments))
	for _, s := range segments {
		if len(out) > 0 {
			last := &out[len(out)-1]
			if !last.Dynamic && !s.Dynamic {
				last.Literal += s.Literal
				continue
			}
			if last.Dynamic && s.Dynamic {
				continue
			}
		}
		out = append(out, s)
	}
	return out
}

func constantText(c *value.Constant) string {
	switch c.Kind {
	case value.StrConstant:
		return c.Str
	case value.NumConstant:
		return strconv.FormatFloat(c.Num, 'g', -1, 64)
	default:
		return strconv.FormatBool(c.Bool)
	}
}

func (p Pattern) IsConstant() bool {
	return len(p.Segments) == 1 && !p.Segments[0].Dynamic
}

// Constant returns the literal request of a constant pattern.
func (p Pattern) Constant() (string, bool) {
	if !p.IsConstant() {
		return "", false
	}
	return p.Segments[0].Literal, true
}

// HasPrefix reports whether the pattern's leading literal starts with prefix.
func (p Pattern) HasPrefix(prefix string) bool {
	if len(p.Segments) == 0 || p.Segments[0].Dynamic {
		return false
	}
	return strings.HasPrefix(p.Segments[0].Literal, prefix)
}

// FullyDynamic reports whether the pattern carries no literal text at all,
// i.e. nothing a resolver could anchor a search on.
func (p Pattern) FullyDynamic() bool {
	for _, s := range p.Segments {
		if !s.Dynamic && s.Literal != "" {
			return false
		}
	}
	return true
}

// GlobString renders the pattern with `*` holes. Dynamic holes do not cross
// path separators, mirroring how interpolated requests address one
// directory level.
func (p Pattern) GlobString() string {
	var b strings.Builder
	for _, s := range p.Segments {
		if s.Dynamic {
			b.WriteString("*")
			continue
		}
		b.WriteString(escapeGlob(s.Literal))
	}
	return b.String()
}

// Compile builds a matcher for the pattern with '/' as the separator.
func (p Pattern) Compile() (glob.Glob, error) {
	return glob.Compile(p.GlobString(), '/')
}

func (p Pattern) String() string {
	var b strings.Builder
	for _, s := range p.Segments {
		if s.Dynamic {
			b.WriteString("<dynamic>")
			continue
		}
		b.WriteString(s.Literal)
	}
	return b.String()
}

func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '{', '}', ',', '\\':
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
