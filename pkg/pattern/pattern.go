package pattern

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrInvalidPattern is returned when a filename pattern cannot be compiled.
	ErrInvalidPattern = errors.New("invalid pattern")

	// ErrInvalidRegex is returned when a verbatim regex override cannot be compiled.
	ErrInvalidRegex = errors.New("invalid regex")
)

// FieldKind describes what a placeholder is allowed to capture.
type FieldKind string

const (
	KindLiteral FieldKind = "literal"
	KindEnum    FieldKind = "enum"
	KindNumeric FieldKind = "numeric"
	KindRange   FieldKind = "range"
	KindDate    FieldKind = "date"
	KindText    FieldKind = "text"
)

// DisciplineCodes is the canonical set of IDM discipline sheet codes. It is
// the default value set for the `Discipline` placeholder; stage requirements
// narrow it further during validation.
var DisciplineCodes = []string{
	"GN", "TS", "PL", "RD", "XS", "TMP", "BR", "DR", "SG", "LT", "MK", "UT", "RW", "EL",
}

// StageNames is the default value set for the `Stage` placeholder.
var StageNames = []string{"Stage1", "Stage2", "Stage3", "Final"}

// Field is one placeholder in a compiled pattern.
type Field struct {
	// Name is the placeholder name, e.g. "Discipline".
	Name string `json:"name"`
	// Kind determines the character class used for matching.
	Kind FieldKind `json:"kind"`
	// Values holds the known values for enum fields.
	Values []string `json:"values,omitempty"`

	class string // Regex fragment override for builtin fields.
}

// builtinFields maps placeholder names to their field kinds. Placeholders not
// listed here default to free text bounded by the next literal segment.
var builtinFields = map[string]Field{
	"Des":        {Name: "Des", Kind: KindNumeric},
	"Stage":      {Name: "Stage", Kind: KindEnum, Values: StageNames},
	"Discipline": {Name: "Discipline", Kind: KindEnum, Values: DisciplineCodes},
	"SheetType":  {Name: "SheetType", Kind: KindText},
	"SheetRange": {Name: "SheetRange", Kind: KindRange},
	"Number":     {Name: "Number", Kind: KindNumeric},
	"Date":       {Name: "Date", Kind: KindDate},
	"Ext":        {Name: "Ext", Kind: KindText, class: `[A-Za-z0-9]+`},
}

// Pattern is a compiled filename rule. It is immutable after compilation;
// compiling the same pattern string twice yields behaviorally identical
// matchers, so patterns are safe to cache and share across goroutines.
type Pattern struct {
	re *regexp.Regexp

	// Source is the original pattern string.
	Source string `json:"source"`
	// Fields lists the placeholders in order of appearance.
	Fields []Field `json:"fields"`
	// Exceptions are literal filenames that bypass the pattern and always match.
	Exceptions []string `json:"exceptions,omitempty"`
}

// Result is a successful match: the placeholder values extracted from a
// filename, or an exception hit with no extracted fields.
type Result struct {
	// Fields maps placeholder names to matched substrings.
	Fields map[string]string
	// Exception reports whether the filename matched via the exceptions list.
	Exception bool
}

// Opt configures pattern compilation.
type Opt func(*compileOptions)

type compileOptions struct {
	enums           map[string][]string
	exceptions      []string
	caseInsensitive bool
}

// WithEnumValues overrides the known values for an enum placeholder, or turns
// any placeholder into an enum of the given values.
func WithEnumValues(field string, values ...string) Opt {
	return func(o *compileOptions) {
		if o.enums == nil {
			o.enums = map[string][]string{}
		}
		o.enums[field] = values
	}
}

// WithExceptions sets literal filenames that bypass the pattern.
func WithExceptions(names ...string) Opt {
	return func(o *compileOptions) {
		o.exceptions = names
	}
}

// WithCaseInsensitive makes the compiled matcher ignore case.
func WithCaseInsensitive() Opt {
	return func(o *compileOptions) {
		o.caseInsensitive = true
	}
}

// Compile turns a filename pattern with `{Field}` placeholders into a
// [Pattern]. Literal segments match verbatim; placeholders capture according
// to their field kind. Compilation is deterministic and has no side effects.
//
// Compile fails with [ErrInvalidPattern] when the pattern has unbalanced
// placeholder delimiters, duplicate field names, or two adjacent placeholders
// that cannot be separated (only an enum placeholder may directly precede
// another placeholder, since its fixed alternatives act as the separator).
func Compile(src string, opts ...Opt) (*Pattern, error) {
	o := &compileOptions{}
	for _, opt := range opts {
		opt(o)
	}

	segs, err := tokenize(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidPattern, src, err)
	}

	var (
		sb     strings.Builder
		fields []Field
		seen   = map[string]bool{}
	)

	if o.caseInsensitive {
		sb.WriteString(`(?i)`)
	}
	sb.WriteString(`^`)

	for i, seg := range segs {
		if !seg.placeholder {
			sb.WriteString(regexp.QuoteMeta(seg.text))
			continue
		}

		if seen[seg.text] {
			return nil, fmt.Errorf("%w: %q: duplicate field %q", ErrInvalidPattern, src, seg.text)
		}
		seen[seg.text] = true

		f := lookupField(seg.text, o.enums)

		if i > 0 && segs[i-1].placeholder {
			prev := fields[len(fields)-1]
			if prev.Kind != KindEnum {
				return nil, fmt.Errorf(
					"%w: %q: placeholders %q and %q need a literal separator",
					ErrInvalidPattern, src, prev.Name, seg.text)
			}
		}

		last := i == len(segs)-1
		sb.WriteString(fmt.Sprintf(`(?P<%s>%s)`, f.Name, fieldClass(f, last)))
		fields = append(fields, f)
	}

	sb.WriteString(`$`)

	re, err := regexp.Compile(sb.String())
	if err != nil {
		// Field names reaching here are already identifier-safe, so this only
		// triggers on values injected through WithEnumValues.
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidPattern, src, err)
	}

	return &Pattern{
		re:         re,
		Source:     src,
		Fields:     fields,
		Exceptions: append([]string(nil), o.exceptions...),
	}, nil
}

// MustCompile is like [Compile] but panics on error. Intended for the
// built-in catalog and tests.
func MustCompile(src string, opts ...Opt) *Pattern {
	p, err := Compile(src, opts...)
	if err != nil {
		panic(err)
	}

	return p
}

// FromRegexp builds a [Pattern] from a verbatim regular expression, used when
// a convention supplies `regex:` to override the generated matcher. Named
// capture groups become free-text fields.
func FromRegexp(src, expr string, opts ...Opt) (*Pattern, error) {
	o := &compileOptions{}
	for _, opt := range opts {
		opt(o)
	}

	if o.caseInsensitive && !strings.HasPrefix(expr, `(?i)`) {
		expr = `(?i)` + expr
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidRegex, expr, err)
	}

	var fields []Field
	for _, name := range re.SubexpNames() {
		if name == "" {
			continue
		}

		fields = append(fields, Field{Name: name, Kind: KindText})
	}

	return &Pattern{
		re:         re,
		Source:     src,
		Fields:     fields,
		Exceptions: append([]string(nil), o.exceptions...),
	}, nil
}

// Match reports whether name satisfies the pattern, and on success returns
// the extracted field values. Exception filenames match exactly (by byte
// comparison) with no extracted fields.
func (p *Pattern) Match(name string) (Result, bool) {
	for _, exc := range p.Exceptions {
		if name == exc {
			return Result{Exception: true}, true
		}
	}

	m := p.re.FindStringSubmatch(name)
	if m == nil {
		return Result{}, false
	}

	fields := make(map[string]string, len(p.Fields))
	for i, groupName := range p.re.SubexpNames() {
		if groupName == "" || i >= len(m) {
			continue
		}

		fields[groupName] = m[i]
	}

	return Result{Fields: fields}, true
}

// MatchesExceptionFold reports whether name equals one of the exception
// filenames ignoring case. Used to soften naming issues for files that are
// evidently intended exceptions with the wrong casing.
func (p *Pattern) MatchesExceptionFold(name string) bool {
	for _, exc := range p.Exceptions {
		if strings.EqualFold(name, exc) {
			return true
		}
	}

	return false
}

type segment struct {
	text        string
	placeholder bool
}

// tokenize splits a pattern into alternating literal and placeholder
// segments, rejecting unbalanced or empty placeholders.
func tokenize(src string) ([]segment, error) {
	var (
		segs    []segment
		literal strings.Builder
	)

	for i := 0; i < len(src); i++ {
		switch src[i] {
		case '{':
			end := strings.IndexByte(src[i:], '}')
			if end < 0 {
				return nil, errors.New("unbalanced '{'")
			}

			name := src[i+1 : i+end]
			if name == "" {
				return nil, errors.New("empty placeholder")
			}
			if strings.ContainsAny(name, "{}") {
				return nil, errors.New("nested placeholder delimiters")
			}
			if !validFieldName(name) {
				return nil, fmt.Errorf("invalid field name %q", name)
			}

			if literal.Len() > 0 {
				segs = append(segs, segment{text: literal.String()})
				literal.Reset()
			}

			segs = append(segs, segment{text: name, placeholder: true})
			i += end

		case '}':
			return nil, errors.New("unbalanced '}'")

		default:
			literal.WriteByte(src[i])
		}
	}

	if literal.Len() > 0 {
		segs = append(segs, segment{text: literal.String()})
	}

	if len(segs) == 0 {
		return nil, errors.New("empty pattern")
	}

	return segs, nil
}

func validFieldName(name string) bool {
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}

	return true
}

// lookupField resolves a placeholder name against the builtin table and any
// enum overrides. Unknown names default to free text.
func lookupField(name string, enums map[string][]string) Field {
	f, ok := builtinFields[name]
	if !ok {
		f = Field{Name: name, Kind: KindText}
	}

	if values, ok := enums[name]; ok {
		f.Kind = KindEnum
		f.Values = values
		f.class = ""
	}

	return f
}

// fieldClass returns the regex fragment for a field. Free text is non-greedy
// so it stays bounded by the next literal segment, except in final position
// where it runs to the end of the name.
func fieldClass(f Field, last bool) string {
	if f.class != "" {
		return f.class
	}

	switch f.Kind {
	case KindEnum:
		quoted := make([]string, len(f.Values))
		for i, v := range f.Values {
			quoted[i] = regexp.QuoteMeta(v)
		}

		return strings.Join(quoted, "|")

	case KindNumeric:
		return `[0-9]+`

	case KindRange:
		return `[0-9]+(?:-[0-9]+)?`

	case KindDate:
		return `[0-9]{4}-?[0-9]{2}-?[0-9]{2}`

	case KindLiteral, KindText:
	}

	if last {
		return `.+`
	}

	return `.+?`
}
