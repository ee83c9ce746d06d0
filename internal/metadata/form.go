package metadata

import (
	"regexp"
	"unicode/utf8"
)

// Patterns shared by form descriptors. Validation patterns match a whole
// value; charset patterns match one typed character.
var (
	RegexWordOnly   = regexp.MustCompile(`^[a-zA-Z]+$`)
	RegexAlpha      = regexp.MustCompile(`^[a-zA-Z ]+$`)
	RegexAlphaCh    = regexp.MustCompile(`^[a-zA-Z ]$`)
	RegexNum        = regexp.MustCompile(`^[0-9]+$`)
	RegexNumCh      = regexp.MustCompile(`^[0-9]$`)
	RegexDecimal    = regexp.MustCompile(`^-?[0-9]+(\.[0-9]+)?$`)
	RegexDecimalCh  = regexp.MustCompile(`^[-0-9.]$`)
	RegexPrice      = regexp.MustCompile(`^[0-9]+(\.[0-9]{1,2})?$`)
	RegexPriceCh    = regexp.MustCompile(`^[0-9.]$`)
	RegexText       = regexp.MustCompile(`^[^\p{Cc}]+$`)
	RegexTextCh     = regexp.MustCompile(`^[^\p{Cc}]$`)
	RegexHex64      = regexp.MustCompile(`^[0-9a-f]{64}$`)
	RegexHexCh      = regexp.MustCompile(`^[0-9a-f]$`)
	RegexNoSpace    = regexp.MustCompile(`^\S+$`)
	RegexNoSpaceCh  = regexp.MustCompile(`^\S$`)
	RegexProfile    = regexp.MustCompile(`^[a-zA-Z0-9._-]{1,64}$`)
	RegexProfileCh  = regexp.MustCompile(`^[a-zA-Z0-9._-]$`)
	RegexCurrency   = regexp.MustCompile(`^[a-zA-Z]{3}$`)
	RegexCurrencyCh = RegexWordOnly
)

// Form drives an editable input for one field.
type Form struct {
	Label       string
	Placeholder string
	Validation  *regexp.Regexp
	Charset     *regexp.Regexp
	Hidden      bool
	Default     any
}

func defaultForm(f FieldDef) Form {
	switch f.Type {
	case TypeInteger:
		return Form{Validation: RegexNum, Charset: RegexNumCh}
	case TypeNumber:
		return Form{Validation: RegexDecimal, Charset: RegexDecimalCh}
	case TypeEnum:
		return Form{Validation: RegexWordOnly, Charset: RegexWordOnly, Default: f.Fallback}
	default:
		return Form{Validation: RegexText, Charset: RegexTextCh}
	}
}

// FormField is the rendering-agnostic view of a field handed to UI code.
type FormField struct {
	Name        string    `json:"name"`
	Type        FieldType `json:"type"`
	Label       string    `json:"label,omitempty"`
	Placeholder string    `json:"placeholder,omitempty"`
	Validation  string    `json:"validation"`
	Charset     string    `json:"charset"`
	Optional    bool      `json:"optional"`
	Hidden      bool      `json:"hidden,omitempty"`
	Options     []string  `json:"options,omitempty"`
	Default     any       `json:"default,omitempty"`
}

// FormFields returns the form descriptors in field order.
func (d *EntityDef) FormFields() []FormField {
	out := make([]FormField, 0, len(d.Fields))
	for _, f := range d.Fields {
		ff := FormField{
			Name:        f.Name,
			Type:        f.Type,
			Label:       f.Form.Label,
			Placeholder: f.Form.Placeholder,
			Optional:    !f.Required,
			Hidden:      f.Form.Hidden,
			Options:     f.Options,
			Default:     f.Form.Default,
		}
		if f.Form.Validation != nil {
			ff.Validation = f.Form.Validation.String()
		}
		if f.Form.Charset != nil {
			ff.Charset = f.Form.Charset.String()
		}
		out = append(out, ff)
	}
	return out
}

// FormDefaults returns a blank value for every field, used to seed an
// editable form before user input.
func (d *EntityDef) FormDefaults() map[string]string {
	vals := make(map[string]string, len(d.Fields))
	for _, f := range d.Fields {
		vals[f.Name] = ""
	}
	return vals
}

// FormKey reports whether name is an editable field of d.
func (d *EntityDef) FormKey(name string) (string, bool) {
	if _, ok := d.Field(name); !ok {
		return "", false
	}
	return name, true
}

// Accepts reports whether a complete form value satisfies the field's
// validation pattern. Blank optional values are accepted.
func (f FieldDef) Accepts(value string) bool {
	if value == "" {
		return !f.Required
	}
	if f.Form.Validation == nil {
		return true
	}
	return f.Form.Validation.MatchString(value)
}

// AcceptsKey reports whether one typed character belongs to the field's
// charset, for incremental input filtering.
func (f FieldDef) AcceptsKey(ch string) bool {
	if utf8.RuneCountInString(ch) != 1 {
		return false
	}
	if f.Form.Charset == nil {
		return true
	}
	return f.Form.Charset.MatchString(ch)
}
