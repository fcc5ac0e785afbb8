package i18n

import "strings"

// Locale identifies a supported UI language.
type Locale string

// Supported locales.
const (
	English Locale = "en"
	Arabic  Locale = "ar"
)

// DefaultLocale is used when nothing better can be negotiated.
const DefaultLocale = English

// Supported lists every locale the site is translated into, default first.
var Supported = []Locale{English, Arabic}

// ParseLocale maps a raw tag ("ar", "AR", "ar-SA") onto a supported locale.
// Unknown values resolve to DefaultLocale.
func ParseLocale(raw string) Locale {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if i := strings.IndexAny(raw, "-_"); i > 0 {
		raw = raw[:i]
	}
	switch Locale(raw) {
	case Arabic:
		return Arabic
	default:
		return English
	}
}

// IsRTL reports whether the locale is written right-to-left.
func (l Locale) IsRTL() bool {
	return l == Arabic
}

// Dir returns the HTML dir attribute for the locale.
func (l Locale) Dir() string {
	if l.IsRTL() {
		return "rtl"
	}
	return "ltr"
}

// LocalizedText holds the same copy in every supported language.
type LocalizedText struct {
	En string `json:"en" firestore:"en"`
	Ar string `json:"ar" firestore:"ar"`
}

// Text builds a LocalizedText from its English and Arabic values.
func Text(en, ar string) LocalizedText {
	return LocalizedText{En: en, Ar: ar}
}

// Resolve returns the text for the locale.
// Fallback order: requested locale, English, Arabic, empty string.
func (t LocalizedText) Resolve(locale Locale) string {
	if locale == Arabic && strings.TrimSpace(t.Ar) != "" {
		return t.Ar
	}
	if strings.TrimSpace(t.En) != "" {
		return t.En
	}
	return t.Ar
}

// IsEmpty reports whether no language carries any text.
func (t LocalizedText) IsEmpty() bool {
	return strings.TrimSpace(t.En) == "" && strings.TrimSpace(t.Ar) == ""
}

// ResolveAll resolves a list of localized values in order.
func ResolveAll(texts []LocalizedText, locale Locale) []string {
	out := make([]string, 0, len(texts))
	for _, t := range texts {
		out = append(out, t.Resolve(locale))
	}
	return out
}
