package i18n_test

import (
	"testing"

	"stayfit/internal/domain/i18n"
)

// TestLocalizedText_Resolve tests the locale fallback order.
func TestLocalizedText_Resolve(t *testing.T) {
	tests := []struct {
		name   string
		text   i18n.LocalizedText
		locale i18n.Locale
		want   string
	}{
		{"english requested", i18n.Text("Hello", "مرحبا"), i18n.English, "Hello"},
		{"arabic requested", i18n.Text("Hello", "مرحبا"), i18n.Arabic, "مرحبا"},
		{"arabic missing falls back to english", i18n.Text("Hello", ""), i18n.Arabic, "Hello"},
		{"english missing falls back to arabic", i18n.Text("", "مرحبا"), i18n.English, "مرحبا"},
		{"blank arabic falls back", i18n.Text("Hello", "   "), i18n.Arabic, "Hello"},
		{"both empty", i18n.LocalizedText{}, i18n.Arabic, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.text.Resolve(tt.locale); got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.locale, got, tt.want)
			}
		})
	}
}

// TestParseLocale tests normalisation of raw language tags.
func TestParseLocale(t *testing.T) {
	tests := map[string]i18n.Locale{
		"ar":    i18n.Arabic,
		"AR":    i18n.Arabic,
		"ar-SA": i18n.Arabic,
		"en":    i18n.English,
		"en_GB": i18n.English,
		"fr":    i18n.English,
		"":      i18n.English,
	}
	for raw, want := range tests {
		if got := i18n.ParseLocale(raw); got != want {
			t.Errorf("ParseLocale(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestLocale_Dir(t *testing.T) {
	if i18n.Arabic.Dir() != "rtl" {
		t.Errorf("Arabic.Dir() = %q, want rtl", i18n.Arabic.Dir())
	}
	if i18n.English.Dir() != "ltr" {
		t.Errorf("English.Dir() = %q, want ltr", i18n.English.Dir())
	}
}

// TestT_MissingKey verifies missing catalog keys are rendered verbatim.
func TestT_MissingKey(t *testing.T) {
	if got := i18n.T(i18n.Arabic, "no.such.key"); got != "no.such.key" {
		t.Errorf("T(missing) = %q, want key", got)
	}
	if got := i18n.T(i18n.Arabic, "nav.pricing"); got != "الأسعار" {
		t.Errorf("T(nav.pricing) = %q", got)
	}
}
