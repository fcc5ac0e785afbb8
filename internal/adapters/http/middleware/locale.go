package middleware

import (
	"context"
	"net/http"

	"golang.org/x/text/language"

	"stayfit/internal/domain/i18n"
)

const localeContextKey contextKey = "locale"

// LocaleCookieName persists an explicit ?lang= choice.
const LocaleCookieName = "stayfit_locale"

// supportedTags is ordered like i18n.Supported; the first entry is the fallback.
var supportedTags = []language.Tag{language.English, language.Arabic}

var matcher = language.NewMatcher(supportedTags)

// Locale returns middleware that resolves the request locale.
// Order: ?lang= (persisted in a cookie), the locale cookie, then Accept-Language.
func Locale(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var loc i18n.Locale
			if raw := r.URL.Query().Get("lang"); raw != "" {
				loc = i18n.ParseLocale(raw)
				http.SetCookie(w, &http.Cookie{
					Name:     LocaleCookieName,
					Value:    string(loc),
					Path:     "/",
					MaxAge:   365 * 24 * 60 * 60,
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			} else if c, err := r.Cookie(LocaleCookieName); err == nil && c.Value != "" {
				loc = i18n.ParseLocale(c.Value)
			} else {
				loc = Negotiate(r.Header.Get("Accept-Language"))
			}
			next.ServeHTTP(w, r.WithContext(ContextWithLocale(r.Context(), loc)))
		})
	}
}

// Negotiate picks the best supported locale for an Accept-Language header.
func Negotiate(acceptLanguage string) i18n.Locale {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return i18n.DefaultLocale
	}
	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return i18n.DefaultLocale
	}
	return i18n.ParseLocale(supportedTags[index].String())
}

// LocaleFromContext returns the request locale, defaulting to English.
func LocaleFromContext(ctx context.Context) i18n.Locale {
	if loc, ok := ctx.Value(localeContextKey).(i18n.Locale); ok {
		return loc
	}
	return i18n.DefaultLocale
}

// ContextWithLocale returns a context carrying loc.
func ContextWithLocale(ctx context.Context, loc i18n.Locale) context.Context {
	return context.WithValue(ctx, localeContextKey, loc)
}
