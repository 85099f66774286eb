package utils

import (
	"strings"

	"golang.org/x/text/language"
)

// DefaultLocale is used when neither the query nor the header names a
// supported language.
const DefaultLocale = "en"

// SupportedLocales lists the locales with server-side translations, in
// matcher priority order.
var SupportedLocales = []string{"en", "zh"}

var localeMatcher = func() language.Matcher {
	tags := make([]language.Tag, 0, len(SupportedLocales))
	for _, l := range SupportedLocales {
		tags = append(tags, language.MustParse(l))
	}
	return language.NewMatcher(tags)
}()

// DetermineLocale resolves the locale for a request. An explicit query
// value wins over Accept-Language; unsupported values fall back to
// DefaultLocale.
func DetermineLocale(queryLang, acceptLang string) string {
	if q := strings.TrimSpace(queryLang); q != "" {
		if tag, err := language.Parse(q); err == nil {
			if l, ok := match(tag); ok {
				return l
			}
		}
	}
	if tags, _, err := language.ParseAcceptLanguage(acceptLang); err == nil && len(tags) > 0 {
		if l, ok := match(tags...); ok {
			return l
		}
	}
	return DefaultLocale
}

func match(tags ...language.Tag) (string, bool) {
	_, idx, conf := localeMatcher.Match(tags...)
	if conf == language.No {
		return "", false
	}
	return SupportedLocales[idx], true
}
