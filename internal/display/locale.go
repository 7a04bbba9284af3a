package display

import (
	"net/http"
	"strings"

	"golang.org/x/text/language"
)

// LangParam is the query parameter used to select a display locale.
const LangParam = "lang"

// ParseTag parses a BCP 47 locale such as "en-US" or "de".
func ParseTag(value string) (language.Tag, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return language.Und, false
	}
	tag, err := language.Parse(value)
	if err != nil {
		return language.Und, false
	}
	return tag, true
}

// ResolveTag determines the display locale for the request: the lang query
// parameter, then Accept-Language, then fallback.
func ResolveTag(r *http.Request, fallback language.Tag) language.Tag {
	if r == nil {
		return fallback
	}

	if tag, ok := ParseTag(r.URL.Query().Get(LangParam)); ok {
		return tag
	}

	if accept := strings.TrimSpace(r.Header.Get("Accept-Language")); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil && len(tags) > 0 {
			return tags[0]
		}
	}

	return fallback
}
