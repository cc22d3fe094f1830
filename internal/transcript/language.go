package transcript

import (
	"regexp"
	"strings"
)

// DefaultLanguage is used when the caller does not ask for a language.
const DefaultLanguage = "en"

// FallbackLanguages is the fixed order consulted when the requested language has no track.
// Ordered by global reach of the language; never mutated.
var FallbackLanguages = []string{
	"en", "zh", "es", "hi", "ar", "pt", "ru", "ja", "fr", "de",
	"ko", "it", "tr", "nl", "pl", "vi", "th", "id", "ms", "fa",
	"ur", "bn", "he", "fil", "sv", "el", "cs", "hu", "da", "no",
	"fi", "ro", "uk", "sr",
}

// languageAliases maps legacy or alternate codes YouTube still emits to their canonical key.
var languageAliases = map[string]string{
	"iw": "he",
	"in": "id",
	"nb": "no",
	"tl": "fil",
}

var languageCodeRE = regexp.MustCompile(`^[A-Za-z]{2,3}([-_.][A-Za-z0-9]{1,8})*$`)

// ValidLanguageCode reports whether code looks like a BCP-47-ish caption language code
// ("en", "pt-BR", "zh-Hans", "fil").
func ValidLanguageCode(code string) bool {
	return languageCodeRE.MatchString(code)
}

// BaseLanguage reduces a raw caption code to its language key.
//
//	"en"      → "en"
//	"a.en"    → "en"  (ASR prefix)
//	".en-US"  → "en"  (vssId form, regional)
//	"zh-Hans" → "zh"
//	"iw"      → "he"  (legacy alias)
func BaseLanguage(code string) string {
	c := strings.ToLower(strings.TrimSpace(code))
	c = strings.TrimPrefix(c, "a.")
	c = strings.TrimPrefix(c, ".")
	if i := strings.IndexAny(c, "-_."); i >= 0 {
		c = c[:i]
	}
	if alias, ok := languageAliases[c]; ok {
		return alias
	}
	return c
}
