package constants

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

const (
	DefaultSourceLang = "gu"
	DefaultTargetLang = "en"
)

// native spellings used on rendered documents; everything else comes from CLDR
var nativeNames = map[string]string{
	"gu": "ગુજરાતી (Gujarati)",
	"hi": "हिन्दी (Hindi)",
	"en": "English",
}

// CanonicalLang parses a language code ("GU", "gu-IN") into its base form ("gu").
func CanonicalLang(input string) (string, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", false
	}
	tag, err := language.Parse(input)
	if err != nil {
		return "", false
	}
	base, conf := tag.Base()
	if conf == language.No {
		return "", false
	}
	return base.String(), true
}

// LanguageName returns a display name for code, falling back to the upper-cased code.
func LanguageName(code string) string {
	if n, ok := nativeNames[strings.ToLower(code)]; ok {
		return n
	}
	tag, err := language.Parse(code)
	if err != nil {
		return strings.ToUpper(code)
	}
	if n := display.English.Languages().Name(tag); n != "" {
		return n
	}
	return strings.ToUpper(code)
}
