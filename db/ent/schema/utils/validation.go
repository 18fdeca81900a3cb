package utils

import (
	"fmt"
	"strings"

	"github.com/joseph-ayodele/legal-translator/constants"
)

// EnumValidator accepts exactly the listed values.
func EnumValidator(allowed ...string) func(string) error {
	set := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		set[a] = struct{}{}
	}
	return func(s string) error {
		if _, ok := set[s]; !ok {
			return fmt.Errorf("%q is not one of [%s]", s, strings.Join(allowed, ", "))
		}
		return nil
	}
}

// LanguageValidator accepts BCP 47 tags already in canonical form ("gu", not "GU").
func LanguageValidator(s string) error {
	c, ok := constants.CanonicalLang(s)
	if !ok {
		return fmt.Errorf("%q is not a language tag", s)
	}
	if c != s {
		return fmt.Errorf("language %q must be stored as %q", s, c)
	}
	return nil
}
