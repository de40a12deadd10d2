// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"strings"
	"unicode"
)

// looksAbbreviated reports whether the term is likely a supplement
// abbreviation: a short token with no spaces that is either all caps
// (2-5 letters) or a letters+digits compound like "CoQ10" or "5-HTP".
func looksAbbreviated(term string) bool {
	if strings.ContainsAny(term, " \t") || len(term) > 10 || term == "" {
		return false
	}

	letters, digits, upper := 0, 0, 0
	for _, r := range term {
		switch {
		case unicode.IsLetter(r):
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		case unicode.IsDigit(r):
			digits++
		case r == '-':
		default:
			return false
		}
	}

	if letters >= 2 && letters <= 5 && upper == letters && digits == 0 {
		return true
	}
	return letters >= 1 && digits >= 1
}

// nonEnglishEndings are morphological endings common in Spanish and
// Portuguese supplement names ("creatina", "magnesio", "cafeína").
var nonEnglishEndings = []string{
	"ina", "inas", "óleo", "ácido", "acido",
	"io", "ías", "ína", "inha", "eira",
}

// looksNonEnglish reports whether the term is likely not English, via
// diacritics or common Spanish/Portuguese morphological endings.
func looksNonEnglish(term string) bool {
	lower := strings.ToLower(term)

	for _, r := range lower {
		switch r {
		case 'á', 'é', 'í', 'ó', 'ú', 'ñ', 'ã', 'õ', 'ç', 'ü':
			return true
		}
	}

	for _, word := range strings.Fields(lower) {
		for _, suffix := range nonEnglishEndings {
			if len(word) > len(suffix)+1 && strings.HasSuffix(word, suffix) {
				return true
			}
		}
	}
	return false
}

// formSuffixes are chemical-form qualifiers that narrow a base ingredient
// ("creatine monohydrate", "magnesium l-threonate").
var formSuffixes = map[string]bool{
	"monohydrate":   true,
	"hydrochloride": true,
	"hcl":           true,
	"citrate":       true,
	"picolinate":    true,
	"bisglycinate":  true,
	"glycinate":     true,
	"malate":        true,
	"gluconate":     true,
	"sulfate":       true,
	"oxide":         true,
	"carbonate":     true,
	"threonate":     true,
	"l-threonate":   true,
	"aspartate":     true,
	"orotate":       true,
	"taurate":       true,
	"phosphate":     true,
	"extract":       true,
}

// BaseIngredient strips chemical-form suffixes, leaving the broadest
// base-ingredient term. It returns the input unchanged when nothing can be
// stripped.
func BaseIngredient(term string) string {
	words := strings.Fields(strings.ToLower(term))
	var kept []string
	for _, w := range words {
		if formSuffixes[w] {
			continue
		}
		kept = append(kept, w)
	}
	if len(kept) == 0 {
		return strings.TrimSpace(term)
	}
	return strings.Join(kept, " ")
}

// sanitize collapses whitespace and removes the redundant
// "supplement"/"supplementation" qualifier users often type.
func sanitize(term string) string {
	term = strings.Join(strings.Fields(term), " ")
	lower := strings.ToLower(term)
	for _, suffix := range []string{" supplementation", " supplements", " supplement"} {
		if strings.HasSuffix(lower, suffix) {
			term = term[:len(term)-len(suffix)]
			lower = strings.ToLower(term)
		}
	}
	return strings.TrimSpace(term)
}
