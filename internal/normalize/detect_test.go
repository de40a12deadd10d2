// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import "testing"

func TestLooksAbbreviated(t *testing.T) {
	tests := []struct {
		term string
		want bool
	}{
		{"HMB", true},
		{"NAC", true},
		{"BCAA", true},
		{"CoQ10", true},
		{"5-HTP", true},
		{"coq10", true}, // letters+digits counts even lowercased
		{"creatine", false},
		{"vitamin d", false}, // contains a space
		{"hmb", false},       // lowercase letters only
		{"MAGNESIUM", false}, // too long for an acronym
		{"", false},
		{"B12", true},
		{"nac!", false}, // punctuation disqualifies
	}
	for _, tt := range tests {
		if got := looksAbbreviated(tt.term); got != tt.want {
			t.Errorf("looksAbbreviated(%q) = %v, want %v", tt.term, got, tt.want)
		}
	}
}

func TestLooksNonEnglish(t *testing.T) {
	tests := []struct {
		term string
		want bool
	}{
		{"creatina", true},
		{"magnesio", true},
		{"cafeína", true},
		{"cúrcuma", true},
		{"proteína de suero", true},
		{"creatine", false},
		{"vitamin d", false},
		{"fish oil", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := looksNonEnglish(tt.term); got != tt.want {
			t.Errorf("looksNonEnglish(%q) = %v, want %v", tt.term, got, tt.want)
		}
	}
}

func TestBaseIngredient(t *testing.T) {
	tests := []struct {
		term string
		want string
	}{
		{"creatine monohydrate", "creatine"},
		{"magnesium l-threonate", "magnesium"},
		{"zinc picolinate", "zinc"},
		{"berberine hcl", "berberine"},
		{"green tea extract", "green tea"},
		{"creatine", "creatine"},
		{"Ashwagandha", "ashwagandha"},
		{"monohydrate", "monohydrate"}, // nothing left, return input
	}
	for _, tt := range tests {
		if got := BaseIngredient(tt.term); got != tt.want {
			t.Errorf("BaseIngredient(%q) = %q, want %q", tt.term, got, tt.want)
		}
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		term string
		want string
	}{
		{"creatine supplement", "creatine"},
		{"Creatine Supplement", "Creatine"},
		{"magnesium supplements", "magnesium"},
		{"creatine supplementation", "creatine"},
		{"  creatine   monohydrate  ", "creatine monohydrate"},
		{"supplement", "supplement"}, // no leading space, not a suffix
		{"", ""},
	}
	for _, tt := range tests {
		if got := sanitize(tt.term); got != tt.want {
			t.Errorf("sanitize(%q) = %q, want %q", tt.term, got, tt.want)
		}
	}
}
