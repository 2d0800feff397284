package risk

import (
	"testing"

	"golang.org/x/text/language"
)

func TestMatchAdvisoryLanguage(t *testing.T) {
	cases := map[string]language.Tag{
		"":               language.English,
		"en-US,en;q=0.9": language.English,
		"zh-CN,zh;q=0.9": language.Chinese,
		"zh-TW":          language.Chinese,
		"fr-FR":          language.English,
		";;;":            language.English,
	}
	for accept, want := range cases {
		if got := MatchAdvisoryLanguage(accept); got != want {
			t.Fatalf("MatchAdvisoryLanguage(%q) = %v, want %v", accept, got, want)
		}
	}
}

func TestAdvisoryPerTier(t *testing.T) {
	seen := make(map[string]bool)
	for _, tier := range []Tier{TierLow, TierModerate, TierHigh} {
		en := Advisory(tier, language.English)
		zh := Advisory(tier, language.Chinese)
		if en == "" || zh == "" {
			t.Fatalf("missing advisory for %v", tier)
		}
		if en == zh {
			t.Fatalf("expected distinct catalogs for %v", tier)
		}
		if seen[en] {
			t.Fatalf("duplicate advisory text for %v", tier)
		}
		seen[en] = true
	}
}

func TestAdvisoryUnknownLanguageFallsBack(t *testing.T) {
	if Advisory(TierHigh, language.French) != Advisory(TierHigh, language.English) {
		t.Fatal("expected English fallback")
	}
}
