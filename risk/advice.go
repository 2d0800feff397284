package risk

import "golang.org/x/text/language"

var advisories = map[language.Tag]map[Tier]string{
	language.English: {
		TierLow:      "Please continue to maintain a healthy lifestyle and attend regular follow-up visits.",
		TierModerate: "It is advised to monitor your condition closely and consider preventive interventions.",
		TierHigh:     "It is recommended to consult a physician promptly and take proactive medical measures.",
	},
	language.Chinese: {
		TierLow:      "请继续保持健康的生活方式，并定期随访复查。",
		TierModerate: "建议密切监测病情变化，并考虑采取预防性干预措施。",
		TierHigh:     "建议尽快咨询医生，并积极采取医疗措施。",
	},
}

var advisoryMatcher = language.NewMatcher([]language.Tag{
	language.English, // fallback
	language.Chinese,
})

// MatchAdvisoryLanguage resolves an Accept-Language header to one of the
// supported advisory languages. Empty or unparseable input falls back to
// English.
func MatchAdvisoryLanguage(acceptLanguage string) language.Tag {
	if acceptLanguage == "" {
		return language.English
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil {
		return language.English
	}
	_, index, _ := advisoryMatcher.Match(tags...)
	switch index {
	case 1:
		return language.Chinese
	default:
		return language.English
	}
}

// Advisory returns the fixed guidance text for a tier.
func Advisory(tier Tier, lang language.Tag) string {
	catalog, ok := advisories[lang]
	if !ok {
		catalog = advisories[language.English]
	}
	return catalog[tier]
}
