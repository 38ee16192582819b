package advisor

import (
	"regexp"
	"strings"
)

// complexSignals are long-horizon planning phrases. Each counts once when present.
var complexSignals = []string{
	"long-term",
	"long term",
	"mid game",
	"late game",
	"campaign",
	"roadmap",
	"plan",
	"trade-off",
	"tradeoff",
	"optimize",
	"contingency",
	"fallback",
	"if ",
	"risk",
	"timeline",
	"5 year",
	"10 year",
	"15 year",
	"30 year",
}

var separatorPattern = regexp.MustCompile(`\b(and|while|versus|vs\.?|with)\b`)

// longMessageWords is the word count at which a message counts as complex on length alone.
const longMessageWords = 20

// IsComplex reports whether text reads like a multi-constraint or long-horizon request:
// two or more signal phrases, separators, or commas and semicolons, or a long message.
func IsComplex(text string) bool {
	lower := strings.ToLower(text)

	signals := 0
	for _, s := range complexSignals {
		if strings.Contains(lower, s) {
			signals++
		}
	}
	separators := len(separatorPattern.FindAllString(lower, -1))
	punctuation := strings.Count(lower, ",") + strings.Count(lower, ";")
	long := len(strings.Fields(lower)) >= longMessageWords

	return signals >= 2 || separators >= 2 || punctuation >= 2 || long
}
