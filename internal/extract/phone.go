// Package extract pulls UK phone numbers and room-count mentions out of
// scraped page text before any model call. The pre-extraction both feeds
// the model candidate values and serves as the fallback answer when the
// model is unavailable.
package extract

import (
	"regexp"
	"strings"

	"github.com/sells-group/hotelinfo/internal/model"
)

// Phone number types by UK dialling prefix.
const (
	PhoneLandline      = "landline"
	PhoneMobile        = "mobile"
	PhoneNonGeographic = "non_geographic"
	PhoneFreephone     = "freephone"
)

// ukPhoneRe matches UK numbers in national (01273 224300) or international
// (+44 1273 224300, 0044...) form, with optional spaces, dots, dashes or
// bracketed area codes.
var ukPhoneRe = regexp.MustCompile(
	`(?:\+44\s?|0044\s?|\(0\)\s?|0)(?:\(0?\d{2,5}\)|\d{2,5})[\s.\-]?\d{3,4}[\s.\-]?\d{3,4}`)

var phoneDigitsRe = regexp.MustCompile(`\D`)

// normalizePhone converts a raw match to the national digit string starting
// with 0. Returns "" when the digits do not form a plausible UK number.
func normalizePhone(raw string) string {
	digits := phoneDigitsRe.ReplaceAllString(raw, "")

	switch {
	case strings.HasPrefix(digits, "0044"):
		digits = "0" + digits[4:]
	case strings.HasPrefix(digits, "44"):
		digits = "0" + digits[2:]
	}

	// +44 (0)1273 forms leave a doubled leading zero.
	if strings.HasPrefix(digits, "00") {
		digits = digits[1:]
	}

	// UK numbers are 10 or 11 digits including the leading 0.
	if len(digits) < 10 || len(digits) > 11 || !strings.HasPrefix(digits, "0") {
		return ""
	}
	return digits
}

// classifyPhone maps the national prefix to a phone type.
func classifyPhone(national string) string {
	switch {
	case strings.HasPrefix(national, "01"), strings.HasPrefix(national, "02"):
		return PhoneLandline
	case strings.HasPrefix(national, "03"):
		return PhoneNonGeographic
	case strings.HasPrefix(national, "07"):
		return PhoneMobile
	case strings.HasPrefix(national, "08"):
		return PhoneFreephone
	default:
		return ""
	}
}

// formatInternational renders a national number in E.164 form. UK area
// codes vary in length so no grouping is attempted.
func formatInternational(national string) string {
	return "+44" + national[1:]
}

// extractPhones finds unique UK phone numbers in page text. Numbers whose
// prefix cannot be classified (premium-rate, malformed) are dropped.
func extractPhones(page *model.ScrapedPage) []model.ExtractedPhone {
	var out []model.ExtractedPhone
	seen := make(map[string]bool)

	for _, raw := range ukPhoneRe.FindAllString(page.Text, -1) {
		national := normalizePhone(raw)
		if national == "" || seen[national] {
			continue
		}
		phoneType := classifyPhone(national)
		if phoneType == "" {
			continue
		}
		seen[national] = true
		out = append(out, model.ExtractedPhone{
			Number:     formatInternational(national),
			Type:       phoneType,
			SourcePage: page.URL,
		})
	}
	return out
}
