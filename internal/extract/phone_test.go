package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/hotelinfo/internal/model"
)

func textPage(text string) *model.ScrapedPage {
	return &model.ScrapedPage{URL: "https://grandhotel.co.uk/contact", Text: text}
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"01273 224300", "01273224300"},
		{"01273-224-300", "01273224300"},
		{"+44 1273 224300", "01273224300"},
		{"+44 (0)1273 224300", "01273224300"},
		{"0044 1273 224300", "01273224300"},
		{"020 7123 4567", "02071234567"},
		{"07700 900123", "07700900123"},
		{"12345", ""},
		{"999999999999999", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizePhone(tt.raw), "raw=%q", tt.raw)
	}
}

func TestClassifyPhone(t *testing.T) {
	assert.Equal(t, PhoneLandline, classifyPhone("01273224300"))
	assert.Equal(t, PhoneLandline, classifyPhone("02071234567"))
	assert.Equal(t, PhoneNonGeographic, classifyPhone("03451234567"))
	assert.Equal(t, PhoneMobile, classifyPhone("07700900123"))
	assert.Equal(t, PhoneFreephone, classifyPhone("08001234567"))
	assert.Empty(t, classifyPhone("09001234567"))
}

func TestExtractPhones_NationalAndInternational(t *testing.T) {
	page := textPage("Call us on 01273 224300 or from abroad on +44 1273 224300. Mobile: 07700 900123.")
	phones := extractPhones(page)
	require.Len(t, phones, 2)
	assert.Equal(t, "+441273224300", phones[0].Number)
	assert.Equal(t, PhoneLandline, phones[0].Type)
	assert.Equal(t, "https://grandhotel.co.uk/contact", phones[0].SourcePage)
	assert.Equal(t, "+447700900123", phones[1].Number)
	assert.Equal(t, PhoneMobile, phones[1].Type)
}

func TestExtractPhones_Dedupes(t *testing.T) {
	page := textPage("Reception: 01273 224300. Reservations: 01273 224300.")
	assert.Len(t, extractPhones(page), 1)
}

func TestExtractPhones_NoFalsePositives(t *testing.T) {
	page := textPage("Established in 1864, the hotel sits at 97-99 Kings Road.")
	assert.Empty(t, extractPhones(page))
}
