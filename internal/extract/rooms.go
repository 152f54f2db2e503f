package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/sells-group/hotelinfo/internal/model"
)

const (
	minRoomCount = 1
	maxRoomCount = 2000
)

// Room-count phrasings, most specific first. Ranges ("28-34 rooms") and
// written-out counts ("all 201 bedrooms") both appear on real hotel sites.
var (
	roomRangeRe = regexp.MustCompile(
		`(?i)\b(\d{1,4})\s*(?:-|–|to)\s*(\d{1,4})\s+(?:en.?suite\s+)?(?:guest\s+)?(?:bed)?rooms?\b`)
	roomCountRe = regexp.MustCompile(
		`(?i)\b(\d{1,4})\s+(?:individually\s+\w+\s+|luxury\s+|boutique\s+|comfortable\s+|en.?suite\s+|guest\s+|well.appointed\s+)*(?:bed)?rooms?\b`)
	roomSuffixRe = regexp.MustCompile(
		`(?i)\b(?:bed)?rooms?\s*[:\-]\s*(\d{1,4})\b`)
)

const contextRadius = 60

// mentionContext returns the text surrounding a match for later review.
func mentionContext(text string, start, end int) string {
	lo := start - contextRadius
	if lo < 0 {
		lo = 0
	}
	hi := end + contextRadius
	if hi > len(text) {
		hi = len(text)
	}
	return strings.Join(strings.Fields(text[lo:hi]), " ")
}

func validCount(n int) bool {
	return n >= minRoomCount && n <= maxRoomCount
}

// extractRoomMentions finds room-count statements in page text. Each
// mention carries the surrounding context and the page it came from;
// repeated counts are merged with boosted weight by the caller.
func extractRoomMentions(page *model.ScrapedPage) []model.RoomMention {
	var out []model.RoomMention
	text := page.Text

	// Track spans claimed by the range pattern so the single-count pattern
	// does not re-match the upper bound of "28-34 rooms".
	type span struct{ start, end int }
	var claimed []span

	for _, loc := range roomRangeRe.FindAllStringSubmatchIndex(text, -1) {
		minStr := text[loc[2]:loc[3]]
		maxStr := text[loc[4]:loc[5]]
		lo, err1 := strconv.Atoi(minStr)
		hi, err2 := strconv.Atoi(maxStr)
		if err1 != nil || err2 != nil || !validCount(lo) || !validCount(hi) || lo > hi {
			continue
		}
		claimed = append(claimed, span{loc[0], loc[1]})
		out = append(out, model.RoomMention{
			Min:        lo,
			Max:        hi,
			Context:    mentionContext(text, loc[0], loc[1]),
			SourcePage: page.URL,
			Weight:     1,
		})
	}

	overlapsClaimed := func(start, end int) bool {
		for _, s := range claimed {
			if start < s.end && end > s.start {
				return true
			}
		}
		return false
	}

	for _, re := range []*regexp.Regexp{roomCountRe, roomSuffixRe} {
		for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
			if overlapsClaimed(loc[0], loc[1]) {
				continue
			}
			n, err := strconv.Atoi(text[loc[2]:loc[3]])
			if err != nil || !validCount(n) {
				continue
			}
			claimed = append(claimed, span{loc[0], loc[1]})
			out = append(out, model.RoomMention{
				Min:        n,
				Max:        n,
				Context:    mentionContext(text, loc[0], loc[1]),
				SourcePage: page.URL,
				Weight:     1,
			})
		}
	}

	return out
}

// mergeRoomMentions collapses identical counts across pages, boosting the
// weight for each repeat. A count stated on three pages outranks one stated
// once.
func mergeRoomMentions(mentions []model.RoomMention) []model.RoomMention {
	type key struct{ min, max int }
	index := make(map[key]int)
	var out []model.RoomMention

	for _, m := range mentions {
		k := key{m.Min, m.Max}
		if i, ok := index[k]; ok {
			out[i].Weight += m.Weight
			continue
		}
		index[k] = len(out)
		out = append(out, m)
	}
	return out
}
