package extract

import (
	"sort"

	"go.uber.org/zap"

	"github.com/sells-group/hotelinfo/internal/model"
)

// Extract runs the phone and room-count patterns over every scraped page
// and returns the merged pre-extraction. Phones are deduplicated across
// pages keeping the first source; room mentions gain weight when the same
// count appears on multiple pages.
func Extract(pages []*model.ScrapedPage) *model.PreExtraction {
	pre := &model.PreExtraction{}
	seenPhones := make(map[string]bool)
	var mentions []model.RoomMention

	for _, page := range pages {
		if page == nil {
			continue
		}
		for _, phone := range extractPhones(page) {
			if seenPhones[phone.Number] {
				continue
			}
			seenPhones[phone.Number] = true
			pre.Phones = append(pre.Phones, phone)
		}
		mentions = append(mentions, extractRoomMentions(page)...)
	}

	pre.RoomMentions = mergeRoomMentions(mentions)
	sort.SliceStable(pre.RoomMentions, func(i, j int) bool {
		return pre.RoomMentions[i].Weight > pre.RoomMentions[j].Weight
	})

	zap.L().Debug("pre-extraction complete",
		zap.Int("pages", len(pages)),
		zap.Int("phones", len(pre.Phones)),
		zap.Int("room_mentions", len(pre.RoomMentions)))

	return pre
}

// BestPhone returns the preferred phone from a pre-extraction. Landlines
// outrank non-geographic numbers, which outrank freephone, then mobile;
// hotels publish mobile numbers as a last resort.
func BestPhone(pre *model.PreExtraction) *model.ExtractedPhone {
	rank := map[string]int{
		PhoneLandline:      0,
		PhoneNonGeographic: 1,
		PhoneFreephone:     2,
		PhoneMobile:        3,
	}
	var best *model.ExtractedPhone
	for i := range pre.Phones {
		p := &pre.Phones[i]
		if best == nil || rank[p.Type] < rank[best.Type] {
			best = p
		}
	}
	return best
}

// BestRoomCount returns the highest-weight room mention, or nil when no
// mention was found. Ties keep document order, so the homepage wins.
func BestRoomCount(pre *model.PreExtraction) *model.RoomMention {
	if len(pre.RoomMentions) == 0 {
		return nil
	}
	return &pre.RoomMentions[0]
}
