package scrape

import (
	"net/url"
	"sort"
	"strings"
)

// Subpage vocabulary weights. Contact-style pages are where phone numbers
// live; room and accommodation pages carry the room count.
var subpageVocab = []struct {
	term   string
	weight int
}{
	{"contact", 10},
	{"enquir", 9},
	{"faq", 8},
	{"find-us", 8},
	{"rooms", 6},
	{"bedrooms", 6},
	{"accommodation", 6},
	{"suites", 5},
	{"about", 5},
	{"stay", 4},
	{"book", 2},
	{"rates", 2},
	{"tariff", 2},
	{"gallery", 1},
}

// conventionalPaths are probed even when the homepage never links to them.
// Small hotel sites often hide the contact page behind JS menus.
var conventionalPaths = []string{
	"/contact",
	"/contact-us",
	"/about",
	"/rooms",
}

type scoredLink struct {
	url   string
	score int
}

// rankSubpages selects up to max same-host links worth fetching after the
// homepage, ranked by how likely they are to carry contact details or room
// counts. Candidate links come from the homepage anchors plus a handful of
// conventional paths; excluded paths are dropped.
func rankSubpages(home *url.URL, anchors []anchor, matcher *PathMatcher, max int) []string {
	if max <= 0 {
		return nil
	}

	seen := map[string]bool{home.String(): true}
	var scored []scoredLink

	consider := func(link string, textBonus int) {
		if seen[link] || matcher.IsExcluded(link) {
			return
		}
		seen[link] = true

		u, err := url.Parse(link)
		if err != nil {
			return
		}
		score := scorePath(u.Path) + textBonus
		if score <= 0 {
			return
		}
		scored = append(scored, scoredLink{url: link, score: score})
	}

	for _, a := range anchors {
		bonus := 0
		if text := strings.ToLower(a.Text); text != "" {
			for _, v := range subpageVocab {
				if strings.Contains(text, v.term) {
					bonus = v.weight / 2
					break
				}
			}
		}
		consider(a.URL, bonus)
	}

	for _, p := range conventionalPaths {
		probe := *home
		probe.Path = p
		probe.RawQuery = ""
		consider(probe.String(), 0)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	if len(scored) > max {
		scored = scored[:max]
	}
	out := make([]string, len(scored))
	for i, s := range scored {
		out[i] = s.url
	}
	return out
}

func scorePath(path string) int {
	path = strings.ToLower(path)
	best := 0
	for _, v := range subpageVocab {
		if strings.Contains(path, v.term) && v.weight > best {
			best = v.weight
		}
	}
	return best
}
