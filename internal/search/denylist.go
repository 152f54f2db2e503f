package search

import (
	"net/url"
	"strings"
)

// aggregatorDomains are booking aggregators and directories that are never
// a hotel's official website. Matched as substrings of the host.
var aggregatorDomains = []string{
	"booking.com",
	"tripadvisor.",
	"expedia.",
	"hotels.com",
	"trivago.",
	"kayak.",
	"agoda.com",
	"priceline.com",
	"hotelscombined.",
	"laterooms.com",
	"lastminute.com",
	"travelocity.com",
	"orbitz.com",
	"ebookers.",
	"opentable.",
}

// noiseDomains are social networks, encyclopedias, and review sites that
// may rank well but cannot be the official site either.
var noiseDomains = []string{
	"facebook.com",
	"instagram.com",
	"twitter.com",
	"x.com",
	"linkedin.com",
	"youtube.com",
	"pinterest.",
	"wikipedia.org",
	"wikidata.org",
	"yelp.",
	"foursquare.com",
	"yell.com",
}

// IsAggregator reports whether the URL's host belongs to a known booking
// aggregator.
func IsAggregator(rawURL string) bool {
	return hostMatches(rawURL, aggregatorDomains)
}

// IsDenied reports whether the URL can be ruled out as an official site
// without fetching it.
func IsDenied(rawURL string) bool {
	return hostMatches(rawURL, aggregatorDomains) || hostMatches(rawURL, noiseDomains)
}

func hostMatches(rawURL string, domains []string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		// Bare domain without scheme.
		host = strings.ToLower(rawURL)
	}
	for _, d := range domains {
		if strings.Contains(host, d) {
			return true
		}
	}
	return false
}
