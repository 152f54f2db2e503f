// Package model defines the core domain types shared across the lookup
// pipeline: queries, resolved hotel records, search candidates, and
// scraped page content.
package model

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Status classifies the outcome of a lookup.
type Status string

const (
	// StatusSuccess means a verified official website plus room count and
	// phone were found with high confidence.
	StatusSuccess Status = "success"
	// StatusPartial means some fields were resolved but not all, or the
	// extraction ran degraded.
	StatusPartial Status = "partial"
	// StatusNotFound means no official website could be established for
	// the hotel.
	StatusNotFound Status = "not_found"
	// StatusError means the lookup itself failed before producing data.
	StatusError Status = "error"
)

// HotelQuery identifies the hotel to resolve. Name is required; the
// remaining fields disambiguate chains and common names.
type HotelQuery struct {
	Name     string `json:"name"`
	Address  string `json:"address,omitempty"`
	City     string `json:"city,omitempty"`
	Postcode string `json:"postcode,omitempty"`
}

// Validate checks that the query is processable.
func (q HotelQuery) Validate() error {
	if strings.TrimSpace(q.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

// IdentityKey derives the stable cache identity for the query: Unicode
// NFKC normalization, case folding, and whitespace collapse over the
// name plus the best available location hint. Two queries with the same
// key refer to the same hotel.
func (q HotelQuery) IdentityKey() string {
	loc := q.Address
	if strings.TrimSpace(loc) == "" {
		loc = q.City
	}
	return foldKey(q.Name) + "|" + foldKey(loc)
}

var keyFolder = cases.Fold()

func foldKey(s string) string {
	s = norm.NFKC.String(s)
	s = keyFolder.String(s)
	return strings.Join(strings.Fields(s), " ")
}

// Title-cases a provider label or similar short token for display.
var displayCaser = cases.Title(language.BritishEnglish)

// DisplayLabel renders a lowercase internal label for human-facing output.
func DisplayLabel(label string) string {
	return displayCaser.String(strings.ReplaceAll(label, "_", " "))
}

// HotelRecord is the resolved canonical information for one hotel.
type HotelRecord struct {
	SearchName    string `json:"search_name"`
	SearchAddress string `json:"search_address,omitempty"`

	OfficialWebsite *string `json:"official_website"`
	UKContactPhone  *string `json:"uk_contact_phone"`
	PhoneType       string  `json:"phone_type,omitempty"`
	RoomsMin        *int    `json:"rooms_min"`
	RoomsMax        *int    `json:"rooms_max"`

	RoomsSourceNotes string `json:"rooms_source_notes,omitempty"`
	WebsiteSourceURL string `json:"website_source_url,omitempty"`
	PhoneSourceURL   string `json:"phone_source_url,omitempty"`

	Status          Status    `json:"status"`
	ConfidenceScore float64   `json:"confidence_score"`
	LastChecked     time.Time `json:"last_checked"`
	Errors          []string  `json:"errors,omitempty"`
}

// AddError appends a non-fatal issue note. The record's status is not
// affected; callers decide status from what data survived.
func (r *HotelRecord) AddError(note string) {
	if note == "" {
		return
	}
	r.Errors = append(r.Errors, note)
}

// Normalize enforces the cross-field invariants before the record is
// returned or cached: not_found carries no website and zero confidence,
// confidence stays within [0,1], and rooms bounds are ordered.
func (r *HotelRecord) Normalize() {
	if r.Status == StatusNotFound {
		r.OfficialWebsite = nil
		r.ConfidenceScore = 0
	}
	if r.ConfidenceScore < 0 {
		r.ConfidenceScore = 0
	}
	if r.ConfidenceScore > 1 {
		r.ConfidenceScore = 1
	}
	if r.RoomsMin != nil && r.RoomsMax != nil && *r.RoomsMin > *r.RoomsMax {
		r.RoomsMin, r.RoomsMax = r.RoomsMax, r.RoomsMin
	}
}

// CandidateURL is a search result under consideration as the hotel's
// official website.
type CandidateURL struct {
	URL      string `json:"url"`
	Provider string `json:"provider"`
	Title    string `json:"title,omitempty"`
	Rank     int    `json:"rank"`
	// Notes carries provider-sourced context (e.g. a grounded agent's own
	// answer text) forwarded to the extraction stage.
	Notes string `json:"notes,omitempty"`
}

// FetchMethod records how a page's content was obtained.
type FetchMethod string

const (
	FetchHTTP    FetchMethod = "http"
	FetchBrowser FetchMethod = "browser"
	FetchReader  FetchMethod = "reader"
)

// ScrapedPage is one fetched page belonging to a single lookup. Pages are
// never cached; only the final record is.
type ScrapedPage struct {
	URL         string
	Title       string
	Text        string
	HTML        string
	FetchMethod FetchMethod
	FetchedAt   time.Time
}

// RoomMention is a deterministic room-count match with its provenance.
type RoomMention struct {
	Min        int
	Max        int
	Context    string
	SourcePage string
	// Weight rises when the same count repeats across pages.
	Weight float64
}

// PreExtraction aggregates the deterministic pattern matches found ahead
// of the AI extraction pass.
type PreExtraction struct {
	Phones       []ExtractedPhone
	RoomMentions []RoomMention
}

// ExtractedPhone is a normalized UK phone number with its classification
// and the page it first appeared on.
type ExtractedPhone struct {
	Number     string
	Type       string // landline, non_geographic, mobile, freephone
	SourcePage string
}

// IntPtr returns a pointer to v. Convenience for optional record fields.
func IntPtr(v int) *int { return &v }

// StrPtr returns a pointer to s.
func StrPtr(s string) *string { return &s }
