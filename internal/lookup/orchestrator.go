// Package lookup drives a hotel query through the full resolution
// pipeline: cache, candidate search, URL validation, scraping, pattern
// pre-extraction, model verification and extraction, and caching of the
// final record.
package lookup

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/sells-group/hotelinfo/internal/ai"
	"github.com/sells-group/hotelinfo/internal/cache"
	"github.com/sells-group/hotelinfo/internal/extract"
	"github.com/sells-group/hotelinfo/internal/model"
	"github.com/sells-group/hotelinfo/internal/scrape"
	"github.com/sells-group/hotelinfo/internal/search"
)

// degradedConfidenceCap bounds the confidence of a record assembled from
// pattern matches alone, when the model extraction was unavailable.
const degradedConfidenceCap = 0.5

// successConfidence is the floor a record must reach for StatusSuccess.
const successConfidence = 0.7

// Config tunes a single lookup.
type Config struct {
	// CacheTTL is how long resolved records stay fresh.
	CacheTTL time.Duration
	// Deadline bounds one complete lookup end to end.
	Deadline time.Duration
}

// DefaultConfig returns production lookup defaults.
func DefaultConfig() Config {
	return Config{
		CacheTTL: 24 * time.Hour,
		Deadline: 120 * time.Second,
	}
}

// Orchestrator runs lookups. All stage dependencies are injected; cache,
// limiter and searchSem may be nil.
type Orchestrator struct {
	cache     cache.Store
	resolver  *search.Resolver
	validator *URLValidator
	scraper   *scrape.SiteScraper
	ai        *ai.Service
	cfg       Config

	// limiter is the process-wide request pacer shared across concurrent
	// lookups; searchSem bounds concurrent provider calls.
	limiter   *rate.Limiter
	searchSem *semaphore.Weighted
}

// NewOrchestrator wires the pipeline stages together.
func NewOrchestrator(
	store cache.Store,
	resolver *search.Resolver,
	validator *URLValidator,
	scraper *scrape.SiteScraper,
	aiSvc *ai.Service,
	cfg Config,
) *Orchestrator {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 24 * time.Hour
	}
	if cfg.Deadline <= 0 {
		cfg.Deadline = 120 * time.Second
	}
	return &Orchestrator{
		cache:     store,
		resolver:  resolver,
		validator: validator,
		scraper:   scraper,
		ai:        aiSvc,
		cfg:       cfg,
	}
}

// SetLimiter installs a shared rate limiter applied at the start of every
// uncached lookup.
func (o *Orchestrator) SetLimiter(l *rate.Limiter) { o.limiter = l }

// SetSearchSemaphore bounds how many lookups may be in the search stage at
// once across the process.
func (o *Orchestrator) SetSearchSemaphore(sem *semaphore.Weighted) { o.searchSem = sem }

// Lookup resolves one hotel. The returned record is always non-nil for a
// valid query; stage failures accumulate in record.Errors and degrade the
// status rather than aborting. skipCache forces a fresh resolution; the
// result still refreshes the cache entry.
func (o *Orchestrator) Lookup(ctx context.Context, query model.HotelQuery, skipCache bool) (*model.HotelRecord, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	logger := zap.L().With(
		zap.String("lookup_id", uuid.NewString()),
		zap.String("hotel", query.Name))

	rec := &model.HotelRecord{
		SearchName:    query.Name,
		SearchAddress: query.Address,
		LastChecked:   time.Now().UTC(),
	}

	key := query.IdentityKey()
	o.observe(logger, StateCacheCheck)
	if o.cache != nil && !skipCache {
		if cached, ok := o.cache.Get(ctx, key); ok {
			logger.Info("cache hit")
			return cached, nil
		}
	}

	if o.limiter != nil {
		if err := o.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "lookup: rate limit wait")
		}
	}

	parent := ctx
	ctx, cancel := context.WithTimeout(ctx, o.cfg.Deadline)
	defer cancel()

	if err := o.resolve(ctx, logger, query, rec); err != nil {
		if parent.Err() != nil {
			return nil, parent.Err()
		}
		o.observe(logger, StateFailed)
		rec.Status = model.StatusError
		rec.AddError(eris.ToString(err, false))
		rec.Normalize()
		return rec, nil
	}

	o.observe(logger, StateCaching)
	rec.Normalize()
	if o.cache != nil && rec.Status != model.StatusError {
		// The lookup deadline may already have expired when the record was
		// assembled from a degraded stage; the write still has to land so
		// future lookups are seeded.
		o.cache.Put(context.WithoutCancel(parent), key, rec, o.cfg.CacheTTL)
	}

	o.observe(logger, StateDone)
	logger.Info("lookup complete",
		zap.String("status", string(rec.Status)),
		zap.Float64("confidence", rec.ConfidenceScore))
	return rec, nil
}

// resolve runs the search-through-extraction stages, mutating rec. An
// error return means the lookup could not produce a meaningful record at
// all; candidate-level problems are recorded and skipped.
func (o *Orchestrator) resolve(ctx context.Context, logger *zap.Logger, query model.HotelQuery, rec *model.HotelRecord) error {
	o.observe(logger, StateSearching)
	candidates, err := o.searchCandidates(ctx, query)
	if err != nil {
		return eris.Wrap(err, "lookup: search candidates")
	}
	if len(candidates) == 0 {
		logger.Info("no candidates found")
		rec.Status = model.StatusNotFound
		return nil
	}

	for _, cand := range candidates {
		ok, err := o.tryCandidate(ctx, logger, query, rec, cand)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	// Every candidate was rejected. The official site cannot be confirmed,
	// but aggregator listings may still carry the basics.
	if o.bookingFallback(ctx, logger, query, rec) {
		rec.Status = model.StatusPartial
		return nil
	}
	rec.Status = model.StatusNotFound
	return nil
}

func (o *Orchestrator) searchCandidates(ctx context.Context, query model.HotelQuery) ([]model.CandidateURL, error) {
	if o.searchSem != nil {
		if err := o.searchSem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		defer o.searchSem.Release(1)
	}
	return o.resolver.Resolve(ctx, query)
}

// tryCandidate runs one candidate through validation, scraping and the
// model stages. Returns true when the candidate was accepted and rec is
// populated.
func (o *Orchestrator) tryCandidate(ctx context.Context, logger *zap.Logger, query model.HotelQuery, rec *model.HotelRecord, cand model.CandidateURL) (bool, error) {
	logger = logger.With(zap.String("candidate", cand.URL))

	o.observe(logger, StateValidating)
	finalURL, err := o.validator.Validate(ctx, cand.URL)
	if err != nil {
		logger.Debug("candidate unreachable", zap.Error(err))
		rec.AddError("unreachable: " + cand.URL)
		return false, nil
	}

	o.observe(logger, StateScraping)
	pages, err := o.scraper.ScrapeSite(ctx, finalURL)
	if err != nil {
		if eris.Is(err, scrape.ErrParkedDomain) {
			// The domain resolves but the business behind it is likely gone.
			// Clear the website and fall back to aggregator listings for
			// the historical room count and phone.
			logger.Warn("parked domain", zap.String("url", finalURL))
			rec.AddError("parked domain, business may have closed: " + finalURL)
			rec.OfficialWebsite = nil
			o.bookingFallback(ctx, logger, query, rec)
			rec.Status = model.StatusPartial
			return true, nil
		}
		logger.Debug("scrape failed", zap.Error(err))
		rec.AddError("scrape failed: " + finalURL)
		return false, nil
	}

	o.observe(logger, StateExtracting)
	pre := extract.Extract(pages)

	o.observe(logger, StateVerifying)
	verdict, err := o.ai.Verify(ctx, query, pages)
	if err != nil {
		// Verification unavailable (model failure or deadline expiry). The
		// pages are already in hand, so accept the top-ranked candidate on
		// the search signals alone, flagged as degraded.
		logger.Warn("verification degraded", zap.Error(err))
		rec.AddError("verification degraded: " + finalURL)
		o.assembleDegraded(rec, finalURL, pre)
		return true, nil
	}
	if !verdict.Match {
		logger.Info("candidate rejected", zap.String("reason", verdict.Reason))
		rec.AddError("not the official site: " + finalURL)
		return false, nil
	}

	rec.OfficialWebsite = model.StrPtr(finalURL)
	rec.WebsiteSourceURL = cand.URL

	o.observe(logger, StateAIExtracting)
	ext, err := o.ai.Extract(ctx, query, pages, pre, cand.Notes)
	if err != nil {
		logger.Warn("extraction degraded", zap.Error(err))
		rec.AddError("extraction degraded: " + finalURL)
		o.assembleDegraded(rec, finalURL, pre)
		return true, nil
	}

	o.assemble(rec, verdict.Confidence, ext)

	// Last resort for the room count: smaller hotels often omit it from
	// their own site but appear on aggregator listings.
	if rec.UKContactPhone == nil && rec.RoomsMin == nil {
		rec.AddError("no phone or room count on the official site")
		if o.bookingFallback(ctx, logger, query, rec) {
			rec.Status = model.StatusPartial
		}
	}
	return true, nil
}

// bookingFallback pulls the room count, and the phone when still missing,
// out of booking-aggregator listings. Reports whether anything was found.
func (o *Orchestrator) bookingFallback(ctx context.Context, logger *zap.Logger, query model.HotelQuery, rec *model.HotelRecord) bool {
	listings, err := o.resolver.Aggregators(ctx, query)
	if err != nil || len(listings) == 0 {
		return false
	}

	found := false
	for _, cand := range listings {
		page, err := o.scraper.ScrapePage(ctx, cand.URL)
		if err != nil {
			logger.Debug("aggregator fetch failed",
				zap.String("url", cand.URL),
				zap.Error(err))
			continue
		}
		pre := extract.Extract([]*model.ScrapedPage{page})

		if rec.RoomsMin == nil {
			if rooms := extract.BestRoomCount(pre); rooms != nil {
				rec.RoomsMin = model.IntPtr(rooms.Min)
				rec.RoomsMax = model.IntPtr(rooms.Max)
				rec.RoomsSourceNotes = rooms.Context
				rec.AddError("room count sourced from listing: " + cand.URL)
				found = true
			}
		}
		if rec.UKContactPhone == nil {
			if phone := extract.BestPhone(pre); phone != nil {
				rec.UKContactPhone = model.StrPtr(phone.Number)
				rec.PhoneType = phone.Type
				rec.PhoneSourceURL = cand.URL
				found = true
			}
		}
		if rec.RoomsMin != nil && rec.UKContactPhone != nil {
			break
		}
	}
	return found
}

// assemble fills rec from a successful model extraction. The record's
// confidence blends the verification and extraction scores.
func (o *Orchestrator) assemble(rec *model.HotelRecord, verifyConf float64, ext *ai.Extraction) {
	if ext.UKContactPhone != nil && *ext.UKContactPhone != "" {
		rec.UKContactPhone = ext.UKContactPhone
		if ext.PhoneType != nil {
			rec.PhoneType = *ext.PhoneType
		}
		if ext.PhoneSourceURL != nil {
			rec.PhoneSourceURL = *ext.PhoneSourceURL
		}
	}
	rec.RoomsMin = ext.RoomsMin
	rec.RoomsMax = ext.RoomsMax
	if ext.RoomsSourceNotes != nil {
		rec.RoomsSourceNotes = *ext.RoomsSourceNotes
	}

	conf := ext.Confidence
	if verifyConf > 0 && verifyConf < conf {
		conf = (conf + verifyConf) / 2
	}
	rec.ConfidenceScore = conf
	rec.Status = statusFor(rec)
}

// assembleDegraded fills rec from the pattern pre-extraction alone.
func (o *Orchestrator) assembleDegraded(rec *model.HotelRecord, finalURL string, pre *model.PreExtraction) {
	rec.OfficialWebsite = model.StrPtr(finalURL)

	if phone := extract.BestPhone(pre); phone != nil {
		rec.UKContactPhone = model.StrPtr(phone.Number)
		rec.PhoneType = phone.Type
		rec.PhoneSourceURL = phone.SourcePage
	}
	if rooms := extract.BestRoomCount(pre); rooms != nil {
		rec.RoomsMin = model.IntPtr(rooms.Min)
		rec.RoomsMax = model.IntPtr(rooms.Max)
		rec.RoomsSourceNotes = rooms.Context
	}

	rec.ConfidenceScore = degradedConfidenceCap
	rec.Status = model.StatusPartial
}

// statusFor applies the status ladder: a verified website with both phone
// and room count at high confidence is a success; a website with some of
// the fields is partial.
func statusFor(rec *model.HotelRecord) model.Status {
	if rec.OfficialWebsite == nil {
		return model.StatusNotFound
	}
	complete := rec.UKContactPhone != nil && rec.RoomsMin != nil
	if complete && rec.ConfidenceScore >= successConfidence {
		return model.StatusSuccess
	}
	return model.StatusPartial
}

func (o *Orchestrator) observe(logger *zap.Logger, s State) {
	logger.Debug("stage", zap.String("state", string(s)))
}
