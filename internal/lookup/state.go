package lookup

// State names a stage of the lookup pipeline. States advance strictly
// forward; a lookup that cannot proceed moves to StateFailed.
type State string

const (
	StateCacheCheck   State = "cache_check"
	StateSearching    State = "searching"
	StateValidating   State = "validating"
	StateScraping     State = "scraping"
	StateExtracting   State = "extracting"
	StateVerifying    State = "verifying"
	StateAIExtracting State = "ai_extracting"
	StateCaching      State = "caching"
	StateDone         State = "done"
	StateFailed       State = "failed"
)
