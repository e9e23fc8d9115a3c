package models

// Lead is a business contact record produced by any of the lead providers.
type Lead struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Website string `json:"website"`
	Address string `json:"address,omitempty"`
	Source  string `json:"source"`
}

// LeadQuery is the structured form of a free-text lead prompt.
// It is derived once from the raw prompt and never re-derived mid-run.
type LeadQuery struct {
	RawPrompt string `json:"raw_prompt"`
	Count     int    `json:"count"`
	Category  string `json:"category"`
	Location  string `json:"location"`
}

// SolvedKey is the cache key under which a resolved challenge is remembered.
func (q LeadQuery) SolvedKey() string {
	return q.Category + "|" + q.Location
}

// RunStats summarises one scrape run.
type RunStats struct {
	PagesChecked int `json:"pages_checked"`
	Duplicates   int `json:"duplicates"`
	Rejects      int `json:"rejects"`
	SitesScraped int `json:"sites_scraped"`
}

// CaptchaChallenge describes a challenge found on a loaded page.
type CaptchaChallenge struct {
	SessionID string `json:"session_id,omitempty"`
	Detected  bool   `json:"detected"`
	SiteKey   string `json:"site_key,omitempty"`
}
