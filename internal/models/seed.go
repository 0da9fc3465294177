// ABOUTME: Seed model representing a subscribed content source with polling cadence
// ABOUTME: Carries fetch bookkeeping and decides when the seed is due for another poll

package models

// DefaultInterval is the polling interval, in minutes, assigned to newly
// inserted seeds.
const DefaultInterval = 10

// Seed represents a subscription to a remote content source.
type Seed struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`

	// Favicon holds an optional icon reference for the presentation layer.
	Favicon *string `json:"favicon"`

	// Interval is the polling interval in minutes.
	Interval int `json:"interval"`

	// LastFetchedAt is the epoch-seconds timestamp of the last attempted
	// fetch; 0 means the seed has never been fetched.
	LastFetchedAt int64 `json:"last_fetched_at"`

	// LastFetchOK reports whether the last fetch attempt succeeded.
	LastFetchOK bool `json:"last_fetch_ok"`
}

// Due reports whether the seed should be fetched at the given epoch time.
// A seed that has never been fetched is always due; otherwise it becomes
// due once a full interval has elapsed since the last attempt.
func (s *Seed) Due(now int64) bool {
	if s.LastFetchedAt == 0 {
		return true
	}
	return s.LastFetchedAt+int64(s.Interval)*60 <= now
}
