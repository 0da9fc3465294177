// ABOUTME: Article model representing one item harvested from a seed
// ABOUTME: Identified by a globally unique guid used as the deduplication key

package models

// Article represents a single piece of content fetched from a seed.
type Article struct {
	ID     int64 `json:"id"`
	SeedID int64 `json:"seed_id"`

	// SeedName is the owning seed's display name, joined in by listing
	// queries. Adapters leave it empty.
	SeedName string `json:"seed_name"`

	// GUID is unique across the whole article table and is the
	// deduplication key on insert.
	GUID string `json:"guid"`

	Title  *string `json:"title"`
	Author *string `json:"author"`

	// Desc is the article body, typically HTML.
	Desc *string `json:"desc"`
	Link *string `json:"link"`

	// PubDate is the publication time in epoch seconds.
	PubDate int64 `json:"pub_date"`

	Unread bool `json:"unread"`
}

// OptionalString returns nil for an empty string, otherwise a pointer to it.
// Adapters use it to map absent feed fields to NULL columns.
func OptionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
