// ABOUTME: Named event topics and payload shapes broadcast to the presentation layer
// ABOUTME: Emission is fire-and-forget; delivery failures are logged and dropped

package events

// Topic names. The host subscribes to these to drive the presentation layer.
const (
	// TopicSeedAdd fires after a seed is inserted. Empty payload.
	TopicSeedAdd = "seed/add"

	// TopicSeedNew fires after new articles are ingested for a seed,
	// once scoped to the seed and once globally. SeedUnreadCount payload
	// with UnreadCount holding the number of newly inserted articles.
	TopicSeedNew = "seed/new"

	// TopicSeedUnread carries a refreshed unread count for a seed
	// (ID set) or globally (ID nil). SeedUnreadCount payload.
	TopicSeedUnread = "seed/unread"

	// TopicArticleUnread fires after an article's unread flag changes.
	// ArticleRead payload; ID -1 is the bulk-mark sentinel.
	TopicArticleUnread = "article/unread"

	// TopicWatchlistChange fires after any watch-list mutation. Empty payload.
	TopicWatchlistChange = "watchlist/change"
)

// SeedUnreadCount is the payload for TopicSeedNew and TopicSeedUnread.
// A nil ID means the count is global.
type SeedUnreadCount struct {
	ID          *int64 `json:"id"`
	UnreadCount int64  `json:"unreadCount"`
}

// ArticleRead is the payload for TopicArticleUnread.
type ArticleRead struct {
	ID     int64 `json:"id"`
	Unread bool  `json:"unread"`
}
