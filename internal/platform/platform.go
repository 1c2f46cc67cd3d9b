package platform

import "context"

// The chat platform (message delivery, channels, threads, embeds) is an
// external collaborator. The engine consumes it through the narrow types
// and ports in this package; rendering and delivery live entirely on the
// other side.

// SubmissionEvent is an inbound "a member posted an entry" event.
type SubmissionEvent struct {
	AuthorID  string `json:"author_id"`
	ChannelID string `json:"channel_id"`
	ThreadID  string `json:"thread_id,omitempty"`
	MessageID string `json:"message_id"`
	URL       string `json:"url"`
	LocalPath string `json:"local_path,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// WithdrawalEvent is an inbound "a member deleted their entry" event.
type WithdrawalEvent struct {
	ChannelID string `json:"channel_id"`
	ThreadID  string `json:"thread_id,omitempty"`
	MessageID string `json:"message_id"`
}

// ReactionEvent is an inbound reaction on an entry message. The emoji
// carries the point value under the current public scheme.
type ReactionEvent struct {
	VoterID   string `json:"voter_id"`
	ChannelID string `json:"channel_id"`
	ThreadID  string `json:"thread_id,omitempty"`
	MessageID string `json:"message_id"`
	Emoji     string `json:"emoji"`
}

// BallotEvent is an inbound ranked jury ballot: entry message ids in
// preference order, most-preferred first.
type BallotEvent struct {
	VoterID    string   `json:"voter_id"`
	ChannelID  string   `json:"channel_id"`
	ThreadID   string   `json:"thread_id,omitempty"`
	MessageIDs []string `json:"message_ids"`
}

// pointEmojis is the reaction set of the current public scheme.
var pointEmojis = map[string]int{
	"0⃣": 0,
	"1⃣": 1,
	"2⃣": 2,
	"3⃣": 3,
}

// PointsForEmoji maps a reaction emoji to its point value. Unknown
// emojis are not votes.
func PointsForEmoji(emoji string) (int, bool) {
	pts, ok := pointEmojis[emoji]
	return pts, ok
}

// ThreadCreator mints threads in a category channel. Qualification
// brackets cannot be materialized before the platform acknowledged the
// thread ids.
type ThreadCreator interface {
	CreateThreads(ctx context.Context, channelID string, n int) ([]string, error)
}
