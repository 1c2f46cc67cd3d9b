package contest

import (
	"github.com/ateliervote/concours/internal/errors"
	"github.com/ateliervote/concours/internal/models"
)

// Engine constants. These are fixed event rules, not configuration.
const (
	// QualificationThreshold is the entry count at which a category is
	// split into qualification brackets instead of going straight to semis.
	QualificationThreshold = 25
	// MinBracketSize and MaxBracketSize bound a qualification bracket.
	MinBracketSize = 12
	MaxBracketSize = 24
	// AuthorQuota is the per-author submission cap within one category.
	AuthorQuota = 6
	// selfWeight is the penalty applied when a voter scores their own
	// entry. Self votes are rejected at cast time; the weighting is kept
	// so legacy ballots tally the same way the earlier editions did.
	selfWeight = 0.5
)

// juryPointsTables maps a supported ranking length to its descending
// points table, first place first.
var juryPointsTables = map[int][]float64{
	10: {12, 10, 8, 7, 6, 5, 4, 3, 2, 1},
	5:  {6, 5, 4, 3, 2},
	3:  {3, 2, 1},
}

// Competition is one voting bracket: a category, or one sub-thread of a
// category. It owns its entries and raw votes; the per-submission
// breakdowns are caches rebuilt from the raw votes and never persisted.
type Competition struct {
	Kind      models.CompetitionKind `json:"kind"`
	Name      string                 `json:"name"`
	ChannelID string                 `json:"channel_id"`
	ThreadID  string                 `json:"thread_id,omitempty"`
	Window    models.Period          `json:"window"`

	Entries     []models.Submission          `json:"entries"`
	ByMessage   map[string]int               `json:"by_message"`
	JuryBallots map[string]models.JuryVote   `json:"jury_ballots"`
	PublicVotes []models.PublicVote          `json:"public_votes"`

	// Derived caches, source of truth is the raw votes above.
	juryByVoter   map[models.Submission]map[string]float64
	publicByVoter map[models.Submission]map[string]int
}

// NewCompetition creates an empty bracket.
func NewCompetition(kind models.CompetitionKind, name, channelID, threadID string, window models.Period) *Competition {
	return &Competition{
		Kind:        kind,
		Name:        name,
		ChannelID:   channelID,
		ThreadID:    threadID,
		Window:      window,
		ByMessage:   make(map[string]int),
		JuryBallots: make(map[string]models.JuryVote),
	}
}

// Matches reports whether the bracket is addressed by the channel/thread pair.
func (c *Competition) Matches(channelID, threadID string) bool {
	return c.ChannelID == channelID && c.ThreadID == threadID
}

// NeedsQualification is true once the category is large enough to require
// qualification brackets before the semifinal.
func (c *Competition) NeedsQualification() bool {
	return len(c.Entries) >= QualificationThreshold
}

// AuthorCount returns how many entries the author already has here.
func (c *Competition) AuthorCount(authorID string) int {
	n := 0
	for _, e := range c.Entries {
		if e.AuthorID == authorID {
			n++
		}
	}
	return n
}

// HasEntry reports whether sub competes in this bracket.
func (c *Competition) HasEntry(sub models.Submission) bool {
	for _, e := range c.Entries {
		if e == sub {
			return true
		}
	}
	return false
}

// EntryByMessage resolves an inbound platform message id to its entry.
func (c *Competition) EntryByMessage(messageID string) (models.Submission, bool) {
	idx, ok := c.ByMessage[messageID]
	if !ok {
		return models.Submission{}, false
	}
	return c.Entries[idx], true
}

// contestants returns the set of author ids currently competing.
func (c *Competition) contestants() map[string]bool {
	set := make(map[string]bool, len(c.Entries))
	for _, e := range c.Entries {
		set[e.AuthorID] = true
	}
	return set
}

// AddEntry appends a submission and maps its platform message id to the
// new entry index.
func (c *Competition) AddEntry(sub models.Submission, messageID string) (int, error) {
	if _, exists := c.ByMessage[messageID]; exists {
		return 0, errors.InvalidInputf("message %s already mapped to an entry", messageID)
	}
	c.Entries = append(c.Entries, sub)
	idx := len(c.Entries) - 1
	if messageID != "" {
		c.ByMessage[messageID] = idx
	}
	return idx, nil
}

// BindMessage maps an additional platform message id to an existing entry
// index. Later stages repost entries as fresh messages; the adapter binds
// those message ids here so reaction events keep resolving.
func (c *Competition) BindMessage(messageID string, index int) error {
	if index < 0 || index >= len(c.Entries) {
		return errors.InvalidInputf("entry index %d out of range", index)
	}
	if _, exists := c.ByMessage[messageID]; exists {
		return errors.InvalidInputf("message %s already mapped to an entry", messageID)
	}
	c.ByMessage[messageID] = index
	return nil
}

// WithdrawEntry removes the submission behind messageID. Message ids of
// later entries stay valid; their indices shift down by one so the
// message index stays injective. Public votes for the removed entry are
// dropped with it.
func (c *Competition) WithdrawEntry(messageID string) (models.Submission, error) {
	idx, ok := c.ByMessage[messageID]
	if !ok {
		return models.Submission{}, errors.SubmissionNotFoundf("no entry for message %s", messageID)
	}
	removed := c.Entries[idx]

	c.Entries = append(c.Entries[:idx], c.Entries[idx+1:]...)
	delete(c.ByMessage, messageID)
	for id, i := range c.ByMessage {
		if i > idx {
			c.ByMessage[id] = i - 1
		}
	}

	kept := c.PublicVotes[:0]
	for _, v := range c.PublicVotes {
		if v.Entry != removed {
			kept = append(kept, v)
		}
	}
	c.PublicVotes = kept

	c.RebuildTallies()
	return removed, nil
}

// AddJuryVote stores a ranked ballot, replacing any prior ballot by the
// same voter.
func (c *Competition) AddJuryVote(vote models.JuryVote) error {
	if _, ok := juryPointsTables[len(vote.Ranking)]; !ok {
		return errors.InvalidRankingSizef("ranking of %d entries is not a supported size", len(vote.Ranking))
	}
	seen := make(map[models.Submission]bool, len(vote.Ranking))
	for _, sub := range vote.Ranking {
		if sub.AuthorID == vote.VoterID {
			return errors.SelfVote("a juror cannot rank their own submission")
		}
		if !c.HasEntry(sub) {
			return errors.SubmissionNotFoundf("ranked entry by %s is not competing here", sub.AuthorID)
		}
		if seen[sub] {
			return errors.InvalidInput("ranking lists the same entry twice")
		}
		seen[sub] = true
	}
	c.JuryBallots[vote.VoterID] = vote
	c.RebuildTallies()
	return nil
}

// AddPublicVote stores a point allocation, replacing any prior vote by
// the same voter for the same submission.
func (c *Competition) AddPublicVote(vote models.PublicVote) error {
	if vote.Points < 0 || vote.Points > models.MaxPublicPoints {
		return errors.InvalidInputf("points must be between 0 and %d", models.MaxPublicPoints)
	}
	if vote.VoterID == vote.Entry.AuthorID {
		return errors.SelfVote("voting for your own submission is not allowed")
	}
	if !c.HasEntry(vote.Entry) {
		return errors.SubmissionNotFoundf("entry by %s is not competing here", vote.Entry.AuthorID)
	}

	replaced := false
	for i, v := range c.PublicVotes {
		if v.VoterID == vote.VoterID && v.Entry == vote.Entry {
			c.PublicVotes[i] = vote
			replaced = true
			break
		}
	}
	if !replaced {
		c.PublicVotes = append(c.PublicVotes, vote)
	}
	c.RebuildTallies()
	return nil
}

// RebuildTallies recomputes the per-submission breakdowns from the raw
// votes. Called after every mutation and once after deserialization; the
// caches are never persisted.
func (c *Competition) RebuildTallies() {
	c.juryByVoter = make(map[models.Submission]map[string]float64)
	c.publicByVoter = make(map[models.Submission]map[string]int)

	for voterID, ballot := range c.JuryBallots {
		table, ok := juryPointsTables[len(ballot.Ranking)]
		if !ok {
			continue
		}
		for i, sub := range ballot.Ranking {
			if !c.HasEntry(sub) {
				continue
			}
			pts := table[i]
			if sub.AuthorID == voterID {
				pts -= selfWeight
			}
			if c.juryByVoter[sub] == nil {
				c.juryByVoter[sub] = make(map[string]float64)
			}
			c.juryByVoter[sub][voterID] = pts
		}
	}

	for _, v := range c.PublicVotes {
		if !c.HasEntry(v.Entry) {
			continue
		}
		if c.publicByVoter[v.Entry] == nil {
			c.publicByVoter[v.Entry] = make(map[string]int)
		}
		c.publicByVoter[v.Entry][v.VoterID] = v.Points
	}
}

// ensureTallies lazily rebuilds the caches, covering competitions that
// were just deserialized.
func (c *Competition) ensureTallies() {
	if c.juryByVoter == nil || c.publicByVoter == nil {
		c.RebuildTallies()
	}
}

// CountVotesJury aggregates jury points per submission from raw ballots.
func (c *Competition) CountVotesJury() map[models.Submission]float64 {
	c.ensureTallies()
	totals := make(map[models.Submission]float64, len(c.Entries))
	for sub, byVoter := range c.juryByVoter {
		for _, pts := range byVoter {
			totals[sub] += pts
		}
	}
	return totals
}

// CountVotesPublic aggregates public points per submission. A voter's
// latest vote per submission is the one that counts.
func (c *Competition) CountVotesPublic() map[models.Submission]int {
	c.ensureTallies()
	totals := make(map[models.Submission]int, len(c.Entries))
	for sub, byVoter := range c.publicByVoter {
		for _, pts := range byVoter {
			totals[sub] += pts
		}
	}
	return totals
}

// PublicPointsByVoter exposes the per-submission public breakdown.
func (c *Competition) PublicPointsByVoter(sub models.Submission) map[string]int {
	c.ensureTallies()
	out := make(map[string]int, len(c.publicByVoter[sub]))
	for voter, pts := range c.publicByVoter[sub] {
		out[voter] = pts
	}
	return out
}

// JuryPointsByVoter exposes the per-submission jury breakdown.
func (c *Competition) JuryPointsByVoter(sub models.Submission) map[string]float64 {
	c.ensureTallies()
	out := make(map[string]float64, len(c.juryByVoter[sub]))
	for voter, pts := range c.juryByVoter[sub] {
		out[voter] = pts
	}
	return out
}

// contestantPoints sums each submission's public points cast by current
// contestants only.
func (c *Competition) contestantPoints() map[models.Submission]int {
	c.ensureTallies()
	authors := c.contestants()
	totals := make(map[models.Submission]int, len(c.Entries))
	for sub, byVoter := range c.publicByVoter {
		for voter, pts := range byVoter {
			if authors[voter] {
				totals[sub] += pts
			}
		}
	}
	return totals
}

// Clone deep-copies the bracket. The caches are rebuilt rather than
// copied; only raw votes travel.
func (c *Competition) Clone() *Competition {
	clone := &Competition{
		Kind:        c.Kind,
		Name:        c.Name,
		ChannelID:   c.ChannelID,
		ThreadID:    c.ThreadID,
		Window:      c.Window,
		Entries:     append([]models.Submission(nil), c.Entries...),
		ByMessage:   make(map[string]int, len(c.ByMessage)),
		JuryBallots: make(map[string]models.JuryVote, len(c.JuryBallots)),
		PublicVotes: append([]models.PublicVote(nil), c.PublicVotes...),
	}
	for id, idx := range c.ByMessage {
		clone.ByMessage[id] = idx
	}
	for voter, ballot := range c.JuryBallots {
		clone.JuryBallots[voter] = models.JuryVote{
			VoterID: ballot.VoterID,
			Ranking: append([]models.Submission(nil), ballot.Ranking...),
		}
	}
	clone.RebuildTallies()
	return clone
}

// SupportedRankingSizes lists the jury ballot sizes the engine accepts.
func SupportedRankingSizes() []int {
	sizes := make([]int, 0, len(juryPointsTables))
	for size := range juryPointsTables {
		sizes = append(sizes, size)
	}
	return sizes
}
