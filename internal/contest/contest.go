package contest

import (
	"math/rand"

	"github.com/ateliervote/concours/internal/errors"
	"github.com/ateliervote/concours/internal/models"
)

// Category is the setup description of one contest category.
type Category struct {
	Name      string `json:"name"`
	ChannelID string `json:"channel_id"`
}

// Contest is the aggregate root: the schedule, every bracket of every
// stage, and the final result once resolved. Values are immutable from
// the caller's point of view: every mutator returns a new Contest that
// shares untouched brackets with the old one and deep-clones only the
// bracket it modifies, so a rejected operation leaves the old value
// byte-for-byte intact and a crash between mutation and persistence can
// never leave a half-applied snapshot.
type Contest struct {
	ID           string             `json:"id"`
	Schedule     models.Schedule    `json:"schedule"`
	Phase        models.Phase       `json:"phase"`
	Competitions []*Competition     `json:"competitions"`
	Winner       *models.Submission `json:"winner,omitempty"`
	Duels        []Duel             `json:"duels,omitempty"`
}

// New creates a contest with one submission bracket per category.
func New(id string, schedule models.Schedule, categories []Category) *Contest {
	c := &Contest{
		ID:       id,
		Schedule: schedule,
		Phase:    models.PhaseIdle,
	}
	for _, cat := range categories {
		c.Competitions = append(c.Competitions,
			NewCompetition(models.KindSubmission, cat.Name, cat.ChannelID, "", schedule.Submission))
	}
	return c
}

// Rebuild recomputes every bracket's vote caches. Called once after
// deserialization; the caches are not part of the snapshot.
func (c *Contest) Rebuild() {
	for _, comp := range c.Competitions {
		comp.RebuildTallies()
	}
}

// ByKind filters brackets by stage.
func (c *Contest) ByKind(kind models.CompetitionKind) []*Competition {
	var out []*Competition
	for _, comp := range c.Competitions {
		if comp.Kind == kind {
			out = append(out, comp)
		}
	}
	return out
}

// SubmissionCompetitions returns the category brackets.
func (c *Contest) SubmissionCompetitions() []*Competition { return c.ByKind(models.KindSubmission) }

// QualifCompetitions returns the qualification brackets.
func (c *Contest) QualifCompetitions() []*Competition { return c.ByKind(models.KindQualif) }

// SemisCompetitions returns the semifinal brackets.
func (c *Contest) SemisCompetitions() []*Competition { return c.ByKind(models.KindSemis) }

// FinalCompetitions returns the final bracket(s).
func (c *Contest) FinalCompetitions() []*Competition { return c.ByKind(models.KindFinal) }

// CurrentCompetitions returns the brackets whose window contains now.
func (c *Contest) CurrentCompetitions(now int64) []*Competition {
	var out []*Competition
	for _, comp := range c.Competitions {
		if comp.Window.Contains(now) {
			out = append(out, comp)
		}
	}
	return out
}

// find locates the bracket addressed by (channel, thread). Later stages
// are appended after the brackets they grew out of and can share the
// address of a pass-through category, so the scan runs newest first.
func (c *Contest) find(channelID, threadID string) (int, *Competition, error) {
	for i := len(c.Competitions) - 1; i >= 0; i-- {
		if c.Competitions[i].Matches(channelID, threadID) {
			return i, c.Competitions[i], nil
		}
	}
	return 0, nil, errors.CompetitionNotFoundf("no competition for channel %s thread %q", channelID, threadID)
}

// withCompetition produces the next Contest value with bracket i
// replaced. All other brackets are shared by handle.
func (c *Contest) withCompetition(i int, comp *Competition) *Contest {
	next := *c
	next.Competitions = append([]*Competition(nil), c.Competitions...)
	next.Competitions[i] = comp
	return &next
}

// AddSubmission registers a new entry in the category bracket addressed
// by (channel, thread). Fails outside the submission window, past the
// per-author quota, or when no bracket matches.
func (c *Contest) AddSubmission(sub models.Submission, channelID, threadID, messageID string, now int64) (*Contest, int, error) {
	if !c.Schedule.Submission.Contains(now) {
		return nil, 0, errors.InvalidPeriod("submissions are closed")
	}
	i, comp, err := c.find(channelID, threadID)
	if err != nil {
		return nil, 0, err
	}
	if comp.AuthorCount(sub.AuthorID) >= AuthorQuota {
		return nil, 0, errors.QuotaExceededf("author %s already has %d entries in %s", sub.AuthorID, AuthorQuota, comp.Name)
	}
	clone := comp.Clone()
	idx, err := clone.AddEntry(sub, messageID)
	if err != nil {
		return nil, 0, err
	}
	return c.withCompetition(i, clone), idx, nil
}

// WithdrawSubmission removes the entry behind messageID and re-indexes
// the display ordinals of later entries.
func (c *Contest) WithdrawSubmission(channelID, threadID, messageID string) (*Contest, models.Submission, error) {
	i, comp, err := c.find(channelID, threadID)
	if err != nil {
		return nil, models.Submission{}, err
	}
	clone := comp.Clone()
	removed, err := clone.WithdrawEntry(messageID)
	if err != nil {
		return nil, models.Submission{}, err
	}
	return c.withCompetition(i, clone), removed, nil
}

// SaveJuryVote stores a ranked ballot in the bracket addressed by
// (channel, thread), replacing the voter's prior ballot.
func (c *Contest) SaveJuryVote(channelID, threadID string, vote models.JuryVote, now int64) (*Contest, error) {
	i, comp, err := c.find(channelID, threadID)
	if err != nil {
		return nil, err
	}
	if !comp.Window.Contains(now) {
		return nil, errors.InvalidPeriodf("voting in %s is closed", comp.Name)
	}
	clone := comp.Clone()
	if err := clone.AddJuryVote(vote); err != nil {
		return nil, err
	}
	return c.withCompetition(i, clone), nil
}

// SavePublicVote resolves messageID to an entry and stores the point
// allocation, replacing the voter's prior vote for that entry.
func (c *Contest) SavePublicVote(channelID, threadID, messageID, voterID string, points int, now int64) (*Contest, error) {
	i, comp, err := c.find(channelID, threadID)
	if err != nil {
		return nil, err
	}
	if !comp.Window.Contains(now) {
		return nil, errors.InvalidPeriodf("voting in %s is closed", comp.Name)
	}
	entry, ok := comp.EntryByMessage(messageID)
	if !ok {
		return nil, errors.SubmissionNotFoundf("no entry for message %s", messageID)
	}
	clone := comp.Clone()
	if err := clone.AddPublicVote(models.PublicVote{VoterID: voterID, Entry: entry, Points: points}); err != nil {
		return nil, err
	}
	return c.withCompetition(i, clone), nil
}

// BindEntryMessage maps a reposted platform message to an existing entry
// so reaction events on later-stage announcements keep resolving.
func (c *Contest) BindEntryMessage(channelID, threadID, messageID string, index int) (*Contest, error) {
	i, comp, err := c.find(channelID, threadID)
	if err != nil {
		return nil, err
	}
	clone := comp.Clone()
	if err := clone.BindMessage(messageID, index); err != nil {
		return nil, err
	}
	return c.withCompetition(i, clone), nil
}

// QualifPlan is the splitter output for one category that crossed the
// qualification threshold; the platform adapter must mint one thread per
// split before the brackets can be materialized.
type QualifPlan struct {
	ChannelID string
	Name      string
	Splits    [][]models.Submission
}

// QualifAssignment pairs a plan with the thread ids the platform minted.
type QualifAssignment struct {
	Plan      QualifPlan
	ThreadIDs []string
}

// PlanQualifs runs the splitter over every category that needs
// qualification. Pure: the contest is not modified.
func (c *Contest) PlanQualifs(splitter *Splitter) []QualifPlan {
	var plans []QualifPlan
	for _, comp := range c.SubmissionCompetitions() {
		if !comp.NeedsQualification() {
			continue
		}
		plans = append(plans, QualifPlan{
			ChannelID: comp.ChannelID,
			Name:      comp.Name,
			Splits:    splitter.Split(comp.Entries),
		})
	}
	return plans
}

// makeQualifs materializes one qualification bracket per split, in the
// thread the platform minted for it.
func (c *Contest) makeQualifs(assignments []QualifAssignment) (*Contest, error) {
	next := *c
	next.Competitions = append([]*Competition(nil), c.Competitions...)
	for _, a := range assignments {
		if len(a.ThreadIDs) != len(a.Plan.Splits) {
			return nil, errors.InvalidInputf("%s: %d threads for %d brackets", a.Plan.Name, len(a.ThreadIDs), len(a.Plan.Splits))
		}
		for i, split := range a.Plan.Splits {
			bracket := NewCompetition(models.KindQualif, a.Plan.Name, a.Plan.ChannelID, a.ThreadIDs[i], c.Schedule.Qualification)
			bracket.Entries = append([]models.Submission(nil), split...)
			next.Competitions = append(next.Competitions, bracket)
		}
	}
	return &next, nil
}

// solveQualifs builds one semifinal bracket per category: selection per
// qualification bracket for large categories, a straight pass-through
// for categories that skipped qualification.
func (c *Contest) solveQualifs(rng *rand.Rand) *Contest {
	next := *c
	next.Competitions = append([]*Competition(nil), c.Competitions...)
	for _, cat := range c.SubmissionCompetitions() {
		var advancing []models.Submission
		if cat.NeedsQualification() {
			for _, bracket := range c.QualifCompetitions() {
				if bracket.ChannelID != cat.ChannelID {
					continue
				}
				advancing = append(advancing, SelectQualifiers(bracket, rng)...)
			}
		} else {
			advancing = append(advancing, cat.Entries...)
		}
		rng.Shuffle(len(advancing), func(i, j int) {
			advancing[i], advancing[j] = advancing[j], advancing[i]
		})
		semis := NewCompetition(models.KindSemis, cat.Name, cat.ChannelID, "", c.Schedule.Semifinal)
		semis.Entries = advancing
		next.Competitions = append(next.Competitions, semis)
	}
	return &next
}

// solveSemis runs the selection over every semifinal bracket and merges
// all categories' finalists into one combined final bracket.
func (c *Contest) solveSemis(rng *rand.Rand, finalChannelID string) *Contest {
	next := *c
	next.Competitions = append([]*Competition(nil), c.Competitions...)
	var finalists []models.Submission
	for _, semis := range c.SemisCompetitions() {
		finalists = append(finalists, SelectQualifiers(semis, rng)...)
	}
	rng.Shuffle(len(finalists), func(i, j int) {
		finalists[i], finalists[j] = finalists[j], finalists[i]
	})
	final := NewCompetition(models.KindFinal, "final", finalChannelID, "", c.Schedule.Final)
	final.Entries = finalists
	next.Competitions = append(next.Competitions, final)
	return &next
}

// solveFinal resolves the combined final with the ranked jury ballots.
func (c *Contest) solveFinal() *Contest {
	next := *c
	for _, final := range c.FinalCompetitions() {
		ballots := make([]models.JuryVote, 0, len(final.JuryBallots))
		for _, ballot := range final.JuryBallots {
			ballots = append(ballots, ballot)
		}
		result := ResolveRanked(final.Entries, ballots)
		if len(final.Entries) > 0 {
			winner := result.Winner
			next.Winner = &winner
			next.Duels = result.Duels
		}
	}
	return &next
}

// ExportRows audits the final results: one row per (category, voter)
// with the total points that voter cast there, plus one aggregated
// "public" row per category.
func (c *Contest) ExportRows() []models.ExportRow {
	var rows []models.ExportRow
	for _, comp := range c.Competitions {
		if comp.Kind == models.KindSubmission {
			continue
		}
		label := comp.Name
		if comp.ThreadID != "" {
			label = comp.Name + "/" + comp.ThreadID
		}
		juryTotals := make(map[string]float64)
		for sub := range comp.CountVotesJury() {
			for voter, pts := range comp.JuryPointsByVoter(sub) {
				juryTotals[voter] += pts
			}
		}
		for voter, pts := range juryTotals {
			rows = append(rows, models.ExportRow{Category: label, Voter: voter, Points: pts})
		}
		public := 0
		for _, pts := range comp.CountVotesPublic() {
			public += pts
		}
		if public > 0 {
			rows = append(rows, models.ExportRow{Category: label, Voter: "public", Points: float64(public)})
		}
	}
	return rows
}
