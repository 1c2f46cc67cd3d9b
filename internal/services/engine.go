package services

import (
	"context"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/ateliervote/concours/internal/contest"
	"github.com/ateliervote/concours/internal/errors"
	"github.com/ateliervote/concours/internal/logger"
	"github.com/ateliervote/concours/internal/models"
	"github.com/ateliervote/concours/internal/platform"
	"github.com/ateliervote/concours/internal/repository"
)

// EngineService is the single writer over the contest aggregate. Every
// inbound platform event and every scheduler tick is serialized through
// it; a mutation is applied to a fresh contest value, persisted, and
// only then swapped in, so the last durable snapshot is always a fully
// applied state.
type EngineService struct {
	log          logger.Logger
	repo         repository.FullRepository
	threads      platform.ThreadCreator
	finalChannel string

	broadcaster Broadcaster
	now         func() time.Time
	rng         *rand.Rand

	mu      sync.Mutex
	contest *contest.Contest
}

// NewEngineService creates the engine. The contest itself is attached by
// Init or Recover.
func NewEngineService(log logger.Logger, repo repository.FullRepository, threads platform.ThreadCreator, finalChannel string) *EngineService {
	return &EngineService{
		log:          log,
		repo:         repo,
		threads:      threads,
		finalChannel: finalChannel,
		now:          time.Now,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetBroadcaster attaches the observer hub.
func (s *EngineService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// SetClock overrides the wall clock. Tests drive phase transitions with it.
func (s *EngineService) SetClock(now func() time.Time) {
	s.now = now
}

// SetRand overrides the random source so splits and selection shuffles
// are reproducible.
func (s *EngineService) SetRand(rng *rand.Rand) {
	s.rng = rng
}

// Init creates a brand new contest and persists its first snapshot.
func (s *EngineService) Init(ctx context.Context, id string, schedule models.Schedule, categories []contest.Category) error {
	if !schedule.Valid() {
		return errors.InvalidInput("schedule windows must be ordered and non-overlapping")
	}
	c := contest.New(id, schedule, categories)
	if err := s.repo.SaveSnapshot(ctx, c); err != nil {
		return err
	}
	s.mu.Lock()
	s.contest = c
	s.mu.Unlock()
	s.log.Info("contest initialized", "id", id, "categories", len(categories))
	return nil
}

// Recover loads the last snapshot, rebuilds the derived vote caches and
// replays any phase transitions that were missed while the process was
// down. Returns repository.ErrNotFound when no snapshot exists.
func (s *EngineService) Recover(ctx context.Context, id string) error {
	c, err := s.repo.LoadSnapshot(ctx, id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.contest = c
	s.mu.Unlock()
	s.log.Info("contest recovered", "id", id, "phase", c.Phase.String())
	return s.Tick(ctx)
}

// nowMillis is the engine's single clock read per operation.
func (s *EngineService) nowMillis() int64 {
	return s.now().UnixMilli()
}

// readyLocked guards operations that need an attached contest.
func (s *EngineService) readyLocked() error {
	if s.contest == nil {
		return errors.Internalf("no contest attached; call Init or Recover first")
	}
	return nil
}

// commit persists next and swaps it in. The old value stays current when
// persistence fails, so unpersisted state is never treated as committed.
func (s *EngineService) commit(ctx context.Context, next *contest.Contest) error {
	if err := s.repo.SaveSnapshot(ctx, next); err != nil {
		return errors.Wrap(err, errors.ErrInternal, "persisting contest snapshot")
	}
	s.contest = next
	return nil
}

// HandleSubmission registers an entry from an inbound platform event and
// returns its display ordinal within the bracket.
func (s *EngineService) HandleSubmission(ctx context.Context, ev platform.SubmissionEvent) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.readyLocked(); err != nil {
		return 0, err
	}

	sub := models.Submission{
		AuthorID:    ev.AuthorID,
		SubmittedAt: ev.Timestamp,
		LocalPath:   ev.LocalPath,
		URL:         ev.URL,
	}
	next, idx, err := s.contest.AddSubmission(sub, ev.ChannelID, ev.ThreadID, ev.MessageID, s.nowMillis())
	if err != nil {
		return 0, err
	}
	if err := s.commit(ctx, next); err != nil {
		return 0, err
	}
	s.log.Info("submission added", "author", ev.AuthorID, "channel", ev.ChannelID, "index", idx)
	s.broadcastTallyLocked(ev.ChannelID, ev.ThreadID)
	return idx, nil
}

// HandleWithdrawal removes the entry behind the deleted message.
func (s *EngineService) HandleWithdrawal(ctx context.Context, ev platform.WithdrawalEvent) (models.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.readyLocked(); err != nil {
		return models.Submission{}, err
	}

	next, removed, err := s.contest.WithdrawSubmission(ev.ChannelID, ev.ThreadID, ev.MessageID)
	if err != nil {
		return models.Submission{}, err
	}
	if err := s.commit(ctx, next); err != nil {
		return models.Submission{}, err
	}
	s.log.Info("submission withdrawn", "author", removed.AuthorID, "channel", ev.ChannelID)
	s.broadcastTallyLocked(ev.ChannelID, ev.ThreadID)
	return removed, nil
}

// HandleReaction turns a point-emoji reaction into a public vote.
// Reactions with emojis outside the point set are ignored.
func (s *EngineService) HandleReaction(ctx context.Context, ev platform.ReactionEvent) error {
	points, ok := platform.PointsForEmoji(ev.Emoji)
	if !ok {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.readyLocked(); err != nil {
		return err
	}

	next, err := s.contest.SavePublicVote(ev.ChannelID, ev.ThreadID, ev.MessageID, ev.VoterID, points, s.nowMillis())
	if err != nil {
		return err
	}
	if err := s.commit(ctx, next); err != nil {
		return err
	}
	s.log.Debug("public vote saved", "voter", ev.VoterID, "points", points)
	s.broadcastTallyLocked(ev.ChannelID, ev.ThreadID)
	return nil
}

// HandleBallot turns a ranked list of entry message ids into a jury vote.
func (s *EngineService) HandleBallot(ctx context.Context, ev platform.BallotEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.readyLocked(); err != nil {
		return err
	}

	_, comp, err := s.findLocked(ev.ChannelID, ev.ThreadID)
	if err != nil {
		return err
	}
	ranking := make([]models.Submission, 0, len(ev.MessageIDs))
	for _, msgID := range ev.MessageIDs {
		entry, ok := comp.EntryByMessage(msgID)
		if !ok {
			return errors.SubmissionNotFoundf("no entry for message %s", msgID)
		}
		ranking = append(ranking, entry)
	}

	vote := models.JuryVote{VoterID: ev.VoterID, Ranking: ranking}
	next, err := s.contest.SaveJuryVote(ev.ChannelID, ev.ThreadID, vote, s.nowMillis())
	if err != nil {
		return err
	}
	if err := s.commit(ctx, next); err != nil {
		return err
	}
	s.log.Info("jury ballot saved", "voter", ev.VoterID, "entries", len(ranking))
	s.broadcastTallyLocked(ev.ChannelID, ev.ThreadID)
	return nil
}

// BindMessage attaches a reposted announcement message to an entry so
// later reactions keep resolving.
func (s *EngineService) BindMessage(ctx context.Context, channelID, threadID, messageID string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.readyLocked(); err != nil {
		return err
	}

	next, err := s.contest.BindEntryMessage(channelID, threadID, messageID, index)
	if err != nil {
		return err
	}
	return s.commit(ctx, next)
}

// Tick compares the clock against the schedule and replays every missed
// phase transition in order, persisting after each step. Running it
// twice for the same target phase is a no-op.
func (s *EngineService) Tick(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.readyLocked(); err != nil {
		return err
	}

	now := s.nowMillis()
	for {
		next, pending := s.contest.NextPhase(now)
		if !pending {
			return nil
		}
		if err := s.advanceLocked(ctx, next); err != nil {
			return err
		}
		s.log.Info("phase transition", "phase", s.contest.Phase.String())
		if s.broadcaster != nil {
			s.broadcaster.BroadcastPhase(s.contest.Phase.String())
		}
	}
}

// advanceLocked runs one phase transition and commits it.
func (s *EngineService) advanceLocked(ctx context.Context, to models.Phase) error {
	var (
		next *contest.Contest
		err  error
	)
	switch to {
	case models.PhaseSubmission:
		next, err = s.contest.EnterSubmission()
	case models.PhaseQualification:
		var assignments []contest.QualifAssignment
		for _, plan := range s.contest.PlanQualifs(contest.NewSplitter(s.rng)) {
			threadIDs, terr := s.threads.CreateThreads(ctx, plan.ChannelID, len(plan.Splits))
			if terr != nil {
				return errors.Wrap(terr, errors.ErrInternal, "creating qualification threads")
			}
			assignments = append(assignments, contest.QualifAssignment{Plan: plan, ThreadIDs: threadIDs})
		}
		next, err = s.contest.EnterQualification(assignments)
	case models.PhaseSemifinal:
		next, err = s.contest.EnterSemifinal(s.rng)
	case models.PhaseFinal:
		next, err = s.contest.EnterFinal(s.rng, s.finalChannel)
	case models.PhaseFinished:
		next, err = s.contest.Finish()
		if err == nil {
			if aerr := s.repo.AppendExport(ctx, next.ID, next.ExportRows()); aerr != nil {
				return errors.Wrap(aerr, errors.ErrInternal, "appending results export")
			}
		}
	default:
		return errors.Internalf("no transition into phase %s", to)
	}
	if err != nil {
		return err
	}
	return s.commit(ctx, next)
}

// ForceTick is the admin surface over Tick.
func (s *EngineService) ForceTick(ctx context.Context) error {
	return s.Tick(ctx)
}

// Phase returns the machine position.
func (s *EngineService) Phase() models.Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.contest == nil {
		return models.PhaseIdle
	}
	return s.contest.Phase
}

// Contest returns the current aggregate value. The value is immutable;
// callers must not mutate it.
func (s *EngineService) Contest() *contest.Contest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.contest
}

// Competitions projects every bracket into its read model.
func (s *EngineService) Competitions() []CompetitionSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.contest == nil {
		return nil
	}
	return s.summarize(s.contest.Competitions)
}

// CurrentCompetitions projects the brackets whose window contains now.
func (s *EngineService) CurrentCompetitions() []CompetitionSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.contest == nil {
		return nil
	}
	current := s.contest.CurrentCompetitions(s.nowMillis())
	return s.summarize(current)
}

func (s *EngineService) summarize(comps []*contest.Competition) []CompetitionSummary {
	all := s.contest.Competitions
	indexOf := make(map[*contest.Competition]int, len(all))
	for i, comp := range all {
		indexOf[comp] = i
	}
	out := make([]CompetitionSummary, 0, len(comps))
	for _, comp := range comps {
		out = append(out, CompetitionSummary{
			Index:      indexOf[comp],
			Kind:       comp.Kind.String(),
			Name:       comp.Name,
			ChannelID:  comp.ChannelID,
			ThreadID:   comp.ThreadID,
			Start:      comp.Window.Start,
			End:        comp.Window.End,
			EntryCount: len(comp.Entries),
		})
	}
	return out
}

// Tally returns the current totals of the bracket at index.
func (s *EngineService) Tally(index int) (*TallySnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.readyLocked(); err != nil {
		return nil, err
	}
	if index < 0 || index >= len(s.contest.Competitions) {
		return nil, errors.CompetitionNotFoundf("no competition at index %d", index)
	}
	return tallyOf(s.contest.Competitions[index]), nil
}

func tallyOf(comp *contest.Competition) *TallySnapshot {
	jury := comp.CountVotesJury()
	public := comp.CountVotesPublic()
	snap := &TallySnapshot{Name: comp.Name, Kind: comp.Kind.String()}
	for _, entry := range comp.Entries {
		snap.Totals = append(snap.Totals, EntryTally{
			Entry:        entry,
			JuryPoints:   jury[entry],
			PublicPoints: public[entry],
		})
	}
	sort.SliceStable(snap.Totals, func(i, j int) bool {
		a, b := snap.Totals[i], snap.Totals[j]
		if a.JuryPoints != b.JuryPoints {
			return a.JuryPoints > b.JuryPoints
		}
		if a.PublicPoints != b.PublicPoints {
			return a.PublicPoints > b.PublicPoints
		}
		return a.Entry.SubmittedAt < b.Entry.SubmittedAt
	})
	return snap
}

// Results returns the outcome; the winner is set once the contest is
// finished.
func (s *EngineService) Results() (*ResultsView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.readyLocked(); err != nil {
		return nil, err
	}
	return &ResultsView{
		Phase:  s.contest.Phase.String(),
		Winner: s.contest.Winner,
		Duels:  s.contest.Duels,
	}, nil
}

// Export returns the audit rows persisted at finish.
func (s *EngineService) Export(ctx context.Context) ([]models.ExportRow, error) {
	s.mu.Lock()
	if err := s.readyLocked(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	id := s.contest.ID
	s.mu.Unlock()
	return s.repo.ListExport(ctx, id)
}

// findLocked locates a bracket while the engine lock is held. Newest
// first, matching the aggregate's own resolution order.
func (s *EngineService) findLocked(channelID, threadID string) (int, *contest.Competition, error) {
	comps := s.contest.Competitions
	for i := len(comps) - 1; i >= 0; i-- {
		if comps[i].Matches(channelID, threadID) {
			return i, comps[i], nil
		}
	}
	return 0, nil, errors.CompetitionNotFoundf("no competition for channel %s thread %q", channelID, threadID)
}

// broadcastTallyLocked pushes the affected bracket's totals to observers.
func (s *EngineService) broadcastTallyLocked(channelID, threadID string) {
	if s.broadcaster == nil {
		return
	}
	if _, comp, err := s.findLocked(channelID, threadID); err == nil {
		s.broadcaster.BroadcastTally(comp.Name, *tallyOf(comp))
	}
}
