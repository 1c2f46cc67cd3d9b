package services

import (
	"context"

	"github.com/ateliervote/concours/internal/contest"
	"github.com/ateliervote/concours/internal/models"
	"github.com/ateliervote/concours/internal/platform"
)

// Broadcaster pushes engine updates to connected observers.
type Broadcaster interface {
	BroadcastPhase(phase string)
	BroadcastTally(category string, tally TallySnapshot)
}

// EngineServicer is the engine surface the transport layer depends on.
type EngineServicer interface {
	Phase() models.Phase
	Contest() *contest.Contest
	Competitions() []CompetitionSummary
	CurrentCompetitions() []CompetitionSummary
	Tally(index int) (*TallySnapshot, error)
	Results() (*ResultsView, error)
	Export(ctx context.Context) ([]models.ExportRow, error)

	HandleSubmission(ctx context.Context, ev platform.SubmissionEvent) (int, error)
	HandleWithdrawal(ctx context.Context, ev platform.WithdrawalEvent) (models.Submission, error)
	HandleReaction(ctx context.Context, ev platform.ReactionEvent) error
	HandleBallot(ctx context.Context, ev platform.BallotEvent) error
	BindMessage(ctx context.Context, channelID, threadID, messageID string, index int) error
	Tick(ctx context.Context) error
}

// CompetitionSummary is the read-model projection of one bracket.
type CompetitionSummary struct {
	Index      int    `json:"index"`
	Kind       string `json:"kind"`
	Name       string `json:"name"`
	ChannelID  string `json:"channel_id"`
	ThreadID   string `json:"thread_id,omitempty"`
	Start      int64  `json:"start"`
	End        int64  `json:"end"`
	EntryCount int    `json:"entry_count"`
}

// TallySnapshot is the current per-submission point totals of a bracket.
type TallySnapshot struct {
	Name   string       `json:"name"`
	Kind   string       `json:"kind"`
	Totals []EntryTally `json:"totals"`
}

// EntryTally pairs one entry with its current totals.
type EntryTally struct {
	Entry        models.Submission `json:"entry"`
	JuryPoints   float64           `json:"jury_points"`
	PublicPoints int               `json:"public_points"`
}

// ResultsView is the final outcome once the contest finished.
type ResultsView struct {
	Phase  string             `json:"phase"`
	Winner *models.Submission `json:"winner,omitempty"`
	Duels  []contest.Duel     `json:"duels,omitempty"`
}
