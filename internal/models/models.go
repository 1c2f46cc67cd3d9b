package models

// Submission is an immutable contest entry. Identity is structural: the
// same value is shared by every stage the entry advances to, so lookups
// across brackets are plain equality checks. SubmittedAt is unix
// milliseconds and doubles as the tie-break key (earlier wins).
type Submission struct {
	AuthorID    string `json:"author_id"`
	SubmittedAt int64  `json:"submitted_at"`
	LocalPath   string `json:"local_path,omitempty"`
	URL         string `json:"url"`
}

// JuryVote is a full ranked ballot, most-preferred first.
type JuryVote struct {
	VoterID string       `json:"voter_id"`
	Ranking []Submission `json:"ranking"`
}

// PublicVote is a point allocation from the general audience. A voter's
// vote for a given submission overwrites any prior vote for it.
type PublicVote struct {
	VoterID string     `json:"voter_id"`
	Entry   Submission `json:"entry"`
	Points  int        `json:"points"`
}

// MaxPublicPoints bounds the current public voting scheme (0-3 points).
const MaxPublicPoints = 3

// Period is a half-open time window [Start, End) in unix milliseconds.
type Period struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

// Contains reports whether t falls inside the window.
func (p Period) Contains(t int64) bool {
	return t >= p.Start && t < p.End
}

// Schedule holds the four stage windows. Windows are ordered and
// non-overlapping; the qualification window may go unused for small
// categories.
type Schedule struct {
	Submission    Period `json:"submission"`
	Qualification Period `json:"qualification"`
	Semifinal     Period `json:"semifinal"`
	Final         Period `json:"final"`
}

// Valid reports whether the windows are well-formed and ordered.
func (s Schedule) Valid() bool {
	periods := []Period{s.Submission, s.Qualification, s.Semifinal, s.Final}
	for i, p := range periods {
		if p.Start >= p.End {
			return false
		}
		if i > 0 && p.Start < periods[i-1].End {
			return false
		}
	}
	return true
}

// Phase is the contest state machine position.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSubmission
	PhaseQualification
	PhaseSemifinal
	PhaseFinal
	// PhaseFinished is the post-final idle state. It is kept distinct from
	// PhaseIdle so recovery can tell a finished contest from one that has
	// not started and never re-runs the final resolution.
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSubmission:
		return "submission"
	case PhaseQualification:
		return "qualification"
	case PhaseSemifinal:
		return "semifinal"
	case PhaseFinal:
		return "final"
	case PhaseFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// PhaseAt derives the phase the contest should be in at time t. Gaps
// between windows belong to the following phase so that solving actions
// fire as soon as the earlier window closes.
func (s Schedule) PhaseAt(t int64) Phase {
	switch {
	case t < s.Submission.Start:
		return PhaseIdle
	case t < s.Submission.End:
		return PhaseSubmission
	case t < s.Qualification.End:
		return PhaseQualification
	case t < s.Semifinal.End:
		return PhaseSemifinal
	case t < s.Final.End:
		return PhaseFinal
	default:
		return PhaseFinished
	}
}

// CompetitionKind tags a bracket with its stage.
type CompetitionKind int

const (
	KindSubmission CompetitionKind = iota
	KindQualif
	KindSemis
	KindFinal
)

func (k CompetitionKind) String() string {
	switch k {
	case KindSubmission:
		return "submission"
	case KindQualif:
		return "qualif"
	case KindSemis:
		return "semis"
	case KindFinal:
		return "final"
	default:
		return "unknown"
	}
}

// ExportRow is one line of the append-only audit export: a category
// label, a voter identifier (or "public" for the aggregated audience
// total) and the points that voter cast in the category.
type ExportRow struct {
	Category string  `json:"category"`
	Voter    string  `json:"voter"`
	Points   float64 `json:"points"`
}

// WSMessage is the envelope pushed to WebSocket observers.
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
