package models_test

import (
	"testing"

	"github.com/ateliervote/concours/internal/models"
)

func validSchedule() models.Schedule {
	return models.Schedule{
		Submission:    models.Period{Start: 0, End: 100},
		Qualification: models.Period{Start: 100, End: 200},
		Semifinal:     models.Period{Start: 200, End: 300},
		Final:         models.Period{Start: 300, End: 400},
	}
}

func TestPeriod_Contains(t *testing.T) {
	p := models.Period{Start: 100, End: 200}

	tests := []struct {
		name string
		t    int64
		want bool
	}{
		{"before start", 99, false},
		{"at start", 100, true},
		{"inside", 150, true},
		{"at end", 200, false},
		{"after end", 201, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.Contains(tt.t); got != tt.want {
				t.Errorf("Contains(%d) = %v, want %v", tt.t, got, tt.want)
			}
		})
	}
}

func TestSchedule_Valid(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*models.Schedule)
		want   bool
	}{
		{"well-formed", func(s *models.Schedule) {}, true},
		{"empty window", func(s *models.Schedule) { s.Qualification.End = s.Qualification.Start }, false},
		{"inverted window", func(s *models.Schedule) { s.Final = models.Period{Start: 400, End: 300} }, false},
		{"overlapping windows", func(s *models.Schedule) { s.Semifinal.Start = 150 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSchedule()
			tt.modify(&s)
			if got := s.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSchedule_Valid_AllowsGaps(t *testing.T) {
	s := validSchedule()
	s.Semifinal = models.Period{Start: 250, End: 300}
	if !s.Valid() {
		t.Error("expected schedule with gap between windows to be valid")
	}
}

func TestSchedule_PhaseAt(t *testing.T) {
	s := validSchedule()

	tests := []struct {
		name string
		t    int64
		want models.Phase
	}{
		{"before everything", -10, models.PhaseIdle},
		{"submission open", 50, models.PhaseSubmission},
		{"qualification open", 150, models.PhaseQualification},
		{"semifinal open", 250, models.PhaseSemifinal},
		{"final open", 350, models.PhaseFinal},
		{"after final", 400, models.PhaseFinished},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.PhaseAt(tt.t); got != tt.want {
				t.Errorf("PhaseAt(%d) = %s, want %s", tt.t, got, tt.want)
			}
		})
	}
}

// A gap between two windows belongs to the following phase, so solving
// actions run as soon as the earlier window closes.
func TestSchedule_PhaseAt_GapBelongsToFollowingPhase(t *testing.T) {
	s := validSchedule()
	s.Semifinal = models.Period{Start: 250, End: 300}

	if got := s.PhaseAt(225); got != models.PhaseSemifinal {
		t.Errorf("PhaseAt(gap) = %s, want %s", got, models.PhaseSemifinal)
	}
}

func TestPhase_String(t *testing.T) {
	tests := []struct {
		phase models.Phase
		want  string
	}{
		{models.PhaseIdle, "idle"},
		{models.PhaseSubmission, "submission"},
		{models.PhaseQualification, "qualification"},
		{models.PhaseSemifinal, "semifinal"},
		{models.PhaseFinal, "final"},
		{models.PhaseFinished, "finished"},
		{models.Phase(42), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.phase.String(); got != tt.want {
			t.Errorf("Phase(%d).String() = %q, want %q", tt.phase, got, tt.want)
		}
	}
}

func TestSubmission_Comparable(t *testing.T) {
	a := models.Submission{AuthorID: "a", SubmittedAt: 1, URL: "u"}
	b := models.Submission{AuthorID: "a", SubmittedAt: 1, URL: "u"}
	c := models.Submission{AuthorID: "a", SubmittedAt: 2, URL: "u"}

	if a != b {
		t.Error("expected identical submissions to compare equal")
	}
	if a == c {
		t.Error("expected submissions with different timestamps to differ")
	}
}
