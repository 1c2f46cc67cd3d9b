package contest_test

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/ateliervote/concours/internal/contest"
	"github.com/ateliervote/concours/internal/errors"
	"github.com/ateliervote/concours/internal/models"
)

func testSchedule() models.Schedule {
	return models.Schedule{
		Submission:    models.Period{Start: 0, End: 1000},
		Qualification: models.Period{Start: 1000, End: 2000},
		Semifinal:     models.Period{Start: 2000, End: 3000},
		Final:         models.Period{Start: 3000, End: 4000},
	}
}

func newContest(categories ...contest.Category) *contest.Contest {
	if len(categories) == 0 {
		categories = []contest.Category{{Name: "painting", ChannelID: "chan-1"}}
	}
	return contest.New("contest-1", testSchedule(), categories)
}

// submitN registers n entries in channel and returns the updated contest.
func submitN(t *testing.T, c *contest.Contest, channel string, n int) *contest.Contest {
	t.Helper()
	for i := 0; i < n; i++ {
		sub := models.Submission{
			AuthorID:    fmt.Sprintf("author-%d", i),
			SubmittedAt: int64(1000 + i),
			URL:         fmt.Sprintf("https://example.com/%s-%d", channel, i),
		}
		next, _, err := c.AddSubmission(sub, channel, "", fmt.Sprintf("%s-msg-%d", channel, i), 500)
		if err != nil {
			t.Fatalf("AddSubmission(%d) failed: %v", i, err)
		}
		c = next
	}
	return c
}

func TestNew_OneBracketPerCategory(t *testing.T) {
	c := newContest(
		contest.Category{Name: "painting", ChannelID: "chan-1"},
		contest.Category{Name: "sculpture", ChannelID: "chan-2"},
	)

	if len(c.Competitions) != 2 {
		t.Fatalf("expected 2 brackets, got %d", len(c.Competitions))
	}
	if c.Phase != models.PhaseIdle {
		t.Errorf("expected phase idle, got %s", c.Phase)
	}
	for _, comp := range c.Competitions {
		if comp.Kind != models.KindSubmission {
			t.Errorf("expected submission bracket, got %s", comp.Kind)
		}
	}
}

func TestAddSubmission_OutsideWindow(t *testing.T) {
	c := newContest()

	_, _, err := c.AddSubmission(entry(0), "chan-1", "", "msg-0", 1500)
	if !errors.IsKind(err, errors.ErrInvalidPeriod) {
		t.Errorf("expected invalid period, got %v", err)
	}
}

func TestAddSubmission_UnknownChannel(t *testing.T) {
	c := newContest()

	_, _, err := c.AddSubmission(entry(0), "chan-9", "", "msg-0", 500)
	if !errors.IsKind(err, errors.ErrCompetitionNotFound) {
		t.Errorf("expected competition not found, got %v", err)
	}
}

func TestAddSubmission_AuthorQuota(t *testing.T) {
	c := newContest()

	for i := 0; i < contest.AuthorQuota; i++ {
		sub := entryBy("prolific", int64(100+i))
		sub.URL = fmt.Sprintf("https://example.com/p-%d", i)
		next, _, err := c.AddSubmission(sub, "chan-1", "", fmt.Sprintf("msg-%d", i), 500)
		if err != nil {
			t.Fatalf("AddSubmission(%d) failed: %v", i, err)
		}
		c = next
	}

	_, _, err := c.AddSubmission(entryBy("prolific", 900), "chan-1", "", "msg-extra", 500)
	if !errors.IsKind(err, errors.ErrQuotaExceeded) {
		t.Errorf("expected quota exceeded, got %v", err)
	}
}

// Mutations return a new value; the original contest is untouched.
func TestAddSubmission_CopyOnWrite(t *testing.T) {
	c := newContest()

	next, idx, err := c.AddSubmission(entry(0), "chan-1", "", "msg-0", 500)
	if err != nil {
		t.Fatalf("AddSubmission failed: %v", err)
	}
	if idx != 0 {
		t.Errorf("expected index 0, got %d", idx)
	}
	if len(c.Competitions[0].Entries) != 0 {
		t.Error("original contest gained an entry")
	}
	if len(next.Competitions[0].Entries) != 1 {
		t.Error("new contest missing the entry")
	}
}

func TestWithdrawSubmission(t *testing.T) {
	c := submitN(t, newContest(), "chan-1", 3)

	next, removed, err := c.WithdrawSubmission("chan-1", "", "chan-1-msg-1")
	if err != nil {
		t.Fatalf("WithdrawSubmission failed: %v", err)
	}
	if removed.AuthorID != "author-1" {
		t.Errorf("removed author = %s, want author-1", removed.AuthorID)
	}
	if len(next.Competitions[0].Entries) != 2 {
		t.Errorf("expected 2 entries after withdrawal, got %d", len(next.Competitions[0].Entries))
	}
	if len(c.Competitions[0].Entries) != 3 {
		t.Error("original contest lost an entry")
	}
}

func TestSavePublicVote_ResolvesMessage(t *testing.T) {
	c := submitN(t, newContest(), "chan-1", 2)

	next, err := c.SavePublicVote("chan-1", "", "chan-1-msg-0", "fan", 3, 500)
	if err != nil {
		t.Fatalf("SavePublicVote failed: %v", err)
	}
	totals := next.Competitions[0].CountVotesPublic()
	if totals[next.Competitions[0].Entries[0]] != 3 {
		t.Errorf("expected 3 points on first entry, got %v", totals)
	}

	if _, err := c.SavePublicVote("chan-1", "", "no-such-msg", "fan", 3, 500); !errors.IsKind(err, errors.ErrSubmissionNotFound) {
		t.Errorf("expected submission not found, got %v", err)
	}
	if _, err := c.SavePublicVote("chan-1", "", "chan-1-msg-0", "fan", 3, 5000); !errors.IsKind(err, errors.ErrInvalidPeriod) {
		t.Errorf("expected invalid period outside window, got %v", err)
	}
}

func TestPhaseTransitions_RunOnceEach(t *testing.T) {
	c := newContest()

	c2, err := c.EnterSubmission()
	if err != nil {
		t.Fatalf("EnterSubmission failed: %v", err)
	}
	if c2.Phase != models.PhaseSubmission {
		t.Errorf("phase = %s, want submission", c2.Phase)
	}

	if _, err := c2.EnterSubmission(); !errors.IsKind(err, errors.ErrAlreadyInPhase) {
		t.Errorf("expected replay to be rejected, got %v", err)
	}
}

func TestNextPhase_Stepwise(t *testing.T) {
	c := newContest()

	// Clock far past the final: transitions are still yielded one at a time.
	want := []models.Phase{
		models.PhaseSubmission,
		models.PhaseQualification,
		models.PhaseSemifinal,
		models.PhaseFinal,
		models.PhaseFinished,
	}
	rng := rand.New(rand.NewSource(1))
	for _, wantPhase := range want {
		next, pending := c.NextPhase(10_000)
		if !pending {
			t.Fatalf("expected a pending transition toward %s", wantPhase)
		}
		if next != wantPhase {
			t.Fatalf("next phase = %s, want %s", next, wantPhase)
		}
		var err error
		var advanced *contest.Contest
		switch next {
		case models.PhaseSubmission:
			advanced, err = c.EnterSubmission()
		case models.PhaseQualification:
			advanced, err = c.EnterQualification(nil)
		case models.PhaseSemifinal:
			advanced, err = c.EnterSemifinal(rng)
		case models.PhaseFinal:
			advanced, err = c.EnterFinal(rng, "chan-final")
		case models.PhaseFinished:
			advanced, err = c.Finish()
		}
		if err != nil {
			t.Fatalf("transition to %s failed: %v", next, err)
		}
		c = advanced
	}

	if _, pending := c.NextPhase(10_000); pending {
		t.Error("expected no pending transition after finish")
	}
}

// A category below the threshold skips qualification: its entries pass
// straight into the semifinal bracket.
func TestSmallCategorySkipsQualification(t *testing.T) {
	c := submitN(t, newContest(), "chan-1", 10)
	rng := rand.New(rand.NewSource(4))

	plans := c.PlanQualifs(contest.NewSplitter(rng))
	if len(plans) != 0 {
		t.Fatalf("expected no qualification plans for 10 entries, got %d", len(plans))
	}

	c, err := c.EnterSubmission()
	if err != nil {
		t.Fatalf("EnterSubmission failed: %v", err)
	}
	c, err = c.EnterQualification(nil)
	if err != nil {
		t.Fatalf("EnterQualification failed: %v", err)
	}
	if got := len(c.QualifCompetitions()); got != 0 {
		t.Fatalf("expected no qualification brackets, got %d", got)
	}

	c, err = c.EnterSemifinal(rng)
	if err != nil {
		t.Fatalf("EnterSemifinal failed: %v", err)
	}
	semis := c.SemisCompetitions()
	if len(semis) != 1 {
		t.Fatalf("expected 1 semifinal bracket, got %d", len(semis))
	}
	if len(semis[0].Entries) != 10 {
		t.Errorf("expected all 10 entries to pass through, got %d", len(semis[0].Entries))
	}
}

func TestLargeCategoryFlow(t *testing.T) {
	c := submitN(t, newContest(), "chan-1", 30)
	rng := rand.New(rand.NewSource(9))
	splitter := contest.NewSplitter(rng)

	plans := c.PlanQualifs(splitter)
	if len(plans) != 1 {
		t.Fatalf("expected 1 plan, got %d", len(plans))
	}
	splits := plans[0].Splits
	if len(splits) < 2 {
		t.Fatalf("expected 30 entries to split into multiple brackets, got %d", len(splits))
	}

	threadIDs := make([]string, len(splits))
	for i := range threadIDs {
		threadIDs[i] = fmt.Sprintf("thread-%d", i)
	}

	c, err := c.EnterSubmission()
	if err != nil {
		t.Fatalf("EnterSubmission failed: %v", err)
	}
	c, err = c.EnterQualification([]contest.QualifAssignment{{Plan: plans[0], ThreadIDs: threadIDs}})
	if err != nil {
		t.Fatalf("EnterQualification failed: %v", err)
	}

	qualifs := c.QualifCompetitions()
	if len(qualifs) != len(splits) {
		t.Fatalf("expected %d qualification brackets, got %d", len(splits), len(qualifs))
	}
	for i, q := range qualifs {
		if q.ThreadID != threadIDs[i] {
			t.Errorf("bracket %d thread = %s, want %s", i, q.ThreadID, threadIDs[i])
		}
		if q.ChannelID != "chan-1" {
			t.Errorf("bracket %d channel = %s, want chan-1", i, q.ChannelID)
		}
	}

	c, err = c.EnterSemifinal(rng)
	if err != nil {
		t.Fatalf("EnterSemifinal failed: %v", err)
	}
	semis := c.SemisCompetitions()
	if len(semis) != 1 {
		t.Fatalf("expected 1 semifinal bracket, got %d", len(semis))
	}
	// 4+1 advance from each qualification bracket.
	if want := 5 * len(splits); len(semis[0].Entries) != want {
		t.Errorf("expected %d semifinalists, got %d", want, len(semis[0].Entries))
	}

	c, err = c.EnterFinal(rng, "chan-final")
	if err != nil {
		t.Fatalf("EnterFinal failed: %v", err)
	}
	finals := c.FinalCompetitions()
	if len(finals) != 1 {
		t.Fatalf("expected 1 final bracket, got %d", len(finals))
	}
	if finals[0].ChannelID != "chan-final" {
		t.Errorf("final channel = %s, want chan-final", finals[0].ChannelID)
	}
	if len(finals[0].Entries) != 5 {
		t.Errorf("expected 5 finalists, got %d", len(finals[0].Entries))
	}

	c, err = c.Finish()
	if err != nil {
		t.Fatalf("Finish failed: %v", err)
	}
	if c.Winner == nil {
		t.Fatal("expected a winner after finish")
	}
	found := false
	for _, sub := range finals[0].Entries {
		if *c.Winner == sub {
			found = true
		}
	}
	if !found {
		t.Error("winner is not one of the finalists")
	}
}

func TestEnterQualification_ThreadCountMismatch(t *testing.T) {
	c := submitN(t, newContest(), "chan-1", 30)
	rng := rand.New(rand.NewSource(9))

	plans := c.PlanQualifs(contest.NewSplitter(rng))
	c, err := c.EnterSubmission()
	if err != nil {
		t.Fatalf("EnterSubmission failed: %v", err)
	}

	_, err = c.EnterQualification([]contest.QualifAssignment{{Plan: plans[0], ThreadIDs: []string{"only-one"}}})
	if !errors.IsKind(err, errors.ErrInvalidInput) {
		t.Errorf("expected invalid input for thread mismatch, got %v", err)
	}
}

func TestExportRows(t *testing.T) {
	c := submitN(t, newContest(), "chan-1", 10)
	rng := rand.New(rand.NewSource(14))

	c, err := c.EnterSubmission()
	if err != nil {
		t.Fatal(err)
	}
	c, err = c.EnterQualification(nil)
	if err != nil {
		t.Fatal(err)
	}
	c, err = c.EnterSemifinal(rng)
	if err != nil {
		t.Fatal(err)
	}

	// Public votes in the semifinal bracket.
	semis := c.SemisCompetitions()[0]
	c, err = c.BindEntryMessage(semis.ChannelID, semis.ThreadID, "semi-msg-0", 0)
	if err != nil {
		t.Fatalf("BindEntryMessage failed: %v", err)
	}
	c, err = c.SavePublicVote(semis.ChannelID, semis.ThreadID, "semi-msg-0", "fan", 3, 2500)
	if err != nil {
		t.Fatalf("SavePublicVote failed: %v", err)
	}

	c, err = c.EnterFinal(rng, "chan-final")
	if err != nil {
		t.Fatal(err)
	}

	// A jury ballot in the final.
	final := c.FinalCompetitions()[0]
	ranking := append([]models.Submission(nil), final.Entries[:3]...)
	c, err = c.SaveJuryVote(final.ChannelID, final.ThreadID, models.JuryVote{VoterID: "judge", Ranking: ranking}, 3500)
	if err != nil {
		t.Fatalf("SaveJuryVote failed: %v", err)
	}

	c, err = c.Finish()
	if err != nil {
		t.Fatal(err)
	}

	rows := c.ExportRows()
	var sawPublic, sawJudge bool
	for _, row := range rows {
		if row.Category == "painting" && row.Voter == "public" && row.Points == 3 {
			sawPublic = true
		}
		if row.Category == "final" && row.Voter == "judge" && row.Points == 6 {
			sawJudge = true
		}
	}
	if !sawPublic {
		t.Errorf("missing aggregated public row, rows: %+v", rows)
	}
	if !sawJudge {
		t.Errorf("missing judge total row, rows: %+v", rows)
	}
}
