package contest

import (
	"math/rand"

	"github.com/ateliervote/concours/internal/errors"
	"github.com/ateliervote/concours/internal/models"
)

// The phase machine advances strictly stepwise:
//
//	Idle -> Submission -> Qualification -> Semifinal -> Final -> Finished
//
// The target phase is a pure function of the wall clock against the
// schedule; each Enter* transition runs its setup actions exactly once
// and is guarded so a replayed tick cannot run them twice. A process
// that was down across several boundaries replays every missed
// transition in order.

// TargetPhase derives the phase the clock says the contest should be in.
func (c *Contest) TargetPhase(now int64) models.Phase {
	return c.Schedule.PhaseAt(now)
}

// NextPhase is the transition the contest still has to run to reach
// target, or the current phase if none.
func (c *Contest) NextPhase(now int64) (models.Phase, bool) {
	target := c.TargetPhase(now)
	if c.Phase >= target {
		return c.Phase, false
	}
	return c.Phase + 1, true
}

// guard rejects a transition that already ran.
func (c *Contest) guard(to models.Phase) error {
	if c.Phase >= to {
		return errors.AlreadyInPhasef("contest already reached %s", c.Phase)
	}
	return nil
}

// EnterSubmission opens the contest. The category brackets exist from
// setup; the transition only moves the machine.
func (c *Contest) EnterSubmission() (*Contest, error) {
	if err := c.guard(models.PhaseSubmission); err != nil {
		return nil, err
	}
	next := *c
	next.Phase = models.PhaseSubmission
	return &next, nil
}

// EnterQualification materializes the qualification brackets from the
// splitter plans and the platform-minted threads. Categories below the
// threshold get no brackets; they pass through at the next transition.
func (c *Contest) EnterQualification(assignments []QualifAssignment) (*Contest, error) {
	if err := c.guard(models.PhaseQualification); err != nil {
		return nil, err
	}
	next, err := c.makeQualifs(assignments)
	if err != nil {
		return nil, err
	}
	next.Phase = models.PhaseQualification
	return next, nil
}

// EnterSemifinal closes qualification: selection per qualification
// bracket (or pass-through), one semifinal bracket per category.
func (c *Contest) EnterSemifinal(rng *rand.Rand) (*Contest, error) {
	if err := c.guard(models.PhaseSemifinal); err != nil {
		return nil, err
	}
	next := c.solveQualifs(rng)
	next.Phase = models.PhaseSemifinal
	return next, nil
}

// EnterFinal closes the semifinals and merges every category's
// finalists into the single cross-category final.
func (c *Contest) EnterFinal(rng *rand.Rand, finalChannelID string) (*Contest, error) {
	if err := c.guard(models.PhaseFinal); err != nil {
		return nil, err
	}
	next := c.solveSemis(rng, finalChannelID)
	next.Phase = models.PhaseFinal
	return next, nil
}

// Finish resolves the final with the ranked ballots and closes the
// contest. No further brackets are created.
func (c *Contest) Finish() (*Contest, error) {
	if err := c.guard(models.PhaseFinished); err != nil {
		return nil, err
	}
	next := c.solveFinal()
	next.Phase = models.PhaseFinished
	return next, nil
}
