package testutil

import (
	"math/rand"
	"strconv"
	"testing"
	"time"

	"github.com/ateliervote/concours/internal/models"
	"github.com/ateliervote/concours/internal/repository"
)

// NewTestRepository creates a new in-memory repository for testing.
// Each call creates a fresh database with all migrations applied.
func NewTestRepository(t *testing.T) *repository.Repository {
	t.Helper()

	repo, err := repository.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test repository: %v", err)
	}

	t.Cleanup(func() {
		repo.Close()
	})

	return repo
}

// NewRand returns a deterministic random source so shuffle-dependent
// assertions are stable.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// Entry builds a submission with a distinct author and timestamp derived
// from n.
func Entry(n int) models.Submission {
	return models.Submission{
		AuthorID:    authorID(n),
		SubmittedAt: int64(1000 + n),
		URL:         urlFor(n),
	}
}

// EntryBy builds a submission by a specific author.
func EntryBy(author string, submittedAt int64) models.Submission {
	return models.Submission{
		AuthorID:    author,
		SubmittedAt: submittedAt,
		URL:         "https://example.com/" + author,
	}
}

// Schedule builds a valid four-window schedule starting at start with
// each window lasting d.
func Schedule(start int64, d int64) models.Schedule {
	return models.Schedule{
		Submission:    models.Period{Start: start, End: start + d},
		Qualification: models.Period{Start: start + d, End: start + 2*d},
		Semifinal:     models.Period{Start: start + 2*d, End: start + 3*d},
		Final:         models.Period{Start: start + 3*d, End: start + 4*d},
	}
}

// ClockAt returns a fixed clock for the engine, in unix milliseconds.
func ClockAt(millis int64) func() time.Time {
	return func() time.Time {
		return time.UnixMilli(millis)
	}
}

func authorID(n int) string {
	return "author-" + strconv.Itoa(n)
}

func urlFor(n int) string {
	return "https://example.com/entry-" + strconv.Itoa(n)
}
