package contest

import (
	"math/rand"

	"github.com/ateliervote/concours/internal/models"
)

// Splitter partitions a category's entries into qualification brackets.
// It is deterministic for a fixed rand source; production wires a
// time-seeded source, tests a fixed one.
type Splitter struct {
	rng *rand.Rand
}

// NewSplitter creates a Splitter using the given random source.
func NewSplitter(rng *rand.Rand) *Splitter {
	return &Splitter{rng: rng}
}

// Split partitions entries into the smallest number of brackets whose
// sizes all fit [MinBracketSize, MaxBracketSize], spreading one author's
// entries across different brackets whenever possible: entries are
// shuffled, grouped by author, the author order shuffled, and the grouped
// sequence dealt round-robin so an author's entries land in distinct
// brackets while K allows it. Each bracket is shuffled afterwards so the
// grouping leaves no positional bias.
func (s *Splitter) Split(entries []models.Submission) [][]models.Submission {
	n := len(entries)
	if n == 0 {
		return nil
	}

	shuffled := append([]models.Submission(nil), entries...)
	s.rng.Shuffle(n, func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	// Group by author, keeping the shuffled order inside each group.
	byAuthor := make(map[string][]models.Submission)
	authors := make([]string, 0)
	for _, sub := range shuffled {
		if _, seen := byAuthor[sub.AuthorID]; !seen {
			authors = append(authors, sub.AuthorID)
		}
		byAuthor[sub.AuthorID] = append(byAuthor[sub.AuthorID], sub)
	}
	s.rng.Shuffle(len(authors), func(i, j int) {
		authors[i], authors[j] = authors[j], authors[i]
	})

	sequence := make([]models.Submission, 0, n)
	for _, author := range authors {
		sequence = append(sequence, byAuthor[author]...)
	}

	k := bracketCount(n)
	brackets := make([][]models.Submission, k)
	for i, sub := range sequence {
		brackets[i%k] = append(brackets[i%k], sub)
	}
	for _, b := range brackets {
		s.rng.Shuffle(len(b), func(i, j int) {
			b[i], b[j] = b[j], b[i]
		})
	}
	return brackets
}

// bracketCount returns the smallest K for which an even split of n keeps
// every bracket within bounds (sizes differ by at most one). When no K
// satisfies the bounds it falls back to ceil(n/max) brackets with the
// remainder spread by the round-robin deal.
func bracketCount(n int) int {
	for k := 1; k <= n/MinBracketSize; k++ {
		lo := n / k
		hi := lo
		if n%k != 0 {
			hi = lo + 1
		}
		if lo >= MinBracketSize && hi <= MaxBracketSize {
			return k
		}
	}
	k := (n + MaxBracketSize - 1) / MaxBracketSize
	if k < 1 {
		k = 1
	}
	return k
}
