package contest

import (
	"math/rand"
	"sort"

	"github.com/ateliervote/concours/internal/models"
)

// Selection sizes for the qualification stage: the top entries by
// contestant votes, plus the best remaining entry by public votes.
const (
	contestantSelectCount = 4
	publicSelectCount     = 1
)

// Duel is one pairwise comparison from the ranked resolution, kept for
// result presentation.
type Duel struct {
	Winner      models.Submission `json:"winner"`
	Loser       models.Submission `json:"loser"`
	WinnerScore float64           `json:"winner_score"`
	LoserScore  float64           `json:"loser_score"`
}

// RankedResult is the outcome of the ranked jury resolution.
type RankedResult struct {
	Winner    models.Submission `json:"winner"`
	Condorcet bool              `json:"condorcet"`
	Duels     []Duel            `json:"duels"`
}

// RankWeighted orders entries under the legacy weighted-upvote scheme:
// every public vote weighs 1 (0.5 when the voter authored the entry),
// entries sorted by votes from current contestants, then votes from
// everyone, then earlier submission time.
func RankWeighted(c *Competition) []models.Submission {
	c.ensureTallies()
	authors := c.contestants()

	fromContestants := make(map[models.Submission]float64, len(c.Entries))
	fromEveryone := make(map[models.Submission]float64, len(c.Entries))
	for _, v := range c.PublicVotes {
		if !c.HasEntry(v.Entry) {
			continue
		}
		w := 1.0
		if v.VoterID == v.Entry.AuthorID {
			w = selfWeight
		}
		fromEveryone[v.Entry] += w
		if authors[v.VoterID] {
			fromContestants[v.Entry] += w
		}
	}

	ranked := append([]models.Submission(nil), c.Entries...)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if fromContestants[a] != fromContestants[b] {
			return fromContestants[a] > fromContestants[b]
		}
		if fromEveryone[a] != fromEveryone[b] {
			return fromEveryone[a] > fromEveryone[b]
		}
		return a.SubmittedAt < b.SubmittedAt
	})
	return ranked
}

// TopWeighted selects the k best entries under the weighted-upvote
// scheme and shuffles them so the announcement never reveals rank order.
func TopWeighted(c *Competition, k int, rng *rand.Rand) []models.Submission {
	ranked := RankWeighted(c)
	if k > len(ranked) {
		k = len(ranked)
	}
	top := append([]models.Submission(nil), ranked[:k]...)
	rng.Shuffle(len(top), func(i, j int) {
		top[i], top[j] = top[j], top[i]
	})
	return top
}

// SelectQualifiers picks the bracket's advancing entries: the top four by
// contestant-only points (ties broken by total public points, then
// earlier submission), plus the best remaining entry by total public
// points (same tie-break order). The union is shuffled before it is
// announced.
func SelectQualifiers(c *Competition, rng *rand.Rand) []models.Submission {
	contestant := c.contestantPoints()
	total := c.CountVotesPublic()

	byContestant := append([]models.Submission(nil), c.Entries...)
	sort.SliceStable(byContestant, func(i, j int) bool {
		a, b := byContestant[i], byContestant[j]
		if contestant[a] != contestant[b] {
			return contestant[a] > contestant[b]
		}
		if total[a] != total[b] {
			return total[a] > total[b]
		}
		return a.SubmittedAt < b.SubmittedAt
	})

	n := contestantSelectCount
	if n > len(byContestant) {
		n = len(byContestant)
	}
	selected := append([]models.Submission(nil), byContestant[:n]...)
	taken := make(map[models.Submission]bool, n+publicSelectCount)
	for _, sub := range selected {
		taken[sub] = true
	}

	remaining := make([]models.Submission, 0, len(c.Entries)-n)
	for _, sub := range c.Entries {
		if !taken[sub] {
			remaining = append(remaining, sub)
		}
	}
	sort.SliceStable(remaining, func(i, j int) bool {
		a, b := remaining[i], remaining[j]
		if total[a] != total[b] {
			return total[a] > total[b]
		}
		if contestant[a] != contestant[b] {
			return contestant[a] > contestant[b]
		}
		return a.SubmittedAt < b.SubmittedAt
	})
	for i := 0; i < publicSelectCount && i < len(remaining); i++ {
		selected = append(selected, remaining[i])
	}

	rng.Shuffle(len(selected), func(i, j int) {
		selected[i], selected[j] = selected[j], selected[i]
	})
	return selected
}

// ResolveRanked resolves ranked jury ballots over candidates: a pairwise
// duel matrix decides a Condorcet winner when one exists, otherwise Borda
// count with iterative elimination. With no ballots at all the earliest
// submitted candidate wins.
func ResolveRanked(candidates []models.Submission, ballots []models.JuryVote) RankedResult {
	n := len(candidates)
	if n == 0 {
		return RankedResult{}
	}
	if n == 1 {
		return RankedResult{Winner: candidates[0], Condorcet: true}
	}
	if len(ballots) == 0 {
		return RankedResult{Winner: earliest(candidates)}
	}

	index := make(map[models.Submission]int, n)
	for i, sub := range candidates {
		index[sub] = i
	}

	// scores[a][b] is the weight of ballots preferring a over b. A ballot
	// only contributes to duels between candidates it ranks.
	scores := make([][]float64, n)
	for i := range scores {
		scores[i] = make([]float64, n)
	}
	for _, ballot := range ballots {
		for i := 0; i < len(ballot.Ranking); i++ {
			a, ok := index[ballot.Ranking[i]]
			if !ok {
				continue
			}
			w := 1.0
			if ballot.Ranking[i].AuthorID == ballot.VoterID {
				w = selfWeight
			}
			for j := i + 1; j < len(ballot.Ranking); j++ {
				b, ok := index[ballot.Ranking[j]]
				if !ok {
					continue
				}
				scores[a][b] += w
			}
		}
	}

	wins := make([]int, n)
	duels := make([]Duel, 0, n*(n-1)/2)
	for a := 0; a < n; a++ {
		for b := a + 1; b < n; b++ {
			sa, sb := scores[a][b], scores[b][a]
			wi, li := a, b
			if sb > sa || (sb == sa && candidates[b].SubmittedAt < candidates[a].SubmittedAt) {
				wi, li = b, a
			}
			wins[wi]++
			duels = append(duels, Duel{
				Winner:      candidates[wi],
				Loser:       candidates[li],
				WinnerScore: scores[wi][li],
				LoserScore:  scores[li][wi],
			})
		}
	}

	for i, w := range wins {
		if w == n-1 {
			return RankedResult{Winner: candidates[i], Condorcet: true, Duels: duels}
		}
	}

	return RankedResult{Winner: bordaElimination(candidates, ballots), Duels: duels}
}

// bordaElimination repeatedly removes the lowest-scoring remaining
// candidate under positional scoring until one remains. Ties at the
// bottom remove the later-submitted entry first.
func bordaElimination(candidates []models.Submission, ballots []models.JuryVote) models.Submission {
	remaining := append([]models.Submission(nil), candidates...)
	for len(remaining) > 1 {
		inPlay := make(map[models.Submission]bool, len(remaining))
		for _, sub := range remaining {
			inPlay[sub] = true
		}

		points := make(map[models.Submission]float64, len(remaining))
		for _, ballot := range ballots {
			rank := 0
			for _, sub := range ballot.Ranking {
				if !inPlay[sub] {
					continue
				}
				pts := float64(len(remaining) - rank)
				if sub.AuthorID == ballot.VoterID {
					pts -= selfWeight
				}
				points[sub] += pts
				rank++
			}
		}

		lowest := 0
		for i := 1; i < len(remaining); i++ {
			a, b := remaining[lowest], remaining[i]
			if points[b] < points[a] || (points[b] == points[a] && b.SubmittedAt > a.SubmittedAt) {
				lowest = i
			}
		}
		remaining = append(remaining[:lowest], remaining[lowest+1:]...)
	}
	return remaining[0]
}

// earliest returns the candidate with the smallest submission time.
func earliest(candidates []models.Submission) models.Submission {
	best := candidates[0]
	for _, sub := range candidates[1:] {
		if sub.SubmittedAt < best.SubmittedAt {
			best = sub
		}
	}
	return best
}
