package worker

import (
	"sort"
	"thundercipher/internal/domain/model"
)

// ComputeRanks assigns ranks 1..N over the given profiles, ordered by
// points descending. The input order breaks ties: callers pass profiles
// in created_at order, so earlier accounts rank ahead on equal points,
// matching the read path's ORDER BY points DESC, created_at ASC. Every
// profile gets a distinct rank.
func ComputeRanks(profiles []model.Profile) []model.RankUpdate {
	sorted := make([]model.Profile, len(profiles))
	copy(sorted, profiles)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Points > sorted[j].Points
	})

	updates := make([]model.RankUpdate, 0, len(sorted))
	for i, p := range sorted {
		updates = append(updates, model.RankUpdate{ProfileID: p.ID, Rank: i + 1})
	}
	return updates
}
