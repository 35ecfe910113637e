package report

import "sync"

// failingStreak is how many consecutive runs a store must fail before the
// failure is logged as an error rather than a warning.
const failingStreak = 3

// streaks counts consecutive failed runs per store across Builds.
// It is safe for concurrent use.
type streaks struct {
	mu     sync.Mutex
	counts map[string]int
}

func newStreaks() *streaks {
	return &streaks{counts: make(map[string]int)}
}

// record returns the store's consecutive failure count after this run
func (s *streaks) record(storeID string, failed bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !failed {
		delete(s.counts, storeID)
		return 0
	}
	s.counts[storeID]++
	return s.counts[storeID]
}

// retain forgets stores that are no longer in the dataset
func (s *streaks) retain(storeIDs []string) {
	keep := make(map[string]struct{}, len(storeIDs))
	for _, id := range storeIDs {
		keep[id] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.counts {
		if _, ok := keep[id]; !ok {
			delete(s.counts, id)
		}
	}
}
