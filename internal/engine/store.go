package engine

import (
	"sync"

	"github.com/gyaneshwarpardhi/graphgram/internal/run"
)

// resultStore retains the latest async results, evicting the oldest run
// once limit is exceeded.
type resultStore struct {
	mu      sync.Mutex
	limit   int
	results map[string]*run.Result
	order   []string // insertion order of run ids
}

func newResultStore(limit int) *resultStore {
	return &resultStore{limit: limit, results: make(map[string]*run.Result)}
}

// put stores res, replacing any earlier result for the same run.
func (s *resultStore) put(res *run.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.results[res.RunID]; !ok {
		s.order = append(s.order, res.RunID)
	}
	s.results[res.RunID] = res
	for s.limit > 0 && len(s.order) > s.limit {
		delete(s.results, s.order[0])
		s.order = s.order[1:]
	}
}

func (s *resultStore) drop(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.results[id]; !ok {
		return
	}
	delete(s.results, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *resultStore) get(id string) (*run.Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, ok := s.results[id]
	return res, ok
}
