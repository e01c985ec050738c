package orchestrator

import "fmt"

// ModelCacheStatus classifies the outcome of caching one model.
type ModelCacheStatus int

const (
	// Succeed means every strategy completed without a per-node error.
	Succeed ModelCacheStatus = iota
	// NotFullyCached means at least one strategy reported an error while
	// the others still ran.
	NotFullyCached
	// NotRead means the model could not be loaded.
	NotRead
)

// Statuses lists every status in report order.
func Statuses() []ModelCacheStatus {
	return []ModelCacheStatus{Succeed, NotFullyCached, NotRead}
}

func (s ModelCacheStatus) String() string {
	switch s {
	case Succeed:
		return "successful_models"
	case NotFullyCached:
		return "not_fully_cached_models"
	case NotRead:
		return "not_read_models"
	}
	return fmt.Sprintf("ModelCacheStatus(%d)", int(s))
}

// StatusMap buckets model identifiers by status, preserving insertion
// order inside each bucket.
type StatusMap map[ModelCacheStatus][]string

func (m StatusMap) add(s ModelCacheStatus, model string) {
	m[s] = append(m[s], model)
}

// Merge appends every bucket of other to m.
func (m StatusMap) Merge(other StatusMap) {
	for _, s := range Statuses() {
		for _, model := range other[s] {
			m.add(s, model)
		}
	}
}

// Counts returns the size of every bucket.
func (m StatusMap) Counts() map[ModelCacheStatus]int {
	out := make(map[ModelCacheStatus]int, len(m))
	for _, s := range Statuses() {
		out[s] = len(m[s])
	}
	return out
}
