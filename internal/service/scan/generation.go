package scan

import "sync"

// Generations orders overlapping scans of one owner. Each scan takes a
// number from Begin; its result is published only if no newer scan has
// begun since.
type Generations struct {
	mu      sync.Mutex
	current uint64
	latest  *Result
}

// Begin starts a new generation and returns its number.
func (g *Generations) Begin() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.current++
	return g.current
}

// Current returns the newest generation number.
func (g *Generations) Current() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current
}

// Publish stores r if gen is still the newest generation. It reports
// whether r was published.
func (g *Generations) Publish(gen uint64, r *Result) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if gen != g.current {
		return false
	}
	r.Generation = gen
	g.latest = r
	return true
}

// Latest returns the last published result, or nil.
func (g *Generations) Latest() *Result {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.latest
}
