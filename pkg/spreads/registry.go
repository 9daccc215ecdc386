package spreads

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps each stage to an ordered list of hooks. It is populated by
// explicit Register calls at startup.
type Registry struct {
	mu      sync.RWMutex
	seq     int
	entries map[Stage][]registration
}

type registration struct {
	hook  Hook
	order int
	seq   int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[Stage][]registration)}
}

// Register adds hook to stage. Hooks run by ascending order; equal orders
// keep registration order. A hook may serve several stages, but a name may
// appear only once per stage. A name identifies one hook across stages; it
// is initialized once per run as registered first.
func (r *Registry) Register(stage Stage, hook Hook, order int) error {
	if hook == nil {
		return ErrNilHook
	}
	if _, err := ParseStage(string(stage)); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.entries[stage] {
		if e.hook.Name() == hook.Name() {
			return fmt.Errorf("%w: %s already registered for %s", ErrDuplicateHook, hook.Name(), stage)
		}
	}
	r.seq++
	r.entries[stage] = append(r.entries[stage], registration{hook: hook, order: order, seq: r.seq})
	sort.SliceStable(r.entries[stage], func(i, j int) bool {
		a, b := r.entries[stage][i], r.entries[stage][j]
		if a.order != b.order {
			return a.order < b.order
		}
		return a.seq < b.seq
	})
	return nil
}

// Hooks returns the ordered hooks of stage.
func (r *Registry) Hooks(stage Stage) []Hook {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := r.entries[stage]
	hooks := make([]Hook, len(entries))
	for i, e := range entries {
		hooks[i] = e.hook
	}
	return hooks
}

// HooksFor returns every distinct hook serving any of stages, in first
// registration order. It is the set initialized for a run. Hooks are told
// apart by name, so hook values need not be comparable.
func (r *Registry) HooksFor(stages ...Stage) []Hook {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var all []registration
	for _, st := range stages {
		all = append(all, r.entries[st]...)
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].seq < all[j].seq })

	seen := make(map[string]bool, len(all))
	var hooks []Hook
	for _, e := range all {
		name := e.hook.Name()
		if seen[name] {
			continue
		}
		seen[name] = true
		hooks = append(hooks, e.hook)
	}
	return hooks
}

// Len returns the number of registrations across all stages.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, e := range r.entries {
		n += len(e)
	}
	return n
}
