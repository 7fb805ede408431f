package observable

import "sync"

// dependencySet is the set of consumers registered against one
// (target, property) pair. Membership is keyed by consumer ID, so
// re-recording the same triple is a no-op and notification order across
// consumers is unspecified.
type dependencySet struct {
	target  Target
	prop    string
	members map[uint64]Consumer
}

// Registry is the process-wide dependency table: Original Target +
// property name -> consumers that read it during a render pass.
//
// The registry never owns targets. Entries are indexed by object identity
// and are pruned only through explicit release: Unsubscribe when a
// consumer is torn down, Release when a target's owner lets it go.
type Registry struct {
	bridge RenderBridge

	mu sync.Mutex

	// targets indexes dependency sets by target identity.
	targets map[Target]map[string]*dependencySet

	// memberships tracks, per consumer ID, every set the consumer
	// joined so it can self-unsubscribe later.
	memberships map[uint64][]*dependencySet

	metrics *Metrics
}

// NewRegistry creates a registry that reports clean-to-dirty transitions
// through bridge.
func NewRegistry(bridge RenderBridge) *Registry {
	return &Registry{
		bridge:      bridge,
		targets:     make(map[Target]map[string]*dependencySet),
		memberships: make(map[uint64][]*dependencySet),
	}
}

// Record registers c as a dependent of (target, prop). Callers must only
// invoke this while a render pass is active and c is the consumer
// currently rendering; the proxy get trap enforces that precondition.
func (r *Registry) Record(c Consumer, target Target, prop string) {
	if c == nil || target == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	props, ok := r.targets[target]
	if !ok {
		props = make(map[string]*dependencySet)
		r.targets[target] = props
	}
	set, ok := props[prop]
	if !ok {
		set = &dependencySet{target: target, prop: prop, members: make(map[uint64]Consumer)}
		props[prop] = set
	}

	id := c.ID()
	if _, joined := set.members[id]; joined {
		return
	}
	set.members[id] = c
	r.memberships[id] = append(r.memberships[id], set)
	if r.metrics != nil {
		r.metrics.trackedReads.Inc()
	}
}

// Notify marks every consumer registered against (target, prop) dirty and
// schedules each exactly once. Consumers that are already dirty are
// skipped; a missing entry is a no-op. Returns the number of consumers
// scheduled.
func (r *Registry) Notify(target Target, prop string) int {
	r.mu.Lock()
	var consumers []Consumer
	if props, ok := r.targets[target]; ok {
		if set, ok := props[prop]; ok {
			consumers = make([]Consumer, 0, len(set.members))
			for _, c := range set.members {
				consumers = append(consumers, c)
			}
		}
	}
	r.mu.Unlock()

	// Copy-before-notify: the bridge may re-enter the registry while we
	// hand consumers off.
	scheduled := 0
	for _, c := range consumers {
		if c.Dirty() {
			continue
		}
		r.bridge.MarkDirty(c)
		r.bridge.ScheduleRerender(c)
		scheduled++
	}
	if r.metrics != nil && scheduled > 0 {
		r.metrics.notifications.Add(float64(scheduled))
	}
	return scheduled
}

// Unsubscribe removes c from every dependency set it joined. Called by
// the consumer lifecycle owner when the consumer is destroyed.
func (r *Registry) Unsubscribe(c Consumer) {
	if c == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := c.ID()
	for _, set := range r.memberships[id] {
		delete(set.members, id)
	}
	delete(r.memberships, id)
}

// Release drops every dependency row for target. This is the explicit
// ownership-release port of the original's weak indexing: the owner of a
// target calls it when the target's lifetime ends.
func (r *Registry) Release(target Target) {
	r.mu.Lock()
	defer r.mu.Unlock()

	props, ok := r.targets[target]
	if !ok {
		return
	}
	for _, set := range props {
		for id := range set.members {
			sets := r.memberships[id]
			for i, s := range sets {
				if s == set {
					r.memberships[id] = append(sets[:i], sets[i+1:]...)
					break
				}
			}
		}
	}
	delete(r.targets, target)
}

// RegistryStats is a point-in-time snapshot of registry shape, consumed
// by devtools and the bench CLI.
type RegistryStats struct {
	Targets     int `json:"targets"`
	Sets        int `json:"sets"`
	Memberships int `json:"memberships"`
}

// Stats returns a snapshot of the registry's current shape.
func (r *Registry) Stats() RegistryStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := RegistryStats{Targets: len(r.targets)}
	for _, props := range r.targets {
		stats.Sets += len(props)
		for _, set := range props {
			stats.Memberships += len(set.members)
		}
	}
	return stats
}
