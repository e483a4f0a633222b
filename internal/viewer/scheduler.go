package viewer

// VisibilityThreshold is the fraction of a container's area that must
// intersect the viewport before its loop runs.
const VisibilityThreshold = 0.05

// Scheduler is the {Stopped, Running} state machine gating a viewer's
// per-frame work. The loop runs only while a mesh has loaded AND the
// container is sufficiently visible; both transitions are idempotent
// and driven exclusively by events, never by user code poking the flag.
type Scheduler struct {
	loaded  bool
	visible bool
	running bool

	// Edge callbacks, optional.
	OnStart func()
	OnStop  func()
}

// MarkLoaded records load completion. It never fires for a failed
// load, so a failed instance can never start its loop.
func (s *Scheduler) MarkLoaded() {
	s.loaded = true
	s.evaluate()
}

// SetVisibleFraction feeds the intersection observation for the
// container, as a fraction of its area inside the viewport.
func (s *Scheduler) SetVisibleFraction(fraction float64) {
	s.visible = fraction >= VisibilityThreshold
	s.evaluate()
}

// Running reports whether the render loop is active.
func (s *Scheduler) Running() bool {
	return s.running
}

func (s *Scheduler) evaluate() {
	next := s.loaded && s.visible
	if next == s.running {
		return
	}
	s.running = next
	if next {
		if s.OnStart != nil {
			s.OnStart()
		}
	} else if s.OnStop != nil {
		s.OnStop()
	}
}
