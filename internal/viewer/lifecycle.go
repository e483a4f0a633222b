package viewer

import (
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/openairframe/stlview/internal/logger"
	"github.com/openairframe/stlview/internal/page"
)

// Coordinator discovers viewer containers on documentation pages and
// keeps a registry of initialized instances so repeated discovery
// passes (initial load, navigation, page edits) initialize each
// container exactly once and dispose instances whose containers are
// gone.
type Coordinator struct {
	factory    BackendFactory
	fallbackBG mgl32.Vec3

	// Default content box for new panels; the shell resizes them later.
	panelWidth  int
	panelHeight int

	instances map[string]*Instance
}

// NewCoordinator creates a coordinator using factory for instance
// backends and fallbackBG for containers without a background color.
func NewCoordinator(factory BackendFactory, fallbackBG mgl32.Vec3, panelWidth, panelHeight int) *Coordinator {
	return &Coordinator{
		factory:     factory,
		fallbackBG:  fallbackBG,
		panelWidth:  panelWidth,
		panelHeight: panelHeight,
		instances:   make(map[string]*Instance),
	}
}

// Discover runs one discovery pass over a page: containers seen for
// the first time get an instance, known containers keep theirs, and
// registered instances whose containers no longer exist are disposed.
// Returns the page's instances in document order. A failing container
// never prevents its siblings from initializing.
func (c *Coordinator) Discover(p *page.Page) []*Instance {
	seen := make(map[string]bool, len(p.Containers))
	out := make([]*Instance, 0, len(p.Containers))

	for idx := range p.Containers {
		cont := &p.Containers[idx]
		key := p.ContainerKey(cont)
		seen[key] = true

		if inst, ok := c.instances[key]; ok {
			out = append(out, inst)
			continue
		}

		inst := newInstance(key, cont, p.Dir(), c.fallbackBG, c.factory, c.panelWidth, c.panelHeight)
		c.instances[key] = inst
		out = append(out, inst)
	}

	for key, inst := range c.instances {
		if !seen[key] {
			inst.Dispose()
			delete(c.instances, key)
		}
	}

	logger.Debug("discovery pass complete",
		zap.String("page", p.Path),
		zap.Int("containers", len(out)),
		zap.Int("registered", len(c.instances)),
	)
	return out
}

// Count returns the number of live instances.
func (c *Coordinator) Count() int {
	return len(c.instances)
}

// DisposeAll tears down every registered instance, used on shutdown.
func (c *Coordinator) DisposeAll() {
	for key, inst := range c.instances {
		inst.Dispose()
		delete(c.instances, key)
	}
}
