package viewer

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/openairframe/stlview/internal/engine/camera"
	"github.com/openairframe/stlview/internal/engine/scene"
	"github.com/openairframe/stlview/internal/logger"
	"github.com/openairframe/stlview/internal/page"
)

// Status messages shown in a container's status line.
const (
	StatusLoading = "Loading model..."
	StatusReady   = "Drag to rotate, scroll to zoom"
	StatusFailed  = "Failed to load STL"
	StatusMissing = "Missing data-src"
)

// Backend is the drawing surface owned by one instance. The GL
// implementation lives in internal/engine/renderer; tests substitute
// a fake.
type Backend interface {
	Resize(width, height int)
	UploadMesh(*scene.MeshNode)
	UploadGrid(*scene.Grid)
	Render(*scene.Scene, *camera.Orbit) uint32
	Destroy()
}

// BackendFactory creates a backend sized to a container's content box.
type BackendFactory func(width, height int) (Backend, error)

// Instance is one viewer bound to one container. It owns its scene,
// camera, scheduler, and backend exclusively; instances share nothing.
type Instance struct {
	ID  uuid.UUID
	Key string

	opts    Options
	scene   *scene.Scene
	cam     *camera.Orbit
	backend Backend
	sched   Scheduler

	status   string
	failed   bool
	disposed bool

	events  <-chan loadEvent
	texture uint32
	log     *zap.Logger
}

// newInstance builds a viewer for the container. All failures are
// contained: the returned instance is always usable by the shell, at
// worst stuck in a terminal failed state with an explanatory status.
func newInstance(key string, c *page.Container, baseDir string, fallbackBG mgl32.Vec3, factory BackendFactory, width, height int) *Instance {
	inst := &Instance{
		ID:     uuid.New(),
		Key:    key,
		status: StatusLoading,
	}
	inst.log = logger.Log.With(
		zap.String("container", key),
		zap.String("instance", inst.ID.String()),
	)

	opts, err := ParseOptions(c, fallbackBG)
	if err != nil {
		// The one fatal configuration error. No backend, no load, no
		// loop; siblings are unaffected.
		inst.status = StatusMissing
		inst.failed = true
		inst.log.Warn("container has no data-src")
		return inst
	}
	inst.opts = opts

	backend, err := factory(width, height)
	if err != nil {
		inst.status = StatusFailed
		inst.failed = true
		inst.log.Error("backend creation failed", zap.Error(err))
		return inst
	}
	inst.backend = backend

	inst.scene = scene.New(scene.Background{
		Transparent: opts.Transparent,
		Color:       opts.BackgroundColor,
	})
	if opts.ShowGrid {
		inst.scene.Grid = &scene.Grid{
			Size:      opts.GridSize,
			Divisions: opts.GridDivisions,
			Color1:    opts.GridColor1,
			Color2:    opts.GridColor2,
			Offset:    opts.GridOffset,
		}
		backend.UploadGrid(inst.scene.Grid)
	}

	cam := camera.New()
	cam.SetAspect(float32(width) / float32(height))
	cam.AutoRotate = opts.AutoRotate
	cam.AutoRotateSpeed = opts.AutoRotateSpeed
	inst.cam = cam

	inst.sched.OnStart = func() { inst.log.Debug("render loop started") }
	inst.sched.OnStop = func() { inst.log.Debug("render loop stopped") }

	inst.events = startLoad(opts.Source, baseDir)
	return inst
}

// Update drains load events and, when the loop is running, advances
// the controls and renders a frame. Called once per shell frame.
func (i *Instance) Update(dt float32) {
	i.poll()
	if !i.sched.Running() || i.backend == nil || i.disposed {
		return
	}
	i.cam.Update(dt)
	i.texture = i.backend.Render(i.scene, i.cam)
}

// poll applies pending load events on the main loop, keeping all
// observable state transitions single-threaded.
func (i *Instance) poll() {
	for i.events != nil {
		select {
		case ev, ok := <-i.events:
			if !ok {
				i.events = nil
				return
			}
			i.apply(&ev)
		default:
			return
		}
	}
}

func (i *Instance) apply(ev *loadEvent) {
	// A disposed instance has no backend; events from a load that was
	// still in flight when the container disappeared are discarded.
	if i.disposed {
		return
	}
	switch {
	case ev.Err != nil:
		i.status = StatusFailed
		i.failed = true
		i.log.Error("mesh load failed", zap.Error(ev.Err))

	case ev.Mesh != nil:
		node := &scene.MeshNode{
			Geometry: ev.Mesh,
			Material: scene.Material{
				Color:     i.opts.MeshColor,
				Metalness: i.opts.Metalness,
				Roughness: i.opts.Roughness,
			},
		}
		Normalize(node, i.opts.OffsetX)
		i.scene.Mesh = node

		_, radius := node.BoundingSphere()
		ApplyFraming(i.cam, FrameSphere(radius, i.cam.FOV, i.cam.Aspect))

		i.backend.UploadMesh(node)
		i.status = StatusReady
		i.sched.MarkLoaded()
		i.log.Info("mesh loaded",
			zap.String("source", i.opts.Source),
			zap.Int("triangles", ev.Mesh.TriangleCount()),
			zap.Float32("radius", radius),
		)

	default:
		if ev.Total > 0 {
			pct := int(float64(ev.Loaded) / float64(ev.Total) * 100)
			i.status = fmt.Sprintf("Loading %d%%", pct)
		}
	}
}

// SetVisibleFraction feeds the container's viewport intersection.
func (i *Instance) SetVisibleFraction(fraction float64) {
	i.sched.SetVisibleFraction(fraction)
}

// Resize matches the drawing buffer and projection to a new content
// box. The load is not restarted and framing is not reset.
func (i *Instance) Resize(width, height int) {
	if i.backend == nil || width <= 0 || height <= 0 {
		return
	}
	i.backend.Resize(width, height)
	i.cam.SetAspect(float32(width) / float32(height))
}

// HandleDrag rotates the orbit camera.
func (i *Instance) HandleDrag(dx, dy float32) {
	if i.cam != nil {
		i.cam.HandleDrag(dx, dy)
	}
}

// HandleZoom adjusts the orbit distance.
func (i *Instance) HandleZoom(delta float32) {
	if i.cam != nil {
		i.cam.HandleZoom(delta)
	}
}

// HandlePan moves the orbit target in the view plane.
func (i *Instance) HandlePan(dx, dy float32) {
	if i.cam != nil {
		i.cam.HandlePan(dx, dy)
	}
}

// Status returns the current status line for the container.
func (i *Instance) Status() string {
	return i.status
}

// Failed reports whether the instance is in a terminal failed state.
func (i *Instance) Failed() bool {
	return i.failed
}

// Running reports whether the render loop is active.
func (i *Instance) Running() bool {
	return i.sched.Running()
}

// Texture returns the last rendered frame's color texture.
func (i *Instance) Texture() uint32 {
	return i.texture
}

// Dispose releases the instance's backend resources. Safe to call
// more than once; a disposed instance renders nothing.
func (i *Instance) Dispose() {
	if i.disposed {
		return
	}
	i.disposed = true
	i.sched.SetVisibleFraction(0)
	if i.backend != nil {
		i.backend.Destroy()
		i.backend = nil
	}
	i.log.Debug("instance disposed")
}
