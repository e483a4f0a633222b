package viewer

import (
	"bytes"
	"encoding/binary"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/openairframe/stlview/internal/engine/camera"
	"github.com/openairframe/stlview/internal/engine/scene"
	"github.com/openairframe/stlview/internal/page"
)

// writeTestSTL writes a two-triangle binary STL and returns its bytes.
func writeTestSTL(t *testing.T, path string) []byte {
	t.Helper()

	buf := new(bytes.Buffer)
	var head [80]byte
	copy(head[:], "test part")
	buf.Write(head[:])
	binary.Write(buf, binary.LittleEndian, uint32(2))
	tris := [][3][3]float32{
		{{0, 0, 0}, {4, 0, 0}, {4, 2, 0}},
		{{0, 0, 0}, {4, 2, 0}, {0, 2, 0}},
	}
	for _, tri := range tris {
		binary.Write(buf, binary.LittleEndian, [3]float32{})
		for _, v := range tri {
			binary.Write(buf, binary.LittleEndian, v)
		}
		binary.Write(buf, binary.LittleEndian, uint16(0))
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("writing test stl: %v", err)
	}
	return buf.Bytes()
}

// fakeBackend records calls so tests can observe side effects without
// a GL context.
type fakeBackend struct {
	resizes   [][2]int
	grid      *scene.Grid
	mesh      *scene.MeshNode
	renders   int
	destroyed bool
}

func (f *fakeBackend) Resize(w, h int)               { f.resizes = append(f.resizes, [2]int{w, h}) }
func (f *fakeBackend) UploadMesh(n *scene.MeshNode)  { f.mesh = n }
func (f *fakeBackend) UploadGrid(g *scene.Grid)      { f.grid = g }
func (f *fakeBackend) Destroy()                      { f.destroyed = true }
func (f *fakeBackend) Render(s *scene.Scene, c *camera.Orbit) uint32 {
	f.renders++
	return 1
}

type fakeFactory struct {
	backends []*fakeBackend
}

func (f *fakeFactory) new(w, h int) (Backend, error) {
	b := &fakeBackend{}
	f.backends = append(f.backends, b)
	return b, nil
}

// discoverOne builds a single-container page and runs a discovery pass.
func discoverOne(t *testing.T, attrs map[string]string, baseDir string) (*Instance, *fakeFactory) {
	t.Helper()
	f := &fakeFactory{}
	coord := NewCoordinator(f.new, testFallbackBG, 640, 480)
	p := &page.Page{
		Path:       filepath.Join(baseDir, "page.html"),
		Containers: []page.Container{{ID: "v0", Attrs: attrs}},
	}
	instances := coord.Discover(p)
	if len(instances) != 1 {
		t.Fatalf("expected 1 instance, got %d", len(instances))
	}
	return instances[0], f
}

// settle pumps the instance until its status leaves StatusLoading.
func settle(t *testing.T, inst *Instance) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		inst.Update(0.016)
		s := inst.Status()
		if s != StatusLoading && !isProgress(s) {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("instance never settled, status %q", inst.Status())
}

func isProgress(s string) bool {
	return len(s) > 8 && s[:8] == "Loading "
}

func TestScenarioA_ValidSource(t *testing.T) {
	dir := t.TempDir()
	writeTestSTL(t, filepath.Join(dir, "part.stl"))

	inst, f := discoverOne(t, map[string]string{"data-src": "part.stl"}, dir)

	if inst.Status() != StatusLoading && !isProgress(inst.Status()) {
		t.Errorf("initial status = %q", inst.Status())
	}
	if inst.Running() {
		t.Error("loop must not run before load")
	}

	settle(t, inst)
	if inst.Status() != StatusReady {
		t.Fatalf("status = %q, want %q", inst.Status(), StatusReady)
	}

	backend := f.backends[0]
	if backend.mesh == nil {
		t.Fatal("mesh never uploaded to backend")
	}
	if backend.renders != 0 {
		t.Error("rendered while invisible")
	}

	// Loop activates only once visible.
	inst.SetVisibleFraction(1)
	if !inst.Running() {
		t.Fatal("loop must run once loaded and visible")
	}
	inst.Update(0.016)
	if backend.renders != 1 {
		t.Errorf("renders = %d, want 1", backend.renders)
	}

	// And stops when scrolled away.
	inst.SetVisibleFraction(0.01)
	inst.Update(0.016)
	if backend.renders != 1 {
		t.Error("rendered while invisible after scroll-out")
	}
}

func TestScenarioB_MissingSource(t *testing.T) {
	inst, f := discoverOne(t, map[string]string{"data-grid": "true"}, t.TempDir())

	if inst.Status() != StatusMissing {
		t.Errorf("status = %q, want %q", inst.Status(), StatusMissing)
	}
	if !inst.Failed() {
		t.Error("expected failed instance")
	}
	// No drawing surface side effects at all.
	if len(f.backends) != 0 {
		t.Errorf("backend created for sourceless container")
	}

	inst.SetVisibleFraction(1)
	inst.Update(0.016)
	if inst.Running() {
		t.Error("loop must never run for a failed instance")
	}
}

func TestScenarioC_LoadFailure(t *testing.T) {
	inst, f := discoverOne(t, map[string]string{"data-src": "missing.stl"}, t.TempDir())

	inst.SetVisibleFraction(1)
	settle(t, inst)

	if inst.Status() != StatusFailed {
		t.Fatalf("status = %q, want %q", inst.Status(), StatusFailed)
	}
	if inst.Running() {
		t.Error("loop must never start after a failed load")
	}
	if f.backends[0].renders != 0 {
		t.Error("rendered after failed load")
	}
}

func TestScenarioD_GridConfiguration(t *testing.T) {
	dir := t.TempDir()
	writeTestSTL(t, filepath.Join(dir, "part.stl"))

	inst, f := discoverOne(t, map[string]string{
		"data-src":            "part.stl",
		"data-grid":           "true",
		"data-grid-size":      "500",
		"data-grid-divisions": "10",
		"data-grid-offset":    "-2",
	}, dir)
	settle(t, inst)

	grid := f.backends[0].grid
	if grid == nil {
		t.Fatal("grid never uploaded")
	}
	if grid.Size != 500 || grid.Divisions != 10 || grid.Offset != -2 {
		t.Errorf("grid = %f/%d/%f", grid.Size, grid.Divisions, grid.Offset)
	}
	for _, v := range grid.Vertices() {
		if v.Position[1] != -2 {
			t.Fatalf("grid vertex not at configured offset: %v", v.Position)
		}
	}
}

func TestProgressStatusFormatting(t *testing.T) {
	inst := &Instance{status: StatusLoading, log: zap.NewNop()}

	inst.apply(&loadEvent{Loaded: 50, Total: 200})
	if inst.Status() != "Loading 25%" {
		t.Errorf("status = %q, want 'Loading 25%%'", inst.Status())
	}

	// Unknown total: no percentage shown.
	inst.apply(&loadEvent{Loaded: 50, Total: 0})
	if inst.Status() != "Loading 25%" {
		t.Errorf("status changed on unknown total: %q", inst.Status())
	}
}

func TestResize_UpdatesAspectOnly(t *testing.T) {
	dir := t.TempDir()
	writeTestSTL(t, filepath.Join(dir, "part.stl"))

	inst, f := discoverOne(t, map[string]string{"data-src": "part.stl"}, dir)
	settle(t, inst)

	framedNear := inst.cam.Near
	inst.Resize(800, 200)

	if got := f.backends[0].resizes; len(got) != 1 || got[0] != [2]int{800, 200} {
		t.Errorf("backend resizes = %v", got)
	}
	if inst.cam.Aspect != 4 {
		t.Errorf("aspect = %f, want 4", inst.cam.Aspect)
	}
	if inst.cam.Near != framedNear {
		t.Error("resize must not reset camera framing")
	}
}

func TestDispose(t *testing.T) {
	dir := t.TempDir()
	writeTestSTL(t, filepath.Join(dir, "part.stl"))

	inst, f := discoverOne(t, map[string]string{"data-src": "part.stl"}, dir)
	settle(t, inst)
	inst.SetVisibleFraction(1)

	inst.Dispose()
	if !f.backends[0].destroyed {
		t.Error("backend not destroyed on dispose")
	}
	if inst.Running() {
		t.Error("disposed instance still running")
	}

	renders := f.backends[0].renders
	inst.Update(0.016)
	if f.backends[0].renders != renders {
		t.Error("disposed instance rendered")
	}

	inst.Dispose() // second call is a no-op
}

func TestDisposeDuringLoad(t *testing.T) {
	dir := t.TempDir()
	data := writeTestSTL(t, filepath.Join(dir, "part.stl"))

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.Write(data)
	}))
	defer srv.Close()

	inst, f := discoverOne(t, map[string]string{"data-src": srv.URL + "/part.stl"}, dir)
	inst.SetVisibleFraction(1)

	// The container disappears while the fetch is still blocked.
	inst.Dispose()
	close(release)

	// Pump until the in-flight load finishes draining. The late mesh
	// must be discarded, not applied to the destroyed backend.
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) && inst.events != nil {
		inst.Update(0.016)
		time.Sleep(time.Millisecond)
	}
	if inst.events != nil {
		t.Fatal("load events never drained after dispose")
	}

	backend := f.backends[0]
	if backend.mesh != nil {
		t.Error("mesh uploaded to a destroyed backend")
	}
	if backend.renders != 0 {
		t.Error("disposed instance rendered")
	}
	if inst.Status() != StatusLoading {
		t.Errorf("status = %q after dispose, want unchanged %q", inst.Status(), StatusLoading)
	}
	if inst.Running() {
		t.Error("disposed instance reports a running loop")
	}
}
