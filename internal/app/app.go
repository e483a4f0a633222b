// Package app implements the documentation browser shell: it opens
// pages from the docs directory, lays their viewer panels out in a
// scrollable column, and runs the main loop that feeds visibility,
// input, and frame time to each panel's viewer instance.
package app

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/openairframe/stlview/internal/config"
	"github.com/openairframe/stlview/internal/engine/input"
	"github.com/openairframe/stlview/internal/engine/renderer"
	"github.com/openairframe/stlview/internal/engine/ui2d"
	"github.com/openairframe/stlview/internal/engine/window"
	"github.com/openairframe/stlview/internal/logger"
	"github.com/openairframe/stlview/internal/page"
	"github.com/openairframe/stlview/internal/viewer"
)

// Layout metrics in logical pixels.
const (
	panelMargin   = 24
	panelGap      = 32
	panelHeight   = 420
	headerHeight  = 56
	footerHeight  = 26
	minPanelWidth = 200

	scrollStep = 60
)

// panel is one viewer container placed in the page column.
type panel struct {
	inst   *viewer.Instance
	title  string
	docY   float32
	width  float32
	height float32
}

// screenY returns the panel's top edge in window coordinates.
func (p *panel) screenY(scroll float32) float32 {
	return p.docY - scroll
}

// App is the documentation browser.
type App struct {
	cfg     *config.Config
	win     *window.Window
	overlay *ui2d.Renderer
	in      *input.Input
	coord   *viewer.Coordinator
	watcher *page.Watcher

	pages   []string
	pageIdx int
	current *page.Page
	panels  []*panel

	winWidth  int
	winHeight int
	scroll    float32
	docHeight float32

	dragPanel *panel
	dragPan   bool

	running bool
}

// New creates the shell: window, GL context, overlay renderer, page
// index, and the viewer coordinator. The first page is opened
// immediately.
func New(cfg *config.Config) (*App, error) {
	a := &App{
		cfg:       cfg,
		winWidth:  cfg.Window.Width,
		winHeight: cfg.Window.Height,
	}

	var err error
	a.win, err = window.New(window.Config{
		Title:  "OpenAirframe STL Viewer",
		Width:  cfg.Window.Width,
		Height: cfg.Window.Height,
		VSync:  cfg.Window.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("creating window: %w", err)
	}

	a.overlay, err = ui2d.New(a.winWidth, a.winHeight)
	if err != nil {
		a.win.Close()
		return nil, fmt.Errorf("creating overlay renderer: %w", err)
	}

	a.in = input.New()

	ratio := float64(a.win.PixelRatio())
	if max := cfg.Viewer.MaxPixelRatio; max > 0 && ratio > max {
		ratio = max
	}
	factory := func(w, h int) (viewer.Backend, error) {
		return renderer.New(w, h, ratio)
	}
	fallbackBG := viewer.ParseHexColor(cfg.Viewer.Background, mgl32.Vec3{0.1, 0.11, 0.13})
	a.coord = viewer.NewCoordinator(factory, fallbackBG, a.panelWidth(), panelHeight)

	if err := a.refreshPageList(); err != nil {
		a.Close()
		return nil, err
	}
	if len(a.pages) == 0 {
		a.Close()
		return nil, fmt.Errorf("no documentation pages under %s", cfg.Docs.Root)
	}
	a.pageIdx = a.findStartPage()
	if err := a.openPage(a.pages[a.pageIdx]); err != nil {
		a.Close()
		return nil, err
	}

	if cfg.Docs.Watch {
		a.watcher, err = page.NewWatcher(cfg.Docs.Root)
		if err != nil {
			// Editing support is optional; browsing still works.
			logger.Warn("docs watcher unavailable", zap.Error(err))
		}
	}

	return a, nil
}

// Run drives the main loop until quit.
func (a *App) Run() error {
	a.running = true
	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	logger.Info("starting browser loop", zap.String("page", a.current.Path))

	for a.running {
		now := time.Now()
		dt := float32(now.Sub(lastTime).Seconds())
		lastTime = now

		if a.in.Update() {
			a.running = false
			break
		}
		a.handleEvents()
		a.drainWatcher()

		a.updatePanels(dt)
		a.render()
		a.win.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			logger.Debug("fps", zap.Int("count", frameCount))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

// Close releases all shell resources.
func (a *App) Close() {
	if a.watcher != nil {
		a.watcher.Close()
	}
	if a.coord != nil {
		a.coord.DisposeAll()
	}
	if a.overlay != nil {
		a.overlay.Close()
	}
	if a.win != nil {
		a.win.Close()
	}
}

func (a *App) panelWidth() int {
	w := a.winWidth - 2*panelMargin
	if w < minPanelWidth {
		w = minPanelWidth
	}
	return w
}

func (a *App) refreshPageList() error {
	pages, err := page.List(a.cfg.Docs.Root)
	if err != nil {
		return fmt.Errorf("listing pages: %w", err)
	}
	sort.Strings(pages)
	a.pages = pages
	return nil
}

func (a *App) findStartPage() int {
	start := a.cfg.Docs.StartPage
	for i, p := range a.pages {
		if p == start || strings.HasSuffix(p, start) {
			return i
		}
	}
	return 0
}

// openPage parses a page and lays out its viewer panels. Instances for
// containers already known to the coordinator survive; everything else
// is created or disposed as needed.
func (a *App) openPage(path string) error {
	p, err := page.Open(path)
	if err != nil {
		return fmt.Errorf("opening page %s: %w", path, err)
	}
	a.current = p
	a.scroll = 0
	a.layout(a.coord.Discover(p))

	title := p.Title
	if title == "" {
		title = path
	}
	a.win.SetTitle(title + " - OpenAirframe STL Viewer")
	logger.Info("page opened",
		zap.String("path", path),
		zap.Int("panels", len(a.panels)),
	)
	return nil
}

// reloadPage re-parses the current page after an edit, keeping camera
// state for containers that still exist.
func (a *App) reloadPage() {
	p, err := page.Open(a.current.Path)
	if err != nil {
		logger.Warn("reloading page failed", zap.Error(err))
		return
	}
	a.current = p
	a.layout(a.coord.Discover(p))
}

// layout assigns document-space rectangles to the page's panels.
func (a *App) layout(instances []*viewer.Instance) {
	width := float32(a.panelWidth())
	a.panels = a.panels[:0]

	y := float32(headerHeight)
	for i, inst := range instances {
		title := a.current.Containers[i].ID
		a.panels = append(a.panels, &panel{
			inst:   inst,
			title:  title,
			docY:   y,
			width:  width,
			height: panelHeight,
		})
		inst.Resize(int(width), panelHeight)
		y += panelHeight + footerHeight + panelGap
	}
	a.docHeight = y + panelMargin
	a.clampScroll()
}

func (a *App) clampScroll() {
	max := a.docHeight - float32(a.winHeight)
	if max < 0 {
		max = 0
	}
	if a.scroll < 0 {
		a.scroll = 0
	}
	if a.scroll > max {
		a.scroll = max
	}
}

func (a *App) handleEvents() {
	for _, ev := range a.in.Events() {
		switch ev.Type {
		case input.EventWindowResize:
			a.winWidth, a.winHeight = ev.Width, ev.Height
			a.overlay.Resize(ev.Width, ev.Height)
			a.layout(a.coord.Discover(a.current))

		case input.EventKeyDown:
			a.handleKey(ev.Key)

		case input.EventMouseWheel:
			if p := a.panelAt(float32(mouseX()), float32(mouseY())); p != nil {
				p.inst.HandleZoom(ev.ScrollY)
			} else {
				a.scroll -= ev.ScrollY * scrollStep
				a.clampScroll()
			}

		case input.EventMouseDown:
			if ev.Button == sdl.BUTTON_LEFT || ev.Button == sdl.BUTTON_RIGHT {
				if p := a.panelAt(float32(ev.MouseX), float32(ev.MouseY)); p != nil {
					a.dragPanel = p
					a.dragPan = ev.Button == sdl.BUTTON_RIGHT || shiftHeld()
				}
			}

		case input.EventMouseUp:
			if ev.Button == sdl.BUTTON_LEFT || ev.Button == sdl.BUTTON_RIGHT {
				a.dragPanel = nil
			}

		case input.EventMouseMove:
			if a.dragPanel != nil {
				if a.dragPan {
					a.dragPanel.inst.HandlePan(float32(ev.RelX), float32(ev.RelY))
				} else {
					a.dragPanel.inst.HandleDrag(float32(ev.RelX), float32(ev.RelY))
				}
			}
		}
	}
}

func (a *App) handleKey(key sdl.Scancode) {
	switch key {
	case sdl.SCANCODE_ESCAPE, sdl.SCANCODE_Q:
		a.running = false

	case sdl.SCANCODE_RIGHT, sdl.SCANCODE_N:
		a.switchPage(a.pageIdx + 1)
	case sdl.SCANCODE_LEFT, sdl.SCANCODE_P:
		a.switchPage(a.pageIdx - 1)

	case sdl.SCANCODE_R:
		a.reloadPage()

	case sdl.SCANCODE_DOWN, sdl.SCANCODE_PAGEDOWN:
		step := float32(scrollStep)
		if key == sdl.SCANCODE_PAGEDOWN {
			step = float32(a.winHeight) * 0.8
		}
		a.scroll += step
		a.clampScroll()
	case sdl.SCANCODE_UP, sdl.SCANCODE_PAGEUP:
		step := float32(scrollStep)
		if key == sdl.SCANCODE_PAGEUP {
			step = float32(a.winHeight) * 0.8
		}
		a.scroll -= step
		a.clampScroll()

	case sdl.SCANCODE_HOME:
		a.scroll = 0
	case sdl.SCANCODE_END:
		a.scroll = a.docHeight
		a.clampScroll()
	}
}

func (a *App) switchPage(idx int) {
	if idx < 0 || idx >= len(a.pages) || idx == a.pageIdx {
		return
	}
	a.pageIdx = idx
	a.dragPanel = nil
	if err := a.openPage(a.pages[idx]); err != nil {
		logger.Error("page switch failed", zap.Error(err))
	}
}

// drainWatcher applies docs-directory changes: the current page is
// reloaded when its file changes, and the page index is refreshed so
// new pages become reachable.
func (a *App) drainWatcher() {
	if a.watcher == nil {
		return
	}
	changed := false
	reload := false
	for {
		select {
		case path, ok := <-a.watcher.Events():
			if !ok {
				a.watcher = nil
				return
			}
			changed = true
			if path == a.current.Path {
				reload = true
			}
		default:
			if changed {
				if err := a.refreshPageList(); err != nil {
					logger.Warn("refreshing page list failed", zap.Error(err))
				}
			}
			if reload {
				logger.Info("page changed on disk, reloading", zap.String("path", a.current.Path))
				a.reloadPage()
			}
			return
		}
	}
}

// updatePanels feeds each instance its visibility fraction and frame
// time. Instances render to their offscreen buffers here.
func (a *App) updatePanels(dt float32) {
	for _, p := range a.panels {
		p.inst.SetVisibleFraction(a.visibleFraction(p))
		p.inst.Update(dt)
	}
}

// visibleFraction is the part of the panel rectangle inside the
// window, in [0, 1].
func (a *App) visibleFraction(p *panel) float64 {
	top := p.screenY(a.scroll)
	bottom := top + p.height

	visTop := top
	if visTop < 0 {
		visTop = 0
	}
	visBottom := bottom
	if h := float32(a.winHeight); visBottom > h {
		visBottom = h
	}
	if visBottom <= visTop {
		return 0
	}
	return float64(visBottom-visTop) / float64(p.height)
}

// panelAt returns the panel under a window-space point, nil when the
// point is outside every panel.
func (a *App) panelAt(x, y float32) *panel {
	for _, p := range a.panels {
		py := p.screenY(a.scroll)
		if x >= panelMargin && x < panelMargin+p.width && y >= py && y < py+p.height {
			return p
		}
	}
	return nil
}

// render composites the page: panel scene textures first, then the
// overlay chrome and status lines.
func (a *App) render() {
	dw, dh := a.win.DrawableSize()
	a.overlay.BeginScreen(dw, dh, ui2d.ColorPageBg)

	for _, p := range a.panels {
		if a.visibleFraction(p) == 0 {
			continue
		}
		if tex := p.inst.Texture(); tex != 0 {
			a.overlay.DrawSceneTexture(panelMargin, p.screenY(a.scroll), p.width, p.height, tex)
		}
	}

	a.overlay.Begin()

	if a.current.Title != "" {
		a.overlay.DrawText(panelMargin, 18-a.scroll, a.current.Title, 2, ui2d.ColorText)
	}

	for _, p := range a.panels {
		py := p.screenY(a.scroll)
		if py > float32(a.winHeight) || py+p.height+footerHeight < 0 {
			continue
		}

		if p.inst.Texture() == 0 {
			// Nothing rendered yet: placeholder background
			a.overlay.DrawRect(panelMargin, py, p.width, p.height, ui2d.ColorPanelBg)
		}
		a.overlay.DrawRectOutline(panelMargin, py, p.width, p.height, 1, ui2d.ColorPanelBorder)

		statusColor := ui2d.ColorTextDim
		if p.inst.Failed() {
			statusColor = ui2d.ColorTextError
		}
		a.overlay.DrawText(panelMargin, py+p.height+6, p.inst.Status(), 1, statusColor)

		if p.title != "" {
			w, _ := a.overlay.MeasureText(p.title, 1)
			a.overlay.DrawText(panelMargin+p.width-w-8, py+p.height+6, p.title, 1, ui2d.ColorTextDim)
		}
	}

	if len(a.pages) > 1 {
		nav := fmt.Sprintf("page %d/%d  (left/right to switch)", a.pageIdx+1, len(a.pages))
		a.overlay.DrawText(panelMargin, float32(a.winHeight)-20, nav, 1, ui2d.ColorTextDim)
	}

	a.overlay.End()
}

func shiftHeld() bool {
	return sdl.GetModState()&sdl.KMOD_SHIFT != 0
}

func mouseX() int {
	x, _, _ := sdl.GetMouseState()
	return int(x)
}

func mouseY() int {
	_, y, _ := sdl.GetMouseState()
	return int(y)
}
