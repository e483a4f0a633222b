package page

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const samplePage = `<!DOCTYPE html>
<html>
<head><title>Wing Build Log</title></head>
<body>
  <h1>Printing the wing</h1>
  <div class="stl-viewer" id="wing-root" data-src="models/wing_root.stl" data-grid="true"></div>
  <p>Some prose between viewers.</p>
  <div class="note stl-viewer" data-src="models/wing_tip.stl" data-color="#ff8800"></div>
  <div class="stl-viewer"></div>
  <div class="gallery">no viewer here</div>
</body>
</html>`

func TestParse_FindsContainers(t *testing.T) {
	p, err := Parse("docs/wing.html", strings.NewReader(samplePage))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if p.Title != "Wing Build Log" {
		t.Errorf("expected title 'Wing Build Log', got %q", p.Title)
	}
	if len(p.Containers) != 3 {
		t.Fatalf("expected 3 containers, got %d", len(p.Containers))
	}

	if p.Containers[0].ID != "wing-root" {
		t.Errorf("expected first container id 'wing-root', got %q", p.Containers[0].ID)
	}
	if got := p.Containers[0].Attr("data-src"); got != "models/wing_root.stl" {
		t.Errorf("expected data-src 'models/wing_root.stl', got %q", got)
	}
	if got := p.Containers[0].Attr("data-grid"); got != "true" {
		t.Errorf("expected data-grid 'true', got %q", got)
	}

	// Class token match, not substring: second container carries two classes.
	if got := p.Containers[1].Attr("data-color"); got != "#ff8800" {
		t.Errorf("expected data-color '#ff8800', got %q", got)
	}

	// Containers without an id get stable synthesized ordinals.
	if p.Containers[1].ID != "viewer-1" {
		t.Errorf("expected synthesized id 'viewer-1', got %q", p.Containers[1].ID)
	}
	if p.Containers[2].ID != "viewer-2" {
		t.Errorf("expected synthesized id 'viewer-2', got %q", p.Containers[2].ID)
	}
}

func TestParse_AbsentAttrIsEmpty(t *testing.T) {
	p, err := Parse("docs/wing.html", strings.NewReader(samplePage))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got := p.Containers[2].Attr("data-src"); got != "" {
		t.Errorf("expected empty data-src, got %q", got)
	}
}

func TestContainerKey_StableAcrossPasses(t *testing.T) {
	first, err := Parse("docs/wing.html", strings.NewReader(samplePage))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	second, err := Parse("docs/wing.html", strings.NewReader(samplePage))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	for i := range first.Containers {
		k1 := first.ContainerKey(&first.Containers[i])
		k2 := second.ContainerKey(&second.Containers[i])
		if k1 != k2 {
			t.Errorf("container %d: keys differ across passes: %q vs %q", i, k1, k2)
		}
	}
}

func TestList(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "index.html"), "<html></html>")
	mustWrite(t, filepath.Join(root, "build", "wing.html"), "<html></html>")
	mustWrite(t, filepath.Join(root, "build", "notes.md"), "# notes")

	pages, err := List(root)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("expected 2 pages, got %d: %v", len(pages), pages)
	}
	want := []string{
		filepath.Join(root, "build", "wing.html"),
		filepath.Join(root, "index.html"),
	}
	for _, w := range want {
		found := false
		for _, p := range pages {
			if p == w {
				found = true
			}
		}
		if !found {
			t.Errorf("expected page %q in listing %v", w, pages)
		}
	}

	// Listed paths must be directly openable, wherever the process runs.
	for _, p := range pages {
		if _, err := Open(p); err != nil {
			t.Errorf("Open(%q) failed: %v", p, err)
		}
	}
}

func TestList_PathsMatchWatcherNames(t *testing.T) {
	// The shell compares watcher event paths against List output to
	// decide whether the current page changed. Both sides are cleaned,
	// so a root like "./docs" cannot break the comparison.
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "index.html"), "<html></html>")

	pages, err := List(root + string(filepath.Separator) + ".")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("expected 1 page, got %v", pages)
	}
	if want := filepath.Clean(filepath.Join(root, "index.html")); pages[0] != want {
		t.Errorf("listed path %q, want cleaned %q", pages[0], want)
	}
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
}
