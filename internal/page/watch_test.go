package page

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcher_EventMatchesListedPath(t *testing.T) {
	root := t.TempDir()
	pagePath := filepath.Join(root, "index.html")
	mustWrite(t, pagePath, "<html></html>")

	// Watch through an uncleaned root, as a config value like "./docs"
	// would produce.
	w, err := NewWatcher(root + string(filepath.Separator) + ".")
	if err != nil {
		t.Skipf("watcher unavailable: %v", err)
	}
	defer w.Close()

	pages, err := List(root)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	if err := os.WriteFile(pagePath, []byte("<html><body></body></html>"), 0644); err != nil {
		t.Fatalf("rewriting page: %v", err)
	}

	select {
	case got := <-w.Events():
		if got != pages[0] {
			t.Errorf("event path %q does not match listed path %q", got, pages[0])
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no event for changed page")
	}
}
