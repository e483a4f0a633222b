package viewer

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/openairframe/stlview/pkg/stl"
)

// loadEvent is one observation from an in-flight load. Progress events
// arrive in byte order; exactly one terminal event (Mesh or Err set)
// follows them, after which the channel is closed.
type loadEvent struct {
	Loaded int64
	Total  int64 // 0 when the transport cannot tell
	Mesh   *stl.Mesh
	Err    error
}

func (e *loadEvent) terminal() bool {
	return e.Mesh != nil || e.Err != nil
}

const progressChunk = 64 * 1024

// startLoad fetches and decodes the mesh at src asynchronously.
// http(s) sources go through the network; anything else is a file path
// resolved against baseDir. The instance drains the returned channel
// from the main loop, so all observable effects stay single-threaded.
func startLoad(src, baseDir string) <-chan loadEvent {
	events := make(chan loadEvent, 8)
	go func() {
		defer close(events)

		body, total, err := open(src, baseDir)
		if err != nil {
			events <- loadEvent{Err: err}
			return
		}
		defer body.Close()

		data, err := readAll(body, total, events)
		if err != nil {
			events <- loadEvent{Err: fmt.Errorf("reading %s: %w", src, err)}
			return
		}

		mesh, err := stl.Parse(data)
		if err != nil {
			events <- loadEvent{Err: fmt.Errorf("decoding %s: %w", src, err)}
			return
		}
		events <- loadEvent{Mesh: mesh, Loaded: int64(len(data)), Total: total}
	}()
	return events
}

// open returns the asset stream and its total size when known (0 otherwise).
func open(src, baseDir string) (io.ReadCloser, int64, error) {
	if isHTTP(src) {
		resp, err := http.Get(src)
		if err != nil {
			return nil, 0, fmt.Errorf("fetching %s: %w", src, err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, 0, fmt.Errorf("fetching %s: unexpected status %s", src, resp.Status)
		}
		total := resp.ContentLength
		if total < 0 {
			total = 0
		}
		return resp.Body, total, nil
	}

	path := src
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("opening %s: %w", path, err)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, err
	}
	return f, fi.Size(), nil
}

func isHTTP(src string) bool {
	if !strings.Contains(src, "://") {
		return false
	}
	u, err := url.Parse(src)
	if err != nil {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// readAll drains r, emitting a progress event per chunk.
func readAll(r io.Reader, total int64, events chan<- loadEvent) ([]byte, error) {
	var data []byte
	buf := make([]byte, progressChunk)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			data = append(data, buf[:n]...)
			events <- loadEvent{Loaded: int64(len(data)), Total: total}
		}
		if err == io.EOF {
			return data, nil
		}
		if err != nil {
			return nil, err
		}
	}
}
