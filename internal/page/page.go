// Package page models documentation pages and the viewer containers they host.
package page

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
)

// hostClass marks an element as a viewer container.
const hostClass = "stl-viewer"

// Container is a viewer host element found on a page.
type Container struct {
	// ID is the element's id attribute, or a synthesized ordinal when
	// the author did not set one.
	ID    string
	Attrs map[string]string
}

// Attr returns the named attribute, or "" when absent.
func (c *Container) Attr(name string) string {
	return c.Attrs[name]
}

// Page is a parsed documentation page.
type Page struct {
	Path       string // Path the page was loaded from
	Title      string
	Containers []Container
}

// Dir returns the page's directory, used to resolve relative asset paths.
func (p *Page) Dir() string {
	return filepath.Dir(p.Path)
}

// ContainerKey identifies a container across discovery passes.
// Two passes over the same unchanged page yield the same keys.
func (p *Page) ContainerKey(c *Container) string {
	return p.Path + "#" + c.ID
}

// Open reads and parses the page at path.
func Open(path string) (*Page, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening page: %w", err)
	}
	defer f.Close()
	return Parse(path, f)
}

// Parse parses a documentation page and collects its viewer containers
// in document order.
func Parse(path string, r io.Reader) (*Page, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing page %s: %w", path, err)
	}

	p := &Page{Path: path}
	ordinal := 0
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if n.Data == "title" && p.Title == "" {
				p.Title = textContent(n)
			}
			if hasClass(n, hostClass) {
				c := Container{Attrs: make(map[string]string, len(n.Attr))}
				for _, a := range n.Attr {
					c.Attrs[strings.ToLower(a.Key)] = a.Val
				}
				c.ID = c.Attrs["id"]
				if c.ID == "" {
					c.ID = fmt.Sprintf("viewer-%d", ordinal)
				}
				ordinal++
				p.Containers = append(p.Containers, c)
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(root)

	return p, nil
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key != "class" {
			continue
		}
		for _, f := range strings.Fields(a.Val) {
			if f == class {
				return true
			}
		}
	}
	return false
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.TextNode {
			sb.WriteString(child.Data)
		}
	}
	return strings.TrimSpace(sb.String())
}

// List returns the HTML pages under root in lexical order. Paths
// include root and are cleaned, so they can be passed to Open directly
// and compared against watcher event paths. It is the shell's
// navigation order.
func List(root string) ([]string, error) {
	var pages []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if ext := strings.ToLower(filepath.Ext(path)); ext == ".html" || ext == ".htm" {
			pages = append(pages, filepath.Clean(path))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing pages under %s: %w", root, err)
	}
	return pages, nil
}
