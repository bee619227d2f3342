// Package scanner walks a content directory of HTML pages and extracts the
// galaxy metadata embedded in each page's head. It produces the flat entity
// records the layout engine consumes; hierarchy is inferred later from the
// parent references, not from the directory structure.
package scanner

import (
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"galaxy-forge/internal/galaxy"
)

// metaPrefix marks the <meta> tags the scanner cares about, e.g.
//
//	<meta name="galaxy-type" content="planet">
//	<meta name="galaxy-parent" content="systems/sol">
const metaPrefix = "galaxy-"

// Scanner extracts entity records from a tree of HTML pages.
type Scanner struct {
	contentDir string
}

// New creates a scanner rooted at contentDir.
func New(contentDir string) *Scanner {
	return &Scanner{contentDir: contentDir}
}

// Scan walks the content tree and returns one record per HTML page.
// Unreadable or unparseable pages are logged and skipped; a page tree with
// some broken files still produces a site. Only a missing content root is
// a hard error.
func (s *Scanner) Scan() ([]galaxy.Record, error) {
	info, err := os.Stat(s.contentDir)
	if err != nil {
		return nil, fmt.Errorf("scanner: content dir %q: %w", s.contentDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scanner: %q is not a directory", s.contentDir)
	}

	var records []galaxy.Record
	err = filepath.WalkDir(s.contentDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Printf("⚠️ Skipping %s: %v", path, err)
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".html") {
			return nil
		}

		rec, perr := s.scanPage(path)
		if perr != nil {
			log.Printf("⚠️ Skipping %s: %v", path, perr)
			return nil
		}
		records = append(records, rec)
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("📄 Scanned %d page(s) under %s", len(records), s.contentDir)
	return records, nil
}

// scanPage parses one HTML file into an entity record.
func (s *Scanner) scanPage(path string) (galaxy.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return galaxy.Record{}, err
	}
	defer f.Close()

	doc, err := html.Parse(f)
	if err != nil {
		return galaxy.Record{}, fmt.Errorf("parse: %w", err)
	}

	rel, err := filepath.Rel(s.contentDir, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)

	rec := galaxy.Record{
		// Default id is the extension-less relative path, so pages can
		// reference each other without declaring explicit ids
		ID:   strings.TrimSuffix(rel, filepath.Ext(rel)),
		Type: "planet",
		URL:  rel,
	}

	meta := map[string]string{}
	var title string
	walk(doc, func(n *html.Node) {
		switch n.Data {
		case "title":
			if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
				title = strings.TrimSpace(n.FirstChild.Data)
			}
		case "meta":
			name, content := attr(n, "name"), attr(n, "content")
			if strings.HasPrefix(name, metaPrefix) {
				meta[strings.TrimPrefix(name, metaPrefix)] = content
			}
		}
	})

	rec.Title = title
	if rec.Title == "" {
		rec.Title = rec.ID
	}

	if v, ok := meta["id"]; ok && v != "" {
		rec.ID = v
	}
	if v, ok := meta["type"]; ok && v != "" {
		rec.Type = v
	}
	if v, ok := meta["parent"]; ok {
		rec.Parent = v
	}
	if v, ok := meta["importance"]; ok {
		rec.Importance = v
	}
	if f, ok := parseFloatMeta(meta, "orbit-radius", path); ok {
		rec.OrbitRadius = &f
	}
	if f, ok := parseFloatMeta(meta, "orbit-angle", path); ok {
		rec.OrbitAngle = &f
	}
	if f, ok := parseFloatMeta(meta, "size-modifier", path); ok {
		rec.SizeModifier = f
	}

	// Explicit positions need both coordinates
	x, okX := parseFloatMeta(meta, "x", path)
	y, okY := parseFloatMeta(meta, "y", path)
	if okX && okY {
		rec.Position = &galaxy.Position{X: x, Y: y}
	}

	return rec, nil
}

// parseFloatMeta parses an optional numeric meta value.
// Malformed numbers are logged and ignored rather than failing the page.
func parseFloatMeta(meta map[string]string, key, path string) (float64, bool) {
	v, ok := meta[key]
	if !ok || v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("⚠️ %s: invalid %s%s value %q, ignoring", path, metaPrefix, key, v)
		return 0, false
	}
	return f, true
}

// walk visits every element node in the document.
func walk(n *html.Node, visit func(*html.Node)) {
	if n.Type == html.ElementNode {
		visit(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}

// attr returns the value of an attribute on an element node.
func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
