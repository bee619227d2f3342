// Package site turns a layout snapshot into a static website: an index page
// with the positioned galaxy map, one page per entity, a build statistics
// page, a machine-readable sitemap and a PNG preview of the whole canvas.
package site

import (
	"encoding/json"
	"fmt"
	"html/template"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"galaxy-forge/internal/config"
	"galaxy-forge/internal/galaxy"
)

// Generator writes the static site for a layout snapshot.
type Generator struct {
	cfg   config.BuildConfig
	space config.SpaceConfig

	indexTmpl  *template.Template
	entityTmpl *template.Template
	statsTmpl  *template.Template
}

// NewGenerator parses the page templates and returns a ready generator.
func NewGenerator(cfg config.BuildConfig, space config.SpaceConfig) (*Generator, error) {
	g := &Generator{cfg: cfg, space: space}

	var err error
	if g.indexTmpl, err = template.New("index").Parse(indexTemplate); err != nil {
		return nil, fmt.Errorf("site: parse index template: %w", err)
	}
	if g.entityTmpl, err = template.New("entity").Parse(entityTemplate); err != nil {
		return nil, fmt.Errorf("site: parse entity template: %w", err)
	}
	if g.statsTmpl, err = template.New("stats").Parse(statsTemplate); err != nil {
		return nil, fmt.Errorf("site: parse stats template: %w", err)
	}
	return g, nil
}

// entityView is an entity prepared for templating. Positions are converted
// from engine pixels to canvas percentages here, and only here, so the pages
// scale with the viewport.
type entityView struct {
	galaxy.EntitySnapshot

	LeftPct float64
	TopPct  float64
	SizePct float64
	Slug    string
	Depth1  int // 1-based depth for display
}

// sitemapEntry is one entity in sitemap.json.
type sitemapEntry struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	Title    string   `json:"title,omitempty"`
	URL      string   `json:"url,omitempty"`
	Parent   string   `json:"parent,omitempty"`
	Children []string `json:"children,omitempty"`
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
	XPct     float64  `json:"xPct"`
	YPct     float64  `json:"yPct"`
	Depth    int      `json:"depth"`
}

// sitemap is the top-level sitemap.json document.
type sitemap struct {
	Title     string         `json:"title"`
	BuildNum  uint64         `json:"buildNum"`
	Generated string         `json:"generated"`
	Canvas    struct {
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
	} `json:"canvas"`
	Entities []sitemapEntry `json:"entities"`
}

// Generate writes the complete site for snap into the output directory.
func (g *Generator) Generate(snap *galaxy.LayoutSnapshot) error {
	if err := os.MkdirAll(g.cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("site: create output dir: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(g.cfg.OutputDir, "entities"), 0o755); err != nil {
		return fmt.Errorf("site: create entities dir: %w", err)
	}

	views := g.buildViews(snap)

	if err := g.writeIndex(snap, views); err != nil {
		return err
	}
	for _, v := range views {
		if err := g.writeEntityPage(snap, v, views); err != nil {
			return err
		}
	}
	if err := g.writeStats(snap); err != nil {
		return err
	}
	if err := g.writeSitemap(snap, views); err != nil {
		return err
	}

	preview := NewPreview(int(g.space.Width), int(g.space.Height))
	pngPath := filepath.Join(g.cfg.OutputDir, "galaxy.png")
	if err := preview.RenderPNG(snap, pngPath); err != nil {
		return fmt.Errorf("site: render preview: %w", err)
	}

	log.Printf("📄 Site written to %s (%d pages)", g.cfg.OutputDir, len(views)+2)
	return nil
}

func (g *Generator) buildViews(snap *galaxy.LayoutSnapshot) []entityView {
	views := make([]entityView, 0, len(snap.Entities))
	for _, e := range snap.Entities {
		views = append(views, entityView{
			EntitySnapshot: e,
			LeftPct:        100 * e.X / g.space.Width,
			TopPct:         100 * e.Y / g.space.Height,
			SizePct:        100 * 2 * e.Radius / g.space.Width,
			Slug:           slugify(e.ID),
			Depth1:         e.Depth + 1,
		})
	}
	sort.Slice(views, func(i, j int) bool { return views[i].ID < views[j].ID })
	return views
}

func (g *Generator) writeIndex(snap *galaxy.LayoutSnapshot, views []entityView) error {
	data := struct {
		Title    string
		BuildNum uint64
		Entities []entityView
		Metrics  galaxy.LayoutMetrics
	}{
		Title:    g.cfg.SiteTitle,
		BuildNum: snap.BuildNum,
		Entities: views,
		Metrics:  snap.Metrics,
	}
	return g.renderToFile(g.indexTmpl, filepath.Join(g.cfg.OutputDir, "index.html"), data)
}

func (g *Generator) writeEntityPage(snap *galaxy.LayoutSnapshot, v entityView, all []entityView) error {
	var children []entityView
	for _, c := range all {
		if c.Parent == v.ID {
			children = append(children, c)
		}
	}
	var parent *entityView
	for i := range all {
		if all[i].ID == v.Parent && v.Parent != "" {
			parent = &all[i]
			break
		}
	}

	data := struct {
		Site     string
		Entity   entityView
		Parent   *entityView
		Children []entityView
	}{
		Site:     g.cfg.SiteTitle,
		Entity:   v,
		Parent:   parent,
		Children: children,
	}
	path := filepath.Join(g.cfg.OutputDir, "entities", v.Slug+".html")
	return g.renderToFile(g.entityTmpl, path, data)
}

func (g *Generator) writeStats(snap *galaxy.LayoutSnapshot) error {
	m := snap.Metrics
	data := struct {
		Site       string
		BuildNum   uint64
		Metrics    galaxy.LayoutMetrics
		CalcMillis float64
		Generated  string
	}{
		Site:       g.cfg.SiteTitle,
		BuildNum:   snap.BuildNum,
		Metrics:    m,
		CalcMillis: float64(m.CalculationTime.Microseconds()) / 1000.0,
		Generated:  snap.Timestamp.Format("2006-01-02 15:04:05 MST"),
	}
	return g.renderToFile(g.statsTmpl, filepath.Join(g.cfg.OutputDir, "stats.html"), data)
}

func (g *Generator) writeSitemap(snap *galaxy.LayoutSnapshot, views []entityView) error {
	childIDs := make(map[string][]string)
	for _, v := range views {
		if v.Parent != "" {
			childIDs[v.Parent] = append(childIDs[v.Parent], v.ID)
		}
	}

	sm := sitemap{
		Title:     g.cfg.SiteTitle,
		BuildNum:  snap.BuildNum,
		Generated: snap.Timestamp.UTC().Format("2006-01-02T15:04:05Z"),
	}
	sm.Canvas.Width = g.space.Width
	sm.Canvas.Height = g.space.Height
	sm.Entities = make([]sitemapEntry, 0, len(views))
	for _, v := range views {
		sm.Entities = append(sm.Entities, sitemapEntry{
			ID:       v.ID,
			Type:     v.Type,
			Title:    v.Title,
			URL:      v.URL,
			Parent:   v.Parent,
			Children: childIDs[v.ID],
			X:        v.X,
			Y:        v.Y,
			XPct:     v.LeftPct,
			YPct:     v.TopPct,
			Depth:    v.Depth,
		})
	}

	f, err := os.Create(filepath.Join(g.cfg.OutputDir, "sitemap.json"))
	if err != nil {
		return fmt.Errorf("site: write sitemap: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(sm); err != nil {
		return fmt.Errorf("site: encode sitemap: %w", err)
	}
	return nil
}

func (g *Generator) renderToFile(tmpl *template.Template, path string, data any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("site: create %s: %w", path, err)
	}
	defer f.Close()

	if err := tmpl.Execute(f, data); err != nil {
		return fmt.Errorf("site: render %s: %w", path, err)
	}
	return nil
}

// slugify maps an entity id to a flat filename, e.g. "systems/sol" ->
// "systems--sol".
func slugify(id string) string {
	s := strings.ToLower(id)
	s = strings.ReplaceAll(s, "/", "--")
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	return b.String()
}

const indexTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
  body { margin: 0; background: #0c0c1c; color: #dce1eb; font-family: system-ui, sans-serif; }
  header { padding: 12px 20px; display: flex; justify-content: space-between; }
  header a { color: #6ec6ff; text-decoration: none; }
  .galaxy { position: relative; width: 100vw; height: 56.25vw; overflow: hidden; }
  .entity { position: absolute; border-radius: 50%; transform: translate(-50%, -50%);
            display: flex; align-items: center; justify-content: center; }
  .entity a { color: #fff; font-size: 0.7em; text-decoration: none; text-align: center; }
  .entity:hover { outline: 2px solid #fff; }
</style>
</head>
<body>
<header>
  <strong>{{.Title}}</strong>
  <span>build #{{.BuildNum}} · {{.Metrics.EntityCount}} entities · <a href="stats.html">stats</a></span>
</header>
<div class="galaxy">
{{range .Entities}}  <div class="entity" title="{{.Title}} ({{.Type}})"
       style="left: {{printf "%.3f" .LeftPct}}%; top: {{printf "%.3f" .TopPct}}%; width: {{printf "%.3f" .SizePct}}vw; height: {{printf "%.3f" .SizePct}}vw; background: {{.Color}};">
    <a href="entities/{{.Slug}}.html">{{.Title}}</a>
  </div>
{{end}}</div>
</body>
</html>
`

const entityTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Entity.Title}} · {{.Site}}</title>
<style>
  body { margin: 0; background: #0c0c1c; color: #dce1eb; font-family: system-ui, sans-serif; padding: 24px; }
  a { color: #6ec6ff; }
  .badge { display: inline-block; padding: 2px 10px; border-radius: 10px; background: {{.Entity.Color}}; color: #0c0c1c; }
  dl { display: grid; grid-template-columns: max-content 1fr; gap: 4px 16px; }
  dt { color: #8a93a6; }
</style>
</head>
<body>
<p><a href="../index.html">← back to the galaxy</a></p>
<h1>{{.Entity.Title}} <span class="badge">{{.Entity.Type}}</span></h1>
<dl>
  <dt>Importance</dt><dd>{{.Entity.Importance}}</dd>
  <dt>Priority</dt><dd>{{printf "%.1f" .Entity.Priority}}</dd>
  <dt>Orbit level</dt><dd>{{.Entity.Depth1}}</dd>
  <dt>Position</dt><dd>{{printf "%.1f%%, %.1f%%" .Entity.LeftPct .Entity.TopPct}}</dd>
{{if .Parent}}  <dt>Orbits</dt><dd><a href="{{.Parent.Slug}}.html">{{.Parent.Title}}</a></dd>
{{end}}</dl>
{{if .Children}}<h2>Satellites</h2>
<ul>
{{range .Children}}  <li><a href="{{.Slug}}.html">{{.Title}}</a> ({{.Type}})</li>
{{end}}</ul>
{{end}}</body>
</html>
`

const statsTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Build stats · {{.Site}}</title>
<style>
  body { margin: 0; background: #0c0c1c; color: #dce1eb; font-family: system-ui, sans-serif; padding: 24px; }
  a { color: #6ec6ff; }
  table { border-collapse: collapse; }
  td, th { padding: 6px 16px; border-bottom: 1px solid #2a2f40; text-align: left; }
</style>
</head>
<body>
<p><a href="index.html">← back to the galaxy</a></p>
<h1>Build #{{.BuildNum}}</h1>
<p>Generated {{.Generated}}</p>
<table>
  <tr><th>Entities</th><td>{{.Metrics.EntityCount}}</td></tr>
  <tr><th>Density</th><td>{{.Metrics.Density}}</td></tr>
  <tr><th>Strategy</th><td>{{.Metrics.StrategyUsed}}</td></tr>
  <tr><th>Layout time</th><td>{{printf "%.2f" .CalcMillis}} ms</td></tr>
  <tr><th>Collisions resolved</th><td>{{.Metrics.CollisionsResolved}}</td></tr>
  <tr><th>Iteration cap hit</th><td>{{.Metrics.IterationCapHit}}</td></tr>
  <tr><th>Performance score</th><td>{{printf "%.1f" .Metrics.PerformanceScore}}</td></tr>
  <tr><th>Re-rooted entities</th><td>{{.Metrics.Rerooted}}</td></tr>
</table>
<p><img src="galaxy.png" alt="galaxy preview" style="max-width: 100%"></p>
</body>
</html>
`
