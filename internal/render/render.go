package render

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"MarketPulse/internal/cache"
	"MarketPulse/internal/logger"
	"MarketPulse/internal/model"
)

// ErrNoData is returned when the cache holds nothing to render.
var ErrNoData = errors.New("no cached data to render, run refresh first")

//go:embed templates/report.html
var templateFS embed.FS

var reportTmpl = template.Must(template.ParseFS(templateFS, "templates/report.html"))

const reportTimeLayout = "1/2/2006, 15:04"

// Page is the data passed to the report template.
type Page struct {
	FetchedOn   string
	FetchedAgo  string
	GeneratedOn string
	Rows        []Row
}

// Renderer turns cached snapshots into a static HTML report.
type Renderer struct {
	log *zap.Logger
	now func() time.Time
}

// NewRenderer creates a Renderer.
func NewRenderer(log *zap.Logger) *Renderer {
	return &Renderer{log: logger.OrNop(log), now: time.Now}
}

// BuildPage selects the latest snapshot per symbol, highest prediction first.
func (r *Renderer) BuildPage(c *model.CacheFile) (*Page, error) {
	views := cache.LatestPerSymbol(c)
	if len(views) == 0 {
		return nil, ErrNoData
	}
	sort.SliceStable(views, func(i, j int) bool {
		return views[i].Latest.Prediction > views[j].Latest.Prediction
	})

	p := &Page{
		FetchedOn:   c.Data.LastGenerationDate,
		GeneratedOn: r.now().Format(reportTimeLayout),
		Rows:        make([]Row, 0, len(views)),
	}
	if p.FetchedOn == "" {
		p.FetchedOn = "unknown"
	}
	if ts, err := time.Parse(time.RFC3339, c.FetchTimestamp); err == nil {
		p.FetchedAgo = humanize.RelTime(ts, r.now(), "ago", "from now")
	}
	for _, v := range views {
		p.Rows = append(p.Rows, newRow(v))
	}
	return p, nil
}

// Render writes the report for c to w.
func (r *Renderer) Render(w io.Writer, c *model.CacheFile) error {
	p, err := r.BuildPage(c)
	if err != nil {
		return err
	}
	if err := reportTmpl.Execute(w, p); err != nil {
		return fmt.Errorf("execute template: %w", err)
	}
	return nil
}

// RenderFile writes the report for c to path, replacing it atomically.
func (r *Renderer) RenderFile(path string, c *model.CacheFile) error {
	var buf bytes.Buffer
	if err := r.Render(&buf, c); err != nil {
		return err
	}
	if err := cache.WriteAtomic(path, buf.Bytes()); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	r.log.Info("report written", zap.String("path", path), zap.String("size", humanize.Bytes(uint64(buf.Len()))))
	return nil
}
