package charts

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/nharvey/govpulse/app/database"
)

const (
	OrganisationChartFile        = "articles_by_organisation.png"
	DailyChartFile               = "articles_by_day.png"
	DailyByOrganisationChartFile = "articles_by_day_by_organisation.png"
	HourlyChartFile              = "articles_by_hour.png"
)

// Renderer queries the store aggregations and writes summary charts as PNG
// files. An empty store renders nothing; that is not an error.
type Renderer struct {
	repo      database.ArticleRepository
	outputDir string
}

func NewRenderer(repo database.ArticleRepository, outputDir string) *Renderer {
	return &Renderer{
		repo:      repo,
		outputDir: outputDir,
	}
}

// Run renders every chart and returns the paths written.
func (r *Renderer) Run() ([]string, error) {
	if err := os.MkdirAll(r.outputDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create charts directory: %w", err)
	}

	var written []string

	path, err := r.renderOrganisationChart()
	if err != nil {
		return written, err
	}
	if path != "" {
		written = append(written, path)
	}

	path, err = r.renderDailyChart()
	if err != nil {
		return written, err
	}
	if path != "" {
		written = append(written, path)
	}

	path, err = r.renderDailyByOrganisationChart()
	if err != nil {
		return written, err
	}
	if path != "" {
		written = append(written, path)
	}

	path, err = r.renderHourlyChart()
	if err != nil {
		return written, err
	}
	if path != "" {
		written = append(written, path)
	}

	return written, nil
}

// renderOrganisationChart draws article counts per organisation, largest
// first. Articles without an organisation appear under "unknown".
func (r *Renderer) renderOrganisationChart() (string, error) {
	counts, err := r.repo.CountByOrganisation()
	if err != nil {
		return "", err
	}

	if len(counts) == 0 {
		slog.Debug("No articles stored, skipping organisation chart")
		return "", nil
	}

	bars := make([]chart.Value, 0, len(counts))
	for _, c := range counts {
		bars = append(bars, chart.Value{
			Label: c.Name,
			Value: float64(c.Count),
		})
	}

	graph := chart.BarChart{
		Title:    "Articles per organisation",
		Height:   512,
		BarWidth: 40,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 10, Bottom: 10},
		},
		XAxis: chart.Style{
			TextRotationDegrees: 45.0,
		},
		Bars: bars,
	}

	return r.writeChart(OrganisationChartFile, graph.Render)
}

// renderDailyChart draws the number of articles published per calendar day.
func (r *Renderer) renderDailyChart() (string, error) {
	counts, err := r.repo.CountByDay()
	if err != nil {
		return "", err
	}

	// A time series axis needs at least two points.
	if len(counts) < 2 {
		slog.Debug("Fewer than two day buckets, skipping daily chart", "buckets", len(counts))
		return "", nil
	}

	xValues := make([]time.Time, 0, len(counts))
	yValues := make([]float64, 0, len(counts))
	for _, c := range counts {
		xValues = append(xValues, c.Day)
		yValues = append(yValues, float64(c.Count))
	}

	graph := chart.Chart{
		Title:  "Articles per day",
		Height: 512,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 10, Bottom: 10},
		},
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeDateValueFormatter,
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Articles",
				XValues: xValues,
				YValues: yValues,
			},
		},
	}

	return r.writeChart(DailyChartFile, graph.Render)
}

// renderDailyByOrganisationChart draws one line per organisation over the
// same day axis. Days an organisation published nothing render as zero, so
// every series spans the full axis.
func (r *Renderer) renderDailyByOrganisationChart() (string, error) {
	counts, err := r.repo.CountByDayAndOrganisation()
	if err != nil {
		return "", err
	}

	days := make([]time.Time, 0)
	seen := make(map[time.Time]bool)
	perOrg := make(map[string]map[time.Time]int)
	orgs := make([]string, 0)

	for _, c := range counts {
		if !seen[c.Day] {
			seen[c.Day] = true
			days = append(days, c.Day)
		}
		if perOrg[c.Organisation] == nil {
			perOrg[c.Organisation] = make(map[time.Time]int)
			orgs = append(orgs, c.Organisation)
		}
		perOrg[c.Organisation][c.Day] = c.Count
	}

	// A time series axis needs at least two points.
	if len(days) < 2 {
		slog.Debug("Fewer than two day buckets, skipping daily organisation chart", "buckets", len(days))
		return "", nil
	}

	sort.Strings(orgs)

	series := make([]chart.Series, 0, len(orgs))
	for _, org := range orgs {
		yValues := make([]float64, 0, len(days))
		for _, day := range days {
			yValues = append(yValues, float64(perOrg[org][day]))
		}
		series = append(series, chart.TimeSeries{
			Name:    org,
			XValues: days,
			YValues: yValues,
		})
	}

	graph := chart.Chart{
		Title:  "Articles per day by organisation",
		Height: 512,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 10, Bottom: 10},
		},
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeDateValueFormatter,
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	return r.writeChart(DailyByOrganisationChartFile, graph.Render)
}

// renderHourlyChart draws article counts per hour of day with all 24
// buckets present, including empty ones.
func (r *Renderer) renderHourlyChart() (string, error) {
	counts, err := r.repo.CountByHour()
	if err != nil {
		return "", err
	}

	if len(counts) == 0 {
		slog.Debug("No articles stored, skipping hourly chart")
		return "", nil
	}

	perHour := make(map[int]int, len(counts))
	for _, c := range counts {
		perHour[c.Hour] = c.Count
	}

	bars := make([]chart.Value, 0, 24)
	for hour := 0; hour < 24; hour++ {
		bars = append(bars, chart.Value{
			Label: fmt.Sprintf("%02d:00", hour),
			Value: float64(perHour[hour]),
		})
	}

	graph := chart.BarChart{
		Title:    "Articles per hour of day",
		Height:   512,
		BarWidth: 20,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 10, Bottom: 10},
		},
		XAxis: chart.Style{
			TextRotationDegrees: 45.0,
		},
		Bars: bars,
	}

	return r.writeChart(HourlyChartFile, graph.Render)
}

func (r *Renderer) writeChart(fileName string, render func(chart.RendererProvider, io.Writer) error) (string, error) {
	path := filepath.Join(r.outputDir, fileName)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create chart file: %w", err)
	}

	if err := render(chart.PNG, f); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to render %s: %w", fileName, err)
	}

	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close chart file: %w", err)
	}

	slog.Debug("Chart written", "path", path)

	return path, nil
}
