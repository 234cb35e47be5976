package tasks

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/nharvey/govpulse/app/cfg"
	"github.com/nharvey/govpulse/app/charts"
	"github.com/nharvey/govpulse/app/database"
	"github.com/nharvey/govpulse/app/feed"
	"github.com/nharvey/govpulse/app/fetch"
	"github.com/nharvey/govpulse/app/sources"
)

// Runner executes the pipeline tasks strictly in order: every harvest task
// first, charts last. The store has one writer and one reader in the same
// process, so there is deliberately no worker pool.
type Runner struct {
	sources       []*sources.Source
	client        *fetch.Client
	parser        *feed.Parser
	normalizer    *feed.Normalizer
	pageExtractor *feed.PageExtractor
	repo          database.ArticleRepository
	renderer      *charts.Renderer
	interval      time.Duration
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
}

func NewRunner(srcs []*sources.Source, client *fetch.Client, parser *feed.Parser,
	normalizer *feed.Normalizer, pageExtractor *feed.PageExtractor,
	repo database.ArticleRepository, renderer *charts.Renderer) *Runner {
	ctx, cancel := context.WithCancel(context.Background())
	c := cfg.Get()

	return &Runner{
		sources:       srcs,
		client:        client,
		parser:        parser,
		normalizer:    normalizer,
		pageExtractor: pageExtractor,
		repo:          repo,
		renderer:      renderer,
		interval:      time.Duration(c.Interval) * time.Second,
		ctx:           ctx,
		cancel:        cancel,
	}
}

// RunOnce executes one full pipeline pass. The first failing task aborts
// the pass and its error is returned.
func (r *Runner) RunOnce(ctx context.Context) error {
	for _, task := range r.buildTasks() {
		task.Start()

		if err := task.Execute(ctx); err != nil {
			slog.Error("Task execution failed",
				"type", string(task.GetType()),
				"id", task.GetID(),
				"source", task.GetSourceName(),
				"error", err)
			return err
		}
	}

	return nil
}

// Start launches the periodic re-run loop. Only meaningful when an
// interval is configured; errors inside the loop are logged, not fatal,
// so a transient feed outage does not stop future passes.
func (r *Runner) Start() {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-r.ctx.Done():
				return
			case <-ticker.C:
				if err := r.RunOnce(r.ctx); err != nil {
					slog.Error("Pipeline pass failed", "error", err)
				}
			}
		}
	}()
}

func (r *Runner) Stop() {
	r.cancel()
	r.wg.Wait()
}

func (r *Runner) buildTasks() []TaskInterface {
	tasks := make([]TaskInterface, 0, len(r.sources)+1)

	for _, source := range r.sources {
		tasks = append(tasks, NewHarvestTask(source, r.client, r.parser,
			r.normalizer, r.pageExtractor, r.repo))
	}

	tasks = append(tasks, NewRenderChartsTask(r.renderer))

	return tasks
}
