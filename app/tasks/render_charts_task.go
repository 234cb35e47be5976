package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nharvey/govpulse/app/charts"
)

// RenderChartsTask redraws every summary chart from the current store
// contents. It runs after all harvest tasks so the charts see the full
// batch.
type RenderChartsTask struct {
	Task
	renderer *charts.Renderer
}

func NewRenderChartsTask(renderer *charts.Renderer) *RenderChartsTask {
	return &RenderChartsTask{
		Task:     NewTask(TaskTypeRenderCharts, ""),
		renderer: renderer,
	}
}

func (t *RenderChartsTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	paths, err := t.renderer.Run()
	if err != nil {
		return fmt.Errorf("failed to render charts: %w", err)
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"duration", t.GetDuration(),
		"charts", len(paths))

	return nil
}
