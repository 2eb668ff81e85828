package garden

import (
	"strings"
	"testing"
	"time"
)

func TestProfiler_StatsString(t *testing.T) {
	p := NewProfiler()
	p.BeginScope("Update")
	p.EndScope("Update")
	p.BeginScope("Render")
	p.EndScope("Render")
	p.Frames = 2
	p.SetCount("draw items", 6)

	stats := p.GetStatsString()
	if !strings.Contains(stats, "avg over 2 frames") {
		t.Errorf("Expected frame count in stats, got %q", stats)
	}
	if strings.Index(stats, "Update") > strings.Index(stats, "Render") {
		t.Errorf("Expected scopes in first-seen order, got %q", stats)
	}
	if !strings.Contains(stats, "draw items") {
		t.Errorf("Expected counts in stats, got %q", stats)
	}

	p.Reset()
	if p.Frames != 0 || p.Totals["Update"] != time.Duration(0) {
		t.Errorf("Expected Reset to clear totals")
	}
}

func TestApp_StepFeedsProfiler(t *testing.T) {
	app := NewApp().UseModules(RenderModule{}, FrameStatsModule{Interval: 1000})
	app.Step()
	app.Step()

	if app.profiler.Frames != 2 {
		t.Errorf("Expected 2 profiled frames, got %d", app.profiler.Frames)
	}
	if len(app.profiler.Order) != len(defaultStages)+1 {
		t.Errorf("Expected every stage to be timed, got %v", app.profiler.Order)
	}
	if n := app.profiler.Counts["draw items"]; n != 0 {
		t.Errorf("Expected no draw items, got %d", n)
	}
}
