package garden

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Profiler records the CPU time of each stage of the most recent tick plus running totals.
type Profiler struct {
	Scopes     map[string]time.Duration
	Totals     map[string]time.Duration
	StartTimes map[string]time.Time
	Counts     map[string]int
	Order      []string
	Frames     int
}

func NewProfiler() *Profiler {
	return &Profiler{
		Scopes:     make(map[string]time.Duration),
		Totals:     make(map[string]time.Duration),
		StartTimes: make(map[string]time.Time),
		Counts:     make(map[string]int),
		Order:      make([]string, 0),
	}
}

func (p *Profiler) BeginScope(name string) {
	if _, seen := p.StartTimes[name]; !seen {
		p.Order = append(p.Order, name)
	}
	p.StartTimes[name] = time.Now()
}

func (p *Profiler) EndScope(name string) {
	if start, ok := p.StartTimes[name]; ok {
		d := time.Since(start)
		p.Scopes[name] = d
		p.Totals[name] += d
	}
}

func (p *Profiler) SetCount(name string, count int) {
	p.Counts[name] = count
}

// Reset clears accumulated totals but keeps scope order.
func (p *Profiler) Reset() {
	for k := range p.Totals {
		p.Totals[k] = 0
	}
	p.Frames = 0
}

func (p *Profiler) GetStatsString() string {
	var sb strings.Builder

	frames := p.Frames
	if frames == 0 {
		frames = 1
	}
	sb.WriteString(fmt.Sprintf("Timings (CPU, avg over %d frames):\n", p.Frames))
	for _, name := range p.Order {
		avg := p.Totals[name] / time.Duration(frames)
		sb.WriteString(fmt.Sprintf("  %-15s: %.3f ms\n", name, float64(avg.Microseconds())/1000.0))
	}

	if len(p.Counts) > 0 {
		sb.WriteString("Stats:\n")
		keys := make([]string, 0, len(p.Counts))
		for k := range p.Counts {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			sb.WriteString(fmt.Sprintf("  %-15s: %d\n", k, p.Counts[k]))
		}
	}

	return sb.String()
}

// FrameStats runs after every frame's work, before the Finale cleanup.
var FrameStats = Stage{Name: "FrameStats"}

// FrameStatsModule logs stage timings every Interval frames when debug logging is on.
type FrameStatsModule struct {
	Interval int
}

func (m FrameStatsModule) Install(app *App, cmd *Commands) {
	interval := m.Interval
	if interval <= 0 {
		interval = 600
	}
	prof := app.profiler
	app.UseStage(FrameStats, BeforeStage(Finale))
	app.UseSystem(
		System(func(cmd *Commands) {
			prof.Frames++
			if prof.Frames < interval {
				return
			}
			if log := cmd.Logger(); log.DebugEnabled() {
				log.Debugf("frame %d\n%s", cmd.Frame(), prof.GetStatsString())
			}
			prof.Reset()
		}).InStage(FrameStats),
	)
}
