package garden

import (
	"time"
)

// Time is the frame clock shared by every time-driven system. Elapsed starts at 0 on the
// first tick and never decreases.
type Time struct {
	Start   time.Time
	Time    time.Time
	Dt      time.Duration
	Frame   uint64
	elapsed time.Duration
	started bool
	now     func() time.Time
}

// Elapsed returns seconds since the first tick.
func (t *Time) Elapsed() float64 {
	return t.elapsed.Seconds()
}

// DtSeconds returns the previous frame duration in seconds.
func (t *Time) DtSeconds() float64 {
	return t.Dt.Seconds()
}

func (t *Time) sample() {
	now := t.now()
	if !t.started {
		t.started = true
		t.Start = now
		t.Time = now
		t.Dt = 0
		t.elapsed = 0
		return
	}

	t.Frame++
	elapsed := now.Sub(t.Start)
	if elapsed < t.elapsed {
		// a clock that steps backwards holds the last value
		elapsed = t.elapsed
	}
	t.Dt = elapsed - t.elapsed
	t.elapsed = elapsed
	t.Time = now
}

type TimeModule struct {
	// Now overrides the clock source; defaults to time.Now (monotonic).
	Now func() time.Time
}

func (mod TimeModule) Install(app *App, cmd *Commands) {
	now := mod.Now
	if now == nil {
		now = time.Now
	}
	cmd.AddResources(&Time{now: now})
	app.UseSystem(
		System(timeSystem).
			InStage(Prelude),
	)
}

func timeSystem(timeResource *Time) {
	timeResource.sample()
}
