package garden

const (
	KeyEscape int = iota
	KeyMinus
	KeyEqual
	KeyKPPlus
	KeyKPMinus
	KeyP
	KeyR
	KeyF1
	MouseButtonLeft
	MouseButtonRight
	MouseButtonMiddle
	keyCount
)

// Input is the per-frame keyboard and mouse state. The window backend writes raw events
// through Press, Release, MoveMouse and Scroll; JustPressed, JustReleased, the mouse delta
// and the scroll accumulator are cleared when the frame ends.
type Input struct {
	Pressed      [keyCount]bool
	JustPressed  [keyCount]bool
	JustReleased [keyCount]bool

	MouseX, MouseY           float64
	MouseDeltaX, MouseDeltaY float64
	ScrollY                  float64
	mouseSeen                bool
}

func (input *Input) Press(key int) {
	if key < 0 || key >= keyCount {
		return
	}
	if !input.Pressed[key] {
		input.JustPressed[key] = true
	}
	input.Pressed[key] = true
}

func (input *Input) Release(key int) {
	if key < 0 || key >= keyCount {
		return
	}
	if input.Pressed[key] {
		input.JustReleased[key] = true
	}
	input.Pressed[key] = false
}

func (input *Input) MoveMouse(x, y float64) {
	if input.mouseSeen {
		input.MouseDeltaX += x - input.MouseX
		input.MouseDeltaY += y - input.MouseY
	}
	input.mouseSeen = true
	input.MouseX, input.MouseY = x, y
}

func (input *Input) Scroll(dy float64) {
	input.ScrollY += dy
}

func (input *Input) endFrame() {
	input.JustPressed = [keyCount]bool{}
	input.JustReleased = [keyCount]bool{}
	input.MouseDeltaX, input.MouseDeltaY = 0, 0
	input.ScrollY = 0
}

// InputModule installs the Input resource and the debug key bindings:
// +/- change the firefly size, P toggles the koi path overlay, F1 toggles debug logging.
// R (camera reset) is handled by OrbitControlsModule.
type InputModule struct {
	SizeStep float64
}

func (mod InputModule) Install(app *App, cmd *Commands) {
	step := mod.SizeStep
	if step <= 0 {
		step = 10
	}
	cmd.AddResources(&Input{}).
		UseSystem(
			System(func(input *Input, tunables *Tunables, cmd *Commands) {
				tunablesInputSystem(input, tunables, cmd.Logger(), step)
			}).InStage(Update),
		).
		UseSystem(
			System(inputEndFrameSystem).
				InStage(Finale),
		)
}

func tunablesInputSystem(input *Input, tunables *Tunables, log Logger, step float64) {
	size := tunables.FireflySize
	switch {
	case input.JustPressed[KeyEqual] || input.JustPressed[KeyKPPlus]:
		size.Set(size.Get() + step)
		log.Debugf("%s = %.0f", size.Name, size.Get())
	case input.JustPressed[KeyMinus] || input.JustPressed[KeyKPMinus]:
		size.Set(size.Get() - step)
		log.Debugf("%s = %.0f", size.Name, size.Get())
	}
	if input.JustPressed[KeyP] {
		tunables.ShowPath.Set(!tunables.ShowPath.Get())
	}
	if input.JustPressed[KeyF1] {
		log.SetDebug(!log.DebugEnabled())
		log.Infof("debug logging %t", log.DebugEnabled())
	}
}

func inputEndFrameSystem(input *Input) {
	input.endFrame()
}
