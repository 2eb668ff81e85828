package garden

import (
	"context"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// WindowState is the single GLFW window the garden renders into.
type WindowState struct {
	windowGlfw   *glfw.Window
	WindowWidth  int
	WindowHeight int
	windowTitle  string
}

// NewWindowState initializes GLFW and opens a window without a client API, for WebGPU.
// It locks the calling goroutine to its OS thread; the loop must run on that goroutine.
func NewWindowState(width, height int, title string) (*WindowState, error) {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return nil, err
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	win, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, err
	}
	return &WindowState{
		windowGlfw:   win,
		WindowWidth:  width,
		WindowHeight: height,
		windowTitle:  title,
	}, nil
}

func (s *WindowState) Window() *glfw.Window { return s.windowGlfw }

// ContentScale is the host's device pixel ratio.
func (s *WindowState) ContentScale() float64 {
	x, _ := s.windowGlfw.GetContentScale()
	if x <= 0 {
		return 1
	}
	return float64(x)
}

func (s *WindowState) Destroy() {
	s.windowGlfw.Destroy()
	glfw.Terminate()
}

// WaitFrame pumps window events. Vsync pacing comes from the swapchain present.
func (s *WindowState) WaitFrame(ctx context.Context) bool {
	glfw.PollEvents()
	if ctx.Err() != nil {
		return false
	}
	return !s.windowGlfw.ShouldClose()
}

var glfwToKey = map[glfw.Key]int{
	glfw.KeyEscape:     KeyEscape,
	glfw.KeyMinus:      KeyMinus,
	glfw.KeyEqual:      KeyEqual,
	glfw.KeyKPAdd:      KeyKPPlus,
	glfw.KeyKPSubtract: KeyKPMinus,
	glfw.KeyP:          KeyP,
	glfw.KeyR:          KeyR,
	glfw.KeyF1:         KeyF1,
}

var glfwToButton = map[glfw.MouseButton]int{
	glfw.MouseButtonLeft:   MouseButtonLeft,
	glfw.MouseButtonRight:  MouseButtonRight,
	glfw.MouseButtonMiddle: MouseButtonMiddle,
}

// WindowModule installs the window as the frame scheduler and routes its events into the
// Input and Viewport resources. Events are delivered while polling, on the loop thread.
type WindowModule struct {
	Window *WindowState
}

func (m WindowModule) Install(app *App, cmd *Commands) {
	ws := m.Window
	win := ws.windowGlfw
	cmd.AddResources(ws)
	app.SetScheduler(ws)

	if viewport, ok := Resource[Viewport](app); ok {
		win.SetSizeCallback(func(w *glfw.Window, width, height int) {
			ws.WindowWidth, ws.WindowHeight = width, height
			viewport.Resize(width, height, ws.ContentScale())
		})
		win.SetContentScaleCallback(func(w *glfw.Window, x, y float32) {
			viewport.Resize(ws.WindowWidth, ws.WindowHeight, float64(x))
		})
		viewport.Resize(ws.WindowWidth, ws.WindowHeight, ws.ContentScale())
	}

	if input, ok := Resource[Input](app); ok {
		win.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
			k, known := glfwToKey[key]
			if !known {
				return
			}
			switch action {
			case glfw.Press:
				input.Press(k)
				if k == KeyEscape {
					w.SetShouldClose(true)
				}
			case glfw.Release:
				input.Release(k)
			}
		})
		win.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
			b, known := glfwToButton[button]
			if !known {
				return
			}
			if action == glfw.Press {
				input.Press(b)
			} else if action == glfw.Release {
				input.Release(b)
			}
		})
		win.SetCursorPosCallback(func(w *glfw.Window, x, y float64) {
			input.MoveMouse(x, y)
		})
		win.SetScrollCallback(func(w *glfw.Window, dx, dy float64) {
			input.Scroll(dy)
		})
	}

	app.Logger().Infof("Window %dx%d '%s' @%.2f", ws.WindowWidth, ws.WindowHeight, ws.windowTitle, ws.ContentScale())
}
