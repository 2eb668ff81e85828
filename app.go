package garden

import (
	"context"
	"fmt"
	"reflect"
	"runtime"
	"sync"
)

type systemFn any

// LoopState is the render loop lifecycle: Idle until Run, Ticking while frames are produced,
// Stopped after cancellation or host close.
type LoopState int

const (
	Idle LoopState = iota
	Ticking
	Stopped
)

func (s LoopState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Ticking:
		return "ticking"
	case Stopped:
		return "stopped"
	}
	return fmt.Sprintf("LoopState(%d)", int(s))
}

type Module interface {
	Install(app *App, cmd *Commands)
}

// FrameScheduler is the host's frame-synchronization primitive. WaitFrame returns once the
// next frame may start, or false if the host is closing.
type FrameScheduler interface {
	WaitFrame(ctx context.Context) bool
}

type App struct {
	state     LoopState
	stages    []Stage
	systems   map[string][]systemFn
	resources map[reflect.Type]any
	scheduler FrameScheduler
	profiler  *Profiler
	frame     uint64

	postMu sync.Mutex
	posted []func()
}

func NewApp() *App {
	app := &App{
		resources: make(map[reflect.Type]any),
		systems:   make(map[string][]systemFn),
		scheduler: ImmediateScheduler{},
		profiler:  NewProfiler(),
	}
	for _, stage := range defaultStages {
		app.stages = append(app.stages, stage)
		app.initStage(stage)
	}
	app.UseSystem(System(drainPostedSystem).InStage(PreUpdate))
	return app
}

func (app *App) Commands() *Commands {
	return &Commands{
		app: app,
	}
}

func (app *App) UseModules(modules ...Module) *App {
	cmd := app.Commands()
	for _, module := range modules {
		module.Install(app, cmd)
	}
	return app
}

func (app *App) SetScheduler(s FrameScheduler) *App {
	app.scheduler = s
	return app
}

func (app *App) State() LoopState { return app.state }

// Frame returns the number of completed ticks.
func (app *App) Frame() uint64 { return app.frame }

// Run drives the loop until ctx is cancelled or the scheduler reports the host closing.
// Cancellation is honoured only between ticks, never mid-frame.
func (app *App) Run(ctx context.Context) error {
	if app.state != Idle {
		return fmt.Errorf("render loop already %s", app.state)
	}
	app.state = Ticking
	app.Logger().Infof("Render loop started (%d stages)", len(app.stages))

	for {
		if err := ctx.Err(); err != nil {
			app.stop("context cancelled")
			return err
		}

		app.Step()

		if !app.scheduler.WaitFrame(ctx) {
			if err := ctx.Err(); err != nil {
				app.stop("context cancelled")
				return err
			}
			app.stop("host closed")
			return nil
		}
	}
}

func (app *App) stop(reason string) {
	app.state = Stopped
	app.Logger().Infof("Render loop stopped after %d frames: %s", app.frame, reason)
}

// Step runs exactly one tick: every stage in order, each system in registration order.
func (app *App) Step() {
	if app.state == Idle {
		app.state = Ticking
	}
	for _, stage := range app.stages {
		app.profiler.BeginScope(stage.Name)
		for _, system := range app.systems[stage.Name] {
			app.callSystem(system)
		}
		app.profiler.EndScope(stage.Name)
	}
	app.frame++
}

// Post queues fn to run on the loop thread at the start of the next tick. Safe from any goroutine.
func (app *App) Post(fn func()) {
	app.postMu.Lock()
	app.posted = append(app.posted, fn)
	app.postMu.Unlock()
}

func (app *App) drainPosted() int {
	app.postMu.Lock()
	pending := app.posted
	app.posted = nil
	app.postMu.Unlock()

	for _, fn := range pending {
		fn()
	}
	return len(pending)
}

func drainPostedSystem(cmd *Commands) {
	cmd.app.drainPosted()
}

func (app *App) addResources(resources ...any) *App {
	for _, resource := range resources {
		resourceType := reflect.TypeOf(resource)
		if resourceType.Kind() != reflect.Pointer {
			panic(fmt.Sprintf("resource %s must be a pointer", resourceType))
		}
		if _, ok := app.resources[resourceType.Elem()]; ok {
			panic(fmt.Sprintf("%s is already in resources", resourceType))
		}

		app.resources[resourceType.Elem()] = resource
	}
	return app
}

// Resource returns the resource of type *T if one is installed.
func Resource[T any](app *App) (*T, bool) {
	r, ok := app.resources[reflect.TypeOf((*T)(nil)).Elem()]
	if !ok {
		return nil, false
	}
	return r.(*T), true
}

func (app *App) callSystem(system systemFn) {
	app.callSystemInternal(system)
}

var typeOfCommands = reflect.TypeOf(Commands{})

func (app *App) callSystemInternal(system systemFn) {
	systemType := reflect.TypeOf(system)
	systemValue := reflect.ValueOf(system)

	args := make([]reflect.Value, systemType.NumIn())

	for i := 0; i < systemType.NumIn(); i++ {
		argType := systemType.In(i)
		underlyingType := argType.Elem()

		if underlyingType == typeOfCommands {
			args[i] = reflect.ValueOf(&Commands{app: app})
		} else if resource, argIsResource := app.resources[underlyingType]; argIsResource {
			args[i] = reflect.ValueOf(resource)
		} else {
			msg := fmt.Sprintf("Unable to resolve System dependency.\nSystem: %s\nSystem type: %s\nDependency: %s",
				runtime.FuncForPC(systemValue.Pointer()).Name(),
				fmt.Sprint(systemType),
				fmt.Sprint(argType),
			)
			app.Logger().Errorf("%s", msg)
			panic(msg)
		}
	}
	systemValue.Call(args)
}
