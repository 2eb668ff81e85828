package garden

type AppBuilder struct {
	app       *App
	modules   []Module
	scheduler FrameScheduler
}

func NewAppBuilder() *AppBuilder {
	return &AppBuilder{app: NewApp()}
}

func (b *AppBuilder) UseModule(modules ...Module) *AppBuilder {
	b.modules = append(b.modules, modules...)

	return b
}

func (b *AppBuilder) UseScheduler(s FrameScheduler) *AppBuilder {
	b.scheduler = s
	return b
}

// Build installs modules in the order they were added.
func (b *AppBuilder) Build() *App {
	app := b.app
	commands := &Commands{app: app}

	for _, module := range b.modules {
		module.Install(app, commands)
	}
	if b.scheduler != nil {
		app.scheduler = b.scheduler
	}

	return app
}
