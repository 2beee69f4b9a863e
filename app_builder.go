package kestrel

import (
	"reflect"
)

// Module is an installable unit of engine functionality: it registers its
// resources and systems against the app during Build.
type Module interface {
	Install(app *App, cmd *Commands)
}

type AppBuilder struct {
	app     *App
	modules []Module
}

func NewAppBuilder() *AppBuilder {
	store := MakeStore()
	app := &App{
		stages:    []Stage{PreUpdate, Update, PostUpdate, Finale},
		systems:   make(map[string][]systemFn),
		resources: make(map[reflect.Type]any),
		store:     &store,
	}
	for _, stage := range app.stages {
		app.systems[stage.Name] = make([]systemFn, 0)
	}
	return &AppBuilder{app: app}
}

func (b *AppBuilder) UseModule(modules ...Module) *AppBuilder {
	b.modules = append(b.modules, modules...)

	return b
}

func (b *AppBuilder) Build() *App {
	app := b.app
	commands := &Commands{app: app}

	for _, module := range b.modules {
		module.Install(app, commands)
	}
	app.FlushCommands()

	return app
}
