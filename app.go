package kestrel

import (
	"fmt"
	"reflect"
	"runtime"
	"time"
)

type systemFn any

type App struct {
	stages    []Stage
	systems   map[string][]systemFn
	resources map[reflect.Type]any
	store     *Store
	quit      bool

	// Command Buffering
	pendingAdditions []pendingAdd
	pendingRemovals  []EntityId
	pendingCompAdds  []pendingCompAdd
	pendingCompRems  []pendingCompRemoval
}

type pendingAdd struct {
	eid        EntityId
	components []any
}

type pendingCompAdd struct {
	eid        EntityId
	components []any
}

type pendingCompRemoval struct {
	eid        EntityId
	components []any
}

func (app *App) Commands() *Commands {
	return &Commands{
		app: app,
	}
}

// Step runs one frame: every stage in order, flushing buffered commands
// between stages. The whole call is synchronous and the store is owned
// exclusively by the systems for its duration; dt is the caller-supplied
// frame delta in seconds.
func (app *App) Step(dt float32) {
	if tm := GetResource[Time](app); tm != nil {
		tm.advance(dt)
	}

	for _, stage := range app.stages {
		for _, system := range app.systems[stage.Name] {
			app.callSystem(system)
		}
		app.FlushCommands()
	}
}

// Run drives Step from the wall clock until Quit is requested. When the
// engine config carries a fixed timestep, every frame uses it instead of the
// measured delta.
func (app *App) Run() {
	fixedDt := float32(0)
	if cfg := GetResource[EngineConfig](app); cfg != nil {
		fixedDt = cfg.FixedDt
	}

	last := time.Now()
	for !app.quit {
		now := time.Now()
		dt := float32(now.Sub(last).Seconds())
		last = now

		if fixedDt > 0 {
			dt = fixedDt
		}
		app.Step(dt)
	}
}

func (app *App) Quit() {
	app.quit = true
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

// GetResource returns the resource of type T, or nil if none is installed.
func GetResource[T any](app *App) *T {
	if app == nil || app.resources == nil {
		return nil
	}
	if resource, ok := app.resources[reflect.TypeFor[T]()]; ok {
		return resource.(*T)
	}
	return nil
}

var typeOfCommands = reflect.TypeOf(Commands{})

// callSystem invokes a system function, resolving each parameter to either a
// fresh *Commands or an installed resource by type.
func (app *App) callSystem(system systemFn) {
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
			panic(msg)
		}
	}
	systemValue.Call(args)
}

func (app *App) FlushCommands() {
	if len(app.pendingAdditions) == 0 && len(app.pendingRemovals) == 0 &&
		len(app.pendingCompAdds) == 0 && len(app.pendingCompRems) == 0 {
		return
	}

	// Removals first, so we don't add to dead entities
	for _, eid := range app.pendingRemovals {
		app.store.removeEntity(eid)
	}
	app.pendingRemovals = app.pendingRemovals[:0]

	for _, add := range app.pendingAdditions {
		app.store.insertEntity(add.eid, add.components...)
	}
	app.pendingAdditions = app.pendingAdditions[:0]

	for _, add := range app.pendingCompAdds {
		app.store.addComponents(add.eid, add.components...)
	}
	app.pendingCompAdds = app.pendingCompAdds[:0]

	for _, rem := range app.pendingCompRems {
		app.store.removeComponents(rem.eid, rem.components...)
	}
	app.pendingCompRems = app.pendingCompRems[:0]
}
