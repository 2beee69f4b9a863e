package kestrel

// LifetimeComponent allows an entity to automatically be removed after a set
// duration.
type LifetimeComponent struct {
	TimeLeft float32
}

type LifecycleModule struct{}

func (mod LifecycleModule) Install(app *App, cmd *Commands) {
	app.UseSystem(System(lifetimeSystem).InStage(Finale))
}

func lifetimeSystem(tm *Time, cmd *Commands) {
	dt := tm.Dt
	if dt <= 0 {
		return
	}
	MakeQuery1[LifetimeComponent](cmd).Map(func(eid EntityId, lt *LifetimeComponent) bool {
		lt.TimeLeft -= dt
		if lt.TimeLeft <= 0 {
			cmd.Logger().Debugf("lifecycle: removing entity %v", eid)
			cmd.RemoveEntity(eid)
		}
		return true
	})
}
