package kestrel

import (
	"github.com/go-gl/mathgl/mgl32"
)

// SpinComponent rotates an entity at a constant angular velocity, in radians
// per second per Euler axis. Rotation is read by rendering only; collision
// treats boxes as axis-aligned no matter how far an entity has spun.
type SpinComponent struct {
	Velocity mgl32.Vec3
}

type SpinModule struct{}

func (mod SpinModule) Install(app *App, cmd *Commands) {
	app.UseSystem(System(spinSystem).InStage(Update))
}

func spinSystem(tm *Time, cmd *Commands) {
	dt := tm.Dt
	if dt <= 0 {
		return
	}
	MakeQuery2[TransformComponent, SpinComponent](cmd).Map(func(eid EntityId, tr *TransformComponent, spin *SpinComponent) bool {
		tr.Rotation = tr.Rotation.Add(spin.Velocity.Mul(dt))
		return true
	})
}
