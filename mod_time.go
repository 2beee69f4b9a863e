package kestrel

import (
	"time"
)

// Time tracks frame timing. Dt is the delta handed to App.Step for the
// current frame, in seconds.
type Time struct {
	Now     time.Time
	Dt      float32
	Elapsed float64
	Frame   uint64
}

func (t *Time) advance(dt float32) {
	t.Now = time.Now()
	t.Dt = dt
	t.Elapsed += float64(dt)
	t.Frame += 1
}

type TimeModule struct {
}

func (mod TimeModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&Time{
		Now: time.Now(),
	})
}
