package kestrel

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/go-gl/mathgl/mgl32"
)

// EngineConfig holds engine tuning knobs, read from the environment.
// Gravity defaults to 9.8 units/s² downward along Y.
type EngineConfig struct {
	GravityX float32 `env:"KESTREL_GRAVITY_X" envDefault:"0"`
	GravityY float32 `env:"KESTREL_GRAVITY_Y" envDefault:"-9.8"`
	GravityZ float32 `env:"KESTREL_GRAVITY_Z" envDefault:"0"`

	// FixedDt pins every frame to the given timestep when > 0.
	FixedDt float32 `env:"KESTREL_FIXED_DT" envDefault:"0"`

	Debug bool `env:"KESTREL_DEBUG" envDefault:"false"`
}

func DefaultEngineConfig() *EngineConfig {
	return &EngineConfig{GravityY: -9.8}
}

func LoadEngineConfig() (*EngineConfig, error) {
	cfg := &EngineConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse engine config: %w", err)
	}
	return cfg, nil
}

func (cfg *EngineConfig) Gravity() mgl32.Vec3 {
	return mgl32.Vec3{cfg.GravityX, cfg.GravityY, cfg.GravityZ}
}

// ConfigModule loads the engine config from the environment and installs it as
// a resource. Install it before modules that read it (logging, physics).
type ConfigModule struct{}

func (m ConfigModule) Install(app *App, cmd *Commands) {
	cfg, err := LoadEngineConfig()
	if err != nil {
		app.Logger().Warnf("engine config: %v, using defaults", err)
		cfg = DefaultEngineConfig()
	}
	cmd.AddResources(cfg)
}
