package kestrel

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// NameComponent is a human-readable label, round-tripped through scene files.
type NameComponent struct {
	Value string
}

// SceneData is the on-disk description of a world: a list of entities with
// their physics components. It is the population surface for the simulation;
// loading validates the component preconditions (non-negative mass, known
// shapes, material coefficients in range) so the core itself never has to.
type SceneData struct {
	Id       string       `json:"id"`
	Name     string       `json:"name"`
	Gravity  *[3]float32  `json:"gravity,omitempty"`
	Entities []EntityData `json:"entities"`
}

type EntityData struct {
	Name     string        `json:"name,omitempty"`
	Position [3]float32    `json:"position"`
	Rotation [3]float32    `json:"rotation,omitempty"`
	Scale    *[3]float32   `json:"scale,omitempty"`
	Body     *BodyData     `json:"body,omitempty"`
	Collider *ColliderData `json:"collider,omitempty"`
	Lifetime float32       `json:"lifetime,omitempty"`
	Spin     *[3]float32   `json:"spin,omitempty"`
}

type BodyData struct {
	Mass       float32    `json:"mass"`
	UseGravity bool       `json:"use_gravity"`
	Velocity   [3]float32 `json:"velocity,omitempty"`
	Drag       float32    `json:"drag,omitempty"`
}

type ColliderData struct {
	Shape       string     `json:"shape"`
	Size        [3]float32 `json:"size,omitempty"`
	Radius      float32    `json:"radius,omitempty"`
	Height      float32    `json:"height,omitempty"`
	Trigger     bool       `json:"trigger,omitempty"`
	Restitution float32    `json:"restitution,omitempty"`
	Friction    float32    `json:"friction,omitempty"`
}

func vec3(v [3]float32) mgl32.Vec3 {
	return mgl32.Vec3{v[0], v[1], v[2]}
}

// LoadSceneFile reads a scene from a JSON file and spawns its entities.
func LoadSceneFile(cmd *Commands, path string) (*SceneData, []EntityId, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read scene: %w", err)
	}

	var scene SceneData
	if err := json.Unmarshal(data, &scene); err != nil {
		return nil, nil, fmt.Errorf("parse scene %s: %w", path, err)
	}

	eids, err := SpawnScene(cmd, &scene)
	if err != nil {
		return nil, nil, err
	}

	cmd.Logger().Infof("scene: loaded %q (%d entities) from %s", scene.Name, len(eids), path)
	return &scene, eids, nil
}

// SpawnScene validates the scene and creates its entities through Commands.
// Nothing is spawned if any entity fails validation. When the scene carries a
// gravity override and a PhysicsWorld resource is installed, it is applied.
func SpawnScene(cmd *Commands, scene *SceneData) ([]EntityId, error) {
	batches := make([][]any, 0, len(scene.Entities))
	for i, ent := range scene.Entities {
		components, err := entityComponents(ent)
		if err != nil {
			return nil, fmt.Errorf("scene %q entity %d: %w", scene.Name, i, err)
		}
		batches = append(batches, components)
	}

	if scene.Gravity != nil {
		if world := GetResource[PhysicsWorld](cmd.app); world != nil {
			world.Gravity = vec3(*scene.Gravity)
		}
	}

	eids := make([]EntityId, 0, len(batches))
	for _, components := range batches {
		eids = append(eids, cmd.AddEntity(components...))
	}
	return eids, nil
}

func entityComponents(ent EntityData) ([]any, error) {
	tr := NewTransform(vec3(ent.Position))
	tr.Rotation = vec3(ent.Rotation)
	if ent.Scale != nil {
		tr.Scale = vec3(*ent.Scale)
	}

	components := []any{tr}

	if ent.Name != "" {
		components = append(components, NameComponent{Value: ent.Name})
	}

	if ent.Body != nil {
		if ent.Body.Mass < 0 {
			return nil, fmt.Errorf("mass must be >= 0, got %v", ent.Body.Mass)
		}
		if ent.Body.Drag < 0 {
			return nil, fmt.Errorf("drag must be >= 0, got %v", ent.Body.Drag)
		}
		components = append(components, RigidBodyComponent{
			Mass:       ent.Body.Mass,
			UseGravity: ent.Body.UseGravity,
			Velocity:   vec3(ent.Body.Velocity),
			Drag:       ent.Body.Drag,
		})
	}

	if ent.Collider != nil {
		collider, err := colliderFromData(ent.Collider)
		if err != nil {
			return nil, err
		}
		components = append(components, collider)
	}

	if ent.Lifetime > 0 {
		components = append(components, LifetimeComponent{TimeLeft: ent.Lifetime})
	}

	if ent.Spin != nil {
		components = append(components, SpinComponent{Velocity: vec3(*ent.Spin)})
	}

	return components, nil
}

func colliderFromData(data *ColliderData) (ColliderComponent, error) {
	var collider ColliderComponent

	switch data.Shape {
	case "box":
		collider = BoxCollider(vec3(data.Size))
	case "sphere":
		if data.Radius <= 0 {
			return collider, fmt.Errorf("sphere radius must be > 0, got %v", data.Radius)
		}
		collider = SphereCollider(data.Radius)
	case "capsule":
		if data.Radius <= 0 {
			return collider, fmt.Errorf("capsule radius must be > 0, got %v", data.Radius)
		}
		collider = CapsuleCollider(data.Radius, data.Height)
	default:
		return collider, fmt.Errorf("unknown collider shape %q", data.Shape)
	}

	if data.Restitution < 0 || data.Restitution > 1 {
		return collider, fmt.Errorf("restitution must be in [0,1], got %v", data.Restitution)
	}
	if data.Friction < 0 || data.Friction > 1 {
		return collider, fmt.Errorf("friction must be in [0,1], got %v", data.Friction)
	}

	collider.IsTrigger = data.Trigger
	collider.Restitution = data.Restitution
	collider.Friction = data.Friction
	return collider, nil
}

// SaveSceneFile snapshots every entity carrying a transform into a scene file.
// The scene gets a fresh uuid; components outside the scene format are not
// persisted.
func SaveSceneFile(cmd *Commands, path string, name string) error {
	scene := SceneData{
		Id:   uuid.NewString(),
		Name: name,
	}

	MakeQuery1[TransformComponent](cmd).Map(func(eid EntityId, tr *TransformComponent) bool {
		ent := EntityData{
			Position: [3]float32{tr.Position.X(), tr.Position.Y(), tr.Position.Z()},
			Rotation: [3]float32{tr.Rotation.X(), tr.Rotation.Y(), tr.Rotation.Z()},
		}
		if tr.Scale != (mgl32.Vec3{1, 1, 1}) {
			scale := [3]float32{tr.Scale.X(), tr.Scale.Y(), tr.Scale.Z()}
			ent.Scale = &scale
		}

		if nm := GetComponent[NameComponent](cmd, eid); nm != nil {
			ent.Name = nm.Value
		}

		if rb := GetComponent[RigidBodyComponent](cmd, eid); rb != nil {
			ent.Body = &BodyData{
				Mass:       rb.Mass,
				UseGravity: rb.UseGravity,
				Velocity:   [3]float32{rb.Velocity.X(), rb.Velocity.Y(), rb.Velocity.Z()},
				Drag:       rb.Drag,
			}
		}

		if col := GetComponent[ColliderComponent](cmd, eid); col != nil {
			data := &ColliderData{
				Trigger:     col.IsTrigger,
				Restitution: col.Restitution,
				Friction:    col.Friction,
			}
			switch col.Shape {
			case ShapeBox:
				data.Shape = "box"
				data.Size = [3]float32{col.Size.X(), col.Size.Y(), col.Size.Z()}
			case ShapeSphere:
				data.Shape = "sphere"
				data.Radius = col.Radius
			case ShapeCapsule:
				data.Shape = "capsule"
				data.Radius = col.Radius
				data.Height = col.Height
			}
			ent.Collider = data
		}

		if lt := GetComponent[LifetimeComponent](cmd, eid); lt != nil {
			ent.Lifetime = lt.TimeLeft
		}
		if spin := GetComponent[SpinComponent](cmd, eid); spin != nil {
			vel := [3]float32{spin.Velocity.X(), spin.Velocity.Y(), spin.Velocity.Z()}
			ent.Spin = &vel
		}

		scene.Entities = append(scene.Entities, ent)
		return true
	})

	data, err := json.MarshalIndent(&scene, "", "  ")
	if err != nil {
		return fmt.Errorf("encode scene: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write scene: %w", err)
	}

	cmd.Logger().Infof("scene: saved %q (%d entities) to %s", name, len(scene.Entities), path)
	return nil
}
