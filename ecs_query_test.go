package kestrel

import (
	"reflect"
	"testing"
)

type queryPos struct{ x, y float32 }
type queryVel struct{ dx, dy float32 }
type queryTag struct{ label string }

func newTestCommands() *Commands {
	store := MakeStore()
	return &Commands{app: &App{
		store:     &store,
		resources: make(map[reflect.Type]any),
	}}
}

func TestQuery2_OnlyMatchingEntities(t *testing.T) {
	cmd := newTestCommands()

	both := cmd.AddEntity(queryPos{x: 1}, queryVel{dx: 2})
	cmd.AddEntity(queryPos{x: 3})
	cmd.AddEntity(queryVel{dx: 4})
	cmd.app.FlushCommands()

	visited := 0
	MakeQuery2[queryPos, queryVel](cmd).Map(func(eid EntityId, p *queryPos, v *queryVel) bool {
		visited++
		if eid != both {
			t.Errorf("Unexpected entity %v in query result", eid)
		}
		if p.x != 1 || v.dx != 2 {
			t.Errorf("Wrong component values: %v %v", p, v)
		}
		return true
	})

	if visited != 1 {
		t.Errorf("Expected exactly 1 match, visited %v", visited)
	}
}

func TestQuery2_PointersMutateStorage(t *testing.T) {
	cmd := newTestCommands()

	eid := cmd.AddEntity(queryPos{x: 1}, queryVel{dx: 5})
	cmd.app.FlushCommands()

	MakeQuery2[queryPos, queryVel](cmd).Map(func(_ EntityId, p *queryPos, v *queryVel) bool {
		p.x += v.dx
		return true
	})

	got := GetComponent[queryPos](cmd, eid)
	if got == nil || got.x != 6 {
		t.Errorf("Expected mutation through query pointer to persist, got %v", got)
	}
}

func TestQuery_EarlyExit(t *testing.T) {
	cmd := newTestCommands()

	for i := 0; i < 5; i++ {
		cmd.AddEntity(queryPos{x: float32(i)})
	}
	cmd.app.FlushCommands()

	visited := 0
	MakeQuery1[queryPos](cmd).Map(func(EntityId, *queryPos) bool {
		visited++
		return false
	})

	if visited != 1 {
		t.Errorf("Returning false should stop iteration, visited %v", visited)
	}
}

func TestQuery_MissingColumnYieldsNothing(t *testing.T) {
	cmd := newTestCommands()
	cmd.AddEntity(queryPos{})
	cmd.app.FlushCommands()

	MakeQuery2[queryPos, queryTag](cmd).Map(func(EntityId, *queryPos, *queryTag) bool {
		t.Errorf("No entity carries queryTag; mapper must not run")
		return true
	})
}

func TestQuery3_DriverIndependence(t *testing.T) {
	cmd := newTestCommands()

	// Make column sizes deliberately uneven so any of them could drive
	want := cmd.AddEntity(queryPos{x: 7}, queryVel{dx: 8}, queryTag{label: "all"})
	for i := 0; i < 4; i++ {
		cmd.AddEntity(queryPos{})
	}
	cmd.AddEntity(queryVel{}, queryPos{})
	cmd.app.FlushCommands()

	var got []EntityId
	MakeQuery3[queryPos, queryVel, queryTag](cmd).Map(func(eid EntityId, p *queryPos, v *queryVel, tag *queryTag) bool {
		got = append(got, eid)
		if tag.label != "all" {
			t.Errorf("Wrong tag %q", tag.label)
		}
		return true
	})

	if len(got) != 1 || got[0] != want {
		t.Errorf("Expected only entity %v, got %v", want, got)
	}
}

func TestGetComponent(t *testing.T) {
	cmd := newTestCommands()

	eid := cmd.AddEntity(queryPos{x: 42})
	cmd.app.FlushCommands()

	if got := GetComponent[queryPos](cmd, eid); got == nil || got.x != 42 {
		t.Errorf("Expected pos with x=42, got %v", got)
	}
	if got := GetComponent[queryVel](cmd, eid); got != nil {
		t.Errorf("Expected nil for component the entity doesn't carry, got %v", got)
	}
	if got := GetComponent[queryPos](cmd, eid+100); got != nil {
		t.Errorf("Expected nil for unknown entity, got %v", got)
	}
}

func TestCommands_GetAllComponents(t *testing.T) {
	cmd := newTestCommands()

	eid := cmd.AddEntity(queryPos{x: 1}, queryVel{dx: 2})
	cmd.app.FlushCommands()

	all := cmd.GetAllComponents(eid)
	if len(all) != 2 {
		t.Fatalf("Expected 2 components, got %v", len(all))
	}

	kinds := make(map[reflect.Type]bool)
	for _, c := range all {
		kinds[reflect.TypeOf(c)] = true
	}
	if !kinds[reflect.TypeOf(queryPos{})] || !kinds[reflect.TypeOf(queryVel{})] {
		t.Errorf("Missing component kinds in %v", all)
	}
}

func TestCommands_DeferredRemove(t *testing.T) {
	cmd := newTestCommands()

	eid := cmd.AddEntity(queryPos{x: 1})
	cmd.app.FlushCommands()

	cmd.RemoveEntity(eid)
	if got := GetComponent[queryPos](cmd, eid); got == nil {
		t.Errorf("Removal should be deferred until flush")
	}

	cmd.app.FlushCommands()
	if got := GetComponent[queryPos](cmd, eid); got != nil {
		t.Errorf("Entity should be gone after flush")
	}
}
