package kestrel

import (
	"reflect"
	"testing"
)

func TestStore_MakeStore(t *testing.T) {
	store := MakeStore()

	if len(store.columns) != 0 {
		t.Errorf("Expected columns to be empty, got %v", store.columns)
	}

	if len(store.alive) != 0 {
		t.Errorf("Expected alive set to be empty, got %v", store.alive)
	}

	if store.entityIdCounter != 0 {
		t.Errorf("Expected entityIdCounter to be 0, got %v", store.entityIdCounter)
	}
}

func TestStore_AddEntity(t *testing.T) {
	store := MakeStore()

	// An entity with no components is still alive
	entityId := store.addEntity()

	if _, ok := store.alive[entityId]; !ok {
		t.Errorf("Expected entityId %v to be alive", entityId)
	}

	type TestComponent struct {
		x string
	}

	entityId2 := store.addEntity(TestComponent{x: "test"})
	if _, ok := store.alive[entityId2]; !ok {
		t.Errorf("Expected entityId %v to be alive", entityId2)
	}

	col, ok := store.columnOf(reflect.TypeOf(TestComponent{}))
	if !ok {
		t.Fatalf("Expected a column for TestComponent")
	}
	if col.len() != 1 {
		t.Errorf("Expected 1 row in TestComponent column, got %v", col.len())
	}
	if _, ok := col.rows[entityId]; ok {
		t.Errorf("Entity without the component should not be in its column")
	}
}

func TestStore_AddComponents(t *testing.T) {
	type TestComponent0 struct{ a int }
	type TestComponent1 struct{ x string }
	type TestComponent2 struct{ y string }
	type TestComponent3 struct{ z string }

	store := MakeStore()

	entityId := store.addEntity(TestComponent0{a: 1337})

	store.addComponents(entityId, TestComponent1{x: "test"}, TestComponent2{y: "hello"})

	// Pointers work too
	store.addComponents(entityId, &TestComponent3{z: "test-2"})

	for _, compType := range []reflect.Type{
		reflect.TypeOf(TestComponent0{}),
		reflect.TypeOf(TestComponent1{}),
		reflect.TypeOf(TestComponent2{}),
		reflect.TypeOf(TestComponent3{}),
	} {
		col, ok := store.columnOf(compType)
		if !ok {
			t.Fatalf("Expected a column for %v", compType)
		}
		if _, ok := col.rows[entityId]; !ok {
			t.Errorf("Expected entity in column for %v", compType)
		}
	}
}

func TestStore_AddComponentsToDeadEntityIsIgnored(t *testing.T) {
	type TestComponent struct{ x int }

	store := MakeStore()
	entityId := store.addEntity()
	store.removeEntity(entityId)

	store.addComponents(entityId, TestComponent{x: 1})

	if col, ok := store.columnOf(reflect.TypeOf(TestComponent{})); ok && col.len() != 0 {
		t.Errorf("Components added to a removed entity should be dropped")
	}
}

func TestStore_OverwriteComponent(t *testing.T) {
	type TestComponent struct{ x int }

	store := MakeStore()
	entityId := store.addEntity(TestComponent{x: 1})
	store.addComponents(entityId, TestComponent{x: 2})

	col, _ := store.columnOf(reflect.TypeOf(TestComponent{}))
	if col.len() != 1 {
		t.Fatalf("Overwriting a component must not grow the column, got %v rows", col.len())
	}
	got := col.data.([]TestComponent)[col.rows[entityId]]
	if got.x != 2 {
		t.Errorf("Expected overwritten value 2, got %v", got.x)
	}
}

func TestStore_RemoveEntitySwapKeepsOthersAddressable(t *testing.T) {
	type TestComponent struct{ x int }

	store := MakeStore()
	e0 := store.addEntity(TestComponent{x: 0})
	e1 := store.addEntity(TestComponent{x: 1})
	e2 := store.addEntity(TestComponent{x: 2})

	store.removeEntity(e1)

	col, _ := store.columnOf(reflect.TypeOf(TestComponent{}))
	if col.len() != 2 {
		t.Fatalf("Expected 2 rows after removal, got %v", col.len())
	}

	data := col.data.([]TestComponent)
	for eid, want := range map[EntityId]int{e0: 0, e2: 2} {
		row, ok := col.rows[eid]
		if !ok {
			t.Fatalf("Entity %v lost its component after swap-remove", eid)
		}
		if data[row].x != want {
			t.Errorf("Entity %v: expected x=%v, got %v", eid, want, data[row].x)
		}
	}
	if _, ok := col.rows[e1]; ok {
		t.Errorf("Removed entity should not be in the column")
	}
}

func TestStore_RemoveComponents(t *testing.T) {
	type TestComponent1 struct{ x int }
	type TestComponent2 struct{ y int }

	store := MakeStore()
	entityId := store.addEntity(TestComponent1{x: 1}, TestComponent2{y: 2})

	store.removeComponents(entityId, TestComponent1{})

	if col, _ := store.columnOf(reflect.TypeOf(TestComponent1{})); col.len() != 0 {
		t.Errorf("TestComponent1 should have been removed")
	}
	if col, _ := store.columnOf(reflect.TypeOf(TestComponent2{})); col.len() != 1 {
		t.Errorf("TestComponent2 should still be present")
	}
	if _, ok := store.alive[entityId]; !ok {
		t.Errorf("Removing a component must not kill the entity")
	}
}

func TestStore_AddInvalidComponentShouldPanic(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("expected panic on invalid component type")
		}
	}()

	store := MakeStore()
	store.addEntity(123) // invalid component
}

func TestStore_EntityIdsAreUnique(t *testing.T) {
	store := MakeStore()

	seen := make(map[EntityId]struct{})
	for i := 0; i < 1000; i++ {
		id := store.nextEntityId()
		if _, ok := seen[id]; ok {
			t.Fatalf("Duplicate entity id %v", id)
		}
		seen[id] = struct{}{}
	}
}
