package kestrel

import (
	"fmt"
	"reflect"
	"sync"
)

type EntityId uint64
type set[T comparable] = map[T]struct{}

// Store is a columnar entity/component store: one dense column per component
// type, keyed by the component's reflect.Type. An entity is just an id; the
// columns it appears in define which components it carries.
type Store struct {
	columns map[reflect.Type]*column
	alive   set[EntityId]

	idGeneratorLock sync.Mutex
	entityIdCounter EntityId
}

func MakeStore() Store {
	return Store{
		columns:         make(map[reflect.Type]*column),
		alive:           make(set[EntityId]),
		entityIdCounter: EntityId(0),
	}
}

// column holds one component type for every entity that carries it.
// data is a typed slice ([]T) managed through the reflect helpers, so the
// store stays non-generic while queries get []T back via type assertion.
// Rows are kept dense with swap-remove; entities is parallel to data.
type column struct {
	elemType reflect.Type
	entities []EntityId
	rows     map[EntityId]int
	data     any
}

func makeColumn(elemType reflect.Type) *column {
	return &column{
		elemType: elemType,
		rows:     make(map[EntityId]int),
		data:     reflectSliceMake(elemType),
	}
}

func (c *column) set(eid EntityId, value reflect.Value) {
	if row, ok := c.rows[eid]; ok {
		reflectSliceSet(c.data, row, value)
		return
	}

	c.rows[eid] = len(c.entities)
	c.entities = append(c.entities, eid)
	c.data = reflectSliceAppend(c.data, value)
}

func (c *column) remove(eid EntityId) {
	row, ok := c.rows[eid]
	if !ok {
		return
	}

	last := len(c.entities) - 1
	if row != last {
		c.entities[row] = c.entities[last]
		reflectSliceSet(c.data, row, reflectSliceGet(c.data, last))
		c.rows[c.entities[row]] = row
	}
	c.entities = c.entities[:last]
	c.data = reflectSliceTruncate(c.data, last)
	delete(c.rows, eid)
}

func (c *column) len() int {
	return len(c.entities)
}

func (store *Store) addEntity(components ...any) EntityId {
	entityId := store.nextEntityId()
	return store.insertEntity(entityId, components...)
}

func (store *Store) insertEntity(entityId EntityId, components ...any) EntityId {
	store.alive[entityId] = struct{}{}
	for _, component := range components {
		store.writeComponent(entityId, component)
	}
	return entityId
}

func (store *Store) removeEntity(entityId EntityId) {
	for _, col := range store.columns {
		col.remove(entityId)
	}
	delete(store.alive, entityId)
}

func (store *Store) addComponents(entityId EntityId, components ...any) {
	if _, ok := store.alive[entityId]; !ok {
		return
	}
	for _, component := range components {
		store.writeComponent(entityId, component)
	}
}

func (store *Store) removeComponents(entityId EntityId, components ...any) {
	for _, component := range components {
		if col, ok := store.columns[componentType(component)]; ok {
			col.remove(entityId)
		}
	}
}

func (store *Store) writeComponent(entityId EntityId, component any) {
	compType := reflect.TypeOf(component)
	reflectValue := reflect.ValueOf(component)
	if compType.Kind() == reflect.Pointer {
		compType = compType.Elem()
		reflectValue = reflectValue.Elem()
	}
	if compType.Kind() != reflect.Struct {
		panic(fmt.Errorf("expected Component to be a struct or a pointer to a struct, got %s", compType.Kind()))
	}

	store.columnFor(compType).set(entityId, reflectValue)
}

// columnFor returns the column for a component type, registering it on first use.
func (store *Store) columnFor(compType reflect.Type) *column {
	if col, ok := store.columns[compType]; ok {
		return col
	}
	col := makeColumn(compType)
	store.columns[compType] = col
	return col
}

func (store *Store) columnOf(compType reflect.Type) (*column, bool) {
	col, ok := store.columns[compType]
	return col, ok
}

// componentType resolves the column key for a component value or pointer.
func componentType(component any) reflect.Type {
	compType := reflect.TypeOf(component)
	if compType.Kind() == reflect.Pointer {
		compType = compType.Elem()
	}
	if compType.Kind() != reflect.Struct {
		panic("component should be a struct")
	}
	return compType
}

func (store *Store) entityCount() int {
	return len(store.alive)
}

func (store *Store) nextEntityId() EntityId {
	store.idGeneratorLock.Lock()
	defer store.idGeneratorLock.Unlock()

	id := store.entityIdCounter
	store.entityIdCounter += 1

	return id
}
