package kestrel

import (
	"reflect"
)

// Queries iterate every entity carrying all of the requested component types.
// Iteration drives off the smallest column and probes the rest, so the cost is
// proportional to the rarest component. The *T pointers passed to the mapper
// point into column storage and stay valid for the duration of the Map call;
// structural changes (entity add/remove) are deferred through Commands and can
// never invalidate them mid-iteration.
type Query1[A any] struct{ store *Store }
type Query2[A, B any] struct{ store *Store }
type Query3[A, B, C any] struct{ store *Store }
type Query4[A, B, C, D any] struct{ store *Store }

func MakeQuery1[A any](cmd *Commands) Query1[A] { return Query1[A]{store: cmd.app.store} }
func MakeQuery2[A, B any](cmd *Commands) Query2[A, B] {
	return Query2[A, B]{store: cmd.app.store}
}
func MakeQuery3[A, B, C any](cmd *Commands) Query3[A, B, C] {
	return Query3[A, B, C]{store: cmd.app.store}
}
func MakeQuery4[A, B, C, D any](cmd *Commands) Query4[A, B, C, D] {
	return Query4[A, B, C, D]{store: cmd.app.store}
}

func queryColumn[T any](store *Store) (*column, []T, bool) {
	col, ok := store.columnOf(reflect.TypeFor[T]())
	if !ok {
		return nil, nil, false
	}
	return col, col.data.([]T), true
}

func (q Query1[A]) Map(m func(EntityId, *A) bool) {
	colA, dataA, ok := queryColumn[A](q.store)
	if !ok {
		return
	}

	for rowA, entityId := range colA.entities {
		if !m(entityId, &dataA[rowA]) {
			return
		}
	}
}

func (q Query2[A, B]) Map(m func(EntityId, *A, *B) bool) {
	colA, dataA, ok := queryColumn[A](q.store)
	if !ok {
		return
	}
	colB, dataB, ok := queryColumn[B](q.store)
	if !ok {
		return
	}

	if colA.len() <= colB.len() {
		for rowA, entityId := range colA.entities {
			rowB, ok := colB.rows[entityId]
			if !ok {
				continue
			}
			if !m(entityId, &dataA[rowA], &dataB[rowB]) {
				return
			}
		}
	} else {
		for rowB, entityId := range colB.entities {
			rowA, ok := colA.rows[entityId]
			if !ok {
				continue
			}
			if !m(entityId, &dataA[rowA], &dataB[rowB]) {
				return
			}
		}
	}
}

func (q Query3[A, B, C]) Map(m func(EntityId, *A, *B, *C) bool) {
	colA, dataA, ok := queryColumn[A](q.store)
	if !ok {
		return
	}
	colB, dataB, ok := queryColumn[B](q.store)
	if !ok {
		return
	}
	colC, dataC, ok := queryColumn[C](q.store)
	if !ok {
		return
	}

	driver := colA
	if colB.len() < driver.len() {
		driver = colB
	}
	if colC.len() < driver.len() {
		driver = colC
	}

	for _, entityId := range driver.entities {
		rowA, ok := colA.rows[entityId]
		if !ok {
			continue
		}
		rowB, ok := colB.rows[entityId]
		if !ok {
			continue
		}
		rowC, ok := colC.rows[entityId]
		if !ok {
			continue
		}
		if !m(entityId, &dataA[rowA], &dataB[rowB], &dataC[rowC]) {
			return
		}
	}
}

func (q Query4[A, B, C, D]) Map(m func(EntityId, *A, *B, *C, *D) bool) {
	colA, dataA, ok := queryColumn[A](q.store)
	if !ok {
		return
	}
	colB, dataB, ok := queryColumn[B](q.store)
	if !ok {
		return
	}
	colC, dataC, ok := queryColumn[C](q.store)
	if !ok {
		return
	}
	colD, dataD, ok := queryColumn[D](q.store)
	if !ok {
		return
	}

	driver := colA
	if colB.len() < driver.len() {
		driver = colB
	}
	if colC.len() < driver.len() {
		driver = colC
	}
	if colD.len() < driver.len() {
		driver = colD
	}

	for _, entityId := range driver.entities {
		rowA, ok := colA.rows[entityId]
		if !ok {
			continue
		}
		rowB, ok := colB.rows[entityId]
		if !ok {
			continue
		}
		rowC, ok := colC.rows[entityId]
		if !ok {
			continue
		}
		rowD, ok := colD.rows[entityId]
		if !ok {
			continue
		}
		if !m(entityId, &dataA[rowA], &dataB[rowB], &dataC[rowC], &dataD[rowD]) {
			return
		}
	}
}

// GetComponent returns a pointer to an entity's component of type T, or nil if
// the entity doesn't carry one. The pointer obeys the same validity rules as
// query pointers.
func GetComponent[T any](cmd *Commands, entityId EntityId) *T {
	col, data, ok := queryColumn[T](cmd.app.store)
	if !ok {
		return nil
	}
	row, ok := col.rows[entityId]
	if !ok {
		return nil
	}
	return &data[row]
}
