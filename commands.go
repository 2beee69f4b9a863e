package kestrel

type Commands struct {
	app *App
}

func (cmd *Commands) AddResources(resources ...any) *Commands {
	cmd.app.addResources(resources...)
	return cmd
}

// AddEntity reserves an id immediately but defers the insertion until the
// next command flush, so queries in flight keep stable storage.
func (cmd *Commands) AddEntity(components ...any) EntityId {
	eid := cmd.app.store.nextEntityId()
	cmd.app.pendingAdditions = append(cmd.app.pendingAdditions, pendingAdd{
		eid:        eid,
		components: components,
	})
	return eid
}

func (cmd *Commands) AddComponents(entityId EntityId, components ...any) {
	cmd.app.pendingCompAdds = append(cmd.app.pendingCompAdds, pendingCompAdd{
		eid:        entityId,
		components: components,
	})
}

func (cmd *Commands) RemoveComponents(entityId EntityId, components ...any) {
	cmd.app.pendingCompRems = append(cmd.app.pendingCompRems, pendingCompRemoval{
		eid:        entityId,
		components: components,
	})
}

func (cmd *Commands) RemoveEntity(entityId EntityId) {
	cmd.app.pendingRemovals = append(cmd.app.pendingRemovals, entityId)
}

func (cmd *Commands) Quit() {
	cmd.app.Quit()
}

func (cmd *Commands) Logger() Logger {
	return cmd.app.Logger()
}

// GetAllComponents returns a copy of every component the entity carries.
func (cmd *Commands) GetAllComponents(entityId EntityId) []any {
	store := cmd.app.store

	var res []any
	for _, col := range store.columns {
		if row, ok := col.rows[entityId]; ok {
			res = append(res, reflectSliceGet(col.data, row).Interface())
		}
	}
	return res
}
