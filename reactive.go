package archway

// ComponentCallback is invoked with the entity and its component cell
// (as an untyped pointer; generic callers use AccessibleComponent[T] to
// recover the typed pointer) whenever a reactive action fires.
type ComponentCallback func(entity Handle, cell any)

// InitCallback runs once when a component value is newly allocated.
// FiniCallback runs once when a component value is removed or its
// entity is deleted.
type (
	InitCallback func(entity Handle, cell any)
	FiniCallback func(entity Handle, cell any)
)

// reactiveSlot is the per-component registry entry: onAdd, onRemove,
// onSet, init, fini.
type reactiveSlot struct {
	onAdd    []ComponentCallback
	onRemove []ComponentCallback
	onSet    []ComponentCallback
	init     InitCallback
	fini     FiniCallback
}

// reactiveRegistry is keyed by component id and additionally holds a
// per-table OnNew list, fired after all per-component OnAdd callbacks
// for a freshly inserted row have run.
type reactiveRegistry struct {
	slots  map[Handle]*reactiveSlot
	onNew  map[*tableNode][]func(entity Handle)
}

func newReactiveRegistry() *reactiveRegistry {
	return &reactiveRegistry{
		slots: make(map[Handle]*reactiveSlot),
		onNew: make(map[*tableNode][]func(entity Handle)),
	}
}

func (r *reactiveRegistry) slot(id Handle) *reactiveSlot {
	s, ok := r.slots[id]
	if !ok {
		s = &reactiveSlot{}
		r.slots[id] = s
	}
	return s
}

// OnAdd registers cb to run after id is added to an entity's type.
func (r *reactiveRegistry) OnAdd(id Handle, cb ComponentCallback) {
	s := r.slot(id)
	s.onAdd = append(s.onAdd, cb)
}

// OnRemove registers cb to run before id is removed from an entity's
// type.
func (r *reactiveRegistry) OnRemove(id Handle, cb ComponentCallback) {
	s := r.slot(id)
	s.onRemove = append(s.onRemove, cb)
}

// OnSet registers cb to run whenever id's value is explicitly written,
// including override-from-base.
func (r *reactiveRegistry) OnSet(id Handle, cb ComponentCallback) {
	s := r.slot(id)
	s.onSet = append(s.onSet, cb)
}

// SetInitFini installs the allocate/free hooks for id.
func (r *reactiveRegistry) SetInitFini(id Handle, init InitCallback, fini FiniCallback) {
	s := r.slot(id)
	s.init = init
	s.fini = fini
}

// OnNewTable registers cb to run once per newly-inserted row in t, after
// every per-component OnAdd callback for that row has already fired.
func (r *reactiveRegistry) OnNewTable(t *tableNode, cb func(entity Handle)) {
	r.onNew[t] = append(r.onNew[t], cb)
}

// fireOnAdd snapshots the slot's callback list before invoking it so a
// callback that registers a new OnAdd mid-fire does not see itself
// re-invoked for the same notification.
func (r *reactiveRegistry) fireOnAdd(id Handle, entity Handle, cell any) {
	s, ok := r.slots[id]
	if !ok {
		return
	}
	cbs := append([]ComponentCallback(nil), s.onAdd...)
	for _, cb := range cbs {
		cb(entity, cell)
	}
}

func (r *reactiveRegistry) fireOnRemove(id Handle, entity Handle, cell any) {
	s, ok := r.slots[id]
	if !ok {
		return
	}
	cbs := append([]ComponentCallback(nil), s.onRemove...)
	for _, cb := range cbs {
		cb(entity, cell)
	}
}

func (r *reactiveRegistry) fireOnSet(id Handle, entity Handle, cell any) {
	s, ok := r.slots[id]
	if !ok {
		return
	}
	cbs := append([]ComponentCallback(nil), s.onSet...)
	for _, cb := range cbs {
		cb(entity, cell)
	}
}

func (r *reactiveRegistry) fireInit(id Handle, entity Handle, cell any) {
	s, ok := r.slots[id]
	if !ok || s.init == nil {
		return
	}
	s.init(entity, cell)
}

func (r *reactiveRegistry) fireFini(id Handle, entity Handle, cell any) {
	s, ok := r.slots[id]
	if !ok || s.fini == nil {
		return
	}
	s.fini(entity, cell)
}

func (r *reactiveRegistry) fireOnNew(t *tableNode, entity Handle) {
	cbs := r.onNew[t]
	if len(cbs) == 0 {
		return
	}
	snapshot := append([]func(entity Handle){}, cbs...)
	for _, cb := range snapshot {
		cb(entity)
	}
}
