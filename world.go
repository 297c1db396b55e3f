package archway

import "github.com/TheBitDrifter/table"

// SingletonHandle is the well-known singleton handle. World keeps a
// standalone singleton Record field, but Directory does not route this
// handle to it: SingletonHandle is looked up in the sparse set like any
// other handle.
const SingletonHandle Handle = targetMask

// World owns every piece of the storage-and-transition engine: the
// handle allocator (C1), the entity directory (C2), the archetype graph
// of tables (C4, C5), the reactive action registry (C9), and the set of
// stages writers buffer mutations into (C8).
type World struct {
	cfg Config

	handles    *HandleAllocator
	schema     table.Schema
	entryIndex table.EntryIndex

	handleElemType table.ElementType
	recordElemType table.ElementType
	handleAcc      table.Accessor[Handle]
	recordAcc      table.Accessor[*Record]

	directory  *Directory
	components *componentRegistry
	reactive   *reactiveRegistry
	graph      *archetypeGraph

	disabledTag Handle
	prefabTag   Handle

	singleton Record

	stages      map[int]*Stage
	liveQueries []*queryImpl
	named       *namedQueries
	destroyCbs  *destroyCallbacks

	// shouldResolve is set whenever a main-stage column reallocation may
	// have moved a cached pointer, so the query reference cache knows to
	// re-resolve before its next use.
	shouldResolve bool
	// shouldMatch is set whenever a watched entity's type changes,
	// telling the scheduler a query rematch pass is due.
	shouldMatch bool

	// iterating counts the query iterators currently walking the main
	// stage; while it is non-zero, structural writes to the main stage
	// are rejected unless performed through a stage.
	iterating int
}

// NewWorld constructs an empty world: an allocator, a schema, a root
// (empty-type) table, and the two built-in tags Disabled/Prefab that
// query and table-flag derivation rely on.
func NewWorld(cfg Config) (*World, error) {
	cfg = cfg.withDefaults()
	w := &World{
		cfg:        cfg,
		schema:     table.Factory.NewSchema(),
		entryIndex: table.Factory.NewEntryIndex(),
		directory:  NewDirectory(),
		components: newComponentRegistry(),
		reactive:   newReactiveRegistry(),
		stages:     make(map[int]*Stage),
		named:      newNamedQueries(),
	}
	w.handles = NewHandleAllocator(cfg.MinHandle, cfg.MaxHandle)
	w.handleElemType = table.FactoryNewElementType[Handle]()
	w.recordElemType = table.FactoryNewElementType[*Record]()
	w.schema.Register(w.handleElemType, w.recordElemType)
	w.handleAcc = table.FactoryNewAccessor[Handle](w.handleElemType)
	w.recordAcc = table.FactoryNewAccessor[*Record](w.recordElemType)

	var err error
	w.disabledTag, err = w.handles.Allocate()
	if err != nil {
		return nil, err
	}
	w.prefabTag, err = w.handles.Allocate()
	if err != nil {
		return nil, err
	}

	w.graph, err = newArchetypeGraph(w)
	if err != nil {
		return nil, err
	}
	return w, nil
}

// Disabled and Prefab are the built-in tag handles the matcher excludes
// by default.
func (w *World) Disabled() Handle { return w.disabledTag }
func (w *World) Prefab() Handle   { return w.prefabTag }

// onTableCreated registers a newly created table against every live
// query, matching it eagerly the moment the graph creates it.
func (w *World) onTableCreated(n *tableNode) {
	for _, q := range w.liveQueries {
		q.tryBind(n)
	}
}

// lockIterating marks the main stage as being iterated, rejecting direct
// structural writes until the matching unlockIterating.
func (w *World) lockIterating()   { w.iterating++ }
func (w *World) unlockIterating() { w.iterating-- }
func (w *World) isIterating() bool { return w.iterating > 0 }

func (w *World) checkNotIterating() error {
	if w.isIterating() {
		return IteratingError{}
	}
	return nil
}

// RowIndexFor returns the row index the world's table schema assigns to
// a registered component.
func (w *World) RowIndexFor(c Component) uint32 {
	return w.schema.RowIndexFor(c)
}

// Handles exposes the allocator for callers that need to mint raw
// handles directly (e.g. to use as relation targets without an attached
// component).
func (w *World) Handles() *HandleAllocator { return w.handles }

// Directory exposes the main-stage entity directory, for tests and
// external invariant checks.
func (w *World) Directory() *Directory { return w.directory }

// Tables returns every table the archetype graph has created so far.
func (w *World) Tables() []Archetype {
	out := make([]Archetype, len(w.graph.all))
	for i, n := range w.graph.all {
		out[i] = n
	}
	return out
}
