package qom

import "sync"

// Registry is the process-wide mapping from type name to TypeDescriptor.
// It is backed by an insertion-ordered slice plus a name index so
// Foreach/ClassGetList iterate in registration order — a stable
// alternative to Go's randomized map iteration, playing the role the
// original's GHashTable-with-stable-iteration primitive played.
//
// The scheduling model assumed here is single-threaded cooperative: the
// registry itself carries no mutex. sync.Once below only makes the root
// registration idempotent across repeated calls to Init, guarding against
// accidental double-bootstrap rather than concurrent access.
type Registry struct {
	byName      map[string]int
	descriptors []*TypeDescriptor
	enumerating bool
}

var global = &Registry{byName: make(map[string]int, 64)}
var rootOnce sync.Once

// Init registers the two root types "object" and "interface" exactly once.
// Later calls are no-ops.
func Init() {
	rootOnce.Do(func() {
		global.register(TypeInfo{
			Name:     "interface",
			ClassSize: 0,
			Abstract:  true,
		})
		global.register(TypeInfo{
			Name:         "object",
			InstanceSize: 0,
			Abstract:     true,
		})
		logger().Debugw("qom: root types registered", "object", TypeObject, "interface", TypeInterface)
	})
}

// Well-known root type names.
const (
	TypeObject    = "object"
	TypeInterface = "interface"
)

// RegisterStatic registers a type whose TypeInfo (and the strings it
// references) live for the remainder of the process. In this Go port
// there is no distinction between "static" and copied storage — all
// string fields are copied into registry-owned storage regardless — so
// RegisterStatic and Register behave identically; both names are kept to
// mirror the original's external API surface.
func RegisterStatic(info TypeInfo) *TypeDescriptor { return global.register(info) }

// Register registers a new type. Fatal if info.Name is empty or already
// registered, or if called while an enumeration (Foreach/ClassForeach) is
// in progress.
func Register(info TypeInfo) *TypeDescriptor { return global.register(info) }

// RegisterMany is convenience sugar over Register.
func RegisterMany(infos []TypeInfo) []*TypeDescriptor {
	out := make([]*TypeDescriptor, len(infos))
	for i, info := range infos {
		out[i] = global.register(info)
	}
	return out
}

func (r *Registry) register(info TypeInfo) *TypeDescriptor {
	if r.enumerating {
		raise(UsageFault, "register(%q): registry is enumerating", info.Name)
		return nil
	}
	if info.Name == "" {
		raise(UsageFault, "register: type name must not be empty")
		return nil
	}
	if _, exists := r.byName[info.Name]; exists {
		raise(UsageFault, "register(%q): type already registered", info.Name)
		return nil
	}

	td := &TypeDescriptor{
		name:               info.Name,
		parent:             info.Parent,
		abstract:           info.Abstract,
		initPhase:          info.InitPhase,
		instanceSize:       info.InstanceSize,
		classSize:          info.ClassSize,
		newInstance:        info.NewInstance,
		newClass:           info.NewClass,
		instanceInit:       info.InstanceInit,
		instanceFinalize:   info.InstanceFinalize,
		classInit:          info.ClassInit,
		classBaseInit:      info.ClassBaseInit,
		classFinalize:      info.ClassFinalize,
		classData:          info.ClassData,
		declaredInterfaces: append([]string(nil), info.DeclaredInterfaces...),
	}

	r.byName[td.name] = len(r.descriptors)
	r.descriptors = append(r.descriptors, td)
	logger().Debugw("qom: type registered", "name", td.name, "parent", td.parent, "abstract", td.abstract)

	if info.InitPhase == RegisterPhase {
		materialize(r, td)
	}

	return td
}

// ResetForTesting discards every registration, including the roots, and
// clears rootOnce so the next Init call re-registers them. It exists only
// for test isolation against the package-wide registry; production code
// has no reason to call it.
func ResetForTesting() {
	global.byName = make(map[string]int, 64)
	global.descriptors = nil
	global.enumerating = false
	rootOnce = sync.Once{}
}

// Retire invokes name's ClassFinalize hook, if one was registered, against
// its materialized class payload. It does not remove the type from the
// registry or unmaterialize it — this module's process-lifetime types are
// never actually torn down, but the hook exists in TypeInfo and this gives
// it a caller instead of leaving it permanently dead. Fatal if name is
// unknown or not yet materialized.
func (r *Registry) Retire(name string) {
	t := r.Lookup(name)
	if t == nil {
		raise(ResolutionFault, "retire(%q): unknown type", name)
		return
	}
	if t.class == nil {
		raise(UsageFault, "retire(%q): type was never materialized", name)
		return
	}
	if t.classFinalize != nil {
		t.classFinalize(t.class.Payload, t.classData)
	}
}

// Retire is sugar over the global registry's Retire.
func Retire(name string) { global.Retire(name) }

// Lookup returns the TypeDescriptor for name, or nil if name is empty or
// unknown. Never fatal.
func (r *Registry) Lookup(name string) *TypeDescriptor {
	if name == "" {
		return nil
	}
	i, ok := r.byName[name]
	if !ok {
		return nil
	}
	return r.descriptors[i]
}

// Lookup is sugar over the global registry's Lookup.
func Lookup(name string) *TypeDescriptor { return global.Lookup(name) }

// Foreach materializes every registered type (so filter, an interface or
// parent type name, can be evaluated via dynamic cast) and invokes fn for
// those that pass the filter and abstractness gate. Registration is
// forbidden for the duration.
func (r *Registry) Foreach(filter string, includeAbstract bool, fn func(*ClassDescriptor)) {
	r.enumerating = true
	defer func() { r.enumerating = false }()

	for _, td := range r.descriptors {
		materialize(r, td)
		if !includeAbstract && td.abstract {
			continue
		}
		if filter != "" {
			if ObjectClassDynamicCast(td.class, filter) == nil {
				continue
			}
		}
		fn(td.class)
	}
}

// Foreach is sugar over the global registry's Foreach.
func Foreach(filter string, includeAbstract bool, fn func(*ClassDescriptor)) {
	global.Foreach(filter, includeAbstract, fn)
}

// ClassGetList returns the classes matching filter/includeAbstract, in
// registration order (the original returned reverse-hashtable order; this
// port's registry has no analogous "reverse" to mimic, so it documents
// its own stable order instead of faking the original's incidental one).
func ClassGetList(filter string, includeAbstract bool) []*ClassDescriptor {
	var out []*ClassDescriptor
	Foreach(filter, includeAbstract, func(c *ClassDescriptor) {
		out = append(out, c)
	})
	return out
}
