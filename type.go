package qom

// InitPhase controls whether a registered type's class is materialized
// immediately at registration (RegisterPhase) or lazily, on first use
// (LazyPhase). The original QOM calls these TYPE_REGISTER_PHASE and
// OBJECT_NEW_PHASE respectively.
type InitPhase int

const (
	// LazyPhase defers class materialization until the first operation
	// that needs it: object allocation, a class lookup, an enumeration,
	// or the materialization of a descendant or of a type that declares
	// this one as an interface. This is the default.
	LazyPhase InitPhase = iota
	// RegisterPhase materializes the class the moment Register returns.
	RegisterPhase
)

// TypeInfo is the immutable-after-registration description of a type,
// supplied by the type's author to Register. Every string field is copied
// into registry-owned storage; the caller's TypeInfo value may be reused
// or discarded afterward.
type TypeInfo struct {
	// Name must be non-empty and unique across the registry.
	Name string
	// Parent is the name of the parent type. Empty only for the two root
	// types "object" and "interface".
	Parent string

	// InstanceSize and ClassSize are nominal sizes in the sense the
	// original C implementation used them: zero means "inherit the
	// effective size from the parent." An effective InstanceSize of zero
	// forces the type abstract. They gate the same structural checks the
	// byte sizes did in C: a descendant's class size may never shrink
	// below its parent's. Neither bounds any real allocation, since
	// instance and class payloads are ordinary GC-managed Go values.
	InstanceSize int
	ClassSize    int

	// Abstract marks a type that cannot be instantiated even if its
	// effective instance size is non-zero.
	Abstract bool

	// NewInstance allocates the zero-valued payload for an instance of
	// this type (for example `func() any { return &Derived{} }`, where
	// Derived embeds its parent's instance struct as its first field).
	// If nil, the effective factory is inherited from the parent — the
	// type adds no new instance fields.
	NewInstance func() any
	// NewClass allocates the zero-valued payload for this type's class
	// descriptor (vtable). Same inheritance rule as NewInstance. If the
	// type embeds a parent class struct as its first field, the
	// Materializer copies the parent's materialized class value into
	// that field before ClassBaseInit/ClassInit run.
	NewClass func() any

	// InstanceInit runs top-down (root to this type) against the shared
	// instance payload during Initialize.
	InstanceInit func(payload any)
	// InstanceFinalize runs bottom-up (this type to root) during Unref's
	// terminal decrement.
	InstanceFinalize func(payload any)
	// ClassInit runs last in materialization, after every ancestor's
	// ClassBaseInit. It is the place to set this type's own virtual
	// method slots and to override inherited ones.
	ClassInit func(class any, data any)
	// ClassBaseInit runs for every ancestor (root to parent) against a
	// descendant's class payload, after the memcpy-equivalent copy and
	// before ClassInit. It exists to undo the effects of that copy —
	// e.g. to give a descendant its own copy of a slice or map the
	// parent's struct copy would otherwise still alias.
	ClassBaseInit func(class any, data any)
	// ClassFinalize runs when a type is explicitly retired via
	// Registry.Retire; the process-lifetime steady state never calls it
	// on its own.
	ClassFinalize func(class any, data any)
	// ClassData is passed verbatim to ClassInit, ClassBaseInit and
	// ClassFinalize.
	ClassData any

	// DeclaredInterfaces are the names of the interfaces this type
	// declares directly (order preserved; may be empty).
	DeclaredInterfaces []string

	// InitPhase controls when materialization happens. Defaults to
	// LazyPhase (the zero value).
	InitPhase InitPhase
}

// TypeDescriptor is the registry's permanent record for one registered
// name. It is immutable after Register returns except for the two lazy
// cache fields (parentType, class), which are written at most once, and
// the effective sizes, factories and abstractness, which materialization
// resolves from the parent chain and stores once.
type TypeDescriptor struct {
	name      string
	parent    string
	abstract  bool
	initPhase InitPhase

	instanceSize int
	classSize    int

	newInstance func() any
	newClass    func() any

	instanceInit     func(any)
	instanceFinalize func(any)
	classInit        func(any, any)
	classBaseInit    func(any, any)
	classFinalize    func(any, any)
	classData        any

	declaredInterfaces []string

	// lazy fields
	parentType *TypeDescriptor
	class      *ClassDescriptor
}

// Name returns the type's registered name.
func (t *TypeDescriptor) Name() string { return t.name }

// ParentName returns the declared parent name, or "" for a root type.
func (t *TypeDescriptor) ParentName() string { return t.parent }

// Abstract reports whether the type is abstract. Valid only after
// materialization resolves the effective instance size (an effective size
// of zero forces this true regardless of the declared value).
func (t *TypeDescriptor) Abstract() bool { return t.abstract }
