package qom

// Instance is a live, reference-counted object. Payload is the value the
// type's (or nearest ancestor's) TypeInfo.NewInstance factory produced;
// InstanceInit hooks run against that same value top-down, so a
// descendant's struct must embed its parent's instance struct as its first
// field to see the fields its ancestors initialized, exactly as a class
// payload does (see copyClassPrefix in class.go).
type Instance struct {
	class    *ClassDescriptor
	typ      *TypeDescriptor
	Payload  any
	refCount int
}

// GetClass returns obj's materialized class.
func (o *Instance) GetClass() *ClassDescriptor { return o.class }

// GetTypeName returns the name obj was created with.
func (o *Instance) GetTypeName() string { return o.typ.name }

// RefCount returns the current reference count, for tests and diagnostics.
func (o *Instance) RefCount() int { return o.refCount }

// Initialize sets up obj in place as an instance of name: it resolves and
// materializes name's class, allocates (or reuses, if obj.Payload is
// already set) the instance payload, runs the instance_init chain root to
// leaf, and starts obj's reference count at 1. obj must be a non-nil,
// freshly allocated Instance — it is the caller-supplied-storage
// counterpart to New, which simply calls Initialize(&Instance{}, name).
// Fatal if obj is nil, name is unknown, or the resolved type is abstract.
func Initialize(obj *Instance, name string) *Instance {
	if obj == nil {
		raise(UsageFault, "initialize: nil target")
		return nil
	}
	t := global.Lookup(name)
	if t == nil {
		raise(ResolutionFault, "initialize(%q): unknown type", name)
		return nil
	}
	class := materialize(global, t)
	if class == nil {
		return nil
	}
	if t.abstract {
		raise(UsageFault, "initialize(%q): type is abstract", name)
		return nil
	}

	obj.class = class
	obj.typ = t
	obj.refCount = 1
	if obj.Payload == nil && t.newInstance != nil {
		obj.Payload = t.newInstance()
	}

	var chain []*TypeDescriptor
	for cur := t; cur != nil; cur = global.resolveParent(cur) {
		chain = append(chain, cur)
	}
	for i := len(chain) - 1; i >= 0; i-- {
		if chain[i].instanceInit != nil {
			chain[i].instanceInit(obj.Payload)
		}
	}

	logger().Debugw("qom: instance initialized", "type", name)
	return obj
}

// New allocates and initializes one instance of name. Fatal if name is
// unknown or the resolved type is abstract. The returned instance carries
// a reference count of 1, owned by the caller.
func New(name string) *Instance {
	return Initialize(&Instance{}, name)
}

// NewN is sugar for allocating n instances of name in one call, tracking
// the original's objects_new. Fatal behavior is identical to calling New
// n times.
func NewN(name string, n int) []*Instance {
	out := make([]*Instance, n)
	for i := range out {
		out[i] = New(name)
	}
	return out
}

// Ref increments obj's reference count and returns obj, mirroring the
// original's object_ref return-the-object convenience. A nil obj is a
// no-op and returns nil.
func Ref(obj *Instance) *Instance {
	if obj == nil {
		return nil
	}
	obj.refCount++
	return obj
}

// Unref decrements obj's reference count, finalizing it exactly when the
// decrement lands on zero. A nil obj is a no-op. Fatal if obj is already
// at zero — this is the corrected contract: New/Initialize start a
// reference at 1, Ref adds one, Unref removes one, and the object is torn
// down the instant nothing references it anymore.
func Unref(obj *Instance) {
	if obj == nil {
		return
	}
	if obj.refCount <= 0 {
		raise(UsageFault, "unref(%q): reference count already zero", obj.typ.name)
		return
	}
	obj.refCount--
	if obj.refCount == 0 {
		finalize(obj)
	}
}

func finalize(obj *Instance) {
	for cur := obj.typ; cur != nil; cur = global.resolveParent(cur) {
		if cur.instanceFinalize != nil {
			cur.instanceFinalize(obj.Payload)
		}
	}
	logger().Debugw("qom: instance finalized", "type", obj.typ.name)
}

// Payload type-asserts obj's payload to T, reporting ok=false instead of
// panicking on mismatch.
func Payload[T any](obj *Instance) (T, bool) {
	var zero T
	if obj == nil {
		return zero, false
	}
	v, ok := obj.Payload.(T)
	return v, ok
}

// MustPayload is Payload, fatal on type mismatch.
func MustPayload[T any](obj *Instance) T {
	v, ok := Payload[T](obj)
	if !ok {
		raise(UsageFault, "payload: object %q does not hold a %T", obj.typ.name, v)
	}
	return v
}

// ClassPayload type-asserts class's payload to T, reporting ok=false instead
// of panicking on mismatch.
func ClassPayload[T any](class *ClassDescriptor) (T, bool) {
	var zero T
	if class == nil {
		return zero, false
	}
	v, ok := class.Payload.(T)
	return v, ok
}

// MustClassPayload is ClassPayload, fatal on type mismatch.
func MustClassPayload[T any](class *ClassDescriptor) T {
	v, ok := ClassPayload[T](class)
	if !ok {
		raise(UsageFault, "class payload: class %q does not hold a %T", ClassGetName(class), v)
	}
	return v
}
