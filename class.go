package qom

import "reflect"

// ClassDescriptor is the single, process-lifetime record materialized for
// one fully-registered type. Its Payload is whatever value the type's (or
// an ancestor's) TypeInfo.NewClass factory produced; materialize below
// treats it as opaque except for the one structural copy it performs.
type ClassDescriptor struct {
	typ        *TypeDescriptor
	Payload    any
	interfaces []*InterfaceClassDescriptor
	Properties map[string]any

	cache castCache
}

// Type returns the TypeDescriptor this class was materialized for.
func (c *ClassDescriptor) Type() *TypeDescriptor { return c.typ }

// Interfaces returns the ordered list of interface classes this class
// implements: entries inherited from the parent class first, then this
// type's own declared interfaces that no earlier entry already covers.
func (c *ClassDescriptor) Interfaces() []*InterfaceClassDescriptor {
	return c.interfaces
}

// resolveParent resolves and caches t.parentType, fatal if the declared
// parent name is unknown.
func (r *Registry) resolveParent(t *TypeDescriptor) *TypeDescriptor {
	if t.parent == "" {
		return nil
	}
	if t.parentType != nil {
		return t.parentType
	}
	p := r.Lookup(t.parent)
	if p == nil {
		raise(ResolutionFault, "type %q: unknown parent %q", t.name, t.parent)
		return nil
	}
	t.parentType = p
	return p
}

// effectiveInstanceSize walks the parent chain for the closest declared
// non-zero instance size, the same recursion the original's type_object_get_size used.
// visiting guards against a parent cycle.
func (r *Registry) effectiveInstanceSize(t *TypeDescriptor, visiting map[*TypeDescriptor]bool) int {
	if t.instanceSize != 0 {
		return t.instanceSize
	}
	if t.parent == "" {
		return 0
	}
	if visiting[t] {
		raise(StructuralFault, "parent chain cycle detected at type %q", t.name)
		return 0
	}
	visiting[t] = true
	p := r.resolveParent(t)
	if p == nil {
		return 0
	}
	return r.effectiveInstanceSize(p, visiting)
}

func (r *Registry) effectiveClassSize(t *TypeDescriptor, visiting map[*TypeDescriptor]bool) int {
	if t.classSize != 0 {
		return t.classSize
	}
	if t.parent == "" {
		return 0
	}
	if visiting[t] {
		raise(StructuralFault, "parent chain cycle detected at type %q", t.name)
		return 0
	}
	visiting[t] = true
	p := r.resolveParent(t)
	if p == nil {
		return 0
	}
	return r.effectiveClassSize(p, visiting)
}

func (r *Registry) effectiveNewInstance(t *TypeDescriptor, visiting map[*TypeDescriptor]bool) func() any {
	if t.newInstance != nil {
		return t.newInstance
	}
	if t.parent == "" {
		return nil
	}
	if visiting[t] {
		raise(StructuralFault, "parent chain cycle detected at type %q", t.name)
		return nil
	}
	visiting[t] = true
	p := r.resolveParent(t)
	if p == nil {
		return nil
	}
	return r.effectiveNewInstance(p, visiting)
}

func (r *Registry) effectiveNewClass(t *TypeDescriptor, visiting map[*TypeDescriptor]bool) func() any {
	if t.newClass != nil {
		return t.newClass
	}
	if t.parent == "" {
		return nil
	}
	if visiting[t] {
		raise(StructuralFault, "parent chain cycle detected at type %q", t.name)
		return nil
	}
	visiting[t] = true
	p := r.resolveParent(t)
	if p == nil {
		return nil
	}
	return r.effectiveNewClass(p, visiting)
}

// GetInstanceSize returns the effective instance size for name. Fatal
// if name is unknown.
func GetInstanceSize(name string) int {
	t := global.Lookup(name)
	if t == nil {
		raise(ResolutionFault, "get_instance_size: unknown type %q", name)
		return 0
	}
	return global.effectiveInstanceSize(t, map[*TypeDescriptor]bool{})
}

// materialize lazily builds a type's class descriptor. It is idempotent:
// a type whose class already exists returns immediately.
func materialize(r *Registry, t *TypeDescriptor) *ClassDescriptor {
	return materializeVisiting(r, t, map[*TypeDescriptor]bool{})
}

func materializeVisiting(r *Registry, t *TypeDescriptor, visiting map[*TypeDescriptor]bool) *ClassDescriptor {
	if t.class != nil {
		return t.class
	}
	if visiting[t] {
		raise(StructuralFault, "parent chain cycle detected at type %q", t.name)
		return nil
	}
	visiting[t] = true

	// Step 1: effective sizes; an effective instance size of zero forces
	// the type abstract, on top of any explicitly declared abstractness.
	t.instanceSize = r.effectiveInstanceSize(t, cloneVisit(visiting))
	t.classSize = r.effectiveClassSize(t, cloneVisit(visiting))
	if t.instanceSize == 0 {
		t.abstract = true
	}
	t.newInstance = r.effectiveNewInstance(t, cloneVisit(visiting))
	t.newClass = r.effectiveNewClass(t, cloneVisit(visiting))

	// Step 2: allocate this type's own class payload.
	var payload any
	if t.newClass != nil {
		payload = t.newClass()
	}

	cd := &ClassDescriptor{typ: t, Properties: map[string]any{}}

	var parent *TypeDescriptor
	if t.parent != "" {
		// Step 3: materialize the parent first, then copy its class
		// payload into the prefix of this type's payload.
		parent = r.resolveParent(t)
		if parent == nil {
			return nil
		}
		materializeVisiting(r, parent, visiting)
		if parent.class == nil {
			return nil
		}
		if parent.classSize > t.classSize {
			raise(StructuralFault, "type %q: class size %d smaller than parent %q's %d", t.name, t.classSize, parent.name, parent.classSize)
			return nil
		}
		if payload != nil && parent.class.Payload != nil {
			copyClassPrefix(payload, parent.class.Payload)
		} else if payload == nil {
			payload = parent.class.Payload
		}

		// Step 4: inherit interfaces already present on the parent.
		for _, pi := range parent.class.interfaces {
			synth := synthesizeInterface(r, cd, pi.InterfaceType())
			cd.interfaces = append(cd.interfaces, synth)
		}
	}
	cd.Payload = payload

	// Step 5: this type's own declared interfaces, skipping any already
	// covered by an earlier entry (inherited or declared) whose interface
	// chain reaches it.
	for _, name := range t.declaredInterfaces {
		it := r.Lookup(name)
		if it == nil {
			raise(ResolutionFault, "type %q: unknown declared interface %q", t.name, name)
			return nil
		}
		covered := false
		for _, existing := range cd.interfaces {
			if r.isAncestor(existing.InterfaceType(), it) {
				covered = true
				break
			}
		}
		if covered {
			continue
		}
		synth := synthesizeInterface(r, cd, it)
		cd.interfaces = append(cd.interfaces, synth)
	}

	// Step 6.
	t.class = cd

	// Step 7: class_base_init, root toward this type, before class_init.
	var ancestors []*TypeDescriptor
	for p := parent; p != nil; p = r.resolveParent(p) {
		ancestors = append(ancestors, p)
	}
	for i := len(ancestors) - 1; i >= 0; i-- {
		if ancestors[i].classBaseInit != nil {
			ancestors[i].classBaseInit(cd.Payload, t.classData)
		}
	}

	// Step 8.
	if t.classInit != nil {
		t.classInit(cd.Payload, t.classData)
	}

	logger().Debugw("qom: class materialized", "name", t.name, "parent", t.parent, "abstract", t.abstract, "interfaces", len(cd.interfaces))

	return cd
}

func cloneVisit(m map[*TypeDescriptor]bool) map[*TypeDescriptor]bool {
	out := make(map[*TypeDescriptor]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// copyClassPrefix enforces that a child class's inherited prefix equals
// its parent's materialized class value. A type that adds class fields
// embeds the parent's class struct as its own first field; copyClassPrefix
// fills that field with a reflect-based structural value copy (never
// unsafe), which is the direct analogue of the original's memcpy into the
// freshly allocated payload.
//
// If child and parent share the same underlying Go type (the common case
// where a descendant adds no new virtual slots and simply reuses the
// parent's class struct), the whole value is overwritten instead — there
// is no "prefix" distinct from the whole in that case.
func copyClassPrefix(child, parent any) {
	cv := reflect.ValueOf(child)
	pv := reflect.ValueOf(parent)
	if cv.Kind() != reflect.Ptr || pv.Kind() != reflect.Ptr {
		raise(StructuralFault, "class payload must be a pointer, got %T / %T", child, parent)
		return
	}
	ce, pe := cv.Elem(), pv.Elem()
	if ce.Type() == pe.Type() {
		ce.Set(pe)
		return
	}
	if ce.NumField() == 0 {
		raise(StructuralFault, "class payload %T has no field to receive parent %T", child, parent)
		return
	}
	f0 := ce.Field(0)
	if f0.Type() != pe.Type() {
		raise(StructuralFault, "class payload %T must embed parent class %T as its first field", child, parent)
		return
	}
	f0.Set(pe)
}

// isAncestor reports whether target is on type's parent chain, or equals
// it. Used by cast.go's IsCompatible and by interface-coverage checks.
func (r *Registry) isAncestor(t, target *TypeDescriptor) bool {
	visiting := map[*TypeDescriptor]bool{}
	for t != nil {
		if t == target {
			return true
		}
		if visiting[t] {
			raise(StructuralFault, "parent chain cycle detected at type %q", t.name)
			return false
		}
		visiting[t] = true
		t = r.resolveParent(t)
	}
	return false
}

// ClassByName materializes and returns the class for name, or nil if name
// is unknown.
func ClassByName(name string) *ClassDescriptor {
	t := global.Lookup(name)
	if t == nil {
		return nil
	}
	return materialize(global, t)
}

// ClassGetParent returns class's parent class, materializing it if
// necessary, or nil if class has no parent.
func ClassGetParent(class *ClassDescriptor) *ClassDescriptor {
	if class == nil {
		return nil
	}
	p := global.resolveParent(class.typ)
	if p == nil {
		return nil
	}
	return materialize(global, p)
}

// ClassGetName returns the registered type name for class.
func ClassGetName(class *ClassDescriptor) string {
	if class == nil {
		return ""
	}
	return class.typ.name
}

// ClassIsAbstract reports whether class's type is abstract.
func ClassIsAbstract(class *ClassDescriptor) bool {
	if class == nil {
		return false
	}
	return class.typ.abstract
}
