package qom

// InterfaceClassDescriptor is the hidden, never-registered class created
// for one (concrete type, interface) pair. It is a specialization of
// ClassDescriptor, modeled here by embedding: an InterfaceClassDescriptor
// IS a ClassDescriptor plus the two back-pointers the original's
// InterfaceClass struct added (concrete_class, interface_type).
//
// These are never findable by name — only by walking a concrete class's
// Interfaces() list.
type InterfaceClassDescriptor struct {
	ClassDescriptor
	concreteClass *ClassDescriptor
	interfaceType *TypeDescriptor
}

// ConcreteClass returns the class this interface entry was synthesized
// for.
func (i *InterfaceClassDescriptor) ConcreteClass() *ClassDescriptor { return i.concreteClass }

// InterfaceType returns the interface TypeDescriptor this entry
// implements.
func (i *InterfaceClassDescriptor) InterfaceType() *TypeDescriptor { return i.interfaceType }

// synthesizeInterface creates the hidden class linking concrete (already
// allocated, not yet exposed) to interfaceType. Its payload traces back
// to the interface's own materialized class: the original's chain of
// byte-copies from a concrete type's inherited
// interface entry ultimately bottoms out at the interface's own class,
// since none of the hidden link types in the original ever add class_init
// overrides of their own — so this port builds that end state directly,
// by materializing interfaceType itself and cloning its payload, rather
// than re-deriving the intermediate hidden-type chain.
func synthesizeInterface(r *Registry, concrete *ClassDescriptor, interfaceType *TypeDescriptor) *InterfaceClassDescriptor {
	ifaceClass := materializeVisiting(r, interfaceType, map[*TypeDescriptor]bool{})

	entry := &InterfaceClassDescriptor{
		concreteClass: concrete,
		interfaceType: interfaceType,
	}
	entry.typ = interfaceType
	entry.Properties = map[string]any{}

	if ifaceClass != nil && interfaceType.newClass != nil {
		payload := interfaceType.newClass()
		copyClassPrefix(payload, ifaceClass.Payload)
		entry.Payload = payload
	}

	logger().Debugw("qom: interface synthesized", "concrete", concrete.typ.name, "interface", interfaceType.name)

	return entry
}
