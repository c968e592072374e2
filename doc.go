// Package qom implements a runtime object/type system: a process-wide type
// registry, lazy class materialization with vtable-style inheritance,
// interface synthesis with ambiguity detection, and reference-counted
// object lifecycle management.
//
// Register a type with Register, giving it a parent, sizes, and the hooks
// that shape its instances and class descriptor:
//
//	qom.Init()
//	qom.Register(qom.TypeInfo{
//		Name:         "widget",
//		Parent:       qom.TypeObject,
//		InstanceSize: 1,
//		NewInstance:  func() any { return &Widget{} },
//	})
//	obj := qom.New("widget")
//	defer qom.Unref(obj)
//
// A type's class descriptor (its method table) is materialized lazily, the
// first time it or a descendant is needed: parent classes materialize
// first, the parent's class value is copied into the child's, and the
// child's ClassInit then overrides whichever slots it wants to change.
// ObjectDynamicCast and ObjectClassDynamicCast answer "does this conform to
// the named type", including through declared interfaces, with an
// ambiguous interface match reported as no match rather than a guess.
package qom
