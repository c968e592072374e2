package qom

// castCache is the short-term, fixed-size cache of recently-resolved cast
// targets a class may carry. It is purely an optimization:
// every hit is guarded by a full string comparison behind the fast tag
// check, so a tag collision can never return a wrong answer, and the
// cache is never consulted for correctness — only to skip recomputation.
type castCache struct {
	entries [4]cacheEntry
	next    int
}

type cacheEntry struct {
	tag    uint64
	name   string
	result *ClassDescriptor
	found  bool
	live   bool
}

func (c *castCache) lookup(name string) (result *ClassDescriptor, found, hit bool) {
	tag := nameTag(name)
	for _, e := range c.entries {
		if e.live && e.tag == tag && e.name == name {
			return e.result, e.found, true
		}
	}
	return nil, false, false
}

func (c *castCache) store(name string, result *ClassDescriptor, found bool) {
	c.entries[c.next] = cacheEntry{tag: nameTag(name), name: name, result: result, found: found, live: true}
	c.next = (c.next + 1) % len(c.entries)
}

// IsCompatible resolves both names and reports whether target equals name
// or is an ancestor of name on the parent chain. Fatal if either name is
// unknown.
func IsCompatible(name, target string) bool {
	a := global.Lookup(name)
	if a == nil {
		raise(ResolutionFault, "is_compatible: unknown type %q", name)
		return false
	}
	b := global.Lookup(target)
	if b == nil {
		raise(ResolutionFault, "is_compatible: unknown type %q", target)
		return false
	}
	if a == b {
		return true
	}
	return global.isAncestor(a, b)
}

// ObjectDynamicCast delegates to ObjectClassDynamicCast(obj.Class(), name);
// it returns obj on success, nil otherwise. A nil obj returns nil.
func ObjectDynamicCast(obj *Instance, name string) *Instance {
	if obj == nil {
		return nil
	}
	if ObjectClassDynamicCast(obj.class, name) == nil {
		return nil
	}
	return obj
}

// ObjectClassDynamicCast implements the cast algorithm: a fast-path name
// match, then interface-list resolution with ambiguity detection when
// name names an interface, else a plain ancestor check.
func ObjectClassDynamicCast(class *ClassDescriptor, name string) *ClassDescriptor {
	if class == nil {
		return nil
	}
	if class.typ.name == name {
		return class
	}

	if result, found, hit := class.cache.lookup(name); hit {
		if found {
			return result
		}
		return nil
	}

	result := resolveDynamicCast(class, name)
	class.cache.store(name, result, result != nil)
	return result
}

func resolveDynamicCast(class *ClassDescriptor, name string) *ClassDescriptor {
	target := global.Lookup(name)
	if target == nil {
		return nil
	}

	ifaceRoot := global.Lookup(TypeInterface)
	if len(class.interfaces) > 0 && ifaceRoot != nil && global.isAncestor(target, ifaceRoot) {
		var found *ClassDescriptor
		matches := 0
		for _, entry := range class.interfaces {
			if global.isAncestor(entry.interfaceType, target) {
				found = &entry.ClassDescriptor
				matches++
			}
		}
		if matches > 1 {
			return nil
		}
		return found
	}

	if global.isAncestor(class.typ, target) {
		return class
	}
	return nil
}

// ObjectDynamicCastAssert is ObjectDynamicCast, fatal on failure with a
// diagnostic naming site.
func ObjectDynamicCastAssert(obj *Instance, name string, site CallerSite) *Instance {
	cast := ObjectDynamicCast(obj, name)
	if cast == nil {
		raiseAt(ResolutionFault, site, "object is not an instance of %q", name)
		return nil
	}
	return cast
}

// ObjectClassDynamicCastAssert is ObjectClassDynamicCast, fatal on failure
// with a diagnostic naming site.
func ObjectClassDynamicCastAssert(class *ClassDescriptor, name string, site CallerSite) *ClassDescriptor {
	cast := ObjectClassDynamicCast(class, name)
	if cast == nil {
		raiseAt(ResolutionFault, site, "class %q is not compatible with %q", ClassGetName(class), name)
		return nil
	}
	return cast
}
