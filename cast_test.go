package qom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterfaceCastSucceedsWhileIsCompatibleDoesNot(t *testing.T) {
	ResetForTesting()
	Init()
	Register(TypeInfo{Name: "ifoo", Parent: TypeInterface, Abstract: true})
	Register(TypeInfo{
		Name:               "impl",
		Parent:             TypeObject,
		InstanceSize:       1,
		NewInstance:        func() any { return &Base{} },
		DeclaredInterfaces: []string{"ifoo"},
	})

	obj := New("impl")
	require.NotNil(t, obj)

	cast := ObjectDynamicCast(obj, "ifoo")
	assert.Same(t, obj, cast, "dynamic cast via the interface list must succeed")

	// Interface ancestry is not parent ancestry.
	assert.False(t, IsCompatible("impl", "ifoo"))
}

func TestAmbiguousInterfaceCastReturnsNone(t *testing.T) {
	ResetForTesting()
	Init()
	Register(TypeInfo{Name: "icommon", Parent: TypeInterface, Abstract: true})
	Register(TypeInfo{Name: "ia", Parent: "icommon", Abstract: true})
	Register(TypeInfo{Name: "ib", Parent: "icommon", Abstract: true})
	Register(TypeInfo{Name: "ia2", Parent: "ia", Abstract: true})
	Register(TypeInfo{Name: "ib2", Parent: "ib", Abstract: true})
	Register(TypeInfo{
		Name:               "impl2",
		Parent:             TypeObject,
		InstanceSize:       1,
		NewInstance:        func() any { return &Base{} },
		DeclaredInterfaces: []string{"ia2", "ib2"},
	})

	obj := New("impl2")
	require.NotNil(t, obj)

	// Both declared interfaces reach "icommon" through distinct entries:
	// the cast must refuse to pick one.
	assert.Nil(t, ObjectDynamicCast(obj, "icommon"))

	// Each individual leaf interface is unambiguous.
	assert.NotNil(t, ObjectDynamicCast(obj, "ia2"))
	assert.NotNil(t, ObjectDynamicCast(obj, "ib2"))
}

func TestDynamicCastToUnrelatedTypeReturnsNone(t *testing.T) {
	ResetForTesting()
	Init()
	registerBaseDerived(t)
	Register(TypeInfo{Name: "stranger", Parent: TypeObject, InstanceSize: 1})

	obj := New("derived")
	require.NotNil(t, obj)
	assert.Nil(t, ObjectDynamicCast(obj, "stranger"))
}

func TestDynamicCastUpAndDownParentChain(t *testing.T) {
	ResetForTesting()
	Init()
	registerBaseDerived(t)

	obj := New("derived")
	require.NotNil(t, obj)

	// Upcast to an ancestor type name succeeds.
	assert.NotNil(t, ObjectDynamicCast(obj, "base"))
	assert.NotNil(t, ObjectDynamicCast(obj, TypeObject))
	// Exact type name is the fast path.
	assert.NotNil(t, ObjectDynamicCast(obj, "derived"))
}

func TestIsCompatibleWalksParentChain(t *testing.T) {
	ResetForTesting()
	Init()
	registerBaseDerived(t)

	assert.True(t, IsCompatible("derived", "base"))
	assert.True(t, IsCompatible("derived", TypeObject))
	assert.True(t, IsCompatible("derived", "derived"))
	assert.False(t, IsCompatible("base", "derived"))
}

func TestIsCompatibleUnknownNameIsFatal(t *testing.T) {
	ResetForTesting()
	Init()

	defer func() {
		r := recover()
		require.NotNil(t, r)
		fault, ok := r.(*Fault)
		require.True(t, ok)
		assert.Equal(t, ResolutionFault, fault.Kind)
	}()

	IsCompatible("ghost", TypeObject)
}

func TestCastCacheDoesNotChangeTheAnswer(t *testing.T) {
	ResetForTesting()
	Init()
	registerBaseDerived(t)
	obj := New("derived")

	for i := 0; i < 10; i++ {
		assert.NotNil(t, ObjectDynamicCast(obj, "base"))
		assert.Nil(t, ObjectDynamicCast(obj, "does-not-exist"))
	}
}

func TestAssertVariantsFatalOnFailure(t *testing.T) {
	ResetForTesting()
	Init()
	registerBaseDerived(t)
	obj := New("base")

	defer func() {
		r := recover()
		require.NotNil(t, r)
		fault, ok := r.(*Fault)
		require.True(t, ok)
		assert.Equal(t, ResolutionFault, fault.Kind)
	}()

	ObjectDynamicCastAssert(obj, "derived", CallerSite{File: "cast_test.go", Line: 1, Func: "TestAssertVariantsFatalOnFailure"})
}
