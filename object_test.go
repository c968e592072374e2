package qom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerFinalizeChain(t *testing.T, order *[]string) {
	t.Helper()
	Register(TypeInfo{
		Name:         "finroot",
		Parent:       TypeObject,
		InstanceSize: 1,
		NewInstance:  func() any { return &Base{} },
		InstanceFinalize: func(any) {
			*order = append(*order, "finroot")
		},
	})
	Register(TypeInfo{
		Name:   "finleaf",
		Parent: "finroot",
		InstanceFinalize: func(any) {
			*order = append(*order, "finleaf")
		},
	})
}

func TestNewStartsWithRefCountOne(t *testing.T) {
	ResetForTesting()
	Init()
	registerBaseDerived(t)

	obj := New("base")
	require.NotNil(t, obj)
	assert.Equal(t, 1, obj.RefCount())
}

func TestBalancedRefUnrefLeavesObjectLive(t *testing.T) {
	ResetForTesting()
	Init()
	registerBaseDerived(t)

	obj := New("base")
	Ref(obj)
	Ref(obj)
	assert.Equal(t, 3, obj.RefCount())

	Unref(obj)
	Unref(obj)
	assert.Equal(t, 1, obj.RefCount(), "balanced ref/unref must return to the initial count, object still live")
}

func TestUnrefFinalizesOnLastReference(t *testing.T) {
	ResetForTesting()
	Init()
	var order []string
	registerFinalizeChain(t, &order)

	obj := New("finleaf")
	Ref(obj)
	Unref(obj)
	assert.Empty(t, order, "must not finalize while a reference remains")

	Unref(obj)
	assert.Equal(t, 0, obj.RefCount())
	// Finalize chain runs leaf to root.
	assert.Equal(t, []string{"finleaf", "finroot"}, order)
}

func TestUnrefBelowZeroIsFatal(t *testing.T) {
	ResetForTesting()
	Init()
	registerBaseDerived(t)
	obj := New("base")
	Unref(obj)

	defer func() {
		r := recover()
		require.NotNil(t, r, "expected panic unref-ing an already-finalized object")
		fault, ok := r.(*Fault)
		require.True(t, ok)
		assert.Equal(t, UsageFault, fault.Kind)
	}()

	Unref(obj)
}

func TestNewNAllocatesIndependentInstances(t *testing.T) {
	ResetForTesting()
	Init()
	registerBaseDerived(t)

	objs := NewN("base", 3)
	require.Len(t, objs, 3)
	for _, o := range objs {
		require.NotNil(t, o)
		assert.Equal(t, 1, o.RefCount())
	}
	objs[0].Payload.(*Base).Greeting = "mutated"
	assert.Equal(t, "I am base", objs[1].Payload.(*Base).Greeting)
}

func TestRefUnrefOnNilAreNoOps(t *testing.T) {
	assert.Nil(t, Ref(nil))
	assert.NotPanics(t, func() { Unref(nil) })
}

func TestInitializeOnCallerSuppliedStorage(t *testing.T) {
	ResetForTesting()
	Init()
	registerBaseDerived(t)

	obj := &Instance{}
	got := Initialize(obj, "base")
	require.Same(t, obj, got)
	assert.Equal(t, 1, obj.RefCount())
	assert.Equal(t, "I am base", MustPayload[*Base](obj).Greeting)
}

func TestInitializeOnNilTargetIsFatal(t *testing.T) {
	ResetForTesting()
	Init()
	registerBaseDerived(t)

	defer func() {
		r := recover()
		require.NotNil(t, r)
		fault, ok := r.(*Fault)
		require.True(t, ok)
		assert.Equal(t, UsageFault, fault.Kind)
	}()

	Initialize(nil, "base")
}

func TestPayloadTypeMismatchReportsFalse(t *testing.T) {
	ResetForTesting()
	Init()
	registerBaseDerived(t)
	obj := New("base")

	type other struct{}
	_, ok := Payload[*other](obj)
	assert.False(t, ok)

	v, ok := Payload[*Base](obj)
	assert.True(t, ok)
	assert.Equal(t, "I am base", v.Greeting)
}
