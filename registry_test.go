package qom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLookup(t *testing.T) {
	ResetForTesting()
	Init()

	td := Register(TypeInfo{Name: "widget", Parent: TypeObject, InstanceSize: 1})
	require.NotNil(t, td)
	assert.Equal(t, "widget", td.Name())

	// Every registered name resolves back to a class naming itself.
	class := ClassByName("widget")
	require.NotNil(t, class)
	assert.Equal(t, "widget", ClassGetName(class))
}

func TestLookupUnknownReturnsNilNeverFatal(t *testing.T) {
	ResetForTesting()
	Init()

	assert.Nil(t, Lookup("does-not-exist"))
	assert.Nil(t, ClassByName("does-not-exist"))
}

func TestRegisterDuplicateIsFatal(t *testing.T) {
	ResetForTesting()
	Init()
	Register(TypeInfo{Name: "base", Parent: TypeObject, InstanceSize: 1})

	defer func() {
		r := recover()
		require.NotNil(t, r, "expected panic registering a duplicate name")
		fault, ok := r.(*Fault)
		require.True(t, ok, "expected panic value to be *Fault, got %T", r)
		assert.Equal(t, UsageFault, fault.Kind)
	}()

	Register(TypeInfo{Name: "base", Parent: TypeObject, InstanceSize: 1})
}

func TestRegisterEmptyNameIsFatal(t *testing.T) {
	ResetForTesting()
	Init()

	defer func() {
		r := recover()
		require.NotNil(t, r)
		fault, ok := r.(*Fault)
		require.True(t, ok)
		assert.Equal(t, UsageFault, fault.Kind)
	}()

	Register(TypeInfo{Name: "", Parent: TypeObject})
}

func TestRegisterDuringEnumerationIsFatal(t *testing.T) {
	ResetForTesting()
	Init()
	Register(TypeInfo{Name: "a", Parent: TypeObject, InstanceSize: 1})
	Register(TypeInfo{Name: "b", Parent: TypeObject, InstanceSize: 1})

	var caught any
	func() {
		defer func() { caught = recover() }()
		Foreach("", true, func(*ClassDescriptor) {
			Register(TypeInfo{Name: "c", Parent: TypeObject, InstanceSize: 1})
		})
	}()

	require.NotNil(t, caught)
	fault, ok := caught.(*Fault)
	require.True(t, ok)
	assert.Equal(t, UsageFault, fault.Kind)
}

func TestClassGetList(t *testing.T) {
	ResetForTesting()
	Init()
	Register(TypeInfo{Name: "a", Parent: TypeObject, InstanceSize: 1})
	Register(TypeInfo{Name: "b", Parent: TypeObject, InstanceSize: 1, Abstract: true})

	concrete := ClassGetList("", false)
	names := make([]string, 0, len(concrete))
	for _, c := range concrete {
		names = append(names, ClassGetName(c))
	}
	assert.Contains(t, names, "a")
	assert.NotContains(t, names, "b")

	withAbstract := ClassGetList("", true)
	assert.GreaterOrEqual(t, len(withAbstract), len(concrete)+1)
}
