package table

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitCopiesSegmentIntoTable(t *testing.T) {
	reg := NewRegistry()
	inst, err := Create(nil, Type{ElemKind: ElemKindFuncRef, Min: 4}, NullReference, "init", nil, WithRegistry(reg))
	require.NoError(t, err)
	defer inst.Destroy()

	seg := NewElementSegment([]Reference{
		NewFunctionReference("a", 1),
		NewFunctionReference("b", 2),
		NewFunctionReference("c", 3),
	})
	mod := NewModuleInstance([]*ElementSegment{seg})

	require.NoError(t, Init(inst, mod, 0, 1, 0, 3))

	v0, _ := inst.Get(0)
	require.True(t, v0.IsNull())
	for i, want := range []FunctionTypeID{1, 2, 3} {
		v, err := inst.Get(uint64(i) + 1)
		require.NoError(t, err)
		id, ok := v.TypeID()
		require.True(t, ok)
		require.Equal(t, want, id)
	}
}

func TestInitOutOfBoundsSegmentRange(t *testing.T) {
	reg := NewRegistry()
	inst, err := Create(nil, Type{ElemKind: ElemKindFuncRef, Min: 4}, NullReference, "init-oob", nil, WithRegistry(reg))
	require.NoError(t, err)
	defer inst.Destroy()

	seg := NewElementSegment([]Reference{NewFunctionReference("a", 1)})
	mod := NewModuleInstance([]*ElementSegment{seg})

	err = Init(inst, mod, 0, 0, 0, 2)
	require.Error(t, err)
	var tblErr *Error
	require.ErrorAs(t, err, &tblErr)
	require.Equal(t, OutOfBoundsElemSegmentAccess, tblErr.Kind)
}

func TestDropElemThenInitFails(t *testing.T) {
	reg := NewRegistry()
	inst, err := Create(nil, Type{ElemKind: ElemKindFuncRef, Min: 1}, NullReference, "drop", nil, WithRegistry(reg))
	require.NoError(t, err)
	defer inst.Destroy()

	seg := NewElementSegment([]Reference{NewFunctionReference("a", 1)})
	mod := NewModuleInstance([]*ElementSegment{seg})

	require.NoError(t, mod.DropElem(0))
	// Dropping again is a no-op, not an error.
	require.NoError(t, mod.DropElem(0))

	err = Init(inst, mod, 0, 0, 0, 1)
	require.Error(t, err)
	var tblErr *Error
	require.ErrorAs(t, err, &tblErr)
	require.Equal(t, InvalidArgument, tblErr.Kind)
}

func TestInitRacingDropEitherSucceedsOrFailsCleanly(t *testing.T) {
	reg := NewRegistry()
	inst, err := Create(nil, Type{ElemKind: ElemKindFuncRef, Min: 8}, NullReference, "race", nil, WithRegistry(reg))
	require.NoError(t, err)
	defer inst.Destroy()

	elems := make([]Reference, 8)
	for i := range elems {
		elems[i] = NewFunctionReference("f", FunctionTypeID(i))
	}
	seg := NewElementSegment(elems)
	mod := NewModuleInstance([]*ElementSegment{seg})

	var wg sync.WaitGroup
	wg.Add(2)
	var initErr error
	go func() {
		defer wg.Done()
		initErr = Init(inst, mod, 0, 0, 0, 8)
	}()
	go func() {
		defer wg.Done()
		_ = mod.DropElem(0)
	}()
	wg.Wait()

	// Whichever ran "first", Init never observes a torn read: either it
	// completed before the drop took effect (no error, every slot filled)
	// or it saw the segment already gone (InvalidArgument).
	if initErr != nil {
		var tblErr *Error
		require.ErrorAs(t, initErr, &tblErr)
		require.Equal(t, InvalidArgument, tblErr.Kind)
	}
}
