package table

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestTable(t *testing.T, min uint32, max *uint32) *Instance {
	t.Helper()
	reg := NewRegistry()
	inst, err := Create(nil, Type{ElemKind: ElemKindFuncRef, Min: min, Max: max}, NullReference, t.Name(), nil, WithRegistry(reg))
	require.NoError(t, err)
	t.Cleanup(func() { _ = inst.Destroy() })
	return inst
}

func u32(v uint32) *uint32 { return &v }

func TestCreateGrowsToMinAndFillsUninitialized(t *testing.T) {
	inst := newTestTable(t, 4, nil)
	require.EqualValues(t, 4, inst.Size())

	for i := uint64(0); i < 4; i++ {
		v, err := inst.Get(i)
		require.NoError(t, err)
		require.True(t, v.IsNull())
	}
}

func TestGetOutOfBounds(t *testing.T) {
	inst := newTestTable(t, 2, nil)
	_, err := inst.Get(2)
	require.Error(t, err)
	var tblErr *Error
	require.ErrorAs(t, err, &tblErr)
	require.Equal(t, OutOfBoundsTableAccess, tblErr.Kind)
}

func TestGetForCallIndirectUninitializedRaises(t *testing.T) {
	inst := newTestTable(t, 1, nil)
	_, err := inst.GetForCallIndirect(0)
	require.Error(t, err)
	var tblErr *Error
	require.ErrorAs(t, err, &tblErr)
	require.Equal(t, UninitializedTableElement, tblErr.Kind)

	// Get (as opposed to GetForCallIndirect) reads the same slot as null,
	// not an error.
	v, err := inst.Get(0)
	require.NoError(t, err)
	require.True(t, v.IsNull())
}

func TestSetThenGetRoundTrips(t *testing.T) {
	inst := newTestTable(t, 1, nil)
	fn := NewFunctionReference("f", 42)

	prev, err := inst.Set(0, fn)
	require.NoError(t, err)
	require.True(t, prev.IsNull())

	got, err := inst.Get(0)
	require.NoError(t, err)
	id, ok := got.TypeID()
	require.True(t, ok)
	require.EqualValues(t, 42, id)
}

func TestSetReturnsPreviousValue(t *testing.T) {
	inst := newTestTable(t, 1, nil)
	first := NewFunctionReference("first", 1)
	second := NewFunctionReference("second", 2)

	_, err := inst.Set(0, first)
	require.NoError(t, err)

	prev, err := inst.Set(0, second)
	require.NoError(t, err)
	prevID, ok := prev.TypeID()
	require.True(t, ok)
	require.EqualValues(t, 1, prevID)
}

func TestSetOutOfBounds(t *testing.T) {
	inst := newTestTable(t, 1, nil)
	_, err := inst.Set(5, NullReference)
	require.Error(t, err)
}

func TestGrowRejectsPastDeclaredMax(t *testing.T) {
	inst := newTestTable(t, 2, u32(2))
	_, ok := inst.Grow(1, true, NullReference)
	require.False(t, ok)
	require.EqualValues(t, 2, inst.Size())
}

func TestGrowZeroIsNoOpAndReportsCurrentSize(t *testing.T) {
	inst := newTestTable(t, 3, nil)
	old, ok := inst.Grow(0, true, NullReference)
	require.True(t, ok)
	require.EqualValues(t, 3, old)
	require.EqualValues(t, 3, inst.Size())
}

func TestGrowQuotaDeniedRefundsNothingLost(t *testing.T) {
	quota := NewResourceQuota(2)
	reg := NewRegistry()
	inst, err := Create(nil, Type{ElemKind: ElemKindFuncRef, Min: 2}, NullReference, "quota", quota, WithRegistry(reg))
	require.NoError(t, err)
	defer inst.Destroy()

	_, ok := inst.Grow(1, true, NullReference)
	require.False(t, ok, "quota only allows 2 elements total, all consumed by create's min")
	require.EqualValues(t, 2, inst.Size())

	// After a denied grow, the quota still reports no room: the
	// implementation must not have double-charged or under-charged.
	require.False(t, quota.Allocate(1))
}

func TestFillWritesRangeAndStopsAtOutOfBounds(t *testing.T) {
	inst := newTestTable(t, 4, nil)
	fn := NewFunctionReference("f", 9)
	err := inst.Fill(1, fn, 2)
	require.NoError(t, err)

	v0, _ := inst.Get(0)
	require.True(t, v0.IsNull())
	v1, _ := inst.Get(1)
	id1, _ := v1.TypeID()
	require.EqualValues(t, 9, id1)
	v2, _ := inst.Get(2)
	id2, _ := v2.TypeID()
	require.EqualValues(t, 9, id2)
	v3, _ := inst.Get(3)
	require.True(t, v3.IsNull())

	err = inst.Fill(3, fn, 5)
	require.Error(t, err)
}

func TestCopyDescendingWhenOverlapGrowsForward(t *testing.T) {
	inst := newTestTable(t, 4, nil)
	// The table holds bare addresses, so the references must stay
	// reachable for the rest of the test (see NewFunctionReference).
	refs := make([]Reference, 3)
	for i := uint64(0); i < 3; i++ {
		refs[i] = NewFunctionReference("f", FunctionTypeID(i))
		_, err := inst.Set(i, refs[i])
		require.NoError(t, err)
	}
	// copy(dest=1, src=0, n=3): overlapping shift right by one; every
	// source value must survive the copy (descending order), matching
	// spec.md's worked example.
	require.NoError(t, Copy(inst, inst, 1, 0, 3))

	for i := uint64(0); i < 3; i++ {
		v, err := inst.Get(i + 1)
		require.NoError(t, err)
		id, ok := v.TypeID()
		require.True(t, ok)
		require.EqualValues(t, i, id)
	}
}

func TestCopyAcrossTables(t *testing.T) {
	src := newTestTable(t, 2, nil)
	dst := newTestTable(t, 2, nil)
	fn := NewFunctionReference("f", 7)
	_, err := src.Set(0, fn)
	require.NoError(t, err)

	require.NoError(t, Copy(dst, src, 1, 0, 1))
	v, err := dst.Get(1)
	require.NoError(t, err)
	id, _ := v.TypeID()
	require.EqualValues(t, 7, id)
}

func TestCallIndirectFailSignatureMismatch(t *testing.T) {
	inst := newTestTable(t, 1, nil)
	_, err := inst.Set(0, NewFunctionReference("f", 1))
	require.NoError(t, err)

	err = inst.CallIndirectFail(0, 2)
	require.Error(t, err)
	var tblErr *Error
	require.ErrorAs(t, err, &tblErr)
	require.Equal(t, IndirectCallSignatureMismatch, tblErr.Kind)
}

func TestCloneTableCopiesElementsIndependently(t *testing.T) {
	src := newTestTable(t, 2, nil)
	fn := NewFunctionReference("f", 3)
	_, err := src.Set(0, fn)
	require.NoError(t, err)

	dst, err := CloneTable(src, nil)
	require.NoError(t, err)
	defer dst.Destroy()

	_, err = src.Set(0, NewFunctionReference("g", 4))
	require.NoError(t, err)

	v, err := dst.Get(0)
	require.NoError(t, err)
	id, _ := v.TypeID()
	require.EqualValues(t, 3, id, "clone must not alias the source's element store")
}

func TestRegistryResolveFindsOwningTableAndIndex(t *testing.T) {
	reg := NewRegistry()
	inst, err := Create(nil, Type{ElemKind: ElemKindFuncRef, Min: 8}, NullReference, "resolve", nil, WithRegistry(reg))
	require.NoError(t, err)
	defer inst.Destroy()

	base := inst.reservation.Base()
	found, idx, ok := reg.Resolve(base + 3*8)
	require.True(t, ok)
	require.Same(t, inst, found)
	require.EqualValues(t, 3, idx)

	_, _, ok = reg.Resolve(0)
	require.False(t, ok)
}

func TestCompartmentAddInsertRemove(t *testing.T) {
	c := NewCompartment()
	reg := NewRegistry()
	inst, err := Create(c, Type{ElemKind: ElemKindFuncRef, Min: 1}, NullReference, "compartment", nil, WithRegistry(reg))
	require.NoError(t, err)

	got, ok := c.Table(inst.ID())
	require.True(t, ok)
	require.Same(t, inst, got)

	require.NoError(t, inst.Destroy())
	_, ok = c.Table(inst.ID())
	require.False(t, ok)
}
