package api

import "testing"

func TestNullReferenceIsNull(t *testing.T) {
	if !NullReference.IsNull() {
		t.Fatal("NullReference.IsNull() = false")
	}
}

func TestNewFunctionReferenceCarriesTypeID(t *testing.T) {
	ref := NewFunctionReference("f", FunctionTypeID(11))
	id, ok := ref.TypeID()
	if !ok || id != 11 {
		t.Fatalf("TypeID() = (%v, %v), want (11, true)", id, ok)
	}
}

func TestElemKindNameKnownAndUnknown(t *testing.T) {
	if got := ElemKindName(ElemKindFuncRef); got != "funcref" {
		t.Fatalf("ElemKindName(funcref) = %q", got)
	}
	if got := ElemKindName(ElemKind(0xff)); got == "" {
		t.Fatal("ElemKindName(unknown) returned empty string")
	}
}
