package testfixtures

import "testing"

func TestIDGeneratorMintsScopedSequence(t *testing.T) {
	gen := NewIDGenerator("wallet")

	if got := gen.Next(); got != "wallet-00000001" {
		t.Fatalf("first ID = %q, want wallet-00000001", got)
	}
	if got := gen.Next(); got != "wallet-00000002" {
		t.Fatalf("second ID = %q, want wallet-00000002", got)
	}
}

func TestIDGeneratorDefaultScope(t *testing.T) {
	gen := NewIDGenerator("")
	if got := gen.Next(); got != "fixture-00000001" {
		t.Fatalf("ID = %q, want fixture-00000001", got)
	}
}

func TestNilIDGeneratorYieldsEmptyIDs(t *testing.T) {
	var gen *IDGenerator
	if got := gen.NextFunc()(); got != "" {
		t.Fatalf("nil generator returned %q, want empty", got)
	}
}
