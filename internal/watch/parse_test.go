package watch

import (
	"reflect"
	"testing"
)

func TestParseTokenIDs(t *testing.T) {
	got, err := ParseTokenIDs([]string{"1", " 42 ", "", "1000000"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []uint64{1, 42, 1000000}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ids mismatch: %v != %v", got, want)
	}
}

func TestParseTokenIDsInvalid(t *testing.T) {
	if _, err := ParseTokenIDs([]string{"abc"}); err == nil {
		t.Fatalf("expected error for non-numeric id")
	}
	if _, err := ParseTokenIDs([]string{"-1"}); err == nil {
		t.Fatalf("expected error for negative id")
	}
}

func TestParseAddress(t *testing.T) {
	addr, err := ParseAddress(" 0x1111111111111111111111111111111111111111 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if addr.Hex() != "0x1111111111111111111111111111111111111111" {
		t.Fatalf("address mismatch: %s", addr.Hex())
	}

	if _, err := ParseAddress("not-an-address"); err == nil {
		t.Fatalf("expected error for invalid address")
	}
}
