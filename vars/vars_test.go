package vars

import "testing"

func TestFirstNonZero(t *testing.T) {
	if got := FirstNonZero(0, 0, 3, 5); got != 3 {
		t.Fatalf("got %v", got)
	}
	if got := FirstNonZero("", "x"); got != "x" {
		t.Fatalf("got %v", got)
	}
	if got := FirstNonZero[int](); got != 0 {
		t.Fatalf("got %v", got)
	}
}

func TestDerefOrZero(t *testing.T) {
	if got := DerefOrZero[int](nil); got != 0 {
		t.Fatalf("got %v", got)
	}
	n := 7
	if got := DerefOrZero(&n); got != 7 {
		t.Fatalf("got %v", got)
	}
}
