package vars

import "testing"

func TestClamp(t *testing.T) {
	if Clamp(40, 0, 32) != 32 {
		t.Fatal()
	}
	if Clamp(-3, 0, 32) != 0 {
		t.Fatal()
	}
	if Clamp(7, 0, 32) != 7 {
		t.Fatal()
	}
	if Clamp(float32(1.5), 0, 1) != 1 {
		t.Fatal()
	}
}
