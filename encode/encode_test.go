package encode

import "testing"

func TestTail(t *testing.T) {
	if got := tail("hello", 10); got != "hello" {
		t.Errorf("tail short = %q", got)
	}
	if got := tail("0123456789", 4); got != "6789" {
		t.Errorf("tail long = %q", got)
	}
}
