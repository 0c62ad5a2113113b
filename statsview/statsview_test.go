//go:build !statsview
// +build !statsview

package statsview

import (
	"bytes"
	"testing"
)

func TestStub(t *testing.T) {
	if Available() {
		t.Fatalf("statsview available without the build tag")
	}
	var b bytes.Buffer
	Launch(&b, t.Errorf)
	if got := b.String(); got != "" {
		t.Errorf("Stub Launch wrote output: %q", got)
	}
}
