//go:build statsview
// +build statsview

package statsview

import (
	"bytes"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"
)

func TestLaunchAddressInUse(t *testing.T) {
	l, err := net.Listen("tcp", Address)
	if err != nil {
		t.Skipf("Can't listen on %s: %v", Address, err)
	}
	defer l.Close()

	errs := make(chan string, 1)
	var b bytes.Buffer
	Launch(&b, func(format string, args ...interface{}) {
		errs <- fmt.Sprintf(format, args...)
	})
	if got, want := b.String(), Address+url; !strings.Contains(got, want) {
		t.Errorf("Launch output %q doesn't contain %q", got, want)
	}
	select {
	case msg := <-errs:
		if !strings.Contains(msg, Address) {
			t.Errorf("Error doesn't name the address: %q", msg)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("No error reported with %s already in use", Address)
	}
}
