//go:build !statsview
// +build !statsview

package statsview

import "io"

// Launch is a no-op without the statsview build tag.
func Launch(output io.Writer, logf func(string, ...interface{})) {}

// Available returns true if a statsview is available to launch.
func Available() bool {
	return false
}
