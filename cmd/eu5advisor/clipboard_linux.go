//go:build linux

package main

import "fmt"

// copyToClipboard is unavailable on linux builds, which run without X11.
func copyToClipboard(_ string) error {
	return fmt.Errorf("clipboard not available on this platform (Linux without X11)")
}
