//go:build darwin

package testutil

import "golang.org/x/sys/unix"

// cloneFile makes a copy-on-write clone of a fixture file (APFS).
func cloneFile(src, dst string) error {
	return unix.Clonefile(src, dst, 0)
}
