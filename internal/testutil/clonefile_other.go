//go:build !darwin

package testutil

import "errors"

// cloneFile is unavailable off darwin; CopyTree falls back to copying bytes.
func cloneFile(src, dst string) error {
	return errors.New("clonefile not supported")
}
