package datamodel

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// SetParent attaches parent to child and re-runs the child's validators.
// On failure the previous parent is kept. A nil parent detaches.
func SetParent(child Entity, parent Parent) error {
	b := child.base()
	if parent != nil {
		if err := checkParentType(child, parent); err != nil {
			return err
		}
	}
	prev := b.parent
	b.parent = parent
	if err := child.Validate(); err != nil {
		b.parent = prev
		return err
	}
	return nil
}

// ParentOfType walks the in-memory parent chain of e and returns the first
// ancestor of type T, or nil when the chain ends without one.
func ParentOfType[T any, PT entityPtr[T]](e Entity) PT {
	if e == nil {
		return nil
	}
	return ancestorOf[T, PT](e.base())
}

func ancestorOf[T any, PT entityPtr[T]](b *Base) PT {
	for p := b.parent; p != nil; p = p.base().parent {
		if match, ok := p.(PT); ok {
			return match
		}
	}
	return nil
}

// resolveParent loads the parent of an entity read from
// <parent dir>/<relationship>/<folder>/<file>, if that parent file exists.
func resolveParent(e Entity) error {
	b := e.base()
	folder := filepath.Dir(b.path)
	relDir := filepath.Dir(folder)
	relationship := filepath.Base(relDir)
	parentDir := filepath.Dir(relDir)
	for _, candidate := range parentCandidates(e.TypeName(), relationship) {
		parentPath := filepath.Join(parentDir, candidate.TypeName().Filename())
		info, err := os.Stat(parentPath)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("stat parent %s: %w", parentPath, err)
		}
		if info.IsDir() {
			continue
		}
		if err := readEntity(parentPath, candidate, nil); err != nil {
			return fmt.Errorf("load parent of %s: %w", b.path, err)
		}
		b.parent = candidate
		return nil
	}
	return nil
}
