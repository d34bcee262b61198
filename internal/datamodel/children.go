package datamodel

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ChildDir returns the directory holding a parent's children for a
// relationship, or "" when the parent has no path.
func ChildDir(parent Parent, relationship string) string {
	path := parent.base().path
	if path == "" {
		return ""
	}
	return filepath.Join(filepath.Dir(path), relationship)
}

// ChildrenOf loads every child stored under relationship, attaching parent
// to each. Children are returned in lexicographic folder order.
func ChildrenOf(parent Parent, relationship string) ([]Entity, error) {
	childType, err := relationshipType(parent, relationship)
	if err != nil {
		return nil, err
	}
	if _, ok := entityTypes[childType]; !ok {
		return nil, fmt.Errorf("%w: child type %s of %s.%s is not registered", ErrUnknownRelationship, childType, parent.TypeName(), relationship)
	}
	paths, err := childPaths(parent, relationship, childType)
	if err != nil {
		return nil, err
	}
	out := make([]Entity, 0, len(paths))
	for _, path := range paths {
		child, _ := newEntity(childType)
		if err := readEntity(path, child, parent); err != nil {
			return nil, err
		}
		out = append(out, child)
	}
	return out, nil
}

// Children is the typed form of ChildrenOf. T must be the child type
// declared for relationship.
func Children[T any, PT entityPtr[T]](parent Parent, relationship string) ([]PT, error) {
	childType, err := relationshipType(parent, relationship)
	if err != nil {
		return nil, err
	}
	if want := PT(new(T)).TypeName(); want != childType {
		return nil, fmt.Errorf("%w: %s.%s holds %s, not %s", ErrUnknownRelationship, parent.TypeName(), relationship, childType, want)
	}
	paths, err := childPaths(parent, relationship, childType)
	if err != nil {
		return nil, err
	}
	out := make([]PT, 0, len(paths))
	for _, path := range paths {
		child := PT(new(T))
		if err := readEntity(path, child, parent); err != nil {
			return nil, err
		}
		out = append(out, child)
	}
	return out, nil
}

// ChildPaths lists the files of the children stored under relationship
// without loading them. Callers that want to skip broken children load
// each path with LoadChild.
func ChildPaths(parent Parent, relationship string) ([]string, error) {
	childType, err := relationshipType(parent, relationship)
	if err != nil {
		return nil, err
	}
	return childPaths(parent, relationship, childType)
}

// childPaths lists <child dir>/*/<type>.json. A missing directory is empty.
func childPaths(parent Parent, relationship string, childType TypeName) ([]string, error) {
	dir := ChildDir(parent, relationship)
	if dir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	var paths []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		candidate := filepath.Join(dir, entry.Name(), childType.Filename())
		info, err := os.Stat(candidate)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("stat %s: %w", candidate, err)
		}
		if info.IsDir() {
			continue
		}
		paths = append(paths, candidate)
	}
	return paths, nil
}
