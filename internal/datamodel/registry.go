package datamodel

import (
	"fmt"
	"maps"
	"slices"
)

// Relationships maps a relationship name to the child type it holds.
type Relationships map[string]TypeName

// Parent is an entity that can hold children.
type Parent interface {
	Entity
	// Relationships returns the static child registry of the type.
	Relationships() Relationships
}

// Relationship names of the built-in types.
const (
	RelationshipEvals   = "evals"
	RelationshipConfigs = "configs"
	RelationshipRuns    = "runs"
)

var entityTypes = map[TypeName]func() Entity{}

// RegisterType makes a concrete type available to untyped loading and
// parent resolution. It must be called from init; registering the same
// type name twice panics.
func RegisterType(factory func() Entity) {
	if factory == nil {
		panic("datamodel: RegisterType factory is nil")
	}
	name := factory().TypeName()
	if _, exists := entityTypes[name]; exists {
		panic("datamodel: RegisterType called twice for " + string(name))
	}
	entityTypes[name] = factory
}

// RegisteredTypes returns the registered type names in sorted order.
func RegisteredTypes() []TypeName {
	return slices.Sorted(maps.Keys(entityTypes))
}

func newEntity(name TypeName) (Entity, bool) {
	factory, ok := entityTypes[name]
	if !ok {
		return nil, false
	}
	return factory(), true
}

// relationshipFor returns the relationship under which parent holds child.
func relationshipFor(parent Parent, child TypeName) (string, bool) {
	rels := parent.Relationships()
	for _, name := range slices.Sorted(maps.Keys(rels)) {
		if rels[name] == child {
			return name, true
		}
	}
	return "", false
}

// relationshipType resolves the child type registered under a name.
func relationshipType(parent Parent, relationship string) (TypeName, error) {
	childType, ok := parent.Relationships()[relationship]
	if !ok {
		return "", fmt.Errorf("%w: %s has no relationship %q", ErrUnknownRelationship, parent.TypeName(), relationship)
	}
	return childType, nil
}

func checkParentType(child Entity, parent Parent) error {
	if _, ok := relationshipFor(parent, child.TypeName()); !ok {
		return fmt.Errorf("%w: %s cannot be a child of %s", ErrInvalidParentType, child.TypeName(), parent.TypeName())
	}
	return nil
}

// parentCandidates returns fresh instances of every registered type that
// holds child under relationship.
func parentCandidates(child TypeName, relationship string) []Parent {
	var out []Parent
	for _, name := range RegisteredTypes() {
		candidate, ok := entityTypes[name]().(Parent)
		if !ok {
			continue
		}
		if candidate.Relationships()[relationship] == child {
			out = append(out, candidate)
		}
	}
	return out
}
