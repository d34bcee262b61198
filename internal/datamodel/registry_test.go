package datamodel

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func init() {
	RegisterType(func() Entity { return &shelf{} })
	RegisterType(func() Entity { return &label{} })
}

var errEmptyText = errors.New("text is required")

// shelf is a parent type outside the built-in hierarchy.
type shelf struct {
	Base
	fields struct {
		Title string `json:"title"`
	}
}

func (s *shelf) TypeName() TypeName           { return "shelf" }
func (s *shelf) MaxSchemaVersion() int        { return 1 }
func (s *shelf) Validate() error              { return nil }
func (s *shelf) record() any                  { return &s.fields }
func (s *shelf) Relationships() Relationships { return Relationships{"labels": "label"} }

// label is stored under a shelf.
type label struct {
	Base
	fields struct {
		Text string `json:"text"`
	}
}

func (l *label) TypeName() TypeName    { return "label" }
func (l *label) MaxSchemaVersion() int { return 1 }
func (l *label) record() any           { return &l.fields }

func (l *label) Validate() error {
	if strings.TrimSpace(l.fields.Text) == "" {
		return errEmptyText
	}
	return nil
}

func newLabel(t *testing.T, text string, opts ...Option) *label {
	t.Helper()
	l := &label{}
	l.fields.Text = text
	if err := initEntity(l, opts); err != nil {
		t.Fatalf("new label: %v", err)
	}
	return l
}

func expectPanic(t *testing.T, contains string, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		if r == nil {
			t.Fatalf("expected panic containing %q", contains)
		}
		if msg := fmt.Sprint(r); !strings.Contains(msg, contains) {
			t.Fatalf("expected panic containing %q, got %q", contains, msg)
		}
	}()
	fn()
}

func TestRegisterTypeRejectsDuplicates(t *testing.T) {
	before := RegisteredTypes()
	expectPanic(t, "twice for task", func() {
		RegisterType(func() Entity { return &Task{} })
	})
	expectPanic(t, "twice for shelf", func() {
		RegisterType(func() Entity { return &shelf{} })
	})
	if got := RegisteredTypes(); !slices.Equal(got, before) {
		t.Fatalf("expected registry unchanged, got %v", got)
	}
}

func TestRegisterTypeRejectsNilFactory(t *testing.T) {
	expectPanic(t, "factory is nil", func() { RegisterType(nil) })
}

func TestRegisteredTypesSorted(t *testing.T) {
	got := RegisteredTypes()
	for _, name := range []TypeName{TypeTask, TypeEval, TypeEvalConfig, TypeEvalRun, "shelf", "label"} {
		if !slices.Contains(got, name) {
			t.Fatalf("expected %s registered, got %v", name, got)
		}
	}
	if !slices.IsSorted(got) {
		t.Fatalf("expected sorted names, got %v", got)
	}
}

func TestRegisteredTypeLoadsThroughLoadAny(t *testing.T) {
	dir := t.TempDir()
	s := &shelf{}
	s.fields.Title = "Fiction"
	if err := initEntity(s, []Option{WithPath(filepath.Join(dir, "shelf.json"))}); err != nil {
		t.Fatalf("new shelf: %v", err)
	}
	if err := Save(s); err != nil {
		t.Fatalf("save shelf: %v", err)
	}
	l := newLabel(t, "classics", WithParent(s))
	if err := Save(l); err != nil {
		t.Fatalf("save label: %v", err)
	}
	wantPath := filepath.Join(dir, "labels", l.ID(), "label.json")
	if l.Path() != wantPath {
		t.Fatalf("expected label at %q, got %q", wantPath, l.Path())
	}

	loaded, err := LoadAny(l.Path())
	if err != nil {
		t.Fatalf("load any: %v", err)
	}
	got, ok := loaded.(*label)
	if !ok {
		t.Fatalf("expected *label, got %T", loaded)
	}
	if got.fields.Text != "classics" || got.ID() != l.ID() {
		t.Fatalf("unexpected label %+v", got.fields)
	}
	parent, ok := got.Parent().(*shelf)
	if !ok {
		t.Fatalf("expected synthesized *shelf parent, got %T", got.Parent())
	}
	if parent.fields.Title != "Fiction" || parent.Path() != s.Path() {
		t.Fatalf("unexpected parent %+v at %q", parent.fields, parent.Path())
	}

	children, err := ChildrenOf(parent, "labels")
	if err != nil {
		t.Fatalf("children: %v", err)
	}
	if len(children) != 1 || children[0].(*label).ID() != l.ID() {
		t.Fatalf("expected the saved label, got %v", children)
	}
	if children[0].(*label).Parent() != parent {
		t.Fatalf("expected children attached to the given parent")
	}
}

func TestRegisteredTypeParentChecks(t *testing.T) {
	s := &shelf{}
	if err := initEntity(s, nil); err != nil {
		t.Fatalf("new shelf: %v", err)
	}
	l := &label{}
	l.fields.Text = "x"
	if err := initEntity(l, []Option{WithParent(mustTask(t))}); !errors.Is(err, ErrInvalidParentType) {
		t.Fatalf("expected ErrInvalidParentType for label under task, got %v", err)
	}
	if err := initEntity(mustTask(t), []Option{WithParent(s)}); !errors.Is(err, ErrInvalidParentType) {
		t.Fatalf("expected ErrInvalidParentType for task under shelf, got %v", err)
	}
	if _, err := ChildrenOf(s, RelationshipEvals); !errors.Is(err, ErrUnknownRelationship) {
		t.Fatalf("expected ErrUnknownRelationship, got %v", err)
	}
}
