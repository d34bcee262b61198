// Package datamodel implements the file-backed entity hierarchy
// Task → Eval → EvalConfig → EvalRun.
//
// Every entity is one JSON file carrying a schema version and a type
// discriminator. Parents declare the child types they hold under named
// relationships; children live in per-relationship directories next to
// the parent file and are loaded lazily. Validators run on construction,
// on every mutation and on load, so an entity never holds fields that
// violate its own invariants.
package datamodel

import (
	"time"

	"github.com/google/uuid"
)

// TypeName identifies a concrete entity type in files and registries.
type TypeName string

// Built-in entity types.
const (
	TypeTask       TypeName = "task"
	TypeEval       TypeName = "eval"
	TypeEvalConfig TypeName = "eval_config"
	TypeEvalRun    TypeName = "eval_run"
)

const (
	fileExtension        = ".json"
	defaultSchemaVersion = 1
)

// Filename returns the file name used for entities of this type.
func (t TypeName) Filename() string {
	return string(t) + fileExtension
}

// Entity is implemented by every concrete entity type.
type Entity interface {
	// TypeName returns the fixed discriminator of the concrete type.
	TypeName() TypeName
	// MaxSchemaVersion is the newest schema version this build can read.
	MaxSchemaVersion() int
	// Validate checks own fields and, where a parent is attached, ancestors.
	Validate() error

	base() *Base
	record() any
}

// Base holds the metadata shared by all entities. Embed it in concrete types.
type Base struct {
	v         int
	id        string
	createdAt time.Time
	createdBy string

	path   string
	parent Parent
}

// baseRecord is the serialized form of Base.
type baseRecord struct {
	V         int       `json:"v"`
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	CreatedBy string    `json:"created_by,omitempty"`
}

func (b *Base) base() *Base {
	return b
}

// SchemaVersion returns the schema version the entity was written with.
func (b *Base) SchemaVersion() int {
	return b.v
}

// ID returns the entity id.
func (b *Base) ID() string {
	return b.id
}

// CreatedAt returns the creation timestamp.
func (b *Base) CreatedAt() time.Time {
	return b.createdAt
}

// CreatedBy returns the user recorded at creation.
func (b *Base) CreatedBy() string {
	return b.createdBy
}

// Path returns the file the entity was loaded from or will be saved to.
func (b *Base) Path() string {
	return b.path
}

// SetPath sets the file location used by Save.
func (b *Base) SetPath(path string) {
	b.path = path
}

// Parent returns the in-memory parent, or nil.
func (b *Base) Parent() Parent {
	return b.parent
}

func (b *Base) toRecord() baseRecord {
	return baseRecord{V: b.v, ID: b.id, CreatedAt: b.createdAt, CreatedBy: b.createdBy}
}

// Option configures a newly constructed entity.
type Option func(*options)

type options struct {
	parent    Parent
	path      string
	id        string
	createdBy string
	createdAt time.Time
}

// WithParent attaches a parent at construction time.
func WithParent(parent Parent) Option {
	return func(o *options) { o.parent = parent }
}

// WithPath sets the file location.
func WithPath(path string) Option {
	return func(o *options) { o.path = path }
}

// WithID overrides the generated id.
func WithID(id string) Option {
	return func(o *options) { o.id = id }
}

// WithCreatedBy records the creating user.
func WithCreatedBy(user string) Option {
	return func(o *options) { o.createdBy = user }
}

// WithCreatedAt overrides the creation timestamp.
func WithCreatedAt(at time.Time) Option {
	return func(o *options) { o.createdAt = at }
}

// NewID returns a time-ordered unique id.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// defaulter is implemented by entities with field defaults.
type defaulter interface {
	applyDefaults()
}

// initEntity fills base metadata, attaches the parent and validates.
func initEntity(e Entity, opts []Option) error {
	var o options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	b := e.base()
	b.v = e.MaxSchemaVersion()
	b.id = o.id
	if b.id == "" {
		b.id = NewID()
	}
	b.createdAt = o.createdAt
	if b.createdAt.IsZero() {
		b.createdAt = time.Now().UTC().Truncate(time.Millisecond)
	}
	b.createdBy = o.createdBy
	b.path = o.path
	if o.parent != nil {
		if err := checkParentType(e, o.parent); err != nil {
			return err
		}
		b.parent = o.parent
	}
	if d, ok := e.(defaulter); ok {
		d.applyDefaults()
	}
	return e.Validate()
}
