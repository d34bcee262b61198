package datamodel

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const typeKey = "type"

var baseKeys = map[string]struct{}{
	"v":          {},
	"id":         {},
	"created_at": {},
	"created_by": {},
}

type entityPtr[T any] interface {
	*T
	Entity
}

// Load reads an entity of type T from path, attaches the parent found on
// disk (if the file sits in a parent's child directory) and validates it.
func Load[T any, PT entityPtr[T]](path string) (PT, error) {
	e := PT(new(T))
	if err := readEntity(path, e, nil); err != nil {
		return nil, err
	}
	return e, nil
}

// LoadChild reads an entity of type T from path and attaches parent
// instead of resolving one from disk.
func LoadChild[T any, PT entityPtr[T]](path string, parent Parent) (PT, error) {
	e := PT(new(T))
	if err := readEntity(path, e, parent); err != nil {
		return nil, err
	}
	return e, nil
}

// LoadAny reads an entity of any registered type from path.
func LoadAny(path string) (Entity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read entity: %w", err)
	}
	name, err := peekType(data, path)
	if err != nil {
		return nil, err
	}
	e, ok := newEntity(name)
	if !ok {
		return nil, parseError(path, fmt.Errorf("unknown type %q", name))
	}
	if err := finishRead(data, path, e, nil); err != nil {
		return nil, err
	}
	return e, nil
}

// Save validates e, including against its ancestors, and writes it to its
// path. An entity without a path but with a saved parent is placed in the
// parent's child directory; the derived path is only recorded once the file
// is written, so a failed save leaves e unchanged.
func Save(e Entity) error {
	b := e.base()
	path := b.path
	if path == "" {
		derived, err := defaultPath(e)
		if err != nil {
			return err
		}
		path = derived
	}
	if err := e.Validate(); err != nil {
		return err
	}
	data, err := Encode(e)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(path, data); err != nil {
		return fmt.Errorf("save %s: %w", e.TypeName(), err)
	}
	b.path = path
	return nil
}

// Encode returns the serialized form of e: every field except the path,
// plus the type discriminator, as indented JSON with sorted keys.
func Encode(e Entity) ([]byte, error) {
	fields := map[string]json.RawMessage{}
	if err := mergeJSON(fields, e.base().toRecord()); err != nil {
		return nil, fmt.Errorf("encode %s: %w", e.TypeName(), err)
	}
	if err := mergeJSON(fields, e.record()); err != nil {
		return nil, fmt.Errorf("encode %s: %w", e.TypeName(), err)
	}
	typeValue, err := json.Marshal(e.TypeName())
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", e.TypeName(), err)
	}
	fields[typeKey] = typeValue
	data, err := json.MarshalIndent(fields, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", e.TypeName(), err)
	}
	return append(data, '\n'), nil
}

func mergeJSON(dst map[string]json.RawMessage, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	for key, raw := range fields {
		dst[key] = raw
	}
	return nil
}

func readEntity(path string, e Entity, parent Parent) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", e.TypeName(), err)
	}
	return finishRead(data, path, e, parent)
}

func finishRead(data []byte, path string, e Entity, parent Parent) error {
	if err := decode(data, path, e); err != nil {
		return err
	}
	b := e.base()
	b.path = path
	if parent != nil {
		if err := checkParentType(e, parent); err != nil {
			return err
		}
		b.parent = parent
	} else if err := resolveParent(e); err != nil {
		return err
	}
	if err := e.Validate(); err != nil {
		return fmt.Errorf("validate %s: %w", path, err)
	}
	return nil
}

func peekType(data []byte, path string) (TypeName, error) {
	var header struct {
		Type *string `json:"type"`
	}
	if err := json.Unmarshal(data, &header); err != nil {
		return "", parseError(path, err)
	}
	if header.Type == nil || *header.Type == "" {
		return "", parseError(path, errors.New("missing type discriminator"))
	}
	return TypeName(*header.Type), nil
}

// decode parses data into e. The version gate runs before strict field
// decoding so files from newer builds report their version.
func decode(data []byte, path string, e Entity) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return parseError(path, err)
	}
	rawType, ok := fields[typeKey]
	if !ok {
		return parseError(path, errors.New("missing type discriminator"))
	}
	var name TypeName
	if err := json.Unmarshal(rawType, &name); err != nil {
		return parseError(path, fmt.Errorf("type: %w", err))
	}
	if name != e.TypeName() {
		return parseError(path, fmt.Errorf("type %q does not match expected %q", name, e.TypeName()))
	}
	delete(fields, typeKey)

	version := defaultSchemaVersion
	if raw, ok := fields["v"]; ok {
		if err := json.Unmarshal(raw, &version); err != nil {
			return parseError(path, fmt.Errorf("v: %w", err))
		}
	}
	if version < 1 {
		return parseError(path, fmt.Errorf("invalid schema version %d", version))
	}
	if version > e.MaxSchemaVersion() {
		return fmt.Errorf("%w: %s %s has version %d, max supported is %d; upgrade evalstore to read it",
			ErrSchemaTooNew, e.TypeName(), path, version, e.MaxSchemaVersion())
	}

	baseFields := map[string]json.RawMessage{}
	recordFields := map[string]json.RawMessage{}
	for key, raw := range fields {
		if _, ok := baseKeys[key]; ok {
			baseFields[key] = raw
		} else {
			recordFields[key] = raw
		}
	}
	var header baseRecord
	if err := strictDecode(baseFields, &header); err != nil {
		return parseError(path, err)
	}
	if header.ID == "" {
		return parseError(path, errors.New("id is required"))
	}
	if err := strictDecode(recordFields, e.record()); err != nil {
		return parseError(path, err)
	}

	b := e.base()
	b.v = version
	b.id = header.ID
	b.createdAt = header.CreatedAt
	b.createdBy = header.CreatedBy
	if d, ok := e.(defaulter); ok {
		d.applyDefaults()
	}
	return nil
}

func strictDecode(fields map[string]json.RawMessage, target any) error {
	data, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return errors.New("unexpected trailing data")
	}
	return nil
}

// defaultPath derives <parent dir>/<relationship>/<id>/<type>.json.
func defaultPath(e Entity) (string, error) {
	b := e.base()
	if b.parent == nil {
		return "", fmt.Errorf("save %s %s: %w", e.TypeName(), b.id, ErrPathNotSet)
	}
	if b.parent.base().path == "" {
		return "", fmt.Errorf("save %s %s: %w: parent %s has no path", e.TypeName(), b.id, ErrPathNotSet, b.parent.TypeName())
	}
	relationship, ok := relationshipFor(b.parent, e.TypeName())
	if !ok {
		return "", checkParentType(e, b.parent)
	}
	return filepath.Join(ChildDir(b.parent, relationship), b.id, e.TypeName().Filename()), nil
}

// writeFileAtomic writes data to path through a temporary file and rename.
func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmpPath := path + ".tmp"
	file, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	_, writeErr := file.Write(data)
	syncErr := file.Sync()
	closeErr := file.Close()
	for _, err := range []error{writeErr, syncErr, closeErr} {
		if err != nil {
			_ = os.Remove(tmpPath)
			return err
		}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}
