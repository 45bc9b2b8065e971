package csv

import (
	"context"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/wasmglue/wasmglue/foreign"
	"github.com/wasmglue/wasmglue/wire"
)

// Record is one parsed CSV record. Null values, produced when a field matches
// the format's null string, are reported through the ok results of Get and
// GetByName and read as "" elsewhere.
type Record struct{ obj *foreign.Object }

func wrapRecord(obj *foreign.Object) *Record { return &Record{obj: obj} }

func (r *Record) ForeignHandle() wire.Handle { return r.obj.ForeignHandle() }

// Get returns the value at column i; ok is false for a null value. An index
// past the end is a foreign.ErrOutOfRange failure.
func (r *Record) Get(ctx context.Context, i int) (s string, ok bool, err error) {
	v, err := r.obj.Call(ctx, recordGet, i)
	if err != nil {
		return "", false, err
	}
	return foreign.AsOptionalString(v)
}

// GetByName returns the value of the named column. Unknown names and records
// without a header fail with foreign.ErrInvalidArgument.
func (r *Record) GetByName(ctx context.Context, name string) (s string, ok bool, err error) {
	v, err := r.obj.Call(ctx, recordGetByName, name)
	if err != nil {
		return "", false, err
	}
	return foreign.AsOptionalString(v)
}

func orEmpty(v wire.Value) (string, error) {
	s, _, err := foreign.AsOptionalString(v)
	return s, err
}

func (r *Record) Values(ctx context.Context) ([]string, error) {
	v, err := r.obj.Call(ctx, recordValues)
	if err != nil {
		return nil, err
	}
	list, _ := v.AsList()
	out := make([]string, len(list))
	for i, e := range list {
		if out[i], err = orEmpty(e); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *Record) Size(ctx context.Context) (int32, error) {
	return foreign.Decode(foreign.AsInt32)(r.obj.Call(ctx, recordSize))
}

// ToMap maps header names to values in header order. Columns missing from a
// short record are left out.
func (r *Record) ToMap(ctx context.Context) (*orderedmap.OrderedMap[string, string], error) {
	v, err := r.obj.Call(ctx, recordToMap)
	if err != nil {
		return nil, err
	}
	pairs, _ := v.AsMap()
	m := orderedmap.New[string, string](len(pairs))
	for _, p := range pairs {
		s, err := orEmpty(p.Value)
		if err != nil {
			return nil, err
		}
		m.Set(p.Key, s)
	}
	return m, nil
}

// Comment returns the comment lines preceding the record; ok is false when
// there were none.
func (r *Record) Comment(ctx context.Context) (s string, ok bool, err error) {
	v, err := r.obj.Call(ctx, recordComment)
	if err != nil {
		return "", false, err
	}
	return foreign.AsOptionalString(v)
}

func (r *Record) HasComment(ctx context.Context) (bool, error) {
	return foreign.Decode(foreign.AsBool)(r.obj.Call(ctx, recordHasComment))
}

func (r *Record) IsMapped(ctx context.Context, name string) (bool, error) {
	return foreign.Decode(foreign.AsBool)(r.obj.Call(ctx, recordIsMapped, name))
}

// IsSet reports whether name is mapped and the record has a value for it.
func (r *Record) IsSet(ctx context.Context, name string) (bool, error) {
	return foreign.Decode(foreign.AsBool)(r.obj.Call(ctx, recordIsSet, name))
}

func (r *Record) IsConsistent(ctx context.Context) (bool, error) {
	return foreign.Decode(foreign.AsBool)(r.obj.Call(ctx, recordIsConsistent))
}

// RecordNumber is the 1-based position of the record in its source.
func (r *Record) RecordNumber(ctx context.Context) (int64, error) {
	return foreign.Decode(foreign.AsInt64)(r.obj.Call(ctx, recordNumber))
}

func (r *Record) CharacterPosition(ctx context.Context) (int64, error) {
	return foreign.Decode(foreign.AsInt64)(r.obj.Call(ctx, recordCharacterPosition))
}

func (r *Record) Describe(ctx context.Context) (string, error) {
	return foreign.Decode(foreign.AsString)(r.obj.Call(ctx, recordToString))
}
