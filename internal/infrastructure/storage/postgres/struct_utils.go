package postgres

import (
	"reflect"
	"sync"
)

// ExtractDBColumns extracts all column names from struct "db" tags,
// descending into embedded structs (entity.Record and friends).
// Repositories call it once at construction time.
//
// Usage:
//
//	columns := ExtractDBColumns[booking.Detail]()
//	// Returns: ["id", "created_at", "updated_at", "booking_id", ...]
func ExtractDBColumns[T any]() []string {
	var zero T
	meta := getOrCreateTypeMetadata(reflect.TypeOf(zero))
	return meta.columns()
}

// fieldInfo contains pre-computed metadata about a struct field.
type fieldInfo struct {
	index int
	dbTag string
}

// typeMetadata contains cached reflection metadata for a type.
type typeMetadata struct {
	typ             reflect.Type
	fields          []fieldInfo
	embeddedIndices []int
}

func (m *typeMetadata) columns() []string {
	var cols []string
	for _, idx := range m.embeddedIndices {
		cols = append(cols, getOrCreateTypeMetadata(m.typ.Field(idx).Type).columns()...)
	}
	for _, fi := range m.fields {
		cols = append(cols, fi.dbTag)
	}
	return cols
}

var typeCache sync.Map // map[reflect.Type]*typeMetadata

// getOrCreateTypeMetadata returns cached metadata or computes it once per type.
func getOrCreateTypeMetadata(t reflect.Type) *typeMetadata {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	if cached, ok := typeCache.Load(t); ok {
		return cached.(*typeMetadata)
	}

	meta := &typeMetadata{typ: t}
	if t.Kind() != reflect.Struct {
		typeCache.Store(t, meta)
		return meta
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Anonymous {
			meta.embeddedIndices = append(meta.embeddedIndices, i)
			continue
		}

		tag := field.Tag.Get("db")
		if tag == "" || tag == "-" {
			continue
		}
		meta.fields = append(meta.fields, fieldInfo{index: i, dbTag: tag})
	}

	typeCache.Store(t, meta)
	return meta
}

// StructToMap converts a struct to a column map using "db" tags.
// Embedded structs are flattened.
func StructToMap(v any) map[string]any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	res := make(map[string]any)
	fillMap(rv, res)
	return res
}

// StructToMapExcept is StructToMap without the given columns. Updates use
// it to leave id and created_at untouched.
func StructToMapExcept(v any, exclude ...string) map[string]any {
	res := StructToMap(v)
	for _, col := range exclude {
		delete(res, col)
	}
	return res
}

func fillMap(rv reflect.Value, res map[string]any) {
	meta := getOrCreateTypeMetadata(rv.Type())

	for _, embIdx := range meta.embeddedIndices {
		emb := rv.Field(embIdx)
		if emb.Kind() == reflect.Ptr {
			if emb.IsNil() {
				continue
			}
			emb = emb.Elem()
		}
		if emb.Kind() == reflect.Struct {
			fillMap(emb, res)
		}
	}

	for _, fi := range meta.fields {
		res[fi.dbTag] = rv.Field(fi.index).Interface()
	}
}
