package gxml

import "reflect"

// ValidateSchema checks a candidate root schema type against the
// dispatcher's structural rules:
//
//  1. at most one iterator/multi-iterator field per record (enforced
//     while the per-type recordSchema is first built);
//  2. no eager record may have a lazy record anywhere among its
//     transitive nested-record descendants;
//  3. every XML name override on a record names a real field on that
//     record (also enforced while building the recordSchema);
//  4. the root itself must be a struct type.
//
// Decode calls it on every call; the per-type recordSchema it builds
// is cached by getRecordSchema, so a repeat call only re-walks the
// nested-record graph. It returns the first violation found.
func ValidateSchema(t reflect.Type) error {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return newErr(InvalidRootSchema, "schema root must be a struct, got %s", t)
	}
	if _, err := getRecordSchema(t); err != nil {
		return err
	}
	return checkNoLazyDescendant(t, map[reflect.Type]bool{})
}

// checkNoLazyDescendant walks t's nested-record fields looking for a
// lazy record reachable from an eager one. visiting guards against
// infinite recursion on self-referential (tree-shaped) schemas: once a
// type is on the current path, revisiting it cannot discover a new
// violation that the first visit wouldn't already have reported.
func checkNoLazyDescendant(t reflect.Type, visiting map[reflect.Type]bool) error {
	if visiting[t] {
		return nil
	}
	visiting[t] = true
	defer delete(visiting, t)

	sch, err := getRecordSchema(t)
	if err != nil {
		return err
	}
	if sch.isLazy {
		// A lazy record's own fields are already constrained to
		// primitive attributes plus its single iterator, so there is
		// nothing further to walk beneath it.
		return nil
	}
	for _, fs := range sch.fields {
		if fs.kind != kindNestedRecord {
			continue
		}
		childSch, err := getRecordSchema(fs.nestedType)
		if err != nil {
			return err
		}
		if childSch.isLazy {
			return newErr(LazyDescendantUnderEagerRecord,
				"eager record %s has lazy descendant %s via field %q", t, fs.nestedType, fs.goName)
		}
		if err := checkNoLazyDescendant(fs.nestedType, visiting); err != nil {
			return err
		}
	}
	return nil
}
