package gxml

import (
	"encoding"
	"reflect"
	"strconv"
	"strings"
	"sync"
)

// fieldKind classifies one struct field of a schema record, decided
// once when the record's reflect.Type is first seen.
type fieldKind int

const (
	kindPrimitive fieldKind = iota
	kindNestedRecord
	kindIterator
	kindMultiIterator
)

// fieldSchema describes how one Go struct field binds to XML content.
type fieldSchema struct {
	index      int
	goName     string
	xmlName    string
	isAttr     bool
	kind       fieldKind
	optional   bool // field type is a pointer
	hasDefault bool
	defaultVal string
	nestedType reflect.Type // kindNestedRecord only
}

// recordSchema is the cached, reflection-derived shape of one schema
// struct type: which fields are attributes, which are child elements,
// and which single field (if any) owns the element's child stream as
// an iterator.
type recordSchema struct {
	typ                reflect.Type
	fields             []*fieldSchema
	byAttrName         map[string]*fieldSchema
	byChildName        map[string]*fieldSchema
	iteratorField      *fieldSchema
	multiIteratorField *fieldSchema
	isLazy             bool
}

// NameOverrider lets a schema record redirect the XML name used to
// match a Go field, keyed by the Go field name. Matching otherwise
// defaults to the field name itself, byte-exact and case-sensitive.
// ValidateSchema rejects an override whose key names no real field.
type NameOverrider interface {
	XMLNameOverrides() map[string]string
}

type schemaCacheEntry struct {
	schema *recordSchema
	err    error
}

var schemaCache sync.Map // map[reflect.Type]*schemaCacheEntry

func getRecordSchema(t reflect.Type) (*recordSchema, error) {
	if v, ok := schemaCache.Load(t); ok {
		entry := v.(*schemaCacheEntry)
		return entry.schema, entry.err
	}
	sch, err := buildRecordSchema(t)
	actual, _ := schemaCache.LoadOrStore(t, &schemaCacheEntry{schema: sch, err: err})
	entry := actual.(*schemaCacheEntry)
	return entry.schema, entry.err
}

func isTextUnmarshaler(t reflect.Type) bool {
	_, ok := reflect.New(t).Interface().(encoding.TextUnmarshaler)
	return ok
}

func buildRecordSchema(t reflect.Type) (*recordSchema, error) {
	if t.Kind() != reflect.Struct {
		return nil, newErr(InvalidRootSchema, "schema type must be a struct, got %s", t)
	}

	overrides := map[string]string{}
	if no, ok := reflect.New(t).Interface().(NameOverrider); ok {
		overrides = no.XMLNameOverrides()
	}
	fieldNames := make(map[string]bool, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		fieldNames[t.Field(i).Name] = true
	}
	for name := range overrides {
		if !fieldNames[name] {
			return nil, newErr(UnknownNameOverrideTarget, "name override references unknown field %q on %s", name, t)
		}
	}

	sch := &recordSchema{
		typ:         t,
		byAttrName:  map[string]*fieldSchema{},
		byChildName: map[string]*fieldSchema{},
	}

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.PkgPath != "" {
			continue // unexported
		}
		tag := sf.Tag.Get("gxml")
		if tag == "-" {
			continue
		}
		if sf.Anonymous && sf.Type == reflect.TypeOf(VariantBase{}) {
			continue // Variant marker only; binds no XML content
		}

		xmlName := sf.Name
		if ov, ok := overrides[sf.Name]; ok {
			xmlName = ov
		}

		fs := &fieldSchema{index: i, goName: sf.Name, xmlName: xmlName}
		for _, part := range strings.Split(tag, ",") {
			switch {
			case part == "attr":
				fs.isAttr = true
			case strings.HasPrefix(part, "default="):
				fs.hasDefault = true
				fs.defaultVal = strings.TrimPrefix(part, "default=")
			}
		}

		fieldPtr := reflect.New(sf.Type)
		if _, ok := fieldPtr.Interface().(iteratorBinder); ok {
			if sch.iteratorField != nil || sch.multiIteratorField != nil {
				return nil, newErr(MultipleIteratorFields, "record %s declares more than one iterator/multi-iterator field", t)
			}
			fs.kind = kindIterator
			sch.iteratorField = fs
			sch.fields = append(sch.fields, fs)
			continue
		}
		if _, ok := fieldPtr.Interface().(multiIteratorBinder); ok {
			if sch.iteratorField != nil || sch.multiIteratorField != nil {
				return nil, newErr(MultipleIteratorFields, "record %s declares more than one iterator/multi-iterator field", t)
			}
			fs.kind = kindMultiIterator
			sch.multiIteratorField = fs
			sch.fields = append(sch.fields, fs)
			continue
		}

		base := sf.Type
		if base.Kind() == reflect.Pointer {
			fs.optional = true
			base = base.Elem()
		}
		if base.Kind() == reflect.Struct && !isTextUnmarshaler(base) {
			fs.kind = kindNestedRecord
			fs.nestedType = base
		} else {
			fs.kind = kindPrimitive
		}

		sch.fields = append(sch.fields, fs)
		if fs.isAttr {
			sch.byAttrName[xmlName] = fs
		} else {
			sch.byChildName[xmlName] = fs
		}
	}

	sch.isLazy = sch.iteratorField != nil || sch.multiIteratorField != nil
	if sch.isLazy {
		for _, fs := range sch.fields {
			if fs.kind == kindIterator || fs.kind == kindMultiIterator {
				continue
			}
			if fs.kind != kindPrimitive || !fs.isAttr {
				return nil, newErr(LazyStructCanOnlyHavePrimitiveAttributes,
					"lazy record %s has non-attribute field %q; its iterator owns the child stream", t, fs.goName)
			}
		}
	}

	return sch, nil
}

// decodeRecord binds startEv's attributes and (for an eager record)
// its full subtree into rv, which must be an addressable struct value
// of a schema type. For a lazy record it returns the non-nil childScope
// of the installed iterator field, leaving the caller's parser
// positioned inside the still-open element, owned from here on by that
// iterator; an eager record always fully consumes its own subtree and
// returns a nil scope.
func decodeRecord(p *Parser, rv reflect.Value, startEv Event) (scope childScope, err error) {
	sch, err := getRecordSchema(rv.Type())
	if err != nil {
		return nil, err
	}

	seen := make(map[int]bool, len(sch.fields))
	for _, a := range startEv.Attrs {
		fs, ok := sch.byAttrName[string(a.Name)]
		if !ok {
			continue
		}
		if err := setFieldValue(rv.Field(fs.index), a.Value); err != nil {
			return nil, err
		}
		seen[fs.index] = true
	}

	if sch.iteratorField != nil {
		fv := rv.Field(sch.iteratorField.index)
		fv.Addr().Interface().(iteratorBinder).bindIterator(p, startEv.Name, sch.iteratorField.xmlName)
		if err := applyDefaults(rv, sch, seen); err != nil {
			return nil, err
		}
		return fv.Addr().Interface().(childScope), nil
	}
	if sch.multiIteratorField != nil {
		fv := rv.Field(sch.multiIteratorField.index)
		fv.Addr().Interface().(multiIteratorBinder).bindMultiIterator(p, startEv.Name)
		if err := applyDefaults(rv, sch, seen); err != nil {
			return nil, err
		}
		return fv.Addr().Interface().(childScope), nil
	}

	for {
		ev, err := p.Next()
		if err != nil {
			return nil, err
		}
		switch ev.Kind {
		case EndElement:
			return nil, applyDefaults(rv, sch, seen)
		case StartElement:
			fs, ok := sch.byChildName[string(ev.Name)]
			if !ok {
				if err := skipSubtree(p); err != nil {
					return nil, err
				}
				continue
			}
			seen[fs.index] = true
			if fs.kind == kindNestedRecord {
				childRV := rv.Field(fs.index)
				if fs.optional {
					childRV.Set(reflect.New(fs.nestedType))
					childRV = childRV.Elem()
				}
				if _, err := decodeRecord(p, childRV, ev); err != nil {
					return nil, err
				}
			} else {
				raw, err := readElementText(p)
				if err != nil {
					return nil, err
				}
				if err := setFieldValue(rv.Field(fs.index), raw); err != nil {
					return nil, err
				}
			}
		default:
			// Comments, PIs, and text at this level carry no
			// field data for a struct schema.
		}
	}
}

func applyDefaults(rv reflect.Value, sch *recordSchema, seen map[int]bool) error {
	for _, fs := range sch.fields {
		if seen[fs.index] || fs.kind == kindIterator || fs.kind == kindMultiIterator {
			continue
		}
		fv := rv.Field(fs.index)
		if fs.optional {
			continue // stays nil
		}
		if fs.hasDefault {
			if fs.kind == kindNestedRecord {
				continue // no default semantics for nested records
			}
			if err := setFieldValue(fv, []byte(fs.defaultVal)); err != nil {
				return err
			}
			continue
		}
		return newErr(MissingRequiredField, "missing required field %q (xml name %q) on %s", fs.goName, fs.xmlName, sch.typ)
	}
	return nil
}

// readElementText consumes a primitive child element's content,
// concatenating text/CData runs (skipping any unexpected nested
// elements) until its closing tag, returning the raw content. The
// common single-text-run case returns its slice directly rather than
// copying, preserving borrowed-slice semantics where the source allows it.
func readElementText(p *Parser) ([]byte, error) {
	var parts [][]byte
	for {
		ev, err := p.Next()
		if err != nil {
			return nil, err
		}
		switch ev.Kind {
		case EndElement:
			switch len(parts) {
			case 0:
				return nil, nil
			case 1:
				return parts[0], nil
			default:
				var buf []byte
				for _, part := range parts {
					buf = append(buf, part...)
				}
				return buf, nil
			}
		case Text, CData, Whitespace:
			parts = append(parts, ev.Data)
		case StartElement:
			if err := skipSubtree(p); err != nil {
				return nil, err
			}
		default:
		}
	}
}

// setFieldValue converts raw into rv's type and assigns it, allocating
// a pointee first when rv is an optional (pointer) field.
func setFieldValue(rv reflect.Value, raw []byte) error {
	if rv.Kind() == reflect.Pointer {
		pv := reflect.New(rv.Type().Elem())
		if err := setScalar(pv.Elem(), raw); err != nil {
			return err
		}
		rv.Set(pv)
		return nil
	}
	return setScalar(rv, raw)
}

func setScalar(rv reflect.Value, raw []byte) error {
	if rv.CanAddr() {
		if tu, ok := rv.Addr().Interface().(encoding.TextUnmarshaler); ok {
			return tu.UnmarshalText(raw)
		}
	}
	switch rv.Kind() {
	case reflect.String:
		rv.SetString(string(raw))
		return nil
	case reflect.Bool:
		switch string(raw) {
		case "true":
			rv.SetBool(true)
		case "false":
			rv.SetBool(false)
		default:
			return newErr(InvalidBoolean, "invalid boolean %q", string(raw))
		}
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(string(raw), 10, rv.Type().Bits())
		if err != nil {
			return newErr(InvalidInteger, "invalid integer %q", string(raw))
		}
		rv.SetInt(n)
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(string(raw), 10, rv.Type().Bits())
		if err != nil {
			return newErr(InvalidInteger, "invalid integer %q", string(raw))
		}
		rv.SetUint(n)
		return nil
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(string(raw), rv.Type().Bits())
		if err != nil {
			return newErr(InvalidFloat, "invalid float %q", string(raw))
		}
		rv.SetFloat(f)
		return nil
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			rv.SetBytes(raw)
			return nil
		}
	}
	return newErr(InvalidMarkup, "unsupported schema field type %s", rv.Type())
}

// Decoder drives schema-directed decoding over a single Parser.
type Decoder struct {
	p *Parser
}

// NewDecoder wraps src in a Parser configured by opts and prepares it
// for schema-directed decoding.
func NewDecoder(src Source, opts ...Option) *Decoder {
	return &Decoder{p: NewParser(src, opts...)}
}

// Decode validates root's type, advances past the prolog, and binds
// the document's root element into *root. For an eager root type the
// whole document is consumed by the time Decode returns; for a lazy
// root type, the returned struct's iterator fields remain live and the
// underlying Parser stays owned by them until drained.
func (d *Decoder) Decode(root any) error {
	rv := reflect.ValueOf(root)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return newErr(InvalidRootSchema, "Decode requires a non-nil pointer to a struct")
	}
	elem := rv.Elem()
	if err := ValidateSchema(elem.Type()); err != nil {
		return err
	}

	ev, err := d.p.Next()
	if err != nil {
		return err
	}
	if ev.Kind != DocumentStart {
		return newErr(NoRootElement, "expected document start")
	}

	for {
		ev, err = d.p.Next()
		if err != nil {
			return err
		}
		switch ev.Kind {
		case StartElement:
			_, err := decodeRecord(d.p, elem, ev)
			return err
		case DocumentEnd:
			return newErr(NoRootElement, "document has no root element")
		default:
			// Doctype, XMLDeclaration, Comment, ProcessingInstruction,
			// and Whitespace are all valid prolog content.
		}
	}
}

// Decode is the generic convenience form of (*Decoder).Decode: it
// allocates a zero T, decodes the document's root element into it, and
// returns a pointer to the result.
func Decode[T any](src Source, opts ...Option) (*T, error) {
	var out T
	d := NewDecoder(src, opts...)
	if err := d.Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}
