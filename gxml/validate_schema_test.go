package gxml_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arturoeanton/gxml/gxml"
)

func TestValidateSchemaRejectsNonStructRoot(t *testing.T) {
	t.Parallel()

	err := gxml.ValidateSchema(reflect.TypeOf("not a struct"))
	require.Error(t, err)
	kind, ok := gxml.Kind(err)
	require.True(t, ok)
	assert.Equal(t, gxml.InvalidRootSchema, kind)
}

type twoIterators struct {
	As gxml.Iterator[Book]
	Bs gxml.Iterator[Book]
}

func TestValidateSchemaRejectsMultipleIteratorFields(t *testing.T) {
	t.Parallel()

	err := gxml.ValidateSchema(reflect.TypeOf(twoIterators{}))
	require.Error(t, err)
	kind, ok := gxml.Kind(err)
	require.True(t, ok)
	assert.Equal(t, gxml.MultipleIteratorFields, kind)
}

type lazyLeaf struct {
	ID    string `gxml:"attr"`
	Items gxml.Iterator[Book]
}

type eagerWrapper struct {
	Leaf lazyLeaf
}

func TestValidateSchemaRejectsLazyDescendantUnderEagerRecord(t *testing.T) {
	t.Parallel()

	err := gxml.ValidateSchema(reflect.TypeOf(eagerWrapper{}))
	require.Error(t, err)
	kind, ok := gxml.Kind(err)
	require.True(t, ok)
	assert.Equal(t, gxml.LazyDescendantUnderEagerRecord, kind)
}

type badOverride struct {
	Name string `gxml:"attr"`
}

func (badOverride) XMLNameOverrides() map[string]string {
	return map[string]string{"NoSuchField": "whatever"}
}

func TestValidateSchemaRejectsUnknownNameOverrideTarget(t *testing.T) {
	t.Parallel()

	err := gxml.ValidateSchema(reflect.TypeOf(badOverride{}))
	require.Error(t, err)
	kind, ok := gxml.Kind(err)
	require.True(t, ok)
	assert.Equal(t, gxml.UnknownNameOverrideTarget, kind)
}

// treeNode is self-referential via an optional pointer field, exercising
// checkNoLazyDescendant's cycle guard on tree-shaped eager schemas.
type treeNode struct {
	Val   string `gxml:"attr"`
	Child *treeNode
}

func TestValidateSchemaAcceptsSelfReferentialEagerRecord(t *testing.T) {
	t.Parallel()

	err := gxml.ValidateSchema(reflect.TypeOf(treeNode{}))
	assert.NoError(t, err)
}

func TestValidateSchemaAcceptsLazyRoot(t *testing.T) {
	t.Parallel()

	err := gxml.ValidateSchema(reflect.TypeOf(Catalog{}))
	assert.NoError(t, err)
}

func TestValidateSchemaUnwrapsPointerRoot(t *testing.T) {
	t.Parallel()

	err := gxml.ValidateSchema(reflect.TypeOf(&Book{}))
	assert.NoError(t, err)
}
