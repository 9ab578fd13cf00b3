package gxml_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arturoeanton/gxml/gxml"
)

type Book struct {
	ID    string `gxml:"attr"`
	Title string
	Price float64
	Notes *string
}

func TestDecodeEagerRecord(t *testing.T) {
	t.Parallel()

	src := `<Books ID="b1"><Title>Dune</Title><Price>9.99</Price></Books>`
	got, err := gxml.Decode[Book](gxml.NewSliceSource([]byte(src)))
	require.NoError(t, err)

	assert.Equal(t, "b1", got.ID)
	assert.Equal(t, "Dune", got.Title)
	assert.Equal(t, 9.99, got.Price)
	assert.Nil(t, got.Notes)
}

func TestDecodeOptionalFieldPresent(t *testing.T) {
	t.Parallel()

	src := `<book ID="b1"><Title>Dune</Title><Price>9.99</Price><Notes>great read</Notes></book>`
	got, err := gxml.Decode[Book](gxml.NewSliceSource([]byte(src)))
	require.NoError(t, err)
	require.NotNil(t, got.Notes)
	assert.Equal(t, "great read", *got.Notes)
}

type Defaulted struct {
	Count int `gxml:"default=0"`
}

func TestDecodeMissingFieldUsesDefault(t *testing.T) {
	t.Parallel()

	got, err := gxml.Decode[Defaulted](gxml.NewSliceSource([]byte(`<Defaulted/>`)))
	require.NoError(t, err)
	assert.Equal(t, 0, got.Count)
}

type Required struct {
	Name string
}

func TestDecodeMissingRequiredField(t *testing.T) {
	t.Parallel()

	_, err := gxml.Decode[Required](gxml.NewSliceSource([]byte(`<Required/>`)))
	require.Error(t, err)
	kind, ok := gxml.Kind(err)
	require.True(t, ok)
	assert.Equal(t, gxml.MissingRequiredField, kind)
}

type Catalog struct {
	Name  string `gxml:"attr"`
	Books gxml.Iterator[Book]
}

func TestDecodeLazyRootIteratesChildren(t *testing.T) {
	t.Parallel()

	src := `<catalog Name="sf">
		<Books ID="b1"><Title>Dune</Title><Price>9.99</Price></Books>
		<Books ID="b2"><Title>Foundation</Title><Price>7.5</Price></Books>
	</catalog>`

	got, err := gxml.Decode[Catalog](gxml.NewSliceSource([]byte(src)))
	require.NoError(t, err)
	assert.Equal(t, "sf", got.Name)

	b1, err := got.Books.Next()
	require.NoError(t, err)
	require.NotNil(t, b1)
	assert.Equal(t, "b1", b1.ID)
	assert.Equal(t, "Dune", b1.Title)

	b2, err := got.Books.Next()
	require.NoError(t, err)
	require.NotNil(t, b2)
	assert.Equal(t, "b2", b2.ID)

	b3, err := got.Books.Next()
	require.NoError(t, err)
	assert.Nil(t, b3)
}

func TestDecodeLazyIteratorSkipsUnrecognizedSiblings(t *testing.T) {
	t.Parallel()

	src := `<catalog Name="sf">
		<note>ignore me</note>
		<Books ID="b1"><Title>Dune</Title><Price>9.99</Price></Books>
	</catalog>`
	got, err := gxml.Decode[Catalog](gxml.NewSliceSource([]byte(src)))
	require.NoError(t, err)

	b1, err := got.Books.Next()
	require.NoError(t, err)
	require.NotNil(t, b1)
	assert.Equal(t, "b1", b1.ID)
}

type Shelf struct {
	Label string `gxml:"attr"`
	Books gxml.Iterator[Book]
}

type Library struct {
	Name    string `gxml:"attr"`
	Shelves gxml.Iterator[Shelf]
}

func TestDecodeLazyWithinLazyAbandonedInnerIterator(t *testing.T) {
	t.Parallel()

	src := `<library Name="central">
		<Shelves Label="a">
			<Books ID="1"><Title>One</Title><Price>1</Price></Books>
			<Books ID="2"><Title>Two</Title><Price>2</Price></Books>
		</Shelves>
		<Shelves Label="b">
			<Books ID="3"><Title>Three</Title><Price>3</Price></Books>
		</Shelves>
	</library>`

	got, err := gxml.Decode[Library](gxml.NewSliceSource([]byte(src)))
	require.NoError(t, err)

	s1, err := got.Shelves.Next()
	require.NoError(t, err)
	require.NotNil(t, s1)
	assert.Equal(t, "a", s1.Label)
	// Deliberately do not drain s1.Books before moving to the next shelf.

	s2, err := got.Shelves.Next()
	require.NoError(t, err)
	require.NotNil(t, s2)
	assert.Equal(t, "b", s2.Label)

	b, err := s2.Books.Next()
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.Equal(t, "3", b.ID)

	s3, err := got.Shelves.Next()
	require.NoError(t, err)
	assert.Nil(t, s3)
}

func TestDecodeLazyWithinLazyFullyDrainedInnerIterator(t *testing.T) {
	t.Parallel()

	src := `<library Name="central">
		<Shelves Label="a">
			<Books ID="1"><Title>One</Title><Price>1</Price></Books>
			<Books ID="2"><Title>Two</Title><Price>2</Price></Books>
		</Shelves>
		<Shelves Label="b">
			<Books ID="3"><Title>Three</Title><Price>3</Price></Books>
		</Shelves>
	</library>`

	got, err := gxml.Decode[Library](gxml.NewSliceSource([]byte(src)))
	require.NoError(t, err)

	s1, err := got.Shelves.Next()
	require.NoError(t, err)
	require.NotNil(t, s1)
	assert.Equal(t, "a", s1.Label)

	var ids []string
	for {
		b, err := s1.Books.Next()
		require.NoError(t, err)
		if b == nil {
			break
		}
		ids = append(ids, b.ID)
	}
	assert.Equal(t, []string{"1", "2"}, ids)

	s2, err := got.Shelves.Next()
	require.NoError(t, err)
	require.NotNil(t, s2)
	assert.Equal(t, "b", s2.Label)

	b, err := s2.Books.Next()
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.Equal(t, "3", b.ID)

	s3, err := got.Shelves.Next()
	require.NoError(t, err)
	assert.Nil(t, s3)
}

type Shape interface{ gxml.Variant }

type Circle struct {
	gxml.VariantBase
	Radius float64 `gxml:"attr"`
}

type Square struct {
	gxml.VariantBase
	Side float64 `gxml:"attr"`
}

type Drawing struct {
	Shapes gxml.MultiIterator[Shape]
}

func init() {
	gxml.RegisterVariant[Shape, Circle]("circle")
	gxml.RegisterVariant[Shape, Square]("square")
}

func TestDecodeMultiIteratorDispatchesByVariant(t *testing.T) {
	t.Parallel()

	src := `<Drawing><circle Radius="2"/><square Side="3"/></Drawing>`
	got, err := gxml.Decode[Drawing](gxml.NewSliceSource([]byte(src)))
	require.NoError(t, err)

	v1, ok, err := got.Shapes.Next()
	require.NoError(t, err)
	require.True(t, ok)
	c, isCircle := v1.(Circle)
	require.True(t, isCircle)
	assert.Equal(t, 2.0, c.Radius)

	v2, ok, err := got.Shapes.Next()
	require.NoError(t, err)
	require.True(t, ok)
	sq, isSquare := v2.(Square)
	require.True(t, isSquare)
	assert.Equal(t, 3.0, sq.Side)

	_, ok, err = got.Shapes.Next()
	require.NoError(t, err)
	assert.False(t, ok)
}

type Overridden struct {
	GoName string `gxml:"attr"`
}

func (Overridden) XMLNameOverrides() map[string]string {
	return map[string]string{"GoName": "xml-name"}
}

func TestDecodeNameOverride(t *testing.T) {
	t.Parallel()

	got, err := gxml.Decode[Overridden](gxml.NewSliceSource([]byte(`<Overridden xml-name="hi"/>`)))
	require.NoError(t, err)
	assert.Equal(t, "hi", got.GoName)
}

type NestedParent struct {
	Child NestedChild
}

type NestedChild struct {
	Value string `gxml:"attr"`
}

func TestDecodeNestedEagerRecord(t *testing.T) {
	t.Parallel()

	src := `<NestedParent><Child Value="x"/></NestedParent>`
	got, err := gxml.Decode[NestedParent](gxml.NewSliceSource([]byte(src)))
	require.NoError(t, err)
	assert.Equal(t, "x", got.Child.Value)
}
