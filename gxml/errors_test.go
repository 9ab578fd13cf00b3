package gxml_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arturoeanton/gxml/gxml"
)

func TestKindExtractsFromParserError(t *testing.T) {
	t.Parallel()

	p := gxml.NewParser(gxml.NewSliceSource([]byte("<a><b></a>")))
	_, err := p.Next() // DocumentStart
	assert.NoError(t, err)
	_, err = p.Next() // <a>
	assert.NoError(t, err)
	_, err = p.Next() // <b>
	assert.NoError(t, err)
	_, err = p.Next() // </a> mismatched against open <b>

	kind, ok := gxml.Kind(err)
	assert.True(t, ok)
	assert.Equal(t, gxml.MismatchedTags, kind)
}

func TestParserErrorCarriesByteOffset(t *testing.T) {
	t.Parallel()

	p := gxml.NewParser(gxml.NewSliceSource([]byte("<a><b></a>")))
	_, err := p.Next() // DocumentStart
	assert.NoError(t, err)
	_, err = p.Next() // <a>
	assert.NoError(t, err)
	_, err = p.Next() // <b>
	assert.NoError(t, err)
	_, err = p.Next() // </a> mismatched against open <b>

	var gerr *gxml.Error
	require.ErrorAs(t, err, &gerr)
	assert.GreaterOrEqual(t, gerr.Offset, 0)
	assert.Contains(t, gerr.Error(), "offset")
}

func TestKindFalseForPlainError(t *testing.T) {
	t.Parallel()
	_, ok := gxml.Kind(assertErr{})
	assert.False(t, ok)
}

type assertErr struct{}

func (assertErr) Error() string { return "not a gxml error" }
