package calltrace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToCall_String(t *testing.T) {
	c := toCall("open")
	assert.Equal(t, kindID, c.kind)
	assert.Equal(t, "open", c.id)
}

func TestToCall_Int(t *testing.T) {
	c := toCall(42)
	assert.Equal(t, kindID, c.kind)
	assert.Equal(t, "42", c.id)
}

func TestToCall_Nil(t *testing.T) {
	c := toCall(nil)
	assert.Equal(t, kindSeq, c.kind)
	assert.Empty(t, c.children)
}

func TestToCall_StringSlice(t *testing.T) {
	c := toCall([]string{"1", "2"})
	require.Equal(t, kindSeq, c.kind)
	require.Len(t, c.children, 2)
	assert.Equal(t, "1", c.children[0].id)
	assert.Equal(t, "2", c.children[1].id)
}

func TestToCall_AnySliceConvertsRecursively(t *testing.T) {
	c := toCall([]any{"1", Par("a", "b"), []string{"x", "y"}})
	require.Equal(t, kindSeq, c.kind)
	require.Len(t, c.children, 3)
	assert.Equal(t, kindID, c.children[0].kind)
	assert.Equal(t, kindPar, c.children[1].kind)
	assert.Equal(t, kindSeq, c.children[2].kind)
}

func TestToCall_ClonesCallValues(t *testing.T) {
	original := Seq("1", "2")
	converted := toCall(original)

	require.NotSame(t, original, converted)
	// Advancing the clone must not disturb the original.
	ok, _ := converted.step(&Event{ID: "1"})
	require.True(t, ok)
	assert.Len(t, original.children, 2)
	assert.Equal(t, kindID, original.children[0].kind)
}

func TestToCall_UnsupportedTypePanics(t *testing.T) {
	assert.Panics(t, func() { toCall(3.14) })
	assert.Panics(t, func() { toCall(map[string]string{}) })
}

func TestNone_IsNothingExpected(t *testing.T) {
	c := None()
	ok, expected := c.step(nil)
	assert.False(t, ok)
	assert.Empty(t, expected, "the empty pattern signals completion, not failure")
}

func TestClone_IsDeep(t *testing.T) {
	original := Any(Seq("a", "b"), "c")
	copied := original.clone()

	ok, _ := copied.step(&Event{ID: "a"})
	require.True(t, ok)

	require.Len(t, original.children, 2)
	assert.Len(t, original.children[0].children, 2, "nested children must be copied, not shared")
}
