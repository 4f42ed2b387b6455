package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"emptylines/internal/source"
)

func createFile(content string) *source.File {
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.cs", []byte(content))
	return fs.Get(id)
}

func TestSequentialReading(t *testing.T) {
	cursor := NewCursor(createFile("a\nb"))

	assert.False(t, cursor.EOF())
	assert.Equal(t, byte('a'), cursor.Bump())
	assert.Equal(t, byte('\n'), cursor.Peek())
	assert.Equal(t, byte('\n'), cursor.Bump())
	assert.Equal(t, byte('b'), cursor.Bump())
	assert.True(t, cursor.EOF())
	assert.Equal(t, byte(0), cursor.Peek())
	assert.Equal(t, byte(0), cursor.Bump())
}

func TestPeek2(t *testing.T) {
	cursor := NewCursor(createFile("abc"))

	b0, b1, ok := cursor.Peek2()
	assert.True(t, ok)
	assert.Equal(t, []byte("ab"), []byte{b0, b1})

	cursor.Advance(2)
	_, _, ok = cursor.Peek2()
	assert.False(t, ok)
}

func TestMarkSpan(t *testing.T) {
	file := createFile("hello\nworld")
	cursor := NewCursor(file)

	m := cursor.Mark()
	cursor.Advance(5)
	assert.Equal(t, source.Span{File: file.ID, Start: 0, End: 5}, cursor.SpanFrom(m))

	assert.True(t, cursor.Eat('\n'))
	assert.False(t, cursor.Eat('x'))
	assert.True(t, cursor.Eat('w'))

	cursor.Advance(100)
	assert.True(t, cursor.EOF())
	assert.Equal(t, uint32(11), cursor.Off)
}

func TestHasPrefix(t *testing.T) {
	cursor := NewCursor(createFile("/* x */"))

	assert.True(t, cursor.HasPrefix("/*"))
	assert.False(t, cursor.HasPrefix("//"))
	assert.False(t, cursor.HasPrefix(""))
	assert.False(t, cursor.HasPrefix("/* x */ and more"))
}
