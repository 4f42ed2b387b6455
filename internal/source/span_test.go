package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpan_Overlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b Span
		want bool
	}{
		{name: "disjoint", a: Span{Start: 0, End: 2}, b: Span{Start: 3, End: 5}, want: false},
		{name: "touching", a: Span{Start: 0, End: 3}, b: Span{Start: 3, End: 5}, want: false},
		{name: "shared byte", a: Span{Start: 0, End: 4}, b: Span{Start: 3, End: 5}, want: true},
		{name: "nested", a: Span{Start: 0, End: 10}, b: Span{Start: 3, End: 5}, want: true},
		{name: "empty inside", a: Span{Start: 0, End: 10}, b: Span{Start: 3, End: 3}, want: false},
		{name: "other file", a: Span{File: 1, Start: 0, End: 10}, b: Span{Start: 3, End: 5}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Overlaps(tt.b))
			assert.Equal(t, tt.want, tt.b.Overlaps(tt.a))
		})
	}
}

func TestSpan_Contains(t *testing.T) {
	a := Span{Start: 4, End: 6}
	assert.True(t, a.Contains(4))
	assert.False(t, a.Contains(6))
	assert.Equal(t, uint32(2), a.Len())
	assert.Equal(t, "0:4-6", a.String())
	assert.True(t, Span{Start: 1, End: 1}.Empty())
}
