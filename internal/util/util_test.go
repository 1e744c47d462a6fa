package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name             string
		page, size       int
		wantOff, wantLim int
	}{
		{"first page", 1, 12, 0, 12},
		{"third page", 3, 15, 30, 15},
		{"zero page", 0, 10, 0, 10},
		{"bad size", 2, 0, DefaultPageSize, DefaultPageSize},
		{"size too big", 1, 1000, 0, DefaultPageSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			off, lim := Calculate(tt.page, tt.size)
			assert.Equal(t, tt.wantOff, off)
			assert.Equal(t, tt.wantLim, lim)
		})
	}
}

func TestParseIntDefault(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 5, ParseIntDefault("", 5))
	assert.Equal(t, 5, ParseIntDefault("abc", 5))
	assert.Equal(t, 7, ParseIntDefault("7", 5))
}

func TestNewMeta(t *testing.T) {
	t.Parallel()

	m := NewMeta(2, 12, 30)
	assert.Equal(t, Meta{Page: 2, Size: 12, Total: 30, TotalPages: 3, HasPrev: true, HasNext: true}, m)

	last := NewMeta(3, 12, 30)
	assert.False(t, last.HasNext)

	empty := NewPage[int](nil, 1, 10, 0)
	assert.NotNil(t, empty.Data)
	assert.EqualValues(t, 0, empty.Meta.TotalPages)
}

func TestSlugify(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"AMD Ryzen 7 7800X3D":   "amd-ryzen-7-7800x3d",
		"  Memory (RAM)  ":      "memory-ram",
		"Power Supplies / PSUs": "power-supplies-psus",
		"---":                   "",
		"Café Racer Chair":      "cafe-racer-chair",
		"Ñandú Keyboard":        "nandu-keyboard",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), in)
	}
}
