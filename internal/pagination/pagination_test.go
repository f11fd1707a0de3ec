package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name      string
		page      int
		limit     int
		wantPage  int
		wantLimit int
	}{
		{"defaults applied", 0, 0, 1, 10},
		{"negative values", -3, -1, 1, 10},
		{"kept as is", 2, 25, 2, 25},
		{"limit capped at 100", 1, 500, 1, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, limit := Normalize(tt.page, tt.limit)
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantLimit, limit)
		})
	}
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, Offset(1, 10))
	assert.Equal(t, 10, Offset(2, 10))
	assert.Equal(t, 50, Offset(3, 25))
}

func TestNewMeta(t *testing.T) {
	tests := []struct {
		name       string
		totalItems int
		page       int
		limit      int
		wantPages  int
	}{
		{"exact division", 20, 1, 10, 2},
		{"remainder rounds up", 21, 1, 10, 3},
		{"empty listing", 0, 1, 10, 0},
		{"single partial page", 3, 1, 10, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := NewMeta(tt.totalItems, tt.page, tt.limit)
			assert.Equal(t, tt.wantPages, meta.TotalPages)
			assert.Equal(t, tt.totalItems, meta.TotalItems)
			assert.Equal(t, tt.page, meta.CurrentPage)
			assert.Equal(t, tt.limit, meta.ItemsPerPage)
		})
	}
}

func TestNewPageNeverReturnsNilData(t *testing.T) {
	page := NewPage[string](nil, 0, 1, 10)
	assert.NotNil(t, page.Data)
	assert.Empty(t, page.Data)
}
