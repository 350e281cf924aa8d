package helpers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"eventbuddy/internal/domain"
)

func TestParsePagination(t *testing.T) {
	tests := []struct {
		query string
		want  domain.PaginationParams
	}{
		{"", domain.PaginationParams{Page: DefaultPage, PageSize: DefaultPageSize}},
		{"?page=3&page_size=5", domain.PaginationParams{Page: 3, PageSize: 5}},
		{"?page=0&page_size=-1", domain.PaginationParams{Page: DefaultPage, PageSize: DefaultPageSize}},
		{"?page=abc", domain.PaginationParams{Page: DefaultPage, PageSize: DefaultPageSize}},
		{"?page_size=1000", domain.PaginationParams{Page: DefaultPage, PageSize: MaxPageSize}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/events"+tt.query, nil)
			assert.Equal(t, tt.want, ParsePagination(req))
		})
	}
}

func TestPaginate(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e"}

	page, meta := Paginate(items, domain.PaginationParams{Page: 2, PageSize: 2})
	assert.Equal(t, []string{"c", "d"}, page)
	assert.Equal(t, PaginationMeta{Page: 2, PageSize: 2, Total: 5, TotalPages: 3}, meta)

	page, meta = Paginate(items, domain.PaginationParams{Page: 3, PageSize: 2})
	assert.Equal(t, []string{"e"}, page)
	assert.Equal(t, 3, meta.TotalPages)

	page, _ = Paginate(items, domain.PaginationParams{Page: 9, PageSize: 2})
	assert.NotNil(t, page)
	assert.Empty(t, page)
}
