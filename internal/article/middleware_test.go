package article

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginate(t *testing.T) {
	tests := []struct {
		query  string
		status int
		want   Page
	}{
		{"", http.StatusOK, Page{Limit: 20}},
		{"?limit=5&offset=10", http.StatusOK, Page{Limit: 5, Offset: 10}},
		{"?limit=500", http.StatusOK, Page{Limit: 100}},
		{"?limit=0", http.StatusBadRequest, Page{}},
		{"?limit=ten", http.StatusBadRequest, Page{}},
		{"?offset=-1", http.StatusBadRequest, Page{}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			var got Page
			h := Paginate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = PageFromContext(r.Context())
			}))

			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/articles"+tt.query, nil))

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.want, got)
		})
	}
}
