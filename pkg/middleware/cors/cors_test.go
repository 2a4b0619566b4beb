package cors

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func request(t *testing.T, allowed []string, method, origin string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(New(allowed))
	r.Any("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(method, "/", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAllowedOrigins(t *testing.T) {
	allowed := []string{"https://admin.school.id/", "https://*.portal.school.id"}

	cases := []struct {
		origin string
		want   bool
	}{
		{"https://admin.school.id", true},
		{"https://class7.portal.school.id", true},
		{"https://portal.school.id", false},
		{"http://class7.portal.school.id", false},
		{"https://evil.example", false},
	}
	for _, tc := range cases {
		w := request(t, allowed, http.MethodGet, tc.origin)
		if tc.want {
			assert.Equal(t, tc.origin, w.Header().Get("Access-Control-Allow-Origin"), tc.origin)
		} else {
			assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"), tc.origin)
		}
	}
}

func TestEmptyListAllowsAnyOrigin(t *testing.T) {
	w := request(t, nil, http.MethodGet, "")
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition")
}

func TestPreflightShortCircuits(t *testing.T) {
	w := request(t, nil, http.MethodOptions, "https://any.example")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://any.example", w.Header().Get("Access-Control-Allow-Origin"))
}
