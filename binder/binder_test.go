package binder_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/bizdir/binder"
)

type reasonRequest struct {
	Reason string `json:"reason"`
}

func jsonRequest(body, contentType string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	if contentType != "" {
		r.Header.Set("Content-Type", contentType)
	}
	return r
}

func TestJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		body        string
		contentType string
		want        string
		err         error
	}{
		{"valid", `{"reason":"too expensive"}`, "application/json", "too expensive", nil},
		{"charset", `{"reason":"x"}`, "application/json; charset=utf-8", "x", nil},
		{"missing content type", `{}`, "", "", binder.ErrMissingContentType},
		{"wrong content type", `reason=x`, "application/x-www-form-urlencoded", "", binder.ErrUnsupportedMediaType},
		{"empty body", ``, "application/json", "", binder.ErrInvalidJSON},
		{"syntax", `{"reason":}`, "application/json", "", binder.ErrInvalidJSON},
		{"type mismatch", `{"reason":1}`, "application/json", "", binder.ErrInvalidJSON},
		{"unknown field", `{"reason":"x","extra":1}`, "application/json", "", binder.ErrInvalidJSON},
		{"trailing data", `{"reason":"x"}{}`, "application/json", "", binder.ErrInvalidJSON},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var req reasonRequest
			err := binder.JSON()(jsonRequest(tt.body, tt.contentType), &req)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, req.Reason)
		})
	}
}

func TestJSONWithLimit(t *testing.T) {
	t.Parallel()

	var req reasonRequest
	body := `{"reason":"` + strings.Repeat("a", 64) + `"}`
	err := binder.JSONWithLimit(16)(jsonRequest(body, "application/json"), &req)
	assert.Error(t, err)

	require.NoError(t, binder.JSONWithLimit(1024)(jsonRequest(body, "application/json"), &req))
}

type pathRequest struct {
	TenantID uuid.UUID `path:"tenant_id"`
	Name     string    `path:"name"`
	Page     int       `path:"page"`
	Ignored  string    `path:"-"`
	internal string    `path:"internal"`
}

func TestPath(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	params := map[string]string{
		"tenant_id": id.String(),
		"name":      "acme",
		"page":      "3",
		"internal":  "x",
	}
	extract := func(_ *http.Request, key string) string { return params[key] }

	var req pathRequest
	require.NoError(t, binder.Path(extract)(httptest.NewRequest(http.MethodGet, "/", nil), &req))
	assert.Equal(t, id, req.TenantID)
	assert.Equal(t, "acme", req.Name)
	assert.Equal(t, 3, req.Page)
	assert.Empty(t, req.Ignored)
	assert.Empty(t, req.internal)

	t.Run("invalid uuid", func(t *testing.T) {
		t.Parallel()
		bad := func(_ *http.Request, key string) string {
			if key == "tenant_id" {
				return "not-a-uuid"
			}
			return ""
		}
		var req pathRequest
		err := binder.Path(bad)(httptest.NewRequest(http.MethodGet, "/", nil), &req)
		assert.ErrorIs(t, err, binder.ErrInvalidPath)
	})

	t.Run("non struct target", func(t *testing.T) {
		t.Parallel()
		var s string
		err := binder.Path(extract)(httptest.NewRequest(http.MethodGet, "/", nil), &s)
		assert.ErrorIs(t, err, binder.ErrInvalidPath)
	})

	t.Run("nil extractor", func(t *testing.T) {
		t.Parallel()
		var req pathRequest
		err := binder.Path(nil)(httptest.NewRequest(http.MethodGet, "/", nil), &req)
		assert.ErrorIs(t, err, binder.ErrInvalidPath)
	})
}
