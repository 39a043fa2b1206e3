package requestid_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/bizdir/pkg/logger"
	"github.com/dmitrymomot/bizdir/pkg/requestid"
)

func serve(t *testing.T, header string) (seen, echoed string) {
	t.Helper()
	h := requestid.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestid.FromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodPost, "/billing/schedule-downgrade", nil)
	if header != "" {
		req.Header.Set(requestid.Header, header)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	return seen, rec.Header().Get(requestid.Header)
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header string
		keep   bool
	}{
		{"missing", "", false},
		{"plain", "abc123", true},
		{"dashes and underscores", "ABC-123_xyz", true},
		{"uuid", "550e8400-e29b-41d4-a716-446655440000", true},
		{"spaces", "req id", false},
		{"slashes", "a/b", false},
		{"markup", "<script>", false},
		{"too long", string(bytes.Repeat([]byte("a"), 129)), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			seen, echoed := serve(t, tt.header)
			assert.Equal(t, seen, echoed)
			if tt.keep {
				assert.Equal(t, tt.header, seen)
				return
			}
			id, err := uuid.Parse(seen)
			require.NoError(t, err)
			assert.Equal(t, uuid.Version(7), id.Version())
		})
	}
}

func TestFromContext(t *testing.T) {
	t.Parallel()

	assert.Empty(t, requestid.FromContext(context.Background()))
	assert.Equal(t, "r-1", requestid.FromContext(requestid.WithContext(context.Background(), "r-1")))
}

func TestLoggerExtractor(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(
		logger.WithOutput(&buf),
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	)

	log.InfoContext(context.Background(), "no request")
	log.InfoContext(requestid.WithContext(context.Background(), "req-1"), "with request")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var first, second map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &first))
	require.NoError(t, json.Unmarshal(lines[1], &second))
	assert.NotContains(t, first, "request_id")
	assert.Equal(t, "req-1", second["request_id"])
}
