package sheets

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"github.com/dotshop/sheetsync/pkg/errors"
	"github.com/dotshop/sheetsync/pkg/record"
	"github.com/dotshop/sheetsync/pkg/tables"
)

func TestColumnLetter(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{1, "A"},
		{2, "B"},
		{11, "K"},
		{26, "Z"},
		{27, "AA"},
		{28, "AB"},
		{52, "AZ"},
		{53, "BA"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, columnLetter(tt.n), "n=%d", tt.n)
	}
}

func TestDataRange(t *testing.T) {
	c := &Client{schema: record.DefaultSchema()}
	ref := tables.Ref{SpreadsheetID: "x", Sheet: "Products"}
	assert.Equal(t, "Products!A2:K", c.dataRange(ref))
}

func TestToStrings(t *testing.T) {
	got := toStrings([]interface{}{"name", float64(125000), true, nil})
	assert.Equal(t, []string{"name", "125000", "true", ""}, got)
}

func TestToStringsFractionalNumber(t *testing.T) {
	got := toStrings([]interface{}{float64(12.5)})
	assert.Equal(t, []string{"12.5"}, got)
}

func TestValueRange(t *testing.T) {
	vr := valueRange([]record.Row{
		{Key: "digikala_1", Values: []string{"1", "digikala", "لپ تاپ"}},
		{Key: "digikala_2", Values: []string{"2", "digikala", "موبایل"}},
	})
	require.Len(t, vr.Values, 2)
	assert.Equal(t, "لپ تاپ", vr.Values[0][2])
}

func TestIsBlank(t *testing.T) {
	assert.True(t, isBlank(nil))
	assert.True(t, isBlank([]string{"", "  ", ""}))
	assert.False(t, isBlank([]string{"", "digikala"}))
}

func TestMapErrorStatusCodes(t *testing.T) {
	tests := []struct {
		name     string
		code     int
		sentinel error
	}{
		{"rate limited", 429, errors.ErrRateLimited},
		{"permission denied", 403, errors.ErrPermissionDenied},
		{"not found", 404, errors.ErrNotFound},
		{"server error", 500, errors.ErrTransient},
		{"unavailable", 503, errors.ErrTransient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mapError("fetch", &googleapi.Error{Code: tt.code, Message: "boom"})
			assert.ErrorIs(t, err, tt.sentinel)
		})
	}
}

func TestMapErrorRetryAfterHeader(t *testing.T) {
	gerr := &googleapi.Error{
		Code:   429,
		Header: http.Header{"Retry-After": []string{"12"}},
	}
	err := mapError("append", gerr)
	require.True(t, errors.IsRateLimited(err))
	assert.Equal(t, 12*time.Second, errors.RetryAfter(err))
}

func TestMapErrorPassesThroughCancellation(t *testing.T) {
	assert.ErrorIs(t, mapError("fetch", context.Canceled), context.Canceled)
	assert.ErrorIs(t, mapError("fetch", context.DeadlineExceeded), context.DeadlineExceeded)
}

func TestMapErrorUnknownIsTransient(t *testing.T) {
	err := mapError("fetch", errors.New("connection reset"))
	assert.True(t, errors.IsTransient(err))
}

func TestMapErrorNil(t *testing.T) {
	assert.NoError(t, mapError("fetch", nil))
}

func TestRetryAfterHintInvalid(t *testing.T) {
	assert.Zero(t, retryAfterHint(&googleapi.Error{Code: 429}))
	assert.Zero(t, retryAfterHint(&googleapi.Error{
		Code:   429,
		Header: http.Header{"Retry-After": []string{"soon"}},
	}))
}
