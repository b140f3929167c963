package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexInt64(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{`{"id":7}`, 7, false},
		{`{"id":"7"}`, 7, false},
		{`{"id":"-3"}`, -3, false},
		{`{"id":"seven"}`, 0, true},
		{`{"id":true}`, 0, true},
		{`{"id":1.5}`, 0, true},
	}

	for _, tt := range tests {
		var in struct {
			ID *FlexInt64 `json:"id"`
		}
		err := json.Unmarshal([]byte(tt.in), &in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		require.NotNil(t, in.ID)
		assert.Equal(t, tt.want, in.ID.Int64())
	}

	out, err := json.Marshal(FlexInt64(42))
	require.NoError(t, err)
	assert.Equal(t, "42", string(out))
}

func TestNewErrorKinds(t *testing.T) {
	tests := []struct {
		kind error
		code int
		name string
	}{
		{ErrValidation, 400, "BAD_REQUEST"},
		{ErrUnauthorized, 401, "UNAUTHORIZED"},
		{ErrForbidden, 403, "FORBIDDEN"},
		{ErrNotFound, 404, "NOT_FOUND"},
		{ErrTooManyRequests, 429, "TOO_MANY_REQUESTS"},
		{ErrStoreUnavailable, 503, "SERVICE_UNAVAILABLE"},
		{ErrConsistency, 500, "INTERNAL_SERVER_ERROR"},
	}

	for _, tt := range tests {
		err := NewError(tt.kind, "message")
		assert.Equal(t, tt.code, err.Code)
		assert.Equal(t, tt.name, CodeName(err.Code))

		wrapped := fmt.Errorf("outer: %w", err)
		assert.True(t, errors.Is(wrapped, tt.kind))
	}

	assert.False(t, errors.Is(NewError(ErrForbidden, "x"), ErrNotFound))
	assert.Equal(t, 500, NewError(errors.New("other"), "x").Code)
}
