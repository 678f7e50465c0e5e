package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExternalIDValue(t *testing.T) {
	tests := []struct {
		name   string
		key    *string
		want   int
		wantOK bool
	}{
		{"unset", nil, 0, false},
		{"valid", strPtr("42"), 42, true},
		{"zero", strPtr("0"), 0, true},
		{"negative", strPtr("-1"), 0, false},
		{"non-numeric", strPtr("abc"), 0, false},
		{"empty", strPtr(""), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Contact{ExternalID: tt.key}
			got, ok := c.ExternalIDValue()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSetExternalID(t *testing.T) {
	c := &Contact{}
	require.NoError(t, c.SetExternalID("42"))
	require.NotNil(t, c.ExternalID)
	assert.Equal(t, "42", *c.ExternalID)

	require.Error(t, c.SetExternalID("-3"))
	require.Error(t, c.SetExternalID("abc"))
	// Failed assignments leave the key untouched
	assert.Equal(t, "42", *c.ExternalID)
}

func strPtr(s string) *string { return &s }
