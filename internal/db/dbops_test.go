package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecipientsArg(t *testing.T) {
	tests := []struct {
		name       string
		recipients []string
		want       any
	}{
		{name: "nil becomes empty array", recipients: nil, want: "{}"},
		{name: "empty", recipients: []string{}, want: "{}"},
		{name: "addresses", recipients: []string{"a@x.com", "b@x.com"}, want: `{"a@x.com","b@x.com"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := recipientsArg(tt.recipients).Value()
			require.NoError(t, err)
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestNullString(t *testing.T) {
	assert.False(t, nullString("").Valid)
	assert.Equal(t, "https://ethereal.email/message/x", nullString("https://ethereal.email/message/x").String)
}
