package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedactURI(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no query", "/admin/orders", "/admin/orders"},
		{"harmless query", "/admin/orders?page=2", "/admin/orders?page=2"},
		{"token param", "/api/auth/session?token=abc.def", "/api/auth/session?token=%5BREDACTED%5D"},
		{"mixed params", "/x?page=1&api_key=k1", "/x?api_key=%5BREDACTED%5D&page=1"},
		{"case insensitive", "/x?Password=hunter2", "/x?Password=%5BREDACTED%5D"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RedactURI(tt.in))
		})
	}
}

func TestRedactMessage(t *testing.T) {
	got := RedactMessage("login failed: password=hunter2 token: abc secret=s3")
	assert.NotContains(t, got, "hunter2")
	assert.NotContains(t, got, "abc")
	assert.NotContains(t, got, "s3")
	assert.Contains(t, got, "password=[REDACTED]")

	assert.Equal(t, "record not found", RedactMessage("record not found"))
}
