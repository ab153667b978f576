package idgen

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := New()
		require.Len(t, id, 32)
		require.NotContains(t, id, "-")
		require.False(t, seen[id], "duplicate id generated")
		seen[id] = true
	}
}

func TestNameFor(t *testing.T) {
	tests := []struct {
		name string
		id   string
		ext  string
		want string
	}{
		{name: "png", id: "abc123", ext: ".png", want: "abc123.png"},
		{name: "jpg", id: "deadbeef", ext: ".jpg", want: "deadbeef.jpg"},
		{name: "empty ext", id: "abc", ext: "", want: "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, NameFor(tt.id, tt.ext))
			// deterministic
			require.Equal(t, NameFor(tt.id, tt.ext), NameFor(tt.id, tt.ext))
		})
	}
}
