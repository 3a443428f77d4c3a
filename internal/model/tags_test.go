package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagsValue_NilStoredAsEmptyArray(t *testing.T) {
	var tags Tags
	v, err := tags.Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)
}

func TestTagsScan(t *testing.T) {
	tests := []struct {
		name string
		src  any
		want Tags
	}{
		{name: "string", src: `["go","sql"]`, want: Tags{"go", "sql"}},
		{name: "bytes", src: []byte(`["react"]`), want: Tags{"react"}},
		{name: "null column", src: nil, want: Tags{}},
		{name: "empty text", src: "", want: Tags{}},
		{name: "json null", src: "null", want: Tags{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Tags
			require.NoError(t, got.Scan(tt.src))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTagsScan_RejectsUnknownType(t *testing.T) {
	var got Tags
	assert.Error(t, got.Scan(42))
}

func TestTagsNormalize(t *testing.T) {
	got := Tags{" React ", "react", "", "Hooks", "  "}.Normalize()
	assert.Equal(t, Tags{"react", "hooks"}, got)
}

func TestSnippetOwnedBy(t *testing.T) {
	owner := "user-1"
	s := &Snippet{UserID: &owner}

	assert.True(t, s.OwnedBy("user-1"))
	assert.False(t, s.OwnedBy("user-2"))
	assert.False(t, s.OwnedBy(""))
	assert.False(t, (&Snippet{}).OwnedBy("user-1"))
}
