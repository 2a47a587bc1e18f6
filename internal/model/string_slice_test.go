package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringSlice(t *testing.T) {
	t.Run("value keeps commas", func(t *testing.T) {
		v, err := StringSlice{"go", "a,b"}.Value()
		require.NoError(t, err)
		assert.Equal(t, `["go","a,b"]`, v)
	})

	t.Run("nil stores an empty array", func(t *testing.T) {
		v, err := StringSlice(nil).Value()
		require.NoError(t, err)
		assert.Equal(t, "[]", v)
	})

	t.Run("scan accepts strings and bytes", func(t *testing.T) {
		var s StringSlice
		require.NoError(t, s.Scan(`["x","y"]`))
		assert.Equal(t, StringSlice{"x", "y"}, s)

		require.NoError(t, s.Scan([]byte(`["z"]`)))
		assert.Equal(t, StringSlice{"z"}, s)
	})

	t.Run("scan of null or empty is empty", func(t *testing.T) {
		var s StringSlice
		require.NoError(t, s.Scan(nil))
		assert.NotNil(t, s)
		assert.Empty(t, s)

		require.NoError(t, s.Scan(""))
		assert.Empty(t, s)
	})

	t.Run("scan rejects garbage", func(t *testing.T) {
		var s StringSlice
		assert.Error(t, s.Scan(42))
		assert.Error(t, s.Scan("not json"))
	})

	t.Run("json never null", func(t *testing.T) {
		b, err := json.Marshal(struct {
			Tags StringSlice `json:"tags"`
		}{})
		require.NoError(t, err)
		assert.JSONEq(t, `{"tags":[]}`, string(b))
	})
}

func TestProjectPublic(t *testing.T) {
	p := Project{ID: "p1", UserID: "owner", Name: "Alpha", Tags: StringSlice{"go"}}

	b, err := json.Marshal(p.Public())
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(b, &fields))

	assert.Equal(t, "p1", fields["id"])
	assert.NotContains(t, fields, "user")
	assert.NotContains(t, fields, "lastAccessed")
}

func TestProjectHasTag(t *testing.T) {
	p := Project{Tags: StringSlice{"go", "cli"}}

	assert.True(t, p.HasTag("cli"))
	assert.False(t, p.HasTag("rust"))
}
