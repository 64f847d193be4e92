package merge

import (
	"testing"

	assert2 "github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	assert := assert2.New(t)

	t.Run("object", func(t *testing.T) {
		doc, err := Parse([]byte(`{"paths":{"/a":{}},"x-big":12345678901234567890}`))
		require.NoError(t, err)
		assert.Equal(1, doc.PathCount())
	})

	t.Run("invalid-json", func(t *testing.T) {
		_, err := Parse([]byte(`{"paths": {`))
		assert.Error(err)
	})

	t.Run("not-an-object", func(t *testing.T) {
		_, err := Parse([]byte(`[1, 2]`))
		assert.Error(err)

		_, err = Parse([]byte(`null`))
		assert.ErrorIs(err, ErrNotObject)
	})

	t.Run("trailing-data", func(t *testing.T) {
		_, err := Parse([]byte(`{"paths":{}} {"paths":{}}`))
		assert.Error(err)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := Parse([]byte(``))
		assert.Error(err)
	})
}

func TestDocument_Copy(t *testing.T) {
	assert := assert2.New(t)

	base := mustParse(t, `{"paths":{"/a":{"get":{"tags":["x"]}}},"components":{"schemas":{}}}`)
	cp, err := base.Copy()
	require.NoError(t, err)
	assert.Equal(base, cp)

	require.NoError(t, Fold(cp, mustParse(t, `{"paths":{"/b":{}},"components":{"schemas":{"S":{}}}}`)))
	cp[KeyPaths].(map[string]any)["/a"].(map[string]any)["get"].(map[string]any)["tags"].([]any)[0] = "changed"

	assert.Equal(mustParse(t, `{"paths":{"/a":{"get":{"tags":["x"]}}},"components":{"schemas":{}}}`), base)
}

func TestDocument_Render(t *testing.T) {
	assert := assert2.New(t)

	t.Run("two-space-indent-sorted-keys", func(t *testing.T) {
		doc := mustParse(t, `{"paths":{"/b":2,"/a":1},"info":{"title":"<API> & co"},"tags":[],"x":{}}`)

		data, err := doc.Render()
		require.NoError(t, err)

		expected := `{
  "info": {
    "title": "<API> & co"
  },
  "paths": {
    "/a": 1,
    "/b": 2
  },
  "tags": [],
  "x": {}
}`
		assert.Equal(expected, string(data))
	})

	t.Run("numbers-round-trip", func(t *testing.T) {
		doc := mustParse(t, `{"a":12345678901234567890,"b":1.50,"c":1e3}`)

		data, err := doc.Render()
		require.NoError(t, err)
		assert.Equal("{\n  \"a\": 12345678901234567890,\n  \"b\": 1.50,\n  \"c\": 1e3\n}", string(data))
	})
}

func TestDocument_Counts(t *testing.T) {
	assert := assert2.New(t)

	assert.Equal(0, Document{}.PathCount())
	assert.Equal(0, Document{}.SchemaCount())
	assert.Equal(0, mustParse(t, `{"components":{}}`).SchemaCount())
	assert.Equal(2, mustParse(t, `{"components":{"schemas":{"A":{},"B":{}}}}`).SchemaCount())
}
