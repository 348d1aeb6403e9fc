package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcncl/jsonkit/internal/errors"
	"github.com/mcncl/jsonkit/internal/models"
)

const doc = `{
	"name": {"first": "Tom", "last": "Anderson"},
	"age": 37,
	"children": ["Sara", "Alex", "Jack"],
	"friends": [
		{"first": "Dale", "age": 44},
		{"first": "Roger", "age": 68}
	]
}`

func TestGet(t *testing.T) {
	tests := []struct {
		path string
		kind string
		raw  string
	}{
		{"age", "number", "37"},
		{"name.last", "string", `"Anderson"`},
		{"children.1", "string", `"Alex"`},
		{"children.#", "number", "3"},
		{"friends.#.first", "array", `["Dale","Roger"]`},
		{"name", "object", `{"first": "Tom", "last": "Anderson"}`},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			res, err := Get([]byte(doc), tt.path)
			require.NoError(t, err)
			assert.True(t, res.Exists)
			assert.Equal(t, tt.kind, res.Kind)
			assert.Equal(t, tt.raw, res.Raw)
		})
	}
}

func TestGet_ValueKeepsOrder(t *testing.T) {
	res, err := Get([]byte(doc), "name")
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "last"}, res.Value.Keys())
}

func TestGet_Missing(t *testing.T) {
	res, err := Get([]byte(doc), "nope.nothing")
	require.NoError(t, err)
	assert.False(t, res.Exists)
	assert.Equal(t, models.KindNull, res.Value.Kind)
}

func TestGet_Errors(t *testing.T) {
	_, err := Get([]byte(doc), " ")
	require.Error(t, err)

	_, err = Get([]byte(`{"a":`), "a")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidJSON)

	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, errors.ErrorTypeQuery, appErr.Type)
}
