package query

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/mcncl/jsonkit/internal/errors"
)

// Set stores value, which must itself be JSON text, at path and returns the
// updated document. Missing objects along the path are created; an index of
// -1 appends to an array.
func Set(data []byte, path, value string) ([]byte, error) {
	if err := checkEdit(data, path); err != nil {
		return nil, err
	}
	if !gjson.Valid(value) {
		return nil, errors.NewQueryError("value is not valid JSON", errors.ErrInvalidJSON)
	}

	out, err := sjson.SetRawBytes(data, path, []byte(value))
	if err != nil {
		return nil, errors.NewQueryError(fmt.Sprintf("cannot set %q", path), err)
	}
	return out, nil
}

// Delete removes the value at path. Deleting a path that matches nothing
// returns the document unchanged.
func Delete(data []byte, path string) ([]byte, error) {
	if err := checkEdit(data, path); err != nil {
		return nil, err
	}
	out, err := sjson.DeleteBytes(data, path)
	if err != nil {
		return nil, errors.NewQueryError(fmt.Sprintf("cannot delete %q", path), err)
	}
	return out, nil
}

func checkEdit(data []byte, path string) error {
	if strings.TrimSpace(path) == "" {
		return errors.NewQueryError("path is empty", nil)
	}
	if !gjson.ValidBytes(data) {
		return errors.NewQueryError("input is not valid JSON", errors.ErrInvalidJSON)
	}
	return nil
}
