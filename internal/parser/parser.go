package parser

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mcncl/jsonkit/internal/errors"
	"github.com/mcncl/jsonkit/internal/models"
)

// Parse converts JSON data from an io.Reader into a Document. Object members
// keep their source order; numbers keep their literal text.
func Parse(reader io.Reader) (models.Document, error) {
	decoder := json.NewDecoder(reader)
	decoder.UseNumber()

	root, err := decodeValue(decoder)
	if err != nil {
		if stderrors.Is(err, io.EOF) {
			return models.Document{}, errors.NewParsingError("input is empty or contains only whitespace", errors.ErrEmptyInput)
		}
		return models.Document{}, wrapDecodeError(err)
	}

	// Anything other than EOF after the first value is either a second
	// value or garbage.
	if _, err := decoder.Token(); err == nil {
		return models.Document{}, errors.NewParsingError("multiple JSON values found at the root", errors.ErrMultipleJSON)
	} else if !stderrors.Is(err, io.EOF) {
		return models.Document{}, errors.NewParsingError("invalid trailing data after first JSON value", wrapDecodeError(err))
	}

	return models.Document{Root: root}, nil
}

func wrapDecodeError(err error) error {
	var syntaxError *json.SyntaxError
	if stderrors.As(err, &syntaxError) {
		return errors.NewParsingError(
			fmt.Sprintf("JSON syntax error at offset %d: %s", syntaxError.Offset, syntaxError.Error()),
			errors.ErrInvalidJSON,
		)
	}
	if stderrors.Is(err, io.ErrUnexpectedEOF) {
		return errors.NewParsingError("unexpected end of JSON input", errors.ErrInvalidJSON)
	}
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return err
	}
	return errors.NewParsingError("failed to decode JSON", err)
}

// decodeValue reads one complete value from the token stream.
func decodeValue(decoder *json.Decoder) (models.Value, error) {
	tok, err := decoder.Token()
	if err != nil {
		return models.Value{}, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(decoder)
		case '[':
			return decodeArray(decoder)
		default:
			return models.Value{}, errors.NewParsingError(fmt.Sprintf("unexpected delimiter %q", rune(t)), errors.ErrInvalidJSON)
		}
	case nil:
		return models.Null(), nil
	case bool:
		return models.Bool(t), nil
	case json.Number:
		return models.Number(string(t)), nil
	case string:
		return models.String(t), nil
	default:
		return models.Value{}, fmt.Errorf("unexpected json token type: %T", t)
	}
}

func decodeObject(decoder *json.Decoder) (models.Value, error) {
	obj := models.Object()
	index := make(map[string]int)

	for decoder.More() {
		tok, err := decoder.Token()
		if err != nil {
			return models.Value{}, unexpectedEOF(err)
		}
		key, ok := tok.(string)
		if !ok {
			return models.Value{}, errors.NewParsingError(fmt.Sprintf("object key must be a string, got %v", tok), errors.ErrInvalidJSON)
		}

		val, err := decodeValue(decoder)
		if err != nil {
			return models.Value{}, unexpectedEOF(err)
		}

		// Duplicate keys: last value wins, first position is kept.
		if i, seen := index[key]; seen {
			obj.Members[i].Value = val
			continue
		}
		index[key] = len(obj.Members)
		obj.Members = append(obj.Members, models.Member{Key: key, Value: val})
	}

	if _, err := decoder.Token(); err != nil { // closing '}'
		return models.Value{}, unexpectedEOF(err)
	}
	return obj, nil
}

func decodeArray(decoder *json.Decoder) (models.Value, error) {
	arr := models.Array()

	for decoder.More() {
		val, err := decodeValue(decoder)
		if err != nil {
			return models.Value{}, unexpectedEOF(err)
		}
		arr.Items = append(arr.Items, val)
	}

	if _, err := decoder.Token(); err != nil { // closing ']'
		return models.Value{}, unexpectedEOF(err)
	}
	return arr, nil
}

// unexpectedEOF turns a bare EOF inside a composite into a truncation error
// so it isn't mistaken for empty input.
func unexpectedEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

// ParseString parses JSON from a string
func ParseString(jsonString string) (models.Document, error) {
	if strings.TrimSpace(jsonString) == "" {
		return models.Document{}, errors.NewInputError("input string is empty", errors.ErrEmptyInput)
	}
	return Parse(strings.NewReader(jsonString))
}

// ParseBytes parses JSON from a byte slice
func ParseBytes(data []byte) (models.Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return models.Document{}, errors.NewInputError("input is empty", errors.ErrEmptyInput)
	}
	return Parse(bytes.NewReader(data))
}

// ParseFile parses JSON from a file path
func ParseFile(filePath string) (models.Document, error) {
	data, err := ReadFile(filePath)
	if err != nil {
		return models.Document{}, err
	}
	return Parse(bytes.NewReader(data))
}

// ReadFile reads a JSON input file, mapping the common failure modes onto
// input errors.
func ReadFile(filePath string) ([]byte, error) {
	if strings.TrimSpace(filePath) == "" {
		return nil, errors.NewInputError("file path is empty", errors.ErrInvalidFilePath)
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewInputError(
				fmt.Sprintf("file '%s' not found", filePath),
				errors.ErrFileNotFound,
			)
		}
		return nil, errors.NewInputError(
			fmt.Sprintf("failed to open file '%s'", filePath),
			err,
		)
	}
	if len(data) == 0 {
		return nil, errors.NewInputError(
			fmt.Sprintf("input file '%s' is empty", filePath),
			errors.ErrFileEmpty,
		)
	}
	return data, nil
}
