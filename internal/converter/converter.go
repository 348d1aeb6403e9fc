// Package converter renders parsed JSON values as CSV, XML or YAML text.
package converter

import (
	"fmt"
	"strings"

	"github.com/mcncl/jsonkit/internal/errors"
	"github.com/mcncl/jsonkit/internal/models"
)

// Format is a target serialization.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXML  Format = "xml"
	FormatYAML Format = "yaml"
)

// FormatNotSupported is the in-band message shown for an unknown format.
const FormatNotSupported = "Format not supported"

// DefaultRootName names the outermost XML element when none is given.
const DefaultRootName = "root"

// Formats lists the supported targets in display order.
func Formats() []Format {
	return []Format{FormatCSV, FormatXML, FormatYAML}
}

// ParseFormat resolves a user-supplied selector. Matching is case-insensitive
// and accepts "yml" for YAML.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "xml":
		return FormatXML, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", errors.NewConvertError(fmt.Sprintf("unknown format %q", s), errors.ErrUnsupportedFormat)
	}
}

// HeaderMode selects how the CSV header row is built.
type HeaderMode string

const (
	// HeaderUnion uses the first row's keys followed by keys first seen in
	// later rows.
	HeaderUnion HeaderMode = "union"
	// HeaderFirst uses only the first row's keys; extra keys in later rows
	// are dropped.
	HeaderFirst HeaderMode = "first"
)

// Options configures a Converter.
type Options struct {
	RootName   string
	CSVHeader  HeaderMode
	XMLKeyCase KeyCase
	XMLEscape  bool
	YAMLIndent int
}

// DefaultOptions returns the stock conversion settings.
func DefaultOptions() Options {
	return Options{
		RootName:   DefaultRootName,
		CSVHeader:  HeaderUnion,
		XMLKeyCase: KeyCasePreserve,
		YAMLIndent: 2,
	}
}

// Converter renders values in one of the supported formats.
type Converter struct {
	opts Options
}

// NewConverter creates a Converter with default options.
func NewConverter() *Converter {
	return &Converter{opts: DefaultOptions()}
}

// NewConverterWithOptions creates a Converter, filling unset options with
// their defaults.
func NewConverterWithOptions(opts Options) *Converter {
	def := DefaultOptions()
	if opts.RootName == "" {
		opts.RootName = def.RootName
	}
	if opts.CSVHeader == "" {
		opts.CSVHeader = def.CSVHeader
	}
	if opts.XMLKeyCase == "" {
		opts.XMLKeyCase = def.XMLKeyCase
	}
	if opts.YAMLIndent <= 0 {
		opts.YAMLIndent = def.YAMLIndent
	}
	return &Converter{opts: opts}
}

// Options returns the converter's effective options.
func (c *Converter) Options() Options {
	return c.opts
}

// Convert renders v in the given format. Any failure inside a renderer,
// including a panic, comes back as a convert AppError.
func (c *Converter) Convert(v models.Value, format Format) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = ""
			err = errors.NewConvertError(fmt.Sprintf("%s conversion failed", format), fmt.Errorf("%v", r))
		}
	}()

	switch format {
	case FormatCSV:
		return c.toCSV(v), nil
	case FormatXML:
		return c.toXML(v), nil
	case FormatYAML:
		out, err := c.toYAML(v)
		if err != nil {
			return "", errors.NewConvertError("yaml conversion failed", err)
		}
		return out, nil
	default:
		return "", errors.NewConvertError(fmt.Sprintf("unknown format %q", format), errors.ErrUnsupportedFormat)
	}
}

// ConvertOrMessage is the total form of Convert for display: it returns the
// rendered text, FormatNotSupported for an unknown selector, or a
// "Conversion failed: ..." message.
func (c *Converter) ConvertOrMessage(v models.Value, format string) string {
	f, err := ParseFormat(format)
	if err != nil {
		return FormatNotSupported
	}
	out, err := c.Convert(v, f)
	if err != nil {
		return "Conversion failed: " + err.Error()
	}
	return out
}

// Convert renders v with default options.
func Convert(v models.Value, format Format) (string, error) {
	return NewConverter().Convert(v, format)
}
