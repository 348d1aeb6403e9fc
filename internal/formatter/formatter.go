package formatter

import (
	"strings"

	"github.com/tidwall/pretty"

	"github.com/mcncl/jsonkit/internal/errors"
	"github.com/mcncl/jsonkit/internal/parser"
)

// Options controls pretty-printing.
type Options struct {
	Indent   int  // spaces per level
	SortKeys bool // sort object keys
	Width    int  // arrays that fit on one line within this width stay inline
}

// DefaultOptions returns the stock pretty-print settings.
func DefaultOptions() Options {
	return Options{Indent: 2, Width: 80}
}

// Formatter pretty-prints and minifies JSON documents
type Formatter struct {
	opts Options
}

// NewFormatter creates a new Formatter instance
func NewFormatter() *Formatter {
	return &Formatter{opts: DefaultOptions()}
}

// NewFormatterWithOptions creates a Formatter with custom options
func NewFormatterWithOptions(opts Options) *Formatter {
	def := DefaultOptions()
	if opts.Indent <= 0 {
		opts.Indent = def.Indent
	}
	if opts.Width <= 0 {
		opts.Width = def.Width
	}
	return &Formatter{opts: opts}
}

// Format validates data and returns it pretty-printed with a trailing newline
func (f *Formatter) Format(data []byte) ([]byte, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}
	return pretty.PrettyOptions(data, &pretty.Options{
		Width:    f.opts.Width,
		Indent:   strings.Repeat(" ", f.opts.Indent),
		SortKeys: f.opts.SortKeys,
	}), nil
}

// Minify validates data and strips all insignificant whitespace
func (f *Formatter) Minify(data []byte) ([]byte, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}
	return pretty.Ugly(data), nil
}

// Colorize adds terminal colors to already formatted JSON
func (f *Formatter) Colorize(data []byte) []byte {
	return pretty.Color(data, pretty.TerminalStyle)
}

// Validate reports whether data holds exactly one well-formed JSON value.
// The error carries the byte offset of the first syntax problem.
func Validate(data []byte) error {
	if _, err := parser.ParseBytes(data); err != nil {
		return errors.NewFormatError("input is not valid JSON", err)
	}
	return nil
}
