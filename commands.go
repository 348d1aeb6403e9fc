package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mcncl/jsonkit/internal/converter"
	"github.com/mcncl/jsonkit/internal/differ"
	"github.com/mcncl/jsonkit/internal/errors"
	"github.com/mcncl/jsonkit/internal/formatter"
	"github.com/mcncl/jsonkit/internal/models"
	"github.com/mcncl/jsonkit/internal/output"
	"github.com/mcncl/jsonkit/internal/parser"
	"github.com/mcncl/jsonkit/internal/password"
	"github.com/mcncl/jsonkit/internal/query"
	"github.com/mcncl/jsonkit/internal/server"
)

// DiffCmd compares two documents
type DiffCmd struct {
	Original  string   `arg:"" help:"Original JSON file, or - for stdin."`
	Candidate string   `arg:"" help:"Candidate JSON file, or - for stdin."`
	Output    string   `help:"Output format: text or json. Defaults to the config value." short:"o"`
	Ignore    []string `help:"Regular expression for paths to leave out. Repeatable." sep:"none"`
	ExitCode  bool     `help:"Exit with status 1 when the documents differ." name:"exit-code"`
}

func (c *DiffCmd) Run(ctx *Context) error {
	if c.Original == "-" && c.Candidate == "-" {
		return errors.NewInputError("only one document can be read from stdin", errors.ErrInvalidFilePath)
	}
	original, err := readInput(ctx, c.Original)
	if err != nil {
		return err
	}
	candidate, err := readInput(ctx, c.Candidate)
	if err != nil {
		return err
	}

	var opts differ.Options
	if len(ctx.Config.Diff.IgnorePatterns) > 0 {
		opts.Ignore = ctx.Config.Diff.ShouldIgnore
	}
	records := differ.NewDifferWithOptions(opts).DiffText(string(original), string(candidate))
	ctx.Log.WithField("records", len(records)).Debug("diff complete")

	format := c.Output
	if format == "" {
		format = ctx.Config.Diff.Output
	}
	switch format {
	case "json":
		err = output.RenderJSON(ctx.Out, records)
	case "text":
		err = output.NewRenderer(ctx.NoColor).Render(ctx.Out, records)
	default:
		return errors.NewInputError(fmt.Sprintf("unknown diff output %q: use text or json", format), nil)
	}
	if err != nil {
		return err
	}

	if c.ExitCode && len(records) > 0 {
		return errDifferencesFound
	}
	return nil
}

// ConvertCmd renders JSON as CSV, XML or YAML
type ConvertCmd struct {
	To         string `arg:"" help:"Target format: csv, xml or yaml."`
	Input      string `arg:"" optional:"" help:"Input JSON file. Reads stdin if omitted."`
	Output     string `help:"Write to this file instead of stdout." short:"o"`
	Root       string `help:"Root element name for XML."`
	CSVHeader  string `help:"CSV header mode: union or first." name:"csv-header"`
	XMLKeyCase string `help:"XML element name case: preserve, snake, camel or kebab." name:"xml-key-case"`
	XMLEscape  bool   `help:"Escape XML special characters in text." name:"xml-escape"`
}

func (c *ConvertCmd) Run(ctx *Context) error {
	format, err := converter.ParseFormat(c.To)
	if err != nil {
		return err
	}
	data, err := readInput(ctx, c.Input)
	if err != nil {
		return err
	}
	doc, err := parser.ParseBytes(data)
	if err != nil {
		return err
	}

	opts := ctx.Config.ConverterOptions()
	if c.XMLEscape {
		opts.XMLEscape = true
	}
	out, err := converter.NewConverterWithOptions(opts).Convert(doc.Root, format)
	if err != nil {
		return err
	}
	return writeOutput(ctx, c.Output, out)
}

// FormatCmd pretty-prints JSON
type FormatCmd struct {
	Input    string `arg:"" optional:"" help:"Input JSON file. Reads stdin if omitted."`
	Output   string `help:"Write to this file instead of stdout." short:"o"`
	Indent   int    `help:"Spaces per indentation level." short:"n"`
	SortKeys bool   `help:"Sort object keys." name:"sort-keys"`
	Color    bool   `help:"Colorize the output."`
}

func (c *FormatCmd) Run(ctx *Context) error {
	data, err := readInput(ctx, c.Input)
	if err != nil {
		return err
	}
	f := formatter.NewFormatterWithOptions(ctx.Config.FormatterOptions())
	out, err := f.Format(data)
	if err != nil {
		return err
	}
	if c.Color && !ctx.NoColor && c.Output == "" {
		out = f.Colorize(out)
	}
	return writeOutput(ctx, c.Output, string(out))
}

// MinifyCmd strips whitespace
type MinifyCmd struct {
	Input  string `arg:"" optional:"" help:"Input JSON file. Reads stdin if omitted."`
	Output string `help:"Write to this file instead of stdout." short:"o"`
}

func (c *MinifyCmd) Run(ctx *Context) error {
	data, err := readInput(ctx, c.Input)
	if err != nil {
		return err
	}
	out, err := formatter.NewFormatter().Minify(data)
	if err != nil {
		return err
	}
	return writeOutput(ctx, c.Output, string(out))
}

// ValidateCmd checks well-formedness
type ValidateCmd struct {
	Input string `arg:"" optional:"" help:"Input JSON file. Reads stdin if omitted."`
	Quiet bool   `help:"Print nothing; rely on the exit status." short:"q"`
}

func (c *ValidateCmd) Run(ctx *Context) error {
	data, err := readInput(ctx, c.Input)
	if err != nil {
		return err
	}
	if err := formatter.Validate(data); err != nil {
		return err
	}
	if c.Quiet {
		return nil
	}
	return writeOutput(ctx, "", "valid")
}

// GetCmd extracts a value by path
type GetCmd struct {
	Path  string `arg:"" help:"Path to the value, e.g. users.0.name or users.#.id."`
	Input string `arg:"" optional:"" help:"Input JSON file. Reads stdin if omitted."`
	Raw   bool   `help:"Print strings without quotes." short:"r"`
}

func (c *GetCmd) Run(ctx *Context) error {
	data, err := readInput(ctx, c.Input)
	if err != nil {
		return err
	}
	res, err := query.Get(data, c.Path)
	if err != nil {
		return err
	}
	if !res.Exists {
		return errors.NewQueryError(fmt.Sprintf("no value at path %q", c.Path), nil)
	}
	if c.Raw && res.Value.Kind == models.KindString {
		return writeOutput(ctx, "", res.Value.Str)
	}
	return writeOutput(ctx, "", res.Value.String())
}

// SetCmd stores a value at a path
type SetCmd struct {
	Path   string `arg:"" help:"Path to set, e.g. users.0.name or tags.-1 to append."`
	Value  string `arg:"" help:"New value as JSON text, e.g. 42 or '\"text\"'."`
	Input  string `arg:"" optional:"" help:"Input JSON file. Reads stdin if omitted."`
	Output string `help:"Write to this file instead of stdout." short:"o"`
}

func (c *SetCmd) Run(ctx *Context) error {
	data, err := readInput(ctx, c.Input)
	if err != nil {
		return err
	}
	out, err := query.Set(data, c.Path, c.Value)
	if err != nil {
		return err
	}
	return writeOutput(ctx, c.Output, string(out))
}

// DeleteCmd removes a value at a path
type DeleteCmd struct {
	Path   string `arg:"" help:"Path to delete."`
	Input  string `arg:"" optional:"" help:"Input JSON file. Reads stdin if omitted."`
	Output string `help:"Write to this file instead of stdout." short:"o"`
}

func (c *DeleteCmd) Run(ctx *Context) error {
	data, err := readInput(ctx, c.Input)
	if err != nil {
		return err
	}
	out, err := query.Delete(data, c.Path)
	if err != nil {
		return err
	}
	return writeOutput(ctx, c.Output, string(out))
}

// PasswordCmd generates or checks passwords
type PasswordCmd struct {
	Length           int    `help:"Password length. Defaults to the config value." short:"l"`
	Count            int    `help:"How many passwords to generate." short:"n" default:"1"`
	NoLower          bool   `help:"Leave out lower case letters."`
	NoUpper          bool   `help:"Leave out upper case letters."`
	NoDigits         bool   `help:"Leave out digits."`
	NoSymbols        bool   `help:"Leave out symbols."`
	ExcludeAmbiguous bool   `help:"Leave out characters that look alike (Il1O0o)."`
	Check            string `help:"Check the strength of this password instead of generating one."`
}

func (c *PasswordCmd) Run(ctx *Context) error {
	if c.Check != "" {
		s := password.Check(c.Check)
		lines := []string{fmt.Sprintf("%s (%d/4)", s.Label, s.Score)}
		for _, suggestion := range s.Suggestions {
			lines = append(lines, "- "+suggestion)
		}
		return writeOutput(ctx, "", strings.Join(lines, "\n"))
	}

	if c.Count < 1 {
		return errors.NewInputError("count must be at least 1", nil)
	}

	opts := ctx.Config.PasswordOptions()
	if c.Length > 0 {
		opts.Length = c.Length
	}
	opts.Lower = opts.Lower && !c.NoLower
	opts.Upper = opts.Upper && !c.NoUpper
	opts.Digits = opts.Digits && !c.NoDigits
	opts.Symbols = opts.Symbols && !c.NoSymbols
	opts.ExcludeAmbiguous = opts.ExcludeAmbiguous || c.ExcludeAmbiguous

	gen := password.NewGenerator()
	passwords := make([]string, 0, c.Count)
	for i := 0; i < c.Count; i++ {
		pw, err := gen.Generate(opts)
		if err != nil {
			return errors.NewInputError(err.Error(), err)
		}
		passwords = append(passwords, pw)
	}
	return writeOutput(ctx, "", strings.Join(passwords, "\n"))
}

// ServeCmd runs the HTTP API
type ServeCmd struct {
	Addr string `help:"Listen address. Defaults to the config value." short:"a"`
}

func (c *ServeCmd) Run(ctx *Context) error {
	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return server.New(ctx.Config, ctx.Log).Run(runCtx)
}

// VersionCmd prints the version
type VersionCmd struct{}

func (c *VersionCmd) Run(ctx *Context) error {
	_, err := fmt.Fprintf(ctx.Out, "jsonkit version %s\n", Version)
	return err
}
