package main

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/sirupsen/logrus"

	"github.com/mcncl/jsonkit/internal/config"
	"github.com/mcncl/jsonkit/internal/errors"
	"github.com/mcncl/jsonkit/internal/logging"
	"github.com/mcncl/jsonkit/internal/parser"
)

// CLI defines the command-line interface
type CLI struct {
	Config   string `help:"Path to config file. Defaults to the nearest .jsonkit.yml." short:"c"`
	Debug    bool   `help:"Enable debug logging. Overrides --log-level." short:"d"`
	LogLevel string `help:"Log level: debug, info, warn or error. Defaults to the config value." name:"log-level"`
	NoColor  bool   `help:"Disable colored output." name:"no-color"`

	Diff     DiffCmd     `cmd:"" help:"Show structural differences between two JSON documents."`
	Convert  ConvertCmd  `cmd:"" help:"Convert JSON to CSV, XML or YAML."`
	Format   FormatCmd   `cmd:"" help:"Pretty-print JSON."`
	Minify   MinifyCmd   `cmd:"" help:"Strip insignificant whitespace from JSON."`
	Validate ValidateCmd `cmd:"" help:"Check that the input is a single well-formed JSON document."`
	Get      GetCmd      `cmd:"" help:"Extract a value with a path such as users.0.name."`
	Set      SetCmd      `cmd:"" help:"Set the value at a path."`
	Delete   DeleteCmd   `cmd:"" help:"Delete the value at a path."`
	Password PasswordCmd `cmd:"" help:"Generate passwords or check the strength of one."`
	Serve    ServeCmd    `cmd:"" help:"Run the HTTP API."`
	Version  VersionCmd  `cmd:"" help:"Show version information."`
}

// Context holds the runtime context passed to every command
type Context struct {
	Config  *config.Config
	Log     *logrus.Logger
	In      io.Reader
	Out     io.Writer
	Err     io.Writer
	NoColor bool
}

// Version information
const (
	Version = "0.1.0"
)

// errDifferencesFound makes `diff --exit-code` exit non-zero without printing
// anything extra.
var errDifferencesFound = stderrors.New("differences found")

func main() {
	err := execute(os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	if err == nil {
		return
	}
	if !stderrors.Is(err, errDifferencesFound) {
		// Use our custom error handling to provide user-friendly error messages
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
	}
	os.Exit(1)
}

// execute parses args, loads configuration and runs the selected command.
func execute(args []string, in io.Reader, out, errOut io.Writer) error {
	var cli CLI
	app, err := kong.New(&cli,
		kong.Name("jsonkit"),
		kong.Description("A toolbox for JSON documents: diff, convert, format and query."),
		kong.UsageOnError(),
		kong.Writers(out, errOut),
	)
	if err != nil {
		return err
	}

	kctx, err := app.Parse(args)
	if err != nil {
		return errors.NewInputError(err.Error(), nil)
	}

	configPath := cli.Config
	if configPath == "" {
		configPath = config.FindConfigFile()
	}
	cfg, err := config.LoadConfigWithCLI(configPath, cli.overrides(kctx.Command()))
	if err != nil {
		return errors.NewConfigError(fmt.Sprintf("failed to load configuration: %v", err), err)
	}

	log := logging.NewWithWriter(cfg.Logging, errOut)
	if configPath != "" {
		log.WithField("path", configPath).Debug("loaded config file")
	}

	return kctx.Run(&Context{
		Config:  cfg,
		Log:     log,
		In:      in,
		Out:     out,
		Err:     errOut,
		NoColor: cli.NoColor,
	})
}

// overrides collects flags that take precedence over the config file.
func (c *CLI) overrides(command string) config.Overrides {
	o := config.Overrides{Debug: c.Debug, LogLevel: c.LogLevel}

	name := ""
	if fields := strings.Fields(command); len(fields) > 0 {
		name = fields[0]
	}
	switch name {
	case "diff":
		o.Ignore = c.Diff.Ignore
	case "convert":
		o.RootName = c.Convert.Root
		o.CSVHeader = c.Convert.CSVHeader
		o.XMLKeyCase = c.Convert.XMLKeyCase
	case "format":
		o.Indent = c.Format.Indent
		o.SortKeys = c.Format.SortKeys
	case "serve":
		o.Addr = c.Serve.Addr
	}
	return o
}

// readInput reads JSON from a file, or from stdin when path is empty or "-"
func readInput(ctx *Context, path string) ([]byte, error) {
	if path != "" && path != "-" {
		return parser.ReadFile(path)
	}

	// Check if stdin has data
	if f, ok := ctx.In.(*os.File); ok {
		info, err := f.Stat()
		if err != nil {
			return nil, errors.NewInputError("failed to access stdin", err)
		}
		if info.Mode()&os.ModeCharDevice != 0 {
			// Terminal is interactive (not piped)
			return nil, errors.NewInputError("no input provided", errors.ErrNoInput)
		}
	}

	data, err := io.ReadAll(ctx.In)
	if err != nil {
		return nil, errors.NewInputError("failed to read from stdin", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.NewInputError("empty input received from stdin", errors.ErrEmptyInput)
	}
	return data, nil
}

// writeOutput writes content to a file or, when path is empty, to stdout
func writeOutput(ctx *Context, path, content string) error {
	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}

	if path != "" {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", path), err)
		}
		ctx.Log.WithField("path", path).Info("output written")
		return nil
	}

	if _, err := io.WriteString(ctx.Out, content); err != nil {
		return errors.NewOutputError("failed to write to stdout", err)
	}
	return nil
}
