package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mcncl/jsonkit/internal/converter"
	"github.com/mcncl/jsonkit/internal/formatter"
	"github.com/mcncl/jsonkit/internal/password"
)

// Config represents the complete configuration for jsonkit
type Config struct {
	Diff     DiffConfig     `yaml:"diff"`
	Convert  ConvertConfig  `yaml:"convert"`
	Format   FormatConfig   `yaml:"format"`
	Password PasswordConfig `yaml:"password"`
	Captcha  CaptchaConfig  `yaml:"captcha"`
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DiffConfig controls structural comparison
type DiffConfig struct {
	// IgnorePatterns are regular expressions matched against record paths
	// such as "meta.updated_at" or "items[0].id".
	IgnorePatterns []string `yaml:"ignore_patterns"`
	Output         string   `yaml:"output"` // text or json

	// compiled regexes (not serialized)
	ignore []*regexp.Regexp
}

// ConvertConfig controls CSV/XML/YAML conversion
type ConvertConfig struct {
	RootName   string `yaml:"root_name"`
	CSVHeader  string `yaml:"csv_header"`   // union or first
	XMLKeyCase string `yaml:"xml_key_case"` // preserve, snake, camel or kebab
	XMLEscape  bool   `yaml:"xml_escape"`
	YAMLIndent int    `yaml:"yaml_indent"`
}

// FormatConfig controls pretty-printing
type FormatConfig struct {
	Indent   int  `yaml:"indent"`
	SortKeys bool `yaml:"sort_keys"`
	Width    int  `yaml:"width"`
}

// PasswordConfig holds the defaults for generated passwords
type PasswordConfig struct {
	Length           int  `yaml:"length"`
	Lower            bool `yaml:"lower"`
	Upper            bool `yaml:"upper"`
	Digits           bool `yaml:"digits"`
	Symbols          bool `yaml:"symbols"`
	ExcludeAmbiguous bool `yaml:"exclude_ambiguous"`
}

// CaptchaConfig controls arithmetic challenges
type CaptchaConfig struct {
	TTL time.Duration `yaml:"ttl"`
}

// ServerConfig controls the HTTP API
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"`
}

// LoggingConfig controls log output
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn or error
	Format string `yaml:"format"` // text or json
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	conv := converter.DefaultOptions()
	fmtOpts := formatter.DefaultOptions()
	pw := password.DefaultOptions()

	return &Config{
		Diff: DiffConfig{
			IgnorePatterns: []string{},
			Output:         "text",
		},
		Convert: ConvertConfig{
			RootName:   conv.RootName,
			CSVHeader:  string(conv.CSVHeader),
			XMLKeyCase: string(conv.XMLKeyCase),
			YAMLIndent: conv.YAMLIndent,
		},
		Format: FormatConfig{
			Indent: fmtOpts.Indent,
			Width:  fmtOpts.Width,
		},
		Password: PasswordConfig{
			Length:  pw.Length,
			Lower:   pw.Lower,
			Upper:   pw.Upper,
			Digits:  pw.Digits,
			Symbols: pw.Symbols,
		},
		Captcha: CaptchaConfig{
			TTL: 5 * time.Minute,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 5 * time.Second,
			MaxBodyBytes:    1 << 20,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults
	cfg := NewConfig()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	configNames := []string{".jsonkit.yml", ".jsonkit.yaml", "jsonkit.yml", "jsonkit.yaml"}

	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	// Search up the directory tree
	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root directory
			break
		}
		currentDir = parentDir
	}

	return ""
}

// Validate checks enumerated settings and compiles the ignore patterns
func (c *Config) Validate() error {
	if err := c.compilePatterns(); err != nil {
		return fmt.Errorf("failed to compile patterns: %w", err)
	}

	if !oneOf(c.Diff.Output, "text", "json") {
		return fmt.Errorf("invalid diff output %q: must be text or json", c.Diff.Output)
	}
	if !oneOf(c.Convert.CSVHeader, string(converter.HeaderUnion), string(converter.HeaderFirst)) {
		return fmt.Errorf("invalid csv_header %q: must be union or first", c.Convert.CSVHeader)
	}
	if !oneOf(c.Convert.XMLKeyCase,
		string(converter.KeyCasePreserve), string(converter.KeyCaseSnake),
		string(converter.KeyCaseCamel), string(converter.KeyCaseKebab)) {
		return fmt.Errorf("invalid xml_key_case %q: must be preserve, snake, camel or kebab", c.Convert.XMLKeyCase)
	}
	if c.Convert.YAMLIndent < 1 || c.Convert.YAMLIndent > 9 {
		return fmt.Errorf("invalid yaml_indent %d: must be between 1 and 9", c.Convert.YAMLIndent)
	}
	if c.Format.Indent < 1 || c.Format.Indent > 16 {
		return fmt.Errorf("invalid format indent %d: must be between 1 and 16", c.Format.Indent)
	}
	if c.Password.Length < password.MinLength || c.Password.Length > password.MaxLength {
		return fmt.Errorf("invalid password length %d: must be between %d and %d",
			c.Password.Length, password.MinLength, password.MaxLength)
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("invalid max_body_bytes %d: must be positive", c.Server.MaxBodyBytes)
	}
	if !oneOf(c.Logging.Level, "debug", "info", "warn", "error") {
		return fmt.Errorf("invalid log level %q: must be debug, info, warn or error", c.Logging.Level)
	}
	if !oneOf(c.Logging.Format, "text", "json") {
		return fmt.Errorf("invalid log format %q: must be text or json", c.Logging.Format)
	}
	return nil
}

// compilePatterns compiles all regex patterns in the config
func (c *Config) compilePatterns() error {
	c.Diff.ignore = c.Diff.ignore[:0]
	for _, pattern := range c.Diff.IgnorePatterns {
		regex, err := regexp.Compile(pattern)
		if err != nil {
			return fmt.Errorf("invalid ignore pattern '%s': %w", pattern, err)
		}
		c.Diff.ignore = append(c.Diff.ignore, regex)
	}
	return nil
}

// ShouldIgnore checks if a diff path matches any ignore pattern
func (d *DiffConfig) ShouldIgnore(path string) bool {
	if len(d.ignore) != len(d.IgnorePatterns) {
		// Patterns added after Validate; compile lazily and skip bad ones.
		d.ignore = d.ignore[:0]
		for _, pattern := range d.IgnorePatterns {
			if regex, err := regexp.Compile(pattern); err == nil {
				d.ignore = append(d.ignore, regex)
			}
		}
	}
	for _, regex := range d.ignore {
		if regex.MatchString(path) {
			return true
		}
	}
	return false
}

// ConverterOptions maps the convert section onto converter options
func (c *Config) ConverterOptions() converter.Options {
	return converter.Options{
		RootName:   c.Convert.RootName,
		CSVHeader:  converter.HeaderMode(c.Convert.CSVHeader),
		XMLKeyCase: converter.KeyCase(c.Convert.XMLKeyCase),
		XMLEscape:  c.Convert.XMLEscape,
		YAMLIndent: c.Convert.YAMLIndent,
	}
}

// FormatterOptions maps the format section onto formatter options
func (c *Config) FormatterOptions() formatter.Options {
	return formatter.Options{
		Indent:   c.Format.Indent,
		SortKeys: c.Format.SortKeys,
		Width:    c.Format.Width,
	}
}

// PasswordOptions maps the password section onto generator options
func (c *Config) PasswordOptions() password.Options {
	return password.Options{
		Length:           c.Password.Length,
		Lower:            c.Password.Lower,
		Upper:            c.Password.Upper,
		Digits:           c.Password.Digits,
		Symbols:          c.Password.Symbols,
		ExcludeAmbiguous: c.Password.ExcludeAmbiguous,
	}
}

// Overrides carries values given on the command line. Zero values mean
// "not set".
type Overrides struct {
	RootName   string
	CSVHeader  string
	XMLKeyCase string
	Indent     int
	SortKeys   bool
	Ignore     []string
	LogLevel   string
	Addr       string
	Debug      bool
}

// LoadConfigWithCLI loads config with CLI argument precedence: defaults,
// then the config file (if any), then non-zero overrides.
func LoadConfigWithCLI(configPath string, o Overrides) (*Config, error) {
	cfg := NewConfig()

	if configPath != "" {
		fileConfig, err := LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileConfig
	}

	if o.RootName != "" {
		cfg.Convert.RootName = o.RootName
	}
	if o.CSVHeader != "" {
		cfg.Convert.CSVHeader = o.CSVHeader
	}
	if o.XMLKeyCase != "" {
		cfg.Convert.XMLKeyCase = o.XMLKeyCase
	}
	if o.Indent > 0 {
		cfg.Format.Indent = o.Indent
	}
	if o.SortKeys {
		cfg.Format.SortKeys = true
	}
	cfg.Diff.IgnorePatterns = append(cfg.Diff.IgnorePatterns, o.Ignore...)
	if o.LogLevel != "" {
		cfg.Logging.Level = o.LogLevel
	}
	if o.Addr != "" {
		cfg.Server.Addr = o.Addr
	}
	// --debug wins over --log-level
	if o.Debug {
		cfg.Logging.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func oneOf(v string, allowed ...string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
