package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcncl/jsonkit/internal/converter"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	tmpFile, err := os.CreateTemp(t.TempDir(), "config_test_*.yml")
	require.NoError(t, err)

	_, err = tmpFile.WriteString(content)
	require.NoError(t, err)
	_ = tmpFile.Close()
	return tmpFile.Name()
}

func TestConfig_DefaultValues(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, "text", cfg.Diff.Output)
	assert.Empty(t, cfg.Diff.IgnorePatterns)
	assert.Equal(t, "root", cfg.Convert.RootName)
	assert.Equal(t, "union", cfg.Convert.CSVHeader)
	assert.Equal(t, "preserve", cfg.Convert.XMLKeyCase)
	assert.Equal(t, 2, cfg.Format.Indent)
	assert.Equal(t, 16, cfg.Password.Length)
	assert.Equal(t, 5*time.Minute, cfg.Captcha.TTL)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "info", cfg.Logging.Level)

	require.NoError(t, cfg.Validate())
}

func TestConfig_LoadFromYAML(t *testing.T) {
	yamlContent := `
diff:
  ignore_patterns:
    - "^meta\\."
    - "\\.updated_at$"
  output: json
convert:
  root_name: document
  csv_header: first
  xml_key_case: snake
  xml_escape: true
  yaml_indent: 4
format:
  indent: 4
  sort_keys: true
password:
  length: 24
  symbols: false
captcha:
  ttl: 90s
server:
  addr: "127.0.0.1:9000"
  max_body_bytes: 4096
logging:
  level: debug
  format: json
`
	cfg, err := LoadConfig(writeTempConfig(t, yamlContent))
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.Diff.Output)
	assert.Equal(t, []string{`^meta\.`, `\.updated_at$`}, cfg.Diff.IgnorePatterns)
	assert.Equal(t, "document", cfg.Convert.RootName)
	assert.Equal(t, "first", cfg.Convert.CSVHeader)
	assert.Equal(t, "snake", cfg.Convert.XMLKeyCase)
	assert.True(t, cfg.Convert.XMLEscape)
	assert.Equal(t, 4, cfg.Convert.YAMLIndent)
	assert.Equal(t, 4, cfg.Format.Indent)
	assert.True(t, cfg.Format.SortKeys)
	assert.Equal(t, 24, cfg.Password.Length)
	assert.False(t, cfg.Password.Symbols)
	assert.True(t, cfg.Password.Lower, "unset keys keep their defaults")
	assert.Equal(t, 90*time.Second, cfg.Captcha.TTL)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, int64(4096), cfg.Server.MaxBodyBytes)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)

	assert.True(t, cfg.Diff.ShouldIgnore("meta.version"))
	assert.True(t, cfg.Diff.ShouldIgnore("items[0].updated_at"))
	assert.False(t, cfg.Diff.ShouldIgnore("name"))
}

func TestConfig_LoadNonExistentFile(t *testing.T) {
	_, err := LoadConfig("/non/existent/config.yml")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestConfig_LoadInvalidYAML(t *testing.T) {
	invalidYAML := `
diff:
  ignore_patterns: [unclosed array
`
	_, err := LoadConfig(writeTempConfig(t, invalidYAML))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestConfig_InvalidPattern(t *testing.T) {
	_, err := LoadConfig(writeTempConfig(t, "diff:\n  ignore_patterns: [\"[invalid regex\"]\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid ignore pattern")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"diff output", func(c *Config) { c.Diff.Output = "html" }, "invalid diff output"},
		{"csv header", func(c *Config) { c.Convert.CSVHeader = "all" }, "invalid csv_header"},
		{"xml key case", func(c *Config) { c.Convert.XMLKeyCase = "upper" }, "invalid xml_key_case"},
		{"yaml indent", func(c *Config) { c.Convert.YAMLIndent = 0 }, "invalid yaml_indent"},
		{"format indent", func(c *Config) { c.Format.Indent = 40 }, "invalid format indent"},
		{"password length", func(c *Config) { c.Password.Length = 2 }, "invalid password length"},
		{"body limit", func(c *Config) { c.Server.MaxBodyBytes = 0 }, "invalid max_body_bytes"},
		{"log level", func(c *Config) { c.Logging.Level = "trace" }, "invalid log level"},
		{"log format", func(c *Config) { c.Logging.Format = "xml" }, "invalid log format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_FindConfigFile(t *testing.T) {
	tmpDir := t.TempDir()

	// Create nested directory
	nestedDir := filepath.Join(tmpDir, "project", "subdir")
	require.NoError(t, os.MkdirAll(nestedDir, 0o755))

	// Create config file in project root
	configPath := filepath.Join(tmpDir, "project", ".jsonkit.yml")
	require.NoError(t, os.WriteFile(configPath, []byte("convert:\n  root_name: found\n"), 0o644))

	originalWd, err := os.Getwd()
	require.NoError(t, err)
	defer func() { _ = os.Chdir(originalWd) }()
	require.NoError(t, os.Chdir(nestedDir))

	// Should find it in parent directory
	foundPath := FindConfigFile()
	require.NotEmpty(t, foundPath, "Should find config file")

	cfg, err := LoadConfig(foundPath)
	require.NoError(t, err)
	assert.Equal(t, "found", cfg.Convert.RootName)
}

func TestConfig_FindConfigFileNotFound(t *testing.T) {
	tmpDir := t.TempDir()

	originalWd, err := os.Getwd()
	require.NoError(t, err)
	defer func() { _ = os.Chdir(originalWd) }()
	require.NoError(t, os.Chdir(tmpDir))

	assert.Empty(t, FindConfigFile())
}

func TestDiffConfig_ShouldIgnoreLazyCompile(t *testing.T) {
	d := DiffConfig{IgnorePatterns: []string{`\.id$`, "[invalid regex"}}

	// Bad patterns are skipped rather than panicking
	assert.True(t, d.ShouldIgnore("user.id"))
	assert.False(t, d.ShouldIgnore("user.name"))
}

func TestConfig_OptionMapping(t *testing.T) {
	cfg := NewConfig()
	cfg.Convert.CSVHeader = "first"
	cfg.Convert.XMLKeyCase = "kebab"
	cfg.Format.SortKeys = true
	cfg.Password.Symbols = false

	conv := cfg.ConverterOptions()
	assert.Equal(t, converter.HeaderFirst, conv.CSVHeader)
	assert.Equal(t, converter.KeyCaseKebab, conv.XMLKeyCase)
	assert.Equal(t, "root", conv.RootName)

	assert.True(t, cfg.FormatterOptions().SortKeys)
	assert.False(t, cfg.PasswordOptions().Symbols)
	assert.Equal(t, 16, cfg.PasswordOptions().Length)
}

func TestLoadConfigWithPrecedence(t *testing.T) {
	configYAML := `
convert:
  root_name: fromfile
  csv_header: first
format:
  indent: 4
diff:
  ignore_patterns: ["^meta"]
`
	cfg, err := LoadConfigWithCLI(writeTempConfig(t, configYAML), Overrides{
		RootName: "fromcli",
		Ignore:   []string{"id$"},
		Debug:    true,
	})
	require.NoError(t, err)

	// Verify precedence: CLI > config file > defaults
	assert.Equal(t, "fromcli", cfg.Convert.RootName)
	assert.Equal(t, "first", cfg.Convert.CSVHeader)
	assert.Equal(t, 4, cfg.Format.Indent)
	assert.Equal(t, []string{"^meta", "id$"}, cfg.Diff.IgnorePatterns)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "preserve", cfg.Convert.XMLKeyCase)
}

func TestLoadConfigWithCLI_LogLevel(t *testing.T) {
	path := writeTempConfig(t, "logging:\n  level: error\n")

	tests := []struct {
		name      string
		overrides Overrides
		want      string
		wantErr   bool
	}{
		{name: "file value kept", overrides: Overrides{}, want: "error"},
		{name: "flag beats file", overrides: Overrides{LogLevel: "warn"}, want: "warn"},
		{name: "debug beats flag", overrides: Overrides{LogLevel: "warn", Debug: true}, want: "debug"},
		{name: "invalid flag", overrides: Overrides{LogLevel: "loud"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfigWithCLI(path, tt.overrides)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "invalid log level")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Logging.Level)
		})
	}
}

func TestLoadConfigWithPrecedence_NoFile(t *testing.T) {
	cfg, err := LoadConfigWithCLI("", Overrides{})
	require.NoError(t, err)
	assert.Equal(t, NewConfig().Convert, cfg.Convert)

	_, err = LoadConfigWithCLI("", Overrides{CSVHeader: "bogus"})
	assert.Error(t, err)
}
