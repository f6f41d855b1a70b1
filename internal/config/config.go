package config

import (
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/vango-dev/jsxc/pkg/compiler"
	"github.com/vango-dev/jsxc/pkg/diag"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "jsxc.json"

	// DefaultPort is the default development server port.
	DefaultPort = 4300

	// DefaultHost is the default development server host.
	DefaultHost = "localhost"

	// DefaultInput is the default directory scanned for AST files.
	DefaultInput = "src"

	// DefaultOutput is the default build output directory.
	DefaultOutput = "dist"

	// DefaultCache is the default compile cache directory.
	DefaultCache = ".jsxc-cache"

	// DefaultDebounce is the default delay between a change and a rebuild.
	DefaultDebounce = 100 * time.Millisecond

	// DefaultRegion is used for publishing when no region is configured.
	DefaultRegion = "us-east-1"
)

// Config represents the complete jsxc.json configuration.
type Config struct {
	// Compiler holds the options passed to every compilation.
	Compiler compiler.Options `json:"compiler"`

	// Build contains batch build configuration.
	Build BuildConfig `json:"build"`

	// Publish contains artifact publishing configuration.
	Publish PublishConfig `json:"publish,omitempty"`

	// Dev contains development server configuration.
	Dev DevConfig `json:"dev"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// BuildConfig contains batch build settings.
type BuildConfig struct {
	// Input is the directory containing *.jsx.json AST files.
	Input string `json:"input,omitempty"`

	// Output is the output directory for compiled modules.
	Output string `json:"output,omitempty"`

	// Cache is the compile cache directory. "-" disables caching.
	Cache string `json:"cache,omitempty"`

	// Workers bounds concurrent compilations. 0 uses GOMAXPROCS.
	Workers int `json:"workers,omitempty"`

	// SourceMaps writes a .js.map file next to every module.
	SourceMaps bool `json:"sourceMaps,omitempty"`
}

// PublishConfig contains S3 publishing settings. Publishing is enabled
// when Bucket is set.
type PublishConfig struct {
	Bucket string `json:"bucket,omitempty"`
	Prefix string `json:"prefix,omitempty"`
	Region string `json:"region,omitempty"`

	// Endpoint overrides the S3 endpoint for compatible stores.
	Endpoint string `json:"endpoint,omitempty"`

	// PathStyle forces path-style addressing.
	PathStyle bool `json:"pathStyle,omitempty"`
}

// DevConfig contains development server settings.
type DevConfig struct {
	// Port is the port to run the dev server on.
	Port int `json:"port,omitempty"`

	// Host is the host to bind to.
	Host string `json:"host,omitempty"`

	// Watch lists extra directories to watch besides the build input.
	Watch []string `json:"watch,omitempty"`

	// Debounce is a duration string such as "100ms".
	Debounce string `json:"debounce,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Compiler: compiler.DefaultOptions(),
		Build: BuildConfig{
			Input:  DefaultInput,
			Output: DefaultOutput,
			Cache:  DefaultCache,
		},
		Dev: DevConfig{
			Port:     DefaultPort,
			Host:     DefaultHost,
			Debounce: DefaultDebounce.String(),
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for jsxc.json in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, diag.New("E121").
				WithDetail("No jsxc.json found in " + filepath.Dir(path)).
				WithSuggestion("Run 'jsxc build' from the project root or create jsxc.json")
		}
		return nil, diag.New("E120").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, diag.New("E141").
			WithDetail("Failed to parse jsxc.json: " + err.Error()).
			WithSuggestion("Check that jsxc.json is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return diag.Newf(diag.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return diag.New("E120").Wrap(err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return diag.New("E143").Wrap(err)
	}
	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Compiler.RuntimeModuleName == "" {
		c.Compiler.RuntimeModuleName = compiler.DefaultRuntime
	}
	if c.Compiler.GenerateMode == "" {
		c.Compiler.GenerateMode = compiler.ModeDOM
	}

	if c.Build.Input == "" {
		c.Build.Input = DefaultInput
	}
	if c.Build.Output == "" {
		c.Build.Output = DefaultOutput
	}
	if c.Build.Cache == "" {
		c.Build.Cache = DefaultCache
	}

	if c.Publish.Bucket != "" && c.Publish.Region == "" {
		c.Publish.Region = DefaultRegion
	}

	if c.Dev.Port == 0 {
		c.Dev.Port = DefaultPort
	}
	if c.Dev.Host == "" {
		c.Dev.Host = DefaultHost
	}
	if c.Dev.Debounce == "" {
		c.Dev.Debounce = DefaultDebounce.String()
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := c.Compiler.Validate(); err != nil {
		return err
	}
	if c.Dev.Port < 0 || c.Dev.Port > 65535 {
		return diag.New("E120").
			WithDetail("dev.port must be between 0 and 65535")
	}
	if c.Build.Workers < 0 {
		return diag.New("E120").
			WithDetail("build.workers must not be negative")
	}
	if _, err := c.DebounceDuration(); err != nil {
		return diag.New("E120").
			WithDetailf("dev.debounce %q is not a duration", c.Dev.Debounce).
			WithSuggestion(`Use a Go duration such as "100ms"`).
			Wrap(err)
	}
	return nil
}

// DebounceDuration parses Dev.Debounce.
func (c *Config) DebounceDuration() (time.Duration, error) {
	if c.Dev.Debounce == "" {
		return DefaultDebounce, nil
	}
	return time.ParseDuration(c.Dev.Debounce)
}

// DevAddress returns the address string for the dev server.
func (c *Config) DevAddress() string {
	return net.JoinHostPort(c.Dev.Host, strconv.Itoa(c.Dev.Port))
}

// DevURL returns the full URL for the dev server.
func (c *Config) DevURL() string {
	return "http://" + c.DevAddress()
}

// InputPath returns the absolute path to the build input directory.
func (c *Config) InputPath() string {
	return c.resolve(c.Build.Input)
}

// OutputPath returns the absolute path to the build output directory.
func (c *Config) OutputPath() string {
	return c.resolve(c.Build.Output)
}

// CachePath returns the cache directory, or "" when caching is disabled.
func (c *Config) CachePath() string {
	if c.Build.Cache == "-" {
		return ""
	}
	return c.resolve(c.Build.Cache)
}

// WatchPaths returns the directories the dev server polls.
func (c *Config) WatchPaths() []string {
	paths := []string{c.InputPath()}
	for _, w := range c.Dev.Watch {
		paths = append(paths, c.resolve(w))
	}
	return paths
}

// Publishing reports whether built modules are published to S3.
func (c *Config) Publishing() bool {
	return c.Publish.Bucket != ""
}

func (c *Config) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Dir(), path)
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing jsxc.json, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", diag.New("E121").
				WithDetail("No jsxc.json found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the current working directory.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		return nil, err
	}
	return Load(root)
}
