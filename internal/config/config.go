// Package config handles application configuration and command-line argument parsing.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/alexflint/go-arg"
	"gopkg.in/yaml.v3"

	"github.com/joe/coverframe/internal/catalog"
	"github.com/joe/coverframe/pkg/filesystem"
)

// Exported errors.
var (
	// ErrConfigCreated is returned when a missing config file was written with
	// defaults; the user fills it out and runs again
	ErrConfigCreated = errors.New("config file created")
	ErrNoServer      = errors.New("server not set")
)

// Defaults applied when neither flag nor file sets a value.
const (
	DefaultConfigPath = "config.yaml"
	DefaultInterval   = 5 * time.Minute
	DefaultOutput     = "cover"
)

// Config holds the application configuration
type Config struct {
	ConfigPath string             `arg:"-c,--config" default:"config.yaml" help:"Path to the YAML config file"`
	Init       bool               `arg:"--init" help:"Write a default config file and exit"`
	Once       bool               `arg:"--once" help:"Run a single cycle and exit"`
	Interval   time.Duration      `arg:"--interval" default:"5m" help:"Time between cycles"`
	Sort       *catalog.SortOrder `arg:"--sort" help:"Sort order, overrides the config file: in_order|reverse|random"`
	Output     string             `arg:"-o,--output" default:"cover" help:"Base path of the local image file, the extension is appended"`
	Console    bool               `arg:"--console" default:"true" help:"Print each selection to the terminal"`
	LogLevel   string             `arg:"--log-level" default:"info" help:"Log level: debug|info|warn|error"`
	LogFormat  string             `arg:"--log-format" default:"text" help:"Log format: text|json"`
	LogOutput  string             `arg:"--log-output" default:"stderr" help:"Log destination: stdout|stderr|<file>"`

	// Resolved from the config file by PostProcessConfig
	File     *FileConfig         `arg:"-"`
	Target   *filesystem.Target  `arg:"-"`
	Order    catalog.SortOrder   `arg:"-"`
	Matchers []catalog.MatchRule `arg:"-"`
}

// Description returns the program description for go-arg
func (Config) Description() string {
	return "Cycles through cover images found on a remote server"
}

// Version returns the version string for go-arg
func (Config) Version() string {
	return "coverframe 1.0.0"
}

// ParseFlags parses command-line flags and returns configuration
func ParseFlags() (*Config, error) {
	cfg := &Config{
		ConfigPath: DefaultConfigPath,
		Interval:   DefaultInterval,
		Output:     DefaultOutput,
		Console:    true,
		LogLevel:   "info",
		LogFormat:  "text",
		LogOutput:  "stderr",
	}

	arg.MustParse(cfg)

	return PostProcessConfig(cfg)
}

// PostProcessConfig loads the config file named by cfg and resolves it into
// a target, match rules and a sort order. Every configuration error surfaces
// here, before any connection is opened.
//
// A missing config file is created with defaults and ErrConfigCreated is
// returned, as is the case for --init.
func PostProcessConfig(cfg *Config) (*Config, error) {
	if cfg.Init {
		if err := WriteDefault(cfg.ConfigPath); err != nil {
			return nil, err
		}

		return nil, fmt.Errorf("%w: %s", ErrConfigCreated, cfg.ConfigPath)
	}

	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("%w: interval must be positive, got %s", catalog.ErrInvalidConfig, cfg.Interval)
	}

	if strings.TrimSpace(cfg.Output) == "" {
		return nil, fmt.Errorf("%w: output path is empty", catalog.ErrInvalidConfig)
	}

	file, err := LoadFile(cfg.ConfigPath)
	if errors.Is(err, os.ErrNotExist) {
		if err := WriteDefault(cfg.ConfigPath); err != nil {
			return nil, err
		}

		return nil, fmt.Errorf("%w: %s", ErrConfigCreated, cfg.ConfigPath)
	}

	if err != nil {
		return nil, err
	}

	cfg.File = file

	if err := cfg.resolve(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (cfg *Config) resolve() error {
	target, err := resolveTarget(cfg.File)
	if err != nil {
		return err
	}

	cfg.Target = target

	switch {
	case cfg.Sort != nil:
		cfg.Order = *cfg.Sort
	case cfg.File.SortOrder != "":
		cfg.Order, err = catalog.ParseSortOrder(cfg.File.SortOrder)
		if err != nil {
			return err
		}
	default:
		// Random unless configured otherwise
		cfg.Order = catalog.Random
	}

	rules := cfg.File.Rules()
	if len(rules) == 0 {
		return fmt.Errorf("%w: no matchers or base_dirs configured", catalog.ErrInvalidConfig)
	}

	for i := range rules {
		rules[i].Root = resolveRoot(target.Path, rules[i].Root)
	}

	cfg.Matchers = rules

	return nil
}

// resolveTarget builds the Target from the file's server address, folding in
// separately configured credentials.
func resolveTarget(file *FileConfig) (*filesystem.Target, error) {
	server := strings.TrimSpace(file.Server)
	if server == "" {
		return nil, fmt.Errorf("%w: %w, update the config file", catalog.ErrInvalidConfig, ErrNoServer)
	}

	if file.User != "" && strings.Contains(server, "://") {
		u, err := url.Parse(server)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid server URL: %w", catalog.ErrInvalidConfig, err)
		}

		if u.User == nil {
			if file.Password != "" {
				u.User = url.UserPassword(file.User, file.Password)
			} else {
				u.User = url.User(file.User)
			}

			server = u.String()
		}
	}

	target, err := filesystem.ParseTarget(server)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", catalog.ErrInvalidConfig, err)
	}

	return target, nil
}

// resolveRoot joins a relative matcher root onto the target's base path.
// Absolute roots are used as given.
func resolveRoot(base, root string) string {
	if path.IsAbs(root) || base == "" {
		return root
	}

	return path.Join(base, root)
}

// FileConfig is the on-disk configuration
type FileConfig struct {
	Server     string              `yaml:"server"`
	User       string              `yaml:"user,omitempty"`
	Password   string              `yaml:"password,omitempty"`
	SortOrder  string              `yaml:"sort_order"`
	Extensions []string            `yaml:"extensions,omitempty"`
	ListRate   float64             `yaml:"list_rate,omitempty"`
	Matchers   []catalog.MatchRule `yaml:"matchers"`

	// Flat keys from the older config format. Each base dir becomes one
	// matcher sharing the other three lists.
	FTPServer   string   `yaml:"ftp_server,omitempty"`
	FTPUser     string   `yaml:"ftp_user_name,omitempty"`
	FTPPassword string   `yaml:"ftp_user_password,omitempty"`
	BaseDirs    []string `yaml:"base_dirs,omitempty"`
	CoverDirs   []string `yaml:"cover_dirs,omitempty"`
	Include     []string `yaml:"include,omitempty"`
	Exclude     []string `yaml:"exclude,omitempty"`
}

// LoadFile reads and decodes a config file. JSON files decode too.
func LoadFile(filePath string) (*FileConfig, error) {
	data, err := os.ReadFile(filePath) //nolint:gosec // Path comes from the user
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return ParseFile(data)
}

// ParseFile decodes config data and folds legacy keys into the current ones.
func ParseFile(data []byte) (*FileConfig, error) {
	var file FileConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config file: %w", catalog.ErrInvalidConfig, err)
	}

	if file.ListRate < 0 {
		return nil, fmt.Errorf("%w: list_rate must not be negative", catalog.ErrInvalidConfig)
	}

	file.upgradeLegacy()

	return &file, nil
}

func (f *FileConfig) upgradeLegacy() {
	if f.Server == "" && f.FTPServer != "" {
		f.Server = f.FTPServer
		if !strings.Contains(f.Server, "://") {
			f.Server = "ftp://" + f.Server
		}
	}

	if f.User == "" {
		f.User = f.FTPUser
	}

	if f.Password == "" {
		f.Password = f.FTPPassword
	}
}

// Rules returns the configured matchers followed by one matcher per legacy
// base dir. Legacy include and exclude entries are plain substrings, so they
// are quoted into literal patterns.
func (f *FileConfig) Rules() []catalog.MatchRule {
	rules := make([]catalog.MatchRule, 0, len(f.Matchers)+len(f.BaseDirs))
	rules = append(rules, f.Matchers...)

	include := quoteAll(f.Include)
	exclude := quoteAll(f.Exclude)

	for _, dir := range f.BaseDirs {
		rules = append(rules, catalog.MatchRule{
			Root:      dir,
			Include:   include,
			Exclude:   exclude,
			CoverDirs: f.CoverDirs,
		})
	}

	return rules
}

func quoteAll(substrings []string) []string {
	if substrings == nil {
		return nil
	}

	quoted := make([]string, 0, len(substrings))
	for _, s := range substrings {
		quoted = append(quoted, regexp.QuoteMeta(s))
	}

	return quoted
}

// DefaultFile returns the config written by --init.
func DefaultFile() *FileConfig {
	return &FileConfig{
		Server:     "",
		SortOrder:  catalog.Random.String(),
		Extensions: append([]string(nil), catalog.DefaultExtensions...),
		Matchers: []catalog.MatchRule{{
			Root:      "Media/Games",
			CoverDirs: []string{"Covers"},
		}},
	}
}

// WriteDefault writes DefaultFile to filePath, refusing to overwrite.
func WriteDefault(filePath string) error {
	data, err := yaml.Marshal(DefaultFile())
	if err != nil {
		return fmt.Errorf("failed to encode default config: %w", err)
	}

	f, err := os.OpenFile(filePath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600) //nolint:gosec,mnd // Holds credentials
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write config file: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
