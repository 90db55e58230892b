package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// EnvDB overrides the database location.
	EnvDB = "RUSK_DB"
	// DirName is the per-user directory holding the database and config file.
	DirName = ".rusk"
	// DBName is the database file name used when only a directory is given.
	DBName = "tasks.json"
	// FileName is the optional config file inside DirName.
	FileName = "config.yml"

	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"

	minMaxWidth = 20
)

// Config is the resolved settings of one invocation.
type Config struct {
	DB         string  `yaml:"db"`
	Display    Display `yaml:"display"`
	SeedSample bool    `yaml:"seed_sample"`

	ShowPaths bool `yaml:"-"`
	Verbose   bool `yaml:"-"`
}

type Display struct {
	LeftMargin  int    `yaml:"left_margin"`
	RightMargin int    `yaml:"right_margin"`
	MaxWidth    int    `yaml:"max_width"`
	Color       string `yaml:"color"`
}

// Validate ensures the config meets required structure.
func (c *Config) Validate() error {
	if c.Display.LeftMargin < 0 {
		return fmt.Errorf("config.display.left_margin must not be negative")
	}
	if c.Display.RightMargin < 0 {
		return fmt.Errorf("config.display.right_margin must not be negative")
	}
	if c.Display.MaxWidth < minMaxWidth {
		return fmt.Errorf("config.display.max_width must be at least %d", minMaxWidth)
	}
	if c.Display.LeftMargin+c.Display.RightMargin >= c.Display.MaxWidth {
		return fmt.Errorf("config.display margins leave no room within max_width %d", c.Display.MaxWidth)
	}
	switch c.Display.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("config.display.color must be one of %s, %s, %s", ColorAuto, ColorAlways, ColorNever)
	}
	return nil
}

// Path returns the config file path under home.
func Path(home string) string {
	return filepath.Join(home, DirName, FileName)
}

// DefaultDB returns the database path used when nothing overrides it.
func DefaultDB(home string) string {
	return filepath.Join(home, DirName, DBName)
}

// Default returns the built-in settings.
func Default() *Config {
	var cfg Config
	_ = yaml.NewDecoder(bytes.NewBufferString(defaultTemplate)).Decode(&cfg)
	return &cfg
}

// FromYAML parses and validates config from raw YAML bytes. Keys absent
// from data keep their default values.
func FromYAML(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("invalid config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOptional reads the config at path. A missing file yields the defaults
// unless required is set.
func LoadOptional(fs afero.Fs, path string, required bool) (*Config, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return Default(), nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := FromYAML(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// HomeDir returns the user's home directory, or "." when it is unknown.
func HomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return home
}

// ExpandHome replaces a leading ~ with home.
func ExpandHome(p, home string) string {
	if p == "~" {
		return home
	}
	if strings.HasPrefix(p, "~/") || strings.HasPrefix(p, "~"+string(filepath.Separator)) {
		return filepath.Join(home, p[2:])
	}
	return p
}

// ResolveDB turns a configured location into the database file path. An
// existing directory, or a value ending in a separator, selects tasks.json
// inside it. An empty value selects the default.
func ResolveDB(fs afero.Fs, value, home string) string {
	if value == "" {
		return DefaultDB(home)
	}
	if strings.HasSuffix(value, "/") || strings.HasSuffix(value, string(filepath.Separator)) {
		return filepath.Join(ExpandHome(value, home), DBName)
	}
	p := ExpandHome(value, home)
	if ok, err := afero.IsDir(fs, p); err == nil && ok {
		return filepath.Join(p, DBName)
	}
	return p
}

// BindFlags registers the persistent flags and binds them, with RUSK_DB and
// NO_COLOR, into v.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.String("db", "", "database file or directory (overrides "+EnvDB+")")
	flags.String("config", "", "config file (default ~/"+DirName+"/"+FileName+")")
	flags.Bool("seed-sample", false, "seed sample tasks when the store is empty")
	flags.Bool("show-paths", false, "print the resolved database path")
	flags.Bool("no-color", false, "disable colors")
	flags.BoolP("verbose", "v", false, "log diagnostics to stderr")
	for _, name := range []string{"db", "config", "seed-sample", "show-paths", "no-color", "verbose"} {
		_ = v.BindPFlag(name, flags.Lookup(name))
	}
	_ = v.BindEnv("db", EnvDB)
	_ = v.BindEnv("no-color-env", "NO_COLOR")
}

// Resolve merges flags and environment bound in v over the config file.
func Resolve(v *viper.Viper, fs afero.Fs, home string) (*Config, error) {
	path := v.GetString("config")
	required := path != ""
	if path == "" {
		path = Path(home)
	}
	cfg, err := LoadOptional(fs, ExpandHome(path, home), required)
	if err != nil {
		return nil, err
	}
	v.SetDefault("db", cfg.DB)
	cfg.DB = ResolveDB(fs, v.GetString("db"), home)
	cfg.SeedSample = cfg.SeedSample || v.GetBool("seed-sample")
	cfg.ShowPaths = v.GetBool("show-paths")
	cfg.Verbose = v.GetBool("verbose")
	if v.GetBool("no-color") || v.GetString("no-color-env") != "" {
		cfg.Display.Color = ColorNever
	}
	return cfg, nil
}

const defaultTemplate = `db: ""
seed_sample: false
display:
  left_margin: 2
  right_margin: 2
  max_width: 80
  color: auto
`
