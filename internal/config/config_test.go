package config

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const home = "/home/u"

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, Display{LeftMargin: 2, RightMargin: 2, MaxWidth: 80, Color: ColorAuto}, cfg.Display)
	assert.Empty(t, cfg.DB)
	assert.False(t, cfg.SeedSample)
}

func TestFromYAMLKeepsDefaults(t *testing.T) {
	cfg, err := FromYAML([]byte("display:\n  left_margin: 4\nseed_sample: true\n"))
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Display.LeftMargin)
	assert.Equal(t, 2, cfg.Display.RightMargin)
	assert.Equal(t, 80, cfg.Display.MaxWidth)
	assert.True(t, cfg.SeedSample)

	cfg, err = FromYAML(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestFromYAMLRejects(t *testing.T) {
	for _, doc := range []string{
		"display:\n  left_margin: -1\n",
		"display:\n  right_margin: -3\n",
		"display:\n  max_width: 10\n",
		"display:\n  max_width: 20\n  left_margin: 10\n  right_margin: 10\n",
		"display:\n  color: purple\n",
		"unknown: 1\n",
		"db: [1, 2\n",
	} {
		_, err := FromYAML([]byte(doc))
		assert.Error(t, err, doc)
	}
}

func TestLoadOptional(t *testing.T) {
	fs := afero.NewMemMapFs()
	cfg, err := LoadOptional(fs, Path(home), false)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	_, err = LoadOptional(fs, Path(home), true)
	assert.Error(t, err)

	require.NoError(t, afero.WriteFile(fs, Path(home), []byte("db: /srv/tasks.json\n"), 0o644))
	cfg, err = LoadOptional(fs, Path(home), true)
	require.NoError(t, err)
	assert.Equal(t, "/srv/tasks.json", cfg.DB)
}

func TestResolveDB(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/data/rusk", 0o755))
	cases := map[string]string{
		"":                    "/home/u/.rusk/tasks.json",
		"/data/rusk":          "/data/rusk/tasks.json",
		"/data/new/":          "/data/new/tasks.json",
		"/data/custom.json":   "/data/custom.json",
		"~/tasks/":            "/home/u/tasks/tasks.json",
		"~/work.json":         "/home/u/work.json",
		"relative/tasks.json": "relative/tasks.json",
	}
	for in, want := range cases {
		assert.Equal(t, want, ResolveDB(fs, in, home), "input %q", in)
	}
}

func newViper(t *testing.T, args ...string) *viper.Viper {
	t.Helper()
	v := viper.New()
	flags := pflag.NewFlagSet("rusk", pflag.ContinueOnError)
	BindFlags(v, flags)
	require.NoError(t, flags.Parse(args))
	return v
}

func TestResolvePrecedence(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, Path(home), []byte("db: /from/file.json\n"), 0o644))

	t.Setenv(EnvDB, "")
	t.Setenv("NO_COLOR", "")
	cfg, err := Resolve(newViper(t), fs, home)
	require.NoError(t, err)
	assert.Equal(t, "/from/file.json", cfg.DB)
	assert.Equal(t, ColorAuto, cfg.Display.Color)

	t.Setenv(EnvDB, "/from/env.json")
	cfg, err = Resolve(newViper(t), fs, home)
	require.NoError(t, err)
	assert.Equal(t, "/from/env.json", cfg.DB)

	cfg, err = Resolve(newViper(t, "--db", "/from/flag.json"), fs, home)
	require.NoError(t, err)
	assert.Equal(t, "/from/flag.json", cfg.DB)
}

func TestResolveFlags(t *testing.T) {
	t.Setenv(EnvDB, "")
	t.Setenv("NO_COLOR", "")
	fs := afero.NewMemMapFs()
	cfg, err := Resolve(newViper(t, "--seed-sample", "--show-paths", "--no-color", "-v"), fs, home)
	require.NoError(t, err)
	assert.Equal(t, DefaultDB(home), cfg.DB)
	assert.True(t, cfg.SeedSample)
	assert.True(t, cfg.ShowPaths)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, ColorNever, cfg.Display.Color)

	t.Setenv("NO_COLOR", "1")
	cfg, err = Resolve(newViper(t), fs, home)
	require.NoError(t, err)
	assert.Equal(t, ColorNever, cfg.Display.Color)
}

func TestResolveExplicitConfigMustExist(t *testing.T) {
	_, err := Resolve(newViper(t, "--config", "/nope.yml"), afero.NewMemMapFs(), home)
	assert.Error(t, err)
}
