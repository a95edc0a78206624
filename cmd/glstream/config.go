package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/gogpu/glstream"
	"github.com/gogpu/glstream/stream"
)

// defaultConfigFile is read from the working directory when --config is
// not given.
const defaultConfigFile = "glstream.toml"

// Config is the glstream.toml file.
type Config struct {
	Color  string    `toml:"color"`
	Text   string    `toml:"text"`
	Target string    `toml:"target"`
	Log    LogConfig `toml:"log"`
}

// LogConfig is the [log] table.
type LogConfig struct {
	Level string `toml:"level"`
}

func defaultConfig() Config {
	return Config{
		Color:  "auto",
		Text:   "utf8",
		Target: "trace",
		Log:    LogConfig{Level: "warn"},
	}
}

// loadConfig reads path over the defaults. A missing file is only an
// error when it was asked for explicitly.
func loadConfig(path string, explicit bool) (Config, error) {
	cfg := defaultConfig()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// applyFlags lets explicitly set flags override the file.
func applyFlags(cfg *Config, cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("color") {
		cfg.Color, _ = flags.GetString("color")
	}
	if flags.Changed("text") {
		cfg.Text, _ = flags.GetString("text")
	}
	if v, _ := flags.GetBool("verbose"); v {
		cfg.Log.Level = "debug"
	}
	if cmd.Flags().Lookup("target") != nil && flags.Changed("target") {
		cfg.Target, _ = flags.GetString("target")
	}
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("log level %q: %w", s, err)
	}
	return l, nil
}

func useColor(mode string) (bool, error) {
	switch mode {
	case "on":
		return true, nil
	case "off":
		return false, nil
	case "auto", "":
		return isTerminal(os.Stdout), nil
	default:
		return false, fmt.Errorf("unknown color mode %q (auto|on|off)", mode)
	}
}

// settings is the resolved configuration of the running command.
var settings struct {
	cfg  Config
	text stream.TextCodec
}

// setup resolves config and flags, then installs the logger and color
// mode. It runs before every subcommand.
func setup(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("config")
	explicit := path != ""
	if !explicit {
		path = defaultConfigFile
	}
	cfg, err := loadConfig(path, explicit)
	if err != nil {
		return err
	}
	applyFlags(&cfg, cmd)

	level, err := parseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	glstream.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	on, err := useColor(cfg.Color)
	if err != nil {
		return err
	}
	color.NoColor = !on

	codec, ok := stream.TextCodecByName(cfg.Text)
	if !ok {
		return fmt.Errorf("unknown text encoding %q (utf8|utf16)", cfg.Text)
	}

	settings.cfg = cfg
	settings.text = codec
	return nil
}
