// Package config resolves the emulator settings once at startup, before the
// session begins. Settings come from an environment-selected YAML file
// (configs/<environment>.yaml) and fall back to defaults when no file
// exists.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ottolin/okt8"
)

const DefaultEnvironment = "development"

// DefaultFolder is where the per-environment YAML files live.
const DefaultFolder = "configs"

var ErrNoConfigFileFound = errors.New("no configuration file found")

type Config struct {
	App    App    `yaml:"app"`
	Logger Logger `yaml:"logger"`
	Emu    Emu    `yaml:"emu"`
}

type App struct {
	Name string `yaml:"name"`
}

type Logger struct {
	Enable bool   `yaml:"enable"`
	Level  string `yaml:"level"`
}

// Emu carries the session settings the core consumes: the per-frame
// instruction budget and the three quirk booleans.
type Emu struct {
	CyclesPerFrame    uint   `yaml:"cycles_per_frame"`
	FrameRate         uint   `yaml:"frame_rate"`
	DefaultRomFolder  string `yaml:"default_rom_folder"`
	StEqualsBuzzer    bool   `yaml:"st_equals_buzzer"`
	ShiftUsesVy       bool   `yaml:"bit_shift_instructions_use_vy"`
	StoreReadChangesI bool   `yaml:"store_read_instructions_change_i"`
}

func Default() Config {
	return Config{
		App: App{
			Name: "okt8",
		},
		Logger: Logger{
			Enable: true,
			Level:  "info",
		},
		Emu: Emu{
			CyclesPerFrame:    okt8.DefaultCyclesPerFrame,
			FrameRate:         okt8.DefaultFrameRate,
			DefaultRomFolder:  "roms",
			StEqualsBuzzer:    true,
			ShiftUsesVy:       false,
			StoreReadChangesI: false,
		},
	}
}

// Load reads a single YAML file on top of the defaults.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read configuration file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(raw, &config); err != nil {
		return Config{}, fmt.Errorf("failed to parse YAML configuration: %w", err)
	}

	return config, nil
}

// LoadFolder resolves the file for the given environment inside dir.
// Returns ErrNoConfigFileFound when neither <env>.yaml nor <env>.yml exists.
func LoadFolder(dir, environment string) (Config, error) {
	for _, ext := range []string{"yaml", "yml"} {
		path := filepath.Join(dir, fmt.Sprintf("%s.%s", environment, ext))
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}

	return Config{}, fmt.Errorf("%w for environment %q in %s", ErrNoConfigFileFound, environment, dir)
}

// Environment returns the session environment, taken from the ENVIRONMENT
// variable with a development fallback.
func Environment() string {
	if env := os.Getenv("ENVIRONMENT"); env != "" {
		return env
	}

	return DefaultEnvironment
}

// Resolve loads the configuration for the current environment from the
// default folder, falling back to defaults when there is no file at all.
func Resolve() (Config, error) {
	config, err := LoadFolder(DefaultFolder, Environment())
	if errors.Is(err, ErrNoConfigFileFound) {
		return Default(), nil
	}

	return config, err
}

// Quirks converts the emulator block into the core's immutable quirk set.
func (c Config) Quirks() okt8.Quirks {
	return okt8.Quirks{
		ShiftUsesVy:       c.Emu.ShiftUsesVy,
		StoreReadChangesI: c.Emu.StoreReadChangesI,
		StEqualsBuzzer:    c.Emu.StEqualsBuzzer,
	}
}

// SlogLevel maps the logger block onto a slog level.
func (l Logger) SlogLevel() slog.Level {
	switch l.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
