// Package config loads djpad settings from flags, DJPAD_* environment
// variables and an optional djpad.yaml, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Output drivers.
const (
	DriverUinput = "uinput"
	DriverSerial = "serial"
	DriverNone   = "none"
)

const envPrefix = "DJPAD"

type Config struct {
	Debug     bool      `mapstructure:"debug"`
	MIDI      MIDI      `mapstructure:"midi"`
	Output    Output    `mapstructure:"output"`
	Emulation Emulation `mapstructure:"emulation"`
	Engine    Engine    `mapstructure:"engine"`
	HTTP      HTTP      `mapstructure:"http"`

	// File is the config file that was read, if any.
	File string
}

type MIDI struct {
	Preferred []string      `mapstructure:"preferred"`
	Excluded  []string      `mapstructure:"excluded"`
	Rescan    time.Duration `mapstructure:"rescan"`
}

type Output struct {
	Driver string `mapstructure:"driver"`
	Name   string `mapstructure:"name"`
	Uinput struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"uinput"`
	Serial struct {
		Device string `mapstructure:"device"`
		Baud   int    `mapstructure:"baud"`
	} `mapstructure:"serial"`
}

type Emulation struct {
	Autostart bool `mapstructure:"autostart"`
}

type Engine struct {
	Queue   int           `mapstructure:"queue"`
	Refresh time.Duration `mapstructure:"refresh"`
}

type HTTP struct {
	Addr string `mapstructure:"addr"`
}

// flagKeys maps command-line flag names onto config keys.
var flagKeys = map[string]string{
	"debug":          "debug",
	"midi-preferred": "midi.preferred",
	"midi-excluded":  "midi.excluded",
	"midi-rescan":    "midi.rescan",
	"output":         "output.driver",
	"output-name":    "output.name",
	"uinput-path":    "output.uinput.path",
	"serial":         "output.serial.device",
	"baud":           "output.serial.baud",
	"emulate":        "emulation.autostart",
	"queue":          "engine.queue",
	"refresh":        "engine.refresh",
	"http":           "http.addr",
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("djpad", pflag.ContinueOnError)
	fs.String("config", "", "config file (default: ./djpad.yaml or $XDG_CONFIG_HOME/djpad/djpad.yaml)")
	fs.Bool("debug", false, "enable debug logging (adds source location)")
	fs.StringSlice("midi-preferred", []string{"DJControl", "Hercules"}, "MIDI input name patterns to auto-connect, in order")
	fs.StringSlice("midi-excluded", []string{"Midi Through", "Through Port", "Dummy"}, "MIDI input name patterns never auto-connected")
	fs.Duration("midi-rescan", time.Second, "MIDI port rescan interval")
	fs.String("output", DriverUinput, "gamepad output driver: uinput, serial or none")
	fs.String("output-name", "djpad virtual gamepad", "name of the virtual gamepad")
	fs.String("uinput-path", "/dev/uinput", "uinput device node")
	fs.String("serial", "/dev/ttyACM0", "serial device of the USB gamepad bridge")
	fs.Int("baud", 500000, "serial baud rate")
	fs.Bool("emulate", false, "enable gamepad emulation at startup")
	fs.Int("queue", 1024, "input event queue length")
	fs.Duration("refresh", 32*time.Millisecond, "view refresh interval")
	fs.String("http", "127.0.0.1:8080", "view server listen address (empty disables)")
	return fs
}

// Load parses args (without the program name) and returns the merged
// configuration. It returns pflag.ErrHelp when -h was given.
func Load(args []string) (*Config, error) {
	fs := newFlagSet()
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	for name, key := range flagKeys {
		if err := v.BindPFlag(key, fs.Lookup(name)); err != nil {
			return nil, fmt.Errorf("bind flag %s: %w", name, err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	file, _ := fs.GetString("config")
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("djpad")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "djpad"))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the application cannot start with.
func (c *Config) Validate() error {
	switch c.Output.Driver {
	case DriverUinput, DriverSerial, DriverNone:
	default:
		return fmt.Errorf("config: unknown output driver %q", c.Output.Driver)
	}
	if c.Output.Driver == DriverSerial && c.Output.Serial.Baud <= 0 {
		return fmt.Errorf("config: serial baud must be positive, got %d", c.Output.Serial.Baud)
	}
	if c.Engine.Queue <= 0 {
		return fmt.Errorf("config: engine queue must be positive, got %d", c.Engine.Queue)
	}
	if c.Engine.Refresh <= 0 {
		return fmt.Errorf("config: engine refresh must be positive, got %s", c.Engine.Refresh)
	}
	if c.MIDI.Rescan <= 0 {
		return fmt.Errorf("config: midi rescan must be positive, got %s", c.MIDI.Rescan)
	}
	return nil
}
