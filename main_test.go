package main

import (
	"testing"

	"github.com/chase3718/djpad/internal/config"
	"github.com/chase3718/djpad/internal/pad"
)

func TestNewBackend(t *testing.T) {
	cfg := &config.Config{}
	cfg.Output.Uinput.Path = "/dev/uinput"
	cfg.Output.Serial.Device = "/dev/ttyACM0"
	cfg.Output.Serial.Baud = 500000

	tests := []struct {
		driver string
		want   string
	}{
		{config.DriverUinput, "uinput:/dev/uinput"},
		{config.DriverSerial, "serial:/dev/ttyACM0"},
		{config.DriverNone, "none"},
	}
	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			cfg.Output.Driver = tt.driver
			if got := pad.New(newBackend(cfg), nil).Name(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
