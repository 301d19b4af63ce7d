// Package config parses the command-line flags that select the bind
// address and the per-connection detector/encoder/source strategy.
package config

import (
	"flag"
	"fmt"
)

// Config holds the resolved command-line configuration for one server
// process.
type Config struct {
	Addr     string
	Detector string
	Encoder  string
	Source   string
}

var validDetectors = map[string]bool{"block": true, "strip": true, "quadtree": true}
var validEncoders = map[string]bool{
	"raw": true, "tight-raw": true, "tight-gradient": true,
	"tight-adaptive": true, "tight-jpeg": true,
}
var validSources = map[string]bool{"auto": true, "synthetic": true}

// Parse reads flags from args (excluding the program name) and returns
// a validated Config.
func Parse(args []string) (*Config, error) {
	fs := flag.NewFlagSet("mfxvnc", flag.ContinueOnError)
	cfg := &Config{}
	fs.StringVar(&cfg.Addr, "addr", "0.0.0.0:5900", "TCP bind address")
	fs.StringVar(&cfg.Detector, "detector", "strip", "damage detector: block|strip|quadtree")
	fs.StringVar(&cfg.Encoder, "encoder", "tight-gradient", "rectangle encoder: raw|tight-raw|tight-gradient|tight-adaptive|tight-jpeg")
	fs.StringVar(&cfg.Source, "source", "auto", "capture source: auto|synthetic")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if !validDetectors[cfg.Detector] {
		return nil, fmt.Errorf("config: unknown detector %q", cfg.Detector)
	}
	if !validEncoders[cfg.Encoder] {
		return nil, fmt.Errorf("config: unknown encoder %q", cfg.Encoder)
	}
	if !validSources[cfg.Source] {
		return nil, fmt.Errorf("config: unknown source %q", cfg.Source)
	}
	return cfg, nil
}
