// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/relabs-tech/orientation_widget/internal/logging"
	"github.com/relabs-tech/orientation_widget/internal/orientation"
)

// Config holds all application configuration values.
type Config struct {
	// Logging
	LogLevel  string
	LogFormat string // "console" or "json"

	// MQTT; an empty broker disables publishing
	MQTTBroker            string
	MQTTClientIDWeb       string
	MQTTClientIDConsole   string
	MQTTClientIDTerminal  string
	MQTTClientIDProducer  string
	TopicOrientation      string
	TopicOrientationDrag  string
	ProducerIntervalMilli int

	// Web Server
	WebServerPort int
	WebRoot       string

	// Widget
	PresetsFile        string
	DragStartDelayMS   int
	DragCursor         string
	HoverCursor        string
	InitialOrientation *orientation.DeviceOrientation

	// Heading feed; an empty port disables it
	HeadingSerialPort string
	HeadingBaudRate   int

	// Snapshot image
	SnapshotWidth  int
	SnapshotHeight int
}

var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Default returns a configuration that runs every host locally without a
// config file.
func Default() *Config {
	return &Config{
		LogLevel:              "info",
		LogFormat:             "console",
		MQTTClientIDWeb:       "orientation-web",
		MQTTClientIDConsole:   "orientation-console",
		MQTTClientIDTerminal:  "orientation-terminal",
		MQTTClientIDProducer:  "orientation-producer",
		TopicOrientation:      "orientation/device",
		TopicOrientationDrag:  "orientation/drag",
		ProducerIntervalMilli: 100,
		WebServerPort:         8080,
		WebRoot:               "web",
		DragCursor:            orientation.DefaultDragCursor,
		HoverCursor:           orientation.DefaultHoverCursor,
		HeadingBaudRate:       4800,
		SnapshotWidth:         320,
		SnapshotHeight:        240,
	}
}

// Load reads the configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads KEY=VALUE lines on top of Default. Blank lines and lines
// starting with # are skipped.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func atoiRange(key, value string, lo, hi int) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if n < lo || n > hi {
		return 0, fmt.Errorf("%s must be %d-%d, got %d", key, lo, hi, n)
	}
	return n, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	var err error

	switch key {
	// Logging
	case "LOG_LEVEL":
		if _, err := logging.ParseLevel(value); err != nil {
			return fmt.Errorf("invalid LOG_LEVEL: %w", err)
		}
		c.LogLevel = value
	case "LOG_FORMAT":
		if value != "console" && value != "json" {
			return fmt.Errorf("LOG_FORMAT must be console or json, got %q", value)
		}
		c.LogFormat = value

	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_TERMINAL":
		c.MQTTClientIDTerminal = value
	case "MQTT_CLIENT_ID_PRODUCER":
		c.MQTTClientIDProducer = value
	case "TOPIC_ORIENTATION":
		c.TopicOrientation = value
	case "TOPIC_ORIENTATION_DRAG":
		c.TopicOrientationDrag = value
	case "PRODUCER_INTERVAL":
		c.ProducerIntervalMilli, err = atoiRange(key, value, 10, 60000)

	// Web Server
	case "WEB_SERVER_PORT":
		c.WebServerPort, err = atoiRange(key, value, 1, 65535)
	case "WEB_ROOT":
		c.WebRoot = value

	// Widget
	case "PRESETS_FILE":
		c.PresetsFile = value
	case "DRAG_START_DELAY_MS":
		c.DragStartDelayMS, err = atoiRange(key, value, 0, 10000)
	case "DRAG_CURSOR":
		c.DragCursor = value
	case "HOVER_CURSOR":
		c.HoverCursor = value
	case "INITIAL_ORIENTATION":
		o, perr := parseOrientation(value)
		if perr != nil {
			return fmt.Errorf("invalid INITIAL_ORIENTATION %q: %w", value, perr)
		}
		c.InitialOrientation = o

	// Heading feed
	case "HEADING_SERIAL_PORT":
		c.HeadingSerialPort = value
	case "HEADING_BAUD_RATE":
		c.HeadingBaudRate, err = atoiRange(key, value, 300, 921600)

	// Snapshot
	case "SNAPSHOT_WIDTH":
		c.SnapshotWidth, err = atoiRange(key, value, 64, 4096)
	case "SNAPSHOT_HEIGHT":
		c.SnapshotHeight, err = atoiRange(key, value, 64, 4096)

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return err
}

// parseOrientation reads "alpha,beta,gamma" in degrees.
func parseOrientation(value string) (*orientation.DeviceOrientation, error) {
	parts := strings.Split(value, ",")
	if len(parts) != 3 {
		return nil, errors.New("want alpha,beta,gamma")
	}
	var angles [3]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, err
		}
		angles[i] = f
	}
	return &orientation.DeviceOrientation{Alpha: angles[0], Beta: angles[1], Gamma: angles[2]}, nil
}

// validate checks cross-field requirements.
func (c *Config) validate() error {
	if c.MQTTBroker != "" && c.TopicOrientation == "" {
		return fmt.Errorf("TOPIC_ORIENTATION is required when MQTT_BROKER is set")
	}
	if c.WebRoot == "" {
		return fmt.Errorf("WEB_ROOT is required")
	}
	if o := c.InitialOrientation; o != nil {
		if o.Beta < -180 || o.Beta > 180 || o.Gamma < -90 || o.Gamma > 90 {
			return fmt.Errorf("INITIAL_ORIENTATION out of range: %s", o)
		}
	}
	return nil
}

// InitGlobal initializes the global configuration from file. A missing
// file leaves the defaults in place.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
		if errors.Is(err, os.ErrNotExist) {
			globalConfig, err = Default(), nil
		}
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
