// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Transport selection values for TRANSPORT.
const (
	TransportMQTT      = "mqtt"
	TransportWebSocket = "websocket"
	TransportSerial    = "serial"
)

// Sensor source selection values for SENSOR_SOURCE.
const (
	SourceMock = "mock"
	SourceSPI  = "spi"
)

// Temperature source selection values for TEMP_SOURCE.
const (
	TempSourceRegisters = "registers"
	TempSourceBME280    = "bme280"
)

// Config holds all application configuration values.
type Config struct {
	// MQTT
	MQTTBroker          string
	MQTTClientIDNode    string
	MQTTClientIDConsole string
	MQTTClientIDDisplay string

	// Topics
	TopicSamples       string
	TopicStreamControl string

	// Transport: "mqtt", "websocket" or "serial"
	Transport string

	// Cache
	CacheCapacity int

	// Tail requeue (the firmware behavior) unless set; then failed
	// deliveries go back to the head and FIFO order is preserved.
	RequeueFront bool

	// Timing
	SampleIntervalMs   int // milliseconds between produced samples
	TransmitIntervalMs int // milliseconds between delivery attempts

	// Sensor source: "mock" or "spi"
	SensorSource string
	RandomSeed   int64 // mock source seed; 0 means seed from the clock

	// Temperature source: "registers" (sensor head) or "bme280"
	TempSource string

	// SPI Hardware
	IMUSPIDevice string
	BMPSPIDevice string

	// WebSocket transport
	WSServerPort int

	// Serial transport
	SerialPort     string
	SerialBaudRate int

	// Diagnostics
	DiagServerPort int

	// Display
	DisplayUpdateIntervalMs int
}

// Package-level unexported variables for singleton pattern:
//   - globalConfig: unexported (lowercase) so other packages cannot access it directly.
//     This enforces encapsulation and prevents external code from modifying config without proper locking.
//   - configOnce: ensures InitGlobal() only runs once, even if called multiple times.
//   - configMu: RWMutex protects concurrent access. Write lock (Lock) for initialization,
//     read lock (RLock) for Get() allows multiple concurrent readers without blocking each other.
//
// External code must use InitGlobal() to set and Get() to read, ensuring thread safety.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Load reads the configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := defaults()
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
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

	// Validate required fields
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// defaults returns a Config preloaded with the values that have sensible
// fallbacks; everything else is required and checked in validate().
func defaults() *Config {
	return &Config{
		Transport:               TransportMQTT,
		SensorSource:            SourceMock,
		TempSource:              TempSourceRegisters,
		TopicSamples:            "sensornode/samples",
		TopicStreamControl:      "sensornode/stream",
		MQTTClientIDNode:        "sensor-node",
		MQTTClientIDConsole:     "sensor-node-console",
		MQTTClientIDDisplay:     "sensor-node-display",
		DisplayUpdateIntervalMs: 500,
	}
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_NODE":
		c.MQTTClientIDNode = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_DISPLAY":
		c.MQTTClientIDDisplay = value

	// Topics
	case "TOPIC_SAMPLES":
		c.TopicSamples = value
	case "TOPIC_STREAM_CONTROL":
		c.TopicStreamControl = value

	// Transport
	case "TRANSPORT":
		switch value {
		case TransportMQTT, TransportWebSocket, TransportSerial:
			c.Transport = value
		default:
			return fmt.Errorf("TRANSPORT must be %q, %q or %q, got %q",
				TransportMQTT, TransportWebSocket, TransportSerial, value)
		}

	// Cache
	case "CACHE_CAPACITY":
		capacity, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid CACHE_CAPACITY %q: %w", value, err)
		}
		if capacity <= 0 {
			return fmt.Errorf("CACHE_CAPACITY must be positive, got %d", capacity)
		}
		c.CacheCapacity = capacity
	case "REQUEUE_FRONT":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid REQUEUE_FRONT %q: %w", value, err)
		}
		c.RequeueFront = b

	// Timing
	case "SAMPLE_INTERVAL_MS":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid SAMPLE_INTERVAL_MS %q: %w", value, err)
		}
		if interval <= 0 {
			return fmt.Errorf("SAMPLE_INTERVAL_MS must be positive, got %d", interval)
		}
		c.SampleIntervalMs = interval
	case "TRANSMIT_INTERVAL_MS":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid TRANSMIT_INTERVAL_MS %q: %w", value, err)
		}
		if interval <= 0 {
			return fmt.Errorf("TRANSMIT_INTERVAL_MS must be positive, got %d", interval)
		}
		c.TransmitIntervalMs = interval

	// Sensor source
	case "SENSOR_SOURCE":
		switch value {
		case SourceMock, SourceSPI:
			c.SensorSource = value
		default:
			return fmt.Errorf("SENSOR_SOURCE must be %q or %q, got %q", SourceMock, SourceSPI, value)
		}
	case "RANDOM_SEED":
		seed, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid RANDOM_SEED %q: %w", value, err)
		}
		c.RandomSeed = seed
	case "TEMP_SOURCE":
		switch value {
		case TempSourceRegisters, TempSourceBME280:
			c.TempSource = value
		default:
			return fmt.Errorf("TEMP_SOURCE must be %q or %q, got %q", TempSourceRegisters, TempSourceBME280, value)
		}

	// SPI Hardware
	case "IMU_SPI_DEVICE":
		c.IMUSPIDevice = value
	case "BMP_SPI_DEVICE":
		c.BMPSPIDevice = value

	// WebSocket transport
	case "WS_SERVER_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid WS_SERVER_PORT %q: %w", value, err)
		}
		c.WSServerPort = port

	// Serial transport
	case "SERIAL_PORT":
		c.SerialPort = value
	case "SERIAL_BAUD_RATE":
		rate, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid SERIAL_BAUD_RATE %q: %w", value, err)
		}
		c.SerialBaudRate = rate

	// Diagnostics
	case "DIAG_SERVER_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid DIAG_SERVER_PORT %q: %w", value, err)
		}
		c.DiagServerPort = port

	// Display
	case "DISPLAY_UPDATE_INTERVAL_MS":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_UPDATE_INTERVAL_MS %q: %w", value, err)
		}
		c.DisplayUpdateIntervalMs = interval

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

// validate checks that all required fields are set.
func (c *Config) validate() error {
	if c.CacheCapacity == 0 {
		return fmt.Errorf("CACHE_CAPACITY is required")
	}
	if c.SampleIntervalMs == 0 {
		return fmt.Errorf("SAMPLE_INTERVAL_MS is required")
	}
	if c.TransmitIntervalMs == 0 {
		return fmt.Errorf("TRANSMIT_INTERVAL_MS is required")
	}

	switch c.Transport {
	case TransportMQTT:
		if c.MQTTBroker == "" {
			return fmt.Errorf("MQTT_BROKER is required for the mqtt transport")
		}
	case TransportWebSocket:
		if c.WSServerPort == 0 {
			return fmt.Errorf("WS_SERVER_PORT is required for the websocket transport")
		}
	case TransportSerial:
		if c.SerialPort == "" {
			return fmt.Errorf("SERIAL_PORT is required for the serial transport")
		}
		if c.SerialBaudRate == 0 {
			return fmt.Errorf("SERIAL_BAUD_RATE is required for the serial transport")
		}
	}

	if c.SensorSource == SourceSPI && c.IMUSPIDevice == "" {
		return fmt.Errorf("IMU_SPI_DEVICE is required for the spi sensor source")
	}
	if c.TempSource == TempSourceBME280 && c.BMPSPIDevice == "" {
		return fmt.Errorf("BMP_SPI_DEVICE is required for the bme280 temperature source")
	}

	return nil
}

// InitGlobal initializes the global configuration from file.
// Uses sync.Once to ensure this only runs once, even if called multiple times.
// Acquires write lock (configMu.Lock) during initialization to prevent concurrent access.
// This is the only function that can set globalConfig.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
// Uses read lock (configMu.RLock) to allow multiple concurrent readers without blocking.
// This is thread-safe and efficient for concurrent access across goroutines.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
