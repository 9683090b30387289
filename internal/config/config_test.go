package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sensor_node_config.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const minimalConfig = `
# minimal node config
MQTT_BROKER=tcp://localhost:1883
CACHE_CAPACITY=32
SAMPLE_INTERVAL_MS=1000
TRANSMIT_INTERVAL_MS=2000
`

func TestLoadMinimal(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.CacheCapacity != 32 {
		t.Errorf("CacheCapacity = %d", cfg.CacheCapacity)
	}
	if cfg.SampleIntervalMs != 1000 || cfg.TransmitIntervalMs != 2000 {
		t.Errorf("intervals = %d/%d", cfg.SampleIntervalMs, cfg.TransmitIntervalMs)
	}

	// Defaults fill in everything optional.
	if cfg.Transport != TransportMQTT {
		t.Errorf("Transport default = %q", cfg.Transport)
	}
	if cfg.SensorSource != SourceMock {
		t.Errorf("SensorSource default = %q", cfg.SensorSource)
	}
	if cfg.TopicSamples != "sensornode/samples" {
		t.Errorf("TopicSamples default = %q", cfg.TopicSamples)
	}
	if cfg.RequeueFront {
		t.Error("RequeueFront should default to the firmware tail behavior")
	}
}

func TestLoadFullOverrides(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
MQTT_BROKER=tcp://broker:1883
MQTT_CLIENT_ID_NODE=node-7
TOPIC_SAMPLES=lab/samples
TOPIC_STREAM_CONTROL=lab/stream
TRANSPORT=websocket
WS_SERVER_PORT=9000
CACHE_CAPACITY=4
REQUEUE_FRONT=true
SAMPLE_INTERVAL_MS=10
TRANSMIT_INTERVAL_MS=20
SENSOR_SOURCE=mock
RANDOM_SEED=42
DIAG_SERVER_PORT=8081
DISPLAY_UPDATE_INTERVAL_MS=250
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Transport != TransportWebSocket || cfg.WSServerPort != 9000 {
		t.Errorf("transport = %q port %d", cfg.Transport, cfg.WSServerPort)
	}
	if !cfg.RequeueFront {
		t.Error("REQUEUE_FRONT=true not applied")
	}
	if cfg.RandomSeed != 42 {
		t.Errorf("RandomSeed = %d", cfg.RandomSeed)
	}
	if cfg.DisplayUpdateIntervalMs != 250 {
		t.Errorf("DisplayUpdateIntervalMs = %d", cfg.DisplayUpdateIntervalMs)
	}
	if cfg.TopicSamples != "lab/samples" {
		t.Errorf("TopicSamples = %q", cfg.TopicSamples)
	}
}

func TestLoadErrors(t *testing.T) {
	cases := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing capacity",
			content: "MQTT_BROKER=tcp://localhost:1883\nSAMPLE_INTERVAL_MS=10\nTRANSMIT_INTERVAL_MS=10\n",
			wantErr: "CACHE_CAPACITY",
		},
		{
			name:    "missing broker for mqtt transport",
			content: "CACHE_CAPACITY=4\nSAMPLE_INTERVAL_MS=10\nTRANSMIT_INTERVAL_MS=10\n",
			wantErr: "MQTT_BROKER",
		},
		{
			name:    "serial transport without port",
			content: "TRANSPORT=serial\nSERIAL_BAUD_RATE=115200\nCACHE_CAPACITY=4\nSAMPLE_INTERVAL_MS=10\nTRANSMIT_INTERVAL_MS=10\n",
			wantErr: "SERIAL_PORT",
		},
		{
			name:    "unknown key",
			content: "BOGUS=1\n",
			wantErr: "unknown config key",
		},
		{
			name:    "bad transport",
			content: "TRANSPORT=ble\n",
			wantErr: "TRANSPORT",
		},
		{
			name:    "negative capacity",
			content: "CACHE_CAPACITY=-1\n",
			wantErr: "CACHE_CAPACITY",
		},
		{
			name:    "malformed line",
			content: "JUST A LINE\n",
			wantErr: "invalid config line",
		},
		{
			name:    "spi source without device",
			content: "MQTT_BROKER=b\nCACHE_CAPACITY=4\nSAMPLE_INTERVAL_MS=10\nTRANSMIT_INTERVAL_MS=10\nSENSOR_SOURCE=spi\n",
			wantErr: "IMU_SPI_DEVICE",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, c.content))
			if err == nil {
				t.Fatal("Load succeeded")
			}
			if !strings.Contains(err.Error(), c.wantErr) {
				t.Errorf("error %q does not mention %q", err, c.wantErr)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Error("Load on missing file succeeded")
	}
}
