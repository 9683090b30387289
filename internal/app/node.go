// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/relabs-tech/sensor_node/internal/cache"
	"github.com/relabs-tech/sensor_node/internal/config"
	"github.com/relabs-tech/sensor_node/internal/sensors"
	"github.com/relabs-tech/sensor_node/internal/transport"
)

// RunNode assembles and runs the telemetry node: sensor source → producer →
// cache → consumer → transport, plus the diagnostics server. It blocks until
// SIGINT/SIGTERM or a fatal setup error.
func RunNode() error {
	cfg := config.Get()

	c, err := cache.New(cfg.CacheCapacity)
	if err != nil {
		return err
	}
	log.Printf("sample cache ready (capacity %d)", cfg.CacheCapacity)

	source, err := buildSource(cfg)
	if err != nil {
		return fmt.Errorf("sensor source: %w", err)
	}

	notifier, err := buildNotifier(cfg)
	if err != nil {
		return fmt.Errorf("transport: %w", err)
	}
	defer notifier.Close()

	producer := NewProducer(source, c, time.Duration(cfg.SampleIntervalMs)*time.Millisecond)
	consumer := NewConsumer(c, notifier, time.Duration(cfg.TransmitIntervalMs)*time.Millisecond, cfg.RequeueFront)

	if cfg.DiagServerPort != 0 {
		diag, err := newDiagServer(c, producer, consumer, cfg.DiagServerPort)
		if err != nil {
			return err
		}
		defer diag.close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return producer.Run(ctx) })
	g.Go(func() error { return consumer.Run(ctx) })

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		log.Println("node shut down")
		return nil
	}
	return err
}

// buildSource picks the sample source from config.
func buildSource(cfg *config.Config) (sensors.Source, error) {
	var temps sensors.TempReader
	if cfg.TempSource == config.TempSourceBME280 {
		var err error
		temps, err = sensors.NewBME280TempReader(cfg.BMPSPIDevice)
		if err != nil {
			return nil, err
		}
		log.Println("temperature channels served by BME280")
	}

	switch cfg.SensorSource {
	case config.SourceSPI:
		return sensors.NewSPISource(cfg.IMUSPIDevice, temps)
	default:
		seed := cfg.RandomSeed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		log.Printf("using mock sensor source (seed %d)", seed)
		return sensors.NewMockSource(rand.New(rand.NewSource(seed))), nil
	}
}

// buildNotifier picks the outbound transport from config.
func buildNotifier(cfg *config.Config) (transport.Notifier, error) {
	switch cfg.Transport {
	case config.TransportWebSocket:
		return transport.NewWebSocketNotifier(cfg.WSServerPort)
	case config.TransportSerial:
		return transport.NewSerialNotifier(cfg.SerialPort, cfg.SerialBaudRate)
	default:
		return transport.NewMQTTNotifier(cfg.MQTTBroker, cfg.MQTTClientIDNode,
			cfg.TopicSamples, cfg.TopicStreamControl)
	}
}
