package app

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/sensor_node/internal/config"
	"github.com/relabs-tech/sensor_node/internal/sample"
)

// RunConsoleMQTT subscribes to the node's sample stream and prints each
// decoded sample. Connecting and subscribing also turns the node's
// streaming gate on — the console plays the part of the BLE central that
// enables notifications — and turns it off again on exit.
func RunConsoleMQTT() error {
	cfg := config.Get()

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDConsole)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("console: connected to MQTT broker at %s", cfg.MQTTBroker)

	var count uint64
	token := client.Subscribe(cfg.TopicSamples, 0, func(_ mqtt.Client, msg mqtt.Message) {
		s, err := sample.Unpack(msg.Payload())
		if err != nil {
			log.Printf("console: bad sample payload: %v", err)
			return
		}
		count++
		fmt.Printf("[%6d] imu[0..3]=%08X %08X %08X %08X  temp=%8.3f %8.3f %8.3f\n",
			count, s.IMU[0], s.IMU[1], s.IMU[2], s.IMU[3],
			s.Temp[0], s.Temp[1], s.Temp[2])
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicSamples)

	// Enable streaming on the node.
	if token := client.Publish(cfg.TopicStreamControl, 1, true, "on"); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Println("console: streaming enabled")

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	if token := client.Publish(cfg.TopicStreamControl, 1, true, "off"); token.Wait() && token.Error() != nil {
		log.Printf("console: stream disable error: %v", token.Error())
	}
	client.Disconnect(250)
	return nil
}
