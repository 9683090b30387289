package transport

import (
	"fmt"
	"log"
	"sync/atomic"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

type mqttNotifier struct {
	client       mqtt.Client
	topic        string
	controlTopic string
	enabled      atomic.Bool
}

// NewMQTTNotifier connects to the broker and publishes packed samples to
// sampleTopic. Streaming is off until a subscriber writes "on" to
// controlTopic, mirroring the notify-enable handshake of the original BLE
// characteristic; "off" disables it again.
func NewMQTTNotifier(broker, clientID, sampleTopic, controlTopic string) (Notifier, error) {
	n := &mqttNotifier{
		topic:        sampleTopic,
		controlTopic: controlTopic,
	}

	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID)

	n.client = mqtt.NewClient(opts)
	if token := n.client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("MQTT connect: %w", token.Error())
	}
	log.Printf("transport: connected to MQTT broker at %s", broker)

	token := n.client.Subscribe(controlTopic, 1, func(_ mqtt.Client, msg mqtt.Message) {
		on := string(msg.Payload()) == "on"
		n.enabled.Store(on)
		if on {
			log.Println("transport: streaming enabled")
		} else {
			log.Println("transport: streaming disabled")
		}
	})
	if token.Wait(); token.Error() != nil {
		n.client.Disconnect(250)
		return nil, fmt.Errorf("MQTT subscribe %s: %w", controlTopic, token.Error())
	}
	log.Printf("transport: stream control on %s", controlTopic)

	return n, nil
}

func (n *mqttNotifier) Ready() bool {
	return n.client.IsConnectionOpen() && n.enabled.Load()
}

func (n *mqttNotifier) Notify(payload []byte) error {
	if !n.Ready() {
		return ErrNoPeer
	}
	token := n.client.Publish(n.topic, 0, false, payload)
	if token.Wait(); token.Error() != nil {
		return fmt.Errorf("MQTT publish: %w", token.Error())
	}
	return nil
}

func (n *mqttNotifier) Close() error {
	if token := n.client.Unsubscribe(n.controlTopic); token.Wait() && token.Error() != nil {
		log.Printf("transport: MQTT unsubscribe error: %v", token.Error())
	}
	n.client.Disconnect(250)
	return nil
}
