package events

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"
)

// Publisher broadcasts spot availability changes so map clients can refresh
// without polling. Publish failures are logged and never surfaced to the
// request that triggered them.
type Publisher interface {
	SpotBooked(spotID, driverID string, at time.Time)
	SpotReleased(spotID string, at time.Time)
}

// statusEvent is the wire format published to parkaroo/spots/{id}/status.
type statusEvent struct {
	SpotID   string    `json:"spotId"`
	Status   string    `json:"status"`
	DriverID string    `json:"driverId,omitempty"`
	At       time.Time `json:"at"`
}

// NopPublisher discards all events. Used when no MQTT broker is configured.
type NopPublisher struct{}

func (NopPublisher) SpotBooked(spotID, driverID string, at time.Time) {}

func (NopPublisher) SpotReleased(spotID string, at time.Time) {}

// MQTTPublisher publishes availability events to an MQTT broker.
type MQTTPublisher struct {
	client mqtt.Client
}

// NewMQTTPublisher connects to the broker and returns a publisher.
func NewMQTTPublisher(broker, clientID string) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}
	return &MQTTPublisher{client: client}, nil
}

// SpotBooked publishes a booked event for the spot.
func (p *MQTTPublisher) SpotBooked(spotID, driverID string, at time.Time) {
	p.publish(statusEvent{SpotID: spotID, Status: "booked", DriverID: driverID, At: at})
}

// SpotReleased publishes an available event for the spot.
func (p *MQTTPublisher) SpotReleased(spotID string, at time.Time) {
	p.publish(statusEvent{SpotID: spotID, Status: "available", At: at})
}

// Close disconnects from the broker.
func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250)
}

func (p *MQTTPublisher) publish(event statusEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.WithError(err).Error("Failed to marshal spot status event")
		return
	}

	topic := fmt.Sprintf("parkaroo/spots/%s/status", event.SpotID)
	// Retained so map clients joining late still see the latest status.
	token := p.client.Publish(topic, 0, true, payload)
	if !token.WaitTimeout(5*time.Second) || token.Error() != nil {
		log.WithFields(log.Fields{"spot_id": event.SpotID, "status": event.Status}).
			WithError(token.Error()).Warn("Failed to publish spot status event")
	}
}
