package messaging

import "time"

// Domain event types published on the events queue
const (
	EventMaterialCreated       = "material.created"
	EventTransactionRecorded   = "transaction.recorded"
	EventShipmentCreated       = "shipment.created"
	EventShipmentStatusUpdated = "shipment.status_updated"
	EventParticipantAdded      = "participant.added"
)

// Event is the envelope of every published message
type Event struct {
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurredAt"`
	Data       interface{} `json:"data"`
}

// ShipmentStatusMessage is a carrier status update consumed from the shipment queue
type ShipmentStatusMessage struct {
	TrackingID string `json:"trackingId" validate:"required"`
	Status     string `json:"status" validate:"required"`
}
