package services

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"example.com/backstage/services/supplychain/internal/messaging"
)

// ShipmentStatusHandler applies carrier status updates consumed from the queue.
// Malformed messages and unknown tracking ids are permanent failures.
func ShipmentStatusHandler(s *ShipmentService) messaging.Handler {
	return func(ctx context.Context, body []byte) error {
		var msg messaging.ShipmentStatusMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			return messaging.Permanent(errors.Wrap(err, "failed to decode shipment status message"))
		}

		_, err := s.updateStatus(ctx, UpdateShipmentStatusCommand{TrackingID: msg.TrackingID, Status: msg.Status}, SourceCarrier)
		switch KindOf(err) {
		case KindValidation, KindNotFound:
			return messaging.Permanent(err)
		}
		return err
	}
}
