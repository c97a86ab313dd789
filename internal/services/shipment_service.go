package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"example.com/backstage/services/supplychain/internal/messaging"
	"example.com/backstage/services/supplychain/internal/metrics"
	"example.com/backstage/services/supplychain/internal/models"
	"example.com/backstage/services/supplychain/internal/repositories"
	"example.com/backstage/services/supplychain/internal/tracing"
)

// Sources of a shipment status update
const (
	SourceAPI     = "api"
	SourceCarrier = "carrier"
)

// CreateShipmentCommand is the input of CreateShipment
type CreateShipmentCommand struct {
	MaterialID NumericID `json:"materialId" validate:"required"`
	Sender     string    `json:"sender" validate:"required"`
	Receiver   string    `json:"receiver" validate:"required"`
	TrackingID string    `json:"trackingId" validate:"required"`
}

// UpdateShipmentStatusCommand is the input of UpdateShipmentStatus
type UpdateShipmentStatusCommand struct {
	TrackingID string `json:"trackingId" validate:"required"`
	Status     string `json:"status" validate:"required"`
}

// ShipmentService handles shipment business logic
type ShipmentService struct {
	shipments repositories.ShipmentRepository
	publisher messaging.Publisher
	tracer    tracing.Tracer
}

// NewShipmentService creates a new shipment service
func NewShipmentService(shipments repositories.ShipmentRepository, publisher messaging.Publisher, tracer tracing.Tracer) *ShipmentService {
	return &ShipmentService{
		shipments: shipments,
		publisher: publisher,
		tracer:    tracer,
	}
}

// CreateShipment stores a new shipment with status "Pending". The material is not checked.
func (s *ShipmentService) CreateShipment(ctx context.Context, cmd CreateShipmentCommand) (*models.Shipment, error) {
	if err := validateCommand(cmd, "All fields are required"); err != nil {
		return nil, err
	}

	txn := s.tracer.StartTransaction("create-shipment")
	defer s.tracer.EndTransaction(txn)

	shipment := &models.Shipment{
		ID:         uuid.NewString(),
		MaterialID: int64(cmd.MaterialID),
		Sender:     cmd.Sender,
		Receiver:   cmd.Receiver,
		TrackingID: cmd.TrackingID,
		Status:     models.DefaultShipmentStatus,
	}

	if err := s.shipments.Create(ctx, shipment); err != nil {
		s.tracer.RecordError(txn, err)
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, NewValidationError("Shipment with this tracking ID already exists", err)
		}
		log.Error().Err(err).Str("tracking_id", cmd.TrackingID).Msg("Error creating shipment")
		return nil, NewInternalError(err)
	}

	publish(ctx, s.publisher, messaging.EventShipmentCreated, shipment)
	log.Info().Str("tracking_id", shipment.TrackingID).Int64("material_id", shipment.MaterialID).Msg("Shipment created")
	return shipment, nil
}

// UpdateShipmentStatus overwrites the status of the shipment with the given tracking id
func (s *ShipmentService) UpdateShipmentStatus(ctx context.Context, cmd UpdateShipmentStatusCommand) (*models.Shipment, error) {
	return s.updateStatus(ctx, cmd, SourceAPI)
}

func (s *ShipmentService) updateStatus(ctx context.Context, cmd UpdateShipmentStatusCommand, source string) (*models.Shipment, error) {
	if err := validateCommand(cmd, "Tracking ID and status are required"); err != nil {
		return nil, err
	}

	txn := s.tracer.StartTransaction("update-shipment-status")
	defer s.tracer.EndTransaction(txn)
	s.tracer.AddAttribute(txn, "source", source)

	shipment, err := s.shipments.UpdateStatus(ctx, cmd.TrackingID, cmd.Status)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, NewNotFoundError("Shipment not found", err)
		}
		s.tracer.RecordError(txn, err)
		log.Error().Err(err).Str("tracking_id", cmd.TrackingID).Msg("Error updating shipment status")
		return nil, NewInternalError(err)
	}

	metrics.ShipmentStatusUpdates.WithLabelValues(source).Inc()
	publish(ctx, s.publisher, messaging.EventShipmentStatusUpdated, shipment)
	log.Info().
		Str("tracking_id", shipment.TrackingID).
		Str("status", shipment.Status).
		Str("source", source).
		Msg("Shipment status updated successfully")
	return shipment, nil
}

// ListShipments returns every stored shipment
func (s *ShipmentService) ListShipments(ctx context.Context) ([]models.Shipment, error) {
	shipments, err := s.shipments.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Error fetching shipments")
		return nil, NewInternalError(err)
	}
	return shipments, nil
}
