package repositories

import (
	"context"

	"example.com/backstage/services/supplychain/internal/models"
)

// MaterialRepository provides access to material documents
type MaterialRepository interface {
	Create(ctx context.Context, material *models.Material) error
	List(ctx context.Context) ([]models.Material, error)
}

// TransactionRepository provides access to the append-only transaction log.
// Listings are ordered newest first.
type TransactionRepository interface {
	Create(ctx context.Context, transaction *models.Transaction) error
	List(ctx context.Context) ([]models.Transaction, error)
	ListByMaterial(ctx context.Context, materialID int64) ([]models.Transaction, error)
}

// ShipmentRepository provides access to shipment documents
type ShipmentRepository interface {
	Create(ctx context.Context, shipment *models.Shipment) error
	List(ctx context.Context) ([]models.Shipment, error)
	UpdateStatus(ctx context.Context, trackingID, status string) (*models.Shipment, error)
}

// ParticipantRepository provides access to participant documents
type ParticipantRepository interface {
	Create(ctx context.Context, participant *models.Participant) error
	List(ctx context.Context) ([]models.Participant, error)
}

// Repositories bundles the repositories of one storage backend
type Repositories struct {
	Materials    MaterialRepository
	Transactions TransactionRepository
	Shipments    ShipmentRepository
	Participants ParticipantRepository
}
