package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"example.com/backstage/services/supplychain/internal/models"
)

// NewGormRepositories builds every repository on top of a relational database
func NewGormRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Materials:    NewGormMaterialRepository(db),
		Transactions: NewGormTransactionRepository(db),
		Shipments:    NewGormShipmentRepository(db),
		Participants: NewGormParticipantRepository(db),
	}
}

// translate maps gorm errors onto the repository sentinel errors
func translate(err error, msg string) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return errors.Wrap(ErrNotFound, msg)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return errors.Wrap(ErrDuplicateKey, msg)
	default:
		return errors.Wrap(err, msg)
	}
}

// GormMaterialRepository stores materials in a relational table
type GormMaterialRepository struct {
	db *gorm.DB
}

// NewGormMaterialRepository creates a new repository
func NewGormMaterialRepository(db *gorm.DB) *GormMaterialRepository {
	return &GormMaterialRepository{db: db}
}

// Create inserts a material, assigning an ID when missing
func (r *GormMaterialRepository) Create(ctx context.Context, material *models.Material) error {
	if material.ID == "" {
		material.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(material).Error; err != nil {
		return translate(err, "failed to create material")
	}
	return nil
}

// List returns every material
func (r *GormMaterialRepository) List(ctx context.Context) ([]models.Material, error) {
	materials := make([]models.Material, 0)
	if err := r.db.WithContext(ctx).Order("created_at").Find(&materials).Error; err != nil {
		return nil, translate(err, "failed to list materials")
	}
	return materials, nil
}

// GormTransactionRepository stores the transaction log in a relational table
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new repository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// Create appends a transaction, assigning an ID when missing
func (r *GormTransactionRepository) Create(ctx context.Context, transaction *models.Transaction) error {
	if transaction.ID == "" {
		transaction.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(transaction).Error; err != nil {
		return translate(err, "failed to create transaction")
	}
	return nil
}

// List returns every transaction, newest first
func (r *GormTransactionRepository) List(ctx context.Context) ([]models.Transaction, error) {
	transactions := make([]models.Transaction, 0)
	if err := r.db.WithContext(ctx).Order("timestamp DESC").Find(&transactions).Error; err != nil {
		return nil, translate(err, "failed to list transactions")
	}
	return transactions, nil
}

// ListByMaterial returns the transactions of one material, newest first
func (r *GormTransactionRepository) ListByMaterial(ctx context.Context, materialID int64) ([]models.Transaction, error) {
	transactions := make([]models.Transaction, 0)
	err := r.db.WithContext(ctx).
		Where("material_id = ?", materialID).
		Order("timestamp DESC").
		Find(&transactions).Error
	if err != nil {
		return nil, translate(err, "failed to list material transactions")
	}
	return transactions, nil
}

// GormShipmentRepository stores shipments in a relational table
type GormShipmentRepository struct {
	db *gorm.DB
}

// NewGormShipmentRepository creates a new repository
func NewGormShipmentRepository(db *gorm.DB) *GormShipmentRepository {
	return &GormShipmentRepository{db: db}
}

// Create inserts a shipment, assigning an ID when missing
func (r *GormShipmentRepository) Create(ctx context.Context, shipment *models.Shipment) error {
	if shipment.ID == "" {
		shipment.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(shipment).Error; err != nil {
		return translate(err, "failed to create shipment")
	}
	return nil
}

// List returns every shipment
func (r *GormShipmentRepository) List(ctx context.Context) ([]models.Shipment, error) {
	shipments := make([]models.Shipment, 0)
	if err := r.db.WithContext(ctx).Order("created_at").Find(&shipments).Error; err != nil {
		return nil, translate(err, "failed to list shipments")
	}
	return shipments, nil
}

// UpdateStatus overwrites the status of the shipment with the given tracking ID
func (r *GormShipmentRepository) UpdateStatus(ctx context.Context, trackingID, status string) (*models.Shipment, error) {
	var shipment models.Shipment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tracking_id = ?", trackingID).First(&shipment).Error; err != nil {
			return err
		}
		shipment.Status = status
		return tx.Save(&shipment).Error
	})
	if err != nil {
		return nil, translate(err, "failed to update shipment status")
	}
	return &shipment, nil
}

// GormParticipantRepository stores participants in a relational table
type GormParticipantRepository struct {
	db *gorm.DB
}

// NewGormParticipantRepository creates a new repository
func NewGormParticipantRepository(db *gorm.DB) *GormParticipantRepository {
	return &GormParticipantRepository{db: db}
}

// Create inserts a participant, assigning an ID when missing
func (r *GormParticipantRepository) Create(ctx context.Context, participant *models.Participant) error {
	if participant.ID == "" {
		participant.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(participant).Error; err != nil {
		return translate(err, "failed to create participant")
	}
	return nil
}

// List returns every participant
func (r *GormParticipantRepository) List(ctx context.Context) ([]models.Participant, error) {
	participants := make([]models.Participant, 0)
	if err := r.db.WithContext(ctx).Order("created_at").Find(&participants).Error; err != nil {
		return nil, translate(err, "failed to list participants")
	}
	return participants, nil
}
