package models

import (
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Default values applied when a caller leaves them empty
const (
	DefaultMaterialStage  = "Ordered"
	DefaultShipmentStatus = "Pending"
)

// Material is a tracked supply-chain item. BlockchainID is the counter value
// the contract assigned when the material was added on chain; Stage is cached
// at creation time and never refreshed.
type Material struct {
	ID           string    `gorm:"type:varchar(36);primaryKey" bson:"_id" json:"id"`
	BlockchainID int64     `gorm:"column:blockchain_id;not null;index" bson:"blockchainId" json:"blockchainId"`
	Name         string    `gorm:"not null" bson:"name" json:"name"`
	Description  string    `gorm:"not null" bson:"description" json:"description"`
	Stage        string    `gorm:"not null;default:Ordered" bson:"stage" json:"stage"`
	CreatedAt    time.Time `gorm:"autoCreateTime" bson:"createdAt" json:"createdAt"`
}

// Shipment is a logistics record tracking movement of a material between parties
type Shipment struct {
	ID         string    `gorm:"type:varchar(36);primaryKey" bson:"_id" json:"id"`
	MaterialID int64     `gorm:"column:material_id;not null;index" bson:"materialId" json:"materialId"`
	Sender     string    `gorm:"not null" bson:"sender" json:"sender"`
	Receiver   string    `gorm:"not null" bson:"receiver" json:"receiver"`
	TrackingID string    `gorm:"column:tracking_id;not null;uniqueIndex" bson:"trackingId" json:"trackingId"`
	Status     string    `gorm:"not null;default:Pending" bson:"status" json:"status"`
	CreatedAt  time.Time `gorm:"autoCreateTime" bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" bson:"updatedAt" json:"updatedAt"`
}

// Participant is a party taking part in the supply chain
type Participant struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" bson:"_id" json:"id"`
	Name      string    `gorm:"not null" bson:"name" json:"name"`
	Role      string    `gorm:"not null" bson:"role" json:"role"`
	Address   string    `gorm:"not null;index" bson:"address" json:"address"`
	CreatedAt time.Time `gorm:"autoCreateTime" bson:"createdAt" json:"createdAt"`
}

// SetupModels runs the auto-migrations for every persisted model
func SetupModels(db *gorm.DB) error {
	if err := db.AutoMigrate(&Material{}, &Transaction{}, &Shipment{}, &Participant{}); err != nil {
		return errors.Wrap(err, "failed to auto-migrate models")
	}
	return nil
}
