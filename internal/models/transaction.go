package models

import (
	"fmt"
)

// Transaction actions recorded by the service itself
const (
	ActionMaterialCreated = "MEDICINE_CREATED"
)

// Transaction is an append-only audit entry of an action taken on a material.
// It is unrelated to a chain transaction unless TransactionHash is set.
type Transaction struct {
	ID              string              `gorm:"type:varchar(36);primaryKey" bson:"_id" json:"id"`
	MaterialID      int64               `gorm:"column:material_id;not null;index" bson:"materialId" json:"materialId"`
	Participant     string              `gorm:"not null" bson:"participant" json:"participant"`
	Action          string              `gorm:"not null;index" bson:"action" json:"action"`
	TransactionHash string              `gorm:"column:transaction_hash" bson:"transactionHash,omitempty" json:"transactionHash,omitempty"`
	Details         *TransactionDetails `gorm:"type:text;serializer:json" bson:"details,omitempty" json:"details,omitempty"`
	Timestamp       int64               `gorm:"not null;index" bson:"timestamp" json:"timestamp"`
}

// TransactionDetails is the action-specific payload of a Transaction.
// Exactly one variant is populated and it must match the transaction action.
type TransactionDetails struct {
	MaterialCreated *MaterialCreatedDetails `json:"materialCreated,omitempty" bson:"materialCreated,omitempty"`
}

// MaterialCreatedDetails accompanies a MEDICINE_CREATED transaction
type MaterialCreatedDetails struct {
	MaterialRef string `json:"material" bson:"material"`
}

// NewMaterialCreatedDetails builds the details payload for a newly stored material
func NewMaterialCreatedDetails(materialRef string) *TransactionDetails {
	return &TransactionDetails{MaterialCreated: &MaterialCreatedDetails{MaterialRef: materialRef}}
}

// Action reports which action the populated variant belongs to, or "" when empty
func (d *TransactionDetails) Action() string {
	if d == nil {
		return ""
	}
	if d.MaterialCreated != nil {
		return ActionMaterialCreated
	}
	return ""
}

// ValidateDetails checks that a populated details variant agrees with the action tag.
// Details are optional for every action.
func (t *Transaction) ValidateDetails() error {
	variant := t.Details.Action()
	if variant == "" {
		return nil
	}
	if variant != t.Action {
		return fmt.Errorf("details for %s cannot be attached to action %s", variant, t.Action)
	}
	return nil
}
