package client

import "time"

// Material is a tracked supply-chain item
type Material struct {
	ID           string    `json:"id"`
	BlockchainID int64     `json:"blockchainId"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Stage        string    `json:"stage"`
	CreatedAt    time.Time `json:"createdAt"`
}

// TransactionDetails is the action-specific payload of a Transaction
type TransactionDetails struct {
	MaterialCreated *MaterialCreatedDetails `json:"materialCreated,omitempty"`
}

// MaterialCreatedDetails accompanies a MEDICINE_CREATED transaction
type MaterialCreatedDetails struct {
	MaterialRef string `json:"material"`
}

// Transaction is an audit log entry
type Transaction struct {
	ID              string              `json:"id"`
	MaterialID      int64               `json:"materialId"`
	Participant     string              `json:"participant"`
	Action          string              `json:"action"`
	TransactionHash string              `json:"transactionHash,omitempty"`
	Details         *TransactionDetails `json:"details,omitempty"`
	Timestamp       int64               `json:"timestamp"`
}

// Shipment tracks movement of a material between parties
type Shipment struct {
	ID         string    `json:"id"`
	MaterialID int64     `json:"materialId"`
	Sender     string    `json:"sender"`
	Receiver   string    `json:"receiver"`
	TrackingID string    `json:"trackingId"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Participant is a party taking part in the supply chain
type Participant struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"createdAt"`
}

// MaterialStage is the on-chain stage of a material
type MaterialStage struct {
	MaterialID int64  `json:"materialId"`
	Stage      string `json:"stage"`
}

// AddMaterialRequest is the body of AddMaterial. An empty Stage defaults to "Ordered" server side.
type AddMaterialRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Stage       string `json:"stage,omitempty"`
}

// AddMaterialResponse is returned by AddMaterial
type AddMaterialResponse struct {
	Message     string       `json:"message"`
	Material    *Material    `json:"material"`
	Transaction *Transaction `json:"transaction"`
}

// CreateShipmentRequest is the body of CreateShipment
type CreateShipmentRequest struct {
	MaterialID int64  `json:"materialId"`
	Sender     string `json:"sender"`
	Receiver   string `json:"receiver"`
	TrackingID string `json:"trackingId"`
}

// UpdateShipmentStatusRequest is the body of UpdateShipmentStatus
type UpdateShipmentStatusRequest struct {
	TrackingID string `json:"trackingId"`
	Status     string `json:"status"`
}

// ShipmentResponse is returned by CreateShipment and UpdateShipmentStatus
type ShipmentResponse struct {
	Message  string    `json:"message"`
	Shipment *Shipment `json:"shipment"`
}

// RecordTransactionRequest is the body of RecordTransaction. A zero Timestamp is set by the server.
type RecordTransactionRequest struct {
	MaterialID  int64               `json:"materialId"`
	Participant string              `json:"participant"`
	Action      string              `json:"action"`
	Timestamp   int64               `json:"timestamp,omitempty"`
	Details     *TransactionDetails `json:"details,omitempty"`
}

// TransactionResponse is returned by RecordTransaction
type TransactionResponse struct {
	Message     string       `json:"message"`
	Transaction *Transaction `json:"transaction"`
}

// SearchTransactionsParams filters SearchTransactions. Zero values match everything.
type SearchTransactionsParams struct {
	Action      string
	Participant string
	MaterialID  *int64
	Size        int
}

// AddParticipantRequest is the body of AddParticipant
type AddParticipantRequest struct {
	Name    string `json:"name"`
	Role    string `json:"role"`
	Address string `json:"address"`
}

// ParticipantResponse is returned by AddParticipant
type ParticipantResponse struct {
	Message     string       `json:"message"`
	Participant *Participant `json:"participant"`
}
