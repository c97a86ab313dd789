package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"example.com/backstage/services/supplychain/internal/messaging"
	"example.com/backstage/services/supplychain/internal/models"
	"example.com/backstage/services/supplychain/internal/repositories"
	"example.com/backstage/services/supplychain/internal/tracing"
)

// AddParticipantCommand is the input of AddParticipant
type AddParticipantCommand struct {
	Name    string `json:"name" validate:"required"`
	Role    string `json:"role" validate:"required"`
	Address string `json:"address" validate:"required"`
}

// ParticipantService handles supply chain participants
type ParticipantService struct {
	participants repositories.ParticipantRepository
	publisher    messaging.Publisher
	tracer       tracing.Tracer
}

// NewParticipantService creates a new participant service
func NewParticipantService(participants repositories.ParticipantRepository, publisher messaging.Publisher, tracer tracing.Tracer) *ParticipantService {
	return &ParticipantService{participants: participants, publisher: publisher, tracer: tracer}
}

// AddParticipant stores a new participant
func (s *ParticipantService) AddParticipant(ctx context.Context, cmd AddParticipantCommand) (*models.Participant, error) {
	if err := validateCommand(cmd, "All fields are required"); err != nil {
		return nil, err
	}

	txn := s.tracer.StartTransaction("add-participant")
	defer s.tracer.EndTransaction(txn)

	participant := &models.Participant{
		ID:      uuid.NewString(),
		Name:    cmd.Name,
		Role:    cmd.Role,
		Address: cmd.Address,
	}
	if err := s.participants.Create(ctx, participant); err != nil {
		s.tracer.RecordError(txn, err)
		log.Error().Err(err).Str("address", cmd.Address).Msg("Error adding participant")
		return nil, NewInternalError(err)
	}

	publish(ctx, s.publisher, messaging.EventParticipantAdded, participant)
	return participant, nil
}

// ListParticipants returns every stored participant
func (s *ParticipantService) ListParticipants(ctx context.Context) ([]models.Participant, error) {
	participants, err := s.participants.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Error fetching participants")
		return nil, NewInternalError(err)
	}
	return participants, nil
}
