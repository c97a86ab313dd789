package services

import (
	"context"

	"github.com/rs/zerolog/log"

	"example.com/backstage/services/supplychain/internal/chain"
	"example.com/backstage/services/supplychain/internal/metrics"
	"example.com/backstage/services/supplychain/internal/repositories"
)

// StageDrift is a material whose stored stage differs from the on-chain stage
type StageDrift struct {
	MaterialID   string
	BlockchainID int64
	StoredStage  string
	ChainStage   string
}

// StageDriftChecker compares stored material stages with the contract.
// It only reports; the stored stage is never rewritten.
type StageDriftChecker struct {
	materials repositories.MaterialRepository
	contract  chain.Contract
}

// NewStageDriftChecker creates a new drift checker
func NewStageDriftChecker(materials repositories.MaterialRepository, contract chain.Contract) *StageDriftChecker {
	return &StageDriftChecker{materials: materials, contract: contract}
}

// Check reads the on-chain stage of every material and returns those that drifted.
// Materials whose stage cannot be read are skipped.
func (c *StageDriftChecker) Check(ctx context.Context) ([]StageDrift, error) {
	materials, err := c.materials.List(ctx)
	if err != nil {
		return nil, NewInternalError(err)
	}

	drifted := make([]StageDrift, 0)
	for _, m := range materials {
		if ctx.Err() != nil {
			return drifted, ctx.Err()
		}
		stage, err := c.contract.MaterialStage(ctx, m.BlockchainID)
		if err != nil {
			log.Warn().Err(err).Int64("blockchain_id", m.BlockchainID).Msg("could not read on-chain stage")
			continue
		}
		if stage != m.Stage {
			drifted = append(drifted, StageDrift{
				MaterialID:   m.ID,
				BlockchainID: m.BlockchainID,
				StoredStage:  m.Stage,
				ChainStage:   stage,
			})
			log.Info().
				Int64("blockchain_id", m.BlockchainID).
				Str("stored_stage", m.Stage).
				Str("chain_stage", stage).
				Msg("material stage drifted")
		}
	}

	metrics.StageDrift.Set(float64(len(drifted)))
	return drifted, nil
}
