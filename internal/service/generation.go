package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/alternagen/api/internal/apperror"
	"github.com/alternagen/api/internal/generator"
	"github.com/alternagen/api/internal/model"
	"github.com/alternagen/api/internal/repository"
)

// TextGenerator produces a document from a prompt. Implemented by
// generator.Gemini; tests use a stub.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GenerationService gates AI document generation behind the credit ledger
// and records every result as history.
type GenerationService struct {
	credits     repository.CreditsRepository
	generations repository.GenerationRepository
	gen         TextGenerator
	logger      *slog.Logger
}

func NewGenerationService(
	credits repository.CreditsRepository,
	generations repository.GenerationRepository,
	gen TextGenerator,
	logger *slog.Logger,
) *GenerationService {
	return &GenerationService{
		credits:     credits,
		generations: generations,
		gen:         gen,
		logger:      logger,
	}
}

// GenerateCV produces a CV for the given input. Costs one credit unless the
// user is subscribed; exhausted credits are PaymentRequired.
func (s *GenerationService) GenerateCV(ctx context.Context, userID string, input generator.CVInput) (*model.Generation, error) {
	return s.generate(ctx, userID, model.GenerationCV, input, generator.CVPrompt(input))
}

// GenerateCoverLetter produces a cover letter for the given input, under the
// same credit gate as GenerateCV.
func (s *GenerationService) GenerateCoverLetter(ctx context.Context, userID string, input generator.CoverLetterInput) (*model.Generation, error) {
	return s.generate(ctx, userID, model.GenerationCoverLetter, input, generator.CoverLetterPrompt(input))
}

func (s *GenerationService) generate(ctx context.Context, userID string, genType model.GenerationType, input any, prompt string) (*model.Generation, error) {
	// The credit is spent before the model call: a crash between the two
	// loses at most one credit, never produces an unpaid generation.
	allowed, err := s.credits.ConsumeCredit(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("consuming credit: %w", err)
	}
	if !allowed {
		return nil, apperror.PaymentRequired("no credits remaining, upgrade to Pro for unlimited generations")
	}

	output, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		s.logger.Error("generation failed",
			slog.String("userId", userID),
			slog.String("type", string(genType)),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("generating %s: %w", genType, err)
	}

	inputJSON, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("encoding generation input: %w", err)
	}

	gen := &model.Generation{
		UserID: userID,
		Type:   genType,
		Input:  string(inputJSON),
		Output: output,
	}
	if err := s.generations.CreateGeneration(ctx, gen); err != nil {
		return nil, fmt.Errorf("saving generation: %w", err)
	}

	s.logger.Info("generation complete",
		slog.String("id", gen.ID),
		slog.String("userId", userID),
		slog.String("type", string(genType)),
	)

	return gen, nil
}

// Credits returns the user's allowance, creating the ledger on first read.
func (s *GenerationService) Credits(ctx context.Context, userID string) (*model.Credits, error) {
	return s.credits.GetCredits(ctx, userID)
}

// History returns the user's most recent generations.
func (s *GenerationService) History(ctx context.Context, userID string, limit int) ([]model.Generation, error) {
	gens, err := s.generations.ListGenerations(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing generations: %w", err)
	}
	return gens, nil
}
