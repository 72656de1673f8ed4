package services

import (
	"context"

	"salonBack/internal/models"
	"salonBack/internal/repositories"
)

type BotSettingsService struct {
	SettingsRepo *repositories.BotSettingsRepository
}

func (s *BotSettingsService) Get(ctx context.Context) (models.BotSettings, error) {
	return s.SettingsRepo.Get(ctx)
}

func (s *BotSettingsService) Save(ctx context.Context, settings models.BotSettings) error {
	return s.SettingsRepo.Save(ctx, settings)
}
