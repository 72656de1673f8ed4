package services

import (
	"context"
	"errors"

	"salonBack/internal/models"
	"salonBack/internal/repositories"
)

var ErrInvalidRuleOffset = errors.New("hours_after_interest must be a positive integer")

type RemarketingRuleService struct {
	RuleRepo *repositories.RemarketingRuleRepository
}

func (s *RemarketingRuleService) CreateRule(ctx context.Context, rule models.RemarketingRule) (models.RemarketingRule, error) {
	if rule.HoursAfterInterest <= 0 {
		return models.RemarketingRule{}, ErrInvalidRuleOffset
	}
	return s.RuleRepo.Create(ctx, rule)
}

func (s *RemarketingRuleService) GetRuleByID(ctx context.Context, id int) (models.RemarketingRule, error) {
	return s.RuleRepo.GetByID(ctx, id)
}

func (s *RemarketingRuleService) UpdateRule(ctx context.Context, rule models.RemarketingRule) error {
	if rule.HoursAfterInterest <= 0 {
		return ErrInvalidRuleOffset
	}
	return s.RuleRepo.Update(ctx, rule)
}

func (s *RemarketingRuleService) DeleteRule(ctx context.Context, id int) error {
	return s.RuleRepo.Delete(ctx, id)
}

func (s *RemarketingRuleService) GetRules(ctx context.Context) ([]models.RemarketingRule, error) {
	return s.RuleRepo.List(ctx)
}
