package services

import (
	"context"

	"salonBack/internal/line"
	"salonBack/internal/models"
	"salonBack/internal/repositories"
)

// LineUserService backs the admin CRM screens: listing, notes/tags, payment
// confirmation and manual pushes.
type LineUserService struct {
	UserRepo *repositories.LineUserRepository
	Sender   MessageSender
}

func (s *LineUserService) GetUsers(ctx context.Context) ([]models.LineUser, error) {
	return s.UserRepo.List(ctx)
}

func (s *LineUserService) GetUserByID(ctx context.Context, id int) (models.LineUser, error) {
	return s.UserRepo.GetByID(ctx, id)
}

func (s *LineUserService) UpdateAdminFields(ctx context.Context, id int, notes, tags string) error {
	return s.UserRepo.UpdateAdminFields(ctx, id, notes, tags)
}

func (s *LineUserService) ConfirmPayment(ctx context.Context, id int) error {
	return s.UserRepo.ConfirmPayment(ctx, id)
}

// PushText sends a manual admin message to the user's LINE account.
func (s *LineUserService) PushText(ctx context.Context, id int, text string) error {
	u, err := s.UserRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return s.Sender.Push(ctx, u.LineUserID, line.NewText(text))
}
