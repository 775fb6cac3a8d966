package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/kargopanel/backend/internal/domain"
	"github.com/kargopanel/backend/internal/repository/repoargs"
	"github.com/kargopanel/backend/pkg/uow"
)

// recipientListLimit сколько адресатов отдаем в списке без поиска.
const recipientListLimit = 50

// RecipientService адресная книга юзера. Повторное сохранение той же пары
// имя+телефон обновляет адрес и увеличивает счетчик использований.
type RecipientService struct {
	recipientRepo SavedRecipientRepository
}

func NewRecipientService(u uow.UOW) (*RecipientService, error) {
	recipientRepo, err :=
		uow.GetRepositoryAs[SavedRecipientRepository](u, uow.RepositoryName(repoargs.SavedRecipientRepoName))
	if err != nil {
		return nil, err
	}
	return &RecipientService{recipientRepo: recipientRepo}, nil
}

func (s *RecipientService) Save(
	ctx context.Context,
	userID int64,
	recipient domain.Recipient,
) (*domain.SavedRecipient, error) {
	saved, err := s.recipientRepo.Save(ctx, repoargs.SavedRecipientSave{
		ID:       uuid.NewString(),
		UserID:   userID,
		Name:     recipient.Name,
		Phone:    recipient.Phone,
		City:     recipient.City,
		District: recipient.District,
		Address:  recipient.Address,
	})
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return saved, nil
}

func (s *RecipientService) GetByUserID(ctx context.Context, userID int64) ([]domain.SavedRecipient, error) {
	recipients, err := s.recipientRepo.GetByUserID(ctx, userID, recipientListLimit)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return recipients, nil
}

// Search ищет по имени и телефону, самые используемые адресаты первыми.
func (s *RecipientService) Search(ctx context.Context, userID int64, query string) ([]domain.SavedRecipient, error) {
	recipients, err := s.recipientRepo.Search(ctx, userID, query)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return recipients, nil
}

func (s *RecipientService) Delete(ctx context.Context, userID int64, id string) error {
	return s.recipientRepo.Delete(ctx, userID, id) //nolint:wrapcheck
}
