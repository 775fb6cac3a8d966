package service

import (
	"context"

	"github.com/kargopanel/backend/internal/domain"
	"github.com/kargopanel/backend/internal/repository/repoargs"
	"github.com/kargopanel/backend/pkg/uow"
)

// defaultNotificationLimit сколько последних уведомлений отдаем клиенту.
const defaultNotificationLimit = 20

type NotificationService struct {
	notificationRepo NotificationRepository
}

func NewNotificationService(u uow.UOW) (*NotificationService, error) {
	notificationRepo, err :=
		uow.GetRepositoryAs[NotificationRepository](u, uow.RepositoryName(repoargs.NotificationRepoName))
	if err != nil {
		return nil, err
	}
	return &NotificationService{notificationRepo: notificationRepo}, nil
}

func (s *NotificationService) GetByUserID(ctx context.Context, userID int64) ([]domain.Notification, error) {
	notifications, err := s.notificationRepo.GetByUserID(ctx, userID, defaultNotificationLimit)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return notifications, nil
}

// MarkRead помечает уведомление прочитанным. Чужое уведомление дает
// domain.ErrRecordNotFound.
func (s *NotificationService) MarkRead(ctx context.Context, userID, id int64) error {
	return s.notificationRepo.MarkRead(ctx, userID, id) //nolint:wrapcheck
}
