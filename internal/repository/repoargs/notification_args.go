package repoargs

import "github.com/kargopanel/backend/internal/domain"

type NotificationCreate struct {
	UserID  int64
	Type    domain.NotificationType
	Title   string
	Message string
}
