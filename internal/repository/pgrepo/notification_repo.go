package pgrepo

import (
	"context"

	"github.com/kargopanel/backend/internal/domain"
	"github.com/kargopanel/backend/internal/repository/repoargs"
	"github.com/kargopanel/backend/pkg/uow"
)

const notificationColumns = `id, created_at, user_id, type, title, message, read`

type NotificationRepository struct {
	db uow.DBTX
}

func NewNotificationRepository(db uow.DBTX) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, args repoargs.NotificationCreate) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO notifications (user_id, type, title, message)
		VALUES ($1, $2, $3, $4)`,
		args.UserID, args.Type, args.Title, args.Message,
	)
	if err != nil {
		return convertErr(err, "creating notification for user %d", args.UserID)
	}
	return nil
}

func (r *NotificationRepository) GetByUserID(
	ctx context.Context,
	userID int64,
	limit int64,
) ([]domain.Notification, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+notificationColumns+` FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, convertErr(err, "listing notifications of user %d", userID)
	}
	defer rows.Close()

	var notifications []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if scanErr := rows.Scan(
			&n.ID, &n.CreatedAt, &n.UserID, &n.Type, &n.Title, &n.Message, &n.Read,
		); scanErr != nil {
			return nil, convertErr(scanErr, "scanning notification")
		}
		notifications = append(notifications, n)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "listing notifications of user %d", userID)
	}
	return notifications, nil
}

// MarkRead помечает уведомление прочитанным. Скоуп по user_id: чужое
// уведомление пометить нельзя.
func (r *NotificationRepository) MarkRead(ctx context.Context, userID, id int64) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE notifications SET read = TRUE WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return convertErr(err, "marking notification %d", id)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRecordNotFound
	}
	return nil
}
