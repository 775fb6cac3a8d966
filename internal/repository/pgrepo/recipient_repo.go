package pgrepo

import (
	"context"

	"github.com/kargopanel/backend/internal/domain"
	"github.com/kargopanel/backend/internal/repository/repoargs"
	"github.com/kargopanel/backend/pkg/uow"
)

const savedRecipientColumns = `id, created_at, user_id, name, phone, city, district,
address, usage_count, last_used_at`

type SavedRecipientRepository struct {
	db uow.DBTX
}

func NewSavedRecipientRepository(db uow.DBTX) *SavedRecipientRepository {
	return &SavedRecipientRepository{db: db}
}

// Save создает получателя либо, если пара (имя, телефон) уже сохранена этим
// юзером, обновляет адрес и наращивает счетчик использований.
func (r *SavedRecipientRepository) Save(
	ctx context.Context,
	args repoargs.SavedRecipientSave,
) (*domain.SavedRecipient, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO saved_recipients (id, user_id, name, phone, city, district, address)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, name, phone) DO UPDATE
		SET city = EXCLUDED.city,
		    district = EXCLUDED.district,
		    address = EXCLUDED.address,
		    usage_count = saved_recipients.usage_count + 1,
		    last_used_at = now()
		RETURNING `+savedRecipientColumns,
		args.ID, args.UserID, args.Name, args.Phone, args.City, args.District, args.Address,
	)
	recipient, err := scanSavedRecipient(row)
	if err != nil {
		return nil, convertErr(err, "saving recipient for user %d", args.UserID)
	}
	return recipient, nil
}

func (r *SavedRecipientRepository) GetByUserID(
	ctx context.Context,
	userID int64,
	limit int64,
) ([]domain.SavedRecipient, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+savedRecipientColumns+` FROM saved_recipients
		WHERE user_id = $1
		ORDER BY last_used_at DESC
		LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, convertErr(err, "listing recipients of user %d", userID)
	}
	defer rows.Close()
	return collectSavedRecipients(rows)
}

// Search ищет по имени, самые используемые сверху.
func (r *SavedRecipientRepository) Search(
	ctx context.Context,
	userID int64,
	query string,
) ([]domain.SavedRecipient, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+savedRecipientColumns+` FROM saved_recipients
		WHERE user_id = $1 AND name ILIKE $2
		ORDER BY usage_count DESC
		LIMIT 10`,
		userID, "%"+query+"%",
	)
	if err != nil {
		return nil, convertErr(err, "searching recipients of user %d", userID)
	}
	defer rows.Close()
	return collectSavedRecipients(rows)
}

func (r *SavedRecipientRepository) Delete(ctx context.Context, userID int64, id string) error {
	tag, err := r.db.Exec(
		ctx, `DELETE FROM saved_recipients WHERE id = $1 AND user_id = $2`, id, userID,
	)
	if err != nil {
		return convertErr(err, "deleting recipient %s", id)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRecordNotFound
	}
	return nil
}

func collectSavedRecipients(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]domain.SavedRecipient, error) {
	var recipients []domain.SavedRecipient
	for rows.Next() {
		recipient, scanErr := scanSavedRecipient(rows)
		if scanErr != nil {
			return nil, convertErr(scanErr, "scanning recipient")
		}
		recipients = append(recipients, *recipient)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "listing recipients")
	}
	return recipients, nil
}

func scanSavedRecipient(row rowScanner) (*domain.SavedRecipient, error) {
	var s domain.SavedRecipient
	err := row.Scan(
		&s.ID, &s.CreatedAt, &s.UserID, &s.Name, &s.Phone, &s.City, &s.District,
		&s.Address, &s.UsageCount, &s.LastUsedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
