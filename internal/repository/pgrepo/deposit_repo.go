package pgrepo

import (
	"context"

	"github.com/kargopanel/backend/internal/domain"
	"github.com/kargopanel/backend/internal/repository/repoargs"
	"github.com/kargopanel/backend/pkg/uow"
)

const depositColumns = `id, created_at, updated_at, user_id, amount, sender_name,
description, payment_date, status, admin_note, approved_by`

type DepositRepository struct {
	db uow.DBTX
}

func NewDepositRepository(db uow.DBTX) *DepositRepository {
	return &DepositRepository{db: db}
}

func (r *DepositRepository) Create(
	ctx context.Context,
	args repoargs.DepositCreate,
) (*domain.DepositRequest, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO deposit_requests (id, user_id, amount, sender_name, description, payment_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+depositColumns,
		args.ID, args.UserID, args.Amount, args.SenderName, args.Description, args.PaymentDate,
	)
	request, err := scanDeposit(row)
	if err != nil {
		return nil, convertErr(err, "creating deposit request for user %d", args.UserID)
	}
	return request, nil
}

func (r *DepositRepository) FindByID(ctx context.Context, id string) (*domain.DepositRequest, error) {
	row := r.db.QueryRow(ctx, `SELECT `+depositColumns+` FROM deposit_requests WHERE id = $1`, id)
	request, err := scanDeposit(row)
	if err != nil {
		return nil, convertErr(err, "finding deposit request %s", id)
	}
	return request, nil
}

// MarkProcessed переводит pending-заявку в терминальный статус. Условие
// status = 'pending' стоит прямо в запросе: повторная обработка не пройдет
// даже при конкурентных запросах двух админов. Для уже обработанной (но
// существующей) заявки возвращает domain.ErrDepositProcessed.
func (r *DepositRepository) MarkProcessed(
	ctx context.Context,
	args repoargs.DepositMarkProcessed,
) (*domain.DepositRequest, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE deposit_requests
		SET status = $2, admin_note = $3, approved_by = $4, updated_at = now()
		WHERE id = $1 AND status = 'pending'
		RETURNING `+depositColumns,
		args.ID, args.Status, args.AdminNote, args.AdminID,
	)
	request, err := scanDeposit(row)
	if err == nil {
		return request, nil
	}

	var status domain.DepositStatusType
	statusErr := r.db.QueryRow(
		ctx, `SELECT status FROM deposit_requests WHERE id = $1`, args.ID,
	).Scan(&status)
	if statusErr != nil {
		return nil, convertErr(statusErr, "marking deposit request %s", args.ID)
	}
	if status != domain.DepositStatusPending {
		return nil, domain.ErrDepositProcessed
	}
	return nil, convertErr(err, "marking deposit request %s", args.ID)
}

func (r *DepositRepository) GetByUserID(
	ctx context.Context,
	userID int64,
	page repoargs.Page,
) ([]domain.DepositRequest, int64, error) {
	var total int64
	if err := r.db.QueryRow(
		ctx, `SELECT COUNT(*) FROM deposit_requests WHERE user_id = $1`, userID,
	).Scan(&total); err != nil {
		return nil, 0, convertErr(err, "counting deposit requests of user %d", userID)
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+depositColumns+` FROM deposit_requests
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		userID, page.Limit, page.Offset(),
	)
	if err != nil {
		return nil, 0, convertErr(err, "listing deposit requests of user %d", userID)
	}
	defer rows.Close()

	return collectDeposits(rows, total)
}

func (r *DepositRepository) List(
	ctx context.Context,
	args repoargs.ListDeposits,
) ([]domain.DepositRequest, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM deposit_requests
		WHERE ($1 = '' OR status = $1)`,
		string(args.Status),
	).Scan(&total); err != nil {
		return nil, 0, convertErr(err, "counting deposit requests")
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+depositColumns+` FROM deposit_requests
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		string(args.Status), args.Page.Limit, args.Page.Offset(),
	)
	if err != nil {
		return nil, 0, convertErr(err, "listing deposit requests")
	}
	defer rows.Close()

	return collectDeposits(rows, total)
}

func collectDeposits(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}, total int64) ([]domain.DepositRequest, int64, error) {
	var requests []domain.DepositRequest
	for rows.Next() {
		request, scanErr := scanDeposit(rows)
		if scanErr != nil {
			return nil, 0, convertErr(scanErr, "scanning deposit request")
		}
		requests = append(requests, *request)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, 0, convertErr(rowsErr, "listing deposit requests")
	}
	return requests, total, nil
}

func scanDeposit(row rowScanner) (*domain.DepositRequest, error) {
	var d domain.DepositRequest
	err := row.Scan(
		&d.ID, &d.CreatedAt, &d.UpdatedAt, &d.UserID, &d.Amount, &d.SenderName,
		&d.Description, &d.PaymentDate, &d.Status, &d.AdminNote, &d.ApprovedBy,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
