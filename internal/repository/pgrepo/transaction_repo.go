package pgrepo

import (
	"context"

	"github.com/kargopanel/backend/internal/domain"
	"github.com/kargopanel/backend/internal/repository/repoargs"
	"github.com/kargopanel/backend/pkg/uow"
)

const transactionColumns = `id, created_at, user_id, type, amount, balance_before,
balance_after, description, order_id, deposit_request_id`

type TransactionRepository struct {
	db uow.DBTX
}

func NewTransactionRepository(db uow.DBTX) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(
	ctx context.Context,
	args repoargs.TransactionCreate,
) (*domain.Transaction, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO transactions
			(id, user_id, type, amount, balance_before, balance_after, description,
			 order_id, deposit_request_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+transactionColumns,
		args.ID, args.UserID, args.Type, args.Amount, args.BalanceBefore,
		args.BalanceAfter, args.Description, args.OrderID, args.DepositRequestID,
	)
	transaction, err := scanTransaction(row)
	if err != nil {
		return nil, convertErr(err, "creating transaction for user %d", args.UserID)
	}
	return transaction, nil
}

func (r *TransactionRepository) GetByUserID(
	ctx context.Context,
	userID int64,
	page repoargs.Page,
) ([]domain.Transaction, int64, error) {
	var total int64
	if err := r.db.QueryRow(
		ctx, `SELECT COUNT(*) FROM transactions WHERE user_id = $1`, userID,
	).Scan(&total); err != nil {
		return nil, 0, convertErr(err, "counting transactions of user %d", userID)
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+transactionColumns+` FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		userID, page.Limit, page.Offset(),
	)
	if err != nil {
		return nil, 0, convertErr(err, "listing transactions of user %d", userID)
	}
	defer rows.Close()

	var transactions []domain.Transaction
	for rows.Next() {
		transaction, scanErr := scanTransaction(rows)
		if scanErr != nil {
			return nil, 0, convertErr(scanErr, "scanning transaction")
		}
		transactions = append(transactions, *transaction)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, 0, convertErr(rowsErr, "listing transactions of user %d", userID)
	}
	return transactions, total, nil
}

func scanTransaction(row rowScanner) (*domain.Transaction, error) {
	var t domain.Transaction
	err := row.Scan(
		&t.ID, &t.CreatedAt, &t.UserID, &t.Type, &t.Amount, &t.BalanceBefore,
		&t.BalanceAfter, &t.Description, &t.OrderID, &t.DepositRequestID,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
