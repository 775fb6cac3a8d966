package pgrepo

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/kargopanel/backend/internal/domain"
	"github.com/kargopanel/backend/internal/repository/repoargs"
	"github.com/kargopanel/backend/pkg/uow"
)

const userColumns = `id, created_at, updated_at, name, email, phone, company, tax_id,
password, role, balance, total_shipments`

type UserRepository struct {
	db uow.DBTX
}

func NewUserRepository(db uow.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, args repoargs.CreateUser) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO users (name, email, phone, company, tax_id, password, role)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+userColumns,
		args.Name, args.Email, args.Phone, args.Company, args.TaxID, args.Password, args.Role,
	)
	user, err := scanUser(row)
	if err != nil {
		return nil, convertErr(err, "creating user %s", args.Email)
	}
	return user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	user, err := scanUser(row)
	if err != nil {
		return nil, convertErr(err, "finding user by email")
	}
	return user, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	user, err := scanUser(row)
	if err != nil {
		return nil, convertErr(err, "finding user by id %d", id)
	}
	return user, nil
}

// AdjustBalance атомарно изменяет баланс юзера на delta (может быть
// отрицательной) одним UPDATE на стороне базы. Никакого read-modify-write в
// приложении: конкурентные операции не теряют друг друга. Если результат ушел
// бы в минус, возвращает domain.ErrNotEnoughBalance и ничего не меняет.
func (r *UserRepository) AdjustBalance(
	ctx context.Context,
	userID int64,
	delta decimal.Decimal,
) (*repoargs.BalanceChange, error) {
	var after decimal.Decimal
	err := r.db.QueryRow(ctx, `
		UPDATE users
		SET balance = balance + $2, updated_at = now()
		WHERE id = $1 AND balance + $2 >= 0
		RETURNING balance`,
		userID, delta,
	).Scan(&after)

	if err == nil {
		return &repoargs.BalanceChange{Before: after.Sub(delta), After: after}, nil
	}

	// Пустой результат означает либо отсутствие юзера, либо отсечку по
	// неотрицательности. Различаем отдельным запросом.
	var exists bool
	if existsErr := r.db.QueryRow(
		ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID,
	).Scan(&exists); existsErr != nil {
		return nil, convertErr(existsErr, "adjusting balance of user %d", userID)
	}
	if exists {
		return nil, domain.ErrNotEnoughBalance
	}
	return nil, convertErr(err, "adjusting balance of user %d", userID)
}

func (r *UserRepository) IncrementShipments(ctx context.Context, userID int64) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE users SET total_shipments = total_shipments + 1, updated_at = now()
		WHERE id = $1`, userID)
	if err != nil {
		return convertErr(err, "incrementing shipments of user %d", userID)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRecordNotFound
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context, args repoargs.ListUsers) ([]domain.User, int64, error) {
	pattern := "%" + args.Search + "%"

	var total int64
	if err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM users
		WHERE role = 'user'
		  AND ($1 = '%%' OR name ILIKE $1 OR email ILIKE $1 OR company ILIKE $1)`,
		pattern,
	).Scan(&total); err != nil {
		return nil, 0, convertErr(err, "counting users")
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE role = 'user'
		  AND ($1 = '%%' OR name ILIKE $1 OR email ILIKE $1 OR company ILIKE $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		pattern, args.Page.Limit, args.Page.Offset(),
	)
	if err != nil {
		return nil, 0, convertErr(err, "listing users")
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		user, scanErr := scanUser(rows)
		if scanErr != nil {
			return nil, 0, convertErr(scanErr, "scanning user")
		}
		users = append(users, *user)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, 0, convertErr(rowsErr, "listing users")
	}
	return users, total, nil
}

func (r *UserRepository) CountUsers(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE role = 'user'`).Scan(&total); err != nil {
		return 0, convertErr(err, "counting users")
	}
	return total, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.CreatedAt, &u.UpdatedAt, &u.Name, &u.Email, &u.Phone, &u.Company,
		&u.TaxID, &u.Password, &u.Role, &u.Balance, &u.TotalShipments,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
