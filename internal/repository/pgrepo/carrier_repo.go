package pgrepo

import (
	"context"

	"github.com/kargopanel/backend/internal/domain"
	"github.com/kargopanel/backend/internal/repository/repoargs"
	"github.com/kargopanel/backend/pkg/uow"
)

const carrierColumns = `id, created_at, name, logo, price, delivery_time, is_active`

type CarrierRepository struct {
	db uow.DBTX
}

func NewCarrierRepository(db uow.DBTX) *CarrierRepository {
	return &CarrierRepository{db: db}
}

func (r *CarrierRepository) Create(ctx context.Context, args repoargs.CarrierCreate) (*domain.Carrier, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO carriers (name, logo, price, delivery_time)
		VALUES ($1, $2, $3, $4)
		RETURNING `+carrierColumns,
		args.Name, args.Logo, args.Price, args.DeliveryTime,
	)
	carrier, err := scanCarrier(row)
	if err != nil {
		return nil, convertErr(err, "creating carrier %s", args.Name)
	}
	return carrier, nil
}

func (r *CarrierRepository) Update(ctx context.Context, args repoargs.CarrierUpdate) (*domain.Carrier, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE carriers
		SET name = COALESCE($2, name),
		    logo = COALESCE($3, logo),
		    price = COALESCE($4, price),
		    delivery_time = COALESCE($5, delivery_time),
		    is_active = COALESCE($6, is_active)
		WHERE id = $1
		RETURNING `+carrierColumns,
		args.ID, args.Name, args.Logo, args.Price, args.DeliveryTime, args.IsActive,
	)
	carrier, err := scanCarrier(row)
	if err != nil {
		return nil, convertErr(err, "updating carrier %d", args.ID)
	}
	return carrier, nil
}

func (r *CarrierRepository) FindByID(ctx context.Context, id int64) (*domain.Carrier, error) {
	row := r.db.QueryRow(ctx, `SELECT `+carrierColumns+` FROM carriers WHERE id = $1`, id)
	carrier, err := scanCarrier(row)
	if err != nil {
		return nil, convertErr(err, "finding carrier %d", id)
	}
	return carrier, nil
}

func (r *CarrierRepository) GetActive(ctx context.Context) ([]domain.Carrier, error) {
	rows, err := r.db.Query(ctx, `SELECT `+carrierColumns+` FROM carriers WHERE is_active ORDER BY name`)
	if err != nil {
		return nil, convertErr(err, "listing active carriers")
	}
	defer rows.Close()

	var carriers []domain.Carrier
	for rows.Next() {
		carrier, scanErr := scanCarrier(rows)
		if scanErr != nil {
			return nil, convertErr(scanErr, "scanning carrier")
		}
		carriers = append(carriers, *carrier)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "listing active carriers")
	}
	return carriers, nil
}

func scanCarrier(row rowScanner) (*domain.Carrier, error) {
	var c domain.Carrier
	err := row.Scan(&c.ID, &c.CreatedAt, &c.Name, &c.Logo, &c.Price, &c.DeliveryTime, &c.IsActive)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
