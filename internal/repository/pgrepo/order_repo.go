package pgrepo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kargopanel/backend/internal/domain"
	"github.com/kargopanel/backend/internal/repository/repoargs"
	"github.com/kargopanel/backend/pkg/uow"
)

const orderColumns = `id, created_at, updated_at, order_code, tracking_code, user_id,
recipient_name, recipient_phone, recipient_city, recipient_district, recipient_address,
carrier_id, carrier_name, status, status_text, weight, desi, price, payment_type,
cod_amount, description, current_location, timeline, delivered_at`

type OrderRepository struct {
	db uow.DBTX
}

func NewOrderRepository(db uow.DBTX) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Create(ctx context.Context, args repoargs.OrderCreate) (*domain.Order, error) {
	locationJSON, locErr := json.Marshal(args.CurrentLocation)
	if locErr != nil {
		return nil, fmt.Errorf("marshaling order location: %w", locErr)
	}
	timelineJSON, tlErr := json.Marshal([]domain.TimelineEvent{args.InitialEvent})
	if tlErr != nil {
		return nil, fmt.Errorf("marshaling order timeline: %w", tlErr)
	}

	row := r.db.QueryRow(ctx, `
		INSERT INTO orders
			(order_code, tracking_code, user_id,
			 recipient_name, recipient_phone, recipient_city, recipient_district, recipient_address,
			 carrier_id, carrier_name, status, status_text, weight, desi, price,
			 payment_type, cod_amount, description, current_location, timeline)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		RETURNING `+orderColumns,
		args.OrderCode, args.TrackingCode, args.UserID,
		args.Recipient.Name, args.Recipient.Phone, args.Recipient.City,
		args.Recipient.District, args.Recipient.Address,
		args.CarrierID, args.CarrierName, args.InitialEvent.Status, args.InitialEvent.Status.Text(),
		args.Weight, args.Desi, args.Price,
		args.PaymentType, args.CODAmount, args.Description, locationJSON, timelineJSON,
	)
	order, err := scanOrder(row)
	if err != nil {
		return nil, convertErr(err, "creating order %s", args.OrderCode)
	}
	return order, nil
}

func (r *OrderRepository) FindByOrderCode(ctx context.Context, orderCode string) (*domain.Order, error) {
	row := r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE order_code = $1`, orderCode)
	order, err := scanOrder(row)
	if err != nil {
		return nil, convertErr(err, "finding order %s", orderCode)
	}
	return order, nil
}

func (r *OrderRepository) FindByTrackingCode(ctx context.Context, trackingCode string) (*domain.Order, error) {
	row := r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE tracking_code = $1`, trackingCode)
	order, err := scanOrder(row)
	if err != nil {
		return nil, convertErr(err, "finding order by tracking code")
	}
	return order, nil
}

// FindForUser ищет заказ юзера по коду заказа либо по внутреннему id.
func (r *OrderRepository) FindForUser(ctx context.Context, userID int64, orderRef string) (*domain.Order, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE user_id = $1 AND (order_code = $2 OR id::text = $2)`,
		userID, orderRef,
	)
	order, err := scanOrder(row)
	if err != nil {
		return nil, convertErr(err, "finding order %s of user %d", orderRef, userID)
	}
	return order, nil
}

// UpdateStatus обновляет статус и дописывает событие в таймлайн одним
// запросом. Локация заменяется только если передана. Для статуса delivered
// проставляется delivered_at.
func (r *OrderRepository) UpdateStatus(
	ctx context.Context,
	args repoargs.OrderStatusUpdate,
) (*domain.Order, error) {
	eventJSON, evErr := json.Marshal([]domain.TimelineEvent{args.Event})
	if evErr != nil {
		return nil, fmt.Errorf("marshaling timeline event: %w", evErr)
	}

	var locationJSON []byte
	if args.Location != nil {
		var locErr error
		locationJSON, locErr = json.Marshal(args.Location)
		if locErr != nil {
			return nil, fmt.Errorf("marshaling order location: %w", locErr)
		}
	}

	row := r.db.QueryRow(ctx, `
		UPDATE orders
		SET status = $2,
		    status_text = $3,
		    updated_at = now(),
		    timeline = timeline || $4::jsonb,
		    current_location = COALESCE($5::jsonb, current_location),
		    delivered_at = CASE WHEN $2 = 'delivered' THEN now() ELSE delivered_at END
		WHERE order_code = $1
		RETURNING `+orderColumns,
		args.OrderCode, args.Status, args.StatusText, eventJSON, locationJSON,
	)
	order, err := scanOrder(row)
	if err != nil {
		return nil, convertErr(err, "updating status of order %s", args.OrderCode)
	}
	return order, nil
}

// GetByUserID возвращает заказы юзера, новые сверху.
func (r *OrderRepository) GetByUserID(
	ctx context.Context,
	userID int64,
	args repoargs.ListOrders,
) ([]domain.Order, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM orders
		WHERE user_id = $1 AND ($2 = '' OR status = $2)`,
		userID, string(args.Status),
	).Scan(&total); err != nil {
		return nil, 0, convertErr(err, "counting orders of user %d", userID)
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE user_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`,
		userID, string(args.Status), args.Page.Limit, args.Page.Offset(),
	)
	if err != nil {
		return nil, 0, convertErr(err, "listing orders of user %d", userID)
	}
	defer rows.Close()

	return collectOrders(rows, total)
}

// List админская выборка по всем заказам с фильтром по статусу и поиском.
func (r *OrderRepository) List(ctx context.Context, args repoargs.ListOrders) ([]domain.Order, int64, error) {
	pattern := "%" + args.Search + "%"

	var total int64
	if err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM orders
		WHERE ($1 = '' OR status = $1)
		  AND ($2 = '%%' OR order_code ILIKE $2 OR tracking_code ILIKE $2 OR recipient_name ILIKE $2)`,
		string(args.Status), pattern,
	).Scan(&total); err != nil {
		return nil, 0, convertErr(err, "counting orders")
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE ($1 = '' OR status = $1)
		  AND ($2 = '%%' OR order_code ILIKE $2 OR tracking_code ILIKE $2 OR recipient_name ILIKE $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`,
		string(args.Status), pattern, args.Page.Limit, args.Page.Offset(),
	)
	if err != nil {
		return nil, 0, convertErr(err, "listing orders")
	}
	defer rows.Close()

	return collectOrders(rows, total)
}

func (r *OrderRepository) Stats(ctx context.Context) (*repoargs.OrderStats, error) {
	var stats repoargs.OrderStats
	err := r.db.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status <> 'delivered'),
			COUNT(*) FILTER (WHERE status = 'delivered'),
			COALESCE(SUM(price) FILTER (WHERE payment_type = 'prepaid'), 0)
		FROM orders`,
	).Scan(&stats.TotalShipments, &stats.ActiveShipments, &stats.DeliveredShipments, &stats.TotalRevenue)
	if err != nil {
		return nil, convertErr(err, "aggregating order stats")
	}
	return &stats, nil
}

func collectOrders(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}, total int64) ([]domain.Order, int64, error) {
	var orders []domain.Order
	for rows.Next() {
		order, scanErr := scanOrder(rows)
		if scanErr != nil {
			return nil, 0, convertErr(scanErr, "scanning order")
		}
		orders = append(orders, *order)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, 0, convertErr(rowsErr, "listing orders")
	}
	return orders, total, nil
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var o domain.Order
	var locationJSON, timelineJSON []byte

	err := row.Scan(
		&o.ID, &o.CreatedAt, &o.UpdatedAt, &o.OrderCode, &o.TrackingCode, &o.UserID,
		&o.Recipient.Name, &o.Recipient.Phone, &o.Recipient.City,
		&o.Recipient.District, &o.Recipient.Address,
		&o.CarrierID, &o.CarrierName, &o.Status, &o.StatusText, &o.Weight, &o.Desi,
		&o.Price, &o.PaymentType, &o.CODAmount, &o.Description,
		&locationJSON, &timelineJSON, &o.DeliveredAt,
	)
	if err != nil {
		return nil, err
	}

	if len(locationJSON) > 0 {
		var location domain.Location
		if unmErr := json.Unmarshal(locationJSON, &location); unmErr != nil {
			return nil, fmt.Errorf("unmarshaling order location: %w", unmErr)
		}
		o.CurrentLocation = &location
	}
	if len(timelineJSON) > 0 {
		if unmErr := json.Unmarshal(timelineJSON, &o.Timeline); unmErr != nil {
			return nil, fmt.Errorf("unmarshaling order timeline: %w", unmErr)
		}
	}
	return &o, nil
}
