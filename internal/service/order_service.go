package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/kargopanel/backend/internal/domain"
	"github.com/kargopanel/backend/internal/geo"
	"github.com/kargopanel/backend/internal/repository/repoargs"
	"github.com/kargopanel/backend/pkg/uow"
)

// maxCodeAttempts сколько раз пересоздаем заказ при коллизии кода. Коды
// случайные, уникальность обеспечивает индекс в базе.
const maxCodeAttempts = 5

type OrderService struct {
	uow              uow.UOW
	orderRepo        OrderRepository
	carrierRepo      CarrierRepository
	userRepo         UserRepository
	notificationRepo NotificationRepository
	logger           *logrus.Logger
}

func NewOrderService(u uow.UOW, logger *logrus.Logger) (*OrderService, error) {
	orderRepo, orderRepoErr := uow.GetRepositoryAs[OrderRepository](u, uow.RepositoryName(repoargs.OrderRepoName))
	if orderRepoErr != nil {
		return nil, orderRepoErr
	}
	carrierRepo, carrierRepoErr :=
		uow.GetRepositoryAs[CarrierRepository](u, uow.RepositoryName(repoargs.CarrierRepoName))
	if carrierRepoErr != nil {
		return nil, carrierRepoErr
	}
	userRepo, userRepoErr := uow.GetRepositoryAs[UserRepository](u, uow.RepositoryName(repoargs.UserRepoName))
	if userRepoErr != nil {
		return nil, userRepoErr
	}
	notificationRepo, notificationRepoErr :=
		uow.GetRepositoryAs[NotificationRepository](u, uow.RepositoryName(repoargs.NotificationRepoName))
	if notificationRepoErr != nil {
		return nil, notificationRepoErr
	}
	return &OrderService{
		uow:              u,
		orderRepo:        orderRepo,
		carrierRepo:      carrierRepo,
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
		logger:           logger,
	}, nil
}

type CreateOrderArgs struct {
	UserID      int64
	Recipient   domain.Recipient
	CarrierID   int64
	Weight      decimal.Decimal
	Desi        int32
	PaymentType domain.PaymentType
	CODAmount   *decimal.Decimal
	Description string
}

// Create создает отправление. Для prepaid-заказов стоимость списывается с
// баланса в той же транзакции, что и вставка заказа: либо заказ создан и
// оплачен, либо не произошло ничего.
//
// Код заказа и трек-код случайные. При коллизии с уникальным индексом вся
// транзакция откатывается и создание повторяется с новыми кодами, не более
// maxCodeAttempts раз.
func (s *OrderService) Create(ctx context.Context, args CreateOrderArgs) (*domain.Order, error) {
	carrier, carrierErr := s.carrierRepo.FindByID(ctx, args.CarrierID)
	if carrierErr != nil {
		return nil, carrierErr //nolint:wrapcheck
	}
	// неактивная фирма для клиента неотличима от несуществующей
	if !carrier.IsActive {
		return nil, domain.ErrRecordNotFound
	}

	if args.PaymentType == domain.PaymentPrepaid {
		user, userErr := s.userRepo.FindByID(ctx, args.UserID)
		if userErr != nil {
			return nil, userErr //nolint:wrapcheck
		}
		if user.Balance.LessThan(carrier.Price) {
			return nil, domain.ErrNotEnoughBalance
		}
	}

	var order *domain.Order
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		now := time.Now()
		created, createErr := s.createOnce(ctx, args, carrier, now)
		if createErr != nil {
			if errors.Is(createErr, domain.ErrDuplicateKey) {
				continue
			}
			return nil, createErr
		}
		order = created
		break
	}
	if order == nil {
		return nil, domain.ErrCodeGenerationExhausted
	}

	s.logger.WithFields(logrus.Fields{
		"orderCode": order.OrderCode,
		"userID":    order.UserID,
		"carrier":   order.CarrierName,
		"price":     order.Price.String(),
	}).Info("order created")

	s.notify(ctx, order.UserID, domain.NotificationInfo,
		"Yeni Gönderi Oluşturuldu",
		fmt.Sprintf("%s numaralı gönderiniz oluşturuldu.", order.OrderCode),
	)
	return order, nil
}

// createOnce одна попытка создания: вставка заказа, списание стоимости и
// инкремент счетчика отправлений в единой транзакции.
func (s *OrderService) createOnce(
	ctx context.Context,
	args CreateOrderArgs,
	carrier *domain.Carrier,
	now time.Time,
) (*domain.Order, error) {
	orderCode := newOrderCode(now)
	trackingCode := newTrackingCode()

	var order *domain.Order
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		orderRepo, orderRepoErr := uow.GetAs[OrderRepository](tx, uow.RepositoryName(repoargs.OrderRepoName))
		if orderRepoErr != nil {
			return orderRepoErr //nolint:wrapcheck
		}

		var createErr error
		order, createErr = orderRepo.Create(c, repoargs.OrderCreate{
			OrderCode:       orderCode,
			TrackingCode:    trackingCode,
			UserID:          args.UserID,
			Recipient:       args.Recipient,
			CarrierID:       carrier.ID,
			CarrierName:     carrier.Name,
			Weight:          args.Weight,
			Desi:            args.Desi,
			Price:           carrier.Price,
			PaymentType:     args.PaymentType,
			CODAmount:       args.CODAmount,
			Description:     args.Description,
			CurrentLocation: geo.DefaultLocation(args.Recipient.City, args.Recipient.District),
			InitialEvent: domain.TimelineEvent{
				Date:        now,
				Status:      domain.OrderStatusCreated,
				Description: domain.OrderStatusCreated.Text(),
			},
		})
		if createErr != nil {
			return createErr //nolint:wrapcheck
		}

		if args.PaymentType == domain.PaymentPrepaid {
			_, opErr := applyBalanceOp(c, tx, balanceOpArgs{
				UserID:      args.UserID,
				Delta:       carrier.Price.Neg(),
				Type:        domain.TransactionPayment,
				Description: "Kargo ücreti - " + orderCode,
				OrderID:     &order.ID,
			})
			if opErr != nil {
				return opErr
			}
		}

		userRepo, userRepoErr := uow.GetAs[UserRepository](tx, uow.RepositoryName(repoargs.UserRepoName))
		if userRepoErr != nil {
			return userRepoErr //nolint:wrapcheck
		}
		return userRepo.IncrementShipments(c, args.UserID) //nolint:wrapcheck
	})
	if txErr != nil {
		return nil, txErr
	}
	return order, nil
}

type UpdateStatusArgs struct {
	OrderCode string
	Status    domain.OrderStatusType
	// Location nil означает "оставить текущую точку".
	Location    *domain.Location
	Description string
}

// UpdateStatus меняет статус отправления и дописывает событие в таймлайн.
// Переходы между статусами не ограничиваются, но каждый логируется.
func (s *OrderService) UpdateStatus(ctx context.Context, args UpdateStatusArgs) (*domain.Order, error) {
	current, findErr := s.orderRepo.FindByOrderCode(ctx, args.OrderCode)
	if findErr != nil {
		return nil, findErr //nolint:wrapcheck
	}

	description := args.Description
	if description == "" {
		description = args.Status.Text()
	}

	order, updateErr := s.orderRepo.UpdateStatus(ctx, repoargs.OrderStatusUpdate{
		OrderCode:  args.OrderCode,
		Status:     args.Status,
		StatusText: args.Status.Text(),
		Location:   args.Location,
		Event: domain.TimelineEvent{
			Date:        time.Now(),
			Status:      args.Status,
			Description: description,
		},
	})
	if updateErr != nil {
		return nil, updateErr //nolint:wrapcheck
	}

	s.logger.WithFields(logrus.Fields{
		"orderCode": args.OrderCode,
		"oldStatus": current.Status,
		"newStatus": args.Status,
	}).Info("order status updated")

	nType := domain.NotificationInfo
	if args.Status == domain.OrderStatusDelivered {
		nType = domain.NotificationSuccess
	}
	s.notify(ctx, order.UserID, nType,
		"Gönderi Durumu Güncellendi",
		fmt.Sprintf("%s numaralı gönderiniz: %s", order.OrderCode, args.Status.Text()),
	)
	return order, nil
}

// TrackByCode публичный трекинг по трек-коду, без авторизации.
func (s *OrderService) TrackByCode(ctx context.Context, trackingCode string) (*domain.Order, error) {
	order, err := s.orderRepo.FindByTrackingCode(ctx, trackingCode)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return order, nil
}

// GetForUser возвращает заказ юзера по коду заказа либо числовому id.
// Чужие заказы неотличимы от несуществующих.
func (s *OrderService) GetForUser(ctx context.Context, userID int64, orderRef string) (*domain.Order, error) {
	order, err := s.orderRepo.FindForUser(ctx, userID, orderRef)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return order, nil
}

func (s *OrderService) GetByUserID(
	ctx context.Context,
	userID int64,
	args repoargs.ListOrders,
) ([]domain.Order, int64, error) {
	orders, total, err := s.orderRepo.GetByUserID(ctx, userID, args)
	if err != nil {
		return nil, 0, err //nolint:wrapcheck
	}
	return orders, total, nil
}

func (s *OrderService) List(ctx context.Context, args repoargs.ListOrders) ([]domain.Order, int64, error) {
	orders, total, err := s.orderRepo.List(ctx, args)
	if err != nil {
		return nil, 0, err //nolint:wrapcheck
	}
	return orders, total, nil
}

type PlatformStats struct {
	TotalShipments     int64
	ActiveShipments    int64
	DeliveredShipments int64
	TotalRevenue       decimal.Decimal
	TotalUsers         int64
}

// Stats сводка для админской панели.
func (s *OrderService) Stats(ctx context.Context) (*PlatformStats, error) {
	orderStats, statsErr := s.orderRepo.Stats(ctx)
	if statsErr != nil {
		return nil, statsErr //nolint:wrapcheck
	}
	totalUsers, usersErr := s.userRepo.CountUsers(ctx)
	if usersErr != nil {
		return nil, usersErr //nolint:wrapcheck
	}
	return &PlatformStats{
		TotalShipments:     orderStats.TotalShipments,
		ActiveShipments:    orderStats.ActiveShipments,
		DeliveredShipments: orderStats.DeliveredShipments,
		TotalRevenue:       orderStats.TotalRevenue,
		TotalUsers:         totalUsers,
	}, nil
}

func (s *OrderService) notify(
	ctx context.Context,
	userID int64,
	nType domain.NotificationType,
	title, message string,
) {
	err := s.notificationRepo.Create(ctx, repoargs.NotificationCreate{
		UserID:  userID,
		Type:    nType,
		Title:   title,
		Message: message,
	})
	if err != nil {
		s.logger.WithError(err).WithField("userID", userID).Warn("failed to create notification")
	}
}
