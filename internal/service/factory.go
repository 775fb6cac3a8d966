package service

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/kargopanel/backend/internal/service/psswd"
	"github.com/kargopanel/backend/pkg/uow"
)

type AppServices struct {
	UserService         *UserService
	WalletService       *WalletService
	DepositService      *DepositService
	OrderService        *OrderService
	CarrierService      *CarrierService
	NotificationService *NotificationService
	RecipientService    *RecipientService
}

type FactoryArgs struct {
	UnitOfWork uow.UOW
	JWTSecret  []byte
	// CarrierCache nil отключает кэширование справочника фирм.
	CarrierCache CarrierCache
	Logger       *logrus.Logger
}

func Factory(args FactoryArgs) (*AppServices, error) {
	userService, userServiceErr := NewUserService(args.UnitOfWork, psswd.PasswordHash(""), args.JWTSecret)
	if userServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", userServiceErr.Error())
	}

	walletService, walletServiceErr := NewWalletService(args.UnitOfWork)
	if walletServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", walletServiceErr.Error())
	}

	depositService, depositServiceErr := NewDepositService(args.UnitOfWork, args.Logger)
	if depositServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", depositServiceErr.Error())
	}

	orderService, orderServiceErr := NewOrderService(args.UnitOfWork, args.Logger)
	if orderServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", orderServiceErr.Error())
	}

	carrierService, carrierServiceErr := NewCarrierService(args.UnitOfWork, args.CarrierCache, args.Logger)
	if carrierServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", carrierServiceErr.Error())
	}

	notificationService, notificationServiceErr := NewNotificationService(args.UnitOfWork)
	if notificationServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", notificationServiceErr.Error())
	}

	recipientService, recipientServiceErr := NewRecipientService(args.UnitOfWork)
	if recipientServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", recipientServiceErr.Error())
	}

	return &AppServices{
		UserService:         userService,
		WalletService:       walletService,
		DepositService:      depositService,
		OrderService:        orderService,
		CarrierService:      carrierService,
		NotificationService: notificationService,
		RecipientService:    recipientService,
	}, nil
}
