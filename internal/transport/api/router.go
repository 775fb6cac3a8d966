package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/kargopanel/backend/internal/transport/api/middlewares"
)

const (
	DefaultServiceTimeout = 3 * time.Second

	// трекинг публичный, перебор кодов ограничиваем по IP
	trackRateLimit = rate.Limit(5)
	trackRateBurst = 10
)

const (
	RouteGroup = "/api"

	RegisterRoute = "/auth/register"
	LoginRoute    = "/auth/login"
	MeRoute       = "/auth/me"

	TrackRoute = "/orders/tracking/:trackingCode"

	BalanceRoute         = "/wallet/balance"
	TransactionsRoute    = "/wallet/transactions"
	DepositRequestRoute  = "/wallet/deposit-request"
	DepositRequestsRoute = "/wallet/deposit-requests"

	OrdersRoute = "/orders"
	OrderRoute  = "/orders/:ref"

	CarriersRoute = "/carriers"

	NotificationsRoute    = "/notifications"
	NotificationReadRoute = "/notifications/:id/read"

	RecipientsRoute      = "/recipients"
	RecipientSearchRoute = "/recipients/search"
	RecipientSaveRoute   = "/recipients/save"
	RecipientRoute       = "/recipients/:id"

	AdminGroup                 = "/admin"
	AdminStatsRoute            = "/stats"
	AdminUsersRoute            = "/users"
	AdminManualBalanceRoute    = "/wallet/manual-balance"
	AdminUserTransactionsRoute = "/wallet/user-transactions/:userID"
	AdminDepositsRoute         = "/wallet/deposit-requests"
	AdminApproveDepositRoute   = "/wallet/approve-deposit/:id"
	AdminRejectDepositRoute    = "/wallet/reject-deposit/:id"
	AdminOrdersRoute           = "/orders"
	AdminOrderStatusRoute      = "/orders/:orderCode/status"
	AdminCarriersRoute         = "/carriers"
	AdminCarrierRoute          = "/carriers/:id"

	ChatRoute = "/chat/ws"
)

type RouterArgs struct {
	Logger              *logrus.Logger
	UserService         UserServicer
	WalletService       WalletServicer
	DepositService      DepositServicer
	OrderService        OrderServicer
	CarrierService      CarrierServicer
	NotificationService NotificationServicer
	RecipientService    RecipientServicer
	// ChatHandler nil отключает роут чата поддержки.
	ChatHandler  gin.HandlerFunc
	JWTSecretKey []byte
}

func New(args RouterArgs) (*gin.Engine, error) {
	if err := registerValidators(); err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(gin.Recovery())
	if args.Logger != nil {
		r.Use(middlewares.Logger(args.Logger))
	}
	r.Use(middlewares.Errors())

	authHandler := NewAuthHandler(args.UserService)
	walletHandler := NewWalletHandler(args.WalletService, args.DepositService)
	ordersHandler := NewOrdersHandler(args.OrderService)
	carriersHandler := NewCarriersHandler(args.CarrierService)
	notificationsHandler := NewNotificationsHandler(args.NotificationService)
	recipientsHandler := NewRecipientsHandler(args.RecipientService)
	adminHandler := NewAdminHandler(AdminHandlerArgs{
		UserService:    args.UserService,
		WalletService:  args.WalletService,
		DepositService: args.DepositService,
		OrderService:   args.OrderService,
		CarrierService: args.CarrierService,
	})

	api := r.Group(RouteGroup)

	api.POST(RegisterRoute, middlewares.NonAuthRequired(args.JWTSecretKey), authHandler.Register)
	api.POST(LoginRoute, middlewares.NonAuthRequired(args.JWTSecretKey), authHandler.Login)
	api.GET(TrackRoute, middlewares.RateLimit(trackRateLimit, trackRateBurst), ordersHandler.Track)
	api.GET(CarriersRoute, carriersHandler.Index)
	if args.ChatHandler != nil {
		api.GET(ChatRoute, args.ChatHandler)
	}

	api.Use(middlewares.AuthRequired(args.JWTSecretKey))
	// ниже все роуты группы требуют авторизованного пользователя.
	api.GET(MeRoute, authHandler.Me)

	api.GET(BalanceRoute, walletHandler.Balance)
	api.GET(TransactionsRoute, walletHandler.Transactions)
	api.POST(DepositRequestRoute, walletHandler.CreateDepositRequest)
	api.GET(DepositRequestsRoute, walletHandler.DepositRequests)

	api.POST(OrdersRoute, ordersHandler.Create)
	api.GET(OrdersRoute, ordersHandler.Index)
	api.GET(OrderRoute, ordersHandler.Show)

	api.GET(NotificationsRoute, notificationsHandler.Index)
	api.PUT(NotificationReadRoute, notificationsHandler.MarkRead)

	api.GET(RecipientsRoute, recipientsHandler.Index)
	api.GET(RecipientSearchRoute, recipientsHandler.Search)
	api.POST(RecipientSaveRoute, recipientsHandler.Save)
	api.DELETE(RecipientRoute, recipientsHandler.Delete)

	admin := api.Group(AdminGroup, middlewares.AdminRequired())
	admin.GET(AdminStatsRoute, adminHandler.Stats)
	admin.GET(AdminUsersRoute, adminHandler.Users)
	admin.POST(AdminManualBalanceRoute, adminHandler.AdjustBalance)
	admin.GET(AdminUserTransactionsRoute, adminHandler.UserTransactions)
	admin.GET(AdminDepositsRoute, adminHandler.DepositRequests)
	admin.POST(AdminApproveDepositRoute, adminHandler.ApproveDeposit)
	admin.POST(AdminRejectDepositRoute, adminHandler.RejectDeposit)
	admin.GET(AdminOrdersRoute, adminHandler.Orders)
	admin.PUT(AdminOrderStatusRoute, adminHandler.UpdateOrderStatus)
	admin.POST(AdminCarriersRoute, adminHandler.CreateCarrier)
	admin.PUT(AdminCarrierRoute, adminHandler.UpdateCarrier)

	return r, nil
}
