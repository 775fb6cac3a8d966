package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/kargopanel/backend/internal/domain"
	"github.com/kargopanel/backend/internal/repository/repoargs"
	"github.com/kargopanel/backend/pkg/uow"
)

// DepositService управляет заявками на пополнение баланса: юзер заявляет
// банковский перевод, админ подтверждает или отклоняет его.
type DepositService struct {
	uow              uow.UOW
	depositRepo      DepositRepository
	notificationRepo NotificationRepository
	logger           *logrus.Logger
}

func NewDepositService(u uow.UOW, logger *logrus.Logger) (*DepositService, error) {
	depositRepo, depositRepoErr :=
		uow.GetRepositoryAs[DepositRepository](u, uow.RepositoryName(repoargs.DepositRepoName))
	if depositRepoErr != nil {
		return nil, depositRepoErr
	}
	notificationRepo, notificationRepoErr :=
		uow.GetRepositoryAs[NotificationRepository](u, uow.RepositoryName(repoargs.NotificationRepoName))
	if notificationRepoErr != nil {
		return nil, notificationRepoErr
	}
	return &DepositService{
		uow:              u,
		depositRepo:      depositRepo,
		notificationRepo: notificationRepo,
		logger:           logger,
	}, nil
}

type CreateDepositArgs struct {
	UserID      int64
	Amount      decimal.Decimal
	SenderName  string
	Description string
	// PaymentDate nil означает "сейчас".
	PaymentDate *time.Time
}

// CreateRequest создает заявку в статусе pending. Баланс на этом шаге не
// меняется - деньги зачисляются только после подтверждения админом.
func (s *DepositService) CreateRequest(
	ctx context.Context,
	args CreateDepositArgs,
) (*domain.DepositRequest, error) {
	if !args.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}

	paymentDate := time.Now()
	if args.PaymentDate != nil {
		paymentDate = *args.PaymentDate
	}

	deposit, err := s.depositRepo.Create(ctx, repoargs.DepositCreate{
		ID:          uuid.NewString(),
		UserID:      args.UserID,
		Amount:      args.Amount,
		SenderName:  args.SenderName,
		Description: args.Description,
		PaymentDate: paymentDate,
	})
	if err != nil {
		return nil, fmt.Errorf("creating deposit request: %w", err)
	}
	return deposit, nil
}

// DepositApproval результат подтверждения заявки: сама заявка и баланс юзера
// после зачисления.
type DepositApproval struct {
	Deposit    *domain.DepositRequest
	NewBalance decimal.Decimal
}

// Approve подтверждает pending-заявку: перевод в статус approved и зачисление
// суммы на баланс происходят в одной транзакции. Повторное подтверждение
// возвращает domain.ErrDepositProcessed без изменения баланса.
func (s *DepositService) Approve(
	ctx context.Context,
	depositID string,
	adminID int64,
	adminNote *string,
) (*DepositApproval, error) {
	var (
		deposit    *domain.DepositRequest
		newBalance decimal.Decimal
	)

	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		depositRepo, depositRepoErr := uow.GetAs[DepositRepository](tx, uow.RepositoryName(repoargs.DepositRepoName))
		if depositRepoErr != nil {
			return depositRepoErr //nolint:wrapcheck
		}

		var markErr error
		deposit, markErr = depositRepo.MarkProcessed(c, repoargs.DepositMarkProcessed{
			ID:        depositID,
			Status:    domain.DepositStatusApproved,
			AdminNote: adminNote,
			AdminID:   adminID,
		})
		if markErr != nil {
			return markErr //nolint:wrapcheck
		}

		transaction, opErr := applyBalanceOp(c, tx, balanceOpArgs{
			UserID:           deposit.UserID,
			Delta:            deposit.Amount,
			Type:             domain.TransactionDeposit,
			Description:      "Ödeme bildirimi onaylandı - " + deposit.Description,
			DepositRequestID: &deposit.ID,
		})
		if opErr != nil {
			return opErr
		}
		newBalance = transaction.BalanceAfter
		return nil
	})
	if txErr != nil {
		return nil, txErr //nolint:wrapcheck
	}

	s.logger.WithFields(logrus.Fields{
		"depositID":  depositID,
		"userID":     deposit.UserID,
		"amount":     deposit.Amount.String(),
		"newBalance": newBalance.String(),
		"adminID":    adminID,
	}).Info("deposit request approved")

	s.notify(ctx, deposit.UserID, domain.NotificationSuccess,
		"Bakiye Yükleme Onaylandı",
		fmt.Sprintf("%s TL tutarındaki ödeme bildiriminiz onaylandı ve bakiyenize eklendi.", deposit.Amount.StringFixed(2)),
	)
	return &DepositApproval{Deposit: deposit, NewBalance: newBalance}, nil
}

// Reject отклоняет pending-заявку. Баланс не меняется.
func (s *DepositService) Reject(
	ctx context.Context,
	depositID string,
	adminID int64,
	adminNote *string,
) (*domain.DepositRequest, error) {
	deposit, err := s.depositRepo.MarkProcessed(ctx, repoargs.DepositMarkProcessed{
		ID:        depositID,
		Status:    domain.DepositStatusRejected,
		AdminNote: adminNote,
		AdminID:   adminID,
	})
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	s.logger.WithFields(logrus.Fields{
		"depositID": depositID,
		"userID":    deposit.UserID,
		"adminID":   adminID,
	}).Info("deposit request rejected")

	message := fmt.Sprintf("%s TL tutarındaki ödeme bildiriminiz reddedildi.", deposit.Amount.StringFixed(2))
	if adminNote != nil && *adminNote != "" {
		message += " Not: " + *adminNote
	}
	s.notify(ctx, deposit.UserID, domain.NotificationWarning, "Bakiye Yükleme Reddedildi", message)

	return deposit, nil
}

func (s *DepositService) GetByUserID(
	ctx context.Context,
	userID int64,
	page repoargs.Page,
) ([]domain.DepositRequest, int64, error) {
	deposits, total, err := s.depositRepo.GetByUserID(ctx, userID, page)
	if err != nil {
		return nil, 0, err //nolint:wrapcheck
	}
	return deposits, total, nil
}

func (s *DepositService) List(
	ctx context.Context,
	args repoargs.ListDeposits,
) ([]domain.DepositRequest, int64, error) {
	deposits, total, err := s.depositRepo.List(ctx, args)
	if err != nil {
		return nil, 0, err //nolint:wrapcheck
	}
	return deposits, total, nil
}

// notify шлет уведомление вне транзакции, уже после коммита. Неудача
// уведомления не должна откатывать денежную операцию.
func (s *DepositService) notify(
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
