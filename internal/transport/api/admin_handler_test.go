package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/kargopanel/backend/internal/domain"
	"github.com/kargopanel/backend/internal/service"
	"github.com/kargopanel/backend/internal/tokens"
	"github.com/kargopanel/backend/internal/transport/api/mocks"
	"github.com/kargopanel/backend/internal/transport/api/testutils"
)

type AdminHandlerTestSuite struct {
	suite.Suite
	mockCtrl           *gomock.Controller
	router             *gin.Engine
	mockWalletService  *mocks.MockWalletServicer
	mockDepositService *mocks.MockDepositServicer
	jwtSecret          []byte
	adminToken         string
	userToken          string
}

func TestAdminHandlerSuite(t *testing.T) {
	suite.Run(t, new(AdminHandlerTestSuite))
}

func (s *AdminHandlerTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockWalletService = mocks.NewMockWalletServicer(s.mockCtrl)
	s.mockDepositService = mocks.NewMockDepositServicer(s.mockCtrl)
	s.jwtSecret = []byte("super secret key")

	var err error
	s.router, err = New(RouterArgs{
		WalletService:  s.mockWalletService,
		DepositService: s.mockDepositService,
		JWTSecretKey:   s.jwtSecret,
	})
	s.Require().NoError(err)

	s.adminToken, err = tokens.GenerateUserJWT(7, domain.RoleAdmin, time.Hour, s.jwtSecret)
	s.Require().NoError(err)
	s.userToken, err = tokens.GenerateUserJWT(1, domain.RoleUser, time.Hour, s.jwtSecret)
	s.Require().NoError(err)
}

func (s *AdminHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func (s *AdminHandlerTestSuite) TestApproveDeposit() {
	processedID := "dep-closed"
	missingID := "dep-missing"
	pendingID := "dep-pending"

	s.mockDepositService.EXPECT().
		Approve(gomock.Any(), pendingID, int64(7), gomock.Nil()).
		Return(&service.DepositApproval{
			Deposit: &domain.DepositRequest{
				ID:     pendingID,
				UserID: 123,
				Amount: decimal.NewFromInt(1000),
				Status: domain.DepositStatusApproved,
			},
			NewBalance: decimal.NewFromInt(1500),
		}, nil)
	s.mockDepositService.EXPECT().
		Approve(gomock.Any(), processedID, int64(7), gomock.Nil()).
		Return(nil, domain.ErrDepositProcessed)
	s.mockDepositService.EXPECT().
		Approve(gomock.Any(), missingID, int64(7), gomock.Nil()).
		Return(nil, domain.ErrRecordNotFound)

	cases := []struct {
		name       string
		depositID  string
		jwtToken   string
		wantStatus int
	}{
		{name: "all ok", depositID: pendingID, jwtToken: s.adminToken, wantStatus: http.StatusOK},
		{name: "already processed", depositID: processedID, jwtToken: s.adminToken, wantStatus: http.StatusConflict},
		{name: "not found", depositID: missingID, jwtToken: s.adminToken, wantStatus: http.StatusNotFound},
		{name: "not admin", depositID: pendingID, jwtToken: s.userToken, wantStatus: http.StatusForbidden},
		{name: "not authorized", depositID: pendingID, wantStatus: http.StatusUnauthorized},
	}
	for _, t := range cases {
		s.Run(t.name, func() {
			args := testutils.RequestArgs{
				Router: s.router,
				Method: http.MethodPost,
				URL:    RouteGroup + AdminGroup + "/wallet/approve-deposit/" + t.depositID,
			}
			var reqOpts []func(*testutils.RequestOptions)
			if t.jwtToken != "" {
				reqOpts = append(reqOpts, testutils.WithHeader("Authorization", fmt.Sprintf("Bearer %s", t.jwtToken)))
			}
			res, err := testutils.MakeRequest(args, reqOpts...)
			defer func() {
				closeErr := res.Body.Close()
				s.Require().NoError(closeErr)
			}()

			s.Require().NoError(err)
			s.Equal(t.wantStatus, res.StatusCode)

			if t.wantStatus == http.StatusOK {
				var body struct {
					Success    bool    `json:"success"`
					NewBalance float64 `json:"newBalance"`
				}
				s.Require().NoError(json.NewDecoder(res.Body).Decode(&body))
				s.True(body.Success)
				s.InDelta(1500, body.NewBalance, 0.001)
			}
		})
	}
}

func (s *AdminHandlerTestSuite) TestRejectDeposit_WithNote() {
	note := "Dekont bulunamadı"

	s.mockDepositService.EXPECT().
		Reject(gomock.Any(), "dep-001", int64(7), gomock.Any()).
		DoAndReturn(func(
			_ context.Context, _ string, _ int64, adminNote *string,
		) (*domain.DepositRequest, error) {
			s.Require().NotNil(adminNote)
			s.Equal(note, *adminNote)
			return &domain.DepositRequest{
				ID:        "dep-001",
				UserID:    123,
				Amount:    decimal.NewFromInt(1000),
				Status:    domain.DepositStatusRejected,
				AdminNote: adminNote,
			}, nil
		})

	payload, marshalErr := json.Marshal(ProcessDepositParams{AdminNote: &note})
	s.Require().NoError(marshalErr)

	res, err := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodPost,
		URL:    RouteGroup + AdminGroup + "/wallet/reject-deposit/dep-001",
		Body:   bytes.NewReader(payload),
	},
		testutils.WithHeader("Authorization", fmt.Sprintf("Bearer %s", s.adminToken)),
		testutils.WithHeader("Content-Type", "application/json"),
	)
	s.Require().NoError(err)
	defer func() {
		closeErr := res.Body.Close()
		s.Require().NoError(closeErr)
	}()

	s.Equal(http.StatusOK, res.StatusCode)
}

func (s *AdminHandlerTestSuite) TestAdjustBalance() {
	s.mockWalletService.EXPECT().
		AdjustManual(gomock.Any(), int64(123), gomock.Any(), "iade", int64(7)).
		Return(&domain.Transaction{
			ID:     "tx-001",
			UserID: 123,
			Type:   domain.TransactionAdminAdjustment,
			Amount: decimal.NewFromInt(50),
		}, nil)
	s.mockWalletService.EXPECT().
		AdjustManual(gomock.Any(), int64(456), gomock.Any(), "ceza", int64(7)).
		Return(nil, domain.ErrNegativeBalance)

	cases := []struct {
		name       string
		params     AdjustBalanceParams
		wantStatus int
	}{
		{
			name: "all ok",
			params: AdjustBalanceParams{
				UserID:      123,
				Amount:      decimal.NewFromInt(50),
				Description: "iade",
			},
			wantStatus: http.StatusOK,
		}, {
			name: "would go negative",
			params: AdjustBalanceParams{
				UserID:      456,
				Amount:      decimal.NewFromInt(-10000),
				Description: "ceza",
			},
			wantStatus: http.StatusBadRequest,
		},
	}
	for _, t := range cases {
		s.Run(t.name, func() {
			payload, marshalErr := json.Marshal(t.params)
			s.Require().NoError(marshalErr)

			res, err := testutils.MakeRequest(testutils.RequestArgs{
				Router: s.router,
				Method: http.MethodPost,
				URL:    RouteGroup + AdminGroup + AdminManualBalanceRoute,
				Body:   bytes.NewReader(payload),
			},
				testutils.WithHeader("Authorization", fmt.Sprintf("Bearer %s", s.adminToken)),
				testutils.WithHeader("Content-Type", "application/json"),
			)
			s.Require().NoError(err)
			defer func() {
				closeErr := res.Body.Close()
				s.Require().NoError(closeErr)
			}()

			s.Equal(t.wantStatus, res.StatusCode)
		})
	}
}
