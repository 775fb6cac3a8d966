package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
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

type OrdersHandlerTestSuite struct {
	suite.Suite
	mockCtrl         *gomock.Controller
	router           *gin.Engine
	mockOrderService *mocks.MockOrderServicer
	jwtSecret        []byte
}

func TestOrdersHandlerSuite(t *testing.T) {
	suite.Run(t, new(OrdersHandlerTestSuite))
}

func (s *OrdersHandlerTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockOrderService = mocks.NewMockOrderServicer(s.mockCtrl)
	s.jwtSecret = []byte("super secret key")

	var err error
	s.router, err = New(RouterArgs{
		OrderService: s.mockOrderService,
		JWTSecretKey: s.jwtSecret,
	})
	s.Require().NoError(err)
}

func (s *OrdersHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func (s *OrdersHandlerTestSuite) userToken(userID int64) string {
	token, err := tokens.GenerateUserJWT(userID, domain.RoleUser, time.Hour, s.jwtSecret)
	s.Require().NoError(err)
	return token
}

// createPayload валидное тело запроса на создание отправления. carrierID
// используется для различения сценариев в моках.
func (s *OrdersHandlerTestSuite) createPayload(carrierID int64) []byte {
	params := OrderCreateParams{
		Recipient: RecipientParams{
			Name:     gofakeit.Name(),
			Phone:    "+905551112233",
			City:     gofakeit.City(),
			District: gofakeit.StreetName(),
			Address:  gofakeit.Street(),
		},
		CarrierID:   carrierID,
		Weight:      decimal.NewFromFloat(2.5),
		Desi:        3,
		PaymentType: string(domain.PaymentPrepaid),
	}
	payload, err := json.Marshal(params)
	s.Require().NoError(err)
	return payload
}

func (s *OrdersHandlerTestSuite) TestCreate() {
	var currentUserID int64 = 1
	jwtToken := s.userToken(currentUserID)

	const (
		okCarrierID      int64 = 1
		poorCarrierID    int64 = 2
		missingCarrierID int64 = 3
	)

	s.mockOrderService.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args service.CreateOrderArgs) (*domain.Order, error) {
			s.Equal(currentUserID, args.UserID)
			switch args.CarrierID {
			case poorCarrierID:
				return nil, domain.ErrNotEnoughBalance
			case missingCarrierID:
				return nil, domain.ErrRecordNotFound
			default:
				return &domain.Order{
					ID:           10,
					OrderCode:    "KRG-202403-0001",
					TrackingCode: "TRK123456789",
					UserID:       args.UserID,
					Recipient:    args.Recipient,
					CarrierID:    args.CarrierID,
					Status:       domain.OrderStatusCreated,
				}, nil
			}
		}).AnyTimes()

	invalidPayload := []byte(`{"recipient":{"phone":"+905551112233"},"carrierId":1}`)

	cases := []struct {
		name       string
		payload    []byte
		jwtToken   string
		wantStatus int
	}{
		{
			name:       "all ok",
			payload:    s.createPayload(okCarrierID),
			jwtToken:   jwtToken,
			wantStatus: http.StatusCreated,
		}, {
			name:       "not enough balance",
			payload:    s.createPayload(poorCarrierID),
			jwtToken:   jwtToken,
			wantStatus: http.StatusPaymentRequired,
		}, {
			name:       "carrier not found",
			payload:    s.createPayload(missingCarrierID),
			jwtToken:   jwtToken,
			wantStatus: http.StatusNotFound,
		}, {
			name:       "invalid payload",
			payload:    invalidPayload,
			jwtToken:   jwtToken,
			wantStatus: http.StatusUnprocessableEntity,
		}, {
			name:       "not authorized",
			payload:    s.createPayload(okCarrierID),
			wantStatus: http.StatusUnauthorized,
		},
	}
	for _, t := range cases {
		s.Run(t.name, func() {
			args := testutils.RequestArgs{
				Router: s.router,
				Method: http.MethodPost,
				URL:    RouteGroup + OrdersRoute,
				Body:   bytes.NewReader(t.payload),
			}
			var reqOpts []func(*testutils.RequestOptions)
			if t.jwtToken != "" {
				reqOpts = append(reqOpts, testutils.WithHeader("Authorization", fmt.Sprintf("Bearer %s", t.jwtToken)))
			}
			reqOpts = append(reqOpts, testutils.WithHeader("Content-Type", "application/json"))
			res, err := testutils.MakeRequest(args, reqOpts...)

			defer func() {
				closeErr := res.Body.Close()
				s.Require().NoError(closeErr)
			}()

			s.Require().NoError(err)
			s.Equal(t.wantStatus, res.StatusCode)
		})
	}
}

func (s *OrdersHandlerTestSuite) TestShow() {
	var currentUserID int64 = 1
	jwtToken := s.userToken(currentUserID)

	orderCode := "KRG-202403-0001"
	s.mockOrderService.EXPECT().
		GetForUser(gomock.Any(), currentUserID, orderCode).
		Return(&domain.Order{ID: 10, OrderCode: orderCode, UserID: currentUserID}, nil)
	// чужой или несуществующий заказ - одна и та же 404
	s.mockOrderService.EXPECT().
		GetForUser(gomock.Any(), currentUserID, "KRG-000000-0000").
		Return(nil, domain.ErrRecordNotFound)

	cases := []struct {
		name       string
		ref        string
		jwtToken   string
		wantStatus int
	}{
		{name: "all ok", ref: orderCode, jwtToken: jwtToken, wantStatus: http.StatusOK},
		{name: "not found", ref: "KRG-000000-0000", jwtToken: jwtToken, wantStatus: http.StatusNotFound},
		{name: "not authorized", ref: orderCode, wantStatus: http.StatusUnauthorized},
	}
	for _, t := range cases {
		s.Run(t.name, func() {
			args := testutils.RequestArgs{
				Router: s.router,
				Method: http.MethodGet,
				URL:    RouteGroup + OrdersRoute + "/" + t.ref,
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
		})
	}
}

func (s *OrdersHandlerTestSuite) TestTrack() {
	trackingCode := "TRK123456789"

	s.mockOrderService.EXPECT().
		TrackByCode(gomock.Any(), trackingCode).
		Return(&domain.Order{
			ID:           10,
			OrderCode:    "KRG-202403-0001",
			TrackingCode: trackingCode,
			UserID:       1,
			Recipient:    domain.Recipient{Name: "Mehmet Demir"},
			CarrierName:  "Aras Kargo",
			Status:       domain.OrderStatusInTransit,
			StatusText:   domain.OrderStatusInTransit.Text(),
		}, nil)

	// трекинг публичный, токен не нужен
	res, err := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodGet,
		URL:    RouteGroup + "/orders/tracking/" + trackingCode,
	})
	s.Require().NoError(err)
	defer func() {
		closeErr := res.Body.Close()
		s.Require().NoError(closeErr)
	}()

	s.Require().Equal(http.StatusOK, res.StatusCode)

	body, readErr := io.ReadAll(res.Body)
	s.Require().NoError(readErr)

	var response map[string]json.RawMessage
	s.Require().NoError(json.Unmarshal(body, &response))
	s.Contains(response, "tracking")

	// публичный ответ не должен раскрывать данные получателя
	var tracking map[string]json.RawMessage
	s.Require().NoError(json.Unmarshal(response["tracking"], &tracking))
	s.NotContains(tracking, "recipient")
	s.NotContains(tracking, "orderCode")
}

func (s *OrdersHandlerTestSuite) TestTrack_NotFound() {
	s.mockOrderService.EXPECT().
		TrackByCode(gomock.Any(), "TRK000000000").
		Return(nil, domain.ErrRecordNotFound)

	res, err := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodGet,
		URL:    RouteGroup + "/orders/tracking/TRK000000000",
	})
	s.Require().NoError(err)
	defer func() {
		closeErr := res.Body.Close()
		s.Require().NoError(closeErr)
	}()

	s.Equal(http.StatusNotFound, res.StatusCode)
}
