package service

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/suite"

	"github.com/kargopanel/backend/internal/domain"
	"github.com/kargopanel/backend/internal/repository/repoargs"
	"github.com/kargopanel/backend/internal/service/mocks"
	"github.com/kargopanel/backend/internal/tokens"
	"github.com/kargopanel/backend/pkg/uow"
	uowmocks "github.com/kargopanel/backend/pkg/uow/mocks"
)

var testJWTSecret = []byte("test-secret")

type UserServiceTestSuite struct {
	suite.Suite
	mockCtrl     *gomock.Controller
	mockUOW      *uowmocks.MockUOW
	mockTX       *uowmocks.MockTX
	mockUserRepo *mocks.MockUserRepository
	mockHasher   *mocks.MockPasswordHasher
	service      *UserService
}

func TestUserServiceSuite(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}

func (s *UserServiceTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockUOW = uowmocks.NewMockUOW(s.mockCtrl)
	s.mockTX = uowmocks.NewMockTX(s.mockCtrl)
	s.mockUserRepo = mocks.NewMockUserRepository(s.mockCtrl)
	s.mockHasher = mocks.NewMockPasswordHasher(s.mockCtrl)

	s.mockUOW.EXPECT().
		GetRepository(uow.RepositoryName(repoargs.UserRepoName)).
		Return(s.mockUserRepo, nil).AnyTimes()

	var err error
	s.service, err = NewUserService(s.mockUOW, s.mockHasher, testJWTSecret)
	s.Require().NoError(err)
}

func (s *UserServiceTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func (s *UserServiceTestSuite) TestRegister() {
	args := RegisterUserArgs{
		Name:     "Ahmet Yılmaz",
		Email:    "ahmet@example.com",
		Phone:    "+905551112233",
		Company:  "Yılmaz Tekstil",
		TaxID:    "1234567890",
		Password: "secret123",
	}

	s.mockHasher.EXPECT().HashPassword(args.Password).Return("hashed", nil)

	s.mockUOW.EXPECT().Do(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, fn func(context.Context, uow.TX) error) error {
			return fn(ctx, s.mockTX)
		},
	)
	s.mockTX.EXPECT().
		Get(uow.RepositoryName(repoargs.UserRepoName)).
		Return(s.mockUserRepo, nil)

	s.mockUserRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, create repoargs.CreateUser) (*domain.User, error) {
			// в базу уходит хэш, не исходный пароль
			s.Equal("hashed", create.Password)
			s.Equal(domain.RoleUser, create.Role)
			s.Equal(args.Email, create.Email)
			return &domain.User{
				ID:    123,
				Name:  create.Name,
				Email: create.Email,
				Role:  create.Role,
			}, nil
		})

	user, token, err := s.service.Register(s.T().Context(), args)
	s.Require().NoError(err)
	s.Equal(int64(123), user.ID)

	// выданный токен валиден и несет id и роль юзера
	claims, claimsErr := tokens.ValidateUserJWT(token, testJWTSecret)
	s.Require().NoError(claimsErr)
	s.Equal(user.ID, claims.ID)
	s.Equal(domain.RoleUser, claims.Role)
}

func (s *UserServiceTestSuite) TestRegister_DuplicateEmail() {
	s.mockHasher.EXPECT().HashPassword(gomock.Any()).Return("hashed", nil)

	s.mockUOW.EXPECT().Do(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, fn func(context.Context, uow.TX) error) error {
			return fn(ctx, s.mockTX)
		},
	)
	s.mockTX.EXPECT().
		Get(uow.RepositoryName(repoargs.UserRepoName)).
		Return(s.mockUserRepo, nil)

	s.mockUserRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
		Return(nil, domain.ErrDuplicateKey)

	_, _, err := s.service.Register(s.T().Context(), RegisterUserArgs{
		Email:    "ahmet@example.com",
		Password: "secret123",
	})
	s.Require().ErrorIs(err, domain.ErrDuplicateKey)
}

func (s *UserServiceTestSuite) TestLogin() {
	user := &domain.User{
		ID:       123,
		Email:    "ahmet@example.com",
		Password: "hashed",
		Role:     domain.RoleUser,
	}

	s.mockUserRepo.EXPECT().FindByEmail(gomock.Any(), user.Email).Return(user, nil)
	s.mockHasher.EXPECT().ComparePassword("secret123", user.Password).Return(true)

	logged, token, err := s.service.Login(s.T().Context(), user.Email, "secret123")
	s.Require().NoError(err)
	s.Equal(user.ID, logged.ID)

	claims, claimsErr := tokens.ValidateUserJWT(token, testJWTSecret)
	s.Require().NoError(claimsErr)
	s.Equal(user.ID, claims.ID)
}

func (s *UserServiceTestSuite) TestLogin_WrongCredentials() {
	user := &domain.User{
		ID:       123,
		Email:    "ahmet@example.com",
		Password: "hashed",
	}

	s.Run("wrong password", func() {
		s.mockUserRepo.EXPECT().FindByEmail(gomock.Any(), user.Email).Return(user, nil)
		s.mockHasher.EXPECT().ComparePassword("wrong", user.Password).Return(false)

		_, _, err := s.service.Login(s.T().Context(), user.Email, "wrong")
		s.Require().ErrorIs(err, domain.ErrPasswordMissMatch)
	})

	// несуществующий email неотличим от неверного пароля
	s.Run("unknown email", func() {
		s.mockUserRepo.EXPECT().FindByEmail(gomock.Any(), "nobody@example.com").
			Return(nil, domain.ErrRecordNotFound)

		_, _, err := s.service.Login(s.T().Context(), "nobody@example.com", "secret123")
		s.Require().ErrorIs(err, domain.ErrPasswordMissMatch)
	})
}
