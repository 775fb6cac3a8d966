package service

import (
	"context"
	"fmt"
	"time"

	"github.com/kargopanel/backend/internal/domain"
	"github.com/kargopanel/backend/internal/repository/repoargs"
	"github.com/kargopanel/backend/internal/tokens"
	"github.com/kargopanel/backend/pkg/uow"
)

const JWTTokenExpire = 24 * time.Hour

type UserService struct {
	uow            uow.UOW
	userRepo       UserRepository
	hasher         PasswordHasher
	jwtTokenSecret []byte
}

func NewUserService(u uow.UOW, hasher PasswordHasher, jwtTokenSecret []byte) (*UserService, error) {
	userRepo, userRepoErr := uow.GetRepositoryAs[UserRepository](u, uow.RepositoryName(repoargs.UserRepoName))
	if userRepoErr != nil {
		return nil, userRepoErr
	}
	return &UserService{
		uow:            u,
		userRepo:       userRepo,
		hasher:         hasher,
		jwtTokenSecret: jwtTokenSecret,
	}, nil
}

type RegisterUserArgs struct {
	Name     string
	Email    string
	Phone    string
	Company  string
	TaxID    string
	Password string
}

// Register создает юзера и сразу генерирует jwt token. Возвращает 3 значения:
// созданный юзер, токен и ошибку. Повторный email дает domain.ErrDuplicateKey.
func (s *UserService) Register(ctx context.Context, args RegisterUserArgs) (*domain.User, string, error) {
	password, hashErr := s.hasher.HashPassword(args.Password)
	if hashErr != nil {
		return nil, "", fmt.Errorf("registering user: %s", hashErr.Error())
	}

	var user *domain.User
	var token string
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		userRepo, userRepoErr := uow.GetAs[UserRepository](tx, uow.RepositoryName(repoargs.UserRepoName))
		if userRepoErr != nil {
			return userRepoErr //nolint:wrapcheck
		}

		var userErr error
		user, userErr = userRepo.Create(c, repoargs.CreateUser{
			Name:     args.Name,
			Email:    args.Email,
			Phone:    args.Phone,
			Company:  args.Company,
			TaxID:    args.TaxID,
			Password: password,
			Role:     domain.RoleUser,
		})
		if userErr != nil {
			return userErr //nolint:wrapcheck
		}

		var tokenErr error
		token, tokenErr = tokens.GenerateUserJWT(user.ID, user.Role, JWTTokenExpire, s.jwtTokenSecret)
		return tokenErr //nolint:wrapcheck
	})
	if txErr != nil {
		return nil, "", txErr //nolint:wrapcheck
	}
	return user, token, nil
}

// Login проверяет пару email/пароль. Несуществующий email и неверный пароль
// возвращают одну и ту же ошибку domain.ErrPasswordMissMatch.
func (s *UserService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, findErr := s.userRepo.FindByEmail(ctx, email)
	if findErr != nil {
		return nil, "", domain.ErrPasswordMissMatch
	}
	if !s.hasher.ComparePassword(password, user.Password) {
		return nil, "", domain.ErrPasswordMissMatch
	}

	token, tokenErr := tokens.GenerateUserJWT(user.ID, user.Role, JWTTokenExpire, s.jwtTokenSecret)
	if tokenErr != nil {
		return nil, "", tokenErr //nolint:wrapcheck
	}
	return user, token, nil
}

func (s *UserService) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return user, nil
}

// List админская выборка юзеров с поиском по имени, email и фирме.
func (s *UserService) List(ctx context.Context, args repoargs.ListUsers) ([]domain.User, int64, error) {
	users, total, err := s.userRepo.List(ctx, args)
	if err != nil {
		return nil, 0, err //nolint:wrapcheck
	}
	return users, total, nil
}
