package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Theagentvikram/MeetNote/pkg/jwt"
	"github.com/Theagentvikram/MeetNote/pkg/logger"
	"github.com/Theagentvikram/MeetNote/services/meetnote/consts"
	"github.com/Theagentvikram/MeetNote/services/meetnote/entity"
)

func (u *usecase) Register(ctx context.Context, req *entity.RegisterRequest) (*entity.TokenResponse, error) {
	if req.Email == "" || req.Password == "" || req.Name == "" {
		return nil, fmt.Errorf("email, password and name are required: %w", entity.ErrValidation)
	}

	// Email matching is a case-sensitive exact match.
	if _, err := u.storage.GetUserByEmail(ctx, req.Email); err == nil {
		return nil, entity.ErrDuplicateEmail
	} else if !errors.Is(err, entity.ErrNotFound) {
		return nil, err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := u.storage.CreateUser(ctx, &entity.User{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: string(passwordHash),
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "user registered", "user_id", user.ID)

	return u.issueToken(ctx, user.ID)
}

func (u *usecase) Login(ctx context.Context, req *entity.LoginRequest) (*entity.TokenResponse, error) {
	user, err := u.storage.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, entity.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, entity.ErrInvalidCredentials
	}

	return u.issueToken(ctx, user.ID)
}

// Authenticate resolves a bearer token to an existing user. Any defect in the
// token (bad signature, expiry, unknown subject) maps to ErrInvalidCredentials.
func (u *usecase) Authenticate(ctx context.Context, token string) (*entity.User, error) {
	userID, err := jwt.ParseUserID(ctx, token, u.cfg.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", entity.ErrInvalidCredentials, err)
	}

	user, err := u.storage.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, entity.ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, entity.ErrInvalidCredentials
	}
	return user, nil
}

func (u *usecase) GetUser(ctx context.Context, id string) (*entity.User, error) {
	return u.storage.GetUserByID(ctx, id)
}

func (u *usecase) DeleteAccount(ctx context.Context, userID string) error {
	if err := u.storage.DeleteUser(ctx, userID); err != nil {
		return err
	}
	logger.Info(ctx, "user account deleted", "user_id", userID)
	return nil
}

func (u *usecase) issueToken(ctx context.Context, userID string) (*entity.TokenResponse, error) {
	ttl := u.cfg.TokenTTL
	if ttl <= 0 {
		ttl = jwt.DefaultTTL
	}

	token, err := jwt.Generate(ctx, userID, u.cfg.JWTSecret, ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &entity.TokenResponse{
		AccessToken: token,
		TokenType:   consts.TokenType,
	}, nil
}
