package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/krishi/app/models"
	"github.com/shashiranjanraj/krishi/app/repositories"
	"github.com/shashiranjanraj/krishi/internal/access"
	"github.com/shashiranjanraj/krishi/pkg/apperr"
	"github.com/shashiranjanraj/krishi/pkg/auth"
	"github.com/shashiranjanraj/krishi/pkg/event"
	"github.com/shashiranjanraj/krishi/pkg/logger"
	"github.com/shashiranjanraj/krishi/pkg/metrics"
	"github.com/shashiranjanraj/krishi/pkg/session"
)

// LoginResult is a freshly issued session.
type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// RegisterInput is a self-service sign-up. Admins are never self-registered.
type RegisterInput struct {
	Name     string      `json:"name"     validate:"required,min=2,max=255"`
	Email    string      `json:"email"    validate:"required,email,max=255"`
	Password string      `json:"password" validate:"required,min=8,max=72"`
	Phone    string      `json:"phone"    validate:"omitempty,max=32"`
	Role     access.Role `json:"role"     validate:"required,role"`
}

// AuthService issues, validates and revokes sessions.
type AuthService struct {
	db      *gorm.DB
	users   *repositories.UserRepository
	issuer  *auth.Issuer
	revoked *session.Revocations
	bus     *event.Bus
}

func NewAuthService(db *gorm.DB, issuer *auth.Issuer, revoked *session.Revocations, bus *event.Bus) *AuthService {
	return &AuthService{
		db:      db,
		users:   repositories.NewUserRepository(db),
		issuer:  issuer,
		revoked: revoked,
		bus:     bus,
	}
}

// Login checks credentials and issues a token. Unknown email and wrong
// password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			metrics.LoginFailures.Inc()
			return nil, apperr.ErrInvalidCredentials
		}
		return nil, apperr.Server(err)
	}
	if !auth.CheckPassword(user.Password, password) {
		metrics.LoginFailures.Inc()
		return nil, apperr.ErrInvalidCredentials
	}

	token, exp, err := s.issuer.Issue(user.ID, user.Role)
	if err != nil {
		return nil, apperr.Server(err)
	}
	metrics.SessionsIssued.WithLabelValues(string(user.Role)).Inc()
	logger.WithCtx(ctx).Info("auth: login", "user_id", user.ID, "role", user.Role)
	return &LoginResult{Token: token, ExpiresAt: exp, User: user}, nil
}

// Register creates a customer or farmer account. Farmers start pending.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if in.Role != access.RoleCustomer && in.Role != access.RoleFarmer {
		return nil, apperr.InvalidFields(map[string]string{"role": "The role field must be customer or farmer."})
	}
	email := normalizeEmail(in.Email)
	taken, err := s.users.EmailTaken(ctx, email)
	if err != nil {
		return nil, apperr.Server(err)
	}
	if taken {
		return nil, &apperr.Error{
			Kind: apperr.KindValidation, Code: apperr.CodeDuplicate,
			Message: "email is already registered",
			Fields:  map[string]string{"email": "The email has already been taken."},
		}
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Server(err)
	}
	user := &models.User{
		Name:     strings.TrimSpace(in.Name),
		Email:    email,
		Password: hash,
		Phone:    strings.TrimSpace(in.Phone),
		Role:     in.Role,
		Status:   models.InitialStatus(in.Role),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperr.Server(err)
	}
	s.bus.FireAsync(ctx, event.UserRegistered, user)
	return user, nil
}

// Validate resolves a bearer token to the current session. The user is
// re-read so role and status changes take effect on the next request.
func (s *AuthService) Validate(ctx context.Context, token string) (*access.Session, error) {
	claims, err := s.issuer.Parse(token)
	if err != nil {
		return nil, apperr.ErrInvalidOrExpiredToken
	}
	revoked, err := s.revoked.Revoked(ctx, claims.ID)
	if err != nil {
		return nil, apperr.Server(err)
	}
	if revoked {
		return nil, apperr.ErrInvalidOrExpiredToken
	}
	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.ErrInvalidOrExpiredToken
		}
		return nil, apperr.Server(err)
	}
	return &access.Session{
		UserID:    user.ID,
		Role:      user.Role,
		Status:    string(user.Status),
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Me returns the profile of the session's user.
func (s *AuthService) Me(ctx context.Context, sess *access.Session) (*models.User, error) {
	if err := authorize(sess); err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Logout revokes token until it would have expired. Logging out an invalid
// token is a no-op.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.issuer.Parse(token)
	if err != nil {
		return nil
	}
	if err := s.revoked.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return apperr.Server(err)
	}
	logger.WithCtx(ctx).Info("auth: logout", "user_id", claims.UserID)
	return nil
}

// DeleteAccount removes the session's user after re-checking the password.
// A farmer's lands and products go with the account; orders stay.
func (s *AuthService) DeleteAccount(ctx context.Context, sess *access.Session, token, password string) error {
	if err := authorize(sess); err != nil {
		return err
	}
	user, err := s.users.FindByID(ctx, sess.UserID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(user.Password, password) {
		// validation, not auth: the session stays valid
		return &apperr.Error{
			Kind: apperr.KindValidation, Code: apperr.CodeInvalidCredentials,
			Message: "password is incorrect",
			Fields:  map[string]string{"password": "The password is incorrect."},
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if user.Role == access.RoleFarmer {
			if err := repositories.NewProductRepository(tx).DeleteByFarmer(ctx, user.ID); err != nil {
				return err
			}
			if err := repositories.NewLandRepository(tx).DeleteByFarmer(ctx, user.ID); err != nil {
				return err
			}
		}
		return s.users.Tx(tx).Delete(ctx, user.ID)
	})
	if err != nil {
		return apperr.Server(err)
	}
	logger.WithCtx(ctx).Info("auth: account deleted", "user_id", user.ID, "role", user.Role)
	return s.Logout(ctx, token)
}

func normalizeEmail(e string) string { return strings.ToLower(strings.TrimSpace(e)) }
