package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"storefront/logging"
	"storefront/models"
	"storefront/repository"
	"storefront/utils"
)

// AccountService is the account directory: customer registration, logins
// and profiles, and admin logins.
type AccountService struct {
	customers CustomerStore
	admins    AdminStore
	tokens    *utils.JWTManager
	logger    *zap.Logger
}

func NewAccountService(customers CustomerStore, admins AdminStore, tokens *utils.JWTManager, logger *zap.Logger) *AccountService {
	return &AccountService{customers: customers, admins: admins, tokens: tokens, logger: logging.OrNop(logger)}
}

func (s *AccountService) Register(ctx context.Context, req models.RegisterRequest) (string, *models.Customer, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	name := strings.TrimSpace(req.Name)
	if email == "" || name == "" || req.Password == "" {
		return "", nil, validationf("name, email and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, fmt.Errorf("hash password: %w", err)
	}
	c := &models.Customer{
		Name:         name,
		Email:        email,
		Phone:        strings.TrimSpace(req.Phone),
		Address:      strings.TrimSpace(req.Address),
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	id, err := s.customers.Create(ctx, c)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return "", nil, fmt.Errorf("%w: email already registered", ErrConflict)
		}
		return "", nil, fmt.Errorf("%w: create customer: %v", ErrStorage, err)
	}
	c.ID = id

	token, err := s.tokens.GenerateCustomerToken(c.ID, c.Name, c.Email)
	if err != nil {
		return "", nil, err
	}
	s.logger.Info("customer registered", zap.Int64("customer_id", id))
	return token, c, nil
}

func (s *AccountService) Login(ctx context.Context, email, password string) (string, *models.Customer, error) {
	c, err := s.customers.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, fmt.Errorf("%w: invalid email or password", ErrUnauthenticated)
		}
		return "", nil, fmt.Errorf("%w: load customer: %v", ErrStorage, err)
	}
	if bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password)) != nil {
		return "", nil, fmt.Errorf("%w: invalid email or password", ErrUnauthenticated)
	}
	token, err := s.tokens.GenerateCustomerToken(c.ID, c.Name, c.Email)
	if err != nil {
		return "", nil, err
	}
	return token, c, nil
}

func (s *AccountService) Profile(ctx context.Context, customerID int64) (*models.Customer, error) {
	c, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("customer %d: %w", customerID, ErrNotFound)
		}
		return nil, fmt.Errorf("%w: load customer: %v", ErrStorage, err)
	}
	return c, nil
}

// UpdateProfile edits contact fields. Orders placed earlier keep the values
// captured at checkout.
func (s *AccountService) UpdateProfile(ctx context.Context, customerID int64, p models.ProfileUpdate) error {
	p.Name = strings.TrimSpace(p.Name)
	p.Phone = strings.TrimSpace(p.Phone)
	p.Address = strings.TrimSpace(p.Address)
	if p.Name == "" || p.Phone == "" {
		return validationf("name and phone are required")
	}
	if _, err := s.Profile(ctx, customerID); err != nil {
		return err
	}
	if err := s.customers.UpdateProfile(ctx, customerID, p); err != nil {
		return fmt.Errorf("%w: update profile: %v", ErrStorage, err)
	}
	return nil
}

func (s *AccountService) AdminLogin(ctx context.Context, username, password string) (string, *models.AdminUser, error) {
	a, err := s.admins.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, fmt.Errorf("%w: invalid credentials", ErrUnauthenticated)
		}
		return "", nil, fmt.Errorf("%w: load admin: %v", ErrStorage, err)
	}
	if bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) != nil {
		return "", nil, fmt.Errorf("%w: invalid credentials", ErrUnauthenticated)
	}
	token, err := s.tokens.GenerateAdminToken(a.ID, a.Username)
	if err != nil {
		return "", nil, err
	}
	s.logger.Info("admin login", zap.String("username", a.Username))
	return token, a, nil
}
