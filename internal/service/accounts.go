package service

import (
	"context"
	"crypto/sha256"
	"fmt"

	"github.com/gosimple/slug"

	"busenjoyer/internal/cache"
	"busenjoyer/internal/logger"
	"busenjoyer/internal/models"

	apperrors "busenjoyer/internal/errors"
)

// AccountService handles user and partner registration. Authentication
// itself happens in the Basic Auth middleware; this service only creates
// the records and primes the credential cache.
type AccountService struct {
	users  UserStore
	valkey *cache.ValkeyClient
}

func NewAccountService(users UserStore, valkey *cache.ValkeyClient) *AccountService {
	return &AccountService{users: users, valkey: valkey}
}

// HashPassword derives the stored credential hash.
func HashPassword(password string) string {
	hash := sha256.Sum256([]byte(password))
	return fmt.Sprintf("%x", hash)
}

func (s *AccountService) Register(ctx context.Context, req *models.RegisterUserRequest) (*models.User, error) {
	user := newUserFromRequest(req)

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.primeAuthCache(ctx, user)
	return user, nil
}

// RegisterPartner creates the partner account together with its company.
// The store commits both or neither.
func (s *AccountService) RegisterPartner(ctx context.Context, req *models.RegisterPartnerRequest) (*models.User, *models.Company, error) {
	user := newUserFromRequest(&req.RegisterUserRequest)
	company := &models.Company{
		Name: req.CompanyName,
		Slug: slug.Make(req.CompanyName),
	}

	if err := s.users.CreatePartner(ctx, user, company); err != nil {
		return nil, nil, err
	}

	s.primeAuthCache(ctx, user)
	return user, company, nil
}

// GetCompany resolves the company the acting user manages.
func (s *AccountService) GetCompany(ctx context.Context, userID int64) (*models.Company, error) {
	company, err := s.users.GetCompanyByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	if company == nil {
		return nil, apperrors.ErrForbidden
	}

	return company, nil
}

func newUserFromRequest(req *models.RegisterUserRequest) *models.User {
	user := &models.User{
		Phone:        req.Phone,
		PasswordHash: HashPassword(req.Password),
		FirstName:    req.FirstName,
		Surname:      req.Surname,
	}
	if req.Email != "" {
		email := req.Email
		user.Email = &email
	}
	return user
}

func (s *AccountService) primeAuthCache(ctx context.Context, user *models.User) {
	if s.valkey == nil {
		return
	}
	if err := s.valkey.SetUserAuth(ctx, user.Phone, user.PasswordHash, user.UserID); err != nil {
		logger.WithContext(ctx).Warn("Failed to prime auth cache",
			"error", err, "user_id", user.UserID)
	}
}
