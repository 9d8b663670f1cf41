package usecase

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"store_service/internal/domain"
)

// AdminUseCase registers and authenticates the store administrators.
type AdminUseCase interface {
	RegisterAdmin(username, email, password string) (*domain.Admin, error)
	Authenticate(username, password string) (bool, error)
}

type adminUseCase struct {
	admins map[string]*domain.Admin
	alloc  *domain.IDAllocator
	log    *logrus.Logger
}

var _ AdminUseCase = (*adminUseCase)(nil)

func NewAdminUseCase(alloc *domain.IDAllocator, logger *logrus.Logger) AdminUseCase {
	return &adminUseCase{
		admins: make(map[string]*domain.Admin),
		alloc:  alloc,
		log:    logger,
	}
}

func (uc *adminUseCase) RegisterAdmin(username, email, password string) (*domain.Admin, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	if username == "" {
		uc.log.Warn("Use Case: Admin registration failed - empty username")
		return nil, errors.New("admin username cannot be empty")
	}
	if email != "" && !strings.Contains(email, "@") {
		uc.log.Warnf("Use Case: Admin registration failed - invalid email format: %s", email)
		return nil, errors.New("invalid email format")
	}
	if len(password) < 8 {
		uc.log.Warn("Use Case: Admin registration failed - password too short")
		return nil, errors.New("password must be at least 8 characters")
	}
	if _, exists := uc.admins[username]; exists {
		uc.log.Warnf("Use Case: Admin registration failed - username %q taken", username)
		return nil, fmt.Errorf("admin with username %q already exists", username)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to hash password for %q: %v", username, err)
		return nil, fmt.Errorf("internal error processing password: %w", err)
	}

	admin := &domain.Admin{
		ID:           uc.alloc.Next(domain.KindAdmin),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	}
	uc.admins[username] = admin
	uc.log.Infof("Use Case: Admin %q registered with ID %d", username, admin.ID)
	return admin, nil
}

func (uc *adminUseCase) Authenticate(username, password string) (bool, error) {
	admin, ok := uc.admins[username]
	if !ok {
		uc.log.Warnf("Use Case: Authentication failed - unknown admin %q", username)
		return false, fmt.Errorf("admin %q: %w", username, domain.ErrNotFound)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		uc.log.Warnf("Use Case: Authentication failed for admin %q", username)
		return false, nil
	}
	uc.log.Infof("Use Case: Admin %q authenticated", username)
	return true, nil
}
