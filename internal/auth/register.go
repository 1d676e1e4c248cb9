package auth

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/redreserve/redreserve-backend/internal/users"
	"github.com/redreserve/redreserve-backend/pkg/config"
	"github.com/redreserve/redreserve-backend/pkg/db"
	"github.com/redreserve/redreserve-backend/pkg/db/models"
	"github.com/redreserve/redreserve-backend/pkg/enums"
	pkgerrors "github.com/redreserve/redreserve-backend/pkg/errors"
	"github.com/redreserve/redreserve-backend/pkg/security"
)

const emailTakenMessage = "email already registered"

// RegisterService handles account creation.
type RegisterService interface {
	Register(ctx context.Context, req RegisterRequest) (*users.Summary, error)
	// Provision creates an account with an explicit role. Used by the admin CLI.
	Provision(ctx context.Context, name, email, password string, role enums.AccountRole) (*users.Summary, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type registerUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
}

// RegisterServiceParams packages the dependencies for the registration flow.
type RegisterServiceParams struct {
	Tx             txRunner
	PasswordConfig config.PasswordConfig
}

type registerService struct {
	tx          txRunner
	passwordCfg config.PasswordConfig
	repoFor     func(tx *gorm.DB) registerUserRepository
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	return &registerService{
		tx:          params.Tx,
		passwordCfg: params.PasswordConfig,
		repoFor:     func(tx *gorm.DB) registerUserRepository { return users.NewRepository(tx) },
	}, nil
}

func (s *registerService) Register(ctx context.Context, req RegisterRequest) (*users.Summary, error) {
	group, err := parseOptionalBloodGroup(req.BloodGroup)
	if err != nil {
		return nil, err
	}
	return s.create(ctx, users.CreateUserDTO{
		Name:       req.Name,
		Email:      req.Email,
		Role:       enums.AccountRoleUser,
		BloodGroup: group,
	}, req.Password)
}

func (s *registerService) Provision(ctx context.Context, name, email, password string, role enums.AccountRole) (*users.Summary, error) {
	if !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}
	return s.create(ctx, users.CreateUserDTO{Name: name, Email: email, Role: role}, password)
}

func (s *registerService) create(ctx context.Context, dto users.CreateUserDTO, password string) (*users.Summary, error) {
	dto.Email = users.NormalizeEmail(dto.Email)
	if dto.Email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}

	hash, err := security.HashPassword(password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid password")
	}
	dto.PasswordHash = hash

	var created *models.User
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repoFor(tx)
		if _, err := repo.FindByEmail(ctx, dto.Email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, emailTakenMessage)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "check user email")
		}

		user, err := repo.Create(ctx, dto)
		if err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, emailTakenMessage)
			}
			return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "create user")
		}
		created = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return users.SummaryFromModel(created), nil
}
