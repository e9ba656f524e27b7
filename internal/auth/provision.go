package auth

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/ssmdetailing/ssm-backend/internal/users"
	"github.com/ssmdetailing/ssm-backend/pkg/config"
	"github.com/ssmdetailing/ssm-backend/pkg/enums"
	pkgerrors "github.com/ssmdetailing/ssm-backend/pkg/errors"
	"github.com/ssmdetailing/ssm-backend/pkg/security"
)

// ProvisionRequest names the admin account to create or reset.
type ProvisionRequest struct {
	Email       string
	Password    string
	DisplayName string
}

// ProvisionResult reports whether the account was created or reset.
type ProvisionResult struct {
	User    *users.UserDTO
	Created bool
}

// Provisioner seeds admin accounts from operator-supplied credentials.
type Provisioner struct {
	repo        *users.Repository
	passwordCfg config.PasswordConfig
}

func NewProvisioner(repo *users.Repository, passwordCfg config.PasswordConfig) (*Provisioner, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	return &Provisioner{repo: repo, passwordCfg: passwordCfg}, nil
}

// CreateOrReset creates the admin, or resets the password of an existing
// account and reactivates it.
func (p *Provisioner) CreateOrReset(ctx context.Context, req ProvisionRequest) (*ProvisionResult, error) {
	email := users.NormalizeEmail(req.Email)
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if err := security.CheckPolicy(req.Password); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
	}
	displayName := req.DisplayName
	if displayName == "" {
		displayName = "Administrator"
	}

	hash, err := security.HashPassword(req.Password, p.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	existing, err := p.repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.Role != enums.UserRoleAdmin {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "account exists with another role")
		}
		if err := p.repo.ResetCredentials(ctx, existing.ID, hash, req.DisplayName); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reset credentials")
		}
		reloaded, err := p.repo.FindByID(ctx, existing.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload user")
		}
		return &ProvisionResult{User: users.FromModel(reloaded)}, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		created, err := p.repo.Create(ctx, users.CreateUserDTO{
			Email:        email,
			PasswordHash: hash,
			DisplayName:  displayName,
			Role:         enums.UserRoleAdmin,
		})
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}
		return &ProvisionResult{User: users.FromModel(created), Created: true}, nil
	default:
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}
}
