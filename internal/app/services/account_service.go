package services

import (
	"context"
	stderrors "errors"

	"github.com/google/uuid"
	"github.com/safatanc/feastly-core/internal/app/errors"
	"github.com/safatanc/feastly-core/internal/app/models"
	"github.com/safatanc/feastly-core/internal/infrastructures"
	"gorm.io/gorm"
)

const accountsTable = "accounts"

type AccountService struct {
	db             *gorm.DB
	validator      *infrastructures.Validator
	connectService *ConnectService
	auditService   *AuditService
}

func NewAccountService(db *gorm.DB, validator *infrastructures.Validator, connectService *ConnectService, auditService *AuditService) *AccountService {
	return &AccountService{
		db:             db,
		validator:      validator,
		connectService: connectService,
		auditService:   auditService,
	}
}

// CreateAccount registers the Connect user behind accessToken. Connect
// administrators start as admins, everyone else as a customer.
func (s *AccountService) CreateAccount(ctx context.Context, accessToken string) (*models.Account, error) {
	connectUser, err := s.connectService.GetCurrentUser(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	if connectUser == nil || connectUser.ID == uuid.Nil {
		return nil, errors.NewBadRequestError("Connect user not found")
	}

	// Check if account already exists
	var existing int64
	if err := s.db.WithContext(ctx).Model(&models.Account{}).Where("connect_id = ?", connectUser.ID).Count(&existing).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to check account")
	}
	if existing > 0 {
		return nil, errors.NewConflictError("Account already exists")
	}

	role := models.AccountRoleCustomer
	if connectUser.GlobalRole == models.ConnectUserRoleAdmin {
		role = models.AccountRoleAdmin
	}

	account := &models.Account{
		ConnectID: connectUser.ID,
		Role:      role,
		IsActive:  true,
	}

	if err := s.db.WithContext(ctx).Create(account).Error; err != nil {
		if isDuplicateKeyError(err) {
			return nil, errors.NewConflictError("Account already exists")
		}
		return nil, errors.NewInternalServerError(err, "Failed to create account")
	}

	return account, nil
}

func (s *AccountService) GetAccount(ctx context.Context, connectId string) (*models.Account, error) {
	connectIdUUID, err := uuid.Parse(connectId)
	if err != nil {
		return nil, errors.NewBadRequestError("Invalid connect ID format")
	}

	var account models.Account
	err = s.db.WithContext(ctx).Where("connect_id = ?", connectIdUUID).First(&account).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NewNotFoundError("Account not found")
		}
		return nil, errors.NewInternalServerError(err, "Failed to get account")
	}

	return &account, nil
}

// GetAccounts lists accounts for the admin dashboard, optionally by role.
func (s *AccountService) GetAccounts(ctx context.Context, pagination *models.PaginationRequest, role models.AccountRole) (*models.Pagination[[]models.Account], error) {
	query := s.db.WithContext(ctx)
	if role != "" {
		query = query.Where("role = ?", role)
	}

	return paginate[models.Account](query, pagination, "created_at DESC", "accounts")
}

func (s *AccountService) UpdateRole(ctx context.Context, connectId string, req *models.AccountRoleUpdateRequest, changedBy *uuid.UUID) (*models.Account, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	account, err := s.GetAccount(ctx, connectId)
	if err != nil {
		return nil, err
	}
	oldRole := account.Role

	if err := s.db.WithContext(ctx).Model(account).Update("role", req.Role).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to update account role")
	}
	account.Role = req.Role

	s.auditService.record(ctx, accountsTable, account.ConnectID, models.AuditActionUpdate,
		map[string]models.AccountRole{"role": oldRole}, map[string]models.AccountRole{"role": req.Role}, changedBy)

	return account, nil
}

// UpdateStatus suspends or reinstates an account.
func (s *AccountService) UpdateStatus(ctx context.Context, connectId string, req *models.AccountStatusUpdateRequest, changedBy *uuid.UUID) (*models.Account, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	account, err := s.GetAccount(ctx, connectId)
	if err != nil {
		return nil, err
	}
	oldStatus := account.IsActive

	if err := s.db.WithContext(ctx).Model(account).Update("is_active", *req.IsActive).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to update account status")
	}
	account.IsActive = *req.IsActive

	s.auditService.record(ctx, accountsTable, account.ConnectID, models.AuditActionStatusChange,
		map[string]bool{"is_active": oldStatus}, map[string]bool{"is_active": account.IsActive}, changedBy)

	return account, nil
}

func (s *AccountService) DeleteAccount(ctx context.Context, connectId string) error {
	account, err := s.GetAccount(ctx, connectId)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(account).Error; err != nil {
		return errors.NewInternalServerError(err, "Failed to delete account")
	}

	return nil
}
