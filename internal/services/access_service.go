package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/justsurfingit/hirepath/internal/models"
	"github.com/justsurfingit/hirepath/internal/rbac"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AccessService answers permission, entitlement and quota questions from
// the seeded reference data.
type AccessService struct {
	DB *gorm.DB
}

func NewAccessService(db *gorm.DB) *AccessService {
	return &AccessService{DB: db}
}

// CurrentRole returns the stored role of an active, non deleted user.
func (s *AccessService) CurrentRole(ctx context.Context, userID uint) (uint, string, error) {
	var row struct {
		RoleID uint
		Name   string
	}
	res := s.DB.WithContext(ctx).Table("users").
		Select("users.role_id AS role_id, roles.name AS name").
		Joins("JOIN roles ON roles.id = users.role_id").
		Where("users.id = ? AND users.active = ? AND users.deleted_at IS NULL", userID, true).
		Limit(1).
		Scan(&row)
	if res.Error != nil {
		return 0, "", fmt.Errorf("lookup role: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, "", rbac.ErrInactiveUser
	}
	return row.RoleID, row.Name, nil
}

func (s *AccessService) RoleHasPermission(ctx context.Context, roleID uint, permission string) (bool, error) {
	var n int64
	err := s.DB.WithContext(ctx).Table("role_permissions").
		Joins("JOIN permissions ON permissions.id = role_permissions.permission_id").
		Where("role_permissions.role_id = ? AND permissions.name = ?", roleID, permission).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("lookup permission: %w", err)
	}
	return n > 0, nil
}

func (s *AccessService) UserHasModule(ctx context.Context, userID uint, module string) (bool, error) {
	quotas, err := s.moduleQuotas(ctx, userID, module)
	if err != nil {
		return false, err
	}
	return len(quotas) > 0, nil
}

// ModuleQuota returns the quota the user's pack grants on a module.
// Zero means unlimited. A pack without the module yields ErrQuotaExceeded.
func (s *AccessService) ModuleQuota(ctx context.Context, userID uint, module string) (int, error) {
	quotas, err := s.moduleQuotas(ctx, userID, module)
	if err != nil {
		return 0, err
	}
	if len(quotas) == 0 {
		return 0, fmt.Errorf("%w: plan does not include %s", ErrQuotaExceeded, module)
	}
	limit := 0
	for i, q := range quotas {
		if q == 0 {
			return 0, nil
		}
		if i == 0 || q > limit {
			limit = q
		}
	}
	return limit, nil
}

// CheckQuota fails when used has reached the module quota.
func (s *AccessService) CheckQuota(ctx context.Context, userID uint, module string, used int64) error {
	limit, err := s.ModuleQuota(ctx, userID, module)
	if err != nil {
		return err
	}
	if limit > 0 && used >= int64(limit) {
		return fmt.Errorf("%w: %s allows %d", ErrQuotaExceeded, module, limit)
	}
	return nil
}

// WithinQuota runs create in a transaction that first locks the candidate
// row and checks the module quota against used. Concurrent creates for the
// same candidate are serialised by the lock.
func (s *AccessService) WithinQuota(ctx context.Context, userID, candidateID uint, module string,
	used func(tx *gorm.DB) (int64, error), create func(tx *gorm.DB) error) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var locked models.Candidate
		err := tx.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
			Select("id").First(&locked, candidateID).Error
		if err != nil {
			return fmt.Errorf("lock candidate %d: %w", candidateID, err)
		}
		n, err := used(tx)
		if err != nil {
			return err
		}
		if err := (&AccessService{DB: tx}).CheckQuota(ctx, userID, module, n); err != nil {
			return err
		}
		return create(tx)
	})
}

func (s *AccessService) moduleQuotas(ctx context.Context, userID uint, module string) ([]int, error) {
	var quotas []int
	err := s.DB.WithContext(ctx).Table("pack_options").
		Joins("JOIN options ON options.id = pack_options.option_id").
		Joins("JOIN modules ON modules.id = options.module_id").
		Joins("JOIN packs ON packs.id = pack_options.pack_id").
		Joins("JOIN users ON users.pack_id = packs.id").
		Where("users.id = ? AND users.deleted_at IS NULL AND modules.name = ?", userID, module).
		Pluck("pack_options.quota", &quotas).Error
	if err != nil {
		return nil, fmt.Errorf("lookup entitlement: %w", err)
	}
	return quotas, nil
}

// candidateForUser loads the candidate profile of a user. Users without one
// (admins, coaches) are forbidden from candidate features.
func candidateForUser(ctx context.Context, db *gorm.DB, userID uint) (*models.Candidate, error) {
	var candidate models.Candidate
	err := db.WithContext(ctx).Where("user_id = ?", userID).First(&candidate).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: user has no candidate profile", ErrForbidden)
	}
	if err != nil {
		return nil, fmt.Errorf("load candidate: %w", err)
	}
	return &candidate, nil
}
