// Package roles stores role membership of forum users.
package roles

import (
	"context"
	"errors"
	"fmt"

	"forumcore/internal/models"
	"forumcore/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Well-known role names.
const (
	Administrator = "administrator"
	Moderator     = "moderator"
)

// Store is the membership collaborator consulted when a user is anonymized.
type Store interface {
	RolesOf(ctx context.Context, userName string) ([]string, error)
	RemoveFromRoles(ctx context.Context, userName string, roles []string) error
}

// TxBinder is implemented by stores that can join a caller's transaction,
// so membership changes commit or roll back together with it.
type TxBinder interface {
	WithTx(tx *gorm.DB) Store
}

// GormStore keeps memberships in the roles and user_roles tables.
type GormStore struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewGormStore creates a GormStore.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db, log: observability.NewRepoLogger("user_roles")}
}

// WithTx returns a store whose reads and writes run inside tx.
func (s *GormStore) WithTx(tx *gorm.DB) Store {
	return &GormStore{db: tx, log: s.log}
}

// RolesOf returns the user's role names sorted by name. Unknown users have no roles.
func (s *GormStore) RolesOf(ctx context.Context, userName string) ([]string, error) {
	names := []string{}
	err := s.db.WithContext(ctx).
		Table("roles AS r").
		Joins("JOIN user_roles ur ON ur.role_id = r.id").
		Joins("JOIN user_profiles u ON u.id = ur.user_id").
		Where("u.user_name = ?", userName).
		Order("r.name ASC").
		Pluck("r.name", &names).Error
	if err != nil {
		return nil, fmt.Errorf("roles of %q: %w", userName, err)
	}
	return names, nil
}

// RemoveFromRoles drops the user's membership in each named role.
func (s *GormStore) RemoveFromRoles(ctx context.Context, userName string, roles []string) error {
	if len(roles) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		userID, err := userIDByName(tx, userName)
		if err != nil {
			return err
		}
		roleIDs := tx.Model(&models.Role{}).Select("id").Where("name IN ?", roles)
		return tx.Where("user_id = ? AND role_id IN (?)", userID, roleIDs).Delete(&models.UserRole{}).Error
	})
	if err != nil {
		s.log.LogError(ctx, err, "remove_from_roles")
		return fmt.Errorf("remove %q from roles: %w", userName, err)
	}
	s.log.LogMutation(ctx, "remove_from_roles", "roles", roles)
	return nil
}

// AddToRoles grants the named roles, creating missing role rows. Existing
// memberships are left as they are.
func (s *GormStore) AddToRoles(ctx context.Context, userName string, roles []string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		userID, err := userIDByName(tx, userName)
		if err != nil {
			return err
		}
		for _, name := range roles {
			role := models.Role{Name: name}
			if err := tx.Where(models.Role{Name: name}).FirstOrCreate(&role).Error; err != nil {
				return err
			}
			membership := models.UserRole{UserID: userID, RoleID: role.ID}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&membership).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.log.LogError(ctx, err, "add_to_roles")
		return fmt.Errorf("add %q to roles: %w", userName, err)
	}
	s.log.LogMutation(ctx, "add_to_roles", "roles", roles)
	return nil
}

func userIDByName(tx *gorm.DB, userName string) (uint, error) {
	var profile models.UserProfile
	if err := tx.Select("id").Where("user_name = ?", userName).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, models.NewNotFoundError("User", userName)
		}
		return 0, err
	}
	return profile.ID, nil
}
