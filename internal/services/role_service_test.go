package services

import (
	"context"
	"testing"

	"github.com/justsurfingit/hirepath/internal/models"
	"github.com/justsurfingit/hirepath/internal/seed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestRoleService_Lists(t *testing.T) {
	db := seededDB(t)
	svc := NewRoleService(db)
	ctx := context.Background()

	roles, err := svc.ListRoles(ctx)
	require.NoError(t, err)
	require.Len(t, roles, 3)
	assert.Equal(t, seed.AdminRole, roles[0].Name)
	assert.Len(t, roles[0].Permissions, 18)

	perms, err := svc.ListPermissions(ctx)
	require.NoError(t, err)
	assert.Len(t, perms, 18)
	assert.Equal(t, "billing:read", perms[0].Name)

	role, err := svc.GetRole(ctx, roles[1].ID)
	require.NoError(t, err)
	assert.Equal(t, roles[1].Name, role.Name)

	_, err = svc.GetRole(ctx, 9999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRoleService_AssignRole(t *testing.T) {
	db := seededDB(t)
	svc := NewRoleService(db)
	ctx := context.Background()
	coach := userByEmail(t, db, coachEmail)

	var candidateRole models.Role
	require.NoError(t, db.Where("name = ?", seed.CandidateRole).First(&candidateRole).Error)

	user, err := svc.AssignRole(ctx, coach.ID, candidateRole.ID)
	require.NoError(t, err)
	assert.Equal(t, seed.CandidateRole, user.Role.Name)
	assert.Equal(t, candidateRole.ID, userByEmail(t, db, coachEmail).RoleID)
	candidateOf(t, db, coach.ID)

	// idempotent, the profile is not duplicated
	_, err = svc.AssignRole(ctx, coach.ID, candidateRole.ID)
	require.NoError(t, err)

	_, err = svc.AssignRole(ctx, coach.ID, 9999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	_, err = svc.AssignRole(ctx, 9999, candidateRole.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestPackService(t *testing.T) {
	db := seededDB(t)
	svc := NewPackService(db)
	ctx := context.Background()

	packs, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, packs, 3)
	assert.Equal(t, []string{"Free", "Pro", "Premium"}, []string{packs[0].Name, packs[1].Name, packs[2].Name})
	require.Len(t, packs[0].Options, 2)
	assert.NotEmpty(t, packs[0].Options[0].Option.Module.Name)

	require.NoError(t, db.Model(&models.Pack{}).Where("name = ?", "Premium").Update("active", false).Error)
	packs, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, packs, 2)

	var premium models.Pack
	require.NoError(t, db.Where("name = ?", "Premium").First(&premium).Error)
	_, err = svc.Get(ctx, premium.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	pro, err := svc.Get(ctx, packs[1].ID)
	require.NoError(t, err)
	assert.Len(t, pro.Options, 4)
}
