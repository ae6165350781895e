package seed

import (
	"context"
	"testing"

	"github.com/justsurfingit/hirepath/internal/database"
	"github.com/justsurfingit/hirepath/internal/logger"
	"github.com/justsurfingit/hirepath/internal/models"
	"github.com/justsurfingit/hirepath/internal/rbac"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestSeeder(t *testing.T) (*Seeder, *gorm.DB) {
	t.Helper()
	db := database.NewTestDB(t)
	fixture, err := DefaultFixture()
	require.NoError(t, err)
	return New(db, logger.Discard(), fixture, Options{AdminEmail: "admin@example.com", Password: "changeme123"}), db
}

func count[T any](t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	var model T
	require.NoError(t, db.Model(&model).Count(&n).Error)
	return n
}

func rolePermissionNames(t *testing.T, db *gorm.DB, role string) []string {
	t.Helper()
	var r models.Role
	require.NoError(t, db.Preload("Permissions").Where("name = ?", role).First(&r).Error)
	names := make([]string, 0, len(r.Permissions))
	for _, p := range r.Permissions {
		names = append(names, p.Name)
	}
	return names
}

func TestSeeder_RunAll(t *testing.T) {
	s, db := newTestSeeder(t)

	report, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 8, report[StepModules])
	assert.Equal(t, 18, report[StepPermissions])
	assert.Equal(t, 3, report[StepRoles])
	assert.Equal(t, 3, report[StepUsers])

	assert.EqualValues(t, 8, count[models.Module](t, db))
	assert.EqualValues(t, 18, count[models.Permission](t, db))
	assert.EqualValues(t, 5, count[models.Option](t, db))
	assert.EqualValues(t, 3, count[models.Pack](t, db))
	assert.EqualValues(t, 11, count[models.PackOption](t, db))
	assert.EqualValues(t, 3, count[models.User](t, db))
	assert.EqualValues(t, 1, count[models.Candidate](t, db))

	assert.Len(t, rolePermissionNames(t, db, AdminRole), 18)
	assert.ElementsMatch(t, []string{
		"jobs:read", "jobs:write",
		"cover_letters:read", "cover_letters:write",
		"documents:read", "documents:write", "documents:delete",
		"skills_tests:read", "interviews:read", "billing:read",
	}, rolePermissionNames(t, db, CandidateRole))
}

func TestSeeder_IsIdempotent(t *testing.T) {
	s, db := newTestSeeder(t)
	ctx := context.Background()

	_, err := s.Run(ctx)
	require.NoError(t, err)

	var admin models.User
	require.NoError(t, db.Where("email = ?", "admin@example.com").First(&admin).Error)

	report, err := s.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, report[StepUsers], "existing users are skipped")

	assert.EqualValues(t, 8, count[models.Module](t, db))
	assert.EqualValues(t, 18, count[models.Permission](t, db))
	assert.EqualValues(t, 3, count[models.Role](t, db))
	assert.EqualValues(t, 11, count[models.PackOption](t, db))
	assert.EqualValues(t, 3, count[models.User](t, db))
	assert.Len(t, rolePermissionNames(t, db, AdminRole), 18)

	var again models.User
	require.NoError(t, db.Where("email = ?", "admin@example.com").First(&again).Error)
	assert.Equal(t, admin.PasswordHash, again.PasswordHash)
	assert.True(t, rbac.CheckPassword(again.PasswordHash, "changeme123"))
}

func TestSeeder_UpdatesChangedReferenceData(t *testing.T) {
	s, db := newTestSeeder(t)
	ctx := context.Background()
	_, err := s.Run(ctx)
	require.NoError(t, err)

	// Stripe IDs belong to the pricing sync and must survive a re-seed.
	require.NoError(t, db.Model(&models.Pack{}).Where("name = ?", "Pro").
		Updates(map[string]any{"stripe_product_id": "prod_1", "stripe_price_id": "price_1"}).Error)

	s.fixture.Packs[1].PriceCents = 2900
	s.fixture.Packs[1].Options = s.fixture.Packs[1].Options[:1]
	s.fixture.Roles[2].Permissions = []string{"jobs:read"}

	_, err = s.Run(ctx, StepRoles, StepPricing)
	require.NoError(t, err)

	var pro models.Pack
	require.NoError(t, db.Preload("Options").Where("name = ?", "Pro").First(&pro).Error)
	assert.Equal(t, int64(2900), pro.PriceCents)
	assert.Equal(t, "prod_1", pro.StripeProductID)
	assert.Equal(t, "price_1", pro.StripePriceID)
	assert.Len(t, pro.Options, 1)

	assert.Equal(t, []string{"jobs:read"}, rolePermissionNames(t, db, CandidateRole))
}

func TestSeeder_StepSelection(t *testing.T) {
	s, db := newTestSeeder(t)

	report, err := s.Run(context.Background(), StepPermissions, StepModules)
	require.NoError(t, err)
	assert.Len(t, report, 2)
	assert.EqualValues(t, 18, count[models.Permission](t, db))
	assert.EqualValues(t, 0, count[models.Role](t, db))

	_, err = s.Run(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrUnknownStep)
}

func TestSeeder_UsersRequirePassword(t *testing.T) {
	s, _ := newTestSeeder(t)
	s.opts.Password = ""

	_, err := s.Run(context.Background())
	assert.ErrorContains(t, err, "seed users")
}

func TestExpandPermissions(t *testing.T) {
	known := []models.Permission{
		{Name: "jobs:read"}, {Name: "jobs:write"}, {Name: "jobsearch:read"}, {Name: "roles:read"},
	}

	names := func(ps []models.Permission) []string {
		var out []string
		for _, p := range ps {
			out = append(out, p.Name)
		}
		return out
	}

	assert.Len(t, ExpandPermissions([]string{"*"}, known), 4)
	assert.Equal(t, []string{"jobs:read", "jobs:write"}, names(ExpandPermissions([]string{"jobs:*"}, known)))
	assert.Equal(t, []string{"roles:read"}, names(ExpandPermissions([]string{"roles:read", "missing:x"}, known)))
	assert.Empty(t, ExpandPermissions(nil, known))
}

func TestParseFixture_Validation(t *testing.T) {
	_, err := ParseFixture([]byte(`
modules:
  - name: jobs
options:
  - name: tracker
    module: nowhere
packs:
  - name: Pro
    interval: weekly
    options:
      - option: ghost
users:
  - email: a@b.c
    role: emperor
`))
	require.Error(t, err)
	assert.ErrorContains(t, err, `unknown module "nowhere"`)
	assert.ErrorContains(t, err, `unknown interval "weekly"`)
	assert.ErrorContains(t, err, `unknown option "ghost"`)
	assert.ErrorContains(t, err, `unknown role "emperor"`)
}
