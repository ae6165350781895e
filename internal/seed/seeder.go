// Package seed populates reference data: modules, permissions, roles,
// pricing and bootstrap users. Every step is an upsert and can be re-run.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/justsurfingit/hirepath/internal/models"
	"github.com/justsurfingit/hirepath/internal/rbac"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Steps in dependency order.
const (
	StepModules     = "modules"
	StepPermissions = "permissions"
	StepRoles       = "roles"
	StepPricing     = "pricing"
	StepUsers       = "users"
)

var AllSteps = []string{StepModules, StepPermissions, StepRoles, StepPricing, StepUsers}

const (
	AdminRole     = "admin"
	CandidateRole = "candidate"
)

var ErrUnknownStep = errors.New("unknown seed step")

type Options struct {
	// AdminEmail is seeded with the admin role in addition to fixture users.
	AdminEmail string
	// Password is given to every user created by the users step.
	Password string
}

// Report counts the rows written by each step.
type Report map[string]int

type Seeder struct {
	db      *gorm.DB
	log     *slog.Logger
	fixture *Fixture
	opts    Options
}

func New(db *gorm.DB, log *slog.Logger, fixture *Fixture, opts Options) *Seeder {
	return &Seeder{db: db, log: log, fixture: fixture, opts: opts}
}

// Run executes the named steps (all when none are given) in dependency
// order. Each step runs in its own transaction.
func (s *Seeder) Run(ctx context.Context, steps ...string) (Report, error) {
	if len(steps) == 0 {
		steps = AllSteps
	}
	wanted := map[string]bool{}
	for _, st := range steps {
		if !isStep(st) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownStep, st)
		}
		wanted[st] = true
	}

	report := Report{}
	for _, st := range AllSteps {
		if !wanted[st] {
			continue
		}
		var n int
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var err error
			n, err = s.runStep(tx, st)
			return err
		})
		if err != nil {
			return report, fmt.Errorf("seed %s: %w", st, err)
		}
		report[st] = n
		s.log.Info("Seed step complete", "step", st, "rows", n)
	}
	return report, nil
}

func isStep(name string) bool {
	for _, st := range AllSteps {
		if st == name {
			return true
		}
	}
	return false
}

func (s *Seeder) runStep(tx *gorm.DB, step string) (int, error) {
	switch step {
	case StepModules:
		return s.seedModules(tx)
	case StepPermissions:
		return s.seedPermissions(tx)
	case StepRoles:
		return s.seedRoles(tx)
	case StepPricing:
		return s.seedPricing(tx)
	case StepUsers:
		return s.seedUsers(tx)
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownStep, step)
}

func upsertOn(columns []string, updates ...string) clause.OnConflict {
	cols := make([]clause.Column, len(columns))
	for i, c := range columns {
		cols[i] = clause.Column{Name: c}
	}
	return clause.OnConflict{
		Columns:   cols,
		DoUpdates: clause.AssignmentColumns(append(updates, "updated_at")),
	}
}

func (s *Seeder) seedModules(tx *gorm.DB) (int, error) {
	for _, m := range s.fixture.Modules {
		row := models.Module{Name: m.Name, Description: m.Description}
		if err := tx.Clauses(upsertOn([]string{"name"}, "description")).Create(&row).Error; err != nil {
			return 0, fmt.Errorf("upsert module %s: %w", m.Name, err)
		}
	}
	return len(s.fixture.Modules), nil
}

func (s *Seeder) seedPermissions(tx *gorm.DB) (int, error) {
	moduleIDs, err := idsByName[models.Module](tx)
	if err != nil {
		return 0, err
	}

	n := 0
	for _, m := range s.fixture.Modules {
		moduleID, ok := moduleIDs[m.Name]
		if !ok {
			return n, fmt.Errorf("module %s not seeded", m.Name)
		}
		for _, action := range m.Actions {
			row := models.Permission{Name: PermissionName(m.Name, action), Action: action, ModuleID: moduleID}
			if err := tx.Clauses(upsertOn([]string{"name"}, "action", "module_id")).Create(&row).Error; err != nil {
				return n, fmt.Errorf("upsert permission %s: %w", row.Name, err)
			}
			n++
		}
	}
	return n, nil
}

// PermissionName builds the canonical "<module>:<action>" name.
func PermissionName(module, action string) string {
	return module + ":" + action
}

func (s *Seeder) seedRoles(tx *gorm.DB) (int, error) {
	var permissions []models.Permission
	if err := tx.Order("name").Find(&permissions).Error; err != nil {
		return 0, fmt.Errorf("load permissions: %w", err)
	}

	for _, r := range s.fixture.Roles {
		row := models.Role{Name: r.Name, Description: r.Description}
		if err := tx.Clauses(upsertOn([]string{"name"}, "description")).Create(&row).Error; err != nil {
			return 0, fmt.Errorf("upsert role %s: %w", r.Name, err)
		}
		var role models.Role
		if err := tx.Where("name = ?", r.Name).First(&role).Error; err != nil {
			return 0, fmt.Errorf("reload role %s: %w", r.Name, err)
		}

		granted := ExpandPermissions(r.Permissions, permissions)
		if err := tx.Model(&role).Association("Permissions").Replace(granted); err != nil {
			return 0, fmt.Errorf("link permissions of role %s: %w", r.Name, err)
		}
	}
	return len(s.fixture.Roles), nil
}

// ExpandPermissions resolves patterns against the known permissions. "*"
// matches everything and "module:*" every action of a module.
func ExpandPermissions(patterns []string, known []models.Permission) []models.Permission {
	var out []models.Permission
	for _, p := range known {
		for _, pattern := range patterns {
			if matchPermission(pattern, p.Name) {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

func matchPermission(pattern, name string) bool {
	if pattern == "*" || pattern == name {
		return true
	}
	if prefix, ok := strings.CutSuffix(pattern, ":*"); ok {
		return strings.HasPrefix(name, prefix+":")
	}
	return false
}

func (s *Seeder) seedPricing(tx *gorm.DB) (int, error) {
	moduleIDs, err := idsByName[models.Module](tx)
	if err != nil {
		return 0, err
	}

	n := 0
	for _, o := range s.fixture.Options {
		moduleID, ok := moduleIDs[o.Module]
		if !ok {
			return n, fmt.Errorf("option %s: module %s not seeded", o.Name, o.Module)
		}
		row := models.Option{Name: o.Name, Description: o.Description, ModuleID: moduleID}
		if err := tx.Clauses(upsertOn([]string{"name"}, "description", "module_id")).Create(&row).Error; err != nil {
			return n, fmt.Errorf("upsert option %s: %w", o.Name, err)
		}
		n++
	}

	optionIDs, err := idsByName[models.Option](tx)
	if err != nil {
		return n, err
	}

	for _, p := range s.fixture.Packs {
		row := models.Pack{
			Name:        p.Name,
			Description: p.Description,
			PriceCents:  p.PriceCents,
			Currency:    strings.ToLower(defaultString(p.Currency, "eur")),
			Interval:    defaultString(p.Interval, models.IntervalMonth),
			Active:      !p.Inactive,
			Position:    p.Position,
		}
		// Stripe IDs are owned by the pricing sync and never overwritten here.
		upsert := upsertOn([]string{"name"}, "description", "price_cents", "currency", "billing_interval", "active", "position")
		if err := tx.Clauses(upsert).Create(&row).Error; err != nil {
			return n, fmt.Errorf("upsert pack %s: %w", p.Name, err)
		}
		var pack models.Pack
		if err := tx.Where("name = ?", p.Name).First(&pack).Error; err != nil {
			return n, fmt.Errorf("reload pack %s: %w", p.Name, err)
		}
		n++

		keep := make([]uint, 0, len(p.Options))
		for _, po := range p.Options {
			optionID := optionIDs[po.Option]
			link := models.PackOption{PackID: pack.ID, OptionID: optionID, Quota: po.Quota}
			onConflict := clause.OnConflict{
				Columns:   []clause.Column{{Name: "pack_id"}, {Name: "option_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"quota"}),
			}
			if err := tx.Clauses(onConflict).Create(&link).Error; err != nil {
				return n, fmt.Errorf("upsert option %s of pack %s: %w", po.Option, p.Name, err)
			}
			keep = append(keep, optionID)
			n++
		}

		stale := tx.Where("pack_id = ?", pack.ID)
		if len(keep) > 0 {
			stale = stale.Where("option_id NOT IN ?", keep)
		}
		if err := stale.Delete(&models.PackOption{}).Error; err != nil {
			return n, fmt.Errorf("prune options of pack %s: %w", p.Name, err)
		}
	}
	return n, nil
}

func (s *Seeder) seedUsers(tx *gorm.DB) (int, error) {
	users := s.fixture.Users
	if s.opts.AdminEmail != "" {
		users = append([]UserFixture{{Email: s.opts.AdminEmail, FirstName: "Admin", Role: AdminRole}}, users...)
	}
	if len(users) == 0 {
		return 0, nil
	}
	if s.opts.Password == "" {
		return 0, errors.New("a seed password is required to create users")
	}

	roleIDs, err := idsByName[models.Role](tx)
	if err != nil {
		return 0, err
	}
	packIDs, err := idsByName[models.Pack](tx)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, u := range users {
		var count int64
		if err := tx.Unscoped().Model(&models.User{}).Where("email = ?", strings.ToLower(u.Email)).Count(&count).Error; err != nil {
			return created, fmt.Errorf("lookup user %s: %w", u.Email, err)
		}
		if count > 0 {
			s.log.Debug("User already present, skipping", "email", u.Email)
			continue
		}

		roleID, ok := roleIDs[u.Role]
		if !ok {
			return created, fmt.Errorf("user %s: role %s not seeded", u.Email, u.Role)
		}
		hash, err := rbac.HashPassword(s.opts.Password)
		if err != nil {
			return created, err
		}
		user := models.User{
			Email:        strings.ToLower(u.Email),
			PasswordHash: hash,
			FirstName:    u.FirstName,
			LastName:     u.LastName,
			Active:       true,
			RoleID:       roleID,
		}
		if u.Pack != "" {
			packID, ok := packIDs[u.Pack]
			if !ok {
				return created, fmt.Errorf("user %s: pack %s not seeded", u.Email, u.Pack)
			}
			user.PackID = &packID
		}
		if err := tx.Create(&user).Error; err != nil {
			return created, fmt.Errorf("create user %s: %w", u.Email, err)
		}
		if u.Role == CandidateRole {
			if err := tx.Create(&models.Candidate{UserID: user.ID, Skills: []string{}}).Error; err != nil {
				return created, fmt.Errorf("create candidate profile for %s: %w", u.Email, err)
			}
		}
		created++
	}
	return created, nil
}

type named interface {
	models.Module | models.Role | models.Option | models.Pack
}

// idsByName maps the name column of a reference table to its primary key.
func idsByName[T named](tx *gorm.DB) (map[string]uint, error) {
	var rows []struct {
		ID   uint
		Name string
	}
	var model T
	if err := tx.Model(&model).Select("id", "name").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load %T ids: %w", model, err)
	}
	out := make(map[string]uint, len(rows))
	for _, r := range rows {
		out[r.Name] = r.ID
	}
	return out, nil
}

func defaultString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
