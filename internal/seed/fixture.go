package seed

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

//go:embed fixtures/reference.yaml
var defaultFixture []byte

type Fixture struct {
	Modules []ModuleFixture `yaml:"modules"`
	Roles   []RoleFixture   `yaml:"roles"`
	Options []OptionFixture `yaml:"options"`
	Packs   []PackFixture   `yaml:"packs"`
	Users   []UserFixture   `yaml:"users"`
}

type ModuleFixture struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Actions     []string `yaml:"actions"`
}

type RoleFixture struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Permissions []string `yaml:"permissions"`
}

type OptionFixture struct {
	Name        string `yaml:"name"`
	Module      string `yaml:"module"`
	Description string `yaml:"description"`
}

type PackFixture struct {
	Name        string              `yaml:"name"`
	Description string              `yaml:"description"`
	PriceCents  int64               `yaml:"price_cents"`
	Currency    string              `yaml:"currency"`
	Interval    string              `yaml:"interval"`
	Position    int                 `yaml:"position"`
	Inactive    bool                `yaml:"inactive"`
	Options     []PackOptionFixture `yaml:"options"`
}

type PackOptionFixture struct {
	Option string `yaml:"option"`
	Quota  int    `yaml:"quota"`
}

type UserFixture struct {
	Email     string `yaml:"email"`
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
	Role      string `yaml:"role"`
	Pack      string `yaml:"pack"`
}

// DefaultFixture returns the reference data compiled into the binary.
func DefaultFixture() (*Fixture, error) {
	return ParseFixture(defaultFixture)
}

// LoadFixture reads a fixture file, or the embedded one when path is empty.
func LoadFixture(path string) (*Fixture, error) {
	if path == "" {
		return DefaultFixture()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	return ParseFixture(data)
}

func ParseFixture(data []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks cross references between fixture sections.
func (f *Fixture) Validate() error {
	var errs []error

	modules := map[string]bool{}
	for _, m := range f.Modules {
		if m.Name == "" {
			errs = append(errs, errors.New("module without name"))
		}
		modules[m.Name] = true
	}

	roles := map[string]bool{}
	for _, r := range f.Roles {
		roles[r.Name] = true
	}

	options := map[string]bool{}
	for _, o := range f.Options {
		if !modules[o.Module] {
			errs = append(errs, fmt.Errorf("option %q references unknown module %q", o.Name, o.Module))
		}
		options[o.Name] = true
	}

	packs := map[string]bool{}
	for _, p := range f.Packs {
		packs[p.Name] = true
		if p.PriceCents < 0 {
			errs = append(errs, fmt.Errorf("pack %q has a negative price", p.Name))
		}
		switch p.Interval {
		case "", "month", "year", "one_time":
		default:
			errs = append(errs, fmt.Errorf("pack %q has unknown interval %q", p.Name, p.Interval))
		}
		for _, po := range p.Options {
			if !options[po.Option] {
				errs = append(errs, fmt.Errorf("pack %q references unknown option %q", p.Name, po.Option))
			}
		}
	}

	for _, u := range f.Users {
		if !roles[u.Role] {
			errs = append(errs, fmt.Errorf("user %q references unknown role %q", u.Email, u.Role))
		}
		if u.Pack != "" && !packs[u.Pack] {
			errs = append(errs, fmt.Errorf("user %q references unknown pack %q", u.Email, u.Pack))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid fixture: %w", errors.Join(errs...))
	}
	return nil
}
