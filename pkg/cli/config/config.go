package config

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/secmon-lab/auditflow/pkg/domain/interfaces"
	"github.com/secmon-lab/auditflow/pkg/domain/model"
	"github.com/secmon-lab/auditflow/pkg/usecase"
	"github.com/urfave/cli/v3"
)

// AppConfig holds the --config flag
type AppConfig struct {
	path string
}

func (a *AppConfig) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to the TOML application configuration",
			Sources:     cli.EnvVars("AUDITFLOW_CONFIG"),
			Destination: &a.path,
		},
	}
}

// Configure loads the configuration file, or returns defaults when no path
// is given
func (a *AppConfig) Configure() (*App, error) {
	if a.path == "" {
		app := &App{}
		app.applyDefaults()
		return app, nil
	}
	return LoadApp(a.path)
}

// App is the application configuration file
type App struct {
	ManagementRepresentativeRole string   `toml:"management_representative_role"`
	AuditorRole                  string   `toml:"auditor_role"`
	BaseURL                      string   `toml:"base_url"`
	DispatchConcurrency          int      `toml:"dispatch_concurrency"`
	Tenants                      []Tenant `toml:"tenant"`
}

// Tenant is a tenant with its directory seed for the memory backend
type Tenant struct {
	ID          string       `toml:"id"`
	Departments []Department `toml:"department"`
	Users       []User       `toml:"user"`
}

type Department struct {
	Name string `toml:"name"`
	Head string `toml:"head"`
}

type User struct {
	ID              string           `toml:"id"`
	Name            string           `toml:"name"`
	Email           string           `toml:"email"`
	SlackUserID     string           `toml:"slack_user_id"`
	Active          *bool            `toml:"active"`
	Roles           []string         `toml:"roles"`
	DepartmentRoles []DepartmentRole `toml:"department_role"`
}

type DepartmentRole struct {
	Department string `toml:"department"`
	Role       string `toml:"role"`
}

func (a App) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("mr_role", a.ManagementRepresentativeRole),
		slog.String("auditor_role", a.AuditorRole),
		slog.String("base_url", a.BaseURL),
		slog.Int("dispatch_concurrency", a.DispatchConcurrency),
		slog.Any("tenants", a.TenantIDs()),
	)
}

func (a *App) applyDefaults() {
	if a.ManagementRepresentativeRole == "" {
		a.ManagementRepresentativeRole = usecase.DefaultMRRole
	}
	if a.AuditorRole == "" {
		a.AuditorRole = usecase.DefaultAuditorRole
	}
	if a.DispatchConcurrency <= 0 {
		a.DispatchConcurrency = usecase.DefaultDispatchConcurrency
	}
}

// ToModel converts the seed entry to a directory user. Users are active
// unless active = false is given.
func (u User) ToModel() *model.User {
	active := true
	if u.Active != nil {
		active = *u.Active
	}

	user := &model.User{
		ID:          model.UserID(u.ID),
		Name:        u.Name,
		Email:       u.Email,
		SlackUserID: u.SlackUserID,
		Active:      active,
		Roles:       u.Roles,
	}
	for _, dr := range u.DepartmentRoles {
		user.DepartmentRoles = append(user.DepartmentRoles, model.DepartmentRole{
			Department: dr.Department,
			Role:       dr.Role,
		})
	}
	return user
}

// Validate checks required names and ID uniqueness. Heads may refer to
// users outside the seed; such departments surface as FAILED dispatches.
func (a *App) Validate() error {
	tenantIDs := make(map[string]bool)
	for _, t := range a.Tenants {
		if strings.TrimSpace(t.ID) == "" {
			return goerr.Wrap(ErrMissingName, "tenant id is required")
		}
		if tenantIDs[t.ID] {
			return goerr.Wrap(ErrDuplicateID, "duplicate tenant", goerr.V(TenantIDKey, t.ID))
		}
		tenantIDs[t.ID] = true

		departments := make(map[string]bool)
		for _, d := range t.Departments {
			if strings.TrimSpace(d.Name) == "" {
				return goerr.Wrap(ErrMissingName, "department name is required", goerr.V(TenantIDKey, t.ID))
			}
			if departments[d.Name] {
				return goerr.Wrap(ErrDuplicateID, "duplicate department",
					goerr.V(TenantIDKey, t.ID), goerr.V(DepartmentKey, d.Name))
			}
			departments[d.Name] = true
		}

		users := make(map[string]bool)
		for _, u := range t.Users {
			if strings.TrimSpace(u.ID) == "" {
				return goerr.Wrap(ErrMissingName, "user id is required", goerr.V(TenantIDKey, t.ID))
			}
			if users[u.ID] {
				return goerr.Wrap(ErrDuplicateID, "duplicate user",
					goerr.V(TenantIDKey, t.ID), goerr.V(UserIDKey, u.ID))
			}
			users[u.ID] = true

			for _, dr := range u.DepartmentRoles {
				if dr.Role == "" || dr.Department == "" {
					return goerr.Wrap(ErrInvalidConfig, "department_role needs department and role",
						goerr.V(TenantIDKey, t.ID), goerr.V(UserIDKey, u.ID))
				}
			}
		}
	}

	if a.DispatchConcurrency < 0 {
		return goerr.Wrap(ErrInvalidConfig, "dispatch_concurrency must not be negative")
	}
	return nil
}

// TenantIDs returns the configured tenant IDs in file order
func (a *App) TenantIDs() []string {
	ids := make([]string, len(a.Tenants))
	for i, t := range a.Tenants {
		ids[i] = t.ID
	}
	return ids
}

// Seed writes the configured users and departments into the directory
func (a *App) Seed(ctx context.Context, dir interfaces.DirectoryRepository) error {
	for _, t := range a.Tenants {
		for _, u := range t.Users {
			if err := dir.PutUser(ctx, t.ID, u.ToModel()); err != nil {
				return goerr.Wrap(err, "failed to seed user", goerr.V(TenantIDKey, t.ID), goerr.V(UserIDKey, u.ID))
			}
		}
		for _, d := range t.Departments {
			dept := &model.Department{Name: d.Name, HeadID: model.UserID(d.Head)}
			if err := dir.PutDepartment(ctx, t.ID, dept); err != nil {
				return goerr.Wrap(err, "failed to seed department",
					goerr.V(TenantIDKey, t.ID), goerr.V(DepartmentKey, d.Name))
			}
		}
	}
	return nil
}

// LoadApp loads the application configuration from a TOML file
func LoadApp(path string) (*App, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V(ConfigPathKey, path))
	}

	var app App
	if err := toml.Unmarshal(data, &app); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, "failed to parse TOML config",
			goerr.V(ConfigPathKey, path), goerr.V("cause", err.Error()))
	}

	if err := app.Validate(); err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V(ConfigPathKey, path))
	}
	app.applyDefaults()

	return &app, nil
}
