package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/auditflow/pkg/cli/config"
	"github.com/secmon-lab/auditflow/pkg/domain/model"
	"github.com/secmon-lab/auditflow/pkg/repository/memory"
	"github.com/secmon-lab/auditflow/pkg/usecase"
)

const sampleConfig = `
management_representative_role = "quality_mr"
auditor_role = "internal_auditor"
base_url = "https://auditflow.example.com"
dispatch_concurrency = 4

[[tenant]]
id = "acme"

  [[tenant.department]]
  name = "Production"
  head = "head-1"

  [[tenant.department]]
  name = "Logistics"

  [[tenant.user]]
  id = "head-1"
  name = "Hana Head"
  email = "hana@example.com"
  slack_user_id = "U0001"

  [[tenant.user]]
  id = "mr-1"
  name = "Mika MR"

    [[tenant.user.department_role]]
    department = "Quality"
    role = "quality_mr"

  [[tenant.user]]
  id = "former-1"
  name = "Former Staff"
  active = false
  roles = ["quality_mr"]
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "auditflow.toml")
	gt.NoError(t, os.WriteFile(path, []byte(content), 0o600)).Required()
	return path
}

func TestLoadApp(t *testing.T) {
	app, err := config.LoadApp(writeConfig(t, sampleConfig))
	gt.NoError(t, err).Required()

	gt.S(t, app.ManagementRepresentativeRole).Equal("quality_mr")
	gt.S(t, app.AuditorRole).Equal("internal_auditor")
	gt.S(t, app.BaseURL).Equal("https://auditflow.example.com")
	gt.Number(t, app.DispatchConcurrency).Equal(4)
	gt.V(t, app.TenantIDs()).Equal([]string{"acme"})
	gt.A(t, app.Tenants[0].Departments).Length(2)
	gt.A(t, app.Tenants[0].Users).Length(3)
}

func TestLoadApp_Defaults(t *testing.T) {
	app, err := config.LoadApp(writeConfig(t, `base_url = "http://localhost:8080"`))
	gt.NoError(t, err).Required()
	gt.S(t, app.ManagementRepresentativeRole).Equal(usecase.DefaultMRRole)
	gt.S(t, app.AuditorRole).Equal(usecase.DefaultAuditorRole)
	gt.Number(t, app.DispatchConcurrency).Equal(usecase.DefaultDispatchConcurrency)
}

func TestLoadApp_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{
			name:    "broken toml",
			content: `[[tenant]`,
			wantErr: config.ErrInvalidConfig,
		},
		{
			name:    "tenant without id",
			content: "[[tenant]]\nid = \"\"\n",
			wantErr: config.ErrMissingName,
		},
		{
			name:    "duplicate tenant",
			content: "[[tenant]]\nid = \"acme\"\n[[tenant]]\nid = \"acme\"\n",
			wantErr: config.ErrDuplicateID,
		},
		{
			name: "duplicate department",
			content: `
[[tenant]]
id = "acme"
  [[tenant.department]]
  name = "Production"
  [[tenant.department]]
  name = "Production"
`,
			wantErr: config.ErrDuplicateID,
		},
		{
			name: "duplicate user",
			content: `
[[tenant]]
id = "acme"
  [[tenant.user]]
  id = "u-1"
  [[tenant.user]]
  id = "u-1"
`,
			wantErr: config.ErrDuplicateID,
		},
		{
			name: "incomplete department role",
			content: `
[[tenant]]
id = "acme"
  [[tenant.user]]
  id = "u-1"
    [[tenant.user.department_role]]
    role = "quality_mr"
`,
			wantErr: config.ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.LoadApp(writeConfig(t, tt.content))
			gt.Error(t, err).Is(tt.wantErr)
		})
	}
}

func TestLoadApp_MissingFile(t *testing.T) {
	_, err := config.LoadApp(filepath.Join(t.TempDir(), "missing.toml"))
	gt.Error(t, err)
}

func TestApp_Seed(t *testing.T) {
	ctx := context.Background()
	app, err := config.LoadApp(writeConfig(t, sampleConfig))
	gt.NoError(t, err).Required()

	repo := memory.New()
	gt.NoError(t, app.Seed(ctx, repo.Directory())).Required()

	head, err := repo.Directory().GetUser(ctx, "acme", "head-1")
	gt.NoError(t, err).Required()
	gt.Value(t, head).NotNil().Required()
	gt.B(t, head.Active).True()
	gt.S(t, head.SlackUserID).Equal("U0001")

	former, err := repo.Directory().GetUser(ctx, "acme", "former-1")
	gt.NoError(t, err).Required()
	gt.B(t, former.Active).False()

	dept, err := repo.Directory().GetDepartment(ctx, "acme", "Production")
	gt.NoError(t, err).Required()
	gt.Value(t, dept.HeadID).Equal(model.UserID("head-1"))

	mrs, err := repo.Directory().ListUsersByRole(ctx, "acme", "quality_mr")
	gt.NoError(t, err).Required()
	gt.A(t, mrs).Length(2)

	uc := usecase.New(repo, usecase.WithMRRole(app.ManagementRepresentativeRole))
	finding, err := uc.Finding.CreateFinding(ctx, "acme", usecase.FindingInput{Department: "Production", Title: "Spill"}, "head-1")
	gt.NoError(t, err).Required()
	result, err := uc.Finding.CategorizeFinding(ctx, "acme", finding.ID, "IMPROVEMENT", "head-1")
	gt.NoError(t, err).Required()

	summary, err := uc.CAPA.NotifyManagementRepresentative(ctx, "acme", result.CAPA.ID, "", "head-1")
	gt.NoError(t, err).Required()
	gt.Number(t, summary.Total).Equal(1)
}

func TestAppConfig_DefaultsWithoutFile(t *testing.T) {
	var cfg config.AppConfig
	app, err := cfg.Configure()
	gt.NoError(t, err).Required()
	gt.S(t, app.ManagementRepresentativeRole).Equal(usecase.DefaultMRRole)
	gt.A(t, app.Tenants).Length(0)
}
