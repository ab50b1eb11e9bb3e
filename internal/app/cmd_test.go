package app

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hitoshi/salesnav/internal/model"
)

type runResult struct {
	stdout string
	stderr string
	err    error
}

func run(t *testing.T, args ...string) runResult {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := Run(&stdout, &stderr, append([]string{"--no-color", "--env-file", ""}, args...))
	return runResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func runJSON[T any](t *testing.T, args ...string) T {
	t.Helper()
	res := run(t, append([]string{"--json"}, args...)...)
	require.NoError(t, res.err, res.stderr)
	var v T
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &v), res.stdout)
	return v
}

func TestRoot_ShowsHelpWhenNoSubcommand(t *testing.T) {
	res := run(t)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Usage:")
	assert.Contains(t, res.stdout, "salesnav")
}

func TestRoot_RejectsUnknownFlags(t *testing.T) {
	res := run(t, "--goal", "x")
	assert.Error(t, res.err)
}

func TestCLI_MissingConfig(t *testing.T) {
	setTestEnv(t)
	t.Setenv("TOKEN_SECRET", "")

	res := run(t, "leads", "list")
	require.Error(t, res.err)
	assert.Contains(t, res.stderr, "Configuration error")
}

func TestCLI_RequiresLogin(t *testing.T) {
	setTestEnv(t)

	res := run(t, "leads", "list")
	require.Error(t, res.err)
	assert.Equal(t, model.NewUnauthenticatedError().Message, res.err.Error())

	res = run(t, "whoami")
	assert.Error(t, res.err)
}

func TestCLI_LoginFailure(t *testing.T) {
	setTestEnv(t)

	res := run(t, "login", "--email", "admin@visionarymedia.com", "--password", "nope")
	require.Error(t, res.err)
	assert.Equal(t, model.NewInvalidCredentialsError().Message, res.err.Error())
}

func TestCLI_SessionPersistsAcrossInvocations(t *testing.T) {
	setTestEnv(t)

	user := runJSON[model.User](t, "login", "--email", "admin@visionarymedia.com", "--password", "admin123")
	assert.Equal(t, "Admin User", user.Name)
	assert.Empty(t, user.Password)

	me := runJSON[model.User](t, "whoami")
	assert.Equal(t, "1", me.ID)

	res := run(t, "logout")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Logged out")

	assert.Error(t, run(t, "whoami").err)
}

func TestCLI_LeadFollowUpFlow(t *testing.T) {
	setTestEnv(t)
	require.NoError(t, run(t, "login", "--email", "sales@visionarymedia.com", "--password", "sales123").err)

	lead := runJSON[model.Lead](t, "leads", "add", "--business", "<i>Joe's Pizza</i>", "--city", "Austin", "--stopped-by")
	assert.Equal(t, "Joe's Pizza", lead.BusinessName)
	assert.True(t, lead.StoppedBy)

	notes := runJSON[[]model.Notification](t, "notifications")
	require.Len(t, notes, 1)
	assert.Equal(t, "Follow up needed for Joe's Pizza", notes[0].Message)

	updated := runJSON[model.Lead](t, "leads", "update", lead.ID, "--followed-up")
	assert.True(t, updated.FollowedUp)

	notes = runJSON[[]model.Notification](t, "notifications")
	assert.Empty(t, notes)

	res := run(t, "leads", "list")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Joe's Pizza")

	res = run(t, "leads", "update", "missing", "--converted")
	require.Error(t, res.err)
	assert.Equal(t, model.NewLeadNotFoundError("missing").Message, res.err.Error())

	assert.Error(t, run(t, "leads", "update", lead.ID).err, "no flags means nothing to update")
}

func TestCLI_ClientsEventsReferrals(t *testing.T) {
	setTestEnv(t)
	require.NoError(t, run(t, "login", "--email", "admin@visionarymedia.com", "--password", "admin123").err)

	client := runJSON[model.Client](t, "clients", "add", "--company", "Acme", "--package-value", "1500")
	assert.Equal(t, 1500.0, client.PackageValue)
	clients := runJSON[[]model.Client](t, "clients", "list")
	assert.Len(t, clients, 1)

	event := runJSON[model.Event](t, "events", "add", "--title", "Acme kickoff", "--date", "2030-01-15")
	assert.Equal(t, model.EventTypeMeeting, event.Type)
	events := runJSON[[]model.Event](t, "events", "list")
	assert.Len(t, events, 1)
	assert.Error(t, run(t, "events", "add", "--title", "Bad", "--date", "someday").err)

	ref := runJSON[model.Referral](t, "referrals", "add", "--candidate", "Jane Doe", "--email", "jane@example.com")
	assert.Equal(t, model.ReferralStatusPending, ref.Status)

	updated := runJSON[model.Referral](t, "referrals", "update", ref.ID, "--status", "Contract Signed", "--reward-paid")
	assert.Equal(t, model.ReferralStatusContractSigned, updated.Status)
	assert.True(t, updated.RewardPaid)

	assert.Error(t, run(t, "referrals", "update", ref.ID, "--status", "Fired").err)

	refs := runJSON[[]model.Referral](t, "referrals", "list")
	require.Len(t, refs, 1)
	assert.True(t, refs[0].RewardPaid)
}

func TestCLI_Dashboard(t *testing.T) {
	setTestEnv(t)
	require.NoError(t, run(t, "login", "--email", "admin@visionarymedia.com", "--password", "admin123").err)
	require.NoError(t, run(t, "leads", "add", "--business", "A", "--stopped-by").err)

	res := run(t, "dashboard", "--timeframe", "month")
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stdout, "Dashboard (month)")
	assert.Contains(t, res.stdout, "New lead: A")
	assert.Contains(t, res.stdout, "Settings")

	assert.Error(t, run(t, "dashboard", "--timeframe", "decade").err)
}

func TestCLI_Ephemeral(t *testing.T) {
	setTestEnv(t)
	require.NoError(t, run(t, "--ephemeral", "login", "--email", "admin@visionarymedia.com", "--password", "admin123").err)
	// 新しいメモリストアで起動するためセッションは残らない
	assert.Error(t, run(t, "--ephemeral", "whoami").err)
}

func TestCLI_MigrateUpAndDown(t *testing.T) {
	setTestEnv(t)

	res := run(t, "migrate")
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stdout, "Migrations applied")

	require.NoError(t, run(t, "migrate", "--down").err)
	require.NoError(t, run(t, "migrate").err)
}

func TestCLI_Healthcheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	assert.NoError(t, run(t, "healthcheck", "--url", srv.URL).err)
}
