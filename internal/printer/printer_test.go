package printer

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hitoshi/salesnav/internal/dashboard"
	"github.com/hitoshi/salesnav/internal/model"
)

func newPlain() (*Printer, *bytes.Buffer) {
	var buf bytes.Buffer
	return New(&buf, &buf, true), &buf
}

func TestError(t *testing.T) {
	t.Run("returns error with title", func(t *testing.T) {
		p, buf := newPlain()
		err := p.Error("Login failed", "Email or password is incorrect.", []string{"Check your credentials"})
		require.Error(t, err)
		require.Equal(t, "Login failed", err.Error())
		assert.Contains(t, buf.String(), "Email or password is incorrect.")
		assert.Contains(t, buf.String(), "  - Check your credentials")
	})

	t.Run("from api error", func(t *testing.T) {
		p, _ := newPlain()
		apiErr := model.NewUnauthenticatedError()
		err := p.APIError(apiErr)
		require.Equal(t, apiErr.Message, err.Error())
	})
}

func TestSuccessAndWarning_NoColor(t *testing.T) {
	p, buf := newPlain()
	p.Success("Logged in as %s", "Admin User")
	p.Warning("session expired")
	assert.Equal(t, "✓ Logged in as Admin User\n! session expired\n", buf.String())
}

func TestLeads_Table(t *testing.T) {
	p, buf := newPlain()
	appt := time.Date(2024, 3, 2, 14, 30, 0, 0, time.UTC)
	p.Leads([]model.Lead{
		{ID: "a1", BusinessName: "Joe's Pizza", City: "Austin", StoppedBy: true, AppointmentDateTime: &appt},
		{ID: "b2", BusinessName: "Bike Shop", Converted: true},
	})

	out := buf.String()
	assert.Contains(t, out, "BUSINESS")
	assert.Contains(t, out, "Joe's Pizza")
	assert.Contains(t, out, "2024-03-02 14:30")
	assert.Contains(t, out, "Bike Shop")
}

func TestEmptyCollections(t *testing.T) {
	p, buf := newPlain()
	p.Leads(nil)
	p.Clients(nil)
	p.Events(nil)
	p.Referrals(nil)
	p.Notifications(nil)

	out := buf.String()
	for _, want := range []string{"No leads yet.", "No clients yet.", "No events scheduled.", "No referrals yet.", "No notifications"} {
		assert.Contains(t, out, want)
	}
}

func TestNotifications_ShowPriority(t *testing.T) {
	p, buf := newPlain()
	p.Notifications([]model.Notification{
		{ID: "event-1", Message: "Upcoming appointment with Acme today", Priority: model.PriorityUrgent},
		{ID: "followup-2", Message: "Follow up needed for Joe's Pizza", Priority: model.PriorityHigh},
	})
	assert.Equal(t,
		"[URGENT] Upcoming appointment with Acme today\n[HIGH] Follow up needed for Joe's Pizza\n",
		buf.String())
}

func TestDashboard_Output(t *testing.T) {
	p, buf := newPlain()
	stats := dashboard.Stats{Timeframe: dashboard.TimeframeWeek, TotalLeads: 3, Revenue: 1500, WeeklyGoalProgress: 30}
	activity := []dashboard.Activity{{Title: "New lead: Joe's Pizza", Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)}}
	nav := dashboard.Navigation(model.RoleAdmin, dashboard.Badges{Leads: 3})

	p.Dashboard(stats, activity, nav)

	out := buf.String()
	assert.Contains(t, out, "Dashboard (week)")
	assert.Contains(t, out, "$1500.00")
	assert.Contains(t, out, "30%")
	assert.Contains(t, out, "2024-03-01  New lead: Joe's Pizza")
	assert.Contains(t, out, "Leads (3)")
	assert.Contains(t, out, "Settings")
}
