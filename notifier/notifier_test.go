package notifier

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/blogem/expenseflow/models"
)

type failingNotifier struct{ err error }

func (f failingNotifier) Notify(ctx context.Context, msg Message) error { return f.err }

func testUsers() (*models.User, *models.User) {
	managerID := int64(1)
	manager := &models.User{ID: 1, FirstName: "Mia", LastName: "Manager", Email: "mia@example.com", Role: models.RoleManager}
	owner := &models.User{ID: 2, FirstName: "Eve", LastName: "Employee", Email: "eve@example.com", Role: models.RoleEmployee, ManagerID: &managerID}
	return manager, owner
}

func TestTemplates(t *testing.T) {
	manager, owner := testUsers()
	expense := &models.Expense{ID: 7, Amount: decimal.RequireFromString("12.5"), Category: models.CategoryMeals, Status: models.StatusPending}

	msg := ExpenseSubmitted(manager, owner, expense)
	assert.Equal(t, "mia@example.com", msg.To)
	assert.Contains(t, msg.Text, "#7 from Eve Employee for $12.50 (meals)")
	assert.Contains(t, msg.HTML, "<strong>Eve Employee</strong>")

	expense.Status = models.StatusRejected
	msg = ExpenseStatusChanged(owner, expense, "<b>missing receipt</b>")
	assert.Equal(t, "eve@example.com", msg.To)
	assert.Equal(t, "Expense REJECTED: Your expense request has been rejected", msg.Subject)
	assert.Contains(t, msg.Text, "Comment: <b>missing receipt</b>")
	assert.Contains(t, msg.HTML, "&lt;b&gt;missing receipt&lt;/b&gt;")

	expense.Status = models.StatusApproved
	msg = ExpenseStatusChanged(owner, expense, "")
	assert.NotContains(t, msg.Text, "Comment:")
}

func TestSMTPNotifier(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotBody []byte

	n := NewSMTPNotifier(SMTPConfig{Host: "mail.local", Port: 2525, From: `"Expenses" <noreply@example.com>`}, zap.NewNop()).
		WithSendFunc(func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
			gotAddr, gotFrom, gotTo, gotBody = addr, from, to, msg
			return nil
		})

	err := n.Notify(context.Background(), Message{To: "eve@example.com", Subject: "Hi", Text: "plain", HTML: "<p>html</p>"})
	require.NoError(t, err)
	assert.Equal(t, "mail.local:2525", gotAddr)
	assert.Equal(t, "noreply@example.com", gotFrom)
	assert.Equal(t, []string{"eve@example.com"}, gotTo)

	body := string(gotBody)
	assert.True(t, strings.HasPrefix(body, `From: "Expenses" <noreply@example.com>`))
	assert.Contains(t, body, "multipart/alternative")
	assert.Contains(t, body, "plain")
	assert.Contains(t, body, "<p>html</p>")

	assert.Error(t, n.Notify(context.Background(), Message{Subject: "no recipient"}))
}

func TestMulti(t *testing.T) {
	boom := errors.New("boom")
	m := Multi{NewLogNotifier(zap.NewNop()), failingNotifier{err: boom}}

	err := m.Notify(context.Background(), Message{To: "x@example.com"})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, Multi{NewLogNotifier(zap.NewNop())}.Notify(context.Background(), Message{}))
}
