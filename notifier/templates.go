package notifier

import (
	"bytes"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"github.com/blogem/expenseflow/models"
)

const signature = "Please log in to ExpenseFlow to view details.\n\nThank you,\nExpenseFlow Team\n"

var (
	submittedText = texttemplate.Must(texttemplate.New("submitted").Parse(
		"Hello {{.Recipient}},\n\n" +
			"A new expense request #{{.ID}} from {{.Employee}} for ${{.Amount}} ({{.Category}}) requires your approval.\n\n" +
			signature))

	submittedHTML = htmltemplate.Must(htmltemplate.New("submitted").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
<h2>New Expense Requires Your Approval</h2>
<p>Hello {{.Recipient}},</p>
<p>A new expense request <strong>#{{.ID}}</strong> from <strong>{{.Employee}}</strong> for <strong>${{.Amount}}</strong> ({{.Category}}) requires your approval.</p>
<p>Please log in to ExpenseFlow to review this request.</p>
<p>Thank you,<br>ExpenseFlow Team</p>
</div>`))

	statusText = texttemplate.Must(texttemplate.New("status").Parse(
		"Hello {{.Recipient}},\n\n" +
			"Your expense request #{{.ID}} for ${{.Amount}} ({{.Category}}) has been {{.Status}}.\n" +
			"{{if .Comment}}\nComment: {{.Comment}}\n{{end}}\n" +
			signature))

	statusHTML = htmltemplate.Must(htmltemplate.New("status").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
<h2>Expense {{.StatusUpper}}</h2>
<p>Hello {{.Recipient}},</p>
<p>Your expense request <strong>#{{.ID}}</strong> for <strong>${{.Amount}}</strong> ({{.Category}}) has been <strong>{{.Status}}</strong>.</p>
{{if .Comment}}<p><strong>Comment:</strong> {{.Comment}}</p>{{end}}
<p>Please log in to ExpenseFlow to view details.</p>
<p>Thank you,<br>ExpenseFlow Team</p>
</div>`))
)

type templateData struct {
	Recipient   string
	Employee    string
	ID          int64
	Amount      string
	Category    models.Category
	Status      models.Status
	StatusUpper string
	Comment     string
}

// ExpenseSubmitted tells a manager that one of their reports filed an expense
func ExpenseSubmitted(manager, owner *models.User, expense *models.Expense) Message {
	data := templateData{
		Recipient: manager.FullName(),
		Employee:  owner.FullName(),
		ID:        expense.ID,
		Amount:    expense.Amount.StringFixed(2),
		Category:  expense.Category,
	}
	return Message{
		To:      manager.Email,
		Subject: "New Expense Requires Your Approval",
		Text:    executeText(submittedText, data),
		HTML:    executeHTML(submittedHTML, data),
	}
}

// ExpenseStatusChanged tells an owner that their expense was approved or rejected
func ExpenseStatusChanged(owner *models.User, expense *models.Expense, comment string) Message {
	upper := strings.ToUpper(string(expense.Status))
	data := templateData{
		Recipient:   owner.FullName(),
		ID:          expense.ID,
		Amount:      expense.Amount.StringFixed(2),
		Category:    expense.Category,
		Status:      expense.Status,
		StatusUpper: upper,
		Comment:     strings.TrimSpace(comment),
	}
	return Message{
		To:      owner.Email,
		Subject: "Expense " + upper + ": Your expense request has been " + string(expense.Status),
		Text:    executeText(statusText, data),
		HTML:    executeHTML(statusHTML, data),
	}
}

// The templates are fixed and the data is plain strings, so execution cannot fail.
func executeText(t *texttemplate.Template, data templateData) string {
	var buf bytes.Buffer
	_ = t.Execute(&buf, data)
	return buf.String()
}

func executeHTML(t *htmltemplate.Template, data templateData) string {
	var buf bytes.Buffer
	_ = t.Execute(&buf, data)
	return buf.String()
}
