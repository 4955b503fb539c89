package main

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/blogem/expenseflow/authenticator"
	"github.com/blogem/expenseflow/controllers"
	"github.com/blogem/expenseflow/database"
	"github.com/blogem/expenseflow/metrics"
	"github.com/blogem/expenseflow/models"
	"github.com/blogem/expenseflow/notifier"
	"github.com/blogem/expenseflow/repositories"
	"github.com/blogem/expenseflow/services"
	"github.com/blogem/expenseflow/storage"
)

func newTestApp(t *testing.T) *application {
	t.Helper()
	ctx := context.Background()
	logger := zap.NewNop()

	db, err := database.Initialize(ctx, database.Config{
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	blobs, err := storage.NewLocalBlobStore(filepath.Join(t.TempDir(), "receipts"), storage.DefaultMaxReceiptSize, logger)
	require.NoError(t, err)

	m := metrics.New()
	repos := repositories.NewRepositories(db)
	return &application{
		logger: logger,
		db:     db,
		repos:  repos,
		services: services.NewServices(repos, services.Dependencies{
			Blobs:    blobs,
			Notifier: notifier.NewLogNotifier(logger),
			Tokens:   authenticator.NewTokenIssuer("router-test-secret-key", time.Hour),
			Metrics:  m,
			Logger:   logger,
		}),
		metrics: m,
	}
}

func newTestRouter(t *testing.T, app *application) *chi.Mux {
	t.Helper()
	ctrl := controllers.NewControllers(app.services, nil, storage.DefaultMaxReceiptSize, app.logger)
	r, err := setupRouter(ctrl, app.services.Users, app.metrics, app.logger, false)
	require.NoError(t, err)
	return r
}

type client struct {
	t      *testing.T
	router http.Handler
	token  string
}

func (c *client) do(req *http.Request) *httptest.ResponseRecorder {
	c.t.Helper()
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	rec := httptest.NewRecorder()
	c.router.ServeHTTP(rec, req)
	return rec
}

func (c *client) json(method, path string, body interface{}) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *client) login(username string) {
	c.t.Helper()
	c.token = ""
	rec := c.json(http.MethodPost, "/api/auth/login", map[string]string{"username": username, "password": seedPassword})
	require.Equal(c.t, http.StatusOK, rec.Code, rec.Body.String())
	var result services.AuthResult
	require.NoError(c.t, json.Unmarshal(rec.Body.Bytes(), &result))
	c.token = result.Token
}

func (c *client) submitExpense(amount, category string, receipt []byte) *httptest.ResponseRecorder {
	c.t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	require.NoError(c.t, w.WriteField("amount", amount))
	require.NoError(c.t, w.WriteField("category", category))
	require.NoError(c.t, w.WriteField("description", "Airport taxi"))
	if receipt != nil {
		part, err := w.CreateFormFile("receipt", "taxi.png")
		require.NoError(c.t, err)
		_, err = part.Write(receipt)
		require.NoError(c.t, err)
	}
	require.NoError(c.t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/expenses", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return c.do(req)
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 1, 1))))
	return buf.Bytes()
}

func TestSeed(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	require.NoError(t, seed(ctx, app))
	count, err := app.repos.Users.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	// Seeding twice is a no-op
	require.NoError(t, seed(ctx, app))
	count, err = app.repos.Users.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestAPI(t *testing.T) {
	app := newTestApp(t)
	require.NoError(t, seed(context.Background(), app))
	c := &client{t: t, router: newTestRouter(t, app)}

	t.Run("Health is public", func(t *testing.T) {
		rec := c.json(http.MethodGet, "/api/health", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("Protected routes need a token", func(t *testing.T) {
		c.token = ""
		rec := c.json(http.MethodGet, "/api/expenses/mine", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Bad credentials are unauthorized", func(t *testing.T) {
		c.token = ""
		rec := c.json(http.MethodPost, "/api/auth/login", map[string]string{"username": "employee", "password": "wrong"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	var expense models.Expense
	t.Run("Employee submits an expense", func(t *testing.T) {
		c.login("employee")

		rec := c.submitExpense("64.30", "travel", pngBytes(t))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &expense))
		assert.Equal(t, models.StatusPending, expense.Status)

		rec = c.json(http.MethodGet, "/api/auth/me", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.NotContains(t, rec.Body.String(), "password")
	})

	t.Run("Invalid submissions report every field", func(t *testing.T) {
		c.login("employee")

		rec := c.submitExpense("-1", "snacks", []byte("%PDF-1.4"))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		var body struct {
			Fields []models.ValidationError `json:"fields"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		fields := map[string]bool{}
		for _, f := range body.Fields {
			fields[f.Field] = true
		}
		assert.True(t, fields["amount"])
		assert.True(t, fields["category"])
		assert.True(t, fields["receipt"])
	})

	t.Run("Employee cannot approve or list approvals", func(t *testing.T) {
		c.login("employee")

		rec := c.json(http.MethodPatch, "/api/expenses/"+itoa(expense.ID)+"/status", models.StatusForm{Status: models.StatusApproved})
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = c.json(http.MethodGet, "/api/expenses/pending-approvals", nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("Manager approves once", func(t *testing.T) {
		c.login("manager")

		rec := c.json(http.MethodGet, "/api/expenses/pending-approvals", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Airport taxi")

		rec = c.json(http.MethodPatch, "/api/expenses/"+itoa(expense.ID)+"/status", models.StatusForm{Status: models.StatusApproved})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		rec = c.json(http.MethodPatch, "/api/expenses/"+itoa(expense.ID)+"/status", models.StatusForm{Status: models.StatusRejected, Comment: "late"})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("Receipt download is gated", func(t *testing.T) {
		c.login("employee")
		req := httptest.NewRequest(http.MethodGet, "/api/expenses/"+itoa(expense.ID)+"/receipt", nil)
		rec := c.do(req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
		assert.Equal(t, pngBytes(t), rec.Body.Bytes())

		rec = c.json(http.MethodGet, "/api/expenses/999999", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)

		rec = c.json(http.MethodGet, "/api/expenses/abc", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Manager exports the team as csv", func(t *testing.T) {
		c.login("manager")
		req := httptest.NewRequest(http.MethodGet, "/api/reports/export?status=approved&format=csv", nil)
		rec := c.do(req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Disposition"), `attachment; filename="expenses-approved-team-`))
		assert.Contains(t, rec.Body.String(), "64.30,travel,Airport taxi,approved,Eve Employee")

		rec = c.json(http.MethodGet, "/api/reports/export?format=pdf", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Activity and users", func(t *testing.T) {
		c.login("admin")

		rec := c.json(http.MethodGet, "/api/reports/activity?limit=5", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var entries []models.AuditLogView
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
		assert.Len(t, entries, 5)

		rec = c.json(http.MethodGet, "/api/users/by-role/manager", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"username":"manager"`)

		rec = c.json(http.MethodPost, "/api/users", models.RegisterForm{
			Username: "employee", Password: "secret123", Email: "dupe@example.com", FirstName: "D", LastName: "Upe",
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("Metrics are exposed", func(t *testing.T) {
		c.token = ""
		rec := c.json(http.MethodGet, "/metrics", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "expenseflow_expenses_created_total")
	})
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
