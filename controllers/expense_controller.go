package controllers

import (
	"errors"
	"io"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/blogem/expenseflow/models"
	"github.com/blogem/expenseflow/services"
	"github.com/blogem/expenseflow/storage"
)

// multipart overhead allowed on top of the receipt itself
const formOverhead = 1 << 20

// ExpenseController handles expense requests
type ExpenseController struct {
	services       *services.Services
	maxReceiptSize int64
	logger         *zap.Logger
}

// NewExpenseController creates a new expense controller
func NewExpenseController(services *services.Services, maxReceiptSize int64, logger *zap.Logger) *ExpenseController {
	if maxReceiptSize <= 0 {
		maxReceiptSize = storage.DefaultMaxReceiptSize
	}
	return &ExpenseController{
		services:       services,
		maxReceiptSize: maxReceiptSize,
		logger:         logger,
	}
}

// Create handles POST /api/expenses (multipart: amount, category, description, receipt)
func (c *ExpenseController) Create(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		writeError(w, r, c.logger, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, c.maxReceiptSize+formOverhead)
	if err := r.ParseMultipartForm(c.maxReceiptSize + formOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, c.logger, models.ValidationErrors{}.Add("receipt", "receipt is too large"))
			return
		}
		writeError(w, r, c.logger, models.ValidationErrors{}.Add("body", "request must be multipart/form-data"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	var errs models.ValidationErrors
	form := &models.ExpenseForm{
		Category:    models.Category(strings.ToLower(strings.TrimSpace(r.FormValue("category")))),
		Description: r.FormValue("description"),
	}
	if raw := strings.TrimSpace(r.FormValue("amount")); raw != "" {
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			errs = errs.Add("amount", "amount must be a number")
		}
		form.Amount = amount
	}

	var receipt []byte
	file, _, err := r.FormFile("receipt")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		// reported by the service together with the other fields
	case err != nil:
		writeError(w, r, c.logger, err)
		return
	default:
		defer file.Close()
		receipt, err = io.ReadAll(io.LimitReader(file, c.maxReceiptSize+1))
		if err != nil {
			writeError(w, r, c.logger, err)
			return
		}
	}

	if errs.HasErrors() {
		writeError(w, r, c.logger, errs)
		return
	}

	expense, err := c.services.Expenses.Create(r.Context(), user, form, receipt)
	if err != nil {
		writeError(w, r, c.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, expense)
}

// Mine handles GET /api/expenses/mine
func (c *ExpenseController) Mine(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		writeError(w, r, c.logger, err)
		return
	}

	expenses, err := c.services.Expenses.ListMine(r.Context(), user)
	if err != nil {
		writeError(w, r, c.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, expenses)
}

// PendingApprovals handles GET /api/expenses/pending-approvals
func (c *ExpenseController) PendingApprovals(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		writeError(w, r, c.logger, err)
		return
	}

	expenses, err := c.services.Expenses.PendingApprovals(r.Context(), user)
	if err != nil {
		writeError(w, r, c.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, expenses)
}

// Stats handles GET /api/expenses/stats
func (c *ExpenseController) Stats(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		writeError(w, r, c.logger, err)
		return
	}

	stats, err := c.services.Expenses.Stats(r.Context(), user)
	if err != nil {
		writeError(w, r, c.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Search handles GET /api/expenses/search?q=
func (c *ExpenseController) Search(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		writeError(w, r, c.logger, err)
		return
	}

	expenses, err := c.services.Expenses.Search(r.Context(), user, r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, r, c.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, expenses)
}

// Get handles GET /api/expenses/{id}
func (c *ExpenseController) Get(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		writeError(w, r, c.logger, err)
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, c.logger, err)
		return
	}

	detail, err := c.services.Expenses.Get(r.Context(), user, id)
	if err != nil {
		writeError(w, r, c.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// UpdateStatus handles PATCH /api/expenses/{id}/status
func (c *ExpenseController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		writeError(w, r, c.logger, err)
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, c.logger, err)
		return
	}

	var form models.StatusForm
	if err := decodeJSON(w, r, &form); err != nil {
		writeError(w, r, c.logger, err)
		return
	}

	expense, err := c.services.Expenses.Transition(r.Context(), user, id, &form)
	if err != nil {
		writeError(w, r, c.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, expense)
}

// Receipt handles GET /api/expenses/{id}/receipt
func (c *ExpenseController) Receipt(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		writeError(w, r, c.logger, err)
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, c.logger, err)
		return
	}

	receipt, err := c.services.Expenses.Receipt(r.Context(), user, id)
	if err != nil {
		writeError(w, r, c.logger, err)
		return
	}
	defer receipt.Body.Close()

	w.Header().Set("Content-Type", receipt.ContentType)
	w.Header().Set("Content-Disposition", `inline; filename="receipt-`+strconv.FormatInt(id, 10)+path.Ext(receipt.Key)+`"`)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	if _, err := io.Copy(w, receipt.Body); err != nil {
		c.logger.Warn("Failed to stream receipt",
			zap.Int64("expense_id", id),
			zap.Error(err))
	}
}
