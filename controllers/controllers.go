package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/blogem/expenseflow/authenticator"
	"github.com/blogem/expenseflow/models"
	"github.com/blogem/expenseflow/services"
	"github.com/blogem/expenseflow/userctx"
)

// maxJSONBody bounds every JSON request body
const maxJSONBody = 1 << 20

// errorResponse is the body of every failed request
type errorResponse struct {
	Error  string                   `json:"error"`
	Fields []models.ValidationError `json:"fields,omitempty"`
}

// writeJSON writes data as a JSON response with the given status
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError maps an error to its HTTP status. Unclassified errors are
// logged and answered with a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	var verrs models.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "validation failed", Fields: verrs})
	case errors.Is(err, models.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
	case errors.Is(err, models.ErrForbidden):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "you do not have permission to perform this action"})
	case errors.Is(err, models.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, models.ErrInvalidState), errors.Is(err, models.ErrConflict):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	default:
		logger.Error("Request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("user", userctx.GetUsername(r.Context())),
			zap.String("request_id", userctx.GetRequestID(r.Context())),
			zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

// decodeJSON reads a JSON body into dst
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return models.ValidationErrors{}.Add("body", "request body must be valid JSON")
	}
	return nil
}

// currentUser returns the user stored by the auth middleware
func currentUser(r *http.Request) (*models.User, error) {
	user, ok := userctx.GetUser(r.Context())
	if !ok {
		return nil, models.ErrUnauthorized
	}
	return user, nil
}

// idParam parses a positive integer URL parameter
func idParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, models.ValidationErrors{}.Add(name, name+" must be a positive integer")
	}
	return id, nil
}

// Controllers holds all controller instances
type Controllers struct {
	Auth     *AuthController
	Expenses *ExpenseController
	Users    *UserController
	Reports  *ReportController
}

// NewControllers creates and initializes all controller instances.
// sso may be nil when single sign-on is not configured.
func NewControllers(services *services.Services, sso authenticator.Provider, maxReceiptSize int64, logger *zap.Logger) *Controllers {
	return &Controllers{
		Auth:     NewAuthController(services, sso, logger),
		Expenses: NewExpenseController(services, maxReceiptSize, logger),
		Users:    NewUserController(services, logger),
		Reports:  NewReportController(services, logger),
	}
}

// Health handles GET /api/health
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": "expenseflow"})
}
