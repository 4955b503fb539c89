package userctx

import (
	"context"

	"github.com/blogem/expenseflow/models"
)

// Context key type
type contextKey string

const (
	userKey      contextKey = "user"
	requestIDKey contextKey = "request_id"
)

// SetUser adds the authenticated user to request context
func SetUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// GetUser retrieves the authenticated user from request context
func GetUser(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userKey).(*models.User)
	return user, ok && user != nil
}

// GetUsername retrieves the username of the authenticated user for logging
func GetUsername(ctx context.Context) string {
	user, ok := GetUser(ctx)
	if !ok {
		return "anonymous"
	}
	return user.Username
}

// SetRequestID adds the request ID to request context
func SetRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// GetRequestID retrieves the request ID from request context
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
