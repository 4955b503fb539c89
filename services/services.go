package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/blogem/expenseflow/authenticator"
	"github.com/blogem/expenseflow/metrics"
	"github.com/blogem/expenseflow/notifier"
	"github.com/blogem/expenseflow/repositories"
	"github.com/blogem/expenseflow/storage"
)

// Dependencies are the collaborators shared by the services
type Dependencies struct {
	Blobs          storage.BlobStore
	Notifier       notifier.Notifier
	Tokens         *authenticator.TokenIssuer
	Metrics        *metrics.Metrics
	Logger         *zap.Logger
	Location       *time.Location
	MaxReceiptSize int64
	Now            func() time.Time
}

func (d Dependencies) withDefaults() Dependencies {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Location == nil {
		d.Location = time.UTC
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.MaxReceiptSize <= 0 {
		d.MaxReceiptSize = storage.DefaultMaxReceiptSize
	}
	if d.Notifier == nil {
		d.Notifier = notifier.NewLogNotifier(d.Logger)
	}
	return d
}

// Services holds all service instances
type Services struct {
	Users    UserService
	Expenses ExpenseService
	Audit    AuditService
	Reports  ReportService
}

// NewServices creates and initializes all service instances
func NewServices(repos *repositories.Repositories, deps Dependencies) *Services {
	deps = deps.withDefaults()
	audit := NewAuditService(repos.Audit, repos.Users, repos.Expenses)

	return &Services{
		Users:    NewUserService(repos.Users, repos.Tx, audit, deps),
		Expenses: NewExpenseService(repos.Expenses, repos.Users, repos.Comments, repos.Tx, audit, deps),
		Audit:    audit,
		Reports:  NewReportService(repos.Expenses, deps),
	}
}

// notify delivers msg and only logs a failure; the operation that
// triggered it has already committed
func notify(ctx context.Context, deps Dependencies, msg notifier.Message) {
	if err := deps.Notifier.Notify(ctx, msg); err != nil {
		deps.Metrics.IncrementNotificationFailures()
		deps.Logger.Warn("Failed to send notification",
			zap.String("to", msg.To),
			zap.String("subject", msg.Subject),
			zap.Error(err))
	}
}
