package authcore

import (
	"context"
	"io"
	"time"

	internalaudit "github.com/kweilun/authcore/internal/audit"
	internalmetrics "github.com/kweilun/authcore/internal/metrics"
	"github.com/kweilun/authcore/jwt"
)

// Profile carries the display fields embedded in a [User] record.
type Profile struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// User is the account record exchanged with the [UserStore]. Email and
// Username are unique per store; PasswordHash is opaque to everything but
// the password package.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Profile      Profile   `json:"profile"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// CreateUserInput is the input for [UserStore.CreateUser]. The engine hashes
// the password before building this value; plaintext never reaches the store.
type CreateUserInput struct {
	Email        string
	Username     string
	PasswordHash string
	Profile      Profile
}

// UserStore is the persistence contract callers must implement to integrate
// authcore with their database. It owns user records and whatever
// server-tracked session state the host keeps for revocation.
//
// Lookup methods return (nil, nil) when no record matches; a non-nil error
// means the backend itself failed and is surfaced as [ErrStoreUnavailable].
type UserStore interface {
	FindUserByEmailOrUsername(ctx context.Context, email, username string) (*User, error)
	FindUserByEmail(ctx context.Context, email string) (*User, error)
	FindUserByID(ctx context.Context, id string) (*User, error)
	CreateUser(ctx context.Context, input CreateUserInput) (*User, error)
	RevokeSessionsForUser(ctx context.Context, userID string) error
}

// UpdatePasswordHashStore is optionally implemented by a [UserStore] that
// supports transparent bcrypt cost upgrades on login. Stores without it
// simply keep the old hash.
type UpdatePasswordHashStore interface {
	UpdatePasswordHash(ctx context.Context, userID, newHash string) error
}

// AuthResult is returned by [Engine.Register] and [Engine.Login].
type AuthResult struct {
	User   *User
	Tokens *jwt.TokenPair
}

// RefreshResult is returned by [Engine.RefreshAccessToken]. Only the access
// token is re-issued; the presented refresh token remains valid until its
// own expiry.
type RefreshResult struct {
	AccessToken string
	ExpiresIn   int64
}

// RegisterRequest is the strongly-typed input for [Engine.Register].
// The hosting layer is expected to run [RegisterRequest.Validate] before
// calling into the engine.
type RegisterRequest struct {
	Email     string
	Username  string
	Password  string
	FirstName string
	LastName  string
}

// LoginRequest is the strongly-typed input for [Engine.Login].
type LoginRequest struct {
	Email    string
	Password string
}

// AuditEvent is a structured audit record emitted by the engine.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the engine's audit dispatcher.
// Emission is fire-and-forget: a failing sink never aborts the operation
// that produced the event.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes one JSON object per line to
// an [io.Writer].
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

// MetricID identifies a specific counter or histogram in the in-process
// metrics system.
type MetricID = internalmetrics.MetricID

const (
	// MetricRegisterSuccess counts completed registrations.
	MetricRegisterSuccess = internalmetrics.MetricRegisterSuccess
	// MetricRegisterDuplicate counts registrations rejected as conflicts.
	MetricRegisterDuplicate = internalmetrics.MetricRegisterDuplicate
	// MetricLoginSuccess counts successful logins.
	MetricLoginSuccess = internalmetrics.MetricLoginSuccess
	// MetricLoginFailure counts rejected logins.
	MetricLoginFailure = internalmetrics.MetricLoginFailure
	// MetricRefreshSuccess counts successful access-token refreshes.
	MetricRefreshSuccess = internalmetrics.MetricRefreshSuccess
	// MetricRefreshFailure counts rejected refreshes.
	MetricRefreshFailure = internalmetrics.MetricRefreshFailure
	// MetricLogout counts logout calls that revoked sessions.
	MetricLogout = internalmetrics.MetricLogout
	// MetricVerifyLatency is the access-token verification latency histogram.
	MetricVerifyLatency = internalmetrics.MetricVerifyLatency
)

// Metrics holds atomic counters and optional latency histograms.
type Metrics = internalmetrics.Metrics

// MetricsSnapshot is a point-in-time deep copy of all metrics.
type MetricsSnapshot = internalmetrics.Snapshot

// NewMetrics creates a new [Metrics] instance configured by the given
// [MetricsConfig]. When Enabled is false, all operations are no-ops.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return internalmetrics.New(internalmetrics.Config{
		Enabled:       cfg.Enabled,
		EnableLatency: cfg.EnableLatencyHistograms,
	})
}
