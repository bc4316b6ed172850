package authcore

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	internalaudit "github.com/kweilun/authcore/internal/audit"
	"github.com/kweilun/authcore/jwt"
	"github.com/kweilun/authcore/password"
	"github.com/kweilun/authcore/session"
)

// Engine orchestrates registration, login, token refresh, and logout by
// composing the password hasher, the token manager, the caller-supplied
// [UserStore], and the audit pipeline.
//
// Engine holds no per-operation state: every method either completes or
// fails atomically from the caller's perspective, and all methods are safe
// for unbounded concurrent use once built.
type Engine struct {
	config       Config
	store        UserStore
	sessions     *session.Registry
	audit        *internalaudit.Dispatcher
	metrics      *Metrics
	passwordHash *password.Hasher
	jwtManager   *jwt.Manager
}

// Close drains and stops the audit dispatcher. It does not touch the
// UserStore or Redis client, which the host owns.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped reports how many audit events were discarded because the
// dispatch buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of the engine's counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// Login verifies an email/password pair and, on success, returns the user
// together with a fresh token pair.
//
// Unknown email and wrong password produce the same [ErrInvalidCredentials]
// so the method cannot be used to enumerate accounts. Store failures
// surface as [ErrStoreUnavailable]; signing failures as [ErrInternal].
func (e *Engine) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	if e == nil || e.passwordHash == nil || e.store == nil {
		return nil, ErrEngineNotReady
	}

	email, plaintext := req.Email, req.Password
	if plaintext == "" {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditActionLogin, false, "", ErrInvalidCredentials, func() map[string]string {
			return map[string]string{
				"email":  email,
				"reason": "empty_password",
			}
		})
		return nil, ErrInvalidCredentials
	}

	user, err := e.store.FindUserByEmail(ctx, email)
	if err != nil {
		wrapped := storeError(err)
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditActionLogin, false, "", wrapped, func() map[string]string {
			return map[string]string{
				"email":  email,
				"reason": "store_lookup_failed",
			}
		})
		return nil, wrapped
	}
	if user == nil {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditActionLogin, false, "", ErrInvalidCredentials, func() map[string]string {
			return map[string]string{
				"email":  email,
				"reason": "user_not_found",
			}
		})
		return nil, ErrInvalidCredentials
	}

	if !e.passwordHash.Verify(plaintext, user.PasswordHash) {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditActionLogin, false, user.ID, ErrInvalidCredentials, func() map[string]string {
			return map[string]string{
				"email":  email,
				"reason": "password_mismatch",
			}
		})
		return nil, ErrInvalidCredentials
	}

	if e.config.Password.UpgradeOnLogin && e.passwordHash.NeedsRehash(user.PasswordHash) {
		e.upgradePasswordHash(ctx, user.ID, plaintext)
	}

	tokens, err := e.jwtManager.IssuePair(identityOf(user))
	if err != nil {
		wrapped := internalError(err)
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditActionLogin, false, user.ID, wrapped, func() map[string]string {
			return map[string]string{
				"email":  email,
				"reason": "issue_pair_failed",
			}
		})
		return nil, wrapped
	}

	e.trackSession(ctx, user.ID)

	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, auditActionLogin, true, user.ID, nil, func() map[string]string {
		return map[string]string{
			"email": user.Email,
		}
	})

	return &AuthResult{User: user, Tokens: tokens}, nil
}

// RefreshAccessToken verifies a refresh token and re-issues an access token
// for its subject. The presented refresh token is NOT rotated: it stays
// valid until its own expiry. A leaked refresh token therefore remains
// usable for its full lifetime; hosts wanting rotation must layer it on top.
//
// Returns [ErrTokenExpired] or [ErrTokenInvalid] for bad tokens and
// [ErrInvalidCredentials] when the subject no longer exists.
func (e *Engine) RefreshAccessToken(ctx context.Context, refreshToken string) (*RefreshResult, error) {
	if e == nil || e.jwtManager == nil || e.store == nil {
		return nil, ErrEngineNotReady
	}

	claims, err := e.jwtManager.ParseRefresh(refreshToken)
	if err != nil {
		e.metricInc(MetricRefreshFailure)
		return nil, err
	}

	user, err := e.store.FindUserByID(ctx, claims.UserID)
	if err != nil {
		e.metricInc(MetricRefreshFailure)
		return nil, storeError(err)
	}
	if user == nil {
		e.metricInc(MetricRefreshFailure)
		return nil, ErrInvalidCredentials
	}

	tokens, err := e.jwtManager.IssuePair(identityOf(user))
	if err != nil {
		e.metricInc(MetricRefreshFailure)
		return nil, internalError(err)
	}

	e.metricInc(MetricRefreshSuccess)

	// Only the access token leaves this method; the new refresh token is
	// discarded so exactly one refresh credential exists per session.
	return &RefreshResult{
		AccessToken: tokens.AccessToken,
		ExpiresIn:   tokens.ExpiresIn,
	}, nil
}

// Logout revokes every server-tracked session of the user: the Redis
// registry entries when one is configured, then whatever the UserStore
// keeps. Already-issued access tokens are self-contained and stay valid
// until their natural expiry.
func (e *Engine) Logout(ctx context.Context, userID string) error {
	if e == nil || e.store == nil {
		return ErrEngineNotReady
	}
	if userID == "" {
		return ErrValidation
	}

	if e.sessions != nil {
		if err := e.sessions.DeleteAllForUser(ctx, userID); err != nil {
			wrapped := storeError(err)
			e.emitAudit(ctx, auditActionLogout, false, userID, wrapped, func() map[string]string {
				return map[string]string{
					"reason": "registry_revoke_failed",
				}
			})
			return wrapped
		}
	}

	if err := e.store.RevokeSessionsForUser(ctx, userID); err != nil {
		wrapped := storeError(err)
		e.emitAudit(ctx, auditActionLogout, false, userID, wrapped, func() map[string]string {
			return map[string]string{
				"reason": "store_revoke_failed",
			}
		})
		return wrapped
	}

	e.metricInc(MetricLogout)
	e.emitAudit(ctx, auditActionLogout, true, userID, nil, nil)

	return nil
}

// VerifyAccess verifies an access token and returns its claims. It is the
// hook for request-authentication middleware; pure computation, no I/O.
func (e *Engine) VerifyAccess(tokenStr string) (*jwt.AccessClaims, error) {
	if e == nil || e.jwtManager == nil {
		return nil, ErrEngineNotReady
	}
	if e.metrics != nil && e.metrics.LatencyEnabled() {
		start := time.Now()
		defer e.metrics.Observe(MetricVerifyLatency, time.Since(start))
	}

	return e.jwtManager.ParseAccess(tokenStr)
}

// ExtractBearerToken parses an Authorization header value of the exact form
// "Bearer <token>". Any other scheme or shape yields ("", false).
func ExtractBearerToken(headerValue string) (string, bool) {
	return jwt.BearerToken(headerValue)
}

// trackSession records a new session in the Redis registry when one is
// configured. Bookkeeping is best-effort: token validity never depends on
// the registry, so a write failure is logged, not surfaced.
func (e *Engine) trackSession(ctx context.Context, userID string) {
	if e.sessions == nil {
		return
	}

	now := time.Now()
	rec := &session.Record{
		SessionID: uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(e.config.JWT.RefreshTTL),
	}
	if err := e.sessions.Save(ctx, rec); err != nil {
		log.Print("authcore: session registry save failed")
	}
}

// upgradePasswordHash rehashes a credential at the configured cost after a
// successful verify. Best-effort: failure must not block the login.
func (e *Engine) upgradePasswordHash(ctx context.Context, userID, plaintext string) {
	updater, ok := e.store.(UpdatePasswordHashStore)
	if !ok {
		return
	}

	newHash, err := e.passwordHash.Hash(plaintext)
	if err != nil {
		log.Print("authcore: password hash upgrade generation failed")
		return
	}
	if err := updater.UpdatePasswordHash(ctx, userID, newHash); err != nil {
		log.Print("authcore: password hash upgrade update failed")
	}
}

func identityOf(u *User) jwt.Identity {
	return jwt.Identity{
		UserID:   u.ID,
		Email:    u.Email,
		Username: u.Username,
	}
}
