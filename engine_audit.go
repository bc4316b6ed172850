package authcore

import (
	"context"
	"errors"
	"time"
)

const (
	auditActionRegister = "USER_REGISTER"
	auditActionLogin    = "USER_LOGIN"
	auditActionLogout   = "USER_LOGOUT"

	auditResourceUser = "User"
)

// AuditErrorCode is the normalized error label written into audit events.
type AuditErrorCode string

const (
	auditErrInvalidCredentials AuditErrorCode = "invalid_credentials"
	auditErrDuplicate          AuditErrorCode = "duplicate"
	auditErrTokenExpired       AuditErrorCode = "token_expired"
	auditErrInvalidToken       AuditErrorCode = "invalid_token"
	auditErrStoreUnavailable   AuditErrorCode = "store_unavailable"
	auditErrValidation         AuditErrorCode = "validation"
	auditErrInternal           AuditErrorCode = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	action string,
	success bool,
	actorID string,
	err error,
	detailsBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var details map[string]string
	if detailsBuilder != nil {
		details = detailsBuilder()
	}

	event := AuditEvent{
		Timestamp:     time.Now().UTC(),
		Action:        action,
		Resource:      auditResourceUser,
		ActorID:       actorID,
		SourceAddress: sourceAddressFromContext(ctx),
		UserAgent:     userAgentFromContext(ctx),
		Success:       success,
		Details:       details,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return auditErrInvalidCredentials
	case errors.Is(err, ErrAlreadyExists):
		return auditErrDuplicate
	case errors.Is(err, ErrTokenExpired):
		return auditErrTokenExpired
	case errors.Is(err, ErrTokenInvalid):
		return auditErrInvalidToken
	case errors.Is(err, ErrStoreUnavailable):
		return auditErrStoreUnavailable
	case errors.Is(err, ErrValidation):
		return auditErrValidation
	default:
		return auditErrInternal
	}
}
