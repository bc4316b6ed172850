package authcore

import (
	"context"
)

// Register creates a new account and immediately signs the user in,
// returning the created record and a fresh token pair.
//
// Email and username are checked for uniqueness before hashing; when both
// are taken the reported conflict field is "email". The store may still
// race a concurrent insert, so a CreateUser failure that the store reports
// as a uniqueness violation surfaces as [ErrStoreUnavailable] unless the
// store itself wraps [ErrAlreadyExists].
func (e *Engine) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	if e == nil || e.passwordHash == nil || e.store == nil {
		return nil, ErrEngineNotReady
	}

	if err := req.Validate(); err != nil {
		e.emitAudit(ctx, auditActionRegister, false, "", err, func() map[string]string {
			return map[string]string{
				"email":    req.Email,
				"username": req.Username,
				"reason":   "validation_failed",
			}
		})
		return nil, err
	}

	existing, err := e.store.FindUserByEmailOrUsername(ctx, req.Email, req.Username)
	if err != nil {
		wrapped := storeError(err)
		e.emitAudit(ctx, auditActionRegister, false, "", wrapped, func() map[string]string {
			return map[string]string{
				"email":    req.Email,
				"username": req.Username,
				"reason":   "store_lookup_failed",
			}
		})
		return nil, wrapped
	}
	if existing != nil {
		// Email wins when both fields collide with the same record.
		field := "username"
		if existing.Email == req.Email {
			field = "email"
		}
		conflictErr := &AlreadyExistsError{Field: field}
		e.metricInc(MetricRegisterDuplicate)
		e.emitAudit(ctx, auditActionRegister, false, "", conflictErr, func() map[string]string {
			return map[string]string{
				"email":    req.Email,
				"username": req.Username,
				"field":    field,
			}
		})
		return nil, conflictErr
	}

	hash, err := e.passwordHash.Hash(req.Password)
	if err != nil {
		wrapped := internalError(err)
		e.emitAudit(ctx, auditActionRegister, false, "", wrapped, func() map[string]string {
			return map[string]string{
				"email":    req.Email,
				"username": req.Username,
				"reason":   "hash_failed",
			}
		})
		return nil, wrapped
	}

	user, err := e.store.CreateUser(ctx, CreateUserInput{
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: hash,
		Profile: Profile{
			FirstName: req.FirstName,
			LastName:  req.LastName,
		},
	})
	if err != nil {
		wrapped := err
		if code := auditErrorCode(err); code != auditErrDuplicate {
			wrapped = storeError(err)
		}
		e.emitAudit(ctx, auditActionRegister, false, "", wrapped, func() map[string]string {
			return map[string]string{
				"email":    req.Email,
				"username": req.Username,
				"reason":   "create_failed",
			}
		})
		return nil, wrapped
	}

	tokens, err := e.jwtManager.IssuePair(identityOf(user))
	if err != nil {
		wrapped := internalError(err)
		e.emitAudit(ctx, auditActionRegister, false, user.ID, wrapped, func() map[string]string {
			return map[string]string{
				"email":  req.Email,
				"reason": "issue_pair_failed",
			}
		})
		return nil, wrapped
	}

	e.trackSession(ctx, user.ID)

	e.metricInc(MetricRegisterSuccess)
	e.emitAudit(ctx, auditActionRegister, true, user.ID, nil, func() map[string]string {
		return map[string]string{
			"email":    user.Email,
			"username": user.Username,
		}
	})

	return &AuthResult{User: user, Tokens: tokens}, nil
}
