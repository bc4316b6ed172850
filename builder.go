package authcore

import (
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	internalaudit "github.com/kweilun/authcore/internal/audit"
	"github.com/kweilun/authcore/jwt"
	"github.com/kweilun/authcore/password"
	"github.com/kweilun/authcore/session"
)

// Builder assembles an [Engine] step by step. Construct through [New], chain
// the With* methods, then call [Builder.Build] exactly once. A Builder is not
// safe for concurrent use and must not be reused after Build.
type Builder struct {
	config    Config
	store     UserStore
	auditSink AuditSink
	redis     redis.UniversalClient
	built     bool
}

// New creates a Builder preloaded with [DefaultConfig]. A [UserStore] and a
// signing secret are the only mandatory inputs.
func New() *Builder {
	return &Builder{config: DefaultConfig()}
}

// WithConfig replaces the entire configuration tree. Call it first; later
// With* methods overwrite individual fields.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithSigningSecret sets the HS256 secret used for both access and refresh
// tokens. At least 32 bytes.
func (b *Builder) WithSigningSecret(secret []byte) *Builder {
	b.config.JWT.Secret = secret
	return b
}

// WithTokenTTLs overrides the access and refresh token lifetimes.
func (b *Builder) WithTokenTTLs(access, refresh time.Duration) *Builder {
	b.config.JWT.AccessTTL = access
	b.config.JWT.RefreshTTL = refresh
	return b
}

// WithUserStore sets the persistence backend. Mandatory.
func (b *Builder) WithUserStore(store UserStore) *Builder {
	b.store = store
	return b
}

// WithAuditSink enables audit emission into sink using the configured
// buffering behavior.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	b.config.Audit.Enabled = true
	return b
}

// WithRedis enables the active-session registry on the given client. The
// engine never owns the client; close it yourself.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithMetricsEnabled turns the in-process counters on or off.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms additionally enables the token-verification latency
// histogram. Implies metrics.
func (b *Builder) WithLatencyHistograms() *Builder {
	b.config.Metrics.Enabled = true
	b.config.Metrics.EnableLatencyHistograms = true
	return b
}

// Build validates the accumulated configuration and constructs the Engine.
// The config is deep-copied; mutating the Builder afterwards has no effect
// on the built engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already consumed")
	}
	b.built = true

	if b.store == nil {
		return nil, errors.New("a UserStore is required")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	hasher, err := password.NewHasher(password.Config{Cost: cfg.Password.Cost})
	if err != nil {
		return nil, err
	}

	manager, err := jwt.NewManager(jwt.Config{
		Secret:     cfg.JWT.Secret,
		AccessTTL:  cfg.JWT.AccessTTL,
		RefreshTTL: cfg.JWT.RefreshTTL,
		Issuer:     cfg.JWT.Issuer,
		Leeway:     cfg.JWT.Leeway,
	})
	if err != nil {
		return nil, err
	}

	var sessions *session.Registry
	if b.redis != nil {
		sessions = session.NewRegistry(b.redis, cfg.Session.RedisPrefix)
	}

	dispatcher := internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
	}, b.auditSink)

	return &Engine{
		config:       cfg,
		store:        b.store,
		sessions:     sessions,
		audit:        dispatcher,
		metrics:      NewMetrics(cfg.Metrics),
		passwordHash: hasher,
		jwtManager:   manager,
	}, nil
}
