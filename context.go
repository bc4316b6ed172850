package authcore

import "context"

type sourceAddressContextKey struct{}
type userAgentContextKey struct{}

// WithSourceAddress attaches the caller's network address to ctx. The Engine
// records it as the sourceAddress of every audit event emitted for the call.
func WithSourceAddress(ctx context.Context, addr string) context.Context {
	return context.WithValue(ctx, sourceAddressContextKey{}, addr)
}

// WithUserAgent attaches the HTTP User-Agent string to ctx for audit
// attribution.
func WithUserAgent(ctx context.Context, userAgent string) context.Context {
	return context.WithValue(ctx, userAgentContextKey{}, userAgent)
}

func sourceAddressFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	addr, _ := ctx.Value(sourceAddressContextKey{}).(string)
	return addr
}

func userAgentFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	userAgent, _ := ctx.Value(userAgentContextKey{}).(string)
	return userAgent
}
