package authcore

import (
	"context"
	"testing"
)

func benchEngine(b *testing.B) (*Engine, *AuthResult) {
	b.Helper()
	engine, err := New().
		WithConfig(testConfig()).
		WithUserStore(newFakeStore()).
		Build()
	if err != nil {
		b.Fatalf("build engine: %v", err)
	}
	b.Cleanup(engine.Close)

	registered, err := engine.Register(context.Background(), validRegister())
	if err != nil {
		b.Fatalf("register: %v", err)
	}
	return engine, registered
}

func BenchmarkLogin(b *testing.B) {
	engine, _ := benchEngine(b)
	req := LoginRequest{Email: "alice@example.com", Password: "hunter2hunter2"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := engine.Login(context.Background(), req); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkVerifyAccess(b *testing.B) {
	engine, registered := benchEngine(b)
	token := registered.Tokens.AccessToken

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := engine.VerifyAccess(token); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkVerifyAccessParallel(b *testing.B) {
	engine, registered := benchEngine(b)
	token := registered.Tokens.AccessToken

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := engine.VerifyAccess(token); err != nil {
				b.Fatal(err)
			}
		}
	})
}

func BenchmarkRefreshAccessToken(b *testing.B) {
	engine, registered := benchEngine(b)
	token := registered.Tokens.RefreshToken

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := engine.RefreshAccessToken(context.Background(), token); err != nil {
			b.Fatal(err)
		}
	}
}
