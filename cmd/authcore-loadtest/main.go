// Command authcore-loadtest measures login, token verification, and refresh
// throughput against an in-memory user store, optionally with a real Redis
// session registry. Intended for tuning bcrypt cost and sizing hosts, not
// for CI.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/kweilun/authcore"
)

func main() {
	var (
		users       = flag.Int("users", 1000, "number of accounts to seed")
		concurrency = flag.Int("concurrency", 64, "number of concurrent workers")
		ops         = flag.Int("ops", 10000, "operations per phase")
		cost        = flag.Int("cost", bcrypt.MinCost, "bcrypt cost for seeded accounts")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
	)
	flag.Parse()

	if *users <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "users, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var (
		cleanup func()
		client  redis.UniversalClient
	)
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{mr.Addr()},
		})
		cleanup = func() {
			_ = client.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", mr.Addr())
	} else {
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() { _ = client.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	cfg := authcore.DefaultConfig()
	cfg.JWT.Secret = []byte("loadtest-secret-loadtest-secret!")
	cfg.Password.Cost = *cost
	cfg.Metrics.Enabled = true

	engine, err := authcore.New().
		WithConfig(cfg).
		WithUserStore(newBenchStore()).
		WithRedis(client).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "build engine: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	fmt.Printf("seeding %d accounts at bcrypt cost %d...\n", *users, *cost)
	startSeed := time.Now()
	tokens := make([]*authcore.AuthResult, *users)
	for i := 0; i < *users; i++ {
		result, err := engine.Register(ctx, authcore.RegisterRequest{
			Email:     fmt.Sprintf("user%d@load.test", i),
			Username:  fmt.Sprintf("load_user_%d", i),
			Password:  passwordFor(i),
			FirstName: "Load",
			LastName:  "Test",
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "seed register failed: %v\n", err)
			os.Exit(1)
		}
		tokens[i] = result
	}
	fmt.Printf("seeded in %s\n", time.Since(startSeed).Round(time.Millisecond))

	loginStats := runPhase(*ops, *concurrency, func(r *rand.Rand) error {
		i := r.Intn(*users)
		_, err := engine.Login(ctx, authcore.LoginRequest{
			Email:    fmt.Sprintf("user%d@load.test", i),
			Password: passwordFor(i),
		})
		return err
	})

	verifyStats := runPhase(*ops, *concurrency, func(r *rand.Rand) error {
		_, err := engine.VerifyAccess(tokens[r.Intn(*users)].Tokens.AccessToken)
		return err
	})

	refreshStats := runPhase(*ops, *concurrency, func(r *rand.Rand) error {
		_, err := engine.RefreshAccessToken(ctx, tokens[r.Intn(*users)].Tokens.RefreshToken)
		return err
	})

	fmt.Println("---- results ----")
	printStats("login", loginStats)
	printStats("verify", verifyStats)
	printStats("refresh", refreshStats)
}

func passwordFor(i int) string {
	return "load-password-" + strconv.Itoa(i)
}

func runPhase(ops, concurrency int, op func(*rand.Rand) error) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				t0 := time.Now()
				err := op(r)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}

// benchStore is a map-backed UserStore with secondary indexes so lookups do
// not dominate the measurement.
type benchStore struct {
	mu         sync.RWMutex
	nextID     int
	byID       map[string]*authcore.User
	byEmail    map[string]string
	byUsername map[string]string
}

func newBenchStore() *benchStore {
	return &benchStore{
		byID:       make(map[string]*authcore.User),
		byEmail:    make(map[string]string),
		byUsername: make(map[string]string),
	}
}

func (s *benchStore) FindUserByEmailOrUsername(_ context.Context, email, username string) (*authcore.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id, ok := s.byEmail[email]; ok {
		cp := *s.byID[id]
		return &cp, nil
	}
	if id, ok := s.byUsername[username]; ok {
		cp := *s.byID[id]
		return &cp, nil
	}
	return nil, nil
}

func (s *benchStore) FindUserByEmail(_ context.Context, email string) (*authcore.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id, ok := s.byEmail[email]; ok {
		cp := *s.byID[id]
		return &cp, nil
	}
	return nil, nil
}

func (s *benchStore) FindUserByID(_ context.Context, id string) (*authcore.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (s *benchStore) CreateUser(_ context.Context, input authcore.CreateUserInput) (*authcore.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	now := time.Now()
	u := &authcore.User{
		ID:           strconv.Itoa(s.nextID),
		Email:        input.Email,
		Username:     input.Username,
		PasswordHash: input.PasswordHash,
		Profile:      input.Profile,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.byID[u.ID] = u
	s.byEmail[u.Email] = u.ID
	s.byUsername[u.Username] = u.ID
	cp := *u
	return &cp, nil
}

func (s *benchStore) RevokeSessionsForUser(_ context.Context, _ string) error {
	return nil
}
