package grpc

import (
	"net"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	limiterIdleTTL       = 10 * time.Minute
	limiterSweepInterval = time.Minute
)

// peerLimiter keeps one token bucket per remote host. Buckets idle for
// longer than limiterIdleTTL are dropped on the next sweep, which runs
// inline with Allow.
type peerLimiter struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	peers     map[string]*peerBucket
	lastSweep time.Time
	now       func() time.Time
}

type peerBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// newPeerLimiter returns nil when perMinute is not positive, which
// disables limiting.
func newPeerLimiter(perMinute float64, burst int) *peerLimiter {
	if perMinute <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return &peerLimiter{
		limit: rate.Limit(perMinute / 60),
		burst: burst,
		peers: make(map[string]*peerBucket),
		now:   time.Now,
	}
}

func (l *peerLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= limiterSweepInterval {
		for k, b := range l.peers {
			if now.Sub(b.lastSeen) > limiterIdleTTL {
				delete(l.peers, k)
			}
		}
		l.lastSweep = now
	}

	b, ok := l.peers[key]
	if !ok {
		b = &peerBucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.peers[key] = b
	}
	b.lastSeen = now

	return b.limiter.AllowN(now, 1)
}

func (l *peerLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.peers)
}

func hostOf(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}
