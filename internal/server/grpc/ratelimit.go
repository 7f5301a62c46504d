package grpc

import (
	"context"
	"net"
	"sync"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/grpc/peer"
)

// idleTTL is how long an unused per-peer limiter is kept.
const idleTTL = 10 * time.Minute

type peerEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// PeerLimiter keeps one token bucket per remote host.
type PeerLimiter struct {
	limit rate.Limit
	burst int

	mu        sync.Mutex
	peers     map[string]*peerEntry
	lastSweep time.Time
	now       func() time.Time
}

// NewPeerLimiter allows perMinute requests per peer per minute, with bursts
// up to perMinute.
func NewPeerLimiter(perMinute int) *PeerLimiter {
	return &PeerLimiter{
		limit: rate.Limit(float64(perMinute) / 60.0),
		burst: perMinute,
		peers: make(map[string]*peerEntry),
		now:   time.Now,
	}
}

func (l *PeerLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	e, ok := l.peers[key]
	if !ok {
		e = &peerEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.peers[key] = e
	}
	e.lastAccess = now

	return e.limiter.AllowN(now, 1)
}

// Len returns the number of tracked peers.
func (l *PeerLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.peers)
}

// sweep drops idle peers at most once per idleTTL.
func (l *PeerLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < idleTTL {
		return
	}
	l.lastSweep = now
	for k, e := range l.peers {
		if now.Sub(e.lastAccess) > idleTTL {
			delete(l.peers, k)
		}
	}
}

// peerKey is the remote host without the port.
func peerKey(ctx context.Context) string {
	p, ok := peer.FromContext(ctx)
	if !ok || p.Addr == nil {
		return "unknown"
	}
	addr := p.Addr.String()
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
