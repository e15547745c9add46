package tickets_api

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/BearBump/TicketBox/internal/cache/rediscache"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

const MessageRateLimited = "Too many lookups. Try again in a minute."

type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (bool, int64, error)
}

// RateLimit caps lookups per client address. Limiter errors let the request through.
type RateLimit struct {
	rl        RateLimiter
	perMinute int64
}

// NewRateLimit returns nil when rl is nil or perMinute is not positive; a nil *RateLimit allows everything.
func NewRateLimit(rl RateLimiter, perMinute int) *RateLimit {
	if rl == nil || perMinute <= 0 {
		return nil
	}
	return &RateLimit{rl: rl, perMinute: int64(perMinute)}
}

func (l *RateLimit) allow(ctx context.Context, clientID string) bool {
	if l == nil {
		return true
	}
	ok, n, err := l.rl.Allow(ctx, rediscache.LookupKey(clientID), l.perMinute, time.Minute)
	if err != nil {
		slog.Warn("rate limiter unavailable, allowing lookup", "err", err)
		return true
	}
	if !ok {
		rateLimitedTotal.Inc()
		slog.Info("lookup rate limited", "client", clientID, "count", n)
	}
	return ok
}

// Middleware only counts requests that actually carry a code.
func (l *RateLimit) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("code") == "" || l.allow(r.Context(), hostOf(r.RemoteAddr)) {
			next.ServeHTTP(w, r)
			return
		}
		writeJSON(w, http.StatusTooManyRequests, lookupResponse{OK: false, Error: MessageRateLimited})
	})
}

func (l *RateLimit) UnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		clientID := "unknown"
		if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
			clientID = hostOf(p.Addr.String())
		}
		if !l.allow(ctx, clientID) {
			return nil, status.Error(codes.ResourceExhausted, MessageRateLimited)
		}
		return handler(ctx, req)
	}
}

func hostOf(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}
