package context

import (
	"context"
	"sync"
)

// Current carries per-request facts set by the middleware chain: request id,
// client details and, once authenticated, the user id.
type Current struct {
	mu        sync.RWMutex
	requestID string
	userID    int
	userAgent string
	ipAddress string
}

func NewCurrent(requestID, userAgent, ipAddress string) *Current {
	return &Current{
		requestID: requestID,
		userAgent: userAgent,
		ipAddress: ipAddress,
	}
}

func (c *Current) RequestID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.requestID
}

func (c *Current) UserAgent() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.userAgent
}

func (c *Current) IPAddress() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ipAddress
}

func (c *Current) SetUserID(userID int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.userID = userID
}

// UserID returns the authenticated user, or false before authentication.
func (c *Current) UserID() (int, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.userID, c.userID > 0
}

type contextKey string

const currentKey contextKey = "current"

func WithCurrent(ctx context.Context, current *Current) context.Context {
	return context.WithValue(ctx, currentKey, current)
}

func FromContext(ctx context.Context) (*Current, bool) {
	current, ok := ctx.Value(currentKey).(*Current)
	return current, ok
}
