package ctxutil

import (
	"context"
	"time"
)

// private keys to avoid collisions with other packages
type key int

const (
	keyIdentity key = iota
	keyToken
	keyOpName
)

// Identity is the signed-in account as reported by the identity provider.
type Identity struct {
	Email string
	Name  string
	Roles []string
}

func (id Identity) HasRole(role string) bool {
	for _, r := range id.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, keyIdentity, id)
}

func IdentityFrom(ctx context.Context) (Identity, bool) {
	v := ctx.Value(keyIdentity)
	if v == nil {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}

// WithToken carries the caller's raw bearer token; the store client forwards
// it to the remote drive (delegated access, the service holds no credential
// of its own).
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, keyToken, token)
}

func TokenFrom(ctx context.Context) (string, bool) {
	v := ctx.Value(keyToken)
	if v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok && s != ""
}

// WithOp names the running operation for logs and traces.
func WithOp(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, keyOpName, name)
}

func Op(ctx context.Context) (string, bool) {
	v := ctx.Value(keyOpName)
	if v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

var (
	DefaultStoreTimeout  = 30 * time.Second
	DefaultMirrorTimeout = 5 * time.Second
)

func WithStoreTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return withBudget(parent, DefaultStoreTimeout)
}

func WithMirrorTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return withBudget(parent, DefaultMirrorTimeout)
}

func withBudget(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if dl, ok := parent.Deadline(); ok {
		// keep the parent's remaining budget when it is tighter
		if remain := time.Until(dl); remain < d {
			return context.WithTimeout(parent, remain)
		}
	}
	return context.WithTimeout(parent, d)
}
