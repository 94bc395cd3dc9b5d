package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"smartrfq/desk/internal/backend"
)

const confirmTimeout = 10 * time.Second

// ConfirmFunc checks a decoded token with the system that accepts it.
type ConfirmFunc func(ctx context.Context, token string, claims *IdentityClaims) error

// BackendConfirmer confirms tokens by calling sync-user on the RFQ backend.
// A 500 means the backend authenticated the caller before failing, which the
// dashboard already treats as non-fatal for sync-user.
func BackendConfirmer(client backend.IClient) ConfirmFunc {
	return func(ctx context.Context, token string, claims *IdentityClaims) error {
		err := client.SyncUser(ctx, backend.Auth{Token: token, OrgID: claims.OrgID})
		if err == nil || backend.IsStatus(err, http.StatusInternalServerError) {
			return nil
		}
		return err
	}
}

type confirmingVerifier struct {
	inner   IIdentityVerifier
	confirm ConfirmFunc
	ttl     time.Duration
	now     func() time.Time

	mu        sync.Mutex
	confirmed map[string]time.Time
}

// NewConfirmingVerifier wraps inner so that every token is also confirmed by
// confirm before it is accepted. Confirmed tokens are remembered for ttl.
func NewConfirmingVerifier(inner IIdentityVerifier, confirm ConfirmFunc, ttl time.Duration) IIdentityVerifier {
	return &confirmingVerifier{
		inner:     inner,
		confirm:   confirm,
		ttl:       ttl,
		now:       time.Now,
		confirmed: make(map[string]time.Time),
	}
}

func (v *confirmingVerifier) Verify(tokenString string) (*IdentityClaims, error) {
	claims, err := v.inner.Verify(tokenString)
	if err != nil {
		return nil, err
	}
	sum := sha256.Sum256([]byte(tokenString))
	key := hex.EncodeToString(sum[:])

	now := v.now()
	v.mu.Lock()
	until, ok := v.confirmed[key]
	v.mu.Unlock()
	if ok && now.Before(until) {
		return claims, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), confirmTimeout)
	defer cancel()
	if err := v.confirm(ctx, tokenString, claims); err != nil {
		log.Printf("Auth: token for %s rejected by backend: %v", claims.UserID(), err)
		return nil, fmt.Errorf("token not accepted by backend: %w", err)
	}

	v.mu.Lock()
	for k, exp := range v.confirmed {
		if !now.Before(exp) {
			delete(v.confirmed, k)
		}
	}
	v.confirmed[key] = now.Add(v.ttl)
	v.mu.Unlock()
	return claims, nil
}
