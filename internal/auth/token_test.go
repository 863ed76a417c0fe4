package auth

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/otcheredev/notes-service/internal/models"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(t time.Time) *fakeClock {
	return &fakeClock{now: t}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestTokenService(t *testing.T, clock *fakeClock) *TokenService {
	t.Helper()
	s, err := NewTokenService(TokenConfig{
		Secret:    testSecret,
		Algorithm: "HS256",
		TTL:       time.Hour,
	}, WithClock(clock.Now))
	require.NoError(t, err)
	return s
}

func testIdentity(role models.Role) Identity {
	return Identity{
		Email:    "alice@acme.com",
		TenantID: uuid.New(),
		Role:     role,
		UserID:   uuid.New(),
	}
}

func signClaims(t *testing.T, method jwt.SigningMethod, key any, claims jwt.Claims) string {
	t.Helper()
	tokenStr, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return tokenStr
}

func requireKind(t *testing.T, err error, kind error) {
	t.Helper()
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrUnauthenticated), "expected unauthenticated, got %v", err)
	require.True(t, errors.Is(err, kind), "expected %v, got %v", kind, err)
}

func TestNewTokenService(t *testing.T) {
	t.Run("missing secret", func(t *testing.T) {
		s, err := NewTokenService(TokenConfig{Algorithm: "HS256"})
		require.Error(t, err)
		require.Nil(t, s)
	})

	for _, alg := range []string{"", "none", "RS256", "ES256", "HS1024"} {
		t.Run("unsupported algorithm "+alg, func(t *testing.T) {
			s, err := NewTokenService(TokenConfig{Secret: testSecret, Algorithm: alg})
			require.Error(t, err)
			require.Nil(t, s)
		})
	}

	t.Run("default ttl", func(t *testing.T) {
		s, err := NewTokenService(TokenConfig{Secret: testSecret, Algorithm: "HS512"})
		require.NoError(t, err)
		require.Equal(t, DefaultTokenTTL, s.TTL())
	})
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC))

	for _, alg := range []string{"HS256", "HS384", "HS512"} {
		for _, role := range []models.Role{models.RoleMember, models.RoleAdmin} {
			for _, ttl := range []time.Duration{0, time.Second, 5 * time.Minute, 24 * time.Hour} {
				s, err := NewTokenService(TokenConfig{Secret: testSecret, Algorithm: alg}, WithClock(clock.Now))
				require.NoError(t, err)

				id := testIdentity(role)
				tokenStr, err := s.Issue(id, ttl)
				require.NoError(t, err)

				claims, err := s.Verify(tokenStr)
				require.NoError(t, err, "alg=%s role=%s ttl=%s", alg, role, ttl)
				require.Equal(t, id, claims.Identity())
				require.Equal(t, Issuer, claims.Issuer)

				want := ttl
				if want <= 0 {
					want = DefaultTokenTTL
				}
				require.WithinDuration(t, clock.Now().Add(want), claims.ExpiresAt.Time, 0)
			}
		}
	}
}

func TestVerifyExpiry(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC))
	s := newTestTokenService(t, clock)

	tokenStr, err := s.Issue(testIdentity(models.RoleMember), 5*time.Minute)
	require.NoError(t, err)

	clock.Advance(5*time.Minute - time.Second)
	_, err = s.Verify(tokenStr)
	require.NoError(t, err)

	clock.Advance(2 * time.Second)
	_, err = s.Verify(tokenStr)
	requireKind(t, err, ErrExpired)
	require.False(t, errors.Is(err, ErrInvalidSignature))

	clock.Advance(24 * time.Hour)
	_, err = s.Verify(tokenStr)
	requireKind(t, err, ErrExpired)
}

func TestVerifyNeverExpiresEarly(t *testing.T) {
	issuedAt := time.Date(2026, 3, 1, 9, 30, 0, 700_000_000, time.UTC)
	clock := newFakeClock(issuedAt)
	s := newTestTokenService(t, clock)

	tokenStr, err := s.Issue(testIdentity(models.RoleMember), 2*time.Second)
	require.NoError(t, err)

	claims, err := s.Verify(tokenStr)
	require.NoError(t, err)
	require.False(t, claims.ExpiresAt.Time.Before(issuedAt.Add(2*time.Second)))

	clock.Advance(2*time.Second - time.Nanosecond)
	_, err = s.Verify(tokenStr)
	require.NoError(t, err)

	clock.Advance(2 * time.Second)
	_, err = s.Verify(tokenStr)
	requireKind(t, err, ErrExpired)
}

func TestVerifyInvalidSignature(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC))
	s := newTestTokenService(t, clock)
	id := testIdentity(models.RoleMember)

	validClaims := Claims{
		TenantID: id.TenantID,
		Role:     id.Role,
		UserID:   id.UserID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.Email,
			Issuer:    Issuer,
			ExpiresAt: jwt.NewNumericDate(clock.Now().Add(time.Hour)),
		},
	}

	t.Run("signed with another secret", func(t *testing.T) {
		tokenStr := signClaims(t, jwt.SigningMethodHS256, []byte("another-secret-another-secret-xx"), validClaims)
		_, err := s.Verify(tokenStr)
		requireKind(t, err, ErrInvalidSignature)
	})

	t.Run("tampered payload", func(t *testing.T) {
		tokenStr, err := s.Issue(id, 0)
		require.NoError(t, err)

		escalated := validClaims
		escalated.Role = models.RoleAdmin
		forged := signClaims(t, jwt.SigningMethodHS256, []byte("attacker"), escalated)

		parts := strings.Split(tokenStr, ".")
		forgedParts := strings.Split(forged, ".")
		tampered := parts[0] + "." + forgedParts[1] + "." + parts[2]

		_, err = s.Verify(tampered)
		requireKind(t, err, ErrInvalidSignature)
	})

	t.Run("different algorithm", func(t *testing.T) {
		tokenStr := signClaims(t, jwt.SigningMethodHS512, testSecret, validClaims)
		_, err := s.Verify(tokenStr)
		requireKind(t, err, ErrInvalidSignature)
	})

	t.Run("unsigned token", func(t *testing.T) {
		tokenStr := signClaims(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, validClaims)
		_, err := s.Verify(tokenStr)
		requireKind(t, err, ErrInvalidSignature)
	})

	t.Run("bad signature wins over expiry", func(t *testing.T) {
		expired := validClaims
		expired.ExpiresAt = jwt.NewNumericDate(clock.Now().Add(-time.Hour))
		tokenStr := signClaims(t, jwt.SigningMethodHS256, []byte("another-secret-another-secret-xx"), expired)

		_, err := s.Verify(tokenStr)
		requireKind(t, err, ErrInvalidSignature)
		require.False(t, errors.Is(err, ErrExpired))
	})
}

func TestVerifyMalformed(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC))
	s := newTestTokenService(t, clock)
	id := testIdentity(models.RoleMember)

	t.Run("garbage", func(t *testing.T) {
		for _, tokenStr := range []string{"", "not-a-token", "a.b.c", "a.b"} {
			_, err := s.Verify(tokenStr)
			requireKind(t, err, ErrMalformedToken)
		}
	})

	t.Run("missing expiry", func(t *testing.T) {
		tokenStr := signClaims(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{
			"sub":       id.Email,
			"iss":       Issuer,
			"tenant_id": id.TenantID.String(),
			"role":      string(id.Role),
			"user_id":   id.UserID.String(),
		})
		_, err := s.Verify(tokenStr)
		requireKind(t, err, ErrMalformedToken)
	})

	t.Run("unknown role", func(t *testing.T) {
		tokenStr := signClaims(t, jwt.SigningMethodHS256, testSecret, Claims{
			TenantID: id.TenantID,
			Role:     models.Role("owner"),
			UserID:   id.UserID,
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   id.Email,
				Issuer:    Issuer,
				ExpiresAt: jwt.NewNumericDate(clock.Now().Add(time.Hour)),
			},
		})
		_, err := s.Verify(tokenStr)
		requireKind(t, err, ErrMalformedToken)
	})

	t.Run("foreign issuer", func(t *testing.T) {
		tokenStr := signClaims(t, jwt.SigningMethodHS256, testSecret, Claims{
			TenantID: id.TenantID,
			Role:     id.Role,
			UserID:   id.UserID,
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   id.Email,
				Issuer:    "someone-else",
				ExpiresAt: jwt.NewNumericDate(clock.Now().Add(time.Hour)),
			},
		})
		_, err := s.Verify(tokenStr)
		requireKind(t, err, ErrMalformedToken)
	})
}

func TestIssueIncompleteIdentity(t *testing.T) {
	s := newTestTokenService(t, newFakeClock(time.Now()))

	tests := []struct {
		name   string
		mutate func(*Identity)
	}{
		{name: "no email", mutate: func(id *Identity) { id.Email = "" }},
		{name: "no tenant", mutate: func(id *Identity) { id.TenantID = uuid.Nil }},
		{name: "no user", mutate: func(id *Identity) { id.UserID = uuid.Nil }},
		{name: "unknown role", mutate: func(id *Identity) { id.Role = "root" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := testIdentity(models.RoleAdmin)
			tt.mutate(&id)
			tokenStr, err := s.Issue(id, time.Minute)
			require.Error(t, err)
			require.Empty(t, tokenStr)
		})
	}
}
