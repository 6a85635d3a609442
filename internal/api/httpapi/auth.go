package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"
	"go.uber.org/zap"
)

const (
	RoleCandidate = "candidate"
	RoleEmployer  = "employer"
)

var ErrUnauthorized = errors.New("unauthorized")

// Session is the signed-in user a request acts for.
type Session struct {
	UserID string
	Role   string
}

// Claims are the access token claims issued by the auth provider.
type Claims struct {
	Role string `json:"role"`
	jwt.StandardClaims
}

// Verifier checks HS256 access tokens signed with the shared secret.
type Verifier struct {
	secret []byte
	now    func() time.Time
}

func NewVerifier(secret string) (*Verifier, error) {
	if secret == "" {
		return nil, errors.New("empty signing key")
	}
	return &Verifier{secret: []byte(secret), now: time.Now}, nil
}

// Issue signs a token for userID. Used by tooling and tests; real sessions
// are issued by the auth provider.
func (v *Verifier) Issue(userID, role string, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: role,
		StandardClaims: jwt.StandardClaims{
			Subject:   userID,
			IssuedAt:  v.now().Unix(),
			ExpiresAt: v.now().Add(ttl).Unix(),
		},
	})
	return token.SignedString(v.secret)
}

func (v *Verifier) Verify(accessToken string) (Session, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(accessToken, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return Session{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	if claims.Subject == "" {
		return Session{}, fmt.Errorf("%w: token has no subject", ErrUnauthorized)
	}
	return Session{UserID: claims.Subject, Role: claims.Role}, nil
}

type sessionKey struct{}

func withSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFrom returns the session stored by RequireSession.
func SessionFrom(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(Session)
	return s, ok
}

// accessTokenParam is the query parameter browsers must use for websockets.
const accessTokenParam = "access_token"

// bearerToken reads the Authorization header, falling back to the
// access_token query parameter.
func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return r.URL.Query().Get(accessTokenParam)
}

// RequireSession rejects requests without a valid access token.
func (s *Server) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "authorization required")
			return
		}

		session, err := s.verifier.Verify(token)
		if err != nil {
			s.logger.Debug("rejected access token", zap.Error(err))
			writeError(w, http.StatusUnauthorized, "invalid access token")
			return
		}

		next.ServeHTTP(w, r.WithContext(withSession(r.Context(), session)))
	})
}
