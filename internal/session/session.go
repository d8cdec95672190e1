// Package session resolves who is calling: a verified bearer token names the
// user and a signed cookie carries the guest session id.
package session

import (
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"storefront/internal/domain"
)

const (
	CookieName = "storefront_session"

	sessionIDKey  = "sid"
	mergedUserKey = "merged_user"

	ctxSessionKey = "storefront.session"
	ctxClaimsKey  = "storefront.claims"
	ctxStateKey   = "storefront.session_state"
)

type Options struct {
	Keys      Keys
	Secure    bool
	JWTSecret string
	Logger    *log.Logger
}

// Manager issues the session cookie and verifies bearer tokens.
type Manager struct {
	store     *sessions.CookieStore
	jwtSecret []byte
	logger    *log.Logger
}

func NewManager(opts Options) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	pairs := [][]byte{opts.Keys.Auth}
	if len(opts.Keys.Enc) > 0 {
		pairs = append(pairs, opts.Keys.Enc)
	}
	store := sessions.NewCookieStore(pairs...)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(30 * 24 * time.Hour / time.Second),
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	var secret []byte
	if opts.JWTSecret != "" {
		secret = []byte(opts.JWTSecret)
	}
	return &Manager{store: store, jwtSecret: secret, logger: logger}
}

// Middleware attaches the caller's session id and, when a valid bearer token
// is present, its claims. An invalid token aborts with 401.
func (m *Manager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw, ok := bearerToken(c.GetHeader("Authorization")); ok && m.jwtSecret != nil {
			claims, err := ParseToken(m.jwtSecret, raw)
			if err != nil {
				m.logger.Printf("session: reject bearer token: %v", err)
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
				return
			}
			c.Set(ctxClaimsKey, claims)
		}

		sess, err := m.store.Get(c.Request, CookieName)
		if err != nil {
			// Undecodable cookies (rotated keys, tampering) start a fresh session.
			m.logger.Printf("session: discard cookie: %v", err)
		}
		sid, _ := sess.Values[sessionIDKey].(string)
		if sid == "" {
			sid = uuid.NewString()
			sess.Values[sessionIDKey] = sid
			if err := sess.Save(c.Request, c.Writer); err != nil {
				m.logger.Printf("session: save cookie: %v", err)
			}
		}
		c.Set(ctxSessionKey, sid)
		c.Set(ctxStateKey, sess)
		c.Next()
	}
}

// ClaimsFrom returns the verified bearer claims, if any.
func ClaimsFrom(c *gin.Context) (*Claims, bool) {
	v, ok := c.Get(ctxClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*Claims)
	return claims, ok
}

// SessionID returns the guest session id assigned by the middleware.
func SessionID(c *gin.Context) string {
	return c.GetString(ctxSessionKey)
}

// Identity resolves the cart identity for the request, preferring the user.
func Identity(c *gin.Context) (domain.Identity, error) {
	var userID string
	if claims, ok := ClaimsFrom(c); ok {
		userID = claims.UserID()
	}
	return domain.ResolveIdentity(userID, SessionID(c))
}

// PendingAdopt reports whether the session's guest cart has not yet been
// merged into the authenticated user's cart.
func (m *Manager) PendingAdopt(c *gin.Context) (sessionID, userID string, ok bool) {
	claims, hasUser := ClaimsFrom(c)
	sess, hasSess := state(c)
	if !hasUser || !hasSess {
		return "", "", false
	}
	merged, _ := sess.Values[mergedUserKey].(string)
	if merged == claims.UserID() {
		return "", "", false
	}
	return SessionID(c), claims.UserID(), true
}

// MarkAdopted records that the session's guest cart now belongs to userID.
func (m *Manager) MarkAdopted(c *gin.Context, userID string) error {
	sess, ok := state(c)
	if !ok {
		return nil
	}
	sess.Values[mergedUserKey] = userID
	return sess.Save(c.Request, c.Writer)
}

func state(c *gin.Context) (*sessions.Session, bool) {
	v, ok := c.Get(ctxStateKey)
	if !ok {
		return nil, false
	}
	sess, ok := v.(*sessions.Session)
	return sess, ok
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(header[len(prefix):]), true
}
