package httpserver

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const (
	adminCookie     = "admin_token"
	stateCookie     = "oauth_state"
	adminRole       = "admin"
	apiTokenTTL     = 30 * time.Minute
	sessionTokenTTL = 6 * time.Hour
	googleUserInfo  = "https://www.googleapis.com/oauth2/v3/userinfo"
)

type adminClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

func issueAdminToken(secret []byte, email string, dur time.Duration) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(dur)
	claims := adminClaims{
		Email: email,
		Role:  adminRole,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			Issuer:    "kitos",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	return tok, exp, err
}

func (s *Server) verifyAdminToken(tok string) (string, error) {
	claims := &adminClaims{}
	parsed, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.adminSecret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return "", err
	}
	if !parsed.Valid || claims.Role != adminRole || claims.Email == "" {
		return "", errors.New("invalid claims")
	}
	email := strings.ToLower(claims.Email)
	if _, ok := s.adminAllowed[email]; !ok {
		return "", errors.New("not allowed")
	}
	return email, nil
}

func (s *Server) readAdminToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	if v, err := c.Cookie(adminCookie); err == nil {
		return v
	}
	return ""
}

// RequireAdmin accepts a Bearer token or the admin cookie.
func (s *Server) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		tok := s.readAdminToken(c)
		if tok == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		email, err := s.verifyAdminToken(tok)
		if err != nil {
			log.Debug().Err(err).Msg("admin token rejected")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Set("admin_email", email)
		c.Next()
	}
}

func (s *Server) handleAdminLogin(c *gin.Context) {
	if s.adminAPIKey == "" {
		log.Error().Msg("ADMIN_API_KEY missing")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "admin login not configured"})
		return
	}
	key := c.GetHeader("X-Admin-Key")
	if key == "" || subtle.ConstantTimeCompare([]byte(key), []byte(s.adminAPIKey)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	var req struct {
		Email string `json:"email" binding:"omitempty,email"`
	}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			writeBindError(c, err)
			return
		}
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" && len(s.adminAllowed) == 1 {
		for k := range s.adminAllowed {
			email = k
		}
	}
	if _, ok := s.adminAllowed[email]; !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	tok, exp, err := issueAdminToken(s.adminSecret, email, apiTokenTTL)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": tok, "exp": exp.Unix(), "email": email})
}

func (s *Server) handleAdminLogout(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(adminCookie, "", -1, "/", "", s.secureCookies(c), true)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) secureCookies(c *gin.Context) bool {
	return c.Request.TLS != nil || strings.EqualFold(c.GetHeader("X-Forwarded-Proto"), "https")
}

func (s *Server) handleGoogleLogin(c *gin.Context) {
	if s.oauthCfg == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "oauth not configured"})
		return
	}
	state := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(stateCookie, state, 300, "/", "", s.secureCookies(c), true)
	c.Redirect(http.StatusFound, s.oauthCfg.AuthCodeURL(state, oauth2.AccessTypeOnline))
}

func (s *Server) handleGoogleCallback(c *gin.Context) {
	if s.oauthCfg == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "oauth not configured"})
		return
	}
	state, _ := c.Cookie(stateCookie)
	if state == "" || state != c.Query("state") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid oauth state"})
		return
	}
	ctx := c.Request.Context()
	tok, err := s.oauthCfg.Exchange(ctx, c.Query("code"))
	if err != nil {
		log.Error().Err(err).Msg("exchange oauth")
		c.JSON(http.StatusBadRequest, gin.H{"error": "oauth exchange failed"})
		return
	}
	resp, err := s.oauthCfg.Client(ctx, tok).Get(googleUserInfo)
	if err != nil {
		log.Error().Err(err).Msg("userinfo")
		c.JSON(http.StatusBadGateway, gin.H{"error": "userinfo failed"})
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Error().Int("status", resp.StatusCode).Msg("userinfo")
		c.JSON(http.StatusBadGateway, gin.H{"error": "userinfo failed"})
		return
	}
	var info struct {
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err := json.Unmarshal(body, &info); err != nil || info.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email missing"})
		return
	}
	email := strings.ToLower(info.Email)
	if _, ok := s.adminAllowed[email]; !ok || !info.EmailVerified {
		log.Warn().Str("email", email).Msg("google login for non-admin")
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	adminTok, _, err := issueAdminToken(s.adminSecret, email, sessionTokenTTL)
	if err != nil {
		writeError(c, err)
		return
	}
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(stateCookie, "", -1, "/", "", s.secureCookies(c), true)
	c.SetCookie(adminCookie, adminTok, int(sessionTokenTTL.Seconds()), "/", "", s.secureCookies(c), true)
	c.Redirect(http.StatusFound, s.adminRedirect)
}
