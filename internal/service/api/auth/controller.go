package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/streamgrid/streamgrid/internal/domain"
	"github.com/streamgrid/streamgrid/internal/service/api/httpx"
)

const (
	accessCookie  = "accessToken"
	refreshCookie = "refreshToken"
)

type Opts struct {
	Logger       *zap.Logger
	CookieDomain string
	AccessTTL    time.Duration
	RefreshTTL   time.Duration
}

type Server struct {
	log *zap.Logger
	uc  *Usecase
	o   Opts
}

func NewServer(uc *Usecase, o Opts) *Server {
	log := o.Logger
	if log == nil {
		log, _ = zap.NewProduction()
	}
	return &Server{log: log, uc: uc, o: o}
}

// Register mounts the session routes. Logout and change-password sit
// behind the auth gate; the rest are reachable anonymously.
func (s *Server) Register(rg *gin.RouterGroup, required gin.HandlerFunc) {
	rg.POST("/register", s.register)
	rg.POST("/login", s.login)
	rg.POST("/refresh-token", s.refresh)
	rg.POST("/logout", required, s.logout)
	rg.PUT("/change-password", required, s.changePassword)
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Password string `json:"password"`
}

func (s *Server) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Fail(c, domain.ErrValidation)
		return
	}
	u, err := s.uc.Register(c.Request.Context(), req.Username, req.Email, req.FullName, req.Password)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	s.log.Info("user registered", zap.String("username", u.Username))
	httpx.OK(c, http.StatusCreated, u.Public(), "user registered")
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionPayload struct {
	User         any    `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Fail(c, domain.ErrValidation)
		return
	}
	login := req.Username
	if login == "" {
		login = req.Email
	}
	u, access, refresh, err := s.uc.Login(c.Request.Context(), login, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			s.log.Warn("login rejected", zap.String("login", login))
		}
		httpx.Fail(c, err)
		return
	}
	s.setSessionCookies(c, access, refresh)
	s.log.Info("user logged in", zap.String("username", u.Username))
	httpx.OK(c, http.StatusOK, sessionPayload{User: u.Public(), AccessToken: access, RefreshToken: refresh}, "logged in")
}

// refresh accepts the token from the httpOnly cookie or, for non-browser
// clients, from the request body.
func (s *Server) refresh(c *gin.Context) {
	raw, _ := c.Cookie(refreshCookie)
	if raw == "" {
		var body struct {
			RefreshToken string `json:"refreshToken"`
		}
		_ = c.ShouldBindJSON(&body)
		raw = body.RefreshToken
	}
	access, refresh, err := s.uc.Refresh(c.Request.Context(), raw)
	if err != nil {
		s.clearSessionCookies(c)
		httpx.Fail(c, err)
		return
	}
	s.setSessionCookies(c, access, refresh)
	httpx.OK(c, http.StatusOK, sessionPayload{AccessToken: access, RefreshToken: refresh}, "session refreshed")
}

func (s *Server) logout(c *gin.Context) {
	u := MustCurrentUser(c)
	if err := s.uc.Logout(c.Request.Context(), u.ID); err != nil {
		httpx.Fail(c, err)
		return
	}
	s.clearSessionCookies(c)
	s.log.Info("user logged out", zap.String("username", u.Username))
	httpx.OK(c, http.StatusOK, nil, "logged out")
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

func (s *Server) changePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Fail(c, domain.ErrValidation)
		return
	}
	u := MustCurrentUser(c)
	if err := s.uc.ChangePassword(c.Request.Context(), u.ID, req.OldPassword, req.NewPassword); err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, http.StatusOK, nil, "password changed")
}

// Session cookies are always httpOnly and Secure. Neither is
// configurable: a deployment that wants plaintext cookies is a
// misconfigured deployment.
func (s *Server) setSessionCookies(c *gin.Context, access, refresh string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(accessCookie, access, int(s.o.AccessTTL.Seconds()), "/", s.o.CookieDomain, true, true)
	c.SetCookie(refreshCookie, refresh, int(s.o.RefreshTTL.Seconds()), "/", s.o.CookieDomain, true, true)
}

func (s *Server) clearSessionCookies(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(accessCookie, "", -1, "/", s.o.CookieDomain, true, true)
	c.SetCookie(refreshCookie, "", -1, "/", s.o.CookieDomain, true, true)
}
