package user

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/streamgrid/streamgrid/internal/domain"
	"github.com/streamgrid/streamgrid/internal/service/api/auth"
	"github.com/streamgrid/streamgrid/internal/service/api/httpx"
)

type Server struct {
	log *zap.Logger
	uc  *Usecase
}

func NewServer(uc *Usecase, log *zap.Logger) *Server {
	if log == nil {
		log, _ = zap.NewProduction()
	}
	return &Server{log: log, uc: uc}
}

// Register mounts the profile routes. Everything here requires a session.
func (s *Server) Register(rg *gin.RouterGroup, required gin.HandlerFunc) {
	rg.GET("/current-user", required, s.currentUser)
	rg.PUT("/update-account-details", required, s.updateDetails)
	rg.POST("/avatar-upload-url", required, s.avatarUploadURL)
	rg.POST("/cover-upload-url", required, s.coverUploadURL)
	rg.PUT("/avatar", required, s.commitAvatar)
	rg.PUT("/cover-image", required, s.commitCover)
	rg.GET("/watch-history", required, s.watchHistory)
}

func (s *Server) currentUser(c *gin.Context) {
	u := auth.MustCurrentUser(c)
	httpx.OK(c, http.StatusOK, u.Public(), "current user")
}

type updateDetailsRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

func (s *Server) updateDetails(c *gin.Context) {
	var req updateDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Fail(c, domain.ErrValidation)
		return
	}
	u := auth.MustCurrentUser(c)
	updated, err := s.uc.UpdateDetails(c.Request.Context(), u.ID, req.FullName, req.Email)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	s.log.Info("account details updated", zap.String("username", updated.Username))
	httpx.OK(c, http.StatusOK, updated.Public(), "account details updated")
}

func (s *Server) avatarUploadURL(c *gin.Context) {
	target, err := s.uc.AvatarUploadURL(c.Request.Context())
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, http.StatusOK, target, "upload url issued")
}

func (s *Server) coverUploadURL(c *gin.Context) {
	target, err := s.uc.CoverUploadURL(c.Request.Context())
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, http.StatusOK, target, "upload url issued")
}

type commitMediaRequest struct {
	Key string `json:"key"`
}

func (s *Server) commitAvatar(c *gin.Context) {
	var req commitMediaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Fail(c, domain.ErrValidation)
		return
	}
	u := auth.MustCurrentUser(c)
	updated, err := s.uc.CommitAvatar(c.Request.Context(), u.ID, req.Key)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, http.StatusOK, updated.Public(), "avatar updated")
}

func (s *Server) commitCover(c *gin.Context) {
	var req commitMediaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Fail(c, domain.ErrValidation)
		return
	}
	u := auth.MustCurrentUser(c)
	updated, err := s.uc.CommitCover(c.Request.Context(), u.ID, req.Key)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, http.StatusOK, updated.Public(), "cover image updated")
}

func (s *Server) watchHistory(c *gin.Context) {
	u := auth.MustCurrentUser(c)
	limit, _ := strconv.Atoi(c.Query("limit"))
	entries, err := s.uc.WatchHistory(c.Request.Context(), u.ID, limit)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, http.StatusOK, entries, "watch history")
}
