package channel

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
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

// Register mounts subscription mutations under subs and the public
// channel page under channels.
func (s *Server) Register(subs, channels *gin.RouterGroup, required, optional gin.HandlerFunc) {
	subs.POST("/:channelID", required, s.subscribe)
	subs.DELETE("/:channelID", required, s.unsubscribe)
	channels.GET("/:username", optional, s.profile)
}

func channelID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("channelID"))
	if err != nil {
		httpx.Fail(c, domain.ErrValidation)
		return uuid.Nil, false
	}
	return id, true
}

func (s *Server) subscribe(c *gin.Context) {
	id, ok := channelID(c)
	if !ok {
		return
	}
	u := auth.MustCurrentUser(c)
	if err := s.uc.Subscribe(c.Request.Context(), u.ID, id); err != nil {
		httpx.Fail(c, err)
		return
	}
	s.log.Info("subscribed",
		zap.String("subscriber", u.Username),
		zap.String("channelID", id.String()))
	httpx.OK(c, http.StatusOK, nil, "subscribed")
}

func (s *Server) unsubscribe(c *gin.Context) {
	id, ok := channelID(c)
	if !ok {
		return
	}
	u := auth.MustCurrentUser(c)
	if err := s.uc.Unsubscribe(c.Request.Context(), u.ID, id); err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, http.StatusOK, nil, "unsubscribed")
}

func (s *Server) profile(c *gin.Context) {
	var viewerID *uuid.UUID
	if u, ok := auth.CurrentUser(c); ok {
		viewerID = &u.ID
	}
	page, err := s.uc.Profile(c.Request.Context(), c.Param("username"), viewerID)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, http.StatusOK, page, "channel")
}
