package video

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

func (s *Server) Register(rg *gin.RouterGroup, required gin.HandlerFunc) {
	rg.POST("", required, s.publish)
	rg.GET("/:id", s.get)
	rg.POST("/:id/view", required, s.recordView)
}

type publishRequest struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	DurationSeconds int    `json:"durationSeconds"`
}

func (s *Server) publish(c *gin.Context) {
	var req publishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Fail(c, domain.ErrValidation)
		return
	}
	u := auth.MustCurrentUser(c)
	draft, err := s.uc.Publish(c.Request.Context(), u.ID, req.Title, req.Description, req.DurationSeconds)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	s.log.Info("video published",
		zap.String("videoID", draft.ID.String()),
		zap.String("owner", u.Username))
	httpx.OK(c, http.StatusCreated, draft, "video published")
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpx.Fail(c, domain.ErrValidation)
		return uuid.Nil, false
	}
	return id, true
}

func (s *Server) get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	v, err := s.uc.Get(c.Request.Context(), id)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, http.StatusOK, v, "video")
}

func (s *Server) recordView(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	u := auth.MustCurrentUser(c)
	if err := s.uc.RecordView(c.Request.Context(), u.ID, id); err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, http.StatusAccepted, nil, "view recorded")
}
