package playlist

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
	rg.POST("", required, s.create)
	rg.GET("", required, s.list)
	rg.GET("/:id", required, s.get)
	rg.PUT("/:id", required, s.update)
	rg.DELETE("/:id", required, s.remove)
	rg.POST("/:id/videos/:videoID", required, s.addVideo)
	rg.DELETE("/:id/videos/:videoID", required, s.removeVideo)
}

type playlistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func pathUUID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		httpx.Fail(c, domain.ErrValidation)
		return uuid.Nil, false
	}
	return id, true
}

func (s *Server) create(c *gin.Context) {
	var req playlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Fail(c, domain.ErrValidation)
		return
	}
	u := auth.MustCurrentUser(c)
	p, err := s.uc.Create(c.Request.Context(), u.ID, req.Name, req.Description)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	s.log.Info("playlist created",
		zap.String("playlistID", p.ID.String()),
		zap.String("owner", u.Username))
	httpx.OK(c, http.StatusCreated, p, "playlist created")
}

func (s *Server) list(c *gin.Context) {
	u := auth.MustCurrentUser(c)
	ps, err := s.uc.ListByOwner(c.Request.Context(), u.ID)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, http.StatusOK, ps, "playlists")
}

func (s *Server) get(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	d, err := s.uc.Get(c.Request.Context(), id)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, http.StatusOK, d, "playlist")
}

func (s *Server) update(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req playlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Fail(c, domain.ErrValidation)
		return
	}
	u := auth.MustCurrentUser(c)
	p, err := s.uc.Update(c.Request.Context(), u.ID, id, req.Name, req.Description)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, http.StatusOK, p, "playlist updated")
}

func (s *Server) remove(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	u := auth.MustCurrentUser(c)
	if err := s.uc.Delete(c.Request.Context(), u.ID, id); err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, http.StatusOK, nil, "playlist deleted")
}

func (s *Server) addVideo(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	videoID, ok := pathUUID(c, "videoID")
	if !ok {
		return
	}
	u := auth.MustCurrentUser(c)
	if err := s.uc.AddVideo(c.Request.Context(), u.ID, id, videoID); err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, http.StatusOK, nil, "video added")
}

func (s *Server) removeVideo(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	videoID, ok := pathUUID(c, "videoID")
	if !ok {
		return
	}
	u := auth.MustCurrentUser(c)
	if err := s.uc.RemoveVideo(c.Request.Context(), u.ID, id, videoID); err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, http.StatusOK, nil, "video removed")
}
