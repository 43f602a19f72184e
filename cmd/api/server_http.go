package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	authcore "github.com/streamgrid/streamgrid/internal/auth"
	config "github.com/streamgrid/streamgrid/internal/config/api"
	"github.com/streamgrid/streamgrid/internal/media"
	"github.com/streamgrid/streamgrid/internal/obs"
	"github.com/streamgrid/streamgrid/internal/repository/kafka"
	pg "github.com/streamgrid/streamgrid/internal/repository/postgres"
	authsvc "github.com/streamgrid/streamgrid/internal/service/api/auth"
	channelsvc "github.com/streamgrid/streamgrid/internal/service/api/channel"
	playlistsvc "github.com/streamgrid/streamgrid/internal/service/api/playlist"
	usersvc "github.com/streamgrid/streamgrid/internal/service/api/user"
	videosvc "github.com/streamgrid/streamgrid/internal/service/api/video"
)

func buildHTTPServer(ctx context.Context, cfg *config.Config, logger *zap.Logger, db *pg.DB, prod *kafka.Producer) (*http.Server, error) {
	if cfg.App.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	users := pg.NewUserRepo(db)
	videos := pg.NewVideoRepo(db)
	subs := pg.NewSubscriptionRepo(db)
	hist := pg.NewHistoryRepo(db)
	playlists := pg.NewPlaylistRepo(db)
	events := kafka.NewWatchEventsKafka(prod)
	store, err := media.NewS3Store(ctx, cfg.Media)
	if err != nil {
		return nil, err
	}

	codec := authcore.NewCodec(authcore.CodecConfig{
		AccessSecret:  []byte(cfg.Auth.AccessSecret),
		AccessTTL:     cfg.Auth.AccessTTL,
		RefreshSecret: []byte(cfg.Auth.RefreshSecret),
		RefreshTTL:    cfg.Auth.RefreshTTL,
	})
	hasher := authcore.NewPasswordHasher(cfg.Auth.BcryptCost)

	authUC := authsvc.NewUsecase(users, codec, hasher)
	userUC := usersvc.NewUsecase(users, hist, store)
	videoUC := videosvc.NewUsecase(videos, events, store, nil)
	channelUC := channelsvc.NewUsecase(users, subs, videoUC)
	playlistUC := playlistsvc.NewUsecase(playlists, videoUC)

	required := authsvc.RequireAuth(authUC)
	optional := authsvc.OptionalAuth(authUC)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(logger))
	r.Use(obs.HTTPMetrics())
	r.Use(cors(cfg.Server.CORSOrigin))

	r.GET("/metrics", gin.WrapH(obs.MetricsHandler()))
	r.GET("/healthz", func(c *gin.Context) {
		hctx, cancel := context.WithTimeout(c.Request.Context(), 500*time.Millisecond)
		defer cancel()
		if err := db.Pool.Ping(hctx); err != nil {
			c.String(http.StatusServiceUnavailable, "unhealthy: db")
			return
		}
		c.String(http.StatusOK, "ok")
	})

	v1 := r.Group("/api/v1")
	authsvc.NewServer(authUC, authsvc.Opts{
		Logger:       logger,
		CookieDomain: cfg.Auth.CookieDomain,
		AccessTTL:    cfg.Auth.AccessTTL,
		RefreshTTL:   cfg.Auth.RefreshTTL,
	}).Register(v1.Group("/users"), required)
	usersvc.NewServer(userUC, logger).Register(v1.Group("/users"), required)
	videosvc.NewServer(videoUC, logger).Register(v1.Group("/videos"), required)
	channelsvc.NewServer(channelUC, logger).Register(v1.Group("/subscriptions"), v1.Group("/channels"), required, optional)
	playlistsvc.NewServer(playlistUC, logger).Register(v1.Group("/playlists"), required)

	var handler http.Handler = r
	if cfg.OTEL.Enable {
		handler = otelhttp.NewHandler(handler, "http.api")
	}

	return &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           handler,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}, nil
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log := obs.WithTrace(c.Request.Context(), logger)
		log.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)))
	}
}

func cors(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
