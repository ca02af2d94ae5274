package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/movieshop/internal/audit"
	"github.com/smallbiznis/movieshop/internal/auth"
	authdomain "github.com/smallbiznis/movieshop/internal/auth/domain"
	"github.com/smallbiznis/movieshop/internal/auth/session"
	"github.com/smallbiznis/movieshop/internal/authorization"
	"github.com/smallbiznis/movieshop/internal/config"
	"github.com/smallbiznis/movieshop/internal/entitlement"
	"github.com/smallbiznis/movieshop/internal/events"
	"github.com/smallbiznis/movieshop/internal/genre"
	genredomain "github.com/smallbiznis/movieshop/internal/genre/domain"
	"github.com/smallbiznis/movieshop/internal/movie"
	moviedomain "github.com/smallbiznis/movieshop/internal/movie/domain"
	"github.com/smallbiznis/movieshop/internal/moviegenre"
	moviegenredomain "github.com/smallbiznis/movieshop/internal/moviegenre/domain"
	"github.com/smallbiznis/movieshop/internal/observability"
	obslogger "github.com/smallbiznis/movieshop/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/movieshop/internal/observability/metrics"
	obstracing "github.com/smallbiznis/movieshop/internal/observability/tracing"
	"github.com/smallbiznis/movieshop/internal/payment"
	"github.com/smallbiznis/movieshop/internal/profile"
	profiledomain "github.com/smallbiznis/movieshop/internal/profile/domain"
	"github.com/smallbiznis/movieshop/internal/purchase"
	purchasedomain "github.com/smallbiznis/movieshop/internal/purchase/domain"
	"github.com/smallbiznis/movieshop/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	authorization.Module,
	audit.Module,
	events.Module,
	auth.Module,
	ratelimit.Module,
	payment.Module,
	entitlement.Module,
	genre.Module,
	movie.Module,
	moviegenre.Module,
	profile.Module,
	purchase.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(httpMetrics.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine        *gin.Engine
	cfg           config.Config
	log           *zap.Logger
	authsvc       authdomain.Service
	sessions      *session.Manager
	authzSvc      authorization.Service
	loginLimiter  *ratelimit.LoginLimiter
	movieSvc      moviedomain.Service
	genreSvc      genredomain.Service
	movieGenreSvc moviegenredomain.Service
	profileSvc    profiledomain.Service
	purchaseSvc   purchasedomain.Service
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	Log           *zap.Logger
	Authsvc       authdomain.Service
	Sessions      *session.Manager
	AuthzSvc      authorization.Service
	LoginLimiter  *ratelimit.LoginLimiter `optional:"true"`
	MovieSvc      moviedomain.Service
	GenreSvc      genredomain.Service
	MovieGenreSvc moviegenredomain.Service
	ProfileSvc    profiledomain.Service
	PurchaseSvc   purchasedomain.Service
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		log:           p.Log.Named("http.server"),
		authsvc:       p.Authsvc,
		sessions:      p.Sessions,
		authzSvc:      p.AuthzSvc,
		loginLimiter:  p.LoginLimiter,
		movieSvc:      p.MovieSvc,
		genreSvc:      p.GenreSvc,
		movieGenreSvc: p.MovieGenreSvc,
		profileSvc:    p.ProfileSvc,
		purchaseSvc:   p.PurchaseSvc,
	}

	s.registerAuthRoutes()
	s.registerAdminRoutes()
	s.registerCustomerRoutes()

	return s
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/auth")

	auth.POST("/register", s.Register)
	auth.POST("/login", s.Login)
	auth.POST("/logout", s.Logout)
	auth.GET("/me", s.AuthRequired(), s.Me)
	auth.POST("/change-password", s.AuthRequired(), s.ChangePassword)
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/admin")
	admin.Use(s.AuthRequired())
	admin.Use(s.RequireRole(authorization.RoleAdmin))

	// -------- Movies --------
	admin.GET("/movies", s.authorize(authorization.ObjectMovie, authorization.ActionView), s.AdminListMovies)
	admin.POST("/movies", s.authorize(authorization.ObjectMovie, authorization.ActionManage), s.CreateMovie)
	admin.GET("/movies/:id", s.authorize(authorization.ObjectMovie, authorization.ActionView), s.AdminGetMovie)
	admin.PUT("/movies/:id", s.authorize(authorization.ObjectMovie, authorization.ActionManage), s.UpdateMovie)
	admin.DELETE("/movies/:id", s.authorize(authorization.ObjectMovie, authorization.ActionManage), s.DeleteMovie)
	admin.POST("/movies/:id/genres/:genreId", s.authorize(authorization.ObjectMovie, authorization.ActionManage), s.AddGenreToMovie)
	admin.DELETE("/movies/:id/genres/:genreId", s.authorize(authorization.ObjectMovie, authorization.ActionManage), s.RemoveGenreFromMovie)

	// -------- Genres --------
	admin.GET("/genres", s.authorize(authorization.ObjectGenre, authorization.ActionView), s.ListGenres)
	admin.POST("/genres", s.authorize(authorization.ObjectGenre, authorization.ActionManage), s.CreateGenre)
	admin.GET("/genres/:id", s.authorize(authorization.ObjectGenre, authorization.ActionView), s.GetGenre)
	admin.PUT("/genres/:id", s.authorize(authorization.ObjectGenre, authorization.ActionManage), s.UpdateGenre)
	admin.DELETE("/genres/:id", s.authorize(authorization.ObjectGenre, authorization.ActionManage), s.DeleteGenre)
}

func (s *Server) registerCustomerRoutes() {
	r := s.engine.Group("/")
	r.Use(s.AuthRequired())
	r.Use(s.RequireRole(authorization.RoleConnoisseur))

	profile := r.Group("/profile", s.authorize(authorization.ObjectProfile, authorization.ActionManage))
	{
		profile.GET("", s.GetProfile)
		profile.POST("", s.CreateProfile)
		profile.PUT("", s.UpdateProfile)
		profile.DELETE("", s.DeleteProfile)
	}

	shop := r.Group("/", s.ProfileRequired())
	{
		shop.GET("/home", s.authorize(authorization.ObjectEntitlement, authorization.ActionView), s.Home)

		shop.GET("/movies", s.authorize(authorization.ObjectMovie, authorization.ActionView), s.ListMovies)
		shop.GET("/movies/:id", s.authorize(authorization.ObjectMovie, authorization.ActionView), s.GetMovie)
		shop.GET("/movies/:id/pay", s.authorize(authorization.ObjectEntitlement, authorization.ActionBuy), s.QuoteMovie)
		shop.POST("/movies/:id/pay", s.authorize(authorization.ObjectEntitlement, authorization.ActionBuy), s.PayMovie)
		shop.POST("/movies/:id/watch", s.authorize(authorization.ObjectEntitlement, authorization.ActionWatch), s.WatchMovie)

		shop.GET("/genres", s.authorize(authorization.ObjectGenre, authorization.ActionView), s.ListGenres)
		shop.GET("/genres/:id/movies", s.authorize(authorization.ObjectGenre, authorization.ActionView), s.ListMoviesByGenre)
	}
}
