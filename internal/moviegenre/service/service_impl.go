package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/movieshop/internal/audit/domain"
	"github.com/smallbiznis/movieshop/internal/clock"
	genredomain "github.com/smallbiznis/movieshop/internal/genre/domain"
	moviedomain "github.com/smallbiznis/movieshop/internal/movie/domain"
	"github.com/smallbiznis/movieshop/internal/moviegenre/domain"
	"github.com/smallbiznis/movieshop/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	Repo      domain.Repository
	MovieRepo moviedomain.Repository
	GenreRepo genredomain.Repository
	AuditSvc  auditdomain.Service `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	repo      domain.Repository
	movieRepo moviedomain.Repository
	genreRepo genredomain.Repository
	auditSvc  auditdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("moviegenre.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		repo:      p.Repo,
		movieRepo: p.MovieRepo,
		genreRepo: p.GenreRepo,
		auditSvc:  p.AuditSvc,
	}
}

func (s *Service) AddGenreToMovie(ctx context.Context, movieID, genreID string) error {
	mID, gID, err := parsePair(movieID, genreID)
	if err != nil {
		return err
	}

	added := false
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.ensureBoth(ctx, tx, mID, gID); err != nil {
			return err
		}

		exists, err := s.repo.Exists(ctx, tx, mID, gID)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}

		err = s.repo.Insert(ctx, tx, &domain.MovieGenre{
			ID:        s.genID.Generate(),
			MovieID:   mID,
			GenreID:   gID,
			CreatedAt: s.clock.Now(),
		})
		if db.IsDuplicateKeyErr(err) {
			return nil
		}
		if err != nil {
			return err
		}
		added = true
		return nil
	})
	if err != nil {
		return err
	}

	if added {
		s.emitAudit(ctx, auditdomain.ActionMovieGenreAdd, mID, gID)
	}
	return nil
}

func (s *Service) RemoveGenreFromMovie(ctx context.Context, movieID, genreID string) error {
	mID, gID, err := parsePair(movieID, genreID)
	if err != nil {
		return err
	}

	removed, err := s.repo.Delete(ctx, s.db, mID, gID)
	if err != nil {
		return err
	}
	if removed > 0 {
		s.emitAudit(ctx, auditdomain.ActionMovieGenreRemove, mID, gID)
	}
	return nil
}

func (s *Service) ListGenresForMovie(ctx context.Context, movieID string) ([]genredomain.Response, error) {
	mID, err := snowflake.ParseString(strings.TrimSpace(movieID))
	if err != nil || mID <= 0 {
		return nil, domain.ErrInvalidID
	}
	m, err := s.movieRepo.FindByID(ctx, s.db, mID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.ErrMovieNotFound
	}

	byMovie, err := s.repo.ListGenres(ctx, s.db, []snowflake.ID{mID})
	if err != nil {
		return nil, err
	}
	genres := byMovie[mID]
	resp := make([]genredomain.Response, 0, len(genres))
	for i := range genres {
		resp = append(resp, genredomain.ToResponse(&genres[i]))
	}
	return resp, nil
}

func (s *Service) ensureBoth(ctx context.Context, tx *gorm.DB, movieID, genreID snowflake.ID) error {
	m, err := s.movieRepo.FindByID(ctx, tx, movieID)
	if err != nil {
		return err
	}
	if m == nil {
		return domain.ErrMovieNotFound
	}
	g, err := s.genreRepo.WithTrx(tx).FindOne(ctx, &genredomain.Genre{ID: genreID})
	if err != nil {
		return err
	}
	if g == nil {
		return domain.ErrGenreNotFound
	}
	return nil
}

func (s *Service) emitAudit(ctx context.Context, action string, movieID, genreID snowflake.ID) {
	if s.auditSvc == nil {
		return
	}
	_ = s.auditSvc.AuditLog(ctx, action, "movie", movieID.String(), map[string]any{
		"genre_id": genreID.String(),
	})
}

func parsePair(movieID, genreID string) (snowflake.ID, snowflake.ID, error) {
	mID, err := snowflake.ParseString(strings.TrimSpace(movieID))
	if err != nil || mID <= 0 {
		return 0, 0, domain.ErrInvalidID
	}
	gID, err := snowflake.ParseString(strings.TrimSpace(genreID))
	if err != nil || gID <= 0 {
		return 0, 0, domain.ErrInvalidID
	}
	return mID, gID, nil
}
