package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/movieshop/internal/audit/domain"
	"github.com/smallbiznis/movieshop/internal/clock"
	"github.com/smallbiznis/movieshop/internal/genre/domain"
	moviegenredomain "github.com/smallbiznis/movieshop/internal/moviegenre/domain"
	"github.com/smallbiznis/movieshop/internal/validation"
	"github.com/smallbiznis/movieshop/pkg/db/option"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var messages = validation.Messages{
	"name.required": "Genre must have a name.",
	"name.max":      "Genre name must be 20 or fewer characters.",
}

type Params struct {
	fx.In

	DB             *gorm.DB
	Log            *zap.Logger
	GenID          *snowflake.Node
	Clock          clock.Clock
	Repo           domain.Repository
	MovieGenreRepo moviegenredomain.Repository
	AuditSvc       auditdomain.Service `optional:"true"`
}

type Service struct {
	db             *gorm.DB
	log            *zap.Logger
	genID          *snowflake.Node
	clock          clock.Clock
	repo           domain.Repository
	movieGenreRepo moviegenredomain.Repository
	auditSvc       auditdomain.Service
	validate       *validation.Validator
}

func New(p Params) domain.Service {
	return &Service{
		db:             p.DB,
		log:            p.Log.Named("genre.service"),
		genID:          p.GenID,
		clock:          p.Clock,
		repo:           p.Repo,
		movieGenreRepo: p.MovieGenreRepo,
		auditSvc:       p.AuditSvc,
		validate:       validation.New(),
	}
}

func (s *Service) Create(ctx context.Context, req domain.Request) (*domain.Response, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validate.Struct(req, messages).Err(); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	g := &domain.Genre{
		ID:        s.genID.Generate(),
		Name:      req.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, g); err != nil {
		return nil, err
	}

	s.emitAudit(ctx, auditdomain.ActionGenreCreate, g)
	resp := domain.ToResponse(g)
	return &resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	g, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := domain.ToResponse(g)
	return &resp, nil
}

func (s *Service) GetByName(ctx context.Context, name string) (*domain.Response, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrNotFound
	}
	g, err := s.repo.FindOne(ctx, &domain.Genre{Name: name}, option.WithSortBy(option.QuerySortBy{Default: "id"}))
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, domain.ErrNotFound
	}
	resp := domain.ToResponse(g)
	return &resp, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Response, error) {
	items, err := s.repo.Find(ctx, &domain.Genre{}, option.WithSortBy(option.QuerySortBy{Default: "id"}))
	if err != nil {
		return nil, err
	}
	resp := make([]domain.Response, 0, len(items))
	for _, item := range items {
		resp = append(resp, domain.ToResponse(item))
	}
	return resp, nil
}

func (s *Service) Update(ctx context.Context, id string, req domain.Request) (*domain.Response, error) {
	g, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	req.Name = strings.TrimSpace(req.Name)
	if err := s.validate.Struct(req, messages).Err(); err != nil {
		return nil, err
	}

	g.Name = req.Name
	g.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, g.ID, map[string]any{
		"name":       g.Name,
		"updated_at": g.UpdatedAt,
	}); err != nil {
		return nil, err
	}

	s.emitAudit(ctx, auditdomain.ActionGenreUpdate, g)
	resp := domain.ToResponse(g)
	return &resp, nil
}

// Delete removes the genre and every movie association pointing at it.
func (s *Service) Delete(ctx context.Context, id string) error {
	g, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.movieGenreRepo.DeleteByGenre(ctx, tx, g.ID); err != nil {
			return err
		}
		return s.repo.WithTrx(tx).Delete(ctx, g.ID)
	}); err != nil {
		return err
	}

	s.emitAudit(ctx, auditdomain.ActionGenreDelete, g)
	return nil
}

func (s *Service) find(ctx context.Context, id string) (*domain.Genre, error) {
	genreID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || genreID <= 0 {
		return nil, domain.ErrInvalidID
	}
	g, err := s.repo.FindOne(ctx, &domain.Genre{ID: genreID})
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, domain.ErrNotFound
	}
	return g, nil
}

func (s *Service) emitAudit(ctx context.Context, action string, g *domain.Genre) {
	if s.auditSvc == nil || g == nil {
		return
	}
	_ = s.auditSvc.AuditLog(ctx, action, "genre", g.ID.String(), map[string]any{
		"name": g.Name,
	})
}
