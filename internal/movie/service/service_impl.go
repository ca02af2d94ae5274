package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/movieshop/internal/audit/domain"
	"github.com/smallbiznis/movieshop/internal/clock"
	"github.com/smallbiznis/movieshop/internal/config"
	entitlementdomain "github.com/smallbiznis/movieshop/internal/entitlement/domain"
	genredomain "github.com/smallbiznis/movieshop/internal/genre/domain"
	"github.com/smallbiznis/movieshop/internal/movie/domain"
	moviegenredomain "github.com/smallbiznis/movieshop/internal/moviegenre/domain"
	"github.com/smallbiznis/movieshop/internal/validation"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var messages = validation.Messages{
	"title.required":             "Movie must have a title.",
	"title.max":                  "Title must be less than 50 characters.",
	"external_info_url.required": "You must include the URL.",
}

type Params struct {
	fx.In

	DB              *gorm.DB
	Log             *zap.Logger
	GenID           *snowflake.Node
	Clock           clock.Clock
	Limits          domain.CatalogLimits
	Repo            domain.Repository
	GenreRepo       genredomain.Repository
	MovieGenreRepo  moviegenredomain.Repository
	EntitlementRepo entitlementdomain.Repository
	AuditSvc        auditdomain.Service `optional:"true"`
}

type Service struct {
	db              *gorm.DB
	log             *zap.Logger
	genID           *snowflake.Node
	clock           clock.Clock
	limits          domain.CatalogLimits
	repo            domain.Repository
	genreRepo       genredomain.Repository
	movieGenreRepo  moviegenredomain.Repository
	entitlementRepo entitlementdomain.Repository
	auditSvc        auditdomain.Service
	validate        *validation.Validator
}

func New(p Params) domain.Service {
	return &Service{
		db:              p.DB,
		log:             p.Log.Named("movie.service"),
		genID:           p.GenID,
		clock:           p.Clock,
		limits:          p.Limits,
		repo:            p.Repo,
		genreRepo:       p.GenreRepo,
		movieGenreRepo:  p.MovieGenreRepo,
		entitlementRepo: p.EntitlementRepo,
		auditSvc:        p.AuditSvc,
		validate:        validation.New(),
	}
}

func (s *Service) Create(ctx context.Context, req domain.Request) (*domain.Response, error) {
	req = normalize(req)
	priceCents, err := s.validateRequest(req)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	m := &domain.Movie{
		ID:              s.genID.Generate(),
		Title:           req.Title,
		Year:            req.Year,
		LengthInMinutes: req.LengthInMinutes,
		PriceCents:      priceCents,
		ExternalInfoURL: req.ExternalInfoURL,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.Insert(ctx, s.db, m); err != nil {
		return nil, err
	}

	s.emitAudit(ctx, auditdomain.ActionMovieCreate, m)
	resp := toResponse(m)
	return &resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	m, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.loadGenres(ctx, []*domain.Movie{m}); err != nil {
		return nil, err
	}
	resp := toResponse(m)
	return &resp, nil
}

func (s *Service) GetByTitle(ctx context.Context, title string) (*domain.Response, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, domain.ErrNotFound
	}
	m, err := s.repo.FindByTitle(ctx, s.db, title)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.ErrNotFound
	}
	if err := s.loadGenres(ctx, []*domain.Movie{m}); err != nil {
		return nil, err
	}
	resp := toResponse(m)
	return &resp, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Response, error) {
	items, err := s.repo.List(ctx, s.db)
	if err != nil {
		return nil, err
	}
	return s.toResponses(ctx, items)
}

func (s *Service) ListByGenre(ctx context.Context, genreID string) ([]domain.Response, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(genreID))
	if err != nil || id <= 0 {
		return nil, genredomain.ErrInvalidID
	}
	g, err := s.genreRepo.FindOne(ctx, &genredomain.Genre{ID: id})
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, genredomain.ErrNotFound
	}

	items, err := s.repo.ListByGenre(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	return s.toResponses(ctx, items)
}

// Update replaces every scalar field. Genre associations are left untouched.
func (s *Service) Update(ctx context.Context, id string, req domain.Request) (*domain.Response, error) {
	m, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	req = normalize(req)
	priceCents, err := s.validateRequest(req)
	if err != nil {
		return nil, err
	}

	m.Title = req.Title
	m.Year = req.Year
	m.LengthInMinutes = req.LengthInMinutes
	m.PriceCents = priceCents
	m.ExternalInfoURL = req.ExternalInfoURL
	m.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, m); err != nil {
		return nil, err
	}

	if err := s.loadGenres(ctx, []*domain.Movie{m}); err != nil {
		return nil, err
	}
	s.emitAudit(ctx, auditdomain.ActionMovieUpdate, m)
	resp := toResponse(m)
	return &resp, nil
}

// Delete removes the movie and its genre associations. Movies that someone
// has paid for are kept so purchase history stays intact.
func (s *Service) Delete(ctx context.Context, id string) error {
	m, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owned, err := s.entitlementRepo.CountByMovie(ctx, tx, m.ID)
		if err != nil {
			return err
		}
		if owned > 0 {
			return domain.ErrMovieHasEntitlements
		}
		if err := s.movieGenreRepo.DeleteByMovie(ctx, tx, m.ID); err != nil {
			return err
		}
		return s.repo.Delete(ctx, tx, m.ID)
	})
	if err != nil {
		return err
	}

	s.emitAudit(ctx, auditdomain.ActionMovieDelete, m)
	return nil
}

func (s *Service) find(ctx context.Context, id string) (*domain.Movie, error) {
	movieID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || movieID <= 0 {
		return nil, domain.ErrInvalidID
	}
	m, err := s.repo.FindByID(ctx, s.db, movieID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.ErrNotFound
	}
	return m, nil
}

func (s *Service) loadGenres(ctx context.Context, movies []*domain.Movie) error {
	ids := make([]snowflake.ID, 0, len(movies))
	for _, m := range movies {
		ids = append(ids, m.ID)
	}
	byMovie, err := s.movieGenreRepo.ListGenres(ctx, s.db, ids)
	if err != nil {
		return err
	}
	for _, m := range movies {
		m.Genres = byMovie[m.ID]
	}
	return nil
}

func (s *Service) toResponses(ctx context.Context, items []domain.Movie) ([]domain.Response, error) {
	ptrs := make([]*domain.Movie, 0, len(items))
	for i := range items {
		ptrs = append(ptrs, &items[i])
	}
	if err := s.loadGenres(ctx, ptrs); err != nil {
		return nil, err
	}
	resp := make([]domain.Response, 0, len(items))
	for _, m := range ptrs {
		resp = append(resp, toResponse(m))
	}
	return resp, nil
}

// validateRequest reports every violation at once and returns the parsed price.
func (s *Service) validateRequest(req domain.Request) (int64, error) {
	errs := s.validate.Struct(req, messages)

	maxYear := config.DefaultCatalogConfig().MaxYear
	if s.limits != nil {
		maxYear = s.limits.MaxYear()
	}
	if req.Year < config.MinMovieYear || req.Year > maxYear {
		errs.Add("year", "out_of_range",
			fmt.Sprintf("The Movie Year must fall between %d and %d.", config.MinMovieYear, maxYear))
	}

	if l := req.LengthInMinutes; l != nil && (*l < 0 || *l > domain.MaxLengthInMins) {
		errs.Add("length_in_minutes", "out_of_range",
			"The Length of the movie must be between 0 and 1000 minutes.")
	}

	priceCents, ok := domain.ParsePrice(req.Price)
	if !ok {
		errs.Add("price", "invalid_format",
			"The Price must be less than 999.99, and a valid dollar amount.")
	}

	return priceCents, errs.Err()
}

func (s *Service) emitAudit(ctx context.Context, action string, m *domain.Movie) {
	if s.auditSvc == nil || m == nil {
		return
	}
	_ = s.auditSvc.AuditLog(ctx, action, "movie", m.ID.String(), map[string]any{
		"title":       m.Title,
		"year":        m.Year,
		"price_cents": m.PriceCents,
	})
}

func normalize(req domain.Request) domain.Request {
	req.Title = strings.TrimSpace(req.Title)
	req.Price = strings.TrimSpace(req.Price)
	req.ExternalInfoURL = strings.TrimSpace(req.ExternalInfoURL)
	return req
}

func toResponse(m *domain.Movie) domain.Response {
	genres := make([]genredomain.Response, 0, len(m.Genres))
	for i := range m.Genres {
		genres = append(genres, genredomain.ToResponse(&m.Genres[i]))
	}
	return domain.Response{
		ID:              m.ID.String(),
		Title:           m.Title,
		Year:            m.Year,
		LengthInMinutes: m.LengthInMinutes,
		Price:           domain.FormatPrice(m.PriceCents),
		ExternalInfoURL: m.ExternalInfoURL,
		Genres:          genres,
		GenreNames:      moviegenredomain.JoinGenreNames(m.Genres),
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}
