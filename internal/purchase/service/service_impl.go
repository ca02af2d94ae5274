package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/movieshop/internal/audit/domain"
	"github.com/smallbiznis/movieshop/internal/clock"
	entitlementdomain "github.com/smallbiznis/movieshop/internal/entitlement/domain"
	"github.com/smallbiznis/movieshop/internal/events"
	genredomain "github.com/smallbiznis/movieshop/internal/genre/domain"
	moviedomain "github.com/smallbiznis/movieshop/internal/movie/domain"
	moviegenredomain "github.com/smallbiznis/movieshop/internal/moviegenre/domain"
	"github.com/smallbiznis/movieshop/internal/observability/metrics"
	paymentdomain "github.com/smallbiznis/movieshop/internal/payment/domain"
	profiledomain "github.com/smallbiznis/movieshop/internal/profile/domain"
	"github.com/smallbiznis/movieshop/internal/purchase/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	watchOutcomeOK          = "ok"
	watchOutcomeNotEntitled = "not_entitled"
)

type Params struct {
	fx.In

	DB              *gorm.DB
	Log             *zap.Logger
	GenID           *snowflake.Node
	Clock           clock.Clock
	MovieRepo       moviedomain.Repository
	GenreRepo       genredomain.Repository
	MovieGenreRepo  moviegenredomain.Repository
	ProfileRepo     profiledomain.Repository
	EntitlementRepo entitlementdomain.Repository
	Charger         paymentdomain.Charger
	Locker          domain.Locker       `optional:"true"`
	Publisher       events.Publisher    `optional:"true"`
	Metrics         *metrics.Metrics    `optional:"true"`
	AuditSvc        auditdomain.Service `optional:"true"`
}

type Service struct {
	db              *gorm.DB
	log             *zap.Logger
	genID           *snowflake.Node
	clock           clock.Clock
	movieRepo       moviedomain.Repository
	genreRepo       genredomain.Repository
	movieGenreRepo  moviegenredomain.Repository
	profileRepo     profiledomain.Repository
	entitlementRepo entitlementdomain.Repository
	charger         paymentdomain.Charger
	locker          domain.Locker
	publisher       events.Publisher
	metrics         *metrics.Metrics
	auditSvc        auditdomain.Service
}

func New(p Params) domain.Service {
	publisher := p.Publisher
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &Service{
		db:              p.DB,
		log:             p.Log.Named("purchase.service"),
		genID:           p.GenID,
		clock:           p.Clock,
		movieRepo:       p.MovieRepo,
		genreRepo:       p.GenreRepo,
		movieGenreRepo:  p.MovieGenreRepo,
		profileRepo:     p.ProfileRepo,
		entitlementRepo: p.EntitlementRepo,
		charger:         p.Charger,
		locker:          p.Locker,
		publisher:       publisher,
		metrics:         p.Metrics,
		auditSvc:        p.AuditSvc,
	}
}

func (s *Service) IsEntitled(ctx context.Context, profileID, movieID string) (bool, error) {
	pID, mID, err := parsePair(profileID, movieID)
	if err != nil {
		return false, err
	}
	e, err := s.entitlementRepo.FindByPair(ctx, s.db, pID, mID)
	if err != nil {
		return false, err
	}
	return e != nil, nil
}

func (s *Service) Purchase(ctx context.Context, profileID, movieID string) (*domain.PurchaseResult, error) {
	pID, mID, err := parsePair(profileID, movieID)
	if err != nil {
		return nil, err
	}

	if s.locker != nil {
		release, ok, err := s.locker.Acquire(ctx, pID.String(), mID.String())
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, domain.ErrPurchaseInProgress
		}
		defer release()
	}

	var (
		movie  *moviedomain.Movie
		result *entitlementdomain.Entitlement
		charge *paymentdomain.ChargeResult
		owned  bool
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.ensureProfile(ctx, tx, pID); err != nil {
			return err
		}

		var err error
		movie, err = s.movieRepo.FindByID(ctx, tx, mID)
		if err != nil {
			return err
		}
		if movie == nil {
			return moviedomain.ErrNotFound
		}

		existing, err := s.entitlementRepo.FindByPair(ctx, tx, pID, mID)
		if err != nil {
			return err
		}
		if existing != nil {
			result, owned = existing, true
			return nil
		}

		charge, err = s.charger.Charge(ctx, paymentdomain.ChargeRequest{
			ProfileID:   pID,
			MovieID:     mID,
			AmountCents: movie.PriceCents,
			Currency:    paymentdomain.DefaultCurrency,
		})
		if err != nil {
			return err
		}

		now := s.clock.Now()
		e := &entitlementdomain.Entitlement{
			ID:             s.genID.Generate(),
			ProfileID:      pID,
			MovieID:        mID,
			SalePriceCents: movie.PriceCents,
			SaleDate:       entitlementdomain.SaleDateOf(now),
			TimesWatched:   0,
			CreatedAt:      now,
		}
		inserted, err := s.entitlementRepo.InsertIfAbsent(ctx, tx, e)
		if err != nil {
			return err
		}
		if !inserted {
			// A concurrent purchase won the insert.
			winner, err := s.entitlementRepo.FindByPair(ctx, tx, pID, mID)
			if err != nil {
				return err
			}
			s.log.Warn("purchase lost insert race",
				zap.String("profile_id", pID.String()),
				zap.String("movie_id", mID.String()),
				zap.String("payment_reference", charge.Reference),
			)
			result, owned = winner, true
			return nil
		}
		result = e
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordPurchase(ctx, result.SalePriceCents, owned)
	if !owned {
		s.afterPurchase(ctx, movie, result, charge)
	}

	return &domain.PurchaseResult{
		Entitlement:  toEntitlementResponse(result),
		AlreadyOwned: owned,
	}, nil
}

// afterPurchase runs once the entitlement is committed. Failures are logged only.
func (s *Service) afterPurchase(ctx context.Context, movie *moviedomain.Movie, e *entitlementdomain.Entitlement, charge *paymentdomain.ChargeResult) {
	reference := ""
	if charge != nil {
		reference = charge.Reference
	}

	err := s.publisher.PublishPurchaseCompleted(ctx, events.PurchaseCompleted{
		EntitlementID: e.ID.String(),
		ProfileID:     e.ProfileID.String(),
		MovieID:       e.MovieID.String(),
		MovieTitle:    movie.Title,
		SalePrice:     moviedomain.FormatPrice(e.SalePriceCents),
		SaleDate:      e.SaleDate.Format(profiledomain.DateLayout),
		Reference:     reference,
		OccurredAt:    e.CreatedAt.UTC(),
	})
	if err != nil {
		s.log.Warn("purchase event not published", zap.String("entitlement_id", e.ID.String()), zap.Error(err))
	}

	if s.auditSvc != nil {
		_ = s.auditSvc.AuditLog(ctx, auditdomain.ActionPurchaseCompleted, "entitlement", e.ID.String(), map[string]any{
			"profile_id":        e.ProfileID.String(),
			"movie_id":          e.MovieID.String(),
			"sale_price_cents":  e.SalePriceCents,
			"payment_reference": reference,
		})
	}
}

func (s *Service) Watch(ctx context.Context, profileID, movieID string) (*domain.WatchTicket, error) {
	pID, mID, err := parsePair(profileID, movieID)
	if err != nil {
		return nil, err
	}

	movie, err := s.movieRepo.FindByID(ctx, s.db, mID)
	if err != nil {
		return nil, err
	}
	if movie == nil {
		return nil, moviedomain.ErrNotFound
	}

	rows, err := s.entitlementRepo.IncrementWatch(ctx, s.db, pID, mID)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		s.metrics.RecordWatch(ctx, watchOutcomeNotEntitled)
		return nil, domain.ErrNotEntitled
	}

	e, err := s.entitlementRepo.FindByPair(ctx, s.db, pID, mID)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordWatch(ctx, watchOutcomeOK)

	ticket := &domain.WatchTicket{
		MovieID:         movie.ID.String(),
		Title:           movie.Title,
		ExternalInfoURL: movie.ExternalInfoURL,
	}
	if e != nil {
		ticket.TimesWatched = e.TimesWatched
	}
	return ticket, nil
}

func (s *Service) ListMoviesWithWatchStatus(ctx context.Context, profileID, genreID string) ([]domain.MovieStatus, error) {
	pID, err := parseID(profileID)
	if err != nil {
		return nil, err
	}

	var movies []moviedomain.Movie
	if strings.TrimSpace(genreID) == "" {
		movies, err = s.movieRepo.List(ctx, s.db)
	} else {
		movies, err = s.listByGenre(ctx, genreID)
	}
	if err != nil {
		return nil, err
	}

	owned, err := s.ownedByMovie(ctx, pID)
	if err != nil {
		return nil, err
	}

	ids := make([]snowflake.ID, 0, len(movies))
	for _, m := range movies {
		ids = append(ids, m.ID)
	}
	genres, err := s.movieGenreRepo.ListGenres(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}

	out := make([]domain.MovieStatus, 0, len(movies))
	for _, m := range movies {
		e, has := owned[m.ID]
		out = append(out, domain.MovieStatus{
			MovieID:    m.ID.String(),
			Title:      m.Title,
			Year:       m.Year,
			Price:      moviedomain.FormatPrice(m.PriceCents),
			GenreNames: moviegenredomain.JoinGenreNames(genres[m.ID]),
			Owned:      has,
			Status:     watchStatus(e, has),
		})
	}
	return out, nil
}

func (s *Service) Library(ctx context.Context, profileID string) (*domain.Library, error) {
	pID, err := parseID(profileID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureProfile(ctx, s.db, pID); err != nil {
		return nil, err
	}

	items, err := s.entitlementRepo.ListByProfile(ctx, s.db, pID)
	if err != nil {
		return nil, err
	}
	catalog, err := s.movieRepo.List(ctx, s.db)
	if err != nil {
		return nil, err
	}
	titles := make(map[snowflake.ID]string, len(catalog))
	for _, m := range catalog {
		titles[m.ID] = m.Title
	}

	movies := make([]domain.LibraryItem, 0, len(items))
	for _, e := range items {
		movies = append(movies, domain.LibraryItem{
			MovieID:      e.MovieID.String(),
			Title:        titles[e.MovieID],
			TimesWatched: e.TimesWatched,
			SalePrice:    moviedomain.FormatPrice(e.SalePriceCents),
			SaleDate:     e.SaleDate,
		})
	}

	return &domain.Library{
		Movies:           movies,
		TotalMovies:      len(items),
		TotalWatched:     entitlementdomain.TotalWatched(items),
		TotalAmountSpent: moviedomain.FormatCurrency(entitlementdomain.TotalAmountSpent(items)),
	}, nil
}

func (s *Service) Quote(ctx context.Context, profileID, movieID string) (*domain.Quote, error) {
	pID, mID, err := parsePair(profileID, movieID)
	if err != nil {
		return nil, err
	}
	movie, err := s.movieRepo.FindByID(ctx, s.db, mID)
	if err != nil {
		return nil, err
	}
	if movie == nil {
		return nil, moviedomain.ErrNotFound
	}
	e, err := s.entitlementRepo.FindByPair(ctx, s.db, pID, mID)
	if err != nil {
		return nil, err
	}
	return &domain.Quote{
		MovieID:      movie.ID.String(),
		Title:        movie.Title,
		Price:        moviedomain.FormatCurrency(movie.PriceCents),
		AlreadyOwned: e != nil,
	}, nil
}

func (s *Service) listByGenre(ctx context.Context, genreID string) ([]moviedomain.Movie, error) {
	gID, err := snowflake.ParseString(strings.TrimSpace(genreID))
	if err != nil || gID <= 0 {
		return nil, genredomain.ErrInvalidID
	}
	g, err := s.genreRepo.FindOne(ctx, &genredomain.Genre{ID: gID})
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, genredomain.ErrNotFound
	}
	return s.movieRepo.ListByGenre(ctx, s.db, gID)
}

func (s *Service) ownedByMovie(ctx context.Context, profileID snowflake.ID) (map[snowflake.ID]entitlementdomain.Entitlement, error) {
	items, err := s.entitlementRepo.ListByProfile(ctx, s.db, profileID)
	if err != nil {
		return nil, err
	}
	out := make(map[snowflake.ID]entitlementdomain.Entitlement, len(items))
	for _, e := range items {
		out[e.MovieID] = e
	}
	return out, nil
}

func (s *Service) ensureProfile(ctx context.Context, db *gorm.DB, profileID snowflake.ID) error {
	p, err := s.profileRepo.FindByID(ctx, db, profileID)
	if err != nil {
		return err
	}
	if p == nil {
		return profiledomain.ErrNotFound
	}
	return nil
}

func watchStatus(e entitlementdomain.Entitlement, owned bool) domain.WatchStatus {
	if owned && e.TimesWatched > 0 {
		return domain.StatusWatched
	}
	return domain.StatusNotWatched
}

func toEntitlementResponse(e *entitlementdomain.Entitlement) domain.EntitlementResponse {
	return domain.EntitlementResponse{
		ID:           e.ID.String(),
		ProfileID:    e.ProfileID.String(),
		MovieID:      e.MovieID.String(),
		SalePrice:    moviedomain.FormatPrice(e.SalePriceCents),
		SaleDate:     e.SaleDate,
		TimesWatched: e.TimesWatched,
	}
}

func parseID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id <= 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

func parsePair(profileID, movieID string) (snowflake.ID, snowflake.ID, error) {
	pID, err := parseID(profileID)
	if err != nil {
		return 0, 0, err
	}
	mID, err := parseID(movieID)
	if err != nil {
		return 0, 0, err
	}
	return pID, mID, nil
}
