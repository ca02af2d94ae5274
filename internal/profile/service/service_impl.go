package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/movieshop/internal/audit/domain"
	"github.com/smallbiznis/movieshop/internal/audit/masking"
	authdomain "github.com/smallbiznis/movieshop/internal/auth/domain"
	"github.com/smallbiznis/movieshop/internal/clock"
	entitlementdomain "github.com/smallbiznis/movieshop/internal/entitlement/domain"
	moviedomain "github.com/smallbiznis/movieshop/internal/movie/domain"
	"github.com/smallbiznis/movieshop/internal/profile/domain"
	"github.com/smallbiznis/movieshop/internal/validation"
	"github.com/smallbiznis/movieshop/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var messages = validation.Messages{
	"credit_card_number":     "Credit card number must be exactly 12 digits.",
	"card_expiration":        "Credit card expiration is required.",
	"address_line1.required": "Address line 1 is required.",
	"address_line1.max":      "Address line 1 must be 100 or fewer characters.",
	"address_line2.max":      "Address line 2 must be 30 or fewer characters.",
	"city.required":          "City is required.",
	"city.max":               "City must be 50 or fewer characters.",
	"state":                  "State must be a valid two-letter US state code.",
	"zip_code":               "ZIP code must be exactly 5 digits.",
	"first_name.required":    "First name is required.",
	"first_name.max":         "First name must be 50 or fewer characters.",
	"last_name.required":     "Last name is required.",
	"last_name.max":          "Last name must be 50 or fewer characters.",
}

type Params struct {
	fx.In

	DB              *gorm.DB
	Log             *zap.Logger
	GenID           *snowflake.Node
	Clock           clock.Clock
	Repo            domain.Repository
	UserRepo        authdomain.Repository
	EntitlementRepo entitlementdomain.Repository
	AuditSvc        auditdomain.Service `optional:"true"`
}

type Service struct {
	db              *gorm.DB
	log             *zap.Logger
	genID           *snowflake.Node
	clock           clock.Clock
	repo            domain.Repository
	userRepo        authdomain.Repository
	entitlementRepo entitlementdomain.Repository
	auditSvc        auditdomain.Service
	validate        *validation.Validator
}

func New(p Params) domain.Service {
	return &Service{
		db:              p.DB,
		log:             p.Log.Named("profile.service"),
		genID:           p.GenID,
		clock:           p.Clock,
		repo:            p.Repo,
		userRepo:        p.UserRepo,
		entitlementRepo: p.EntitlementRepo,
		auditSvc:        p.AuditSvc,
		validate:        validation.New(),
	}
}

func (s *Service) Create(ctx context.Context, userID snowflake.ID, req domain.Request) (*domain.Response, error) {
	req = normalize(req)
	errs := s.validate.Struct(req, messages)
	expiration := parseExpiration(req.CardExpiration, &errs)
	if err := errs.Err(); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByUser(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrProfileExists
	}

	now := s.clock.Now()
	p := &domain.Profile{
		ID:               s.genID.Generate(),
		UserID:           userID,
		CreditCardNumber: req.CreditCardNumber,
		CardExpiration:   expiration,
		AddressLine1:     req.AddressLine1,
		AddressLine2:     req.AddressLine2,
		City:             req.City,
		State:            req.State,
		ZIPCode:          req.ZIPCode,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.repo.Insert(ctx, s.db, p); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrProfileExists
		}
		return nil, err
	}

	s.emitAudit(ctx, auditdomain.ActionProfileCreate, p)
	resp := toResponse(p, user)
	return &resp, nil
}

func (s *Service) GetByUser(ctx context.Context, userID snowflake.ID) (*domain.Response, error) {
	p, err := s.repo.FindByUser(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return s.withAssociations(ctx, p)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withAssociations(ctx, p)
}

// Update replaces the billing fields and renames the owning user in one transaction.
func (s *Service) Update(ctx context.Context, id string, req domain.UpdateRequest) (*domain.Response, error) {
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	req.Request = normalize(req.Request)
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	errs := s.validate.Struct(req, messages)
	expiration := parseExpiration(req.CardExpiration, &errs)
	if err := errs.Err(); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	p.CreditCardNumber = req.CreditCardNumber
	p.CardExpiration = expiration
	p.AddressLine1 = req.AddressLine1
	p.AddressLine2 = req.AddressLine2
	p.City = req.City
	p.State = req.State
	p.ZIPCode = req.ZIPCode
	p.UpdatedAt = now

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Update(ctx, tx, p); err != nil {
			return err
		}
		return s.userRepo.WithTrx(tx).UpdateFields(ctx, p.UserID, map[string]any{
			"first_name": req.FirstName,
			"last_name":  req.LastName,
			"updated_at": now,
		})
	})
	if err != nil {
		return nil, err
	}

	s.emitAudit(ctx, auditdomain.ActionProfileUpdate, p)
	return s.withAssociations(ctx, p)
}

// Delete removes the profile together with its purchase history.
func (s *Service) Delete(ctx context.Context, id string) error {
	p, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.entitlementRepo.DeleteByProfile(ctx, tx, p.ID); err != nil {
			return err
		}
		return s.repo.Delete(ctx, tx, p.ID)
	})
	if err != nil {
		return err
	}

	s.emitAudit(ctx, auditdomain.ActionProfileDelete, p)
	return nil
}

func (s *Service) find(ctx context.Context, id string) (*domain.Profile, error) {
	profileID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || profileID <= 0 {
		return nil, domain.ErrInvalidID
	}
	p, err := s.repo.FindByID(ctx, s.db, profileID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (s *Service) withAssociations(ctx context.Context, p *domain.Profile) (*domain.Response, error) {
	items, err := s.entitlementRepo.ListByProfile(ctx, s.db, p.ID)
	if err != nil {
		return nil, err
	}
	p.Entitlements = items

	user, err := s.userRepo.FindByID(ctx, p.UserID)
	if err != nil && !errors.Is(err, authdomain.ErrUserNotFound) {
		return nil, err
	}
	resp := toResponse(p, user)
	return &resp, nil
}

func (s *Service) emitAudit(ctx context.Context, action string, p *domain.Profile) {
	if s.auditSvc == nil || p == nil {
		return
	}
	_ = s.auditSvc.AuditLog(ctx, action, "profile", p.ID.String(), map[string]any{
		"user_id":            p.UserID.String(),
		"credit_card_number": p.CreditCardNumber,
		"state":              p.State,
	})
}

func parseExpiration(raw string, errs *validation.Errors) time.Time {
	if raw == "" || errs.Has("card_expiration") {
		return time.Time{}
	}
	t, err := time.Parse(domain.DateLayout, raw)
	if err != nil {
		errs.Add("card_expiration", "invalid_format", "Credit card expiration must be a date (YYYY-MM-DD).")
		return time.Time{}
	}
	return t
}

func normalize(req domain.Request) domain.Request {
	req.CreditCardNumber = strings.TrimSpace(req.CreditCardNumber)
	req.CardExpiration = strings.TrimSpace(req.CardExpiration)
	req.AddressLine1 = strings.TrimSpace(req.AddressLine1)
	req.AddressLine2 = strings.TrimSpace(req.AddressLine2)
	req.City = strings.TrimSpace(req.City)
	req.State = strings.ToUpper(strings.TrimSpace(req.State))
	req.ZIPCode = strings.TrimSpace(req.ZIPCode)
	return req
}

func toResponse(p *domain.Profile, user *authdomain.User) domain.Response {
	items := make([]domain.EntitlementResponse, 0, len(p.Entitlements))
	for _, e := range p.Entitlements {
		items = append(items, domain.EntitlementResponse{
			ID:           e.ID.String(),
			MovieID:      e.MovieID.String(),
			SalePrice:    moviedomain.FormatPrice(e.SalePriceCents),
			SaleDate:     e.SaleDate,
			TimesWatched: e.TimesWatched,
		})
	}

	name := ""
	if user != nil {
		name = user.FullName()
	}

	return domain.Response{
		ID:               p.ID.String(),
		UserID:           p.UserID.String(),
		Name:             name,
		CreditCardNumber: masking.MaskSecret(p.CreditCardNumber),
		CardExpiration:   p.CardExpiration.Format(domain.DateLayout),
		AddressLine1:     p.AddressLine1,
		AddressLine2:     p.AddressLine2,
		City:             p.City,
		State:            p.State,
		ZIPCode:          p.ZIPCode,
		Address:          domain.FormatAddress(p),
		Entitlements:     items,
		TotalAmountSpent: moviedomain.FormatCurrency(entitlementdomain.TotalAmountSpent(p.Entitlements)),
		TotalWatched:     entitlementdomain.TotalWatched(p.Entitlements),
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}
