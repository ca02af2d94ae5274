package authorization

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

const (
	ObjectMovie       = "movie"
	ObjectGenre       = "genre"
	ObjectProfile     = "profile"
	ObjectEntitlement = "entitlement"
)

const (
	ActionView   = "view"
	ActionManage = "manage"
	ActionBuy    = "buy"
	ActionWatch  = "watch"
)

var knownRoles = []string{RoleAdmin, RoleConnoisseur}

type Params struct {
	fx.In

	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
}

type ServiceImpl struct {
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
}

func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	enforcer.BuildRoleLinks()
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
	}
}

func (s *ServiceImpl) Resolve(ctx context.Context, userID snowflake.ID) (Caller, error) {
	roles, err := s.RolesFor(ctx, userID)
	if err != nil {
		return Caller{}, err
	}
	return Caller{UserID: userID, Roles: roles}, nil
}

func (s *ServiceImpl) AssignRole(_ context.Context, userID snowflake.ID, role string) error {
	if userID <= 0 {
		return ErrInvalidActor
	}
	role = strings.TrimSpace(role)
	if !isKnownRole(role) {
		return ErrInvalidRole
	}

	subject := subjectFor(userID)
	has, err := s.enforcer.HasGroupingPolicy(subject, role)
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	if _, err := s.enforcer.AddGroupingPolicy(subject, role); err != nil {
		return err
	}
	s.log.Info("role assigned", zap.String("user_id", userID.String()), zap.String("role", role))
	return nil
}

func (s *ServiceImpl) RolesFor(_ context.Context, userID snowflake.ID) ([]string, error) {
	if userID <= 0 {
		return nil, ErrInvalidActor
	}
	return s.enforcer.GetRolesForUser(subjectFor(userID))
}

func (s *ServiceImpl) Authorize(_ context.Context, caller Caller, object, action string) error {
	if caller.UserID <= 0 {
		return ErrInvalidActor
	}
	allowed, err := s.enforcer.Enforce(subjectFor(caller.UserID), strings.TrimSpace(object), strings.TrimSpace(action))
	if err != nil {
		return err
	}
	if !allowed {
		s.log.Debug("authorization denied",
			zap.String("user_id", caller.UserID.String()),
			zap.String("object", object),
			zap.String("action", action),
		)
		return ErrForbidden
	}
	return nil
}

func subjectFor(userID snowflake.ID) string {
	return fmt.Sprintf("user:%s", userID.String())
}

func isKnownRole(role string) bool {
	for _, r := range knownRoles {
		if r == role {
			return true
		}
	}
	return false
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	policies := [][]string{
		// Catalog administration
		{RoleAdmin, ObjectMovie, ActionView},
		{RoleAdmin, ObjectMovie, ActionManage},
		{RoleAdmin, ObjectGenre, ActionView},
		{RoleAdmin, ObjectGenre, ActionManage},

		// Customers
		{RoleConnoisseur, ObjectMovie, ActionView},
		{RoleConnoisseur, ObjectGenre, ActionView},
		{RoleConnoisseur, ObjectProfile, ActionManage},
		{RoleConnoisseur, ObjectEntitlement, ActionBuy},
		{RoleConnoisseur, ObjectEntitlement, ActionWatch},
		{RoleConnoisseur, ObjectEntitlement, ActionView},
	}

	for _, policy := range policies {
		has, err := enforcer.HasPolicy(policy)
		if err != nil {
			return err
		}
		if has {
			continue
		}
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}
	return nil
}
