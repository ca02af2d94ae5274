package server

import (
	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/movieshop/internal/authorization"
	obscontext "github.com/smallbiznis/movieshop/internal/observability/context"
	profiledomain "github.com/smallbiznis/movieshop/internal/profile/domain"
)

const (
	contextCallerKey  = "caller"
	contextProfileKey = "profile"
)

// AuthRequired resolves the session cookie into a Caller with its roles.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := s.sessions.ReadToken(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		session, err := s.authsvc.Authenticate(c.Request.Context(), token)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		caller, err := s.authzSvc.Resolve(c.Request.Context(), session.UserID)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		ctx := obscontext.WithActor(c.Request.Context(), caller.UserID.String(), caller.PrimaryRole())
		c.Request = c.Request.WithContext(ctx)
		c.Set(contextCallerKey, caller)
		c.Next()
	}
}

// RequireRole admits callers holding the role. Admins are not customers: the
// storefront routes reject them.
func (s *Server) RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := callerFromContext(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		if !caller.HasRole(role) {
			AbortWithError(c, ErrForbidden)
			return
		}
		if role == authorization.RoleConnoisseur && caller.IsAdmin() {
			AbortWithError(c, ErrForbidden)
			return
		}
		c.Next()
	}
}

func (s *Server) authorize(object, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := callerFromContext(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		if err := s.authzSvc.Authorize(c.Request.Context(), caller, object, action); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

// ProfileRequired loads the caller's profile. Customers must create one before
// browsing or buying.
func (s *Server) ProfileRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := callerFromContext(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		profile, err := s.profileSvc.GetByUser(c.Request.Context(), caller.UserID)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.Set(contextProfileKey, profile)
		c.Next()
	}
}

func callerFromContext(c *gin.Context) (authorization.Caller, bool) {
	v, ok := c.Get(contextCallerKey)
	if !ok {
		return authorization.Caller{}, false
	}
	caller, ok := v.(authorization.Caller)
	return caller, ok && caller.UserID > 0
}

func profileFromContext(c *gin.Context) (*profiledomain.Response, bool) {
	v, ok := c.Get(contextProfileKey)
	if !ok {
		return nil, false
	}
	profile, ok := v.(*profiledomain.Response)
	return profile, ok && profile != nil
}
