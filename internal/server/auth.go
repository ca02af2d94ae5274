package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	authdomain "github.com/smallbiznis/movieshop/internal/auth/domain"
	"github.com/smallbiznis/movieshop/internal/authorization"
	"github.com/smallbiznis/movieshop/internal/validation"
	"go.uber.org/zap"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type meResponse struct {
	User  authdomain.UserView `json:"user"`
	Roles []string            `json:"roles"`
}

// Register creates a customer account. New accounts always get the
// Movie Connoisseur role; admins are only seeded.
func (s *Server) Register(c *gin.Context) {
	var req authdomain.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	user, err := s.authsvc.CreateUser(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.authzSvc.AssignRole(c.Request.Context(), user.ID, authorization.RoleConnoisseur); err != nil {
		s.log.Error("assign customer role", zap.String("user_id", user.ID.String()), zap.Error(err))
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": authdomain.ToView(user)})
}

func (s *Server) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if allowed, wait := s.loginLimiter.Allow(c.Request.Context(), c.ClientIP(), email); !allowed {
		AbortWithError(c, &rateLimitedError{retryAfter: wait})
		return
	}

	result, err := s.authsvc.Login(c.Request.Context(), authdomain.LoginRequest{
		Email:     email,
		Password:  req.Password,
		UserAgent: c.Request.UserAgent(),
		IPAddress: c.ClientIP(),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.sessions.Set(c, result.RawToken, result.ExpiresAt)

	roles, err := s.authzSvc.RolesFor(c.Request.Context(), result.UserID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": meResponse{User: result.User, Roles: roles}})
}

func (s *Server) Logout(c *gin.Context) {
	token, ok := s.sessions.ReadToken(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	if err := s.authsvc.Logout(c.Request.Context(), token); err != nil {
		AbortWithError(c, err)
		return
	}

	s.sessions.Clear(c)
	c.Status(http.StatusNoContent)
}

func (s *Server) Me(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	user, err := s.authsvc.GetUser(c.Request.Context(), caller.UserID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": meResponse{User: authdomain.ToView(user), Roles: caller.Roles}})
}

func (s *Server) ChangePassword(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var errs validation.Errors
	if req.CurrentPassword == "" {
		errs.Add("current_password", "required", "current password is required")
	}
	if req.NewPassword == "" {
		errs.Add("new_password", "required", "new password is required")
	} else if req.NewPassword == req.CurrentPassword {
		errs.Add("new_password", "must_differ", "new password must be different")
	}
	if err := errs.Err(); err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.authsvc.VerifyPassword(c.Request.Context(), caller.UserID, req.CurrentPassword); err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.authsvc.ChangePassword(c.Request.Context(), caller.UserID.String(), req.NewPassword); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
