package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/smallbiznis/movieshop/internal/auth/domain"
	"github.com/smallbiznis/movieshop/internal/auth/repository"
	"github.com/smallbiznis/movieshop/internal/clock"
	"github.com/smallbiznis/movieshop/internal/validation"
	"github.com/smallbiznis/movieshop/pkg/db"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func newTestService(t *testing.T) (authdomain.Service, *clock.FakeClock) {
	t.Helper()

	dbConn, err := db.NewTest()
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := dbConn.AutoMigrate(&authdomain.User{}, &authdomain.Session{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	repo, sessionRepo := repository.New(dbConn)
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("failed to create snowflake node: %v", err)
	}

	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	return New(Params{
		Log:         zap.NewNop(),
		Repo:        repo,
		SessionRepo: sessionRepo,
		GenID:       node,
		Clock:       clk,
	}), clk
}

func createAlice(t *testing.T, svc authdomain.Service) *authdomain.User {
	t.Helper()
	user, err := svc.CreateUser(context.Background(), authdomain.CreateUserRequest{
		Email:     "Alice@Example.com",
		Password:  "correct-password",
		FirstName: "Alice",
		LastName:  "Liddell",
	})
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newTestService(t)
	createAlice(t, svc)

	_, err := svc.Login(context.Background(), authdomain.LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong-password",
	})
	if err != authdomain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestCreateUserNormalizesEmailAndRejectsDuplicates(t *testing.T) {
	svc, _ := newTestService(t)
	user := createAlice(t, svc)
	if user.Email != "alice@example.com" {
		t.Fatalf("expected lower-cased email, got %s", user.Email)
	}
	if user.PasswordHash == nil || *user.PasswordHash == "correct-password" {
		t.Fatalf("expected hashed password")
	}

	_, err := svc.CreateUser(context.Background(), authdomain.CreateUserRequest{
		Email:     "alice@example.com",
		Password:  "another-password",
		FirstName: "A",
		LastName:  "L",
	})
	if !errors.Is(err, authdomain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestCreateUserValidation(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreateUser(context.Background(), authdomain.CreateUserRequest{
		Email:    "not-an-email",
		Password: "short",
	})
	errs, ok := validation.As(err)
	if !ok {
		t.Fatalf("expected validation errors, got %v", err)
	}
	for _, field := range []string{"email", "password", "first_name", "last_name"} {
		if !errs.Has(field) {
			t.Fatalf("expected violation for %s, got %v", field, errs)
		}
	}
}

func TestSessionLifecycle(t *testing.T) {
	svc, clk := newTestService(t)
	user := createAlice(t, svc)
	ctx := context.Background()

	result, err := svc.Login(ctx, authdomain.LoginRequest{Email: "alice@example.com", Password: "correct-password"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.User.ID != user.ID.String() {
		t.Fatalf("expected user %s, got %s", user.ID, result.User.ID)
	}

	session, err := svc.Authenticate(ctx, result.RawToken)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if session.UserID != user.ID {
		t.Fatalf("expected session for %s", user.ID)
	}

	if err := svc.Logout(ctx, result.RawToken); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := svc.Authenticate(ctx, result.RawToken); !errors.Is(err, authdomain.ErrSessionRevoked) {
		t.Fatalf("expected ErrSessionRevoked, got %v", err)
	}

	second, err := svc.Login(ctx, authdomain.LoginRequest{Email: "alice@example.com", Password: "correct-password"})
	if err != nil {
		t.Fatalf("second login: %v", err)
	}
	clk.Advance(sessionTTL + time.Minute)
	if _, err := svc.Authenticate(ctx, second.RawToken); !errors.Is(err, authdomain.ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}

	if _, err := svc.Authenticate(ctx, "unknown-token"); !errors.Is(err, authdomain.ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession, got %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	svc, _ := newTestService(t)
	user := createAlice(t, svc)
	ctx := context.Background()

	if err := svc.ChangePassword(ctx, user.ID.String(), "brand-new-password"); err != nil {
		t.Fatalf("change password: %v", err)
	}
	if _, err := svc.Login(ctx, authdomain.LoginRequest{Email: "alice@example.com", Password: "correct-password"}); err != authdomain.ErrInvalidCredentials {
		t.Fatalf("expected old password rejected, got %v", err)
	}
	if _, err := svc.Login(ctx, authdomain.LoginRequest{Email: "alice@example.com", Password: "brand-new-password"}); err != nil {
		t.Fatalf("expected new password accepted, got %v", err)
	}
}

func TestVerifyPassword(t *testing.T) {
	svc, _ := newTestService(t)
	user := createAlice(t, svc)
	ctx := context.Background()

	if err := svc.VerifyPassword(ctx, user.ID, "correct-password"); err != nil {
		t.Fatalf("expected password to verify, got %v", err)
	}
	if err := svc.VerifyPassword(ctx, user.ID, "nope"); err != authdomain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if err := svc.VerifyPassword(ctx, snowflake.ID(42), "correct-password"); !errors.Is(err, authdomain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	result, err := svc.Login(ctx, authdomain.LoginRequest{Email: "alice@example.com", Password: "correct-password"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.UserID != user.ID {
		t.Fatalf("login user id = %v, want %v", result.UserID, user.ID)
	}
}

func TestLoginUpgradesLegacyHash(t *testing.T) {
	dbConn, err := db.NewTest()
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := dbConn.AutoMigrate(&authdomain.User{}, &authdomain.Session{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	repo, sessionRepo := repository.New(dbConn)
	node, _ := snowflake.NewNode(1)
	svc := New(Params{
		Log:         zap.NewNop(),
		Repo:        repo,
		SessionRepo: sessionRepo,
		GenID:       node,
		Clock:       clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)),
	})

	legacy, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	hash := string(legacy)
	user := &authdomain.User{ID: node.Generate(), Email: "imported@example.com", PasswordHash: &hash}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	if _, err := svc.Login(context.Background(), authdomain.LoginRequest{Email: "imported@example.com", Password: "password"}); err != nil {
		t.Fatalf("login with legacy hash: %v", err)
	}

	stored, err := repo.FindByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if stored.PasswordHash == nil || !strings.HasPrefix(*stored.PasswordHash, "$argon2id$") {
		t.Fatalf("expected hash to be upgraded, got %v", stored.PasswordHash)
	}
	if _, err := svc.Login(context.Background(), authdomain.LoginRequest{Email: "imported@example.com", Password: "password"}); err != nil {
		t.Fatalf("login after upgrade: %v", err)
	}
}
