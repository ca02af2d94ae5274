package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/movieshop/internal/audit/domain"
	"github.com/smallbiznis/movieshop/internal/audit/repository"
	"github.com/smallbiznis/movieshop/internal/clock"
	obscontext "github.com/smallbiznis/movieshop/internal/observability/context"
	"github.com/smallbiznis/movieshop/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (auditdomain.Service, *gorm.DB) {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&auditdomain.AuditLog{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return NewService(Params{
		DB:    conn,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)),
		Repo:  repository.Provide(),
	}), conn
}

func TestAuditLogMasksCardAndRecordsActor(t *testing.T) {
	svc, conn := newTestService(t)

	ctx := obscontext.WithRequestID(context.Background(), "req-1")
	ctx = obscontext.WithActor(ctx, "42", "Movie Connoisseur")

	err := svc.AuditLog(ctx, auditdomain.ActionProfileCreate, "profile", "7", map[string]any{
		"credit_card_number": "123456789012",
		"city":               "Tulsa",
	})
	require.NoError(t, err)

	var entry auditdomain.AuditLog
	require.NoError(t, conn.First(&entry).Error)
	assert.Equal(t, "customer", entry.ActorType)
	require.NotNil(t, entry.ActorID)
	assert.Equal(t, "42", *entry.ActorID)
	require.NotNil(t, entry.TargetID)
	assert.Equal(t, "7", *entry.TargetID)
	assert.Equal(t, "****9012", entry.Metadata["credit_card_number"])
	assert.Equal(t, "Tulsa", entry.Metadata["city"])
	assert.Equal(t, "req-1", entry.Metadata["request_id"])
	assert.True(t, entry.CreatedAt.Equal(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)))
}

func TestAuditLogSystemActor(t *testing.T) {
	svc, conn := newTestService(t)

	require.NoError(t, svc.AuditLog(context.Background(), auditdomain.ActionGenreCreate, "", "", nil))

	var entry auditdomain.AuditLog
	require.NoError(t, conn.First(&entry).Error)
	assert.Equal(t, "system", entry.ActorType)
	assert.Equal(t, "unknown", entry.TargetType)
	assert.Nil(t, entry.ActorID)
	assert.Nil(t, entry.TargetID)
}

func TestAuditLogRequiresAction(t *testing.T) {
	svc, _ := newTestService(t)
	err := svc.AuditLog(context.Background(), "  ", "movie", "1", nil)
	assert.ErrorIs(t, err, auditdomain.ErrInvalidAction)
}
