package authorization

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/movieshop/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	conn, err := db.NewTest()
	require.NoError(t, err)
	enforcer, err := NewEnforcer(conn)
	require.NoError(t, err)
	return NewService(Params{Log: zap.NewNop(), Enforcer: enforcer})
}

func TestAssignRoleAndResolve(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	user := snowflake.ID(1001)

	require.NoError(t, svc.AssignRole(ctx, user, RoleConnoisseur))
	require.NoError(t, svc.AssignRole(ctx, user, RoleConnoisseur))

	caller, err := svc.Resolve(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, []string{RoleConnoisseur}, caller.Roles)
	assert.True(t, caller.IsCustomer())
	assert.False(t, caller.IsAdmin())
	assert.Equal(t, RoleConnoisseur, caller.PrimaryRole())

	assert.ErrorIs(t, svc.AssignRole(ctx, user, "Owner"), ErrInvalidRole)
	assert.ErrorIs(t, svc.AssignRole(ctx, 0, RoleAdmin), ErrInvalidActor)
}

func TestAuthorizeByRole(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	admin, customer, nobody := snowflake.ID(1), snowflake.ID(2), snowflake.ID(3)

	require.NoError(t, svc.AssignRole(ctx, admin, RoleAdmin))
	require.NoError(t, svc.AssignRole(ctx, customer, RoleConnoisseur))

	adminCaller, err := svc.Resolve(ctx, admin)
	require.NoError(t, err)
	customerCaller, err := svc.Resolve(ctx, customer)
	require.NoError(t, err)
	nobodyCaller, err := svc.Resolve(ctx, nobody)
	require.NoError(t, err)
	assert.Empty(t, nobodyCaller.Roles)

	assert.NoError(t, svc.Authorize(ctx, adminCaller, ObjectMovie, ActionManage))
	assert.ErrorIs(t, svc.Authorize(ctx, adminCaller, ObjectEntitlement, ActionBuy), ErrForbidden)

	assert.NoError(t, svc.Authorize(ctx, customerCaller, ObjectEntitlement, ActionBuy))
	assert.NoError(t, svc.Authorize(ctx, customerCaller, ObjectMovie, ActionView))
	assert.ErrorIs(t, svc.Authorize(ctx, customerCaller, ObjectMovie, ActionManage), ErrForbidden)

	assert.ErrorIs(t, svc.Authorize(ctx, nobodyCaller, ObjectMovie, ActionView), ErrForbidden)
}
