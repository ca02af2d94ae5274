package adapters

import (
	"context"
	"strings"
	"testing"

	"github.com/smallbiznis/movieshop/internal/payment/adapters/stub"
	"github.com/smallbiznis/movieshop/internal/payment/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryResolvesStub(t *testing.T) {
	registry := NewRegistry(stub.NewFactory(), nil)
	assert.Equal(t, []string{stub.Provider}, registry.Providers())

	charger, err := registry.NewCharger(domain.AdapterConfig{Provider: " STUB "})
	require.NoError(t, err)

	result, err := charger.Charge(context.Background(), domain.ChargeRequest{AmountCents: 1299, Currency: domain.DefaultCurrency})
	require.NoError(t, err)
	assert.Equal(t, stub.Provider, result.Provider)
	assert.True(t, strings.HasPrefix(result.Reference, "stub_"))

	_, err = charger.Charge(context.Background(), domain.ChargeRequest{AmountCents: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestRegistryUnknownProvider(t *testing.T) {
	registry := NewRegistry(stub.NewFactory())
	_, err := registry.NewCharger(domain.AdapterConfig{Provider: "adyen"})
	assert.ErrorIs(t, err, domain.ErrProviderNotFound)

	var nilRegistry *Registry
	_, err = nilRegistry.NewCharger(domain.AdapterConfig{Provider: "stub"})
	assert.ErrorIs(t, err, domain.ErrProviderNotFound)
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	registry := NewRegistry(stub.NewFactory())
	assert.Error(t, registry.Register(stub.NewFactory()))
	assert.ErrorIs(t, registry.Register(nil), domain.ErrProviderNotFound)
	assert.Equal(t, []string{stub.Provider}, registry.Providers())
}

func TestStubDeclinesAboveLimit(t *testing.T) {
	registry := NewRegistry(stub.NewFactory())
	charger, err := registry.NewCharger(domain.AdapterConfig{
		Provider: stub.Provider,
		Options:  map[string]string{stub.OptionDeclineAboveCents: "1000"},
	})
	require.NoError(t, err)

	_, err = charger.Charge(context.Background(), domain.ChargeRequest{AmountCents: 1000})
	assert.NoError(t, err)
	_, err = charger.Charge(context.Background(), domain.ChargeRequest{AmountCents: 1001})
	assert.ErrorIs(t, err, domain.ErrChargeDeclined)

	_, err = registry.NewCharger(domain.AdapterConfig{
		Provider: stub.Provider,
		Options:  map[string]string{stub.OptionDeclineAboveCents: "lots"},
	})
	assert.Error(t, err)
}
