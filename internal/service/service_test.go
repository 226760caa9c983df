package service

import (
	"context"
	"errors"
	"testing"

	"github.com/evmscope/evmscope/internal/apperr"
)

func TestResolveNetworkBypassesRegistryForNumericChainID(t *testing.T) {
	svc := newTestService(t, "", nil)
	label, chainID, err := svc.resolveNetwork(context.Background(), "42161")
	if err != nil {
		t.Fatalf("resolveNetwork: %v", err)
	}
	if chainID != "42161" {
		t.Fatalf("chainID = %q, want 42161", chainID)
	}
	if label != "42161" {
		t.Fatalf("label = %q, want 42161", label)
	}
}

func TestResolveNetworkFallsBackToStaticMapOnExplicitLabel(t *testing.T) {
	svc := newTestService(t, "", nil)
	_, chainID, err := svc.resolveNetwork(context.Background(), "sepolia")
	if err != nil {
		t.Fatalf("resolveNetwork: %v", err)
	}
	if chainID != "11155111" {
		t.Fatalf("chainID = %q, want 11155111", chainID)
	}
}

func TestResolveNetworkReturnsErrDegradedWhenDefaultIsUnresolvable(t *testing.T) {
	svc := newTestService(t, "", nil)
	svc.cfg.DefaultChainID = ""
	svc.cfg.DefaultNetwork = "not-a-real-network"

	_, _, err := svc.resolveNetwork(context.Background(), "")
	if err == nil {
		t.Fatal("resolveNetwork: want error when the configured default resolves nowhere, got nil")
	}
	if !errors.Is(err, apperr.ErrDegraded) {
		t.Fatalf("resolveNetwork err = %v, want errors.Is(err, apperr.ErrDegraded)", err)
	}
}

func TestResolveNetworkPropagatesExplicitUnresolvableNetworkAsIs(t *testing.T) {
	svc := newTestService(t, "", nil)
	_, _, err := svc.resolveNetwork(context.Background(), "not-a-real-network")
	if err == nil {
		t.Fatal("resolveNetwork: want error for an unresolvable explicit network, got nil")
	}
	if errors.Is(err, apperr.ErrDegraded) {
		t.Fatal("resolveNetwork: an explicit unresolvable network must not be reported as degraded, it's an invalid request")
	}
}
