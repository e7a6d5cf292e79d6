package model

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestEstimateStatusCanTransition(t *testing.T) {
	cases := []struct {
		from    EstimateStatus
		to      EstimateStatus
		allowed bool
	}{
		{EstimateStatusDraft, EstimateStatusSent, true},
		{EstimateStatusDraft, EstimateStatusApproved, true},
		{EstimateStatusDraft, EstimateStatusRejected, true},
		{EstimateStatusSent, EstimateStatusApproved, true},
		{EstimateStatusSent, EstimateStatusRejected, true},
		{EstimateStatusSent, EstimateStatusDraft, false},
		{EstimateStatusApproved, EstimateStatusRejected, false},
		{EstimateStatusRejected, EstimateStatusSent, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransition(tc.to); got != tc.allowed {
			t.Fatalf("%s -> %s expected %v, got %v", tc.from, tc.to, tc.allowed, got)
		}
	}
}

func TestEstimateValidateState(t *testing.T) {
	rate := decimal.RequireFromString("3.25")
	zero := decimal.Zero

	usd := Estimate{CalculationType: CalculationTypeUSD, USDRate: &rate}
	if err := usd.ValidateState(); err != nil {
		t.Fatalf("usd estimate with rate must be valid: %v", err)
	}

	noRate := Estimate{CalculationType: CalculationTypeUSD}
	if err := noRate.ValidateState(); err == nil {
		t.Fatal("usd estimate without rate must be invalid")
	}

	zeroRate := Estimate{CalculationType: CalculationTypeUSD, USDRate: &zero}
	if err := zeroRate.ValidateState(); err == nil {
		t.Fatal("usd estimate with zero rate must be invalid")
	}

	local := Estimate{CalculationType: CalculationTypeCashLocal}
	if err := local.ValidateState(); err != nil {
		t.Fatalf("local estimate without rate must be valid: %v", err)
	}
}
