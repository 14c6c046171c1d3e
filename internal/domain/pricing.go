package domain

import (
	"fmt"
	"math"
)

// Complexity is the build-effort tier that sets the setup fee.
type Complexity string

const (
	ComplexityBasic      Complexity = "basic"
	ComplexityMedium     Complexity = "medium"
	ComplexityComplex    Complexity = "complex"
	ComplexityEnterprise Complexity = "enterprise"
)

// DefaultCurrency is used when a pricing input names none.
const DefaultCurrency = "USD"

var setupFees = map[Complexity]float64{
	ComplexityBasic:      1000,
	ComplexityMedium:     2500,
	ComplexityComplex:    5000,
	ComplexityEnterprise: 10000,
}

// BaseSetupFee returns the undiscounted setup fee for a complexity tier.
func BaseSetupFee(c Complexity) (float64, error) {
	fee, ok := setupFees[c]
	if !ok {
		return 0, &UnknownComplexityError{Value: string(c)}
	}
	return fee, nil
}

// CatalogEntry is the list price of one action type.
type CatalogEntry struct {
	ListPrice float64 `json:"listPrice"`
}

// ActionCatalog maps action type identifiers to list prices.
type ActionCatalog map[string]CatalogEntry

// EstimatedAction is the expected number of uses of an action per outcome.
type EstimatedAction struct {
	ActionType string
	Count      int
}

// Discount is a pricing engine discount input.
type Discount struct {
	Source    string
	Percent   float64
	AppliesTo DiscountScope
}

// PricingInput is everything ComputePricing needs.
type PricingInput struct {
	Complexity       Complexity
	EstimatedActions []EstimatedAction
	Catalog          ActionCatalog
	Discounts        []Discount
	EstimatedVolume  int
	Currency         string
}

// AppliedDiscount records the effect of one discount on a quote.
type AppliedDiscount struct {
	Source    string
	Percent   float64
	AppliesTo DiscountScope
	Amount    float64
}

// PricingResult is the output of ComputePricing. UnitPrice and
// EffectiveUnitPrice are per outcome and never depend on volume.
type PricingResult struct {
	Currency              string
	BaseSetupFee          float64
	SetupFee              float64
	UnitPrice             float64
	EffectiveUnitPrice    float64
	EstimatedVolume       int
	EstimatedMonthlySpend float64
	DiscountsApplied      []AppliedDiscount
	Warnings              []string
}

// ComputePricing computes setup fee and per-outcome prices. Discount
// percentages are summed per scope, never compounded, and the discounted
// amount is clamped so no price drops below zero.
func ComputePricing(in PricingInput) (PricingResult, error) {
	base, err := BaseSetupFee(in.Complexity)
	if err != nil {
		return PricingResult{}, err
	}
	for _, d := range in.Discounts {
		if !d.AppliesTo.Valid() {
			return PricingResult{}, &InvalidDiscountError{Source: d.Source, Reason: fmt.Sprintf("unknown scope %q", d.AppliesTo)}
		}
		if math.IsNaN(d.Percent) || d.Percent < 0 || d.Percent > 1 {
			return PricingResult{}, &InvalidDiscountError{Source: d.Source, Reason: fmt.Sprintf("percent %v outside [0, 1]", d.Percent)}
		}
	}
	for i, a := range in.EstimatedActions {
		if a.Count < 0 {
			return PricingResult{}, &InvalidInputError{
				Field:  fmt.Sprintf("EstimatedActions[%d].Count", i),
				Reason: fmt.Sprintf("count %d is negative", a.Count),
			}
		}
	}
	if in.EstimatedVolume < 0 {
		return PricingResult{}, &InvalidInputError{Field: "EstimatedVolume", Reason: fmt.Sprintf("volume %d is negative", in.EstimatedVolume)}
	}

	currency := in.Currency
	if currency == "" {
		currency = DefaultCurrency
	}

	result := PricingResult{
		Currency:        currency,
		BaseSetupFee:    base,
		EstimatedVolume: in.EstimatedVolume,
	}

	var unit float64
	for _, a := range in.EstimatedActions {
		entry, ok := in.Catalog[a.ActionType]
		if !ok {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("action type %q is not in the catalog and was priced at 0", a.ActionType))
			continue
		}
		unit += float64(a.Count) * entry.ListPrice
	}
	result.UnitPrice = roundUnit(unit)

	setupApplied := applyScope(base, ScopeSetupFee, in.Discounts)
	unitApplied := applyScope(result.UnitPrice, ScopeUnitPrice, in.Discounts)

	var setupOff, unitOff float64
	for i, d := range in.Discounts {
		var amount float64
		switch d.AppliesTo {
		case ScopeSetupFee:
			amount = setupApplied[i]
			setupOff += amount
			amount = roundCents(amount)
		case ScopeUnitPrice:
			amount = unitApplied[i]
			unitOff += amount
			amount = roundUnit(amount)
		}
		if amount > 0 {
			result.DiscountsApplied = append(result.DiscountsApplied, AppliedDiscount{
				Source:    d.Source,
				Percent:   d.Percent,
				AppliesTo: d.AppliesTo,
				Amount:    amount,
			})
		}
	}

	result.SetupFee = roundCents(clamp(base-setupOff, 0, base))
	result.EffectiveUnitPrice = roundUnit(clamp(result.UnitPrice-unitOff, 0, result.UnitPrice))
	if in.EstimatedVolume > 0 {
		result.EstimatedMonthlySpend = roundCents(result.EffectiveUnitPrice * float64(in.EstimatedVolume))
	}

	return result, nil
}

// applyScope returns, per input index, the amount each discount of scope
// removes from amount. Each discount takes amount×percent, capped by whatever
// the earlier discounts left, so the total never exceeds amount.
func applyScope(amount float64, scope DiscountScope, discounts []Discount) map[int]float64 {
	out := make(map[int]float64)
	remaining := amount
	for i, d := range discounts {
		if d.AppliesTo != scope {
			continue
		}
		take := math.Min(amount*d.Percent, remaining)
		if take < 0 {
			take = 0
		}
		remaining -= take
		out[i] = take
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

func roundUnit(v float64) float64 {
	return math.Round(v*10000) / 10000
}
