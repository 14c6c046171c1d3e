package domain

import (
	"strings"
	"time"
)

// DiscountScope selects which price component a discount reduces.
type DiscountScope string

const (
	ScopeSetupFee  DiscountScope = "setup_fee"
	ScopeUnitPrice DiscountScope = "unit_price"
)

// Valid reports whether s is a known scope.
func (s DiscountScope) Valid() bool {
	return s == ScopeSetupFee || s == ScopeUnitPrice
}

// OfferKind identifies a discount incentive issued for an automation version.
type OfferKind string

const (
	OfferFirstCongrats  OfferKind = "first_congrats"
	OfferFirstIncentive OfferKind = "first_incentive"
	OfferFollowup5      OfferKind = "followup_5"
	OfferFollowup10     OfferKind = "followup_10"
)

// OfferSpec holds the fixed terms of an offer kind.
type OfferSpec struct {
	Kind       OfferKind
	Percent    float64
	AppliesTo  DiscountScope
	CodePrefix string
	ValidFor   time.Duration
}

var offerSpecs = map[OfferKind]OfferSpec{
	OfferFirstCongrats:  {Kind: OfferFirstCongrats, Percent: 0.10, AppliesTo: ScopeSetupFee, CodePrefix: "FIRST", ValidFor: 30 * 24 * time.Hour},
	OfferFirstIncentive: {Kind: OfferFirstIncentive, Percent: 0.25, AppliesTo: ScopeSetupFee, CodePrefix: "FIRST", ValidFor: 72 * time.Hour},
	OfferFollowup5:      {Kind: OfferFollowup5, Percent: 0.05, AppliesTo: ScopeUnitPrice, CodePrefix: "NEXT", ValidFor: 30 * 24 * time.Hour},
	OfferFollowup10:     {Kind: OfferFollowup10, Percent: 0.10, AppliesTo: ScopeUnitPrice, CodePrefix: "NEXT", ValidFor: 72 * time.Hour},
}

// SpecFor returns the terms of kind.
func SpecFor(kind OfferKind) (OfferSpec, bool) {
	spec, ok := offerSpecs[kind]
	return spec, ok
}

// FirstAutomation reports whether k belongs to the first-automation family.
func (k OfferKind) FirstAutomation() bool {
	return k == OfferFirstCongrats || k == OfferFirstIncentive
}

// IssuedFamily reports which family the offers already issued for a version
// belong to. ok is false when nothing has been issued yet.
func IssuedFamily(existing []DiscountOffer) (firstAutomation, ok bool) {
	if len(existing) == 0 {
		return false, false
	}
	return existing[0].Kind.FirstAutomation(), true
}

// RequiredOfferKinds returns the offer kinds issued for a version, chosen by
// whether it is the tenant's first automation.
func RequiredOfferKinds(firstAutomation bool) []OfferKind {
	if firstAutomation {
		return []OfferKind{OfferFirstCongrats, OfferFirstIncentive}
	}
	return []OfferKind{OfferFollowup5, OfferFollowup10}
}

// MissingOfferKinds returns the kinds in required that are absent from existing,
// preserving the order of required.
func MissingOfferKinds(required []OfferKind, existing []DiscountOffer) []OfferKind {
	have := make(map[OfferKind]bool, len(existing))
	for _, o := range existing {
		have[o.Kind] = true
	}
	var missing []OfferKind
	for _, k := range required {
		if !have[k] {
			missing = append(missing, k)
		}
	}
	return missing
}

// DiscountOffer is a single-use, scoped percentage reduction redeemable by code.
type DiscountOffer struct {
	ID                  string
	TenantID            string
	AutomationVersionID string
	Code                string
	Percent             float64
	AppliesTo           DiscountScope
	Kind                OfferKind
	UsedAt              *time.Time
	ExpiresAt           *time.Time
	CreatedAt           time.Time
}

// NewDiscountOffer builds an unused offer of the given kind.
func NewDiscountOffer(id, tenantID, versionID, code string, spec OfferSpec, now time.Time) DiscountOffer {
	offer := DiscountOffer{
		ID:                  id,
		TenantID:            tenantID,
		AutomationVersionID: versionID,
		Code:                NormalizeDiscountCode(code),
		Percent:             spec.Percent,
		AppliesTo:           spec.AppliesTo,
		Kind:                spec.Kind,
		CreatedAt:           now,
	}
	if spec.ValidFor > 0 {
		expires := now.Add(spec.ValidFor)
		offer.ExpiresAt = &expires
	}
	return offer
}

// Usable reports whether the offer can still be redeemed at now.
func (o DiscountOffer) Usable(now time.Time) bool {
	if o.UsedAt != nil {
		return false
	}
	if o.ExpiresAt != nil && o.ExpiresAt.Before(now) {
		return false
	}
	return true
}

// AsPricingDiscount converts the offer into a pricing engine input.
func (o DiscountOffer) AsPricingDiscount() Discount {
	return Discount{Source: o.Code, Percent: o.Percent, AppliesTo: o.AppliesTo}
}

// NormalizeDiscountCode upper-cases and trims a code for storage and lookup.
func NormalizeDiscountCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
