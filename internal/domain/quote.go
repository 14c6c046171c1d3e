package domain

import "time"

// QuoteStatus is the approval state of a quote.
type QuoteStatus string

const (
	QuoteDraft    QuoteStatus = "DRAFT"
	QuoteSent     QuoteStatus = "SENT"
	QuoteSigned   QuoteStatus = "SIGNED"
	QuoteRejected QuoteStatus = "REJECTED"
)

// QuoteStatuses lists every quote status.
var QuoteStatuses = []QuoteStatus{QuoteDraft, QuoteSent, QuoteSigned, QuoteRejected}

// QuoteTransition is a single permitted edge in the quote graph.
type QuoteTransition struct {
	Src QuoteStatus
	Dst QuoteStatus
}

// QuoteTransitions defines the quote approval graph. SIGNED and REJECTED are terminal.
var QuoteTransitions = []QuoteTransition{
	{Src: QuoteDraft, Dst: QuoteSent},
	{Src: QuoteDraft, Dst: QuoteRejected},
	{Src: QuoteSent, Dst: QuoteSigned},
	{Src: QuoteSent, Dst: QuoteRejected},
}

// Valid reports whether s is a known quote status.
func (s QuoteStatus) Valid() bool {
	switch s {
	case QuoteDraft, QuoteSent, QuoteSigned, QuoteRejected:
		return true
	}
	return false
}

// Terminal reports whether no transitions leave s.
func (s QuoteStatus) Terminal() bool {
	return s == QuoteSigned || s == QuoteRejected
}

// CanQuoteTransition reports whether a quote may move from one status to another.
func CanQuoteTransition(from, to QuoteStatus) bool {
	if !from.Valid() || !to.Valid() {
		return false
	}
	if from == to {
		return true
	}
	for _, t := range QuoteTransitions {
		if t.Src == from && t.Dst == to {
			return true
		}
	}
	return false
}

var quoteStatusToDB = map[QuoteStatus]string{
	QuoteDraft:    "draft",
	QuoteSent:     "sent",
	QuoteSigned:   "signed",
	QuoteRejected: "rejected",
}

var quoteStatusFromDB = map[string]QuoteStatus{
	"draft":    QuoteDraft,
	"sent":     QuoteSent,
	"signed":   QuoteSigned,
	"rejected": QuoteRejected,
}

// ToDBQuoteStatus returns the persisted representation of s.
func ToDBQuoteStatus(s QuoteStatus) (string, error) {
	if v, ok := quoteStatusToDB[s]; ok {
		return v, nil
	}
	return "", &UnknownStatusError{Value: string(s)}
}

// FromDBQuoteStatus parses a persisted quote status.
func FromDBQuoteStatus(v string) (QuoteStatus, error) {
	if s, ok := quoteStatusFromDB[v]; ok {
		return s, nil
	}
	return "", &UnknownStatusError{Value: v}
}

// ResolveQuoteStatus accepts either the API form ("SIGNED") or the persisted
// form ("signed") of a quote status.
func ResolveQuoteStatus(raw string) (QuoteStatus, error) {
	if s := QuoteStatus(raw); s.Valid() {
		return s, nil
	}
	return FromDBQuoteStatus(raw)
}

// Quote is a priced offer for one automation version.
type Quote struct {
	ID                    string
	TenantID              string
	AutomationVersionID   string
	Status                QuoteStatus
	Complexity            Complexity
	Currency              string
	SetupFee              float64
	UnitPrice             float64
	EffectiveUnitPrice    float64
	EstimatedVolume       int
	EstimatedMonthlySpend float64
	DiscountsApplied      []AppliedDiscount
	DiscountOfferIDs      []string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// NewQuote creates a DRAFT quote from a pricing result.
func NewQuote(id, tenantID, versionID string, complexity Complexity, result PricingResult, volume int, offerIDs []string) Quote {
	now := time.Now().UTC()
	return Quote{
		ID:                    id,
		TenantID:              tenantID,
		AutomationVersionID:   versionID,
		Status:                QuoteDraft,
		Complexity:            complexity,
		Currency:              result.Currency,
		SetupFee:              result.SetupFee,
		UnitPrice:             result.UnitPrice,
		EffectiveUnitPrice:    result.EffectiveUnitPrice,
		EstimatedVolume:       volume,
		EstimatedMonthlySpend: result.EstimatedMonthlySpend,
		DiscountsApplied:      result.DiscountsApplied,
		DiscountOfferIDs:      offerIDs,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
}
