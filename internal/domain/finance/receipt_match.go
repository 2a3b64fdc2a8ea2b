package finance

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ExtractedReceipt holds the fields pulled out of an uploaded receipt by the
// document extraction service. Every field is optional: extraction output is
// untrusted and may be partial or garbage.
type ExtractedReceipt struct {
	Amount       *decimal.Decimal `json:"amount,omitempty"`
	SupplierName string           `json:"supplier_name,omitempty"`
	ReceiptDate  *time.Time       `json:"receipt_date,omitempty"`
}

// MatchOutcome is the result of evaluating a receipt against its due
type MatchOutcome string

const (
	MatchOutcomeApproved     MatchOutcome = "APPROVED"      // payment accepted automatically
	MatchOutcomeManualReview MatchOutcome = "MANUAL_REVIEW" // left for an administrator
)

// MatchDecision carries the outcome and the reason it was reached
type MatchDecision struct {
	Outcome MatchOutcome
	Reason  string
}

// Approved returns true if the decision accepts the payment
func (d MatchDecision) Approved() bool {
	return d.Outcome == MatchOutcomeApproved
}

// ReceiptMatchPolicy decides whether an extracted receipt is trustworthy
// enough to accept a due's payment without human review. Any doubt routes
// to manual review; the policy never auto-rejects.
type ReceiptMatchPolicy struct {
	amountTolerance decimal.Decimal
}

// DefaultAmountTolerance is the maximum accepted gap between the due amount
// and the amount printed on the receipt. The gap must be strictly below the
// tolerance to auto-approve.
var DefaultAmountTolerance = decimal.NewFromInt(1)

// NewReceiptMatchPolicy creates a policy with the default tolerance
func NewReceiptMatchPolicy() *ReceiptMatchPolicy {
	return &ReceiptMatchPolicy{amountTolerance: DefaultAmountTolerance}
}

// NewReceiptMatchPolicyWithTolerance creates a policy with a custom tolerance
func NewReceiptMatchPolicyWithTolerance(tolerance decimal.Decimal) *ReceiptMatchPolicy {
	if tolerance.LessThanOrEqual(decimal.Zero) {
		tolerance = DefaultAmountTolerance
	}
	return &ReceiptMatchPolicy{amountTolerance: tolerance}
}

// Evaluate decides whether the extracted receipt pays the given due.
// expectedRecipient is the building's bank account holder name, falling back
// to the building name when no account name is configured.
func (p *ReceiptMatchPolicy) Evaluate(due *Due, expectedRecipient string, extracted ExtractedReceipt) MatchDecision {
	if extracted.Amount == nil {
		return manualReview("no amount could be extracted from the receipt")
	}

	diff := extracted.Amount.Sub(due.Amount).Abs()
	if diff.GreaterThanOrEqual(p.amountTolerance) {
		return manualReview(fmt.Sprintf(
			"extracted amount %s differs from due amount %s by %s or more",
			extracted.Amount.StringFixed(2), due.Amount.StringFixed(2), p.amountTolerance.StringFixed(2)))
	}

	keyword := recipientKeyword(expectedRecipient)
	if keyword == "" {
		return manualReview("no recipient name configured for the building")
	}
	if extracted.SupplierName == "" {
		return manualReview("no recipient could be extracted from the receipt")
	}
	if !strings.Contains(strings.ToLower(extracted.SupplierName), keyword) {
		return manualReview(fmt.Sprintf("receipt recipient %q does not mention %q", extracted.SupplierName, keyword))
	}

	return MatchDecision{Outcome: MatchOutcomeApproved, Reason: "amount and recipient match"}
}

// recipientKeyword returns the first word of the expected recipient name,
// lowercased, which is matched as a substring of the extracted supplier.
func recipientKeyword(expectedRecipient string) string {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(expectedRecipient)))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func manualReview(reason string) MatchDecision {
	return MatchDecision{Outcome: MatchOutcomeManualReview, Reason: reason}
}
