package reconcile

import (
	"strings"

	"github.com/google/uuid"

	"sva/internal/domain"
)

// NormalizeQuotation reduces a quotation number to its digits. The sentinel
// used when no number could be found normalizes to "" so it never matches.
func NormalizeQuotation(s string) string {
	if strings.TrimSpace(s) == domain.SentinelQuotationNumber {
		return ""
	}
	return domain.DigitsOnly(s)
}

func quotationMatches(a, b string) bool {
	a, b = NormalizeQuotation(a), NormalizeQuotation(b)
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// nameMatches never treats the placeholder name as identifying a supplier.
func nameMatches(a, b string) bool {
	a, b = strings.ToLower(strings.TrimSpace(a)), strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" || isPlaceholderName(a) || isPlaceholderName(b) {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func isPlaceholderName(lowered string) bool {
	return lowered == strings.ToLower(domain.PlaceholderSupplierName)
}

func cnpjMatches(a, b string) bool {
	a, b = domain.DigitsOnly(a), domain.DigitsOnly(b)
	return a != "" && a == b
}

func cnpjConflicts(a, b string) bool {
	a, b = domain.DigitsOnly(a), domain.DigitsOnly(b)
	return a != "" && b != "" && a != b
}

// Matches reports whether a persisted order corresponds to the supplier record
// of the given quotation: same quotation (either contains the other) and
// overlapping supplier names, or the same CNPJ. Two different CNPJs never match.
func Matches(order *domain.PurchaseOrder, quotationNumber string, rec *domain.SupplierRecord) bool {
	if cnpjConflicts(order.SupplierCNPJ, rec.CNPJ) {
		return false
	}
	if quotationMatches(order.QuotationNumber, quotationNumber) && nameMatches(order.SupplierName, rec.Name) {
		return true
	}
	return cnpjMatches(order.SupplierCNPJ, rec.CNPJ)
}

// MatchOrder picks the first candidate that matches. Every further matching
// candidate is returned in ambiguous for a human to review.
func MatchOrder(candidates []domain.PurchaseOrder, quotationNumber string, rec *domain.SupplierRecord) (*domain.PurchaseOrder, []uuid.UUID) {
	return MatchOrderExcluding(candidates, quotationNumber, rec, nil)
}

// MatchOrderExcluding is MatchOrder where the orders in claimed, already
// resolved for another supplier, can only be reported as ambiguous.
func MatchOrderExcluding(candidates []domain.PurchaseOrder, quotationNumber string, rec *domain.SupplierRecord, claimed map[uuid.UUID]bool) (*domain.PurchaseOrder, []uuid.UUID) {
	var match *domain.PurchaseOrder
	var ambiguous []uuid.UUID
	for i := range candidates {
		if !Matches(&candidates[i], quotationNumber, rec) {
			continue
		}
		if match == nil && !claimed[candidates[i].ID] {
			match = &candidates[i]
			continue
		}
		ambiguous = append(ambiguous, candidates[i].ID)
	}
	return match, ambiguous
}
