package reconcile

import "github.com/google/uuid"

// Action is what reconciliation did with one supplier record.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionFailed  Action = "failed"
)

// Stage names the persistence step a failed supplier stopped at.
type Stage string

const (
	StageMatch    Stage = "match"
	StageCreate   Stage = "create"
	StageUpdate   Stage = "update"
	StageProducts Stage = "products"
	StageItems    Stage = "items"
)

// SupplierOutcome is the result of reconciling one supplier record.
type SupplierOutcome struct {
	SupplierName    string      `json:"supplierName"`
	OrderID         *uuid.UUID  `json:"orderId,omitempty"`
	Action          Action      `json:"action"`
	ItemCount       int         `json:"itemCount"`
	ProductsCreated int         `json:"productsCreated"`
	Ambiguous       []uuid.UUID `json:"ambiguous,omitempty"`
	Error           string      `json:"error,omitempty"`
	Stage           Stage       `json:"stage,omitempty"`
}

// Report summarises a reconciliation run.
type Report struct {
	QuotationNumber string            `json:"quotationNumber"`
	Suppliers       []SupplierOutcome `json:"suppliers"`
}

// Committed counts the suppliers whose transaction committed.
func (r *Report) Committed() int {
	n := 0
	for _, s := range r.Suppliers {
		if s.Action != ActionFailed {
			n++
		}
	}
	return n
}

// Failed counts the suppliers that were rolled back.
func (r *Report) Failed() int {
	return len(r.Suppliers) - r.Committed()
}
