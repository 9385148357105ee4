package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"sva/internal/domain"
	"sva/internal/port"
)

const (
	defaultFuzzyThreshold = 0.85
	defaultCandidateLimit = 20
)

// Options tunes one reconciliation run.
type Options struct {
	ExtractionID   *uuid.UUID
	HospitalUnit   string
	FuzzyThreshold float64
	DefaultClass   domain.ProductClass
	CandidateLimit int
}

func (o Options) withDefaults() Options {
	if o.FuzzyThreshold <= 0 || o.FuzzyThreshold > 1 {
		o.FuzzyThreshold = defaultFuzzyThreshold
	}
	if o.CandidateLimit <= 0 {
		o.CandidateLimit = defaultCandidateLimit
	}
	if o.DefaultClass == "" {
		o.DefaultClass = domain.ProductClassMaterialHospitalar
	}
	return o
}

// Engine merges extraction results into persisted orders, items and products.
type Engine struct {
	tx  port.TxManager
	now func() time.Time
}

// NewEngine creates a reconciliation Engine.
func NewEngine(tx port.TxManager) *Engine {
	return &Engine{tx: tx, now: time.Now}
}

// Reconcile commits every supplier record of res in its own transaction. A
// failing supplier is reported and rolled back without stopping the others.
// An order resolved for one supplier is never merged into by a later supplier
// of the same run.
func (e *Engine) Reconcile(ctx context.Context, res *domain.ExtractionResult, opts Options) *Report {
	opts = opts.withDefaults()
	rep := &Report{QuotationNumber: res.QuotationNumber, Suppliers: make([]SupplierOutcome, 0, len(res.Suppliers))}

	claimed := make(map[uuid.UUID]bool, len(res.Suppliers))
	for i := range res.Suppliers {
		out := e.reconcileSupplier(ctx, res, &res.Suppliers[i], opts, claimed)
		if out.OrderID != nil && out.Action != ActionFailed {
			claimed[*out.OrderID] = true
		}
		if out.Action == ActionFailed {
			log.Printf("reconcile.Engine: supplier %q of quotation %s failed at %s: %s",
				out.SupplierName, res.QuotationNumber, out.Stage, out.Error)
		}
		rep.Suppliers = append(rep.Suppliers, out)
	}

	log.Printf("reconcile.Engine: quotation %s reconciled, %d committed, %d failed",
		res.QuotationNumber, rep.Committed(), rep.Failed())
	return rep
}

func (e *Engine) reconcileSupplier(ctx context.Context, res *domain.ExtractionResult, rec *domain.SupplierRecord, opts Options, claimed map[uuid.UUID]bool) SupplierOutcome {
	out := SupplierOutcome{SupplierName: rec.Name, ItemCount: len(rec.Items)}
	stage := StageMatch

	err := e.tx.WithinTx(ctx, func(ctx context.Context, repos port.Repositories) error {
		out.ProductsCreated = 0
		out.Ambiguous = nil

		var candidates []domain.PurchaseOrder
		qDigits, cnpjDigits := NormalizeQuotation(res.QuotationNumber), domain.DigitsOnly(rec.CNPJ)
		if qDigits != "" || cnpjDigits != "" {
			var err error
			candidates, err = repos.Orders.FindCandidates(ctx, qDigits, cnpjDigits)
			if err != nil {
				return err
			}
		}
		match, ambiguous := MatchOrderExcluding(candidates, res.QuotationNumber, rec, claimed)
		out.Ambiguous = ambiguous

		now := e.now()
		var order *domain.PurchaseOrder
		if match == nil {
			stage = StageCreate
			order = newOrder(res, rec, opts, now)
			if err := repos.Orders.Create(ctx, order); err != nil {
				return err
			}
			out.Action = ActionCreated
		} else {
			stage = StageUpdate
			order = match
			mergeOrder(order, res, rec, opts, now)
			if err := repos.Orders.Update(ctx, order); err != nil {
				return err
			}
			out.Action = ActionUpdated
		}
		id := order.ID
		out.OrderID = &id

		stage = StageProducts
		items := make([]domain.OrderItem, 0, len(rec.Items))
		for _, li := range rec.Items {
			product, created, err := resolveProduct(ctx, repos.Products, li, opts)
			if err != nil {
				return err
			}
			if created {
				out.ProductsCreated++
			}
			pid := product.ID
			items = append(items, domain.OrderItem{
				ID:          uuid.New(),
				OrderID:     order.ID,
				ProductID:   &pid,
				Code:        li.Code,
				Description: li.Description,
				Quantity:    li.Quantity,
				Unit:        li.Unit,
				UnitPrice:   li.UnitPrice,
				TotalValue:  li.ResolveTotal(),
			})
		}

		stage = StageItems
		if err := repos.Items.DeleteByOrder(ctx, order.ID); err != nil {
			return err
		}
		if len(items) > 0 {
			if err := repos.Items.CreateBatch(ctx, items); err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		if out.Action == ActionCreated {
			out.OrderID = nil
		}
		out.Action = ActionFailed
		out.ProductsCreated = 0
		out.Stage = stage
		out.Error = err.Error()
	}
	return out
}

func newOrder(res *domain.ExtractionResult, rec *domain.SupplierRecord, opts Options, now time.Time) *domain.PurchaseOrder {
	order := &domain.PurchaseOrder{
		ID:               uuid.New(),
		QuotationNumber:  res.QuotationNumber,
		QuotationTitle:   res.QuotationTitle,
		SupplierName:     rec.Name,
		SupplierCNPJ:     rec.CNPJ,
		SupplierEmail:    rec.Email,
		OrderNumber:      rec.OrderNumber,
		DeliveryDeadline: rec.DeliveryDeadline,
		HospitalUnit:     opts.HospitalUnit,
		Status:           domain.OrderStatusPendingTriage,
		TotalValue:       rec.TotalValue,
		ExtractionID:     opts.ExtractionID,
	}
	if order.DeliveryDeadline == "" {
		order.DeliveryDeadline = domain.DefaultDeliveryDeadline
	}
	order.ExpectedDeliveryDate = expectedDelivery(order.DeliveryDeadline, now)
	return order
}

// mergeOrder overwrites only the fields the new record carries. Placeholder
// supplier names, the default title and the default deadline count as empty.
func mergeOrder(order *domain.PurchaseOrder, res *domain.ExtractionResult, rec *domain.SupplierRecord, opts Options, now time.Time) {
	if NormalizeQuotation(res.QuotationNumber) != "" {
		order.QuotationNumber = res.QuotationNumber
	}
	if t := strings.TrimSpace(res.QuotationTitle); t != "" && (t != domain.DefaultQuotationTitle || order.QuotationTitle == "") {
		order.QuotationTitle = t
	}
	if n := strings.TrimSpace(rec.Name); n != "" && (n != domain.PlaceholderSupplierName || order.SupplierName == "") {
		order.SupplierName = n
	}
	setIfPresent(&order.SupplierCNPJ, rec.CNPJ)
	setIfPresent(&order.SupplierEmail, rec.Email)
	setIfPresent(&order.OrderNumber, rec.OrderNumber)
	deadline := strings.TrimSpace(rec.DeliveryDeadline)
	if deadline == domain.DefaultDeliveryDeadline && strings.TrimSpace(order.DeliveryDeadline) != "" {
		deadline = ""
	}
	if setIfPresent(&order.DeliveryDeadline, deadline) {
		if d := expectedDelivery(order.DeliveryDeadline, now); d != nil {
			order.ExpectedDeliveryDate = d
		}
	}
	if rec.TotalValue > 0 {
		order.TotalValue = rec.TotalValue
	}
	if order.HospitalUnit == "" {
		order.HospitalUnit = opts.HospitalUnit
	}
	if opts.ExtractionID != nil {
		order.ExtractionID = opts.ExtractionID
	}
	order.Status = domain.OrderStatusPendingTriage
}

func setIfPresent(dst *string, v string) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		return false
	}
	*dst = v
	return true
}

// expectedDelivery returns now plus the deadline in days, or nil when the
// deadline is not a day count.
func expectedDelivery(deadline string, now time.Time) *time.Time {
	days, err := strconv.Atoi(domain.DigitsOnly(deadline))
	if err != nil || days < 0 {
		return nil
	}
	d := now.AddDate(0, 0, days)
	return &d
}

// resolveProduct finds the catalog product for an item, by exact code first
// and then by fuzzy name, creating a minimal entry when neither matches.
func resolveProduct(ctx context.Context, products port.ProductRepository, li domain.LineItem, opts Options) (*domain.Product, bool, error) {
	code := strings.TrimSpace(li.Code)
	if li.HasCode() {
		p, err := products.FindByCode(ctx, code)
		if err == nil {
			return p, false, nil
		}
		if !errors.Is(err, domain.ErrProductNotFound) {
			return nil, false, fmt.Errorf("finding product %s: %w", code, err)
		}
	}

	candidates, err := products.SearchByName(ctx, li.Description, opts.CandidateLimit)
	if err != nil {
		return nil, false, fmt.Errorf("searching products: %w", err)
	}
	if best := bestMatch(candidates, li.Description, opts.FuzzyThreshold); best != nil {
		return best, false, nil
	}

	p := &domain.Product{
		ID:        uuid.New(),
		Name:      li.Description,
		Unit:      li.Unit,
		UnitPrice: li.UnitPrice,
		Class:     opts.DefaultClass,
	}
	if li.HasCode() {
		p.Code = code
	}
	if err := products.Create(ctx, p); err != nil {
		return nil, false, fmt.Errorf("creating product %q: %w", li.Description, err)
	}
	return p, true, nil
}

func bestMatch(candidates []domain.Product, name string, threshold float64) *domain.Product {
	var best *domain.Product
	bestScore := threshold
	for i := range candidates {
		if score := Similarity(candidates[i].Name, name); score >= bestScore {
			best = &candidates[i]
			bestScore = score
		}
	}
	return best
}
