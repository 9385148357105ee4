package domain

import "strings"

// FileType represents the allowed file types for upload.
type FileType string

const (
	FileTypePDF FileType = "pdf"
	FileTypeJPG FileType = "jpg"
	FileTypePNG FileType = "png"
)

// AllowedFileTypes maps FileType to its MIME content type.
var AllowedFileTypes = map[FileType]string{
	FileTypePDF: "application/pdf",
	FileTypeJPG: "image/jpeg",
	FileTypePNG: "image/png",
}

// AllowedContentTypes maps MIME content types back to FileType.
var AllowedContentTypes = map[string]FileType{
	"application/pdf": FileTypePDF,
	"image/jpeg":      FileTypeJPG,
	"image/png":       FileTypePNG,
}

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"pdf":  FileTypePDF,
	"jpg":  FileTypeJPG,
	"jpeg": FileTypeJPG,
	"png":  FileTypePNG,
}

// ExtractionMode selects the extraction strategy for an upload.
type ExtractionMode string

const (
	// ModeLocal runs the in-process text segmentation engine.
	ModeLocal ExtractionMode = "local"
	// ModeRemote delegates to a vision/language-model extraction provider.
	ModeRemote ExtractionMode = "remote"
)

// ValidExtractionModes is the set of accepted modes.
var ValidExtractionModes = map[ExtractionMode]bool{
	ModeLocal:  true,
	ModeRemote: true,
}

// ExtractionStatus represents the lifecycle of a staged extraction.
type ExtractionStatus string

const (
	ExtractionStatusPendingReview ExtractionStatus = "pending_review"
	ExtractionStatusConfirmed     ExtractionStatus = "confirmed"
	ExtractionStatusDeclined      ExtractionStatus = "declined"
	ExtractionStatusFailed        ExtractionStatus = "failed"
)

// OrderStatus represents the lifecycle of a persisted purchase order.
type OrderStatus string

const (
	OrderStatusPendingTriage    OrderStatus = "pending_triage"
	OrderStatusAwaitingDelivery OrderStatus = "awaiting_delivery"
	OrderStatusPartialDelivery  OrderStatus = "partial_delivery"
	OrderStatusFullDelivery     OrderStatus = "full_delivery"
	OrderStatusFinalized        OrderStatus = "finalized"
	OrderStatusDeclined         OrderStatus = "declined"
)

// orderStatusLabels are the display labels used by the procurement team.
var orderStatusLabels = map[OrderStatus]string{
	OrderStatusPendingTriage:    "Triagem",
	OrderStatusAwaitingDelivery: "Aguardando Entrega",
	OrderStatusPartialDelivery:  "Entrega Parcial",
	OrderStatusFullDelivery:     "Entrega Total",
	OrderStatusFinalized:        "Finalizado",
	OrderStatusDeclined:         "Declinado",
}

// Label returns the display label of the status.
func (s OrderStatus) Label() string {
	if l, ok := orderStatusLabels[s]; ok {
		return l
	}
	return string(s)
}

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	_, ok := orderStatusLabels[s]
	return ok
}

// orderTransitions lists the statuses reachable from each status by a
// workflow action. Returning to pending_triage is done by reconciliation only.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPendingTriage:    {OrderStatusAwaitingDelivery, OrderStatusDeclined},
	OrderStatusAwaitingDelivery: {OrderStatusPartialDelivery, OrderStatusFullDelivery, OrderStatusDeclined},
	OrderStatusPartialDelivery:  {OrderStatusFullDelivery, OrderStatusFinalized},
	OrderStatusFullDelivery:     {OrderStatusFinalized},
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to OrderStatus) bool {
	for _, s := range orderTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ProductClass is the catalog category of a product.
type ProductClass string

const (
	ProductClassMedicamentos        ProductClass = "Medicamentos"
	ProductClassMaterialHospitalar  ProductClass = "Material Hospitalar"
	ProductClassEPI                 ProductClass = "EPI"
	ProductClassGrafica             ProductClass = "Gráfica"
	ProductClassPapelaria           ProductClass = "Papelaria"
	ProductClassDieta               ProductClass = "Dieta"
	ProductClassQuimicosDescartavel ProductClass = "Químicos / Descartáveis"
	ProductClassUtensilios          ProductClass = "Utensílios"
	ProductClassEquipamentos        ProductClass = "Equipamentos Médicos"
)

var productClasses = []ProductClass{
	ProductClassMedicamentos,
	ProductClassMaterialHospitalar,
	ProductClassEPI,
	ProductClassGrafica,
	ProductClassPapelaria,
	ProductClassDieta,
	ProductClassQuimicosDescartavel,
	ProductClassUtensilios,
	ProductClassEquipamentos,
}

// ParseProductClass resolves a class name case-insensitively.
func ParseProductClass(s string) (ProductClass, bool) {
	s = strings.TrimSpace(s)
	for _, c := range productClasses {
		if strings.EqualFold(string(c), s) {
			return c, true
		}
	}
	return "", false
}
