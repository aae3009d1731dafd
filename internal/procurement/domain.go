package procurement

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Purchase order lifecycle statuses.
type POStatus string

const (
	POStatusDraft     POStatus = "DRAFT"
	POStatusApproved  POStatus = "APPROVED"
	POStatusActive    POStatus = "ACTIVE"
	POStatusClosed    POStatus = "CLOSED"
	POStatusCancelled POStatus = "CANCELLED"
)

// Supplier statuses.
type SupplierStatus string

const (
	SupplierStatusActive      SupplierStatus = "ACTIVE"
	SupplierStatusInactive    SupplierStatus = "INACTIVE"
	SupplierStatusBlacklisted SupplierStatus = "BLACKLISTED"
)

// Invoice lifecycle statuses.
type InvoiceStatus string

const (
	InvoiceStatusDraft           InvoiceStatus = "DRAFT"
	InvoiceStatusPendingApproval InvoiceStatus = "PENDING_APPROVAL"
	InvoiceStatusApproved        InvoiceStatus = "APPROVED"
	InvoiceStatusPaid            InvoiceStatus = "PAID"
	InvoiceStatusRejected        InvoiceStatus = "REJECTED"
)

// Change order cause categories, assigned upstream when the CO is raised.
type COCause string

const (
	COCauseScope    COCause = "SCOPE"
	COCauseRate     COCause = "RATE"
	COCauseQuantity COCause = "QUANTITY"
	COCauseSchedule COCause = "SCHEDULE"
)

// Change order statuses.
type COStatus string

const (
	COStatusPending  COStatus = "PENDING"
	COStatusApproved COStatus = "APPROVED"
	COStatusRejected COStatus = "REJECTED"
)

// NCR severities.
type NCRSeverity string

const (
	NCRSeverityLow      NCRSeverity = "LOW"
	NCRSeverityMedium   NCRSeverity = "MEDIUM"
	NCRSeverityHigh     NCRSeverity = "HIGH"
	NCRSeverityCritical NCRSeverity = "CRITICAL"
)

// NCR statuses.
type NCRStatus string

const (
	NCRStatusOpen   NCRStatus = "OPEN"
	NCRStatusClosed NCRStatus = "CLOSED"
)

// Shipment statuses.
type ShipmentStatus string

const (
	ShipmentStatusPending   ShipmentStatus = "PENDING"
	ShipmentStatusInTransit ShipmentStatus = "IN_TRANSIT"
	ShipmentStatusDelivered ShipmentStatus = "DELIVERED"
	ShipmentStatusCancelled ShipmentStatus = "CANCELLED"
)

// Milestone statuses.
type MilestoneStatus string

const (
	MilestoneStatusPending   MilestoneStatus = "PENDING"
	MilestoneStatusCompleted MilestoneStatus = "COMPLETED"
)

// PurchaseOrder is the contractual commitment to a supplier. Immutable once closed.
type PurchaseOrder struct {
	ID                uuid.UUID       `json:"id"`
	Number            string          `json:"number"`
	ProjectID         uuid.UUID       `json:"projectId"`
	SupplierID        uuid.UUID       `json:"supplierId"`
	TotalValue        decimal.Decimal `json:"totalValue"`
	RetentionPct      float64         `json:"retentionPercentage"`
	PhysicalProgress  float64         `json:"physicalProgress"`
	FinancialProgress float64         `json:"financialProgress"`
	Status            POStatus        `json:"status"`
	CreatedAt         time.Time       `json:"createdAt"`
}

// Supplier master record.
type Supplier struct {
	ID             uuid.UUID      `json:"id"`
	Name           string         `json:"name"`
	Status         SupplierStatus `json:"status"`
	ReadinessScore float64        `json:"readinessScore"`
}

// LineItem is a BOQ row belonging to a PO. A nil ROSDate means the item is
// unscheduled; such items are reported in a dedicated bucket, never dropped.
type LineItem struct {
	ID            uuid.UUID       `json:"id"`
	POID          uuid.UUID       `json:"purchaseOrderId"`
	MaterialClass string          `json:"materialClass"`
	Description   string          `json:"description"`
	Unit          string          `json:"unit"`
	RequiredQty   decimal.Decimal `json:"requiredQty"`
	ROSDate       *time.Time      `json:"rosDate,omitempty"`
}

// Delivery records goods received against a line item. Its on-time status is
// derived by comparing actual vs expected date, never supplied upstream.
type Delivery struct {
	ID           uuid.UUID       `json:"id"`
	LineItemID   uuid.UUID       `json:"lineItemId"`
	ExpectedDate time.Time       `json:"expectedDate"`
	ActualDate   *time.Time      `json:"actualDate,omitempty"`
	Quantity     decimal.Decimal `json:"quantity"`
}

// Invoice raised by a supplier against a PO.
type Invoice struct {
	ID          uuid.UUID       `json:"id"`
	POID        uuid.UUID       `json:"purchaseOrderId"`
	Number      string          `json:"number"`
	Amount      decimal.Decimal `json:"amount"`
	Status      InvoiceStatus   `json:"status"`
	InvoiceDate time.Time       `json:"invoiceDate"`
	DueDate     time.Time       `json:"dueDate"`
	PaidAt      *time.Time      `json:"paidAt,omitempty"`
}

// ChangeOrder is an approved modification to a PO. ValueDelta is signed:
// positive means cost increase.
type ChangeOrder struct {
	ID         uuid.UUID       `json:"id"`
	POID       uuid.UUID       `json:"purchaseOrderId"`
	Number     string          `json:"number"`
	ValueDelta decimal.Decimal `json:"valueDelta"`
	Cause      COCause         `json:"cause"`
	Status     COStatus        `json:"status"`
	ApprovedAt *time.Time      `json:"approvedAt,omitempty"`
}

// NCR is a non-conformance (quality defect) report attached to a PO.
type NCR struct {
	ID       uuid.UUID   `json:"id"`
	POID     uuid.UUID   `json:"purchaseOrderId"`
	Number   string      `json:"number"`
	Severity NCRSeverity `json:"severity"`
	Status   NCRStatus   `json:"status"`
	RaisedAt time.Time   `json:"raisedAt"`
}

// Shipment tracks logistics movement for a PO.
type Shipment struct {
	ID                 uuid.UUID      `json:"id"`
	POID               uuid.UUID      `json:"purchaseOrderId"`
	Status             ShipmentStatus `json:"status"`
	ETA                time.Time      `json:"logisticsEta"`
	ActualDeliveryDate *time.Time     `json:"actualDeliveryDate,omitempty"`
}

// Milestone is a payment milestone on a PO schedule. PaymentPct is the share
// of the PO value released when the milestone completes.
type Milestone struct {
	ID           uuid.UUID       `json:"id"`
	POID         uuid.UUID       `json:"purchaseOrderId"`
	Name         string          `json:"name"`
	PaymentPct   float64         `json:"paymentPercentage"`
	ExpectedDate time.Time       `json:"expectedDate"`
	Status       MilestoneStatus `json:"status"`
	CompletedAt  *time.Time      `json:"completedAt,omitempty"`
}

// Value returns the monetary value the milestone releases on its parent PO.
func (m Milestone) Value(po PurchaseOrder) decimal.Decimal {
	return po.TotalValue.Mul(decimal.NewFromFloat(m.PaymentPct)).Div(decimal.NewFromInt(100))
}

// Snapshot is the in-memory record set one analytics request operates on.
// It is loaded once per request and never shared across requests.
type Snapshot struct {
	POs          []PurchaseOrder
	Suppliers    []Supplier
	LineItems    []LineItem
	Deliveries   []Delivery
	Invoices     []Invoice
	ChangeOrders []ChangeOrder
	NCRs         []NCR
	Shipments    []Shipment
	Milestones   []Milestone
}
