package procurement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/sitegrid-erp/sitegrid/internal/platform/db"
)

// Repository loads procurement records from PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// LoadSnapshot fetches every record family inside one repeatable-read
// transaction so all derived views observe a single consistent snapshot.
func (r *Repository) LoadSnapshot(ctx context.Context, params SnapshotParams) (Snapshot, error) {
	if r == nil || r.pool == nil {
		return Snapshot{}, errors.New("procurement repository not initialised")
	}
	var snap Snapshot
	err := db.WithSnapshotTx(ctx, r.pool, func(tx pgx.Tx) error {
		var err error
		if snap.POs, err = loadPOs(ctx, tx, params); err != nil {
			return err
		}
		if snap.Suppliers, err = loadSuppliers(ctx, tx, params); err != nil {
			return err
		}
		if snap.LineItems, err = loadLineItems(ctx, tx, params); err != nil {
			return err
		}
		if snap.Deliveries, err = loadDeliveries(ctx, tx, params); err != nil {
			return err
		}
		if snap.Invoices, err = loadInvoices(ctx, tx, params); err != nil {
			return err
		}
		if snap.ChangeOrders, err = loadChangeOrders(ctx, tx, params); err != nil {
			return err
		}
		if snap.NCRs, err = loadNCRs(ctx, tx, params); err != nil {
			return err
		}
		if snap.Shipments, err = loadShipments(ctx, tx, params); err != nil {
			return err
		}
		snap.Milestones, err = loadMilestones(ctx, tx, params)
		return err
	})
	if err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// ListProjectIDs returns every distinct project that has purchase orders,
// used by background jobs to fan out per-project work.
func (r *Repository) ListProjectIDs(ctx context.Context) ([]uuid.UUID, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("procurement repository not initialised")
	}
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT project_id FROM purchase_order ORDER BY project_id`)
	if err != nil {
		return nil, fmt.Errorf("procurement: list projects: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

const poScopeFilter = `po.organization_id = $1
  AND ($2::uuid IS NULL OR po.project_id = $2)
  AND ($3::timestamptz IS NULL OR po.created_at >= $3)
  AND ($4::timestamptz IS NULL OR po.created_at <= $4)`

func scopeArgs(params SnapshotParams) []any {
	return []any{
		params.OrganizationID,
		optionalUUID(params.ProjectID),
		optionalTime(params.DateFrom),
		optionalTime(params.DateTo),
	}
}

func loadPOs(ctx context.Context, tx pgx.Tx, params SnapshotParams) ([]PurchaseOrder, error) {
	query := `
		SELECT po.id, po.number, po.project_id, po.supplier_id, po.total_value,
		       COALESCE(po.retention_percentage, 0), COALESCE(po.physical_progress, 0),
		       COALESCE(po.financial_progress, 0), po.status, po.created_at
		FROM purchase_order po
		WHERE ` + poScopeFilter
	rows, err := tx.Query(ctx, query, scopeArgs(params)...)
	if err != nil {
		return nil, fmt.Errorf("procurement: load purchase orders: %w", err)
	}
	defer rows.Close()

	var pos []PurchaseOrder
	for rows.Next() {
		var po PurchaseOrder
		var total pgtype.Numeric
		if err := rows.Scan(&po.ID, &po.Number, &po.ProjectID, &po.SupplierID, &total,
			&po.RetentionPct, &po.PhysicalProgress, &po.FinancialProgress, &po.Status, &po.CreatedAt); err != nil {
			return nil, err
		}
		po.TotalValue = numericDecimal(total)
		pos = append(pos, po)
	}
	return pos, rows.Err()
}

func loadSuppliers(ctx context.Context, tx pgx.Tx, params SnapshotParams) ([]Supplier, error) {
	query := `
		SELECT DISTINCT s.id, s.name, s.status, COALESCE(s.readiness_score, 0)
		FROM supplier s
		JOIN purchase_order po ON po.supplier_id = s.id
		WHERE ` + poScopeFilter
	rows, err := tx.Query(ctx, query, scopeArgs(params)...)
	if err != nil {
		return nil, fmt.Errorf("procurement: load suppliers: %w", err)
	}
	defer rows.Close()

	var suppliers []Supplier
	for rows.Next() {
		var s Supplier
		if err := rows.Scan(&s.ID, &s.Name, &s.Status, &s.ReadinessScore); err != nil {
			return nil, err
		}
		suppliers = append(suppliers, s)
	}
	return suppliers, rows.Err()
}

func loadLineItems(ctx context.Context, tx pgx.Tx, params SnapshotParams) ([]LineItem, error) {
	query := `
		SELECT li.id, li.purchase_order_id, li.material_class, COALESCE(li.description, ''),
		       COALESCE(li.unit, ''), li.required_qty, li.ros_date
		FROM line_item li
		JOIN purchase_order po ON po.id = li.purchase_order_id
		WHERE ` + poScopeFilter
	rows, err := tx.Query(ctx, query, scopeArgs(params)...)
	if err != nil {
		return nil, fmt.Errorf("procurement: load line items: %w", err)
	}
	defer rows.Close()

	var items []LineItem
	for rows.Next() {
		var li LineItem
		var qty pgtype.Numeric
		if err := rows.Scan(&li.ID, &li.POID, &li.MaterialClass, &li.Description, &li.Unit, &qty, &li.ROSDate); err != nil {
			return nil, err
		}
		li.RequiredQty = numericDecimal(qty)
		items = append(items, li)
	}
	return items, rows.Err()
}

func loadDeliveries(ctx context.Context, tx pgx.Tx, params SnapshotParams) ([]Delivery, error) {
	query := `
		SELECT d.id, d.line_item_id, d.expected_date, d.actual_date, d.quantity
		FROM delivery d
		JOIN line_item li ON li.id = d.line_item_id
		JOIN purchase_order po ON po.id = li.purchase_order_id
		WHERE ` + poScopeFilter
	rows, err := tx.Query(ctx, query, scopeArgs(params)...)
	if err != nil {
		return nil, fmt.Errorf("procurement: load deliveries: %w", err)
	}
	defer rows.Close()

	var deliveries []Delivery
	for rows.Next() {
		var d Delivery
		var qty pgtype.Numeric
		if err := rows.Scan(&d.ID, &d.LineItemID, &d.ExpectedDate, &d.ActualDate, &qty); err != nil {
			return nil, err
		}
		d.Quantity = numericDecimal(qty)
		deliveries = append(deliveries, d)
	}
	return deliveries, rows.Err()
}

func loadInvoices(ctx context.Context, tx pgx.Tx, params SnapshotParams) ([]Invoice, error) {
	query := `
		SELECT inv.id, inv.purchase_order_id, inv.number, inv.amount, inv.status,
		       inv.invoice_date, inv.due_date, inv.paid_at
		FROM invoice inv
		JOIN purchase_order po ON po.id = inv.purchase_order_id
		WHERE ` + poScopeFilter
	rows, err := tx.Query(ctx, query, scopeArgs(params)...)
	if err != nil {
		return nil, fmt.Errorf("procurement: load invoices: %w", err)
	}
	defer rows.Close()

	var invoices []Invoice
	for rows.Next() {
		var inv Invoice
		var amount pgtype.Numeric
		if err := rows.Scan(&inv.ID, &inv.POID, &inv.Number, &amount, &inv.Status,
			&inv.InvoiceDate, &inv.DueDate, &inv.PaidAt); err != nil {
			return nil, err
		}
		inv.Amount = numericDecimal(amount)
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

func loadChangeOrders(ctx context.Context, tx pgx.Tx, params SnapshotParams) ([]ChangeOrder, error) {
	query := `
		SELECT co.id, co.purchase_order_id, co.number, co.value_delta, co.cause, co.status, co.approved_at
		FROM change_order co
		JOIN purchase_order po ON po.id = co.purchase_order_id
		WHERE ` + poScopeFilter
	rows, err := tx.Query(ctx, query, scopeArgs(params)...)
	if err != nil {
		return nil, fmt.Errorf("procurement: load change orders: %w", err)
	}
	defer rows.Close()

	var cos []ChangeOrder
	for rows.Next() {
		var co ChangeOrder
		var delta pgtype.Numeric
		if err := rows.Scan(&co.ID, &co.POID, &co.Number, &delta, &co.Cause, &co.Status, &co.ApprovedAt); err != nil {
			return nil, err
		}
		co.ValueDelta = numericDecimal(delta)
		cos = append(cos, co)
	}
	return cos, rows.Err()
}

func loadNCRs(ctx context.Context, tx pgx.Tx, params SnapshotParams) ([]NCR, error) {
	query := `
		SELECT n.id, n.purchase_order_id, n.number, n.severity, n.status, n.raised_at
		FROM ncr n
		JOIN purchase_order po ON po.id = n.purchase_order_id
		WHERE ` + poScopeFilter
	rows, err := tx.Query(ctx, query, scopeArgs(params)...)
	if err != nil {
		return nil, fmt.Errorf("procurement: load ncrs: %w", err)
	}
	defer rows.Close()

	var ncrs []NCR
	for rows.Next() {
		var n NCR
		if err := rows.Scan(&n.ID, &n.POID, &n.Number, &n.Severity, &n.Status, &n.RaisedAt); err != nil {
			return nil, err
		}
		ncrs = append(ncrs, n)
	}
	return ncrs, rows.Err()
}

func loadShipments(ctx context.Context, tx pgx.Tx, params SnapshotParams) ([]Shipment, error) {
	query := `
		SELECT sh.id, sh.purchase_order_id, sh.status, sh.logistics_eta, sh.actual_delivery_date
		FROM shipment sh
		JOIN purchase_order po ON po.id = sh.purchase_order_id
		WHERE ` + poScopeFilter
	rows, err := tx.Query(ctx, query, scopeArgs(params)...)
	if err != nil {
		return nil, fmt.Errorf("procurement: load shipments: %w", err)
	}
	defer rows.Close()

	var shipments []Shipment
	for rows.Next() {
		var sh Shipment
		if err := rows.Scan(&sh.ID, &sh.POID, &sh.Status, &sh.ETA, &sh.ActualDeliveryDate); err != nil {
			return nil, err
		}
		shipments = append(shipments, sh)
	}
	return shipments, rows.Err()
}

func loadMilestones(ctx context.Context, tx pgx.Tx, params SnapshotParams) ([]Milestone, error) {
	query := `
		SELECT m.id, m.purchase_order_id, m.name, COALESCE(m.payment_percentage, 0),
		       m.expected_date, m.status, m.completed_at
		FROM milestone m
		JOIN purchase_order po ON po.id = m.purchase_order_id
		WHERE ` + poScopeFilter
	rows, err := tx.Query(ctx, query, scopeArgs(params)...)
	if err != nil {
		return nil, fmt.Errorf("procurement: load milestones: %w", err)
	}
	defer rows.Close()

	var milestones []Milestone
	for rows.Next() {
		var m Milestone
		if err := rows.Scan(&m.ID, &m.POID, &m.Name, &m.PaymentPct, &m.ExpectedDate, &m.Status, &m.CompletedAt); err != nil {
			return nil, err
		}
		milestones = append(milestones, m)
	}
	return milestones, rows.Err()
}

func optionalUUID(id *uuid.UUID) pgtype.UUID {
	if id == nil {
		return pgtype.UUID{Valid: false}
	}
	return pgtype.UUID{Bytes: *id, Valid: true}
}

func optionalTime(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{Valid: false}
	}
	return pgtype.Timestamptz{Time: *t, Valid: true}
}

func numericDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}
