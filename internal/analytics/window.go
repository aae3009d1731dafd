package analytics

import (
	"time"

	"github.com/google/uuid"

	"github.com/sitegrid-erp/sitegrid/internal/procurement"
)

// Window is the shared time-window and project filter threaded through every
// derivation. Now is captured once per request so all sub-computations agree
// on the same evaluation instant.
type Window struct {
	From      *time.Time
	To        *time.Time
	ProjectID *uuid.UUID
	Now       time.Time
}

// Resolve fills Now and defaults an absent To to the evaluation instant.
func (w Window) Resolve(now time.Time) Window {
	w.Now = now.UTC()
	if w.To == nil {
		to := w.Now
		w.To = &to
	}
	return w
}

// Empty reports whether the window excludes everything. A From after To is a
// caller error treated as an empty scope, never silently inverted.
func (w Window) Empty() bool {
	return w.From != nil && w.To != nil && w.From.After(*w.To)
}

// Contains reports whether t falls inside the window bounds (inclusive).
func (w Window) Contains(t time.Time) bool {
	if w.Empty() {
		return false
	}
	if w.From != nil && t.Before(*w.From) {
		return false
	}
	if w.To != nil && t.After(*w.To) {
		return false
	}
	return true
}

// DataQuality counts records skipped during scoping because they were
// structurally unusable. Skipping never aborts the computation; the counts
// let callers surface upstream data problems.
type DataQuality struct {
	SkippedPOs          int `json:"skippedPurchaseOrders"`
	SkippedLineItems    int `json:"skippedLineItems"`
	SkippedDeliveries   int `json:"skippedDeliveries"`
	SkippedInvoices     int `json:"skippedInvoices"`
	SkippedChangeOrders int `json:"skippedChangeOrders"`
	SkippedNCRs         int `json:"skippedNcrs"`
	SkippedShipments    int `json:"skippedShipments"`
	SkippedMilestones   int `json:"skippedMilestones"`
}

// Total sums every skipped-record counter.
func (q DataQuality) Total() int {
	return q.SkippedPOs + q.SkippedLineItems + q.SkippedDeliveries + q.SkippedInvoices +
		q.SkippedChangeOrders + q.SkippedNCRs + q.SkippedShipments + q.SkippedMilestones
}

// Scope applies the window filter to the raw snapshot BEFORE any aggregation.
// POs are filtered on creation date and project; child records follow PO
// membership. Records that cannot be attributed to an in-scope parent are
// dropped silently (out of scope), while malformed records are dropped and
// counted in DataQuality.
func Scope(snap procurement.Snapshot, w Window) (procurement.Snapshot, DataQuality) {
	var scoped procurement.Snapshot
	var dq DataQuality
	if w.Empty() {
		return scoped, dq
	}

	poIDs := make(map[uuid.UUID]bool, len(snap.POs))
	supplierIDs := make(map[uuid.UUID]bool)
	for _, po := range snap.POs {
		if po.ID == uuid.Nil || po.SupplierID == uuid.Nil {
			dq.SkippedPOs++
			continue
		}
		if !w.Contains(po.CreatedAt) {
			continue
		}
		if w.ProjectID != nil && po.ProjectID != *w.ProjectID {
			continue
		}
		scoped.POs = append(scoped.POs, po)
		poIDs[po.ID] = true
		supplierIDs[po.SupplierID] = true
	}

	for _, s := range snap.Suppliers {
		if s.ID == uuid.Nil {
			continue
		}
		if supplierIDs[s.ID] {
			scoped.Suppliers = append(scoped.Suppliers, s)
		}
	}

	itemIDs := make(map[uuid.UUID]bool)
	for _, li := range snap.LineItems {
		if li.ID == uuid.Nil || li.POID == uuid.Nil || li.RequiredQty.IsNegative() {
			dq.SkippedLineItems++
			continue
		}
		if poIDs[li.POID] {
			scoped.LineItems = append(scoped.LineItems, li)
			itemIDs[li.ID] = true
		}
	}

	for _, d := range snap.Deliveries {
		if d.ID == uuid.Nil || d.LineItemID == uuid.Nil || d.Quantity.IsNegative() {
			dq.SkippedDeliveries++
			continue
		}
		if itemIDs[d.LineItemID] {
			scoped.Deliveries = append(scoped.Deliveries, d)
		}
	}

	for _, inv := range snap.Invoices {
		if inv.ID == uuid.Nil || inv.POID == uuid.Nil || inv.Amount.IsNegative() {
			dq.SkippedInvoices++
			continue
		}
		if poIDs[inv.POID] {
			scoped.Invoices = append(scoped.Invoices, inv)
		}
	}

	for _, co := range snap.ChangeOrders {
		if co.ID == uuid.Nil || co.POID == uuid.Nil {
			dq.SkippedChangeOrders++
			continue
		}
		if poIDs[co.POID] {
			scoped.ChangeOrders = append(scoped.ChangeOrders, co)
		}
	}

	for _, n := range snap.NCRs {
		if n.ID == uuid.Nil || n.POID == uuid.Nil {
			dq.SkippedNCRs++
			continue
		}
		if poIDs[n.POID] {
			scoped.NCRs = append(scoped.NCRs, n)
		}
	}

	for _, sh := range snap.Shipments {
		if sh.ID == uuid.Nil || sh.POID == uuid.Nil {
			dq.SkippedShipments++
			continue
		}
		if poIDs[sh.POID] {
			scoped.Shipments = append(scoped.Shipments, sh)
		}
	}

	for _, m := range snap.Milestones {
		if m.ID == uuid.Nil || m.POID == uuid.Nil || m.PaymentPct < 0 {
			dq.SkippedMilestones++
			continue
		}
		if poIDs[m.POID] {
			scoped.Milestones = append(scoped.Milestones, m)
		}
	}

	return scoped, dq
}
