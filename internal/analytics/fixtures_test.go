package analytics

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sitegrid-erp/sitegrid/internal/procurement"
)

var testNow = time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)

func money(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func qty(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func ptrTime(t time.Time) *time.Time { return &t }

func emptySnapshot() procurement.Snapshot { return procurement.Snapshot{} }

func testPO(supplier uuid.UUID, value int64) procurement.PurchaseOrder {
	return procurement.PurchaseOrder{
		ID:         uuid.New(),
		Number:     "PO-001",
		ProjectID:  uuid.New(),
		SupplierID: supplier,
		TotalValue: money(value),
		Status:     procurement.POStatusActive,
		CreatedAt:  testNow.AddDate(0, -2, 0),
	}
}

func testItem(poID uuid.UUID, class string, required int64, ros *time.Time) procurement.LineItem {
	return procurement.LineItem{
		ID:            uuid.New(),
		POID:          poID,
		MaterialClass: class,
		Unit:          "t",
		RequiredQty:   qty(required),
		ROSDate:       ros,
	}
}

func testDelivery(itemID uuid.UUID, quantity int64, actual *time.Time) procurement.Delivery {
	return procurement.Delivery{
		ID:           uuid.New(),
		LineItemID:   itemID,
		ExpectedDate: testNow.AddDate(0, 0, -7),
		ActualDate:   actual,
		Quantity:     qty(quantity),
	}
}
