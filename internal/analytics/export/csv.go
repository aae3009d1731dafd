package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/sitegrid-erp/sitegrid/internal/analytics"
)

// WriteKPICSV serialises the KPI snapshot to a metric/value CSV.
func WriteKPICSV(w io.Writer, k analytics.KPISnapshot, health analytics.HealthScore) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Metric", "Value"}); err != nil {
		return err
	}
	records := [][]string{
		{"Health Score", formatFloat(health.Overall)},
		{"Health Label", string(health.Label)},
		{"Total Committed", formatDecimal(k.Financial.TotalCommitted)},
		{"Total Paid", formatDecimal(k.Financial.TotalPaid)},
		{"Total Unpaid", formatDecimal(k.Financial.TotalUnpaid)},
		{"Retention Held", formatDecimal(k.Financial.RetentionHeld)},
		{"Change Order Impact", formatDecimal(k.Financial.ChangeOrderImpact)},
		{"Physical Progress", formatFloat(k.Progress.PhysicalProgress)},
		{"Financial Progress", formatFloat(k.Progress.FinancialProgress)},
		{"Open NCRs", strconv.Itoa(k.Quality.OpenNCRs)},
		{"NCR Rate", formatFloat(k.Quality.NCRRate)},
		{"On-Time Rate", formatFloat(k.Logistics.OnTimeRate)},
		{"Overdue Invoices", strconv.Itoa(k.Payments.OverdueInvoiceCount)},
		{"Overdue Amount", formatDecimal(k.Payments.OverdueAmount)},
	}
	for _, record := range records {
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteBatchesCSV emits delivery batch rows as CSV.
func WriteBatchesCSV(w io.Writer, batches []analytics.DeliveryBatch) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()
	if err := writer.Write([]string{"Material Class", "Week Start", "Scheduled", "Required", "Delivered", "Completion %", "Status", "Late Days"}); err != nil {
		return err
	}
	for _, b := range batches {
		week := ""
		if b.Scheduled {
			week = b.WeekStart.Format("2006-01-02")
		}
		if err := writer.Write([]string{
			b.MaterialClass,
			week,
			strconv.FormatBool(b.Scheduled),
			formatDecimal(b.RequiredQty),
			formatDecimal(b.DeliveredQty),
			formatFloat(b.CompletionPct),
			string(b.Status),
			strconv.Itoa(b.LateDays),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteCashflowCSV emits the forward payment forecast as CSV.
func WriteCashflowCSV(w io.Writer, periods []analytics.CashflowPeriod) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()
	if err := writer.Write([]string{"Period", "Expected Payments", "Pending Invoices", "Cumulative Exposure"}); err != nil {
		return err
	}
	for _, p := range periods {
		if err := writer.Write([]string{
			p.Label,
			formatDecimal(p.ExpectedPayments),
			formatDecimal(p.PendingInvoices),
			formatDecimal(p.CumulativeExposure),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteRiskCSV emits per-PO risk assessments as CSV.
func WriteRiskCSV(w io.Writer, risks []analytics.RiskAssessment) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()
	if err := writer.Write([]string{"PO Number", "Risk Score", "Risk Level", "Predicted Delay Days"}); err != nil {
		return err
	}
	for _, r := range risks {
		if err := writer.Write([]string{
			r.PONumber,
			formatFloat(r.RiskScore),
			string(r.RiskLevel),
			strconv.Itoa(r.PredictedDelay),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatDecimal(v decimal.Decimal) string {
	return v.StringFixed(2)
}
