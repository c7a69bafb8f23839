package ops

import (
	"context"
	"fmt"
	"time"

	"cardops.org/internal/cards"
	"cardops.org/internal/ids"
	"cardops.org/internal/obs"
	"cardops.org/internal/stream"
)

var knownReportTypes = map[ReportType]bool{
	ReportSpendingPolicyAdherence: true,
	ReportTransactionAudits:       true,
	ReportUserActivity:            true,
	ReportFinancialReconciliation: true,
}

// GenerateComplianceReport simulates a background build and appends exactly
// one report on completion. An unknown report type appends a failed report
// with a reason and returns ErrUnknownReportType; a cancelled context
// appends nothing.
func (s *InMemory) GenerateComplianceReport(ctx context.Context, params ReportParams) (ComplianceReport, error) {
	start := time.Now()
	if err := s.sleep(ctx); err != nil {
		return ComplianceReport{}, err
	}

	now := time.Now().UTC()
	report := ComplianceReport{
		ID:            ids.New(),
		Name:          fmt.Sprintf("Report %s", now.Format("Jan 2, 2006 15:04")),
		Description:   "Auto-generated analysis",
		ReportType:    params.ReportType,
		GeneratedBy:   "System",
		GeneratedDate: now,
		StartDate:     now,
		EndDate:       now,
		Parameters:    params.toMap(),
	}

	var genErr error
	if !knownReportTypes[params.ReportType] {
		report.Status = ReportStatusFailed
		report.FailureReason = fmt.Sprintf("unsupported report type %q", params.ReportType)
		genErr = fmt.Errorf("generate compliance report: %w", ErrUnknownReportType)
	} else {
		report.Status = ReportStatusCompleted
		report.DownloadURL = "#"
	}

	s.mu.Lock()
	s.complianceReports = append(s.complianceReports, cloneReport(report))
	s.mu.Unlock()

	obs.ObserveGeneration("compliance_report", time.Since(start))
	obs.LogJSON(map[string]any{
		"level": "info", "msg": "compliance report generated",
		"report_id": report.ID, "status": string(report.Status),
	})
	s.events.Publish(stream.Event{Store: storeName, Op: "generate_compliance_report", EntityID: report.ID})
	return report, genErr
}

// GenerateStatement builds a monthly statement whose period spans the whole
// calendar month (inclusive end of month, leap-year aware) and whose totals
// aggregate the card's transactions inside that period.
func (s *InMemory) GenerateStatement(ctx context.Context, cardID string, month, year int) (Statement, error) {
	if cardID == "" || month < 1 || month > 12 {
		return Statement{}, fmt.Errorf("generate statement card=%q month=%d: %w", cardID, month, ErrInvalidPeriod)
	}

	start := time.Now()
	if err := s.sleep(ctx); err != nil {
		return Statement{}, err
	}

	periodStart := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	periodEnd := periodStart.AddDate(0, 1, 0).Add(-time.Nanosecond)

	var totalSpent float64
	if s.txSource != nil {
		txs, err := s.txSource.CardTransactions(ctx, cardID)
		if err != nil {
			return Statement{}, fmt.Errorf("generate statement: load transactions: %w", err)
		}
		for _, tx := range txs {
			if tx.Status == cards.TxDeclined {
				continue
			}
			if tx.Date.Before(periodStart) || tx.Date.After(periodEnd) {
				continue
			}
			totalSpent += tx.Amount
		}
	}

	stmt := Statement{
		ID:             ids.New(),
		CardID:         cardID,
		StatementDate:  time.Now().UTC(),
		StartDate:      periodStart,
		EndDate:        periodEnd,
		TotalSpent:     totalSpent,
		TotalRefunds:   0,
		ClosingBalance: totalSpent,
		Status:         StatementGenerated,
		DownloadURL:    "#",
	}

	s.mu.Lock()
	s.statements = append(s.statements, stmt)
	s.mu.Unlock()

	obs.ObserveGeneration("statement", time.Since(start))
	s.events.Publish(stream.Event{Store: storeName, Op: "generate_statement", EntityID: stmt.ID})
	return stmt, nil
}

// sleep simulates generation latency while honoring cancellation.
func (s *InMemory) sleep(ctx context.Context) error {
	if s.GenerationDelay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.GenerationDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (p ReportParams) toMap() map[string]any {
	out := map[string]any{"report_type": string(p.ReportType)}
	for k, v := range p.Extra {
		out[k] = v
	}
	return out
}
