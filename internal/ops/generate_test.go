package ops

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardops.org/internal/cards"
	"cardops.org/internal/stream"
)

func TestGenerateComplianceReport(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	report, err := s.GenerateComplianceReport(ctx, ReportParams{ReportType: ReportUserActivity, Extra: map[string]any{"department": "eng"}})
	require.NoError(t, err)
	assert.Equal(t, ReportStatusCompleted, report.Status)
	assert.Equal(t, "System", report.GeneratedBy)
	assert.Equal(t, "user_activity", report.Parameters["report_type"])
	assert.Equal(t, "eng", report.Parameters["department"])

	snap := s.Snapshot(ctx)
	require.Len(t, snap.ComplianceReports, 1)
}

func TestGenerateComplianceReportUnknownType(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	report, err := s.GenerateComplianceReport(ctx, ReportParams{ReportType: "quarterly_vibes"})
	assert.ErrorIs(t, err, ErrUnknownReportType)
	assert.Equal(t, ReportStatusFailed, report.Status)
	assert.NotEmpty(t, report.FailureReason)

	// the failed report is still recorded
	snap := s.Snapshot(ctx)
	require.Len(t, snap.ComplianceReports, 1)
	assert.Equal(t, ReportStatusFailed, snap.ComplianceReports[0].Status)
}

func TestGenerateComplianceReportCancelled(t *testing.T) {
	s := newTestStore()
	s.GenerationDelay = time.Second

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.GenerateComplianceReport(ctx, ReportParams{ReportType: ReportUserActivity})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, s.Snapshot(context.Background()).ComplianceReports)
}

func TestGenerateStatementUnknownCard(t *testing.T) {
	fleet := cards.NewInMemory(nil)
	s := NewInMemory(fleet, nil)
	s.GenerationDelay = 0

	_, err := s.GenerateStatement(context.Background(), "card-1", 2, 2024)
	assert.ErrorIs(t, err, cards.ErrNotFound)
}

func TestGenerateStatementAggregatesPeriod(t *testing.T) {
	events := stream.New()
	fleet := cards.NewSeeded(events)
	ctx := context.Background()

	card := fleet.ListCards(ctx)[0]
	feb := func(day int, amount float64, status cards.TransactionStatus) cards.Transaction {
		return cards.Transaction{Date: time.Date(2024, 2, day, 12, 0, 0, 0, time.UTC), Merchant: "m", Category: "c", Amount: amount, Status: status}
	}
	_, err := fleet.AddTransaction(ctx, card.ID, feb(1, 100, cards.TxCompleted))
	require.NoError(t, err)
	_, err = fleet.AddTransaction(ctx, card.ID, feb(29, 50, cards.TxPending))
	require.NoError(t, err)
	_, err = fleet.AddTransaction(ctx, card.ID, feb(10, 999, cards.TxDeclined))
	require.NoError(t, err)
	_, err = fleet.AddTransaction(ctx, card.ID, cards.Transaction{Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Amount: 77, Status: cards.TxCompleted})
	require.NoError(t, err)

	s := NewInMemory(fleet, events)
	s.GenerationDelay = 0

	stmt, err := s.GenerateStatement(ctx, card.ID, 2, 2024)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), stmt.StartDate)
	assert.Equal(t, 2024, stmt.EndDate.Year())
	assert.Equal(t, time.February, stmt.EndDate.Month())
	assert.Equal(t, 29, stmt.EndDate.Day())
	assert.Equal(t, 150.0, stmt.TotalSpent)
	assert.Equal(t, 0.0, stmt.TotalRefunds)
	assert.Equal(t, 150.0, stmt.ClosingBalance)
	assert.Equal(t, StatementGenerated, stmt.Status)

	require.Len(t, s.Snapshot(ctx).Statements, 1)
}

func TestGenerateStatementInvalidPeriod(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	_, err := s.GenerateStatement(ctx, "", 2, 2024)
	assert.ErrorIs(t, err, ErrInvalidPeriod)
	_, err = s.GenerateStatement(ctx, "card-1", 13, 2024)
	assert.ErrorIs(t, err, ErrInvalidPeriod)
	assert.Empty(t, s.Snapshot(ctx).Statements)
}
