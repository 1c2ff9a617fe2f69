package memory

import (
	"context"
	"testing"
	"time"

	"edulearn-engine/internal/domain"
)

func TestLedgerAppendsAndOrders(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	later := domain.ProgressEvent{ID: "e2", UserID: "u1", Subject: "Science", Score: 90, Timestamp: base.Add(time.Hour)}
	earlier := domain.ProgressEvent{ID: "e1", UserID: "u1", Subject: "Science", Score: 70, Timestamp: base}
	if err := ledger.Append(ctx, later); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := ledger.Append(ctx, earlier); err != nil {
		t.Fatalf("append: %v", err)
	}

	events, err := ledger.ListByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(events) != 2 || events[0].ID != "e1" || events[1].ID != "e2" {
		t.Fatalf("expected chronological order, got %+v", events)
	}
}

func TestLedgerKeepsDuplicates(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger()
	event := domain.ProgressEvent{ID: "e1", UserID: "u1", Subject: "Science", Score: 70, Timestamp: time.Now()}

	// Retakes produce identical-looking events; both are history.
	if err := ledger.Append(ctx, event); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := ledger.Append(ctx, event); err != nil {
		t.Fatalf("append duplicate: %v", err)
	}
	events, err := ledger.ListByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
}

func TestLedgerIsolatesUsers(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger()
	_ = ledger.Append(ctx, domain.ProgressEvent{ID: "e1", UserID: "u1", Subject: "Science", Timestamp: time.Now()})

	events, err := ledger.ListByUser(ctx, "u2")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("expected no events for u2, got %d", len(events))
	}
}
