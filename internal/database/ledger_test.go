package database

import (
	"testing"

	"whohas/internal/domain"
)

func TestRecordTransactionCountsRepeats(t *testing.T) {
	db := setupTestDB(t)

	sender, _, err := ResolveOrCreateAddress(db, "192.168.1.5")
	if err != nil {
		t.Fatalf("resolve sender: %v", err)
	}
	target, _, err := ResolveOrCreateAddress(db, "192.168.1.20")
	if err != nil {
		t.Fatalf("resolve target: %v", err)
	}

	const repeats = 5
	var last domain.Transaction
	for i := 0; i < repeats; i++ {
		last, err = RecordTransaction(db, sender, target)
		if err != nil {
			t.Fatalf("record %d: %v", i+1, err)
		}
		if last.Count != uint64(i+1) {
			t.Fatalf("count after %d records = %d, want %d", i+1, last.Count, i+1)
		}
	}

	var rows int64
	if err := db.Model(&domain.Transaction{}).Count(&rows).Error; err != nil {
		t.Fatalf("count transactions: %v", err)
	}
	if rows != 1 {
		t.Fatalf("transaction rows = %d, want 1", rows)
	}
}

func TestRecordTransactionDistinctPairs(t *testing.T) {
	db := setupTestDB(t)

	a, _, _ := ResolveOrCreateAddress(db, "10.0.0.1")
	b, _, _ := ResolveOrCreateAddress(db, "10.0.0.2")
	c, _, _ := ResolveOrCreateAddress(db, "10.0.0.3")

	if _, err := RecordTransaction(db, a, b); err != nil {
		t.Fatalf("record a->b: %v", err)
	}
	if _, err := RecordTransaction(db, b, a); err != nil {
		t.Fatalf("record b->a: %v", err)
	}
	if _, err := RecordTransaction(db, a, c); err != nil {
		t.Fatalf("record a->c: %v", err)
	}

	var rows int64
	if err := db.Model(&domain.Transaction{}).Count(&rows).Error; err != nil {
		t.Fatalf("count transactions: %v", err)
	}
	if rows != 3 {
		t.Fatalf("transaction rows = %d, want 3", rows)
	}

	// The reversed pair is its own transaction with its own count.
	var reversed domain.Transaction
	err := db.Where("sender_id = ? AND target_id = ?", b.ID, a.ID).First(&reversed).Error
	if err != nil {
		t.Fatalf("load b->a: %v", err)
	}
	if reversed.Count != 1 {
		t.Fatalf("b->a count = %d, want 1", reversed.Count)
	}
}

func TestAllTransactionsOrdering(t *testing.T) {
	db := setupTestDB(t)

	a, _, _ := ResolveOrCreateAddress(db, "10.0.0.1")
	b, _, _ := ResolveOrCreateAddress(db, "10.0.0.2")
	c, _, _ := ResolveOrCreateAddress(db, "10.0.0.3")

	record := func(sender, target domain.Address, times int) {
		t.Helper()
		for i := 0; i < times; i++ {
			if _, err := RecordTransaction(db, sender, target); err != nil {
				t.Fatalf("record: %v", err)
			}
		}
	}

	record(a, b, 2)
	record(a, c, 1)
	record(c, b, 3)

	transactions, err := AllTransactions(db)
	if err != nil {
		t.Fatalf("load transactions: %v", err)
	}

	if len(transactions) != 3 {
		t.Fatalf("transactions = %d, want 3", len(transactions))
	}

	counts := []uint64{transactions[0].Count, transactions[1].Count, transactions[2].Count}
	if counts[0] != 3 || counts[1] != 2 || counts[2] != 1 {
		t.Fatalf("counts = %v, want [3 2 1]", counts)
	}

	if transactions[0].Sender.Value != "10.0.0.3" {
		t.Fatalf("top sender = %s, want 10.0.0.3", transactions[0].Sender.Value)
	}
	if transactions[0].Target.Value != "10.0.0.2" {
		t.Fatalf("top target = %s, want 10.0.0.2", transactions[0].Target.Value)
	}
}
