package database

import (
	"fmt"

	"whohas/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecordTransaction counts one who-has request from sender for target. The
// first request creates the pair with count 1, every later one increments it.
func RecordTransaction(db *gorm.DB, sender, target domain.Address) (domain.Transaction, error) {
	return addTransactionCount(db, sender.ID, target.ID, 1)
}

// addTransactionCount is the ledger's single point of mutation. The
// increment happens inside one upsert statement, so concurrent updates of
// the same pair serialize in the database and none are lost; distinct pairs
// do not contend at all.
func addTransactionCount(db *gorm.DB, senderID, targetID, count uint64) (domain.Transaction, error) {
	transaction := domain.Transaction{
		SenderID: senderID,
		TargetID: targetID,
		Count:    count,
	}

	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "sender_id"}, {Name: "target_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"count": gorm.Expr("count + ?", count),
		}),
	}).Create(&transaction).Error
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("database: record transaction %d->%d: %w", senderID, targetID, err)
	}

	var current domain.Transaction
	err = db.Where("sender_id = ? AND target_id = ?", senderID, targetID).
		First(&current).Error
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("database: fetch transaction %d->%d: %w", senderID, targetID, err)
	}

	return current, nil
}

// AllTransactions loads every transaction with both endpoints and their
// reverse names, most requested pairs first. Ties break on insertion order
// so repeated renders of the same ledger produce the same table.
func AllTransactions(db *gorm.DB) ([]domain.Transaction, error) {
	var transactions []domain.Transaction
	err := db.
		Preload("Sender.ReverseNames").
		Preload("Target.ReverseNames").
		Order("count DESC, id ASC").
		Find(&transactions).Error
	if err != nil {
		return nil, fmt.Errorf("database: load transactions: %w", err)
	}

	return transactions, nil
}
