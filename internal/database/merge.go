package database

import (
	"fmt"

	"whohas/internal/domain"

	"gorm.io/gorm"
)

// MergeLedger folds every transaction of the source ledger into the
// destination. Addresses are matched by value and get fresh ids; a reverse
// name travels with a newly created address verbatim, without being
// re-resolved. Counts are summed, which makes merging deliberately
// non-idempotent: merging the same source twice doubles its contribution,
// so callers must track what they already imported.
func MergeLedger(dst, src *gorm.DB) error {
	transactions, err := AllTransactions(src)
	if err != nil {
		return fmt.Errorf("database: read merge source: %w", err)
	}

	for _, transaction := range transactions {
		sender, err := importAddress(dst, transaction.Sender)
		if err != nil {
			return err
		}

		target, err := importAddress(dst, transaction.Target)
		if err != nil {
			return err
		}

		if _, err := addTransactionCount(dst, sender.ID, target.ID, transaction.Count); err != nil {
			return err
		}
	}

	return nil
}

// MergeSnapshot merges a ledger database file into dst.
func MergeSnapshot(dst *gorm.DB, path string) error {
	src, err := OpenSnapshot(path)
	if err != nil {
		return err
	}

	return MergeLedger(dst, src)
}

func importAddress(dst *gorm.DB, src domain.Address) (domain.Address, error) {
	address, created, err := ResolveOrCreateAddress(dst, src.Value)
	if err != nil {
		return domain.Address{}, err
	}

	// Only a brand new destination address inherits the source PTR; an
	// existing one already had its chance to resolve.
	if created && len(src.ReverseNames) > 0 {
		if err := AddReverseName(dst, address.ID, src.CanonicalName()); err != nil {
			return domain.Address{}, err
		}
	}

	return address, nil
}
