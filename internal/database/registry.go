package database

import (
	"fmt"

	"whohas/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ResolveOrCreateAddress returns the address row for value, inserting it on
// first sight. The insert races through the unique index on value: a
// concurrent duplicate resolves to DO NOTHING and the existing row is
// fetched, so callers never see a conflict error. The created flag is true
// only for the caller whose insert actually won.
func ResolveOrCreateAddress(db *gorm.DB, value string) (domain.Address, bool, error) {
	address := domain.Address{Value: value}

	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "value"}},
		DoNothing: true,
	}).Create(&address)
	if result.Error != nil {
		return domain.Address{}, false, fmt.Errorf("database: create address %s: %w", value, result.Error)
	}

	if result.RowsAffected > 0 {
		return address, true, nil
	}

	var existing domain.Address
	if err := db.Where("value = ?", value).First(&existing).Error; err != nil {
		return domain.Address{}, false, fmt.Errorf("database: fetch address %s: %w", value, err)
	}

	return existing, false, nil
}

// AddReverseName stores a resolved PTR name for an address.
func AddReverseName(db *gorm.DB, addressID uint64, name string) error {
	record := domain.ReverseName{AddressID: addressID, Value: name}
	if err := db.Create(&record).Error; err != nil {
		return fmt.Errorf("database: add reverse name for address %d: %w", addressID, err)
	}
	return nil
}

// MarkProbeResult records the outcome of a liveness probe. The guard on
// resolve_attempted keeps the flag monotonic: once an address has been
// probed, later calls are no-ops and the first MAC on record stands.
func MarkProbeResult(db *gorm.DB, addressID uint64, macAddress string) error {
	updates := map[string]any{"resolve_attempted": true}
	if macAddress != "" {
		updates["mac_address"] = macAddress
	}

	err := db.Model(&domain.Address{}).
		Where("id = ? AND resolve_attempted = ?", addressID, false).
		Updates(updates).Error
	if err != nil {
		return fmt.Errorf("database: mark probe result for address %d: %w", addressID, err)
	}

	return nil
}
