package domain

// ReverseName is a PTR record resolved for an address. Resolution runs at
// most once per address, so live capture creates at most one row; merging
// snapshots can add more, and the first row stays canonical.
type ReverseName struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	AddressID uint64 `gorm:"not null;index"`
	Value     string `gorm:"size:253;not null"`
}
