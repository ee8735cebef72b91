package domain

// Address is one IP address observed on the wire, as the sender or the
// target of a who-has request. Value is the deduplication key; MacAddress is
// only filled in when an active probe got an answer.
type Address struct {
	ID               uint64 `gorm:"primaryKey;autoIncrement"`
	Value            string `gorm:"size:45;not null;uniqueIndex"` // IPv6 support
	MacAddress       string `gorm:"size:17"`
	ResolveAttempted bool   `gorm:"not null;default:false"`

	ReverseNames []ReverseName `gorm:"foreignKey:AddressID"`
}

// Unresponsive reports whether the address was probed and never answered.
// An address that was never probed is not unresponsive, just unknown.
func (address *Address) Unresponsive() bool {
	return address.ResolveAttempted && address.MacAddress == ""
}

// CanonicalName returns the first reverse name on record, or "" when the
// address never resolved.
func (address *Address) CanonicalName() string {
	if len(address.ReverseNames) == 0 {
		return ""
	}
	return address.ReverseNames[0].Value
}
