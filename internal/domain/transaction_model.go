package domain

// Transaction aggregates every who-has request from one sender for one
// target. Count starts at 1 and only grows; the pair is unique.
type Transaction struct {
	ID       uint64 `gorm:"primaryKey;autoIncrement"`
	SenderID uint64 `gorm:"not null;uniqueIndex:idx_sender_target"`
	TargetID uint64 `gorm:"not null;uniqueIndex:idx_sender_target"`
	Count    uint64 `gorm:"not null;default:1"`

	Sender Address `gorm:"foreignKey:SenderID"`
	Target Address `gorm:"foreignKey:TargetID"`
}
