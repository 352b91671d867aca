package models

import "time"

// Counter stores the last consumed value for a named monotonic sequence.
// Rows are created lazily on first allocation and never deleted; last_value
// only ever moves forward, and only through the sequence allocator's
// conditional update.
type Counter struct {
	Name      string    `gorm:"column:name;primaryKey;size:64"`
	LastValue int64     `gorm:"column:last_value;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName overrides the default pluralization.
func (Counter) TableName() string { return "counters" }
