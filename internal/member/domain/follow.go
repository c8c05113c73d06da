package domain

import "time"

// Follow 追蹤關係，follower 追蹤 followee
type Follow struct {
	ID         uint      `gorm:"primaryKey"`
	FollowerID string    `gorm:"index:idx_follow_pair,unique;size:64;not null"`
	FolloweeID string    `gorm:"index:idx_follow_pair,unique;size:64;not null"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

// TableName gorm table name
func (Follow) TableName() string {
	return "member_follows"
}
