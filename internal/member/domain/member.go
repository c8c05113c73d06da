package domain

import (
	"time"

	"social_network_service/pkg/encrypt"
)

// MemberStatus 用來表示使用者狀態
type MemberStatus int

// 状态: 0=offline, 1=online, 2=ban ,3=delete
const (
	// MemberStatusOffLine 使用者離線
	MemberStatusOffLine MemberStatus = iota
	// MemberStatusOnLine 使用者在線
	MemberStatusOnLine
	// MemberStatusBan 使用者被封鎖
	MemberStatusBan
	// MemberStatusDelete 使用者已刪除
	MemberStatusDelete
)

// Member 用來表示使用者
type Member struct {
	ID       int64
	MemberID string
	Email    string
	Username string
	Password string
	Status   MemberStatus
}

// MemberSession 用來表示使用者的 Session
type MemberSession struct {
	Token        string    `json:"Token"`
	MemberID     string    `json:"MemberID"`
	CreatedAt    time.Time `json:"CreatedAt"`
	LastActivity time.Time `json:"LastActivity"`
	ExpiredAt    time.Time `json:"ExpiredAt"`
}

// IsPasswordMatch 密碼驗證
func (m *Member) IsPasswordMatch(inputPwd string) error {
	return encrypt.ComparePassword(m.Password, inputPwd)
}

// IsExpired 檢查 Session 是否已過期
func (s *MemberSession) IsExpired() bool {
	return time.Now().After(s.ExpiredAt)
}

// MemberQuery join conditions are used to query members
type MemberQuery struct {
	ID       *int64  `db:"id"`
	MemberID *string `db:"member_id"`
	Email    *string `db:"email"`
	Username *string `db:"username"`
}
