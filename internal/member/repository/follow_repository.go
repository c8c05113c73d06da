package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"social_network_service/internal/member/domain"
)

// FollowRepository definition follow graph access
type FollowRepository interface {
	Follow(ctx context.Context, followerID, followeeID string) error
	Unfollow(ctx context.Context, followerID, followeeID string) error
	IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error)
	// ListFollowing follower 追蹤中的所有 member id
	ListFollowing(ctx context.Context, followerID string) ([]string, error)
	ListFollowers(ctx context.Context, followeeID string) ([]string, error)
}

type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository create a FollowRepository
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

// Follow 建立追蹤關係，重複追蹤不報錯
func (r *followRepository) Follow(ctx context.Context, followerID, followeeID string) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&domain.Follow{
			FollowerID: followerID,
			FolloweeID: followeeID,
		}).Error
}

func (r *followRepository) Unfollow(ctx context.Context, followerID, followeeID string) error {
	return r.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&domain.Follow{}).Error
}

func (r *followRepository) IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Follow{}).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Count(&count).Error
	return count > 0, err
}

func (r *followRepository) ListFollowing(ctx context.Context, followerID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&domain.Follow{}).
		Where("follower_id = ?", followerID).
		Pluck("followee_id", &ids).Error
	return ids, err
}

func (r *followRepository) ListFollowers(ctx context.Context, followeeID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&domain.Follow{}).
		Where("followee_id = ?", followeeID).
		Pluck("follower_id", &ids).Error
	return ids, err
}
