package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"social_network_service/internal/member/domain"
	"social_network_service/internal/member/repository"
	"social_network_service/pkg/config"
	"social_network_service/pkg/database"
	"social_network_service/pkg/encrypt"
	"social_network_service/pkg/logger"
	token "social_network_service/pkg/token"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MemberUseCase 這裡封裝了對外提供的應用服務
type MemberUseCase interface {
	Register(ctx context.Context, email, username, password string) error
	FindMember(ctx context.Context, param *domain.MemberQuery) (*domain.Member, error)
	Login(ctx context.Context, email, password string) (string, error)
	Logout(ctx context.Context, token string) error
	ForceLogout(ctx context.Context, memberID string) error
	CheckSessionTimeout(ctx context.Context, token string) (bool, error)
	ReconnectSession(ctx context.Context, token string) error

	// follow graph，chat service 的 request 分桶靠這組查詢
	Follow(ctx context.Context, userID, targetID string) error
	Unfollow(ctx context.Context, userID, targetID string) error
	ListFollowing(ctx context.Context, userID string) ([]string, error)
	DisplayName(ctx context.Context, userID string) (string, error)
}

type memberUseCase struct {
	memberRepo repository.MemberRepository
	followRepo repository.FollowRepository
	sessionTTL time.Duration
	redisRepo  database.RedisRepository[domain.MemberSession]
}

// NewMemberUseCase 建立一個新的 MemberUseCase
func NewMemberUseCase(memberRepo repository.MemberRepository,
	followRepo repository.FollowRepository,
	sessionTTL time.Duration,
	redisRepo database.RedisRepository[domain.MemberSession],
) MemberUseCase {
	return &memberUseCase{
		memberRepo: memberRepo,
		followRepo: followRepo,
		sessionTTL: sessionTTL,
		redisRepo:  redisRepo,
	}
}

// Register
func (m *memberUseCase) Register(ctx context.Context, email, username, password string) error {
	// 檢查 email 是否已存在
	if _, err := m.memberRepo.FindByMember(ctx, &domain.MemberQuery{Email: &email}); err == nil {
		return errors.New("email already exists")
	}
	if _, err := m.memberRepo.FindByMember(ctx, &domain.MemberQuery{Username: &username}); err == nil {
		return errors.New("username already exists")
	}

	pw, err := encrypt.HashPassword(password)
	if err != nil {
		return err
	}

	user := domain.Member{
		MemberID: uuid.New().String(),
		Email:    email,
		Username: username,
		Password: pw,
	}

	logger.Log.Info(fmt.Sprintf("usecase Register : %s", user.Username))

	if err := m.memberRepo.CreateUser(ctx, &user); err != nil {
		return err
	}

	return nil
}

// FindMember 依條件尋找使用者
func (m *memberUseCase) FindMember(ctx context.Context, param *domain.MemberQuery) (*domain.Member, error) {
	return m.memberRepo.FindByMember(ctx, param)
}

// Login
func (m *memberUseCase) Login(ctx context.Context, email, password string) (string, error) {
	member, err := m.memberRepo.FindByMember(ctx, &domain.MemberQuery{Email: &email})
	if err != nil {
		logger.Log.Error("email can't find!!!")
		return "", errors.New("user not found")
	}

	if err = member.IsPasswordMatch(password); err != nil {
		logger.Log.Error("password can't match!!!")
		return "", err
	}

	member.Status = domain.MemberStatusOnLine

	t, err := token.GenerateJWT(member.MemberID, string(token.RoleUser), config.EnvConfig.MemberService)
	if err != nil {
		return "", err
	}

	now := time.Now()
	session := domain.MemberSession{
		Token:        t,
		MemberID:     member.MemberID,
		CreatedAt:    now,
		LastActivity: now,
		ExpiredAt:    now.Add(m.sessionTTL),
	}

	m.redisRepo.Set(context.Background(), member.MemberID, session, m.sessionTTL)

	if err := m.memberRepo.UpdateMemberStatus(ctx, member); err != nil {
		return "", err
	}

	return t, nil
}

// Logout
func (m *memberUseCase) Logout(ctx context.Context, t string) error {
	tokenInfo, err := token.ParseJWT(t)
	if err != nil {
		logger.Log.Error("Logout err :", zap.String("err", err.Error()))
		return err
	}
	logger.Log.Debug("logout", zap.String("member token info", fmt.Sprintf("%v", tokenInfo)))

	m.redisRepo.Del(context.Background(), tokenInfo.UserID)

	if err := m.memberRepo.UpdateMemberStatus(ctx, &domain.Member{
		MemberID: tokenInfo.UserID,
		Status:   domain.MemberStatusOffLine,
	}); err != nil {
		return err
	}
	return nil
}

// ForceLogout 直接清掉該 member 的 session
func (m *memberUseCase) ForceLogout(ctx context.Context, memberID string) error {
	m.redisRepo.Del(context.Background(), memberID)

	if err := m.memberRepo.UpdateMemberStatus(ctx, &domain.Member{
		MemberID: memberID,
		Status:   domain.MemberStatusOffLine,
	}); err != nil {
		return err
	}
	return nil
}

// CheckSessionTimeout
func (m *memberUseCase) CheckSessionTimeout(ctx context.Context, t string) (bool, error) {
	tokenInfo, err := token.ParseJWT(t)
	if err != nil {
		logger.Log.Error("CheckSessionTimeout err :", zap.String("err", err.Error()))
		return true, err
	}

	ttl, err := m.redisRepo.GetTTL(context.Background(), tokenInfo.UserID)
	if err != nil {
		return true, err
	}

	if ttl > 0 {
		return false, nil
	}
	return true, nil
}

// ReconnectSession 斷線重連時延長 session
func (m *memberUseCase) ReconnectSession(ctx context.Context, t string) error {
	tokenInfo, err := token.ParseJWT(t)
	if err != nil {
		logger.Log.Error("ReconnectSession err :", zap.String("err", err.Error()))
		return err
	}

	m.redisRepo.ExtendTTL(context.Background(), tokenInfo.UserID, m.sessionTTL)

	return nil
}

// Follow 追蹤對方
func (m *memberUseCase) Follow(ctx context.Context, userID, targetID string) error {
	if userID == targetID {
		return errors.New("cannot follow yourself")
	}
	if _, err := m.memberRepo.FindByMember(ctx, &domain.MemberQuery{MemberID: &targetID}); err != nil {
		return errors.New("target member not found")
	}
	return m.followRepo.Follow(ctx, userID, targetID)
}

// Unfollow 取消追蹤
func (m *memberUseCase) Unfollow(ctx context.Context, userID, targetID string) error {
	return m.followRepo.Unfollow(ctx, userID, targetID)
}

// ListFollowing 追蹤中的 member id
func (m *memberUseCase) ListFollowing(ctx context.Context, userID string) ([]string, error) {
	return m.followRepo.ListFollowing(ctx, userID)
}

// DisplayName 顯示名稱，chat 的 typing 指示用
func (m *memberUseCase) DisplayName(ctx context.Context, userID string) (string, error) {
	member, err := m.memberRepo.FindByMember(ctx, &domain.MemberQuery{MemberID: &userID})
	if err != nil {
		return "", err
	}
	return member.Username, nil
}
