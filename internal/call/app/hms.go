package app

import (
	"time"

	"social_network_service/internal/call/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ProviderHMS adapter name
const ProviderHMS = "100ms"

// HMSProvider - 100ms 的 management token 簽發
type HMSProvider struct {
	accessKey string
	appSecret []byte
}

// NewHMSProvider create 100ms adapter
func NewHMSProvider(accessKey, appSecret string) *HMSProvider {
	return &HMSProvider{accessKey: accessKey, appSecret: []byte(appSecret)}
}

// Name implements CallProvider
func (p *HMSProvider) Name() string { return ProviderHMS }

// JoinCredential 100ms 規定 JWT 帶 access_key/room_id/user_id/role/jti
func (p *HMSProvider) JoinCredential(channelID, userID string, ttl time.Duration) (*domain.JoinCredential, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)

	claims := jwt.MapClaims{
		"access_key": p.accessKey,
		"room_id":    channelID,
		"user_id":    userID,
		"role":       "guest",
		"type":       "app",
		"version":    2,
		"jti":        uuid.New().String(),
		"iat":        now.Unix(),
		"nbf":        now.Unix(),
		"exp":        expiresAt.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(p.appSecret)
	if err != nil {
		return nil, err
	}

	return &domain.JoinCredential{
		Provider:  ProviderHMS,
		ChannelID: channelID,
		Token:     signed,
		ExpiresAt: expiresAt.Unix(),
	}, nil
}
