package app

import (
	"time"

	"social_network_service/internal/call/domain"

	"github.com/golang-jwt/jwt/v5"
)

// ProviderStream adapter name
const ProviderStream = "stream"

// StreamProvider - Stream Video 的 JWT 進房 token
type StreamProvider struct {
	apiKey    string
	apiSecret []byte
}

// NewStreamProvider create stream adapter
func NewStreamProvider(apiKey, apiSecret string) *StreamProvider {
	return &StreamProvider{apiKey: apiKey, apiSecret: []byte(apiSecret)}
}

// Name implements CallProvider
func (p *StreamProvider) Name() string { return ProviderStream }

// JoinCredential stream 採 JWT 格式憑證，call_cids 圈定可進的房
func (p *StreamProvider) JoinCredential(channelID, userID string, ttl time.Duration) (*domain.JoinCredential, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)

	claims := jwt.MapClaims{
		"user_id":   userID,
		"call_cids": []string{"default:" + channelID},
		"iat":       now.Unix(),
		"exp":       expiresAt.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(p.apiSecret)
	if err != nil {
		return nil, err
	}

	return &domain.JoinCredential{
		Provider:  ProviderStream,
		ChannelID: channelID,
		Token:     signed,
		ExpiresAt: expiresAt.Unix(),
	}, nil
}
