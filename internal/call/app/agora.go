package app

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"time"

	"social_network_service/internal/call/domain"
)

// ProviderAgora adapter name
const ProviderAgora = "agora"

// AgoraProvider - agora RTC 進房 token
type AgoraProvider struct {
	appID          string
	appCertificate string
}

// NewAgoraProvider create agora adapter
func NewAgoraProvider(appID, appCertificate string) *AgoraProvider {
	return &AgoraProvider{appID: appID, appCertificate: appCertificate}
}

// Name implements CallProvider
func (p *AgoraProvider) Name() string { return ProviderAgora }

// JoinCredential 簽發 channel token
// token = base64(appID:channel:uid:expiry:HMAC-SHA256(certificate, appID|channel|uid|expiry))
func (p *AgoraProvider) JoinCredential(channelID, userID string, ttl time.Duration) (*domain.JoinCredential, error) {
	expiresAt := time.Now().Add(ttl).Unix()
	payload := fmt.Sprintf("%s|%s|%s|%d", p.appID, channelID, userID, expiresAt)

	mac := hmac.New(sha256.New, []byte(p.appCertificate))
	mac.Write([]byte(payload))
	sig := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))

	token := base64.RawURLEncoding.EncodeToString(
		[]byte(fmt.Sprintf("%s:%s:%s:%d:%s", p.appID, channelID, userID, expiresAt, sig)),
	)

	return &domain.JoinCredential{
		Provider:  ProviderAgora,
		ChannelID: channelID,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}
