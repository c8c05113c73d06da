package app

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"time"

	"social_network_service/internal/call/domain"
)

// ProviderZego adapter name
const ProviderZego = "zego"

// ZegoProvider - zego 的 token04 風格憑證
type ZegoProvider struct {
	appID        string
	serverSecret []byte
}

// NewZegoProvider create zego adapter
func NewZegoProvider(appID, serverSecret string) *ZegoProvider {
	return &ZegoProvider{appID: appID, serverSecret: []byte(serverSecret)}
}

// Name implements CallProvider
func (p *ZegoProvider) Name() string { return ProviderZego }

type zegoPayload struct {
	AppID   string `json:"app_id"`
	UserID  string `json:"user_id"`
	RoomID  string `json:"room_id"`
	Nonce   string `json:"nonce"`
	Expired int64  `json:"expired"`
}

// JoinCredential token = base64(payload) + "." + base64(HMAC(secret, payload))
func (p *ZegoProvider) JoinCredential(channelID, userID string, ttl time.Duration) (*domain.JoinCredential, error) {
	nonce := make([]byte, 8)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}

	expiresAt := time.Now().Add(ttl).Unix()
	payload, err := json.Marshal(zegoPayload{
		AppID:   p.appID,
		UserID:  userID,
		RoomID:  channelID,
		Nonce:   base64.RawURLEncoding.EncodeToString(nonce),
		Expired: expiresAt,
	})
	if err != nil {
		return nil, err
	}

	mac := hmac.New(sha256.New, p.serverSecret)
	mac.Write(payload)

	token := base64.RawURLEncoding.EncodeToString(payload) +
		"." + base64.RawURLEncoding.EncodeToString(mac.Sum(nil))

	return &domain.JoinCredential{
		Provider:  ProviderZego,
		ChannelID: channelID,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}
