package app

import (
	"errors"
	"time"

	"social_network_service/internal/call/domain"
)

// CredentialTTL provider 進房憑證有效時間
const CredentialTTL = time.Hour

// ErrUnknownProvider 未設定的 provider 名稱
var ErrUnknownProvider = errors.New("unknown call provider")

// CallProvider 通話供應商抽象
// 每家供應商都有自己的 token 演算法，對上層只露出進房憑證
type CallProvider interface {
	Name() string
	// JoinCredential 為指定用戶簽發進入指定 channel 的憑證
	JoinCredential(channelID, userID string, ttl time.Duration) (*domain.JoinCredential, error)
}

// ProviderRegistry name -> adapter 查表
type ProviderRegistry struct {
	providers map[string]CallProvider
	fallback  string
}

// NewProviderRegistry create registry, 第一個註冊的 provider 為預設
func NewProviderRegistry(providers ...CallProvider) *ProviderRegistry {
	r := &ProviderRegistry{providers: make(map[string]CallProvider, len(providers))}
	for _, p := range providers {
		if r.fallback == "" {
			r.fallback = p.Name()
		}
		r.providers[p.Name()] = p
	}
	return r
}

// Resolve 以名稱取得 adapter，空字串回傳預設 provider
func (r *ProviderRegistry) Resolve(name string) (CallProvider, error) {
	if name == "" {
		name = r.fallback
	}
	p, ok := r.providers[name]
	if !ok {
		return nil, ErrUnknownProvider
	}
	return p, nil
}
