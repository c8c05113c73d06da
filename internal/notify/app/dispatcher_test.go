package app

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"social_network_service/internal/notify/domain"
	"social_network_service/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockPushSender Mock PushSender
type MockPushSender struct {
	mock.Mock
}

// Send moke push send
func (m *MockPushSender) Send(ctx context.Context, n *domain.PushNotification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func TestDispatcher_Deliver(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()

	// **情境 1: 第一次就成功**
	t.Run("第一次就成功", func(t *testing.T) {
		sender := new(MockPushSender)
		sender.On("Send", ctx, mock.Anything).Return(nil).Once()

		d := NewDispatcher(nil, domain.PushQueue, sender, 3)
		n := &domain.PushNotification{UserID: "bob", Title: "Incoming call"}
		err := d.deliver(ctx, n)

		assert.NoError(t, err)
		assert.Equal(t, 1, n.Attempt)
		sender.AssertExpectations(t)
	})

	// **情境 2: 失敗後重試成功**
	t.Run("失敗後重試成功", func(t *testing.T) {
		sender := new(MockPushSender)
		sender.On("Send", ctx, mock.Anything).Return(errors.New("gateway down")).Once()
		sender.On("Send", ctx, mock.Anything).Return(nil).Once()

		d := NewDispatcher(nil, domain.PushQueue, sender, 3)
		n := &domain.PushNotification{UserID: "bob"}
		err := d.deliver(ctx, n)

		assert.NoError(t, err)
		assert.Equal(t, 2, n.Attempt)
		sender.AssertExpectations(t)
	})

	// **情境 3: ctx 取消時停止重試**
	t.Run("ctx 取消時停止重試", func(t *testing.T) {
		cancelCtx, cancel := context.WithCancel(context.Background())
		sender := new(MockPushSender)
		sender.On("Send", cancelCtx, mock.Anything).Run(func(mock.Arguments) {
			cancel()
		}).Return(errors.New("gateway down"))

		d := NewDispatcher(nil, domain.PushQueue, sender, 3)
		err := d.deliver(cancelCtx, &domain.PushNotification{UserID: "bob"})

		assert.ErrorIs(t, err, context.Canceled)
		sender.AssertNumberOfCalls(t, "Send", 1)
	})
}

// maxAttempts 非法值落回預設 3
func TestNewDispatcher_DefaultAttempts(t *testing.T) {
	d := NewDispatcher(nil, domain.PushQueue, new(MockPushSender), 0)
	assert.Equal(t, 3, d.maxAttempts)
}

func TestGatewaySender_Send(t *testing.T) {
	logger.SetNewNop()

	// **情境 1: gateway 回 2xx**
	t.Run("gateway 回 2xx", func(t *testing.T) {
		var got domain.PushNotification
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(body, &got)
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		s := NewGatewaySender(srv.URL)
		err := s.Send(context.Background(), &domain.PushNotification{
			UserID: "bob",
			Title:  "Incoming call",
			Action: domain.ActionAcceptCall,
		})

		assert.NoError(t, err)
		assert.Equal(t, "bob", got.UserID)
		assert.Equal(t, domain.ActionAcceptCall, got.Action)
	})

	// **情境 2: gateway 回 5xx**
	t.Run("gateway 回 5xx", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		s := NewGatewaySender(srv.URL)
		err := s.Send(context.Background(), &domain.PushNotification{UserID: "bob"})

		assert.Error(t, err)
	})
}
