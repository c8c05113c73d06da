package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransition(t *testing.T) {
	cases := []struct {
		name  string
		from  ChatState
		event ChatStateEvent
		want  ChatState
	}{
		{"unknown 同步成 active", StateUnknown, EventSyncActive, StateActive},
		{"unknown 同步成 pending", StateUnknown, EventSyncPending, StatePending},
		{"pending 接受", StatePending, EventAccept, StateActive},
		{"pending 拒絕", StatePending, EventDecline, StateDiscarded},
		{"pending 收到訊息留在 pending", StatePending, EventInbound, StatePending},
		{"active 收到訊息留在 active", StateActive, EventInbound, StateActive},
		{"active 不被舊的 pending 同步拉回", StateActive, EventSyncPending, StateActive},
		{"active 重複接受冪等", StateActive, EventAccept, StateActive},
		{"active 不因 decline 降級", StateActive, EventDecline, StateActive},
		{"unknown 收到訊息留在 unknown", StateUnknown, EventInbound, StateUnknown},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, Transition(c.from, c.event))
		})
	}
}

// discarded 為吸收態，任何事件都出不來
func TestTransition_DiscardedAbsorbing(t *testing.T) {
	events := []ChatStateEvent{EventSyncActive, EventSyncPending, EventAccept, EventDecline, EventInbound}
	for _, e := range events {
		assert.Equal(t, StateDiscarded, Transition(StateDiscarded, e))
	}
}

// 重複套用同一事件結果不變
func TestTransition_Idempotent(t *testing.T) {
	once := Transition(StatePending, EventAccept)
	twice := Transition(once, EventAccept)
	assert.Equal(t, once, twice)

	once = Transition(StatePending, EventDecline)
	twice = Transition(once, EventDecline)
	assert.Equal(t, once, twice)
}

func TestChat_IsRequestFor(t *testing.T) {
	chat := &Chat{
		ID:           "chat-1",
		ChatType:     ChatTypeDirect,
		InitiatorID:  "alice",
		Participants: []string{"alice", "bob"},
		Status:       ChatStatusPending,
	}

	// 收件方看到 request，發起方看到一般對話
	assert.True(t, chat.IsRequestFor("bob"))
	assert.False(t, chat.IsRequestFor("alice"))

	chat.Status = ChatStatusActive
	assert.False(t, chat.IsRequestFor("bob"))
}
