package app

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"time"

	callapp "social_network_service/internal/call/app"
	calldomain "social_network_service/internal/call/domain"
	"social_network_service/internal/chat/domain"
	"social_network_service/internal/chat/repository"
	"social_network_service/pkg/logger"
	"social_network_service/pkg/middlewares"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MemberDirectory 查顯示名稱，由 member usecase 實作
type MemberDirectory interface {
	DisplayName(ctx context.Context, userID string) (string, error)
}

// ChatWebsocketHandler 可包含所有需要的 UseCase
type ChatWebsocketHandler struct {
	chatListUC *ChatListUseCase
	messageUC  *MessageUseCase
	callUC     *callapp.CallUseCase
	directory  MemberDirectory
	subscriber repository.EventSubscriber
}

// NewChatWebsocketHandler create ChatWebsocketHandler
func NewChatWebsocketHandler(
	chatListUC *ChatListUseCase,
	messageUC *MessageUseCase,
	callUC *callapp.CallUseCase,
	directory MemberDirectory,
	subscriber repository.EventSubscriber,
) *ChatWebsocketHandler {
	return &ChatWebsocketHandler{
		chatListUC: chatListUC,
		messageUC:  messageUC,
		callUC:     callUC,
		directory:  directory,
		subscriber: subscriber,
	}
}

// HandleConnection 是 WebSocket 連線的進入點
func (h *ChatWebsocketHandler) HandleConnection(ctx context.Context, conn *websocket.Conn) {
	tokenUser := conn.Locals(middlewares.TokenUserID)
	userID, ok := tokenUser.(string)
	logger.Log.Info("websocket handle userID", zap.String("userID", userID), zap.String("ok", strconv.FormatBool(ok)))

	session := NewChatSession(userID)

	ticker := time.NewTicker(10 * time.Minute)
	ctxClose, cancel := context.WithCancel(context.Background())

	defer func() {
		ticker.Stop()
		logger.Log.Info("websocket close", zap.String("userID", userID))
		session.Close()
		conn.Close()
		cancel()
	}()

	//client發出close
	//fiber會自動處理(在read msg 回傳err),故需要SetCloseHandler另外接出
	conn.SetCloseHandler(func(code int, text string) error {
		logger.Log.Infof("WebSocket closed:", conn.RemoteAddr())
		return nil
	})

	//server發出ping之後client連線正常會回pong
	//fiber會自動處理回傳pong,故需要SetPongHandler另外接出
	conn.SetPongHandler(func(appData string) error {
		logger.Log.Infof("Received PONG:", appData)
		return nil
	})

	//client發出ping
	//fiber會自動處理ping,故需要SetPingHandler另外接出
	conn.SetPingHandler(func(appData string) error {
		logger.Log.Infof("Received PING:", appData)
		return conn.WriteControl(
			websocket.PongMessage,
			[]byte(appData),
			time.Now().Add(time.Second),
		)
	})

	// 連線即做一次 full sync，本地清單以伺服器為準
	h.syncSession(ctx, conn, session, userID)

	//啟用sub訂閱自己的訊息
	//事件先過 session reconcile，決定要不要轉發、要不要整包重載
	channel := repository.UserChannelPrefix + userID
	h.subscriber.Subscribe(ctxClose, channel, func(ev domain.RealtimeEvent) {
		forward, needReload := session.Apply(ev)
		if needReload {
			h.syncSession(ctx, conn, session, userID)
			return
		}
		if forward {
			h.forwardEvent(conn, ev, session)
		}
	})

	// 定期發送 Ping
	go func() {
		for {
			select {
			case <-ticker.C:
				pingMsg := "ping message"
				if err := conn.WriteMessage(websocket.PingMessage, []byte(pingMsg)); err != nil {
					logger.Log.Errorf("Ping error:", err)
					return
				}
				logger.Log.Infof("%s Ping sent", userID)
			case <-ctxClose.Done():
				logger.Log.Infof("Ping goroutine cancelled for user:", userID)
				return
			}
		}
	}()

	for {
		// 1. 讀取前端訊息
		mt, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived, //1005 c.WriteMessage(websocket.CloseMessage, []byte{})
			) {
				logger.Log.Errorf("Connection closed:", err)
			} else {
				//直接斷線 1006
				logger.Log.Errorf("websocket read error:", err)
			}
			return
		}
		h.execWebsocketAction(ctx, conn, session, userID, mt, message)
	}
}

// syncSession 整包重載清單並推給前端
func (h *ChatWebsocketHandler) syncSession(ctx context.Context, conn *websocket.Conn, session *ChatSession, userID string) {
	overview, err := h.chatListUC.LoadInitial(ctx, userID)
	if err != nil {
		logger.Log.Error("session sync failed", zap.String("userID", userID), zap.Error(err))
		return
	}
	session.ResetLists(overview)

	resp := domain.WSResponse{
		Action:  string(domain.GetChats),
		Success: true,
		Payload: map[string]interface{}{
			"chats":    overview.Active,
			"requests": overview.Requests,
			"unread":   overview.Unread,
		},
	}
	h.sendResponse(conn, resp)
}

// forwardEvent 把 reconcile 後的事件轉發到前端
func (h *ChatWebsocketHandler) forwardEvent(conn *websocket.Conn, ev domain.RealtimeEvent, session *ChatSession) {
	payload := map[string]interface{}{"event": ev}
	if ev.Event == domain.EventNewMessage {
		payload["unread_count"] = session.Unread(ev.ChatID)
	}
	h.sendResponse(conn, domain.WSResponse{
		Action:  ev.Event,
		Success: true,
		Payload: payload,
	})
}

func (h *ChatWebsocketHandler) execWebsocketAction(ctx context.Context, conn *websocket.Conn, session *ChatSession, userID string, mt int, msg []byte) {
	switch mt {
	case websocket.TextMessage:
		h.textMessageAction(ctx, conn, session, userID, msg)

	//! close ping pong fiber會自動處理，故需使用setHandler處理
	default:
		h.sendError(conn, "unknown action")
	}
}

func (h *ChatWebsocketHandler) textMessageAction(ctx context.Context, conn *websocket.Conn, session *ChatSession, userID string, msg []byte) {

	var req domain.WSRequest
	if err := json.Unmarshal(msg, &req); err != nil {
		log.Printf("json unmarshal error: %v", err)
		return
	}

	resp := domain.WSResponse{Action: req.Action, Success: false, Payload: map[string]interface{}{}}
	switch domain.Action(req.Action) {
	//對指定對象開啟 1對1 聊天，沒追蹤就先進 request
	case domain.OpenChat:
		chat, err := h.chatListUC.OpenDirectChat(ctx, userID, req.ReceiverID,
			func() string { return uuid.New().String() },
			func() int64 { return time.Now().Unix() },
		)
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Success = true
			resp.Payload["chat"] = chat
		}

	//進入聊天室：載入歷史、未讀歸零、訂閱 typing channel
	case domain.JoinChat:
		history, err := h.messageUC.History(ctx, userID, req.ChatID)
		if err != nil {
			resp.Error = err.Error()
			break
		}
		session.OpenChat(req.ChatID, history.Messages)
		resp.Success = true
		resp.Payload["messages"] = history.Messages
		resp.Payload["is_request"] = history.IsRequest

		// 房裡已經在打字的人直接帶在 join 回應裡
		if typers, err := h.messageUC.ActiveTypers(ctx, userID, req.ChatID); err == nil && len(typers) > 0 {
			session.SeedTypers(typers)
			resp.Payload["typing"] = typers
		}

		// 房間訂閱的 cancel 掛在 session，換房時收掉上一個
		ctxJoin, cancel := context.WithCancel(context.Background())
		session.SwapRoomSubscription(cancel)

		// typing 等短命事件走 chat channel
		channel := repository.ChatChannelPrefix + req.ChatID
		h.subscriber.Subscribe(ctxJoin, channel, func(ev domain.RealtimeEvent) {
			forward, _ := session.Apply(ev)
			if forward {
				h.forwardEvent(conn, ev, session)
			}
		})

	//離開聊天室
	case domain.LeaveChat:
		session.CloseChat()
		session.CancelRoomSubscription()
		resp.Success = true
		resp.Payload["left_chat"] = req.ChatID

	//傳送訊息
	case domain.SendMessage:
		sent, err := h.messageUC.Send(ctx, userID, req.ChatID, req.Content, req.Attachment)
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Success = true
			resp.Payload["message"] = sent
		}

	//刪除自己的訊息
	case domain.DeleteMessage:
		err := h.messageUC.Delete(ctx, userID, req.ChatID, req.MessageID)
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Success = true
			resp.Payload["message_id"] = req.MessageID
		}

	//標記已讀
	case domain.ReadMessages:
		err := h.messageUC.MarkRead(ctx, userID, req.ChatID, req.MessageIDs)
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Success = true
		}

	//typing 指示
	case domain.StartTyping:
		name := h.displayName(ctx, userID)
		if err := h.messageUC.StartTyping(ctx, userID, name, req.ChatID); err != nil {
			resp.Error = err.Error()
		} else {
			resp.Success = true
		}

	case domain.StopTyping:
		if err := h.messageUC.StopTyping(ctx, userID, req.ChatID); err != nil {
			resp.Error = err.Error()
		} else {
			resp.Success = true
		}

	//接受 message request
	case domain.AcceptRequest:
		chat, err := h.chatListUC.AcceptRequest(ctx, userID, req.ChatID)
		if err != nil {
			resp.Error = err.Error()
		} else {
			session.ApplyLocalDecision(req.ChatID, domain.DecisionAccepted)
			resp.Success = true
			resp.Payload["chat"] = chat
		}

	//拒絕 message request
	case domain.DeclineRequest:
		err := h.chatListUC.DeclineRequest(ctx, userID, req.ChatID)
		if err != nil {
			resp.Error = err.Error()
		} else {
			session.ApplyLocalDecision(req.ChatID, domain.DecisionDeclined)
			resp.Success = true
		}

	//重新載入清單
	case domain.GetChats, domain.GetRequests:
		h.syncSession(ctx, conn, session, userID)
		return

	//搜尋所有未讀訊息
	case domain.GetUnread:
		unread, err := h.chatListUC.GetUnread(ctx, userID)
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Success = true
			for _, u := range unread {
				resp.Payload[u.ChatID] = u.UnreadCount
			}
		}

	//發起通話
	case domain.InitiateCall:
		record, cred, err := h.callUC.Initiate(ctx, userID, req.ReceiverID, req.ChatID, calldomain.CallType(req.CallType), req.Provider)
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Success = true
			resp.Payload["call"] = record
			resp.Payload["credential"] = cred
		}

	//接聽
	case domain.AcceptCall:
		cred, err := h.callUC.Accept(ctx, userID, req.CallID)
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Success = true
			resp.Payload["credential"] = cred
		}

	//拒接
	case domain.DeclineCall:
		err := h.callUC.Decline(ctx, userID, req.CallID, req.Reason)
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Success = true
		}

	//掛斷
	case domain.EndCall:
		record, err := h.callUC.End(ctx, userID, req.CallID)
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Success = true
			resp.Payload["call"] = record
		}

	default:
		h.sendError(conn, "unknown message types ")
	}

	if resp.Error != "" {
		logger.Log.Error("websocket err ", zap.String("UserID", userID), zap.String("Action", req.Action), zap.String("err", resp.Error))
	}
	h.sendResponse(conn, resp)
}

func (h *ChatWebsocketHandler) displayName(ctx context.Context, userID string) string {
	if h.directory == nil {
		return userID
	}
	name, err := h.directory.DisplayName(ctx, userID)
	if err != nil || name == "" {
		return userID
	}
	return name
}

// sendResponse - 發送 JSON 給前端
func (h *ChatWebsocketHandler) sendResponse(conn *websocket.Conn, resp domain.WSResponse) {
	b, _ := json.Marshal(resp)
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		logger.Log.Errorf("write message error:", err)
	}
}

func (h *ChatWebsocketHandler) sendError(conn *websocket.Conn, errorMsg string) {
	resp := domain.WSResponse{
		Action:  "error",
		Success: false,
		Payload: map[string]interface{}{
			"error": errorMsg,
		},
	}
	h.sendResponse(conn, resp)
}
