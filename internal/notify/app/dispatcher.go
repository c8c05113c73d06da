package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"social_network_service/internal/notify/domain"
	"social_network_service/pkg/logger"

	"github.com/streadway/amqp"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

const (
	pushRequestTimeout = 10 * time.Second
	retryBackoff       = 2 * time.Second
)

// PushSender 把通知送出去的出口
type PushSender interface {
	Send(ctx context.Context, n *domain.PushNotification) error
}

// GatewaySender POST 到 push gateway (FCM/APNs proxy)
type GatewaySender struct {
	gatewayURL string
	client     *fasthttp.Client
}

// NewGatewaySender create GatewaySender
func NewGatewaySender(gatewayURL string) *GatewaySender {
	return &GatewaySender{
		gatewayURL: gatewayURL,
		client: &fasthttp.Client{
			ReadTimeout:  pushRequestTimeout,
			WriteTimeout: pushRequestTimeout,
		},
	}
}

// Send POST JSON 到 gateway，2xx 以外視為失敗
func (s *GatewaySender) Send(_ context.Context, n *domain.PushNotification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(s.gatewayURL)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(body)

	if err := s.client.DoTimeout(req, resp, pushRequestTimeout); err != nil {
		return err
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return fmt.Errorf("push gateway returned %d", resp.StatusCode())
	}
	return nil
}

// Dispatcher 消費 rabbitmq push queue，逐筆送往 gateway
type Dispatcher struct {
	channel     *amqp.Channel
	queue       string
	sender      PushSender
	maxAttempts int
}

// NewDispatcher create Dispatcher
func NewDispatcher(channel *amqp.Channel, queue string, sender PushSender, maxAttempts int) *Dispatcher {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &Dispatcher{
		channel:     channel,
		queue:       queue,
		sender:      sender,
		maxAttempts: maxAttempts,
	}
}

// Run 開始消費，ctx 取消時結束
func (d *Dispatcher) Run(ctx context.Context) error {
	if _, err := d.channel.QueueDeclare(d.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare error: %w", err)
	}

	deliveries, err := d.channel.Consume(d.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume error: %w", err)
	}

	logger.Log.Info("push dispatcher started", zap.String("queue", d.queue))

	for {
		select {
		case <-ctx.Done():
			logger.Log.Info("push dispatcher stopped")
			return nil
		case delivery, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("rabbitmq channel closed")
			}
			d.handle(ctx, delivery)
		}
	}
}

func (d *Dispatcher) handle(ctx context.Context, delivery amqp.Delivery) {
	var n domain.PushNotification
	if err := json.Unmarshal(delivery.Body, &n); err != nil {
		logger.Log.Error("bad push payload", zap.Error(err))
		delivery.Nack(false, false) // 壞資料不重排
		return
	}

	if err := d.deliver(ctx, &n); err != nil {
		logger.Log.Error("push delivery failed",
			zap.String("userID", n.UserID),
			zap.Int("attempts", d.maxAttempts),
			zap.Error(err),
		)
		delivery.Nack(false, false)
		return
	}

	delivery.Ack(false)
}

// deliver 失敗時退避重試，最多 maxAttempts 次
func (d *Dispatcher) deliver(ctx context.Context, n *domain.PushNotification) error {
	var lastErr error
	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		n.Attempt = attempt
		if lastErr = d.sender.Send(ctx, n); lastErr == nil {
			return nil
		}

		logger.Log.Warn("push attempt failed",
			zap.String("userID", n.UserID),
			zap.Int("attempt", attempt),
			zap.Error(lastErr),
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryBackoff * time.Duration(attempt)):
		}
	}
	return lastErr
}
