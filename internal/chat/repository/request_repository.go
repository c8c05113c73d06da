package repository

import (
	"context"
	"social_network_service/internal/chat/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// RequestRepository definition message request (pending chat)
type RequestRepository interface {
	CreateRequest(ctx context.Context, req *domain.ChatRequest) error
	FindByChatID(ctx context.Context, chatID string) (*domain.ChatRequest, error)
	FindPendingByRecipient(ctx context.Context, userID string) ([]*domain.ChatRequest, error)
	UpdateRequestStatus(ctx context.Context, chatID string, newStatus domain.RequestStatus) error
	FindBetween(ctx context.Context, initiatorID, recipientID string) (*domain.ChatRequest, error)
}

type mongoRequestRepository struct {
	requestsColl *mongo.Collection
}

// NewMongoRequestRepository create new mongo request
func NewMongoRequestRepository(db *mongo.Database) RequestRepository {
	return &mongoRequestRepository{
		requestsColl: db.Collection(string(domain.Requests)),
	}
}

// CreateRequest create request
func (r *mongoRequestRepository) CreateRequest(ctx context.Context, req *domain.ChatRequest) error {
	_, err := r.requestsColl.InsertOne(ctx, req)
	return err
}

// FindByChatID find request by owning chat id
func (r *mongoRequestRepository) FindByChatID(ctx context.Context, chatID string) (*domain.ChatRequest, error) {
	var req domain.ChatRequest
	err := r.requestsColl.FindOne(ctx, bson.M{"chat_id": chatID}).Decode(&req)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// FindPendingByRecipient find incoming requests still waiting for decision
func (r *mongoRequestRepository) FindPendingByRecipient(ctx context.Context, userID string) ([]*domain.ChatRequest, error) {
	filter := bson.M{
		"recipient_id": userID,
		"status":       domain.RequestPending,
	}

	cur, err := r.requestsColl.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var requests []*domain.ChatRequest
	for cur.Next(ctx) {
		var req domain.ChatRequest
		if err := cur.Decode(&req); err != nil {
			return nil, err
		}
		requests = append(requests, &req)
	}

	if err := cur.Err(); err != nil {
		return nil, err
	}

	return requests, nil
}

// UpdateRequestStatus update request status
func (r *mongoRequestRepository) UpdateRequestStatus(ctx context.Context, chatID string, newStatus domain.RequestStatus) error {
	filter := bson.M{"chat_id": chatID}
	update := bson.M{"$set": bson.M{"status": newStatus}}
	_, err := r.requestsColl.UpdateOne(ctx, filter, update)
	return err
}

// FindBetween find request between two users
func (r *mongoRequestRepository) FindBetween(ctx context.Context, initiatorID, recipientID string) (*domain.ChatRequest, error) {
	filter := bson.M{
		"initiator_id": initiatorID,
		"recipient_id": recipientID,
	}
	var req domain.ChatRequest
	err := r.requestsColl.FindOne(ctx, filter).Decode(&req)
	if err != nil {
		return nil, err
	}
	return &req, nil
}
