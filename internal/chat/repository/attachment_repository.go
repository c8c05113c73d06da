package repository

import (
	"context"
	"fmt"
	"io"
	"time"

	"social_network_service/pkg/database"

	"github.com/google/uuid"
)

// AttachmentURLExpiry presigned URL 有效時間
const AttachmentURLExpiry = 15 * time.Minute

// AttachmentRepository - 訊息附件存儲 (minio)
type AttachmentRepository interface {
	// Upload 存入附件並回傳 object name
	Upload(ctx context.Context, chatID string, reader io.Reader, size int64, contentType string) (string, error)
	PresignGet(ctx context.Context, objectName string) (string, error)
	Remove(ctx context.Context, objectName string) error
}

type minioAttachmentRepository struct {
	mc *database.MinIOClient
}

// NewMinIOAttachmentRepository create AttachmentRepository
func NewMinIOAttachmentRepository(mc *database.MinIOClient) AttachmentRepository {
	return &minioAttachmentRepository{mc: mc}
}

// Upload object name 以 chat id 分層，方便後續清理
func (r *minioAttachmentRepository) Upload(ctx context.Context, chatID string, reader io.Reader, size int64, contentType string) (string, error) {
	objectName := fmt.Sprintf("%s/%s", chatID, uuid.New().String())
	if err := r.mc.UploadStream(ctx, objectName, reader, size, contentType); err != nil {
		return "", err
	}
	return objectName, nil
}

func (r *minioAttachmentRepository) PresignGet(ctx context.Context, objectName string) (string, error) {
	return r.mc.PresignGetURL(ctx, objectName, AttachmentURLExpiry)
}

func (r *minioAttachmentRepository) Remove(ctx context.Context, objectName string) error {
	return r.mc.RemoveObject(ctx, objectName)
}
