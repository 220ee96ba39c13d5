package services

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

const avatarBucket = "avatars"

// StorageService stores user avatars in MinIO and hands back a public URL.
type StorageService struct {
	client   *minio.Client
	logger   *zap.Logger
	bucket   string
	endpoint string
}

func ConnectMinio(endpoint, accessKey, secretKey string, log *zap.Logger) (*StorageService, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: false,
	})
	if err != nil {
		log.Error("Failed to initialize MinIO client", zap.Error(err))
		return nil, err
	}

	log.Info("MinIO client initialized", zap.String("endpoint", endpoint))

	if err := initBucket(client, avatarBucket, log); err != nil {
		log.Error("Failed to create/access bucket", zap.Error(err))
		return nil, err
	}

	return &StorageService{client: client, logger: log, bucket: avatarBucket, endpoint: endpoint}, nil
}

func initBucket(client *minio.Client, bucketName string, log *zap.Logger) error {
	ctx := context.Background()

	exists, err := client.BucketExists(ctx, bucketName)
	if err != nil {
		return fmt.Errorf("error checking if bucket exists: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("error creating bucket: %w", err)
		}
		log.Info("Bucket created", zap.String("bucket", bucketName))
	}
	return nil
}

// UploadAvatar stores the image under a fresh object id and returns the
// object id and its public URL.
func (s *StorageService) UploadAvatar(file io.Reader, contentType string) (string, string, error) {
	objectID := uuid.New().String()

	_, err := s.client.PutObject(context.Background(), s.bucket, objectID, file, -1, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		s.logger.Error("Failed to upload avatar", zap.String("object_id", objectID), zap.Error(err))
		return "", "", err
	}

	publicURL := fmt.Sprintf("http://%s/%s/%s", s.endpoint, s.bucket, objectID)
	s.logger.Info("Avatar uploaded",
		zap.String("object_id", objectID),
		zap.String("url", publicURL),
	)
	return objectID, publicURL, nil
}
