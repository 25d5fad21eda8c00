package minio

import (
	"context"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/minio/minio-go/v7"
	"github.com/turtacn/PolicyInsight/internal/domain/policy"
	"github.com/turtacn/PolicyInsight/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PolicyInsight/pkg/errors"
)

const textContentType = "text/plain; charset=utf-8"

// MaxTextBytes bounds a single stored text. Extracted PDFs beyond this are
// rejected on write and truncated on read.
const MaxTextBytes = 8 << 20

var (
	ErrInvalidKey  = errors.New(errors.ErrCodeValidation, "object key required")
	ErrTextMissing = errors.New(errors.ErrCodePolicyTextMissing, "extracted policy text not found")
)

// TextStore keeps extracted PDF text as plain-text objects.
type TextStore struct {
	client *Client
	logger logging.Logger
}

var _ policy.TextStore = (*TextStore)(nil)

// NewTextStore creates a TextStore on client's bucket.
func NewTextStore(client *Client, log logging.Logger) *TextStore {
	return &TextStore{client: client, logger: log}
}

// TextKey is the object key used for a policy's extracted text.
func TextKey(policyID string) string {
	return "policies/" + policyID + "/pdf-text.txt"
}

// GetText reads the text stored at key. A missing object yields ErrTextMissing.
func (s *TextStore) GetText(ctx context.Context, key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", ErrInvalidKey
	}

	rc, err := s.client.api.GetObject(ctx, s.client.bucket, key)
	if err != nil {
		if isNoSuchKey(err) {
			return "", ErrTextMissing.WithDetail(key)
		}
		return "", errors.Wrap(err, errors.ErrCodeStorageError, "download failed")
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, MaxTextBytes))
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeStorageError, "download failed")
	}
	if !utf8.Valid(data) {
		data = []byte(strings.ToValidUTF8(string(data), ""))
	}

	s.logger.Debug("Policy text loaded",
		logging.String("key", key),
		logging.Int("bytes", len(data)))
	return string(data), nil
}

// PutText stores text at key, replacing any previous object.
func (s *TextStore) PutText(ctx context.Context, key, text string) error {
	if strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	if len(text) > MaxTextBytes {
		return errors.Newf(errors.ErrCodeValidation, "text of %d bytes exceeds limit of %d", len(text), MaxTextBytes)
	}

	_, err := s.client.api.PutObject(ctx, s.client.bucket, key, strings.NewReader(text), int64(len(text)),
		minio.PutObjectOptions{ContentType: textContentType})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, "upload failed")
	}
	return nil
}

// DeleteText removes the object at key. Deleting a missing key is not an error.
func (s *TextStore) DeleteText(ctx context.Context, key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	err := s.client.api.RemoveObject(ctx, s.client.bucket, key, minio.RemoveObjectOptions{})
	if err != nil && !isNoSuchKey(err) {
		return errors.Wrap(err, errors.ErrCodeStorageError, "delete failed")
	}
	return nil
}

func isNoSuchKey(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}

//Personal.AI order the ending
