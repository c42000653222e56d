// Package s3 implements the store.Store contract over S3-compatible
// object storage. Each task is one JSON object under the configured
// prefix, keyed by task id, so the remote is addressable per record.
package s3

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"tasksync/internal/config"
	"tasksync/internal/store"
)

const keySuffix = ".json"

// API is the subset of the S3 client used by this backend.
// Narrowed to an interface so tests can substitute an in-memory fake.
type API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// record is the persisted object shape. The id is not stored in the
// body; the object key is the id.
type record struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

// Store implements store.Store against one bucket prefix.
type Store struct {
	api    API
	bucket string
	prefix string
}

// New creates an S3-backed remote store using the default AWS
// credential chain.
func New(ctx context.Context, cfg *config.Config) (*Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	if cfg.S3Region != "" {
		awsCfg.Region = cfg.S3Region
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			// Path-style for minio/localstack style endpoints
			o.UsePathStyle = true
		}
	})

	return NewWithAPI(client, cfg.S3Bucket, cfg.S3Prefix), nil
}

// NewWithAPI creates a store over an explicit API implementation.
func NewWithAPI(api API, bucket, prefix string) *Store {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &Store{api: api, bucket: bucket, prefix: prefix}
}

// List returns the full current remote snapshot in key order.
func (s *Store) List(ctx context.Context) ([]store.Task, error) {
	ids, err := s.listIDs(ctx)
	if err != nil {
		return nil, err
	}

	var result []store.Task
	for _, id := range ids {
		t, err := s.Get(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			// Deleted between list and get
			continue
		}
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, nil
}

// Get returns one remote task by id.
func (s *Store) Get(ctx context.Context, id string) (store.Task, error) {
	if id == "" {
		return store.Task{}, store.ErrEmptyID
	}

	out, err := s.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
	})
	if err != nil {
		return store.Task{}, wrapError("get", err)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return store.Task{}, wrapError("get", err)
	}

	var rec record
	if err := json.Unmarshal(body, &rec); err != nil {
		return store.Task{}, fmt.Errorf("corrupt task object %s: %w", s.key(id), err)
	}

	return store.Task{
		ID:          id,
		Title:       rec.Title,
		Description: rec.Description,
		Completed:   rec.Completed,
	}, nil
}

// Save writes the task object, creating or replacing it.
func (s *Store) Save(ctx context.Context, t store.Task) error {
	if err := t.Validate(); err != nil {
		return err
	}

	body, err := json.Marshal(record{
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
	})
	if err != nil {
		return fmt.Errorf("failed to encode task %s: %w", t.ID, err)
	}

	_, err = s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(t.ID)),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return wrapError("put", err)
	}
	return nil
}

// SetCompleted sets the completed flag on the given task.
func (s *Store) SetCompleted(ctx context.Context, t store.Task, completed bool) error {
	if err := t.Validate(); err != nil {
		return err
	}
	t.Completed = completed
	return s.Save(ctx, t)
}

// SetCompletedByID reads the current remote task, flips the flag and
// writes it back.
func (s *Store) SetCompletedByID(ctx context.Context, id string, completed bool) error {
	t, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	t.Completed = completed
	return s.Save(ctx, t)
}

// DeleteAllCompleted removes every completed remote task.
// Two-phase: fetch the snapshot, then one delete at a time. The first
// failed delete aborts the remainder; earlier deletes stay deleted.
func (s *Store) DeleteAllCompleted(ctx context.Context) error {
	snapshot, err := s.List(ctx)
	if err != nil {
		return err
	}

	for _, t := range snapshot {
		if !t.Completed {
			continue
		}
		if err := s.Delete(ctx, t.ID); err != nil {
			return err
		}
	}
	return nil
}

// DeleteAll removes every remote task, one delete at a time.
func (s *Store) DeleteAll(ctx context.Context) error {
	ids, err := s.listIDs(ctx)
	if err != nil {
		return err
	}

	for _, id := range ids {
		if err := s.Delete(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes the task object with the given id.
// S3 deletes are idempotent; deleting an absent key succeeds.
func (s *Store) Delete(ctx context.Context, id string) error {
	if id == "" {
		return store.ErrEmptyID
	}

	_, err := s.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
	})
	if err != nil {
		return wrapError("delete", err)
	}
	return nil
}

// RefreshAll is a no-op: the remote backend is the side being pulled
// from; reconciliation lives in the repository.
func (s *Store) RefreshAll(ctx context.Context) error {
	return nil
}

// RefreshOne is a no-op, see RefreshAll.
func (s *Store) RefreshOne(ctx context.Context, id string) error {
	return nil
}

func (s *Store) key(id string) string {
	return s.prefix + id + keySuffix
}

// listIDs pages through the prefix and returns the task ids in key order.
func (s *Store) listIDs(ctx context.Context) ([]string, error) {
	var ids []string
	var token *string

	for {
		out, err := s.api.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(s.prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, wrapError("list", err)
		}

		for _, obj := range out.Contents {
			key := aws.ToString(obj.Key)
			if !strings.HasSuffix(key, keySuffix) {
				continue
			}
			id := strings.TrimSuffix(strings.TrimPrefix(key, s.prefix), keySuffix)
			if id == "" {
				continue
			}
			ids = append(ids, id)
		}

		if out.NextContinuationToken == nil {
			return ids, nil
		}
		token = out.NextContinuationToken
	}
}

// wrapError maps SDK errors onto the store error kinds. A missing key
// is a distinct NotFound; everything else transport-shaped becomes
// Unavailable. Context errors pass through untouched.
func wrapError(op string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var noKey *types.NoSuchKey
	if errors.As(err, &noKey) {
		return store.ErrNotFound
	}
	// Some S3-compatible backends report NotFound instead of NoSuchKey
	if strings.Contains(err.Error(), "NoSuchKey") || strings.Contains(err.Error(), "NotFound") {
		return store.ErrNotFound
	}

	return fmt.Errorf("%w: s3 %s: %v", store.ErrUnavailable, op, err)
}
