package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

const (
	documentSuffix = ".json"
	entrySuffix    = ".entry.json"
)

// S3Config configures the S3 backend.
type S3Config struct {
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	Prefix          string
}

// s3API is the subset of *s3.Client the store uses.
type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, opts ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Store writes each recording as two objects under Prefix: the document
// at <id>.json and its entry at <id>.entry.json.
type S3Store struct {
	bucket string
	prefix string
	client s3API
}

// NewS3Store builds a client from cfg. Static credentials are used when
// given, otherwise the default AWS credential chain applies.
func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	loadOpts := []func(*awsConfig.LoadOptions) error{
		awsConfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsConfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsConfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return newS3StoreWithClient(client, cfg.Bucket, cfg.Prefix), nil
}

func newS3StoreWithClient(client s3API, bucket, prefix string) *S3Store {
	return &S3Store{bucket: bucket, prefix: normalizePrefix(prefix), client: client}
}

func normalizePrefix(prefix string) string {
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		return ""
	}
	return prefix + "/"
}

func (s *S3Store) documentKey(id string) string { return s.prefix + id + documentSuffix }
func (s *S3Store) entryKey(id string) string    { return s.prefix + id + entrySuffix }

func (s *S3Store) Save(ctx context.Context, entry Entry, data []byte) error {
	if entry.ID == "" {
		return fmt.Errorf("entry id is required")
	}
	meta, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding entry: %w", err)
	}

	// The document goes first so a listed entry always has its document.
	if err := s.put(ctx, s.documentKey(entry.ID), data); err != nil {
		return fmt.Errorf("saving recording %s: %w", entry.ID, err)
	}
	if err := s.put(ctx, s.entryKey(entry.ID), meta); err != nil {
		return fmt.Errorf("saving entry %s: %w", entry.ID, err)
	}
	return nil
}

func (s *S3Store) put(ctx context.Context, key string, body []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	return err
}

func (s *S3Store) get(ctx context.Context, key string) ([]byte, error) {
	resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

func (s *S3Store) Load(ctx context.Context, id string) (Entry, []byte, error) {
	entry, err := s.loadEntry(ctx, id)
	if err != nil {
		return Entry{}, nil, err
	}
	data, err := s.get(ctx, s.documentKey(id))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Entry{}, nil, err
		}
		return Entry{}, nil, fmt.Errorf("loading recording %s: %w", id, err)
	}
	return entry, data, nil
}

func (s *S3Store) loadEntry(ctx context.Context, id string) (Entry, error) {
	meta, err := s.get(ctx, s.entryKey(id))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Entry{}, err
		}
		return Entry{}, fmt.Errorf("loading entry %s: %w", id, err)
	}
	var entry Entry
	if err := json.Unmarshal(meta, &entry); err != nil {
		return Entry{}, fmt.Errorf("decoding entry %s: %w", id, err)
	}
	return entry, nil
}

func (s *S3Store) List(ctx context.Context) ([]Entry, error) {
	entries := []Entry{}
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing recordings: %w", err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if !strings.HasSuffix(key, entrySuffix) {
				continue
			}
			id := strings.TrimSuffix(strings.TrimPrefix(key, s.prefix), entrySuffix)
			entry, err := s.loadEntry(ctx, id)
			if errors.Is(err, ErrNotFound) {
				continue
			}
			if err != nil {
				return nil, err
			}
			entries = append(entries, entry)
		}
	}
	sortEntries(entries)
	return entries, nil
}

func (s *S3Store) Delete(ctx context.Context, id string) error {
	if _, err := s.loadEntry(ctx, id); err != nil {
		return err
	}
	for _, key := range []string{s.entryKey(id), s.documentKey(id)} {
		_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return fmt.Errorf("deleting %s: %w", key, err)
		}
	}
	return nil
}

func (s *S3Store) Close() error {
	return nil
}

func isS3NotFound(err error) bool {
	var noKey *types.NoSuchKey
	if errors.As(err, &noKey) {
		return true
	}
	var notFound *types.NotFound
	return errors.As(err, &notFound)
}
