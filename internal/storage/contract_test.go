package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SmitUplenchwar2687/Rewind/internal/recording"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type storeFactory struct {
	name string
	new  func(t *testing.T) Store
}

func storeFactories() []storeFactory {
	return []storeFactory{
		{
			name: "memory",
			new: func(t *testing.T) Store {
				return NewMemoryStore()
			},
		},
		{
			name: "sqlite",
			new: func(t *testing.T) Store {
				t.Helper()
				s, err := NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "archive.db"))
				require.NoError(t, err)
				t.Cleanup(func() { _ = s.Close() })
				return s
			},
		},
		{
			name: "redis",
			new: func(t *testing.T) Store {
				t.Helper()
				s, _ := newMiniredisStore(t)
				return s
			},
		},
		{
			name: "s3",
			new: func(t *testing.T) Store {
				return newS3StoreWithClient(newFakeS3(), "bucket", "recordings")
			},
		},
	}
}

func newMiniredisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := NewRedisStoreFromClient(client, "test:")
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func testEntry(id string, created time.Time) Entry {
	return Entry{
		ID:        id,
		AppName:   "contract",
		CreatedAt: created,
		Size:      len(testDocument(id)),
		Stats:     recording.Stats{TotalEvents: 2, TotalSnapshots: 1, Duration: 1500 * time.Millisecond},
	}
}

func testDocument(id string) []byte {
	return []byte(fmt.Sprintf(`{"id":%q}`, id))
}

func TestStoreContract(t *testing.T) {
	for _, f := range storeFactories() {
		t.Run(f.name, func(t *testing.T) {
			t.Run("save and load", func(t *testing.T) { contractSaveLoad(t, f.new(t)) })
			t.Run("missing", func(t *testing.T) { contractMissing(t, f.new(t)) })
			t.Run("list order", func(t *testing.T) { contractListOrder(t, f.new(t)) })
			t.Run("overwrite", func(t *testing.T) { contractOverwrite(t, f.new(t)) })
			t.Run("delete", func(t *testing.T) { contractDelete(t, f.new(t)) })
		})
	}
}

func contractSaveLoad(t *testing.T, s Store) {
	ctx := context.Background()
	entry := testEntry("a", epoch)
	require.NoError(t, s.Save(ctx, entry, testDocument("a")))

	got, data, err := s.Load(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, testDocument("a"), data)
	assert.Equal(t, entry.ID, got.ID)
	assert.Equal(t, entry.AppName, got.AppName)
	assert.Equal(t, entry.Size, got.Size)
	assert.Equal(t, entry.Stats, got.Stats)
	assert.True(t, entry.CreatedAt.Equal(got.CreatedAt), "created_at = %v, want %v", got.CreatedAt, entry.CreatedAt)
}

func contractMissing(t *testing.T, s Store) {
	ctx := context.Background()
	_, _, err := s.Load(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "nope"), ErrNotFound)

	entries, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func contractListOrder(t *testing.T, s Store) {
	ctx := context.Background()
	for i, id := range []string{"first", "second", "third"} {
		require.NoError(t, s.Save(ctx, testEntry(id, epoch.Add(time.Duration(i)*time.Minute)), testDocument(id)))
	}

	entries, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "third", entries[0].ID)
	assert.Equal(t, "second", entries[1].ID)
	assert.Equal(t, "first", entries[2].ID)
}

func contractOverwrite(t *testing.T, s Store) {
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, testEntry("x", epoch), []byte(`{"v":1}`)))
	require.NoError(t, s.Save(ctx, testEntry("x", epoch), []byte(`{"v":2}`)))

	_, data, err := s.Load(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, `{"v":2}`, string(data))

	entries, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func contractDelete(t *testing.T, s Store) {
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, testEntry("gone", epoch), testDocument("gone")))
	require.NoError(t, s.Save(ctx, testEntry("kept", epoch.Add(time.Second)), testDocument("kept")))

	require.NoError(t, s.Delete(ctx, "gone"))
	_, _, err := s.Load(ctx, "gone")
	assert.ErrorIs(t, err, ErrNotFound)

	entries, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "kept", entries[0].ID)
}

// fakeS3 is an in-memory bucket that pages listings two keys at a time.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string][]byte)}
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(in.Key)] = body
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	body, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{Message: aws.String("no such key")}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(body))}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	const pageSize = 2

	f.mu.Lock()
	defer f.mu.Unlock()

	var keys []string
	for k := range f.objects {
		if strings.HasPrefix(k, aws.ToString(in.Prefix)) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	start := 0
	if tok := aws.ToString(in.ContinuationToken); tok != "" {
		n, err := strconv.Atoi(tok)
		if err != nil {
			return nil, errors.New("bad continuation token")
		}
		start = n
	}
	end := min(start+pageSize, len(keys))

	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(end < len(keys))}
	for _, k := range keys[start:end] {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
	}
	if end < len(keys) {
		out.NextContinuationToken = aws.String(strconv.Itoa(end))
	}
	return out, nil
}
