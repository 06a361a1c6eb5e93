package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"

	"blog_server/internal/feature/posts/domain/entity"
	"blog_server/internal/feature/posts/usecase"
)

// mockPostRepository はテスト用のPostRepositoryモック実装です。
type mockPostRepository struct {
	createFn         func(ctx context.Context, post *entity.Post) error
	findByIDFn       func(ctx context.Context, id uint) (*entity.Post, error)
	findPageFn       func(ctx context.Context, page, perPage int) ([]entity.Post, int64, error)
	findPageByUserFn func(ctx context.Context, userID uint, page, perPage int) ([]entity.Post, int64, error)
	updateFn         func(ctx context.Context, post *entity.Post) error
	deleteFn         func(ctx context.Context, id uint) error
}

func (m *mockPostRepository) Create(ctx context.Context, post *entity.Post) error {
	if m.createFn != nil {
		return m.createFn(ctx, post)
	}
	return nil
}

func (m *mockPostRepository) FindByID(ctx context.Context, id uint) (*entity.Post, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, usecase.ErrPostNotFound
}

func (m *mockPostRepository) FindPage(ctx context.Context, page, perPage int) ([]entity.Post, int64, error) {
	if m.findPageFn != nil {
		return m.findPageFn(ctx, page, perPage)
	}
	return nil, 0, nil
}

func (m *mockPostRepository) FindPageByUser(ctx context.Context, userID uint, page, perPage int) ([]entity.Post, int64, error) {
	if m.findPageByUserFn != nil {
		return m.findPageByUserFn(ctx, userID, page, perPage)
	}
	return nil, 0, nil
}

func (m *mockPostRepository) Update(ctx context.Context, post *entity.Post) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, post)
	}
	return nil
}

func (m *mockPostRepository) Delete(ctx context.Context, id uint) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

// TestNewCachingPostRepository_Defaults はデフォルト値（TTLとnamespace）が正しく設定されることを検証します。
func TestNewCachingPostRepository_Defaults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name              string
		ttl               time.Duration
		namespace         string
		expectedTTL       time.Duration
		expectedNamespace string
	}{
		{
			name:              "default values when zero/empty",
			ttl:               0,
			namespace:         "",
			expectedTTL:       time.Minute,
			expectedNamespace: "posts",
		},
		{
			name:              "negative ttl uses default",
			ttl:               -1 * time.Minute,
			namespace:         "",
			expectedTTL:       time.Minute,
			expectedNamespace: "posts",
		},
		{
			name:              "custom values preserved",
			ttl:               10 * time.Minute,
			namespace:         "custom",
			expectedTTL:       10 * time.Minute,
			expectedNamespace: "custom",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := NewCachingPostRepository(nil, tt.ttl, &mockPostRepository{}, tt.namespace)

			if repo.ttl != tt.expectedTTL {
				t.Errorf("expected TTL %v, got %v", tt.expectedTTL, repo.ttl)
			}
			if repo.namespace != tt.expectedNamespace {
				t.Errorf("expected namespace %q, got %q", tt.expectedNamespace, repo.namespace)
			}
		})
	}
}

// TestCachingPostRepository_FindPage_NilRedis はRedisがnilの場合にキャッシュをバイパスして内部リポジトリを直接呼び出すことを検証します。
func TestCachingPostRepository_FindPage_NilRedis(t *testing.T) {
	t.Parallel()

	expectedPosts := []entity.Post{
		{ID: 1, Title: "First Post", UserID: 1},
	}

	inner := &mockPostRepository{
		findPageFn: func(ctx context.Context, page, perPage int) ([]entity.Post, int64, error) {
			return expectedPosts, 1, nil
		},
	}

	// Redis is nil - should bypass cache and call inner directly
	repo := NewCachingPostRepository(nil, time.Minute, inner, "posts")

	posts, total, err := repo.FindPage(context.Background(), 1, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(posts) != 1 || total != 1 {
		t.Errorf("expected 1 post and total 1, got %d posts total %d", len(posts), total)
	}
}

// TestCachingPostRepository_FindPage_CacheHit はキャッシュヒット時にRedisからデータを返し、内部リポジトリを呼ばないことを検証します。
func TestCachingPostRepository_FindPage_CacheHit(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	cached := cachedPage{
		Posts: []entity.Post{{ID: 1, Title: "First Post", UserID: 1}},
		Total: 7,
	}
	cachedJSON, _ := json.Marshal(cached)

	mock.ExpectGet("posts:recent:1:5").SetVal(string(cachedJSON))

	innerCalled := false
	inner := &mockPostRepository{
		findPageFn: func(ctx context.Context, page, perPage int) ([]entity.Post, int64, error) {
			innerCalled = true
			return nil, 0, nil
		},
	}

	repo := NewCachingPostRepository(rdb, time.Minute, inner, "posts")
	posts, total, err := repo.FindPage(context.Background(), 1, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if innerCalled {
		t.Error("inner repository should not be called on cache hit")
	}
	if len(posts) != 1 || total != 7 {
		t.Errorf("expected 1 post and total 7, got %d posts total %d", len(posts), total)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

// TestCachingPostRepository_FindPage_CacheMiss はキャッシュミス時にDBからデータを取得し、キャッシュに保存することを検証します。
func TestCachingPostRepository_FindPage_CacheMiss(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	expectedPosts := []entity.Post{{ID: 1, Title: "First Post", UserID: 1}}
	expectedJSON, _ := json.Marshal(cachedPage{Posts: expectedPosts, Total: 1})

	// Cache miss
	mock.ExpectGet("posts:recent:1:5").RedisNil()
	// Set cache after fetching from inner
	mock.ExpectSet("posts:recent:1:5", expectedJSON, time.Minute).SetVal("OK")

	inner := &mockPostRepository{
		findPageFn: func(ctx context.Context, page, perPage int) ([]entity.Post, int64, error) {
			return expectedPosts, 1, nil
		},
	}

	repo := NewCachingPostRepository(rdb, time.Minute, inner, "posts")
	posts, total, err := repo.FindPage(context.Background(), 1, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(posts) != 1 || total != 1 {
		t.Errorf("expected 1 post and total 1, got %d posts total %d", len(posts), total)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

// TestCachingPostRepository_FindPage_InnerError は内部リポジトリがエラーを返した場合にそのエラーが伝播されることを検証します。
func TestCachingPostRepository_FindPage_InnerError(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	expectedErr := errors.New("database error")

	mock.ExpectGet("posts:recent:1:5").RedisNil()

	inner := &mockPostRepository{
		findPageFn: func(ctx context.Context, page, perPage int) ([]entity.Post, int64, error) {
			return nil, 0, expectedErr
		},
	}

	repo := NewCachingPostRepository(rdb, time.Minute, inner, "posts")
	_, _, err := repo.FindPage(context.Background(), 1, 5)

	if !errors.Is(err, expectedErr) {
		t.Errorf("expected error %v, got %v", expectedErr, err)
	}
}

// TestCachingPostRepository_FindPage_CorruptedCache は破損したキャッシュを検出・削除し、DBにフォールバックすることを検証します。
func TestCachingPostRepository_FindPage_CorruptedCache(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	expectedPosts := []entity.Post{{ID: 1, Title: "First Post", UserID: 1}}
	expectedJSON, _ := json.Marshal(cachedPage{Posts: expectedPosts, Total: 1})

	// Return invalid JSON from cache
	mock.ExpectGet("posts:recent:1:5").SetVal("invalid json")
	// Delete corrupted cache
	mock.ExpectDel("posts:recent:1:5").SetVal(1)
	// Set new cache after fetching from inner
	mock.ExpectSet("posts:recent:1:5", expectedJSON, time.Minute).SetVal("OK")

	inner := &mockPostRepository{
		findPageFn: func(ctx context.Context, page, perPage int) ([]entity.Post, int64, error) {
			return expectedPosts, 1, nil
		},
	}

	repo := NewCachingPostRepository(rdb, time.Minute, inner, "posts")
	posts, _, err := repo.FindPage(context.Background(), 1, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(posts) != 1 {
		t.Errorf("expected 1 post, got %d", len(posts))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

// TestCachingPostRepository_Create_CacheInvalidation はCreate後に一覧キャッシュが無効化されることを検証します。
func TestCachingPostRepository_Create_CacheInvalidation(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	inner := &mockPostRepository{
		createFn: func(ctx context.Context, post *entity.Post) error {
			return nil
		},
	}

	// Expect cache invalidation via SCAN and DEL
	mock.ExpectScan(0, "posts:recent:*", 200).SetVal([]string{"posts:recent:1:5", "posts:recent:2:5"}, 0)
	mock.ExpectDel("posts:recent:1:5", "posts:recent:2:5").SetVal(2)

	repo := NewCachingPostRepository(rdb, time.Minute, inner, "posts")
	err := repo.Create(context.Background(), &entity.Post{Title: "First Post"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

// TestCachingPostRepository_Create_InnerError は内部リポジトリのCreateエラーが伝播され、キャッシュ操作が行われないことを検証します。
func TestCachingPostRepository_Create_InnerError(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	expectedErr := errors.New("create error")
	inner := &mockPostRepository{
		createFn: func(ctx context.Context, post *entity.Post) error {
			return expectedErr
		},
	}

	repo := NewCachingPostRepository(rdb, time.Minute, inner, "posts")
	err := repo.Create(context.Background(), &entity.Post{Title: "First Post"})

	if !errors.Is(err, expectedErr) {
		t.Errorf("expected error %v, got %v", expectedErr, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

// TestCachingPostRepository_Delete_CacheInvalidation はDelete後に一覧キャッシュが無効化されることを検証します。
func TestCachingPostRepository_Delete_CacheInvalidation(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	inner := &mockPostRepository{
		deleteFn: func(ctx context.Context, id uint) error {
			return nil
		},
	}

	mock.ExpectScan(0, "posts:recent:*", 200).SetVal([]string{}, 0)

	repo := NewCachingPostRepository(rdb, time.Minute, inner, "posts")
	err := repo.Delete(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

// TestCachingPostRepository_FindPageByUser_Passthrough は著者別の一覧がキャッシュを経由しないことを検証します。
func TestCachingPostRepository_FindPageByUser_Passthrough(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	innerCalled := false
	inner := &mockPostRepository{
		findPageByUserFn: func(ctx context.Context, userID uint, page, perPage int) ([]entity.Post, int64, error) {
			innerCalled = true
			return []entity.Post{{ID: 1, UserID: userID}}, 1, nil
		},
	}

	repo := NewCachingPostRepository(rdb, time.Minute, inner, "posts")
	posts, total, err := repo.FindPageByUser(context.Background(), 42, 1, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !innerCalled {
		t.Error("expected inner repository to be called")
	}
	if len(posts) != 1 || total != 1 {
		t.Errorf("expected 1 post and total 1, got %d posts total %d", len(posts), total)
	}
	// No Redis command should run for per-author pages
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}
