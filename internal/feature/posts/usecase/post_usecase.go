// Package usecase はpostsフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"time"

	"blog_server/internal/feature/posts/domain/entity"
)

// PerPage は一覧ページあたりの投稿数です。
const PerPage = 5

// PostRepository は投稿エンティティの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type PostRepository interface {
	// Create は新しい投稿を永続化し、採番されたIDをエンティティに書き戻します。
	Create(ctx context.Context, post *entity.Post) error

	// FindByID はIDで投稿を取得します。存在しない場合はErrPostNotFoundを返します。
	FindByID(ctx context.Context, id uint) (*entity.Post, error)

	// FindPage は作成日時の降順で1ページ分の投稿と総件数を返します。
	FindPage(ctx context.Context, page, perPage int) ([]entity.Post, int64, error)

	// FindPageByUser は指定ユーザーの投稿に限定したFindPageです。
	FindPageByUser(ctx context.Context, userID uint, page, perPage int) ([]entity.Post, int64, error)

	// Update はタイトルと本文のみを更新します。著者は不変です。
	Update(ctx context.Context, post *entity.Post) error

	// Delete はIDで投稿を削除します。存在しない場合はErrPostNotFoundを返します。
	Delete(ctx context.Context, id uint) error
}

// Page は一覧表示1ページ分の結果です。
type Page struct {
	Posts      []entity.Post
	Number     int   // 現在のページ番号（1始まり）
	PerPage    int   // 1ページあたりの件数
	TotalPages int   // 総ページ数（最低1）
	Total      int64 // 総投稿数
}

// HasPrev は前のページが存在するかを返します。
func (p *Page) HasPrev() bool { return p.Number > 1 }

// HasNext は次のページが存在するかを返します。
func (p *Page) HasNext() bool { return p.Number < p.TotalPages }

// Prev は前のページ番号を返します。
func (p *Page) Prev() int { return p.Number - 1 }

// Next は次のページ番号を返します。
func (p *Page) Next() int { return p.Number + 1 }

// PostUsecase は投稿のCRUDと一覧取得のビジネスロジックを提供します。
type PostUsecase struct {
	posts PostRepository
}

// NewPostUsecase はPostUsecaseの新しいインスタンスを生成します。
func NewPostUsecase(posts PostRepository) *PostUsecase {
	return &PostUsecase{posts: posts}
}

// Create は現在時刻を作成日時として新しい投稿を永続化します。
func (u *PostUsecase) Create(ctx context.Context, userID uint, title, content string) (*entity.Post, error) {
	post := &entity.Post{
		Title:      title,
		Content:    content,
		DatePosted: time.Now(),
		UserID:     userID,
	}
	if err := u.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// Get はIDで投稿を取得します。
func (u *PostUsecase) Get(ctx context.Context, id uint) (*entity.Post, error) {
	return u.posts.FindByID(ctx, id)
}

// ListRecent は全投稿を作成日時の降順で1ページ分返します。
func (u *PostUsecase) ListRecent(ctx context.Context, page int) (*Page, error) {
	page = normalizePage(page)
	posts, total, err := u.posts.FindPage(ctx, page, PerPage)
	if err != nil {
		return nil, err
	}
	return newPage(posts, page, total), nil
}

// ListByUser は指定ユーザーの投稿を作成日時の降順で1ページ分返します。
func (u *PostUsecase) ListByUser(ctx context.Context, userID uint, page int) (*Page, error) {
	page = normalizePage(page)
	posts, total, err := u.posts.FindPageByUser(ctx, userID, page, PerPage)
	if err != nil {
		return nil, err
	}
	return newPage(posts, page, total), nil
}

// Update はタイトルと本文を上書きします。
// 投稿が存在しない場合はErrPostNotFound、著者以外が呼んだ場合はErrNotAuthorを返し、状態は変更しません。
func (u *PostUsecase) Update(ctx context.Context, id, userID uint, title, content string) (*entity.Post, error) {
	post, err := u.posts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.UserID != userID {
		return nil, ErrNotAuthor
	}
	post.Title = title
	post.Content = content
	if err := u.posts.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// Delete は投稿を削除します。著者以外が呼んだ場合はErrNotAuthorを返し、状態は変更しません。
func (u *PostUsecase) Delete(ctx context.Context, id, userID uint) error {
	post, err := u.posts.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		return ErrNotAuthor
	}
	return u.posts.Delete(ctx, id)
}

// normalizePage は不正なページ番号を1に丸めます。
func normalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// newPage はページ結果を組み立てます。総ページ数は最低1です。
func newPage(posts []entity.Post, page int, total int64) *Page {
	totalPages := int((total + PerPage - 1) / PerPage)
	if totalPages < 1 {
		totalPages = 1
	}
	return &Page{
		Posts:      posts,
		Number:     page,
		PerPage:    PerPage,
		TotalPages: totalPages,
		Total:      total,
	}
}
