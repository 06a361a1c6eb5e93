// Package adapters はpostsフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	authentity "blog_server/internal/feature/auth/domain/entity"
	"blog_server/internal/feature/posts/domain/entity"
	"blog_server/internal/feature/posts/usecase"
)

// PostModel is the GORM model for the posts table.
type PostModel struct {
	ID         uint            `gorm:"primaryKey"`
	Title      string          `gorm:"size:100;not null"`
	Content    string          `gorm:"type:text;not null"`
	DatePosted time.Time       `gorm:"index;not null"`
	UserID     uint            `gorm:"index;not null"`
	Author     authentity.User `gorm:"foreignKey:UserID"`
}

// TableName returns the table name for GORM.
func (PostModel) TableName() string {
	return "posts"
}

// ToEntity converts the GORM model to a domain entity.
func (m *PostModel) ToEntity() *entity.Post {
	return &entity.Post{
		ID:             m.ID,
		Title:          m.Title,
		Content:        m.Content,
		DatePosted:     m.DatePosted,
		UserID:         m.UserID,
		AuthorUsername: m.Author.Username,
		AuthorImage:    m.Author.ImageFile,
	}
}

// postGorm はPostRepositoryインターフェースのGORM実装です。
type postGorm struct {
	db *gorm.DB
}

// postGormがPostRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.PostRepository = (*postGorm)(nil)

// NewPostGorm は指定されたgorm.DB接続でpostGormの新しいインスタンスを生成します。
func NewPostGorm(db *gorm.DB) *postGorm {
	return &postGorm{db: db}
}

// Create は投稿をデータベースに追加し、採番されたIDをエンティティに書き戻します。
func (r *postGorm) Create(ctx context.Context, p *entity.Post) error {
	model := &PostModel{
		Title:      p.Title,
		Content:    p.Content,
		DatePosted: p.DatePosted,
		UserID:     p.UserID,
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	p.ID = model.ID
	return nil
}

// FindByID はIDで投稿を取得します。著者情報もあわせてロードします。
func (r *postGorm) FindByID(ctx context.Context, id uint) (*entity.Post, error) {
	var model PostModel
	if err := r.db.WithContext(ctx).Preload("Author").Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrPostNotFound
		}
		return nil, err
	}
	return model.ToEntity(), nil
}

// FindPage は作成日時の降順で1ページ分の投稿と総件数を返します。
func (r *postGorm) FindPage(ctx context.Context, page, perPage int) ([]entity.Post, int64, error) {
	return r.findPage(ctx, page, perPage, nil)
}

// FindPageByUser は指定ユーザーの投稿に限定したFindPageです。
func (r *postGorm) FindPageByUser(ctx context.Context, userID uint, page, perPage int) ([]entity.Post, int64, error) {
	return r.findPage(ctx, page, perPage, &userID)
}

// findPage は共通のページング処理です。countとページ取得に同じ条件を適用します。
func (r *postGorm) findPage(ctx context.Context, page, perPage int, userID *uint) ([]entity.Post, int64, error) {
	where := func(q *gorm.DB) *gorm.DB {
		if userID != nil {
			return q.Where("user_id = ?", *userID)
		}
		return q
	}

	var total int64
	if err := where(r.db.WithContext(ctx).Model(&PostModel{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var models []PostModel
	if err := where(r.db.WithContext(ctx)).
		Preload("Author").
		Order("date_posted DESC").
		Limit(perPage).
		Offset((page - 1) * perPage).
		Find(&models).Error; err != nil {
		return nil, 0, err
	}

	posts := make([]entity.Post, 0, len(models))
	for _, m := range models {
		posts = append(posts, *m.ToEntity())
	}
	return posts, total, nil
}

// Update はタイトルと本文のみを上書きします。著者と作成日時は変更しません。
func (r *postGorm) Update(ctx context.Context, p *entity.Post) error {
	result := r.db.WithContext(ctx).
		Model(&PostModel{}).
		Where("id = ?", p.ID).
		Updates(map[string]interface{}{
			"title":   p.Title,
			"content": p.Content,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return usecase.ErrPostNotFound
	}
	return nil
}

// Delete はIDで投稿を削除します。
func (r *postGorm) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&PostModel{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return usecase.ErrPostNotFound
	}
	return nil
}
