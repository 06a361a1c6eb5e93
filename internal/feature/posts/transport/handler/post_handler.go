// Package handler はpostsフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	authentity "blog_server/internal/feature/auth/domain/entity"
	"blog_server/internal/feature/posts/domain/entity"
	"blog_server/internal/feature/posts/transport/http/dto"
	"blog_server/internal/feature/posts/usecase"
	"blog_server/internal/platform/flash"
	"blog_server/internal/platform/web"
)

// PostUsecase は投稿操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type PostUsecase interface {
	Create(ctx context.Context, userID uint, title, content string) (*entity.Post, error)
	Get(ctx context.Context, id uint) (*entity.Post, error)
	ListRecent(ctx context.Context, page int) (*usecase.Page, error)
	ListByUser(ctx context.Context, userID uint, page int) (*usecase.Page, error)
	Update(ctx context.Context, id, userID uint, title, content string) (*entity.Post, error)
	Delete(ctx context.Context, id, userID uint) error
}

// UserFinder はユーザー名からユーザーを解決します。/user/:username の一覧で使用します。
type UserFinder interface {
	GetByUsername(ctx context.Context, username string) (*authentity.User, error)
}

// PostHandler は投稿のCRUDと一覧表示のHTTPリクエストを処理します。
type PostHandler struct {
	posts PostUsecase
	users UserFinder
}

// NewPostHandler はPostHandlerの新しいインスタンスを生成します。
func NewPostHandler(posts PostUsecase, users UserFinder) *PostHandler {
	return &PostHandler{posts: posts, users: users}
}

// Home は全投稿を新しい順でページ表示します。クエリパラメータpage（デフォルト1）。
func (h *PostHandler) Home(c *gin.Context) {
	page, err := h.posts.ListRecent(c.Request.Context(), pageParam(c))
	if err != nil {
		slog.Error("failed to list posts", "error", err)
		web.ServerError(c)
		return
	}
	web.Render(c, http.StatusOK, "home.html", gin.H{
		"Page": page,
	})
}

// About は静的な説明ページを表示します。
func (h *PostHandler) About(c *gin.Context) {
	web.Render(c, http.StatusOK, "about.html", gin.H{"Title": "About"})
}

// NewForm は投稿作成フォームを表示します。
func (h *PostHandler) NewForm(c *gin.Context) {
	web.Render(c, http.StatusOK, "create_post.html", gin.H{
		"Title":  "New Post",
		"Legend": "Create Post",
		"Form":   dto.PostForm{},
	})
}

// Create は投稿作成フォームの送信を処理します。
// 現在のユーザーを著者、現在時刻を作成日時として投稿を永続化します。
func (h *PostHandler) Create(c *gin.Context) {
	user, ok := web.User(c)
	if !ok {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	var form dto.PostForm
	if err := c.ShouldBind(&form); err != nil {
		slog.Warn("post validation failed", "error", err, "user_id", user.ID)
		web.Render(c, http.StatusOK, "create_post.html", gin.H{
			"Title":     "New Post",
			"Legend":    "Create Post",
			"Form":      form,
			"FormError": "Please check the form fields and try again.",
		})
		return
	}

	if _, err := h.posts.Create(c.Request.Context(), user.ID, form.Title, form.Content); err != nil {
		slog.Error("failed to create post", "error", err, "user_id", user.ID)
		web.ServerError(c)
		return
	}

	flash.Add(c, flash.CategorySuccess, "Your post has been created!")
	c.Redirect(http.StatusSeeOther, "/home")
}

// Show は単一の投稿を表示します。存在しない場合は404です。
func (h *PostHandler) Show(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	post, err := h.posts.Get(c.Request.Context(), id)
	if err != nil {
		h.renderPostError(c, err)
		return
	}
	web.Render(c, http.StatusOK, "post.html", gin.H{
		"Title": post.Title,
		"Post":  post,
	})
}

// EditForm は投稿の編集フォームを表示します。404・403の判定は表示前に行います。
func (h *PostHandler) EditForm(c *gin.Context) {
	user, ok := web.User(c)
	if !ok {
		c.Redirect(http.StatusFound, "/login")
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	post, err := h.posts.Get(c.Request.Context(), id)
	if err != nil {
		h.renderPostError(c, err)
		return
	}
	if post.UserID != user.ID {
		web.Forbidden(c)
		return
	}
	web.Render(c, http.StatusOK, "create_post.html", gin.H{
		"Title":  "Update Post",
		"Legend": "Update Post",
		"Form":   dto.PostForm{Title: post.Title, Content: post.Content},
	})
}

// Update は投稿の編集フォームの送信を処理します。
// 著者以外の場合は403を返し、投稿は変更されません。
func (h *PostHandler) Update(c *gin.Context) {
	user, ok := web.User(c)
	if !ok {
		c.Redirect(http.StatusFound, "/login")
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	var form dto.PostForm
	if err := c.ShouldBind(&form); err != nil {
		slog.Warn("post validation failed", "error", err, "user_id", user.ID, "post_id", id)
		web.Render(c, http.StatusOK, "create_post.html", gin.H{
			"Title":     "Update Post",
			"Legend":    "Update Post",
			"Form":      form,
			"FormError": "Please check the form fields and try again.",
		})
		return
	}

	post, err := h.posts.Update(c.Request.Context(), id, user.ID, form.Title, form.Content)
	if err != nil {
		h.renderPostError(c, err)
		return
	}

	flash.Add(c, flash.CategorySuccess, "Your post has been updated!")
	c.Redirect(http.StatusSeeOther, "/post/"+strconv.FormatUint(uint64(post.ID), 10))
}

// Delete は投稿を削除します。状態を変更するPOSTリクエストのみ受け付けます。
func (h *PostHandler) Delete(c *gin.Context) {
	user, ok := web.User(c)
	if !ok {
		c.Redirect(http.StatusFound, "/login")
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := h.posts.Delete(c.Request.Context(), id, user.ID); err != nil {
		h.renderPostError(c, err)
		return
	}

	flash.Add(c, flash.CategorySuccess, "Your post has been deleted!")
	c.Redirect(http.StatusSeeOther, "/home")
}

// UserPosts は指定ユーザーの投稿を新しい順でページ表示します。
// ユーザーが存在しない場合は404です。
func (h *PostHandler) UserPosts(c *gin.Context) {
	username := c.Param("username")
	user, err := h.users.GetByUsername(c.Request.Context(), username)
	if err != nil {
		web.NotFound(c)
		return
	}

	page, err := h.posts.ListByUser(c.Request.Context(), user.ID, pageParam(c))
	if err != nil {
		slog.Error("failed to list user posts", "error", err, "username", username)
		web.ServerError(c)
		return
	}
	web.Render(c, http.StatusOK, "user_posts.html", gin.H{
		"Title":       user.Username,
		"ProfileUser": user,
		"Page":        page,
	})
}

// renderPostError はusecaseのエラーをHTTPエラーページに変換します。
func (h *PostHandler) renderPostError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrPostNotFound):
		web.NotFound(c)
	case errors.Is(err, usecase.ErrNotAuthor):
		web.Forbidden(c)
	default:
		slog.Error("post operation failed", "error", err)
		web.ServerError(c)
	}
}

// idParam はURLの:idパラメータを解析します。数値でない場合は404を描画します。
func idParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		web.NotFound(c)
		return 0, false
	}
	return uint(id), true
}

// pageParam はクエリパラメータpageを解析します。欠落・不正な値は1になります。
func pageParam(c *gin.Context) int {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
