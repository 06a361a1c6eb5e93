// Package handler はauthフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"blog_server/internal/feature/auth/domain/entity"
	"blog_server/internal/feature/auth/transport/http/dto"
	"blog_server/internal/feature/auth/usecase"
	"blog_server/internal/platform/flash"
	"blog_server/internal/platform/token"
	"blog_server/internal/platform/web"
)

// AuthUsecase は認証・プロフィール操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type AuthUsecase interface {
	// Register は新規ユーザーを登録します。
	Register(ctx context.Context, username, email, password string) (*entity.User, error)
	// Login はユーザーを認証し、成功時に新しいセッションを返します。
	Login(ctx context.Context, email, password string, remember bool, userAgent, ip string) (*entity.User, *entity.Session, error)
	// Logout は指定されたセッションを取り消します。
	Logout(ctx context.Context, sessionID string) error
	// UpdateProfile はユーザー名・メールアドレス・プロフィール画像を更新します。
	UpdateProfile(ctx context.Context, userID uint, username, email, imageFile string) (*entity.User, error)
}

// PictureStore はアップロードされた画像をサムネイル化して保存し、ファイル名を返します。
type PictureStore interface {
	Save(r io.Reader, originalName string) (string, error)
}

// AuthHandler は登録・ログイン・ログアウト・アカウント更新のHTTPリクエストを処理します。
type AuthHandler struct {
	auth     AuthUsecase
	codec    *token.Codec
	pictures PictureStore
}

// NewAuthHandler はAuthHandlerの新しいインスタンスを生成します。
// 依存性注入用のコンストラクタです。
func NewAuthHandler(auth AuthUsecase, codec *token.Codec, pictures PictureStore) *AuthHandler {
	return &AuthHandler{auth: auth, codec: codec, pictures: pictures}
}

// RegisterForm は登録フォームを表示します。ログイン済みならホームへリダイレクトします。
func (h *AuthHandler) RegisterForm(c *gin.Context) {
	if _, ok := web.User(c); ok {
		c.Redirect(http.StatusFound, "/home")
		return
	}
	web.Render(c, http.StatusOK, "register.html", gin.H{
		"Title": "Register",
		"Form":  dto.RegisterForm{},
	})
}

// Register は登録フォームの送信を処理します。
// - バリデーションエラーとユーザー名・メール重複時はフォームを再表示
// - 成功時はユーザーを作成し、ログインページへリダイレクト
func (h *AuthHandler) Register(c *gin.Context) {
	if _, ok := web.User(c); ok {
		c.Redirect(http.StatusFound, "/home")
		return
	}

	var form dto.RegisterForm
	if err := c.ShouldBind(&form); err != nil {
		slog.Warn("register validation failed", "error", err, "remote_addr", c.ClientIP())
		h.renderRegister(c, form, "Please check the form fields and try again.")
		return
	}

	_, err := h.auth.Register(c.Request.Context(), form.Username, form.Email, form.Password)
	switch {
	case errors.Is(err, usecase.ErrUsernameAlreadyExists):
		h.renderRegister(c, form, "That username is taken. Please choose a different one.")
		return
	case errors.Is(err, usecase.ErrEmailAlreadyExists):
		h.renderRegister(c, form, "That email is taken. Please choose a different one.")
		return
	case err != nil:
		slog.Error("register failed", "error", err, "email", form.Email)
		web.ServerError(c)
		return
	}

	slog.Info("user registered", "username", form.Username, "remote_addr", c.ClientIP())
	flash.Add(c, flash.CategorySuccess, "Your account has been created! You are now able to log in.")
	c.Redirect(http.StatusSeeOther, "/login")
}

// renderRegister はエラーメッセージ付きで登録フォームを再表示します。
func (h *AuthHandler) renderRegister(c *gin.Context, form dto.RegisterForm, formError string) {
	web.Render(c, http.StatusOK, "register.html", gin.H{
		"Title":     "Register",
		"Form":      form,
		"FormError": formError,
	})
}

// LoginForm はログインフォームを表示します。ログイン済みならホームへリダイレクトします。
func (h *AuthHandler) LoginForm(c *gin.Context) {
	if _, ok := web.User(c); ok {
		flash.Add(c, flash.CategoryNotice, "Already logged in.")
		c.Redirect(http.StatusFound, "/home")
		return
	}
	web.Render(c, http.StatusOK, "login.html", gin.H{
		"Title": "Login",
		"Form":  dto.LoginForm{},
		"Next":  c.Query("next"),
	})
}

// Login はログインフォームの送信を処理します。
// - 認証失敗時はセッションを作らず、通知付きでフォームを再表示
// - 成功時はセッションを作成し、署名付きクッキーを設定してリダイレクト
//   （クエリパラメータnextがローカルパスの場合はそこへ、なければホームへ）
func (h *AuthHandler) Login(c *gin.Context) {
	if _, ok := web.User(c); ok {
		c.Redirect(http.StatusFound, "/home")
		return
	}

	var form dto.LoginForm
	if err := c.ShouldBind(&form); err != nil {
		slog.Warn("login validation failed", "error", err, "remote_addr", c.ClientIP())
		h.renderLogin(c, form, "Please check the form fields and try again.")
		return
	}

	_, session, err := h.auth.Login(c.Request.Context(), form.Email, form.Password, form.Remember, c.Request.UserAgent(), c.ClientIP())
	if err != nil {
		// ユーザー列挙攻撃を防止するため、実際のエラーを公開しない
		slog.Warn("login failed", "error", err, "email", form.Email, "remote_addr", c.ClientIP())
		flash.Add(c, flash.CategoryNotice, "Login unsuccessful. Please check email and password.")
		h.renderLogin(c, form, "")
		return
	}

	signed, err := h.codec.Mint(session.ID, session.ExpiresAt)
	if err != nil {
		slog.Error("failed to sign session token", "error", err)
		web.ServerError(c)
		return
	}

	// rememberなしはブラウザセッション限り（MaxAge 0）のクッキーにする
	maxAge := 0
	if session.Remember {
		maxAge = int(time.Until(session.ExpiresAt).Seconds())
	}
	c.SetCookie(web.SessionCookie, signed, maxAge, "/", "", false, true)

	slog.Info("user login successful", "email", form.Email, "remote_addr", c.ClientIP())
	flash.Add(c, flash.CategorySuccess, "Successfully logged in!")
	c.Redirect(http.StatusSeeOther, web.SafeNext(c.Query("next")))
}

// renderLogin はログインフォームを再表示します。
func (h *AuthHandler) renderLogin(c *gin.Context, form dto.LoginForm, formError string) {
	web.Render(c, http.StatusOK, "login.html", gin.H{
		"Title":     "Login",
		"Form":      form,
		"FormError": formError,
		"Next":      c.Query("next"),
	})
}

// Logout はセッションを無条件に破棄してホームへリダイレクトします。認証は不要です。
func (h *AuthHandler) Logout(c *gin.Context) {
	if session, ok := web.Session(c); ok {
		if err := h.auth.Logout(c.Request.Context(), session.ID); err != nil && !errors.Is(err, usecase.ErrSessionNotFound) {
			slog.Warn("failed to revoke session", "error", err)
		}
	}
	c.SetCookie(web.SessionCookie, "", -1, "/", "", false, true)
	flash.Add(c, flash.CategoryNotice, "Logged out.")
	c.Redirect(http.StatusFound, "/home")
}

// AccountForm は現在のユーザー情報を事前入力したアカウントフォームを表示します。
func (h *AuthHandler) AccountForm(c *gin.Context) {
	user, ok := web.User(c)
	if !ok {
		c.Redirect(http.StatusFound, "/login")
		return
	}
	web.Render(c, http.StatusOK, "account.html", gin.H{
		"Title":     "Account",
		"Form":      dto.AccountForm{Username: user.Username, Email: user.Email},
		"ImageFile": user.ImageFile,
	})
}

// AccountUpdate はアカウント更新フォームの送信を処理します。
// 画像が添付されていればPicture Storeで保存し、ファイル名を上書きします。
// 画像のデコード失敗は回復せず、汎用サーバエラーとして表面化します。
func (h *AuthHandler) AccountUpdate(c *gin.Context) {
	user, ok := web.User(c)
	if !ok {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	var form dto.AccountForm
	if err := c.ShouldBind(&form); err != nil {
		slog.Warn("account validation failed", "error", err, "user_id", user.ID)
		h.renderAccount(c, user, form, "Please check the form fields and try again.")
		return
	}

	imageFile := ""
	if fh, err := c.FormFile("picture"); err == nil && fh != nil {
		f, err := fh.Open()
		if err != nil {
			slog.Error("failed to open uploaded picture", "error", err, "user_id", user.ID)
			web.ServerError(c)
			return
		}
		name, saveErr := h.pictures.Save(f, fh.Filename)
		_ = f.Close()
		if saveErr != nil {
			slog.Error("failed to store picture", "error", saveErr, "user_id", user.ID)
			web.ServerError(c)
			return
		}
		imageFile = name
	}

	_, err := h.auth.UpdateProfile(c.Request.Context(), user.ID, form.Username, form.Email, imageFile)
	switch {
	case errors.Is(err, usecase.ErrUsernameAlreadyExists):
		h.renderAccount(c, user, form, "That username is taken. Please choose a different one.")
		return
	case errors.Is(err, usecase.ErrEmailAlreadyExists):
		h.renderAccount(c, user, form, "That email is taken. Please choose a different one.")
		return
	case err != nil:
		slog.Error("account update failed", "error", err, "user_id", user.ID)
		web.ServerError(c)
		return
	}

	flash.Add(c, flash.CategorySuccess, "Your account has been updated!")
	c.Redirect(http.StatusSeeOther, "/account")
}

// renderAccount はアカウントフォームを再表示します。
func (h *AuthHandler) renderAccount(c *gin.Context, user *entity.User, form dto.AccountForm, formError string) {
	web.Render(c, http.StatusOK, "account.html", gin.H{
		"Title":     "Account",
		"Form":      form,
		"FormError": formError,
		"ImageFile": user.ImageFile,
	})
}
