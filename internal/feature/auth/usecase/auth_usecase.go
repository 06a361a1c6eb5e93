// Package usecase はauthフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"blog_server/internal/feature/auth/domain/entity"

	"golang.org/x/crypto/bcrypt"
)

const (
	// minPasswordLength はパスワードの最低文字数を定義します。
	minPasswordLength = 6

	// sessionIDBytes はセッションIDの乱数バイト数です（hex化で64文字）。
	sessionIDBytes = 32

	// sessionTTL は通常ログインのセッション有効期間です。
	sessionTTL = 12 * time.Hour

	// rememberTTL は「ログイン状態を保持する」を選択した場合のセッション有効期間です。
	rememberTTL = 30 * 24 * time.Hour
)

// UserRepository はユーザーエンティティの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type UserRepository interface {
	// Create は新しいユーザーをストレージに永続化します。
	// ユーザー名またはメールアドレスが既に存在する場合、ErrDuplicateUserを返します。
	Create(ctx context.Context, user *entity.User) error

	// FindByEmail は指定されたメールアドレスに一致するユーザーを取得します。
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByUsername は指定されたユーザー名に一致するユーザーを取得します。
	FindByUsername(ctx context.Context, username string) (*entity.User, error)

	// FindByID は指定されたIDに一致するユーザーを取得します。
	FindByID(ctx context.Context, id uint) (*entity.User, error)

	// Update は既存ユーザーの変更を永続化します。
	Update(ctx context.Context, user *entity.User) error
}

// AuthUsecase は登録・ログイン・セッション管理・プロフィール更新のビジネスロジックを提供します。
type AuthUsecase struct {
	users    UserRepository
	sessions SessionRepository
}

// NewAuthUsecase はAuthUsecaseの新しいインスタンスを生成します。
func NewAuthUsecase(users UserRepository, sessions SessionRepository) *AuthUsecase {
	return &AuthUsecase{
		users:    users,
		sessions: sessions,
	}
}

// validatePassword はパスワードがセキュリティ要件を満たしているかチェックします。
func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters long", minPasswordLength)
	}
	return nil
}

// newSessionID は暗号学的乱数から64文字のhexセッションIDを生成します。
func newSessionID() (string, error) {
	b := make([]byte, sessionIDBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session id: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Register はハッシュ化されたパスワードとデフォルトのプロフィール画像で新規ユーザーを登録します。
// ユーザー名・メールアドレスの重複は事前チェックし、フィールド単位のエラーを返します。
func (u *AuthUsecase) Register(ctx context.Context, username, email, password string) (*entity.User, error) {
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	// 重複チェック（バリデーションレベル）。同時登録のレースはadapters側の
	// ユニーク制約が最終的に防ぐ。
	if _, err := u.users.FindByUsername(ctx, username); err == nil {
		return nil, ErrUsernameAlreadyExists
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}
	if _, err := u.users.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailAlreadyExists
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user := &entity.User{
		Username:  username,
		Email:     email,
		Password:  string(hashed),
		ImageFile: entity.DefaultImageFile,
	}
	if err := u.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login はユーザーを認証し、成功時に新しいセッションを作成して返します。
// rememberがtrueの場合、セッションの有効期間を延長します。
// タイミング攻撃を防止するため、ユーザーが存在しない場合でもbcrypt比較を実行します。
func (u *AuthUsecase) Login(ctx context.Context, email, password string, remember bool, userAgent, ip string) (*entity.User, *entity.Session, error) {
	// メールアドレスでユーザーを検索
	user, err := u.users.FindByEmail(ctx, email)

	// ユーザーが存在しない場合のタイミング攻撃緩和用ダミーハッシュ
	// bcrypt.CompareHashAndPasswordが常に呼ばれることを保証する
	passwordHash := "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy" // ダミーハッシュ
	if err == nil {
		passwordHash = user.Password
	}

	// タイミング攻撃防止のため、常にパスワードを検証
	compareErr := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password))

	// ユーザー未検出またはパスワード不一致の場合、汎用エラーを返す
	if err != nil || compareErr != nil {
		return nil, nil, ErrInvalidCredentials
	}

	id, err := newSessionID()
	if err != nil {
		return nil, nil, err
	}
	ttl := sessionTTL
	if remember {
		ttl = rememberTTL
	}
	now := time.Now()
	session := &entity.Session{
		ID:        id,
		UserID:    user.ID,
		UserAgent: userAgent,
		IPAddress: ip,
		Remember:  remember,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := u.sessions.Create(ctx, session); err != nil {
		return nil, nil, fmt.Errorf("failed to create session: %w", err)
	}

	return user, session, nil
}

// Authenticate はセッションIDを検証し、対応するユーザーとセッションを返します。
// 失効・取り消し済みセッションはそれぞれ専用エラーで拒否します。
func (u *AuthUsecase) Authenticate(ctx context.Context, sessionID string) (*entity.User, *entity.Session, error) {
	session, err := u.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if session.IsRevoked() {
		return nil, nil, ErrSessionRevoked
	}
	if session.IsExpired() {
		return nil, nil, ErrSessionExpired
	}
	user, err := u.users.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, nil, err
	}
	return user, session, nil
}

// Logout は指定されたセッションを取り消します。
func (u *AuthUsecase) Logout(ctx context.Context, sessionID string) error {
	return u.sessions.Revoke(ctx, sessionID)
}

// GetByUsername はユーザー名でユーザーを取得します。
func (u *AuthUsecase) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	return u.users.FindByUsername(ctx, username)
}

// UpdateProfile はユーザー名・メールアドレス・プロフィール画像を更新します。
// imageFileが空文字の場合、画像は変更しません。
func (u *AuthUsecase) UpdateProfile(ctx context.Context, userID uint, username, email, imageFile string) (*entity.User, error) {
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	// 自分以外のユーザーとの重複のみ拒否する
	if username != user.Username {
		if other, err := u.users.FindByUsername(ctx, username); err == nil && other.ID != userID {
			return nil, ErrUsernameAlreadyExists
		} else if err != nil && !errors.Is(err, ErrUserNotFound) {
			return nil, err
		}
	}
	if email != user.Email {
		if other, err := u.users.FindByEmail(ctx, email); err == nil && other.ID != userID {
			return nil, ErrEmailAlreadyExists
		} else if err != nil && !errors.Is(err, ErrUserNotFound) {
			return nil, err
		}
	}

	user.Username = username
	user.Email = email
	if imageFile != "" {
		user.ImageFile = imageFile
	}
	if err := u.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// CleanupExpiredSessions は期限切れセッションを削除し、削除件数を返します。
// サーバ起動時に一度呼び出されます。
func (u *AuthUsecase) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	return u.sessions.DeleteExpired(ctx)
}
