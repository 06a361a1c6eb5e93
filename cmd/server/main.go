package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	redisv9 "github.com/redis/go-redis/v9"

	"blog_server/internal/app/router"
	authadapters "blog_server/internal/feature/auth/adapters"
	authhandler "blog_server/internal/feature/auth/transport/handler"
	authusecase "blog_server/internal/feature/auth/usecase"
	postadapters "blog_server/internal/feature/posts/adapters"
	posthandler "blog_server/internal/feature/posts/transport/handler"
	postusecase "blog_server/internal/feature/posts/usecase"
	"blog_server/internal/platform/cache"
	"blog_server/internal/platform/db"
	"blog_server/internal/platform/picture"
	platformredis "blog_server/internal/platform/redis"
	"blog_server/internal/platform/token"
	"blog_server/internal/platform/web"
)

func main() {
	// .envを読み込む
	if err := godotenv.Load(".env"); err != nil {
		log.Println("[INFO] .env not found; using system environment variables")
	}

	// db
	gormDB := db.OpenDB()

	// マイグレーション
	if err := db.Migrate(gormDB); err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}

	// Redis（任意）
	var rdb *redisv9.Client
	if tmp, err := platformredis.NewRedisClient(); err != nil {
		log.Println("[WARN] Redis unavailable. Running without cache.")
		rdb = nil
	} else {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Println("[ERROR] Failed to close Redis client:", err)
			}
		}()
	}

	// SESSION_SECRETチェック（開発中の注意喚起）
	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		log.Println("[WARN] SESSION_SECRET is not set. Set a strong secret in production.")
		secret = "dev-secret-do-not-use-in-production"
	}
	codec := token.NewCodec(secret)

	// プロフィール画像の保存先
	pictureDir := os.Getenv("PICTURE_DIR")
	if pictureDir == "" {
		pictureDir = "web/static/profile_pics"
	}
	pictures, err := picture.NewStore(pictureDir)
	if err != nil {
		log.Fatalf("failed to init picture store: %v", err)
	}

	// Repository
	userRepo := authadapters.NewUserGorm(gormDB)
	sessionRepo := authadapters.NewSessionGorm(gormDB)
	postRepo := postadapters.NewPostGorm(gormDB)

	// 最新投稿一覧をRedisキャッシュでラップ
	cachedPostRepo := cache.NewCachingPostRepository(rdb, time.Minute, postRepo, "posts")

	// Usecase
	authUC := authusecase.NewAuthUsecase(userRepo, sessionRepo)
	postUC := postusecase.NewPostUsecase(cachedPostRepo)

	// 期限切れセッションの掃除（起動時に一度）
	if n, err := authUC.CleanupExpiredSessions(context.Background()); err != nil {
		slog.Warn("failed to clean up expired sessions", "error", err)
	} else if n > 0 {
		slog.Info("expired sessions removed", "count", n)
	}

	// Handler
	authH := authhandler.NewAuthHandler(authUC, codec, pictures)
	postH := posthandler.NewPostHandler(postUC, authUC)

	// ルータ生成
	resolver := web.NewUserResolver(codec, authUC)
	r := router.NewRouter(authH, postH, resolver)

	addr := os.Getenv("ADDR")
	if addr == "" {
		addr = ":8080"
	}
	if err := r.Run(addr); err != nil {
		log.Fatal(err)
	}
}
