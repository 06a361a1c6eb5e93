package router

import (
	authhandler "blog_server/internal/feature/auth/transport/handler"
	posthandler "blog_server/internal/feature/posts/transport/handler"
	"blog_server/internal/platform/web"

	"github.com/gin-gonic/gin"
)

func NewRouter(authHandler *authhandler.AuthHandler, postHandler *posthandler.PostHandler,
	resolver *web.UserResolver) *gin.Engine {
	r := gin.Default()

	// テンプレートと静的ファイル
	r.LoadHTMLGlob("web/templates/**/*.html")
	r.Static("/static", "web/static")

	// 全リクエストでセッションクッキーから現在のユーザーを解決する
	r.Use(resolver.CurrentUser())

	// 認証不要
	// 導通確認用
	r.GET("/healthz", web.Health)
	// 投稿一覧（ホーム）
	r.GET("/", postHandler.Home)
	r.GET("/home", postHandler.Home)
	r.GET("/about", postHandler.About)
	// ユーザー別の投稿一覧
	r.GET("/user/:username", postHandler.UserPosts)
	// 新規ユーザー登録
	r.GET("/register", authHandler.RegisterForm)
	r.POST("/register", authHandler.Register)
	// ログイン（セッションクッキー発行）
	r.GET("/login", authHandler.LoginForm)
	r.POST("/login", authHandler.Login)
	// ログアウトは認証不要で無条件にセッションを破棄する
	r.GET("/logout", authHandler.Logout)

	// 認証必須のルート
	// r.Group("/") でルートグループを作成
	auth := r.Group("/")
	// web.LoginRequired() ミドルウェアを適用
	// → 未ログインは /login?next=... へリダイレクトされる
	auth.Use(web.LoginRequired())
	{
		auth.GET("/account", authHandler.AccountForm)
		auth.POST("/account", authHandler.AccountUpdate)
		auth.GET("/post/new", postHandler.NewForm)
		auth.POST("/post/new", postHandler.Create)
		auth.GET("/post/:id", postHandler.Show)
		auth.GET("/post/:id/update", postHandler.EditForm)
		auth.POST("/post/:id/update", postHandler.Update)
		auth.POST("/post/:id/delete", postHandler.Delete)
	}

	// 未定義ルートは404ページを表示
	r.NoRoute(web.NotFound)

	return r
}
