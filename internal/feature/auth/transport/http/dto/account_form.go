package dto

// AccountForm は/accountエンドポイントのフォーム入力を表します。
// プロフィール画像はmultipartフィールド"picture"として別途受け取ります。
type AccountForm struct {
	Username string `form:"username" binding:"required,min=2,max=20"`
	Email    string `form:"email" binding:"required,email"`
}
