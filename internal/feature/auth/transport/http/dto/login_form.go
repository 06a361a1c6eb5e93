package dto

// LoginForm は/loginエンドポイントのフォーム入力を表します。
// rememberはチェックボックスのため任意です。
type LoginForm struct {
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required"`
	Remember bool   `form:"remember"`
}
