// Package dto はpostsフィーチャーのHTTPトランスポート層のデータ転送オブジェクトを定義します。
package dto

// PostForm は投稿の作成・更新フォームの入力を表します。
type PostForm struct {
	Title   string `form:"title" binding:"required,max=100"`
	Content string `form:"content" binding:"required"`
}
