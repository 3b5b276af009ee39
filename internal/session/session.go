package session

import "context"

// 認証済みリクエストのスコープ付きセッション。
// サインイン〜サインアウトの間だけ生きる。グローバルな管理者フラグは持たない。
// Tokenはコラボレータ呼び出しへそのまま引き継ぐbearerトークン。
type Session struct {
	UserID   int64
	Username string
	IsAdmin  bool
	Token    string
}

type ctxKey struct{}

// セッションをcontextに載せる（AuthJWTミドルウェアが呼ぶ）
func NewContext(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// contextからセッションを取り出す
func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(Session)
	return s, ok
}
