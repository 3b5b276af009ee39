package usecase

import (
	"context"
	"net/http"
	"strings"
	"unicode/utf8"

	"petshop/internal/domain/model"
	"petshop/internal/gateway"
	"petshop/internal/session"

	"github.com/rs/zerolog"
)

type ProfileUsecase struct {
	users gateway.UserGateway
	log   zerolog.Logger
}

func NewProfileUsecase(users gateway.UserGateway, log zerolog.Logger) *ProfileUsecase {
	return &ProfileUsecase{users: users, log: log}
}

// 自分のプロフィール取得
func (u *ProfileUsecase) Get(ctx context.Context, sess session.Session) (model.User, error) {
	if sess.UserID <= 0 {
		return model.User{}, NewDomainError(CodeUnauthenticated, http.StatusUnauthorized, "unauthorized")
	}
	me, err := u.users.Profile(ctx)
	if err != nil {
		return model.User{}, fromGatewayError(err)
	}
	return me, nil
}

// ユーザー名の変更。空・50文字超は弾く。
func (u *ProfileUsecase) UpdateUsername(ctx context.Context, sess session.Session, username string) (model.User, error) {
	if sess.UserID <= 0 {
		return model.User{}, NewDomainError(CodeUnauthenticated, http.StatusUnauthorized, "unauthorized")
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return model.User{}, NewDomainError(CodeInvalidInput, http.StatusBadRequest, "username required")
	}
	if utf8.RuneCountInString(username) > 50 {
		return model.User{}, NewDomainError(CodeInvalidInput, http.StatusBadRequest, "username too long")
	}
	updated, err := u.users.UpdateUsername(ctx, username)
	if err != nil {
		return model.User{}, fromGatewayError(err)
	}
	return updated, nil
}
