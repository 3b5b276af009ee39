package handler

import (
	"net/http"

	"petshop/internal/middleware"
	"petshop/internal/session"
	"petshop/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

// usecaseのDomainErrorをHTTPへ変換する。それ以外は500。
func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if de, ok := usecase.AsDomainError(err); ok {
		return c.JSON(de.Status, ErrorResponse{Error: de.Message, Code: string(de.Code)})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

//middleware.AuthJWT が入れたセッションを取り出す

func getSessionFromContext(c echo.Context) (session.Session, bool) {
	v := c.Get(middleware.CtxSessionKey)
	if v == nil {
		return session.Session{}, false
	}

	sess, ok := v.(session.Session)
	if !ok || sess.UserID <= 0 {
		return session.Session{}, false
	}

	return sess, true
}
