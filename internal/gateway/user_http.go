package gateway

import (
	"context"
	"fmt"
	"net/http"

	"petshop/internal/domain/model"
)

type UserHTTPGateway struct {
	c *Client
}

func NewUserHTTPGateway(c *Client) *UserHTTPGateway {
	return &UserHTTPGateway{c: c}
}

func (g *UserHTTPGateway) Profile(ctx context.Context) (model.User, error) {
	var u model.User
	if err := g.c.do(ctx, http.MethodGet, "/profile", nil, &u, nil); err != nil {
		return model.User{}, err
	}
	return u, nil
}

type updateProfileRequest struct {
	Username string `json:"username"`
}

func (g *UserHTTPGateway) UpdateUsername(ctx context.Context, username string) (model.User, error) {
	var u model.User
	if err := g.c.do(ctx, http.MethodPut, "/profile", updateProfileRequest{Username: username}, &u, nil); err != nil {
		return model.User{}, err
	}
	return u, nil
}

func (g *UserHTTPGateway) ListAdmin(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := g.c.do(ctx, http.MethodGet, "/user/admin", nil, &users, nil); err != nil {
		return nil, err
	}
	return users, nil
}

type setRoleRequest struct {
	IsAdmin bool `json:"isAdmin"`
}

func (g *UserHTTPGateway) SetRole(ctx context.Context, userID int64, isAdmin bool) (model.User, error) {
	var u model.User
	path := fmt.Sprintf("/user/%d/role", userID)
	if err := g.c.do(ctx, http.MethodPut, path, setRoleRequest{IsAdmin: isAdmin}, &u, nil); err != nil {
		return model.User{}, err
	}
	return u, nil
}
