package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"petshop/internal/session"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	//コラボレータが401を返した（トークン無し・期限切れ）
	ErrUnauthenticated = errors.New("gateway: unauthenticated")
	//コラボレータが404を返した
	ErrNotFound = errors.New("gateway: not found")
	//コラボレータが409を返した（在庫の取り合いなど、意味は呼び出し側が決める）
	ErrConflict = errors.New("gateway: conflict")
)

// 2xx/401/404/409以外のHTTP応答。NETWORK_FAILUREの原因として付く。
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("gateway: unexpected status %d: %s", e.StatusCode, e.Body)
}

// コラボレータ3種（カタログ/注文ストア/ユーザーストア）共通のHTTPクライアント。
// bearerトークンはリクエストのセッションから毎回取り直す。
type Client struct {
	http    *http.Client
	baseURL string
	log     zerolog.Logger
}

func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log,
	}
}

// doは1往復。outがnilなら本文は捨てる。
// ctxのキャンセルはそのままリクエストのキャンセルになる。
func (c *Client) do(ctx context.Context, method string, path string, body any, out any, headers map[string]string) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("gateway: encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("gateway: build %s %s: %w", method, path, err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-Id", uuid.NewString())
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	//セッションのbearerをそのまま引き継ぐ
	if s, ok := session.FromContext(ctx); ok && s.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}

	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("method", method).Str("path", path).Msg("collaborator request failed")
		return fmt.Errorf("gateway: %s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", res.StatusCode).
		Dur("took", time.Since(start)).
		Msg("collaborator request")

	switch {
	case res.StatusCode >= 200 && res.StatusCode < 300:
		//OK
	case res.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%s %s: %w", method, path, ErrUnauthenticated)
	case res.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s %s: %w", method, path, ErrNotFound)
	case res.StatusCode == http.StatusConflict:
		return fmt.Errorf("%s %s: %w", method, path, ErrConflict)
	default:
		raw, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return &StatusError{StatusCode: res.StatusCode, Body: string(raw)}
	}

	if out == nil || res.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("gateway: decode %s %s: %w", method, path, err)
	}
	return nil
}
