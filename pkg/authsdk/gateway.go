package authsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// Response is the normalized outcome of a Gateway call. Successful calls
// carry Data; failures carry Message and Code.
type Response struct {
	Status  int
	Data    json.RawMessage
	Message string
	Code    string
}

// OK reports a 2xx outcome.
func (r Response) OK() bool { return r.Status >= 200 && r.Status < 300 }

// Decode unmarshals Data into v.
func (r Response) Decode(v any) error {
	if !r.OK() {
		return &APIError{StatusCode: r.Status, Message: r.Message, Code: r.Code}
	}
	if len(r.Data) == 0 {
		return errors.New("authsdk: empty response body")
	}
	return json.Unmarshal(r.Data, v)
}

// Gateway sends authenticated calls with the stored credential and turns
// token rejections into a forced logout.
type Gateway struct {
	client *SDKClient
	logout Logouter
	logger *slog.Logger
}

func NewGateway(client *SDKClient, logout Logouter) *Gateway {
	return &Gateway{client: client, logout: logout, logger: client.logger}
}

func (g *Gateway) Get(ctx context.Context, path string) Response {
	return g.Do(ctx, http.MethodGet, path, nil)
}

func (g *Gateway) Post(ctx context.Context, path string, body any) Response {
	return g.Do(ctx, http.MethodPost, path, body)
}

func (g *Gateway) Put(ctx context.Context, path string, body any) Response {
	return g.Do(ctx, http.MethodPut, path, body)
}

func (g *Gateway) Delete(ctx context.Context, path string) Response {
	return g.Do(ctx, http.MethodDelete, path, nil)
}

// Do performs one call. The Authorization header is attached only when a
// credential is stored. A 401 with TOKEN_EXPIRED or TOKEN_INVALID forces a
// logout and returns a "session expired" response in place of the server's
// body. Transport failures return NETWORK_ERROR without logging out.
func (g *Gateway) Do(ctx context.Context, method, path string, body any) Response {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return Response{Message: fmt.Sprintf("encode request: %v", err), Code: CodeInvalidRequest}
		}
		reader = bytes.NewReader(raw)
	}

	headers := map[string]string{"Accept": "application/json"}
	if body != nil {
		headers["Content-Type"] = "application/json"
	}

	token, ok, err := g.client.Store.Token()
	if err != nil {
		g.logger.Warn("gateway: reading stored credential", slog.Any("err", err))
	}
	if ok {
		headers["Authorization"] = "Bearer " + token
	}

	resp, err := g.client.doRequest(ctx, method, path, reader, headers)
	if err != nil {
		g.logger.Warn("gateway: request failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.Any("err", err),
		)
		return Response{Message: MessageNetworkError, Code: CodeNetworkError}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{Status: resp.StatusCode, Message: MessageNetworkError, Code: CodeNetworkError}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return Response{Status: resp.StatusCode, Data: raw}
	}

	apiErr := parseErrorResponse(resp.StatusCode, raw)
	if apiErr.IsTokenRejection() {
		g.logger.Info("gateway: credential rejected",
			slog.String("code", apiErr.Code),
			slog.String("path", path),
		)
		g.logout.Logout(strings.ToLower(apiErr.Code))
		return Response{Status: resp.StatusCode, Message: MessageSessionExpired, Code: apiErr.Code}
	}

	return Response{Status: resp.StatusCode, Message: apiErr.Message, Code: apiErr.Code}
}
