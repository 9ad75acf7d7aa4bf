// Package client is the HTTP client for the fincas store service. It
// owns the session, translates transport and status failures into the
// error kinds the presentation layer acts on, and caches the category
// list, which changes rarely. Transaction lists are never cached.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"fincas/internal/cache"
	"fincas/internal/core"
	"fincas/internal/log"
)

const categoriesCacheKey = "categories"

// TransactionDraft is the payload for creating a transaction. All
// fields are required except Description and CategoryID.
type TransactionDraft struct {
	Type        core.TransactionType `json:"type"`
	Amount      core.Money           `json:"amount"`
	Description string               `json:"description,omitempty"`
	CategoryID  string               `json:"category_id,omitempty"`
	Date        core.Date            `json:"transaction_date"`
}

// TransactionPatch is a partial update. Nil fields are left untouched
// by the store.
type TransactionPatch struct {
	Type        *core.TransactionType `json:"type,omitempty"`
	Amount      *core.Money           `json:"amount,omitempty"`
	Description *string               `json:"description,omitempty"`
	CategoryID  *string               `json:"category_id,omitempty"`
	Date        *core.Date            `json:"transaction_date,omitempty"`
}

// Credentials are what login and register need.
type Credentials struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	session    *Session
	logger     *log.Logger
	categories *cache.TTL[[]core.Category]
}

// New builds a client for the store at baseURL. A nil session gets a
// fresh one; a nil logger gets the default configuration.
func New(baseURL string, session *Session, logger *log.Logger, categoryTTL time.Duration) *Client {
	if session == nil {
		session = NewSession()
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	if categoryTTL <= 0 {
		categoryTTL = 5 * time.Minute
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		session:    session,
		logger:     logger.WithComponent("client"),
		categories: cache.NewTTL[[]core.Category](categoryTTL),
	}
}

// Session exposes the client's session for inspection.
func (c *Client) Session() *Session { return c.session }

// Register creates an account and installs the returned session.
func (c *Client) Register(ctx context.Context, creds Credentials) (User, error) {
	var resp authResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", nil, creds, &resp); err != nil {
		return User{}, err
	}
	c.session.SetAuth(resp.Token, resp.User)
	return resp.User, nil
}

// Login authenticates and installs the returned session.
func (c *Client) Login(ctx context.Context, creds Credentials) (User, error) {
	var resp authResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, creds, &resp); err != nil {
		return User{}, err
	}
	c.session.SetAuth(resp.Token, resp.User)
	return resp.User, nil
}

// Me fetches the account behind the current token.
func (c *Client) Me(ctx context.Context) (User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, nil, &user); err != nil {
		return User{}, err
	}
	return user, nil
}

// Logout clears the session and every cached value.
func (c *Client) Logout() {
	c.session.Clear()
	c.categories.Clear()
}

// ListTransactions fetches the transactions matching the criteria.
// Sentinel axes are omitted from the request entirely. The result is
// never cached.
func (c *Client) ListTransactions(ctx context.Context, criteria core.FilterCriteria) ([]core.Transaction, error) {
	var txs []core.Transaction
	if err := c.do(ctx, http.MethodGet, "/transactions", criteria.Query(), nil, &txs); err != nil {
		return nil, err
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	return txs, nil
}

func (c *Client) CreateTransaction(ctx context.Context, draft TransactionDraft) (core.Transaction, error) {
	var tx core.Transaction
	if err := c.do(ctx, http.MethodPost, "/transactions", nil, draft, &tx); err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}

func (c *Client) UpdateTransaction(ctx context.Context, id string, patch TransactionPatch) (core.Transaction, error) {
	var tx core.Transaction
	if err := c.do(ctx, http.MethodPut, "/transactions/"+url.PathEscape(id), nil, patch, &tx); err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}

func (c *Client) DeleteTransaction(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/transactions/"+url.PathEscape(id), nil, nil, nil)
}

// ListCategories returns the category list, served from cache while
// the TTL holds.
func (c *Client) ListCategories(ctx context.Context) ([]core.Category, error) {
	if cached, ok := c.categories.Get(categoriesCacheKey); ok {
		return cached, nil
	}
	var cats []core.Category
	if err := c.do(ctx, http.MethodGet, "/categories", nil, nil, &cats); err != nil {
		return nil, err
	}
	c.categories.Set(categoriesCacheKey, cats)
	return cats, nil
}

// do runs one request against the store. Transport failures come back
// as KindNetwork; non-2xx statuses are mapped to the remaining kinds,
// with the store's message carried through when it sent one. A 401
// additionally clears the session and the caches.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return &Error{Kind: KindInternal, Message: "could not encode request", cause: err}
		}
		reqBody = bytes.NewReader(buf)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return &Error{Kind: KindInternal, Message: "could not build request", cause: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "store unreachable", "method", method, "path", path, "error", err)
		return &Error{Kind: KindNetwork, Message: "could not reach the store", cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.statusError(ctx, resp, method, path)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Kind: KindInternal, Message: "could not decode store response", cause: err}
	}
	return nil
}

func (c *Client) statusError(ctx context.Context, resp *http.Response, method, path string) error {
	message := storeMessage(resp.Body)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		// The token is no longer good for anything, drop it.
		c.session.Clear()
		c.categories.Clear()
		if message == "" {
			message = "your session has expired, please log in again"
		}
		return &Error{Kind: KindAuth, Message: message}
	case resp.StatusCode == http.StatusNotFound:
		return &Error{Kind: KindNotFound, Message: message}
	case resp.StatusCode == http.StatusBadRequest,
		resp.StatusCode == http.StatusConflict,
		resp.StatusCode == http.StatusUnprocessableEntity:
		return &Error{Kind: KindValidation, Message: message}
	default:
		c.logger.ErrorContext(ctx, "store request failed",
			"method", method, "path", path, "status", resp.StatusCode)
		return &Error{Kind: KindInternal, Message: message}
	}
}

// storeMessage pulls the "message" field out of an error body, if any.
func storeMessage(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil {
		return ""
	}
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	return strings.TrimSpace(payload.Message)
}
