package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrymomot/authscreens/core/logger"
)

// API paths.
const (
	pathSignUp          = "/api/users"
	pathSignIn          = "/api/users/login"
	pathRegister        = "/api/users2/register"
	pathLogin           = "/api/users2/login"
	pathVerify          = "/api/users2/verify"
	pathVerifyResetCode = "/api/users2/verify-code-password"
	pathResendCode      = "/api/users2/resend-code"
	pathForgotPassword  = "/api/users2/forgot-password"
	pathResetPassword   = "/api/users2/reset-password"
	pathMe              = "/api/users2/me"
)

// maxReplySize bounds how much of a reply body is read.
const maxReplySize = 1 << 20

// Client calls the authentication API. Safe for concurrent use.
type Client struct {
	base      *url.URL
	http      *http.Client
	userAgent string
	log       *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client. Its timeout is left as is.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// New creates a client for cfg.BaseURL.
func New(cfg Config, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: BaseURL must be an absolute URL", ErrInvalidConfig)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	c := &Client{
		base:      base,
		http:      &http.Client{Timeout: timeout},
		userAgent: cfg.UserAgent,
		log:       slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With(logger.Component("backend"))
	return c, nil
}

// MustNew is New that panics on invalid config.
func MustNew(cfg Config, opts ...Option) *Client {
	c, err := New(cfg, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// SignUp creates an account from the sign-up form.
func (c *Client) SignUp(ctx context.Context, req SignUpRequest) (*Reply, error) {
	return c.do(ctx, http.MethodPost, pathSignUp, "", req)
}

// Register creates an account from the registration form. The API sends a
// verification code to the address on success.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*Reply, error) {
	return c.do(ctx, http.MethodPost, pathRegister, "", req)
}

// Login authenticates and returns the session token in Reply.Token.
func (c *Client) Login(ctx context.Context, creds Credentials) (*Reply, error) {
	return c.do(ctx, http.MethodPost, pathLogin, "", creds)
}

// SignIn authenticates against the legacy login endpoint.
func (c *Client) SignIn(ctx context.Context, creds Credentials) (*Reply, error) {
	return c.do(ctx, http.MethodPost, pathSignIn, "", creds)
}

// VerifyAccount confirms a new account with its emailed code.
func (c *Client) VerifyAccount(ctx context.Context, email, code string) (string, error) {
	return c.message(ctx, pathVerify, codeRequest{Email: email, Code: code})
}

// VerifyResetCode checks a password reset code.
func (c *Client) VerifyResetCode(ctx context.Context, email, code string) (string, error) {
	return c.message(ctx, pathVerifyResetCode, codeRequest{Email: email, Code: code})
}

// ResendCode asks the API to send a fresh code to email.
func (c *Client) ResendCode(ctx context.Context, email string) (string, error) {
	return c.message(ctx, pathResendCode, emailRequest{Email: email})
}

// ForgotPassword starts a password reset for email.
func (c *Client) ForgotPassword(ctx context.Context, email string) (string, error) {
	return c.message(ctx, pathForgotPassword, emailRequest{Email: email})
}

// ResetPassword sets a new password after the reset code was verified.
func (c *Client) ResetPassword(ctx context.Context, email, newPassword string) (string, error) {
	return c.message(ctx, pathResetPassword, resetPasswordRequest{Email: email, NewPassword: newPassword})
}

// Me returns the account the token belongs to.
func (c *Client) Me(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}
	reply, err := c.do(ctx, http.MethodGet, pathMe, token, nil)
	if err != nil {
		return nil, err
	}
	if reply.User == nil {
		return nil, fmt.Errorf("%w: reply has no user", ErrUnexpectedResponse)
	}
	return reply.User, nil
}

func (c *Client) message(ctx context.Context, path string, body any) (string, error) {
	reply, err := c.do(ctx, http.MethodPost, path, "", body)
	if err != nil {
		return "", err
	}
	return reply.Message, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, body any) (*Reply, error) {
	start := time.Now()
	log := c.log.With(logger.Method(method), logger.Path(path))

	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("backend: encode request: %w", err)
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.JoinPath(path).String(), payload)
	if err != nil {
		return nil, fmt.Errorf("backend: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		log.WarnContext(ctx, "backend request failed", logger.Error(err), logger.Latency(time.Since(start)))
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	var reply Reply
	decodeErr := json.NewDecoder(io.LimitReader(resp.Body, maxReplySize)).Decode(&reply)
	if decodeErr != nil && !errors.Is(decodeErr, io.EOF) {
		// an error status with a non-JSON body is still a rejection
		if resp.StatusCode >= http.StatusBadRequest {
			reply = Reply{}
		} else {
			return nil, fmt.Errorf("%w: %w", ErrUnexpectedResponse, decodeErr)
		}
	}
	sanitizeReply(&reply)

	log.DebugContext(ctx, "backend request done",
		logger.StatusCode(resp.StatusCode),
		logger.Latency(time.Since(start)),
	)

	if resp.StatusCode >= http.StatusBadRequest || reply.failed() {
		rej := &Rejection{
			Status:   resp.StatusCode,
			Message:  reply.Error,
			Messages: reply.Errors,
			Fields:   reply.Fields,
		}
		if rej.Message == "" && len(rej.Messages) == 0 && resp.StatusCode >= http.StatusBadRequest {
			rej.Message = reply.Message
		}
		return &reply, rej
	}
	return &reply, nil
}
