// Package telegram implements the subset of the Telegram Bot API needed to
// deliver archives and to receive backup commands.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/bcup/bcup/internal/archiver"
	"github.com/bcup/bcup/internal/debug"
	"github.com/bcup/bcup/internal/errors"
	"github.com/bcup/bcup/internal/options"
)

// Client talks to the Bot API on behalf of a single bot.
type Client struct {
	cfg    Config
	token  options.SecretString
	chatID int64
	client http.Client

	// Report is called with a description, the error and the delay before
	// the next attempt whenever a request is retried.
	Report func(msg string, err error, d time.Duration)
}

// New returns a client for the bot identified by token, which delivers
// archives to chatID. rt is used for all requests.
func New(cfg Config, token options.SecretString, chatID int64, rt http.RoundTripper) (*Client, error) {
	if token.Empty() {
		return nil, errors.Fatal("Telegram bot token is empty")
	}
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}

	return &Client{
		cfg:    cfg,
		token:  token,
		chatID: chatID,
		client: http.Client{Transport: rt},
	}, nil
}

func (c *Client) String() string {
	return fmt.Sprintf("telegram:%d", c.chatID)
}

func (c *Client) endpoint(method string) string {
	return c.cfg.APIURL + "/bot" + c.token.Unwrap() + "/" + method
}

// redact removes the bot token from errors returned by the HTTP client, which
// include the request URL.
func (c *Client) redact(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		uerr.URL = strings.ReplaceAll(uerr.URL, c.token.Unwrap(), c.token.String())
	}
	return err
}

func drainAndClose(resp *http.Response) error {
	_, err := io.Copy(io.Discard, resp.Body)
	cerr := resp.Body.Close()

	if err != nil {
		return errors.Errorf("drain: %w", err)
	}
	return cerr
}

// do runs req and decodes the reply into result, which may be nil.
func (c *Client) do(req *http.Request, method string, result interface{}) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return errors.WithStack(c.redact(err))
	}

	var reply response
	derr := json.NewDecoder(resp.Body).Decode(&reply)
	if err := drainAndClose(resp); err != nil {
		return err
	}

	if derr != nil || !reply.OK {
		aerr := &apiError{
			Method:      method,
			StatusCode:  resp.StatusCode,
			Description: reply.Description,
		}
		if reply.ErrorCode != 0 {
			aerr.StatusCode = reply.ErrorCode
		}
		if reply.Parameters != nil {
			aerr.RetryAfter = reply.Parameters.RetryAfter
		}
		if derr != nil && resp.StatusCode == http.StatusOK {
			return errors.Wrapf(derr, "%v: decode reply", method)
		}
		return aerr
	}

	if result == nil {
		return nil
	}
	return errors.Wrapf(json.Unmarshal(reply.Result, result), "%v: decode result", method)
}

// call sends params as JSON to method.
func (c *Client) call(ctx context.Context, method string, params interface{}, result interface{}) error {
	buf, err := json.Marshal(params)
	if err != nil {
		return errors.WithStack(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(method), bytes.NewReader(buf))
	if err != nil {
		return errors.WithStack(c.redact(err))
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, method, result)
}

// GetMe returns the bot's own user. It is a cheap way to validate the token.
func (c *Client) GetMe(ctx context.Context) (User, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	var me User
	err := c.call(ctx, "getMe", struct{}{}, &me)
	return me, err
}

// SendMessage sends text to chatID.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	params := struct {
		ChatID int64  `json:"chat_id"`
		Text   string `json:"text"`
	}{chatID, text}

	return c.retry(ctx, "sendMessage", func() error {
		ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
		return c.call(ctx, "sendMessage", params, nil)
	})
}

// GetUpdates long-polls for new messages, waiting at most wait for the
// first one. Only updates with an ID of at least offset are returned.
func (c *Client) GetUpdates(ctx context.Context, offset int64, wait time.Duration) ([]Update, error) {
	params := struct {
		Offset         int64    `json:"offset"`
		Timeout        int      `json:"timeout"`
		AllowedUpdates []string `json:"allowed_updates"`
	}{offset, int(wait / time.Second), []string{"message"}}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout+wait)
	defer cancel()

	var updates []Update
	err := c.call(ctx, "getUpdates", params, &updates)
	return updates, err
}

// Send uploads the archive as a document to the configured chat. Archives
// above the upload limit are refused before anything is sent.
func (c *Client) Send(ctx context.Context, art *archiver.Artifact, caption string) error {
	limit := c.cfg.MaxUploadSize
	if limit == 0 {
		limit = MaxUploadSize
	}
	if uint64(art.Size()) > limit {
		return errors.Wrapf(ErrTooLarge, "%d bytes, limit is %d", art.Size(), limit)
	}

	name := DocumentName(time.Now())
	return c.retry(ctx, fmt.Sprintf("sendDocument(%v)", name), func() error {
		return c.sendDocument(ctx, art, name, caption)
	})
}

// DocumentName returns the file name the archive is presented with.
func DocumentName(t time.Time) string {
	return "backup-" + t.Format("2006-01-02_15-04-05") + ".zip"
}

func (c *Client) sendDocument(ctx context.Context, art *archiver.Artifact, name, caption string) error {
	timeout := c.cfg.UploadTimeout
	if timeout <= 0 {
		timeout = NewConfig().UploadTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	rd, err := art.Open()
	if err != nil {
		return backoff.Permanent(err)
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	fields := [][2]string{
		{"chat_id", strconv.FormatInt(c.chatID, 10)},
		{"caption", caption},
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = pw.CloseWithError(writeMultipart(mw, fields, name, rd))
	}()
	defer func() {
		// the writer must be gone before the artifact is rewound again
		_ = pr.Close()
		<-done
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("sendDocument"), pr)
	if err != nil {
		return errors.WithStack(c.redact(err))
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	debug.Log("uploading %v (%d bytes) as %v", art.Name(), art.Size(), name)
	return c.do(req, "sendDocument", nil)
}

func writeMultipart(mw *multipart.Writer, fields [][2]string, name string, rd io.Reader) error {
	for _, f := range fields {
		if f[1] == "" {
			continue
		}
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return err
		}
	}

	part, err := mw.CreateFormFile("document", name)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, rd); err != nil {
		return err
	}
	return mw.Close()
}
