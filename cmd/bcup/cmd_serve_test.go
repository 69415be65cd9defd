package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bcup/bcup/internal/archiver"
	"github.com/bcup/bcup/internal/config"
	"github.com/bcup/bcup/internal/errors"
	"github.com/bcup/bcup/internal/options"
	"github.com/bcup/bcup/internal/telegram"
	rtest "github.com/bcup/bcup/internal/test"
)

const testUserID = 42

type sentMessage struct {
	chatID int64
	text   string
}

// fakeBot hands out queued updates and records everything sent.
type fakeBot struct {
	t       testing.TB
	updates chan []telegram.Update
	errs    chan error

	mu       sync.Mutex
	messages []sentMessage
	archives []map[string]string
	captions []string

	// sent receives one value per call to Send or SendMessage.
	sent chan struct{}
}

func newFakeBot(t testing.TB) *fakeBot {
	return &fakeBot{
		t:       t,
		updates: make(chan []telegram.Update, 10),
		errs:    make(chan error, 10),
		sent:    make(chan struct{}, 100),
	}
}

func (b *fakeBot) GetUpdates(ctx context.Context, _ int64, _ time.Duration) ([]telegram.Update, error) {
	select {
	case err := <-b.errs:
		return nil, err
	default:
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case u := <-b.updates:
		return u, nil
	}
}

func (b *fakeBot) SendMessage(_ context.Context, chatID int64, text string) error {
	b.mu.Lock()
	b.messages = append(b.messages, sentMessage{chatID, text})
	b.mu.Unlock()
	b.sent <- struct{}{}
	return nil
}

func (b *fakeBot) Send(_ context.Context, art *archiver.Artifact, caption string) error {
	entries := archiver.TestReadArchive(b.t, art)

	b.mu.Lock()
	b.archives = append(b.archives, entries)
	b.captions = append(b.captions, caption)
	b.mu.Unlock()
	b.sent <- struct{}{}
	return nil
}

func (b *fakeBot) texts() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	var texts []string
	for _, m := range b.messages {
		texts = append(texts, m.text)
	}
	return texts
}

// waitSent waits until n more messages or archives have been sent.
func (b *fakeBot) waitSent(t testing.TB, n int) {
	t.Helper()

	for i := 0; i < n; i++ {
		select {
		case <-b.sent:
		case <-time.After(10 * time.Second):
			t.Fatalf("timeout waiting for message %d of %d, got %v", i+1, n, b.texts())
		}
	}
}

func message(id int64, from int64, text string) *telegram.Message {
	return &telegram.Message{
		MessageID: id,
		From:      &telegram.User{ID: from},
		Chat:      telegram.Chat{ID: from},
		Date:      time.Date(2024, 5, 1, 12, 0, 0, 0, time.Local).Unix(),
		Text:      text,
	}
}

func staticConfig(paths ...string) func() (config.AppConfig, error) {
	return func() (config.AppConfig, error) {
		cfg := config.Default()
		cfg.Paths = paths
		return cfg, nil
	}
}

func newTestServer(t testing.TB, b bot, loadConfig func() (config.AppConfig, error)) (*server, *testEnv) {
	env := newTestEnv(t)
	return newServer(b, testUserID, time.Second, loadConfig, env.printer()), env
}

func TestServeHandleUnauthorized(t *testing.T) {
	b := newFakeBot(t)
	srv, _ := newTestServer(t, b, staticConfig())

	rtest.OK(t, srv.handle(context.TODO(), message(1, 7, "/backup")))
	rtest.OK(t, srv.handle(context.TODO(), &telegram.Message{MessageID: 2, Chat: telegram.Chat{ID: -100}, Text: "/backup"}))

	rtest.Equals(t, []sentMessage{{7, msgUnauthorized}, {-100, msgUnauthorized}}, b.messages)
	rtest.Equals(t, 0, len(srv.jobs))
}

func TestServeHandleCommands(t *testing.T) {
	b := newFakeBot(t)
	srv, _ := newTestServer(t, b, staticConfig())

	for _, text := range []string{"/start", "/help@bcup_bot", "/restore", "hello"} {
		rtest.OK(t, srv.handle(context.TODO(), message(1, testUserID, text)))
	}

	rtest.Equals(t, []string{msgHelp, msgHelp, msgUnknown, msgUnknown}, b.texts())
	rtest.Equals(t, 0, len(srv.jobs))
}

func TestServeHandleQueue(t *testing.T) {
	b := newFakeBot(t)
	srv, _ := newTestServer(t, b, staticConfig())

	// idle worker, the request is taken silently
	rtest.OK(t, srv.handle(context.TODO(), message(1, testUserID, "/backup")))
	rtest.Equals(t, 1, len(srv.jobs))
	rtest.Equals(t, 0, len(b.messages))

	// the queue holds a single request
	rtest.OK(t, srv.handle(context.TODO(), message(2, testUserID, "/backup")))
	rtest.Equals(t, []string{msgBusy}, b.texts())

	// a backup is running and the queue is empty
	<-srv.jobs
	srv.running <- struct{}{}
	rtest.OK(t, srv.handle(context.TODO(), message(3, testUserID, "/backup")))
	rtest.Equals(t, []string{msgBusy, msgQueued}, b.texts())
	rtest.Equals(t, 1, len(srv.jobs))
}

func runTestServer(t testing.TB, srv *server) (stop func()) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- srv.run(ctx)
	}()

	return func() {
		t.Helper()

		cancel()
		select {
		case err := <-done:
			rtest.ErrorIs(t, err, context.Canceled)
		case <-time.After(10 * time.Second):
			t.Fatal("server did not stop")
		}
	}
}

func TestServeBackup(t *testing.T) {
	src := rtest.TempDir(t)
	archiver.TestCreateFiles(t, src, archiver.TestDir{
		"notes.txt": archiver.TestFile{Content: "hello"},
		"docs":      archiver.TestDir{"a.txt": archiver.TestFile{Content: "A"}},
	})

	tempDir := rtest.TempDir(t)
	b := newFakeBot(t)
	srv, _ := newTestServer(t, b, func() (config.AppConfig, error) {
		cfg := config.Default()
		cfg.Paths = []string{filepath.Join(src, "notes.txt"), filepath.Join(src, "docs")}
		cfg.TempDir = tempDir
		return cfg, nil
	})

	stop := runTestServer(t, srv)
	b.updates <- []telegram.Update{{UpdateID: 10, Message: message(1, testUserID, "/backup")}}

	// confirmation and archive
	b.waitSent(t, 2)
	stop()

	rtest.Equals(t, []string{msgStarted}, b.texts())
	rtest.Equals(t, []map[string]string{{"notes.txt": "hello", "a.txt": "A"}}, b.archives)
	rtest.Assert(t, strings.Contains(b.captions[0], "requested at 2024-05-01 12:00:00"),
		"unexpected caption %q", b.captions[0])
	assertTempDirEmpty(t, tempDir)
}

func TestServeBackupFailure(t *testing.T) {
	b := newFakeBot(t)
	srv, env := newTestServer(t, b, staticConfig())

	stop := runTestServer(t, srv)
	b.updates <- []telegram.Update{
		{UpdateID: 1},
		{UpdateID: 2, Message: message(1, testUserID, "/backup")},
	}

	// confirmation and failure report
	b.waitSent(t, 2)
	stop()

	texts := b.texts()
	rtest.Equals(t, 2, len(texts))
	rtest.Equals(t, msgStarted, texts[0])
	rtest.Assert(t, strings.HasPrefix(texts[1], "❌ Backup failed: no paths configured"),
		"unexpected message %q", texts[1])
	rtest.Assert(t, strings.Contains(env.stderr.String(), "failed"), "failure not reported: %q", env.stderr.String())
}

func TestServeBackupConfigError(t *testing.T) {
	b := newFakeBot(t)
	srv, _ := newTestServer(t, b, func() (config.AppConfig, error) {
		return config.AppConfig{}, errors.Fatal("broken config")
	})

	stop := runTestServer(t, srv)
	b.updates <- []telegram.Update{{UpdateID: 1, Message: message(1, testUserID, "/backup")}}

	b.waitSent(t, 1)
	stop()

	rtest.Equals(t, []string{"❌ Backup failed: broken config"}, b.texts())
}

func TestServePollRetry(t *testing.T) {
	defer func(d time.Duration) { pollRetryDelay = d }(pollRetryDelay)
	pollRetryDelay = time.Millisecond

	b := newFakeBot(t)
	srv, env := newTestServer(t, b, staticConfig())

	b.errs <- errors.New("connection reset")
	b.updates <- []telegram.Update{{UpdateID: 1, Message: message(1, testUserID, "/help")}}

	stop := runTestServer(t, srv)
	b.waitSent(t, 1)
	stop()

	rtest.Equals(t, []string{msgHelp}, b.texts())
	rtest.Assert(t, strings.Contains(env.stderr.String(), "retrying"), "retry not reported: %q", env.stderr.String())
}

func TestServePollUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"ok":false,"error_code":401,"description":"Unauthorized"}`)
	}))
	defer srv.Close()

	cfg := telegram.NewConfig()
	cfg.APIURL = srv.URL
	client, err := telegram.New(cfg, options.NewSecretString("123:abc"), testUserID, nil)
	rtest.OK(t, err)

	env := newTestEnv(t)
	s := newServer(client, testUserID, time.Second, staticConfig(), env.printer())

	err = s.run(context.TODO())
	rtest.Assert(t, errors.IsFatal(err), "expected a fatal error, got %v", err)
}

func TestServeInvalid(t *testing.T) {
	env := newTestEnv(t)

	for _, test := range []struct {
		opts ServeOptions
		args []string
	}{
		{ServeOptions{PollTimeout: 50 * time.Second}, []string{"foo"}},
		{ServeOptions{PollTimeout: time.Millisecond}, nil},
		// not configured yet
		{ServeOptions{PollTimeout: 50 * time.Second}, nil},
	} {
		err := runServe(context.TODO(), test.opts, env.gopts, test.args, env.printer())
		rtest.Assert(t, errors.IsFatal(err), "expected a fatal error for %v, got %v", test, err)
	}
}
