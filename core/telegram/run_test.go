package telegram

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreconfig "github.com/m3rciful/easyshop/core/config"
	"github.com/m3rciful/easyshop/core/telegram/commands"
)

type eventLog struct {
	mu     sync.Mutex
	events []string
	bodies map[string]string
}

func (l *eventLog) add(ev string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
}

func (l *eventLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

func (l *eventLog) index(ev string) int {
	for i, e := range l.snapshot() {
		if e == ev {
			return i
		}
	}
	return -1
}

func (l *eventLog) lastIndex(ev string) int {
	events := l.snapshot()
	for i := len(events) - 1; i >= 0; i-- {
		if events[i] == ev {
			return i
		}
	}
	return -1
}

// fakeBotAPI answers every Bot API method with a successful empty result.
func fakeBotAPI(t *testing.T, log *eventLog, polled chan<- struct{}) *httptest.Server {
	t.Helper()
	var once sync.Once
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		switch method {
		case "getUpdates":
			once.Do(func() { close(polled) })
			time.Sleep(10 * time.Millisecond)
			_, _ = io.WriteString(w, `{"ok":true,"result":[]}`)
			return
		case "sendMessage":
			_, _ = io.WriteString(w, `{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":42,"type":"private"}}}`)
		default:
			_, _ = io.WriteString(w, `{"ok":true,"result":true}`)
		}
		log.mu.Lock()
		if log.bodies == nil {
			log.bodies = make(map[string]string)
		}
		log.bodies[method] = string(body)
		log.mu.Unlock()
		log.add("api:" + method)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRunTelegramLifecycle(t *testing.T) {
	log := &eventLog{}
	polled := make(chan struct{})
	srv := fakeBotAPI(t, log, polled)

	session := NewNetworkSession()
	releasedDuringStop := -1
	admins := coreconfig.AdminIDs{42, 43}
	reg := NewRegistry()
	require.NoError(t, reg.Register(commands.Command{Name: "/start", Description: "Start"}))

	cfg := &coreconfig.Config{Telegram: coreconfig.TelegramConfig{Token: "123:abc", AdminIDs: admins, LongPollTimeoutSeconds: 1}}
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-polled:
		case <-time.After(5 * time.Second):
		}
		cancel()
	}()

	err := RunTelegram(ctx, RunOptions{
		Config:   cfg,
		Registry: reg,
		Session:  session,
		Notifier: &DeferredNotifier{},
		APIURL:   srv.URL,
		Offline:  true,
		OnStart:  StartupHook(admins),
		OnStop: func(ctx context.Context, rt Runtime) error {
			err := ShutdownHook(admins)(ctx, rt)
			releasedDuringStop = session.Releases()
			return err
		},
	})
	require.NoError(t, err)

	require.GreaterOrEqual(t, log.index("api:deleteWebhook"), 0)
	assert.Regexp(t, `"drop_pending_updates":\s*"?true`, log.bodies["deleteWebhook"])
	assert.GreaterOrEqual(t, log.index("api:setMyCommands"), 0)

	firstSend := log.index("api:sendMessage")
	lastSend := log.lastIndex("api:sendMessage")
	require.GreaterOrEqual(t, firstSend, 0)
	require.NotEqual(t, firstSend, lastSend, "expected startup and shutdown notifications")
	assert.Equal(t, 0, releasedDuringStop, "session released before the shutdown notification")
	assert.Equal(t, 1, session.Releases())
}

func TestRunTelegramStopsWhenWebhookDeletionFails(t *testing.T) {
	var methods []string
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
		mu.Lock()
		methods = append(methods, method)
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		if method == "deleteWebhook" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"ok":false,"error_code":401,"description":"Unauthorized"}`)
			return
		}
		_, _ = io.WriteString(w, `{"ok":true,"result":[]}`)
	}))
	t.Cleanup(srv.Close)

	session := NewNetworkSession()
	started := false
	cfg := &coreconfig.Config{Telegram: coreconfig.TelegramConfig{Token: "123:abc", LongPollTimeoutSeconds: 1}}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := RunTelegram(ctx, RunOptions{
		Config:  cfg,
		Session: session,
		APIURL:  srv.URL,
		Offline: true,
		OnStart: func(context.Context, Runtime) error {
			started = true
			return nil
		},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delete webhook")
	assert.NotContains(t, err.Error(), "123:abc")
	assert.False(t, started)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"deleteWebhook"}, methods)
	assert.Equal(t, 1, session.Releases())
}

func TestRunTelegramRequiresToken(t *testing.T) {
	err := RunTelegram(context.Background(), RunOptions{Config: &coreconfig.Config{}})
	assert.Error(t, err)
	assert.Error(t, RunTelegram(context.Background(), RunOptions{}))
}

func TestNetworkSessionReleasedOnce(t *testing.T) {
	s := NewNetworkSession()
	for i := 0; i < 3; i++ {
		require.NoError(t, s.Close())
	}
	assert.Equal(t, 1, s.Releases())
}

func TestBuildPollerDefaults(t *testing.T) {
	p := BuildPoller(PollerOptions{})
	assert.Equal(t, 10*time.Second, p.Timeout)
	assert.Equal(t, DefaultAllowedUpdates, p.AllowedUpdates)
}
