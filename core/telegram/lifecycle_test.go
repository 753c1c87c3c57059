package telegram

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreconfig "github.com/m3rciful/easyshop/core/config"
	"github.com/m3rciful/easyshop/core/telegram/commands"
)

type sentNote struct {
	chatID int64
	text   string
}

type fakeNotifier struct {
	sent []sentNote
	err  error
}

func (f *fakeNotifier) Notify(_ context.Context, chatID int64, text string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentNote{chatID, text})
	return nil
}

func TestStartupHookNotifiesPrimaryAdmin(t *testing.T) {
	n := &fakeNotifier{}
	err := StartupHook(coreconfig.AdminIDs{7, 8})(context.Background(), Runtime{Notifier: n})
	require.NoError(t, err)
	assert.Equal(t, []sentNote{{7, StartupText}}, n.sent)
}

func TestShutdownHookNotifies(t *testing.T) {
	n := &fakeNotifier{}
	require.NoError(t, ShutdownHook(coreconfig.AdminIDs{7})(context.Background(), Runtime{Notifier: n}))
	assert.Equal(t, []sentNote{{7, ShutdownText}}, n.sent)
}

func TestShutdownHookIgnoresNotifyFailure(t *testing.T) {
	n := &fakeNotifier{err: errors.New("chat not found")}
	assert.NoError(t, ShutdownHook(coreconfig.AdminIDs{7})(context.Background(), Runtime{Notifier: n}))
}

func TestHooksWithoutAdmins(t *testing.T) {
	n := &fakeNotifier{}
	require.NoError(t, StartupHook(nil)(context.Background(), Runtime{Notifier: n}))
	require.NoError(t, ShutdownHook(nil)(context.Background(), Runtime{Notifier: n}))
	assert.Empty(t, n.sent)
}

func TestDeferredNotifier(t *testing.T) {
	var d DeferredNotifier
	assert.ErrorIs(t, d.Notify(context.Background(), 1, "x"), ErrNotifierUnbound)

	n := &fakeNotifier{}
	d.Bind(n)
	require.NoError(t, d.Notify(context.Background(), 1, "x"))
	assert.Len(t, n.sent, 1)
}

func TestNotifyAdminsCountsDeliveries(t *testing.T) {
	n := &fakeNotifier{}
	assert.Equal(t, 2, NotifyAdmins(context.Background(), n, coreconfig.AdminIDs{1, 2}, "test", "hi"))
	assert.Equal(t, 0, NotifyAdmins(context.Background(), nil, coreconfig.AdminIDs{1}, "test", "hi"))
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(commandsOf("/start", "cart")...))
	assert.Error(t, reg.Register(commandsOf("start")...))
	assert.Len(t, reg.Menu(), 2)
}

func commandsOf(names ...string) []commands.Command {
	out := make([]commands.Command, 0, len(names))
	for _, n := range names {
		out = append(out, commands.Command{Name: n, Description: n})
	}
	return out
}
