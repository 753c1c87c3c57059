package easyshop

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/easyshop/bots/easyshop/catalog"
	"github.com/m3rciful/easyshop/bots/easyshop/handlers"
	"github.com/m3rciful/easyshop/bots/easyshop/middlewares"
	"github.com/m3rciful/easyshop/bots/easyshop/payment"
	coreconfig "github.com/m3rciful/easyshop/core/config"
	coretelegram "github.com/m3rciful/easyshop/core/telegram"
	"github.com/m3rciful/easyshop/core/telegram/state"
	"github.com/m3rciful/easyshop/core/telegram/teletest"
)

type note struct {
	chatID int64
	text   string
}

type recorder struct {
	notes []note
}

func (r *recorder) Notify(_ context.Context, chatID int64, text string) error {
	r.notes = append(r.notes, note{chatID, text})
	return nil
}

type paidProvider struct{}

func (paidProvider) CreatePayment(_ context.Context, req payment.CreateRequest) (*payment.Payment, error) {
	return &payment.Payment{ID: "p-1", Status: payment.StatusPending, Amount: payment.NewAmount(req.Amount, "RUB")}, nil
}

func (paidProvider) GetPayment(_ context.Context, id string) (*payment.Payment, error) {
	return &payment.Payment{ID: id, Status: payment.StatusSucceeded, Paid: true, Amount: payment.NewAmount(45000, "RUB")}, nil
}

func testConfig(t *testing.T) *Config {
	t.Helper()
	cfg := &Config{Catalog: catalog.DefaultProducts()}
	cfg.Telegram.Token = "123:abc"
	cfg.Telegram.AdminIDs = coreconfig.AdminIDs{7, 8}
	cfg.Session.Backend = coreconfig.SessionBackendMemory
	require.NoError(t, coreconfig.Normalize(&cfg.Config))
	return cfg
}

func newTestApp(t *testing.T, payments payment.Provider) (*App, *state.MemoryStorage) {
	t.Helper()
	sessions := state.NewMemoryStorage()
	clock := time.Unix(1000, 0)
	app, err := NewApp(testConfig(t), Deps{
		Store:    catalog.NewMemoryStore(catalog.DefaultProducts()),
		Sessions: sessions,
		Payments: payments,
		Now: func() time.Time {
			clock = clock.Add(time.Second)
			return clock
		},
	})
	require.NoError(t, err)
	return app, sessions
}

func TestRoutersIncludedInOrder(t *testing.T) {
	app, _ := newTestApp(t, nil)
	dp := app.Dispatcher()

	assert.Equal(t, []string{
		"user_commands",
		"product_handlers",
		"cart_handlers",
		"payment_handlers",
		"admin_handlers",
	}, dp.RouterNames())
	assert.True(t, dp.HasErrorHandler())
	assert.True(t, dp.Sealed())
}

func TestMiddlewaresRegistered(t *testing.T) {
	app, _ := newTestApp(t, nil)
	dp := app.Dispatcher()
	assert.Equal(t, []string{"database", "user"}, dp.Update.Names())
	assert.Equal(t, []string{"throttling"}, dp.Message.Names())
}

func TestCommandMenu(t *testing.T) {
	app, _ := newTestApp(t, nil)
	var names []string
	for _, c := range app.Dispatcher().Registry().Menu() {
		names = append(names, c.Text)
	}
	assert.Equal(t, []string{"start", "help", "cancel", "catalog", "cart", "checkout"}, names)
}

func TestDispatchThroughFullPipeline(t *testing.T) {
	app, sessions := newTestApp(t, paidProvider{})
	admins := &recorder{}
	app.notifier.Bind(admins)
	dp := app.Dispatcher()

	start := teletest.NewMessage(42, "/start")
	require.NoError(t, dp.Handle(start))
	assert.Equal(t, fmt.Sprintf(handlers.WelcomeText, "@tester"), start.LastText())

	require.NoError(t, dp.Handle(teletest.NewCallback(42, handlers.CbCartAdd, "1")))
	s, err := sessions.Load(context.Background(), state.Key{ChatID: 42, UserID: 42})
	require.NoError(t, err)
	assert.False(t, s.Empty())

	checkout := teletest.NewMessage(42, "/checkout")
	require.NoError(t, dp.Handle(checkout))
	assert.Equal(t, fmt.Sprintf(handlers.CheckoutText, "450.00 RUB"), checkout.LastText())

	paid := teletest.NewCallback(42, handlers.CbPayCheck, "p-1")
	require.NoError(t, dp.Handle(paid))
	assert.Equal(t, handlers.PaidText, paid.LastText())
	assert.Equal(t, []note{
		{7, "💰 New paid order p-1 from @tester: 450.00 RUB"},
		{8, "💰 New paid order p-1 from @tester: 450.00 RUB"},
	}, admins.notes)
}

func TestThrottlingAppliesToMessagesOnly(t *testing.T) {
	sessions := state.NewMemoryStorage()
	frozen := time.Unix(1000, 0)
	app, err := NewApp(testConfig(t), Deps{
		Store:    catalog.NewMemoryStore(catalog.DefaultProducts()),
		Sessions: sessions,
		Now:      func() time.Time { return frozen },
	})
	require.NoError(t, err)
	dp := app.Dispatcher()

	require.NoError(t, dp.Handle(teletest.NewMessage(42, "/catalog")))
	second := teletest.NewMessage(42, "/catalog")
	require.NoError(t, dp.Handle(second))
	assert.Equal(t, middlewares.SlowDownText, second.LastText())

	cb := teletest.NewCallback(42, handlers.CbCatalog, "")
	require.NoError(t, dp.Handle(cb))
	assert.Equal(t, handlers.CatalogTitle, cb.LastText())
}

func TestThrottlingRejectsCallbackExclusion(t *testing.T) {
	cfg := testConfig(t)
	cfg.RateLimit.ExcludeUpdates = []string{coreconfig.UpdateCallback}
	_, err := NewApp(cfg, Deps{
		Store:    catalog.NewMemoryStore(catalog.DefaultProducts()),
		Sessions: state.NewMemoryStorage(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "callback")
}

type euroProvider struct{ paidProvider }

func (euroProvider) Currency() string { return "EUR" }

func TestPricesUseProviderCurrency(t *testing.T) {
	app, _ := newTestApp(t, euroProvider{})
	dp := app.Dispatcher()
	require.NoError(t, dp.Handle(teletest.NewCallback(42, handlers.CbCartAdd, "1")))

	checkout := teletest.NewMessage(42, "/checkout")
	require.NoError(t, dp.Handle(checkout))
	assert.Equal(t, fmt.Sprintf(handlers.CheckoutText, "450.00 EUR"), checkout.LastText())
}

func TestUnknownInputUsesFallback(t *testing.T) {
	app, _ := newTestApp(t, nil)
	c := teletest.NewMessage(42, "hello?")
	require.NoError(t, app.Dispatcher().Handle(c))
	assert.Equal(t, handlers.UnknownText, c.LastText())
}

func TestRunOptionsNotifyAdminOnLifecycle(t *testing.T) {
	app, _ := newTestApp(t, nil)
	opts, err := app.TelegramRunOptions()
	require.NoError(t, err)

	assert.Same(t, app.session, opts.Session)
	assert.Same(t, app.notifier, opts.Notifier)
	assert.NotEmpty(t, opts.Routes)
	assert.Equal(t, "123:abc", opts.Config.Telegram.Token)

	n := &recorder{}
	rt := coretelegram.Runtime{Notifier: n}
	require.NoError(t, opts.OnStart(context.Background(), rt))
	require.NoError(t, opts.OnStop(context.Background(), rt))
	assert.Equal(t, []note{
		{7, coretelegram.StartupText},
		{7, coretelegram.ShutdownText},
	}, n.notes)
	assert.Zero(t, app.session.Releases())
}

func TestNewAppRequiresStorage(t *testing.T) {
	_, err := NewApp(testConfig(t), Deps{Store: catalog.NewMemoryStore(nil)})
	assert.Error(t, err)
	_, err = NewApp(nil, Deps{})
	assert.Error(t, err)
}

func TestBootstrapWithoutDatabaseOrPayments(t *testing.T) {
	cfg := testConfig(t)
	app, err := Bootstrap(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	_, isMemory := app.store.(*catalog.MemoryStore)
	assert.True(t, isMemory)
	assert.Nil(t, app.payments)
	assert.NotNil(t, app.infra.Sessions)
	assert.Nil(t, app.infra.DB)
}
