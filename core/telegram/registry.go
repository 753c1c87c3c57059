package telegram

import (
	"fmt"
	"log/slog"
	"sync"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/easyshop/core/logger"
	"github.com/m3rciful/easyshop/core/telegram/commands"
)

// Registry collects slash commands for the Telegram command menu.
type Registry struct {
	mu    sync.RWMutex
	cmds  []commands.Command
	names map[string]struct{}
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{names: make(map[string]struct{})}
}

// Register adds commands. A name registered twice is an error.
func (r *Registry) Register(cmds ...commands.Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range cmds {
		name := commands.Normalize(c.Name)
		if name == "" {
			return fmt.Errorf("telegram: command without name")
		}
		if _, dup := r.names[name]; dup {
			return fmt.Errorf("telegram: command %s registered twice", name)
		}
		r.names[name] = struct{}{}
		c.Name = name
		r.cmds = append(r.cmds, c)
	}
	return nil
}

// Commands returns registered commands in registration order.
func (r *Registry) Commands() []commands.Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]commands.Command(nil), r.cmds...)
}

// Menu returns the visible commands in setMyCommands form.
func (r *Registry) Menu() []tele.Command {
	return commands.Menu(r.Commands())
}

// SetupCommands publishes the visible commands. Failures are logged and not fatal.
func SetupCommands(bot *tele.Bot, reg *Registry) {
	if bot == nil || reg == nil {
		return
	}
	menu := reg.Menu()
	if len(menu) == 0 {
		return
	}
	if err := bot.SetCommands(menu); err != nil {
		logger.TWire.Error("set commands failed",
			slog.String("event", "register.commands"),
			slog.String("err", err.Error()),
		)
		return
	}
	logger.TWire.Info("commands published",
		slog.String("event", "register.commands"),
		slog.Int("count", len(menu)),
	)
}
