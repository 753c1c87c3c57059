// Package commands describes slash commands shown in the Telegram command menu.
package commands

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

// Command represents a bot command with its description and visibility.
type Command struct {
	Name        string
	Description string
	// Hidden commands work but are not published in the menu.
	Hidden bool
}

// Normalize returns cmd with a leading slash and a lowercased name.
func Normalize(cmd string) string {
	cmd = strings.ToLower(strings.TrimSpace(cmd))
	if cmd == "" || strings.HasPrefix(cmd, "/") {
		return cmd
	}
	return "/" + cmd
}

// Menu converts visible commands into the form accepted by setMyCommands.
// Telegram expects names without the leading slash. Registration order is kept.
func Menu(cmds []Command) []tele.Command {
	out := make([]tele.Command, 0, len(cmds))
	seen := make(map[string]struct{}, len(cmds))
	for _, c := range cmds {
		name := strings.TrimPrefix(Normalize(c.Name), "/")
		if c.Hidden || name == "" || c.Description == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, tele.Command{Text: name, Description: c.Description})
	}
	return out
}
