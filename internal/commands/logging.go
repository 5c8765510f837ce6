package commands

import (
	"strings"

	"github.com/goliatone/go-albums/internal/logging"
	"github.com/goliatone/go-albums/pkg/interfaces"
)

const commandModuleRoot = "albums.commands"

// CommandLogger returns a module-scoped logger for command handlers, tagged with the
// component and command module fields.
func CommandLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	name := strings.TrimSpace(module)
	if name == "" {
		name = "core"
	}
	logger := logging.ModuleLogger(provider, commandModuleRoot+"."+name)
	return logging.WithFields(logger, map[string]any{
		"component":      "command",
		"command_module": name,
	})
}
