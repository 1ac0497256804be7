package models

import "strings"

// CommandType enumerates supported chat commands.
type CommandType string

const (
	CommandStock    CommandType = "stock"
	CommandShopping CommandType = "shopping"
	CommandExpiry   CommandType = "expiry"
	CommandSet      CommandType = "set"
	CommandHelp     CommandType = "help"
	CommandUnknown  CommandType = "unknown"
)

// Command represents a parsed instruction extracted from a chat message.
type Command struct {
	Type CommandType
	Raw  string
	Args []string
}

// ParseCommand derives a Command from free-form text such as "/set 1712 4".
func ParseCommand(message string) Command {
	cmd := Command{Type: CommandUnknown, Raw: message}

	tokens := strings.Fields(strings.TrimSpace(message))
	if len(tokens) == 0 {
		return cmd
	}

	switch head := CommandType(strings.ToLower(strings.TrimPrefix(tokens[0], "/"))); head {
	case CommandStock, CommandShopping, CommandExpiry, CommandSet, CommandHelp:
		cmd.Type = head
	}

	if len(tokens) > 1 {
		cmd.Args = tokens[1:]
	}
	return cmd
}
