package telegram

import (
	"strconv"
	"strings"
)

// commandArgs splits a command message into its arguments, dropping
// the command token itself (which may carry a @botname suffix in
// group chats).
func commandArgs(text string) []string {
	fields := strings.Fields(text)
	if len(fields) <= 1 {
		return nil
	}
	return fields[1:]
}

func commandInt64Arg(text string, idx int) (int64, bool) {
	fields := strings.Fields(text)
	if len(fields) <= idx {
		return 0, false
	}
	v, err := strconv.ParseInt(fields[idx], 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseIntPart(data string, idx int) (int, bool) {
	parts := strings.Split(data, ":")
	if len(parts) <= idx {
		return 0, false
	}
	v, err := strconv.Atoi(parts[idx])
	if err != nil {
		return 0, false
	}
	return v, true
}
