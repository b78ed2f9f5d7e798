package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChatCmd_Use(t *testing.T) {
	assert.Equal(t, "chat [file]", chatCmd.Use)
}

func TestChatCmd_RequiresFile(t *testing.T) {
	withMocks(t, &mockQueryService{}, &mockHistoryStore{})

	_, err := runCommand(t, "chat")

	assert.Error(t, err)
}

func TestChatCmd_Registered(t *testing.T) {
	names := make([]string, 0)
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Contains(t, names, "chat")
	assert.Contains(t, names, "ask")
	assert.Contains(t, names, "history")
	assert.Contains(t, names, "version")
}
