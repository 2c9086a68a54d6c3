package gitrepo_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/promptctl/internal/gitrepo"
)

func TestParseRemoteURL(testInstance *testing.T) {
	expected := gitrepo.RemoteURL{Host: "github.com", Owner: "IllWicked", Repository: "ai-prompts-manager"}

	testCases := []struct {
		name             string
		input            string
		expectedProtocol gitrepo.RemoteProtocol
	}{
		{name: "https_with_suffix", input: "https://github.com/IllWicked/ai-prompts-manager.git", expectedProtocol: gitrepo.RemoteProtocolHTTPS},
		{name: "https_without_suffix", input: "https://github.com/IllWicked/ai-prompts-manager", expectedProtocol: gitrepo.RemoteProtocolHTTPS},
		{name: "scp_style", input: "git@github.com:IllWicked/ai-prompts-manager.git", expectedProtocol: gitrepo.RemoteProtocolSSH},
		{name: "ssh_scheme", input: "ssh://git@github.com/IllWicked/ai-prompts-manager.git", expectedProtocol: gitrepo.RemoteProtocolSSH},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			parsed, parseError := gitrepo.ParseRemoteURL(testCase.input)
			require.NoError(testInstance, parseError)
			require.Equal(testInstance, testCase.expectedProtocol, parsed.Protocol)
			require.True(testInstance, parsed.SameRepository(expected))
		})
	}
}

func TestParseRemoteURLRejectsInvalidInput(testInstance *testing.T) {
	for _, input := range []string{"", "ftp://github.com/a/b", "https://github.com/only-owner", "git@github.com"} {
		_, parseError := gitrepo.ParseRemoteURL(input)
		require.Error(testInstance, parseError, input)
	}
}
