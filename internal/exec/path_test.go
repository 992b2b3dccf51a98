package exec

import (
	"errors"
	"testing"

	sshtesting "github.com/rileyhilliard/deployr/pkg/sshutil/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbeTool_Found(t *testing.T) {
	client := sshtesting.NewMockClient("web1")
	client.SetCommandResponse("command -v 'php'", sshtesting.CommandResponse{Stdout: []byte("/usr/bin/php\n")})

	result, err := ProbeTool(client, "composer_bin", "php composer.phar")

	require.NoError(t, err)
	assert.True(t, result.Found)
	assert.Equal(t, "/usr/bin/php", result.Path)
	assert.Equal(t, []string{"command -v 'php'"}, client.Commands())
}

func TestProbeTool_CommonPath(t *testing.T) {
	client := sshtesting.NewMockClient("web1")
	client.SetCommandResponse("command -v 'composer'", sshtesting.CommandResponse{ExitCode: 1})
	client.SetCommandResponse("test -x $HOME/bin/composer && echo $HOME/bin/composer", sshtesting.CommandResponse{
		Stdout: []byte("/home/deploy/bin/composer\n"),
	})

	result, err := ProbeTool(client, "composer_bin", "composer")

	require.NoError(t, err)
	assert.False(t, result.Found)
	assert.Equal(t, []string{"/home/deploy/bin/composer"}, result.CommonPaths)

	suggestion := GenerateToolSuggestion(result, "production")
	assert.Contains(t, suggestion, "Found 'composer' at /home/deploy/bin/composer")
	assert.Contains(t, suggestion, "composer_bin: $HOME/bin/composer")
}

func TestProbeTool_AbsolutePathNotSearched(t *testing.T) {
	client := sshtesting.NewMockClient("web1")
	client.SetCommandResponse("command -v '/opt/php/bin/php'", sshtesting.CommandResponse{ExitCode: 1})

	result, err := ProbeTool(client, "php_bin", "/opt/php/bin/php")

	require.NoError(t, err)
	assert.False(t, result.Found)
	assert.Len(t, client.Commands(), 1)

	suggestion := GenerateToolSuggestion(result, "production")
	assert.Contains(t, suggestion, "Install 'php'")
	assert.Contains(t, suggestion, "php_bin: /full/path/to/binary")
}

func TestProbeTool_TransportError(t *testing.T) {
	client := sshtesting.NewMockClient("web1")
	client.SetCommandResponse("command -v 'php'", sshtesting.CommandResponse{ExitCode: -1, Error: errors.New("EOF")})

	_, err := ProbeTool(client, "php_bin", "php")
	assert.Error(t, err)

	_, err = ProbeTool(nil, "php_bin", "php")
	assert.Error(t, err)
}

func TestGenerateToolSuggestion_Found(t *testing.T) {
	assert.Empty(t, GenerateToolSuggestion(&ToolProbeResult{Found: true}, "production"))
	assert.Empty(t, GenerateToolSuggestion(nil, "production"))
}

func TestToHomeRelative(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "macOS home path",
			input: "/Users/someone/bin",
			want:  "$HOME/bin",
		},
		{
			name:  "Linux home path",
			input: "/home/deploy/.composer/vendor/bin",
			want:  "$HOME/.composer/vendor/bin",
		},
		{
			name:  "root home path",
			input: "/root/bin",
			want:  "$HOME/bin",
		},
		{
			name:  "system path unchanged",
			input: "/usr/local/bin",
			want:  "/usr/local/bin",
		},
		{
			name:  "macOS username only",
			input: "/Users/someone",
			want:  "$HOME",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, toHomeRelative(tt.input))
		})
	}
}
