package shared

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestShouldUseOSC52(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		expected bool
	}{
		{name: "no env vars set", envVars: map[string]string{}, expected: false},
		{name: "SSH_TTY set", envVars: map[string]string{"SSH_TTY": "/dev/pts/0"}, expected: true},
		{name: "SSH_CONNECTION set", envVars: map[string]string{"SSH_CONNECTION": "10.0.0.1 1 10.0.0.2 22"}, expected: true},
		{name: "TMUX set", envVars: map[string]string{"TMUX": "/tmp/tmux-1000/default,1,0"}, expected: true},
		{name: "STY set (GNU screen)", envVars: map[string]string{"STY": "1.pts-0.host"}, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, env := range []string{"SSH_TTY", "SSH_CLIENT", "SSH_CONNECTION", "TMUX", "STY"} {
				t.Setenv(env, "")
			}
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}
			require.Equal(t, tt.expected, shouldUseOSC52())
		})
	}
}

func TestMockClipboard(t *testing.T) {
	m := &MockClipboard{}
	require.Empty(t, m.Last())
	require.NoError(t, m.Copy("/spec-mix.migrate abc1234"))
	require.Equal(t, "/spec-mix.migrate abc1234", m.Last())

	m.Err = errors.New("no clipboard")
	require.Error(t, m.Copy("x"))
	require.Len(t, m.Copied, 1)
}
