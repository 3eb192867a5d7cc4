package flagx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	client := []string{"-a", "-s", "-d", "-p", "-rb", "-rm", "-ra"}
	config := []string{"-c", "-config"}

	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{
			name:    "client flags around a subcommand",
			args:    []string{"-a", "store:50051", "put", "notes/", "note", "-p", "20"},
			allowed: client,
			want:    []string{"-a", "store:50051", "-p", "20"},
		},
		{
			name:    "config file flag is left to the json loader",
			args:    []string{"-c", "client.json", "-s", "secret", "list"},
			allowed: client,
			want:    []string{"-s", "secret"},
		},
		{
			name:    "json loader sees only its own flag",
			args:    []string{"-c", "client.json", "-s", "secret", "list"},
			allowed: config,
			want:    []string{"-c", "client.json"},
		},
		{
			name:    "equals form",
			args:    []string{"-config=server.json", "-t=90", "-l", "16"},
			allowed: []string{"-config", "-t"},
			want:    []string{"-config=server.json", "-t=90"},
		},
		{
			name:    "multi-letter flags are matched whole",
			args:    []string{"-rb", "50", "-r", "x", "-ra", "3"},
			allowed: client,
			want:    []string{"-rb", "50", "-ra", "3"},
		},
		{
			name:    "flag without value at end is kept",
			args:    []string{"get", "k", "-d"},
			allowed: client,
			want:    []string{"-d"},
		},
		{
			name:    "dash-prefixed token is not taken as a value",
			args:    []string{"-s", "-p", "5"},
			allowed: client,
			want:    []string{"-s", "-p", "5"},
		},
		{
			name:    "operands only",
			args:    []string{"get", "notes/a"},
			allowed: client,
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowed))
		})
	}
}

func TestPositional(t *testing.T) {
	valueFlags := []string{"-a", "-s", "-c"}

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{name: "subcommand after flags", args: []string{"-a", "127.0.0.1:1", "put", "notes/1", "hello"}, want: []string{"put", "notes/1", "hello"}},
		{name: "equals form skipped", args: []string{"-s=secret", "get", "k"}, want: []string{"get", "k"}},
		{name: "boolean flag does not eat operand", args: []string{"-v", "list", "notes/"}, want: []string{"list", "notes/"}},
		{name: "double dash ends flags", args: []string{"put", "--", "-weird-key", "x"}, want: []string{"put", "-weird-key", "x"}},
		{name: "value flag at end", args: []string{"sync", "-c"}, want: []string{"sync"}},
		{name: "empty", args: nil, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Positional(tt.args, valueFlags))
		})
	}
}

func Test_jsonConfigFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	t.Run("short -c with value", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", "/path/short.json"}
		assert.Equal(t, "/path/short.json", JsonConfigFlags())
	})

	t.Run("long -config with value", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", "/path/long.json"}
		assert.Equal(t, "/path/long.json", JsonConfigFlags())
	})

	t.Run("unknown flags are ignored", func(t *testing.T) {
		os.Args = []string{"testbin", "-x", "1", "-y", "2"}
		assert.Empty(t, JsonConfigFlags())
	})

	t.Run("multiple flags, last wins", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", "/path/1.json", "-config", "/path/2.json"}
		assert.Equal(t, "/path/2.json", JsonConfigFlags())
	})
}
