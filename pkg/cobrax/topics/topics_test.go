// pkg/cobrax/topics/topics_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: testing/fstest, cobra
// PURPOSE: Test topic loading, lookup and the replaced help command

package topics_test

import (
	"bytes"
	"testing"
	"testing/fstest"

	"github.com/arthur-debert/stowman/pkg/cobrax/topics"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func topicFS() fstest.MapFS {
	return fstest.MapFS{
		"option-dry-run.txt":   {Data: []byte("Dry run help")},
		"architecture.md":      {Data: []byte("# Architecture\n\nDetails")},
		"config.txxt":          {Data: []byte("Configuration Guide")},
		"ignore.json":          {Data: []byte("{}")},
		"advanced/backups.txt": {Data: []byte("Backup help")},
	}
}

func TestLoad_Extensions(t *testing.T) {
	tests := []struct {
		name string
		opts topics.Options
		want []string
	}{
		{name: "defaults", want: []string{"architecture", "backups", "option-dry-run"}},
		{
			name: "custom",
			opts: topics.Options{Extensions: []string{".txt", ".md", ".txxt"}},
			want: []string{"architecture", "backups", "config", "option-dry-run"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm := topics.NewWithOptions(topicFS(), tt.opts)
			require.NoError(t, tm.Load())
			assert.Equal(t, tt.want, tm.ListTopics())
		})
	}
}

func TestGetTopic(t *testing.T) {
	tm := topics.New(topicFS())
	require.NoError(t, tm.Load())

	tests := []struct {
		input  string
		want   string
		exists bool
	}{
		{"architecture", "architecture", true},
		{"option-dry-run", "option-dry-run", true},
		{"dry-run", "option-dry-run", true},
		{"--dry-run", "option-dry-run", true},
		{"-n", "", false},
		{"nonexistent", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			topic, ok := tm.GetTopic(tt.input)
			assert.Equal(t, tt.exists, ok)
			if ok {
				assert.Equal(t, tt.want, topic.Name)
			}
		})
	}

	topic, _ := tm.GetTopic("backups")
	assert.Equal(t, "Backup help", topic.Content)
	assert.Equal(t, ".txt", topic.Format())
}

func TestLoad_NilFS(t *testing.T) {
	tm := topics.New(nil)
	require.NoError(t, tm.Load())
	assert.Empty(t, tm.ListTopics())
}

func newRoot(t *testing.T) (*cobra.Command, *bytes.Buffer) {
	t.Helper()
	root := &cobra.Command{Use: "testapp", Short: "Test application"}
	root.AddCommand(&cobra.Command{Use: "install", Short: "Install things", Run: func(*cobra.Command, []string) {}})
	out := &bytes.Buffer{}
	root.SetOut(out)
	_, err := topics.Initialize(root, topicFS())
	require.NoError(t, err)
	return root, out
}

func TestHelpCommand_Topic(t *testing.T) {
	root, out := newRoot(t)

	root.SetArgs([]string{"help", "dry-run"})
	require.NoError(t, root.Execute())

	assert.Equal(t, "Dry run help", out.String())
}

func TestHelpCommand_Index(t *testing.T) {
	root, out := newRoot(t)

	root.SetArgs([]string{"help", "topics"})
	require.NoError(t, root.Execute())

	assert.Contains(t, out.String(), "General topics:\n  architecture\n  backups\n")
	assert.Contains(t, out.String(), "Option topics:\n  --dry-run\n")
	assert.Contains(t, out.String(), "Use 'testapp help <topic>'")
}

func TestHelpCommand_FallsBackToCommandHelp(t *testing.T) {
	root, out := newRoot(t)

	root.SetArgs([]string{"help", "install"})
	require.NoError(t, root.Execute())

	assert.Contains(t, out.String(), "Install things")
}
