package customtokens

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilkoid/poncho-patterns/pkg/tokens"
)

const sampleFile = `# custom tokens
lane|Lane marker|SUFFIX|lanea, laneb ,lanec

gate|Gate id|prefix|g1,g2
broken line
|no name|SUFFIX|x
bad|type|COLOR|red
empty|no examples|SUFFIX| , 
LANE|duplicate|SUFFIX|l1
`

func TestParse(t *testing.T) {
	toks, invalid, err := Parse(strings.NewReader(sampleFile))
	require.NoError(t, err)

	require.Len(t, toks, 2)
	assert.Equal(t, tokens.CustomToken{
		Name:        "lane",
		Description: "Lane marker",
		MappedType:  tokens.TypeSuffix,
		Examples:    []string{"lanea", "laneb", "lanec"},
	}, toks[0])
	assert.Equal(t, tokens.TypePrefix, toks[1].MappedType)

	require.Len(t, invalid, 5)
	assert.Equal(t, 5, invalid[0].Line)
	assert.ErrorIs(t, invalid[0], ErrFieldCount)
	assert.ErrorIs(t, invalid[1], ErrEmptyName)
	assert.ErrorContains(t, invalid[2], "unknown token type")
	assert.ErrorIs(t, invalid[3], ErrNoExamples)
	assert.ErrorIs(t, invalid[4], ErrDuplicateName)
	assert.Contains(t, invalid[4].Error(), "line 9")
}

func TestFormatRoundTrip(t *testing.T) {
	in := []tokens.CustomToken{
		{Name: "lane", Description: "Lane | marker", MappedType: tokens.TypeSuffix, Examples: []string{"a", "b,c"}},
		{Name: "site", MappedType: tokens.TypePrefix, Examples: []string{"north"}},
	}
	var buf bytes.Buffer
	require.NoError(t, Format(&buf, in))

	out, invalid, err := Parse(&buf)
	require.NoError(t, err)
	assert.Empty(t, invalid)
	require.Len(t, out, 2)
	assert.Equal(t, "Lane   marker", out[0].Description)
	assert.Equal(t, []string{"a", "b c"}, out[0].Examples)
	assert.Equal(t, "", out[1].Description)
}

func TestManager(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", DefaultFilename)
	m := NewManager(path)

	invalid, err := m.Load()
	require.NoError(t, err)
	assert.Empty(t, invalid)
	assert.Empty(t, m.Tokens())

	require.NoError(t, m.Add(tokens.CustomToken{Name: "lane", MappedType: tokens.TypeSuffix, Examples: []string{"lanea"}}))
	require.NoError(t, m.Add(tokens.CustomToken{Name: "LANE", MappedType: tokens.TypeSuffix, Examples: []string{"laneb"}}))
	require.NoError(t, m.Add(tokens.CustomToken{Name: "gate", MappedType: tokens.TypePrefix, Examples: []string{"g1"}}))
	assert.Error(t, m.Add(tokens.CustomToken{Name: "x", MappedType: "COLOR", Examples: []string{"red"}}))
	assert.Error(t, m.Add(tokens.CustomToken{Name: "y", MappedType: tokens.TypeSuffix}))
	require.Len(t, m.Tokens(), 2)

	require.NoError(t, m.Save())
	reloaded := NewManager(path)
	_, err = reloaded.Load()
	require.NoError(t, err)
	assert.Equal(t, m.Tokens(), reloaded.Tokens())
	assert.Equal(t, []string{"laneb"}, reloaded.Tokens()[0].Examples)

	require.NoError(t, reloaded.Remove("Gate"))
	assert.ErrorIs(t, reloaded.Remove("gate"), ErrNotFound)
	assert.Len(t, reloaded.Tokens(), 1)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must not be left behind")
}

func TestManagerTokensAreCopies(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), DefaultFilename))
	require.NoError(t, m.Add(tokens.CustomToken{Name: "lane", MappedType: tokens.TypeSuffix, Examples: []string{"lanea"}}))
	got := m.Tokens()
	got[0].Examples[0] = "mutated"
	assert.Equal(t, "lanea", m.Tokens()[0].Examples[0])
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	p, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, DefaultFilename, filepath.Base(p))
	assert.Equal(t, "poncho-patterns", filepath.Base(filepath.Dir(p)))
}

func TestWatchReloadsOnSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFilename)
	require.NoError(t, os.WriteFile(path, []byte("lane|x|SUFFIX|lanea\n"), 0o644))

	m := NewManager(path)
	_, err := m.Load()
	require.NoError(t, err)

	var mu sync.Mutex
	var latest []tokens.CustomToken
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- m.Watch(ctx, func(toks []tokens.CustomToken, _ []*LineError) {
			mu.Lock()
			latest = toks
			mu.Unlock()
		})
	}()

	writer := NewManager(path)
	_, err = writer.Load()
	require.NoError(t, err)
	require.NoError(t, writer.Add(tokens.CustomToken{Name: "gate", MappedType: tokens.TypePrefix, Examples: []string{"g1"}}))

	// Наблюдатель мог ещё не подписаться: пишем, пока он не увидит изменение.
	require.Eventually(t, func() bool {
		if writer.Save() != nil {
			return false
		}
		mu.Lock()
		defer mu.Unlock()
		return len(latest) == 2
	}, 2*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}
