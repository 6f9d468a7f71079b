package cache

import (
	"path/filepath"
	"testing"

	"github.com/dekarrin/ebnfgen/internal/bootstrap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const smallGrammar = `
	expr = NUMBER { "+" NUMBER }
	NUMBER = /[0-9]+/
`

func Test_Key_Stable(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(Key(smallGrammar), Key(smallGrammar))
	assert.NotEqual(Key(smallGrammar), Key(smallGrammar+" "))
}

func Test_SaveLoad_RoundTrip(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	gen, err := bootstrap.Compile(smallGrammar)
	require.NoError(err)

	dir := t.TempDir()
	path := filepath.Join(dir, Key(smallGrammar)+".ebnfcache")
	require.NoError(Save(path, gen))

	loaded, err := Load(path)
	require.NoError(err)

	assert.Equal(gen.Grammar.Start.Name(), loaded.Grammar.Start.Name())
	assert.Equal(len(gen.Grammar.Rules), len(loaded.Grammar.Rules))
	assert.Equal(len(gen.TokenRules.Rules), len(loaded.TokenRules.Rules))
	assert.Nil(loaded.Tree)
}
