package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnvConfigDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("APP_PORT", "")
	t.Setenv("STORE_BACKEND", "")

	err := LoadEnvConfig()
	assert.Error(t, err, "missing .env is reported")
	require.NotNil(t, DefaultEnvConfig)

	assert.Equal(t, "8080", DefaultEnvConfig.APP_PORT)
	assert.Equal(t, StorePostgres, DefaultEnvConfig.STORE_BACKEND)
	assert.Equal(t, SearchStore, DefaultEnvConfig.SEARCH_BACKEND)
	assert.Equal(t, "*.csv", DefaultEnvConfig.INBOX_PATTERN)
	assert.Equal(t, 20*time.Minute, DefaultEnvConfig.DB_CONN_MAX_LIFETIME)
}

func TestLoadEnvConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	env := "APP_PORT=9090\nSTORE_BACKEND=memory\nDB_PORT=6543\nINBOX_DEBOUNCE=2\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o600))
	for _, k := range []string{"APP_PORT", "STORE_BACKEND", "DB_PORT", "INBOX_DEBOUNCE"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}

	require.NoError(t, LoadEnvConfig())
	assert.Equal(t, "9090", DefaultEnvConfig.APP_PORT)
	assert.Equal(t, StoreMemory, DefaultEnvConfig.STORE_BACKEND)
	assert.Equal(t, 6543, DefaultEnvConfig.DB_PORT)
	assert.Equal(t, 2*time.Second, DefaultEnvConfig.INBOX_DEBOUNCE)
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("CFG_TEST_INT", "not-a-number")
	assert.Equal(t, 5, getEnvInt("CFG_TEST_INT", 5))

	t.Setenv("CFG_TEST_DUR", "1m30s")
	assert.Equal(t, 90*time.Second, getEnvDuration("CFG_TEST_DUR", time.Second))

	assert.Equal(t, "fallback", getEnvString("CFG_TEST_UNSET_KEY", "fallback"))
}

// chdir changes the working directory for the duration of the test,
// restoring it on cleanup (equivalent of testing.T.Chdir on older toolchains).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
