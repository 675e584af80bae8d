package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	internal "github.com/duegraph/entitylens/lens"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// ConfigTestSuite tests the config package functionality
type ConfigTestSuite struct {
	suite.Suite
	tempDir string
	origDir string
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (suite *ConfigTestSuite) SetupTest() {
	// viper keeps global state between loads.
	viper.Reset()

	var err error
	suite.origDir, err = os.Getwd()
	require.NoError(suite.T(), err)

	tempDir, err := os.MkdirTemp("", "entitylens-config-test-*")
	require.NoError(suite.T(), err)
	suite.tempDir = tempDir

	// Run in an empty directory so no stray config file is picked up.
	err = os.Chdir(tempDir)
	require.NoError(suite.T(), err)
}

func (suite *ConfigTestSuite) TearDownTest() {
	if suite.origDir != "" {
		os.Chdir(suite.origDir)
	}
	if suite.tempDir != "" {
		os.RemoveAll(suite.tempDir)
	}
}

func (suite *ConfigTestSuite) TestLoadConfigWithDefaults() {
	cfg, err := LoadConfig("")

	require.NoError(suite.T(), err)
	require.NotNil(suite.T(), cfg)

	assert.Equal(suite.T(), 5, cfg.Resolver.PrecheckLimit)
	assert.True(suite.T(), cfg.Resolver.EnableTracing)
	assert.Equal(suite.T(), 200*time.Millisecond, cfg.Suggest.Debounce)
	assert.Equal(suite.T(), 8, cfg.Suggest.Limit)
	assert.Equal(suite.T(), internal.DefaultDirectoryDriver, cfg.Directory.Driver)
	assert.Equal(suite.T(), internal.DefaultDatabasePath, cfg.Directory.DatabasePath)
	assert.Equal(suite.T(), internal.DefaultWatchlistPath, cfg.Screening.WatchlistPath)
	assert.Equal(suite.T(), 5, cfg.Screening.FuzzyLimit)
	assert.Empty(suite.T(), cfg.External.GraphParserURL)
	assert.Equal(suite.T(), 10*time.Second, cfg.External.Timeout)
}

func (suite *ConfigTestSuite) TestLoadConfigWithFile() {
	configContent := `
resolver:
  precheck_limit: 3
  enable_tracing: false
suggest:
  debounce: 50ms
  limit: 4
directory:
  driver: "libsql"
  database_path: "./test.db"
external:
  graph_parser_url: "http://localhost:9901"
  timeout: 2s
`

	configFile := filepath.Join(suite.tempDir, "config.yaml")
	err := os.WriteFile(configFile, []byte(configContent), 0o644)
	require.NoError(suite.T(), err)

	cfg, err := LoadConfig(configFile)

	require.NoError(suite.T(), err)
	require.NotNil(suite.T(), cfg)

	assert.Equal(suite.T(), 3, cfg.Resolver.PrecheckLimit)
	assert.False(suite.T(), cfg.Resolver.EnableTracing)
	assert.Equal(suite.T(), 50*time.Millisecond, cfg.Suggest.Debounce)
	assert.Equal(suite.T(), 4, cfg.Suggest.Limit)
	assert.Equal(suite.T(), "libsql", cfg.Directory.Driver)
	assert.Equal(suite.T(), "./test.db", cfg.Directory.DatabasePath)
	assert.Equal(suite.T(), "http://localhost:9901", cfg.External.GraphParserURL)
	assert.Equal(suite.T(), 2*time.Second, cfg.External.Timeout)

	// Unset sections keep their defaults.
	assert.Equal(suite.T(), internal.DefaultWatchlistPath, cfg.Screening.WatchlistPath)
}

func (suite *ConfigTestSuite) TestLoadConfigInvalidFile() {
	cfg, err := LoadConfig("/nonexistent/path/config.yaml")

	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), cfg)
}

func (suite *ConfigTestSuite) TestLoadConfigMalformedFile() {
	malformedContent := `
resolver:
  precheck_limit: 3
  invalid_yaml: [unclosed bracket
`

	configFile := filepath.Join(suite.tempDir, "malformed.yaml")
	err := os.WriteFile(configFile, []byte(malformedContent), 0o644)
	require.NoError(suite.T(), err)

	cfg, err := LoadConfig(configFile)

	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), cfg)
}

func (suite *ConfigTestSuite) TestAppConfigGlobal() {
	cfg, err := LoadConfig("")
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), cfg.Directory.Driver, AppConfig.Directory.Driver)
}
