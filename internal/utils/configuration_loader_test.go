package utils_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/corpusforge/gitcorpus/internal/utils"
)

const (
	testLoaderConfigurationNameConstant   = "config"
	testLoaderConfigurationTypeConstant   = "yaml"
	testLoaderEnvironmentPrefixConstant   = "GITCORPUSTEST"
	testLoaderConfigurationFileConstant   = "config.yaml"
	testLoaderFileContentConstant         = "common:\n  log_level: debug\n"
	testLoaderMalformedContentConstant    = "common: [unbalanced"
	testLoaderEnvironmentKeyConstant      = "GITCORPUSTEST_COMMON_LOG_FORMAT"
	testLoaderEnvironmentValueConstant    = "console"
	testLoaderDefaultLogLevelConstant     = "info"
	testLoaderDefaultLogFormatConstant    = "structured"
	testLoaderLogLevelDefaultKeyConstant  = "common.log_level"
	testLoaderLogFormatDefaultKeyConstant = "common.log_format"
)

type loaderTestConfiguration struct {
	Common struct {
		LogLevel  string `mapstructure:"log_level"`
		LogFormat string `mapstructure:"log_format"`
	} `mapstructure:"common"`
}

func newTestConfigurationLoader() *utils.ConfigurationLoader {
	return utils.NewConfigurationLoader(
		testLoaderConfigurationNameConstant,
		testLoaderConfigurationTypeConstant,
		testLoaderEnvironmentPrefixConstant,
		nil,
	)
}

func defaultLoaderValues() map[string]any {
	return map[string]any{
		testLoaderLogLevelDefaultKeyConstant:  testLoaderDefaultLogLevelConstant,
		testLoaderLogFormatDefaultKeyConstant: testLoaderDefaultLogFormatConstant,
	}
}

func TestLoadConfigurationAppliesDefaultsWithoutFile(testInstance *testing.T) {
	var loadedValues loaderTestConfiguration

	loadedMetadata, loadError := newTestConfigurationLoader().LoadConfiguration("", defaultLoaderValues(), &loadedValues)
	require.NoError(testInstance, loadError)
	require.Empty(testInstance, loadedMetadata.ConfigFileUsed)
	require.Equal(testInstance, testLoaderDefaultLogLevelConstant, loadedValues.Common.LogLevel)
	require.Equal(testInstance, testLoaderDefaultLogFormatConstant, loadedValues.Common.LogFormat)
}

func TestLoadConfigurationReadsFileOverDefaults(testInstance *testing.T) {
	configurationFilePath := filepath.Join(testInstance.TempDir(), testLoaderConfigurationFileConstant)
	require.NoError(testInstance, os.WriteFile(configurationFilePath, []byte(testLoaderFileContentConstant), 0o644))

	var loadedValues loaderTestConfiguration

	loadedMetadata, loadError := newTestConfigurationLoader().LoadConfiguration(configurationFilePath, defaultLoaderValues(), &loadedValues)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, configurationFilePath, loadedMetadata.ConfigFileUsed)
	require.Equal(testInstance, "debug", loadedValues.Common.LogLevel)
	require.Equal(testInstance, testLoaderDefaultLogFormatConstant, loadedValues.Common.LogFormat)
}

func TestLoadConfigurationHonorsEnvironmentOverrides(testInstance *testing.T) {
	testInstance.Setenv(testLoaderEnvironmentKeyConstant, testLoaderEnvironmentValueConstant)

	var loadedValues loaderTestConfiguration

	_, loadError := newTestConfigurationLoader().LoadConfiguration("", defaultLoaderValues(), &loadedValues)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, testLoaderEnvironmentValueConstant, loadedValues.Common.LogFormat)
}

func TestLoadConfigurationReportsMalformedFile(testInstance *testing.T) {
	configurationFilePath := filepath.Join(testInstance.TempDir(), testLoaderConfigurationFileConstant)
	require.NoError(testInstance, os.WriteFile(configurationFilePath, []byte(testLoaderMalformedContentConstant), 0o644))

	var loadedValues loaderTestConfiguration

	_, loadError := newTestConfigurationLoader().LoadConfiguration(configurationFilePath, defaultLoaderValues(), &loadedValues)
	require.Error(testInstance, loadError)
	require.Contains(testInstance, loadError.Error(), "failed to read configuration")
}
