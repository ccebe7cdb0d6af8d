package utils

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWithBuildContextStoresNormalizedValues(t *testing.T) {
	accessor := NewCommandContextAccessor()
	base := context.Background()
	enriched := accessor.WithBuildContext(base, BuildContext{FilePath: "  build.yaml "})

	buildContext, exists := accessor.BuildContext(enriched)
	require.True(t, exists)
	require.Equal(t, "build.yaml", buildContext.FilePath)
}

func TestWithBuildContextSkipsEmptyPath(t *testing.T) {
	accessor := NewCommandContextAccessor()
	base := context.Background()
	enriched := accessor.WithBuildContext(base, BuildContext{FilePath: "   "})

	_, exists := accessor.BuildContext(enriched)
	require.False(t, exists)
}

func TestWithLogLevelIgnoresBlankValues(t *testing.T) {
	accessor := NewCommandContextAccessor()
	base := context.Background()

	_, exists := accessor.LogLevel(accessor.WithLogLevel(base, "  "))
	require.False(t, exists)

	logLevel, exists := accessor.LogLevel(accessor.WithLogLevel(base, " debug "))
	require.True(t, exists)
	require.Equal(t, "debug", logLevel)
}

func TestWithConfigurationFilePathStoresValue(t *testing.T) {
	accessor := NewCommandContextAccessor()
	enriched := accessor.WithConfigurationFilePath(context.Background(), "/etc/reactor/config.yaml")

	configurationFilePath, exists := accessor.ConfigurationFilePath(enriched)
	require.True(t, exists)
	require.Equal(t, "/etc/reactor/config.yaml", configurationFilePath)
}

func TestWithExecutionFlagsStoresValues(t *testing.T) {
	accessor := NewCommandContextAccessor()
	base := context.Background()
	flags := ExecutionFlags{ContinueOnFailure: true, ContinueOnFailureSet: true, Properties: []string{"dist_dir=out"}, PropertiesSet: true}

	enriched := accessor.WithExecutionFlags(base, flags)

	retrieved, exists := accessor.ExecutionFlags(enriched)
	require.True(t, exists)
	require.Equal(t, flags, retrieved)
}

func TestWithExecutionFlagsHandlesMissingContext(t *testing.T) {
	accessor := NewCommandContextAccessor()

	_, exists := accessor.ExecutionFlags(context.Background())
	require.False(t, exists)
}
