package container

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gotasks/domain/core"
	"gotasks/domain/mapping"
	"gotasks/domain/sheet"
	"gotasks/internal/config"
	apperrors "gotasks/internal/errors"
	"gotasks/internal/importer"
)

func testConfig() *config.Config {
	return &config.Config{
		Import: config.ImportConfig{
			SampleRows:         10,
			MaxUploadMB:        20,
			MaxReturnedTasks:   200,
			FuzzyMinSimilarity: 0.6,
		},
		Metrics: config.MetricsConfig{Enabled: true},
	}
}

func TestNewRequiresConfig(t *testing.T) {
	_, err := New(nil, nil)
	assert.Error(t, err)
}

func TestInitInMemory(t *testing.T) {
	c, err := New(testConfig(), nil)
	require.NoError(t, err)
	require.NotNil(t, c.Metrics)

	repo := c.InitInMemory()
	require.NotNil(t, c.ImportService)
	require.NotNil(t, c.TaskService)

	report, err := c.ImportService.Import(context.Background(), importer.Request{
		UserID:   core.DefaultUserID,
		Headers:  []string{"Task"},
		Rows:     []sheet.Row{{sheet.Text("Buy milk")}},
		Mappings: mapping.Confirmation{"Task": mapping.FieldTitle},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Imported)
	assert.Equal(t, 1, repo.Len())

	assert.NoError(t, c.HealthCheck(context.Background()))
}

func TestMetricsDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Metrics.Enabled = false

	c, err := New(cfg, nil)
	require.NoError(t, err)
	assert.Nil(t, c.Metrics)
}

func TestInitWithDatabaseRequiresDB(t *testing.T) {
	c, err := New(testConfig(), nil)
	require.NoError(t, err)
	assert.Error(t, c.InitWithDatabase(nil))
}

func TestSheetFetchWired(t *testing.T) {
	c, err := New(testConfig(), nil)
	require.NoError(t, err)
	require.NotNil(t, c.FetchService)

	_, err = c.FetchService.Fetch(context.Background(), sheet.RemoteRequest{SpreadsheetID: "abc123"})
	assert.Equal(t, apperrors.CodeUnauthorized, apperrors.GetCode(err))
}
