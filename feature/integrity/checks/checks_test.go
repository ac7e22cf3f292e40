package checks

import (
	"context"
	"errors"
	"testing"

	"texture-manager/core/database"
	"texture-manager/core/texture"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVerifier struct {
	mismatches []database.ColumnMismatch
	err        error
}

func (v fakeVerifier) VerifySchema(context.Context) ([]database.ColumnMismatch, error) {
	return v.mismatches, v.err
}

func TestCheckCatalog(t *testing.T) {
	t.Run("Unconfigured", func(t *testing.T) {
		report, err := CheckCatalog(context.Background(), nil)
		require.NoError(t, err)
		assert.False(t, report.Configured)
		assert.False(t, report.Matched)
	})

	t.Run("Matched", func(t *testing.T) {
		report, err := CheckCatalog(context.Background(), fakeVerifier{})
		require.NoError(t, err)
		assert.True(t, report.Configured)
		assert.True(t, report.Matched)
		assert.Empty(t, report.Mismatches)
	})

	t.Run("Mismatch", func(t *testing.T) {
		report, err := CheckCatalog(context.Background(), fakeVerifier{mismatches: []database.ColumnMismatch{
			{Column: "preload", Expected: "tinyint", Missing: true},
		}})
		require.NoError(t, err)
		assert.False(t, report.Matched)
		assert.Len(t, report.Mismatches, 1)
	})

	t.Run("Error", func(t *testing.T) {
		_, err := CheckCatalog(context.Background(), fakeVerifier{err: errors.New("connection lost")})
		assert.ErrorContains(t, err, "connection lost")
	})
}

func TestCheckResidency(t *testing.T) {
	stats := texture.ManagerStats{
		Worker:  "running",
		Pending: 2,
		Memory:  texture.MemoryStats{BudgetBytes: 1024, UsedBytes: 512, TextureCount: 3},
	}

	report := CheckResidency(stats, []texture.TextureInfo{
		{Key: 1, AssetID: "a.png", State: "resident"},
	})
	assert.True(t, report.Healthy)
	assert.Equal(t, 2, report.Pending)
	assert.Empty(t, report.Failed)

	report = CheckResidency(stats, []texture.TextureInfo{
		{Key: 9, AssetID: "b.png", ColorSpace: "srgb", State: "not_loaded", Error: "decode failed"},
		{Key: 4, AssetID: "c.png", ColorSpace: "linear", State: "not_loaded", Error: "budget exceeded"},
	})
	assert.False(t, report.Healthy)
	require.Len(t, report.Failed, 2)
	assert.Equal(t, "c.png", report.Failed[0].Object)

	stats.Memory.UsedBytes = 2048
	report = CheckResidency(stats, nil)
	assert.True(t, report.OverBudget)
	assert.False(t, report.Healthy)

	report = CheckResidency(texture.ManagerStats{Worker: "stopped"}, nil)
	assert.False(t, report.Healthy)
	assert.False(t, report.OverBudget, "no budget")
}
