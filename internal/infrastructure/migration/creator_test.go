package migration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add payout batches", "add_payout_batches"},
		{"Add-Message-Logs", "add_message_logs"},
		{"ADD_ERP_ORDERS", "add_erp_orders"},
		{"add__sales__index", "add_sales_index"},
		{"Royalty 2025", "royalty_2025"},
		{"   spaces   ", "spaces"},
		{"nf-e!@#$xml", "nf_exml"},
		{"trailing_", "trailing"},
		{"_leading", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration_NumbersSequentially(t *testing.T) {
	dir := t.TempDir()

	first, err := CreateMigration(dir, "client profiles", "pricing tables")
	require.NoError(t, err)
	assert.Equal(t, uint(1), first.Version)
	assert.Equal(t, "000001_client_profiles", first.Base())

	second, err := CreateMigration(dir, "sales", "")
	require.NoError(t, err)
	assert.Equal(t, uint(2), second.Version)
	assert.Equal(t, filepath.Join(dir, "000002_sales.up.sql"), second.UpPath)
	assert.Equal(t, filepath.Join(dir, "000002_sales.down.sql"), second.DownPath)

	up, err := os.ReadFile(first.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "-- client_profiles")
	assert.Contains(t, string(up), "-- pricing tables")

	down, err := os.ReadFile(second.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "Rollback sales")
}

func TestCreateMigration_ContinuesAfterExisting(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "000007_payments.up.sql"), []byte("--"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "000007_payments.down.sql"), []byte("--"), 0o644))

	mf, err := CreateMigration(dir, "payments state index", "")
	require.NoError(t, err)
	assert.Equal(t, uint(8), mf.Version)
}

func TestCreateMigration_CreatesDirectory(t *testing.T) {
	nested := filepath.Join(t.TempDir(), "nested", "migrations")

	_, err := CreateMigration(nested, "init", "")
	require.NoError(t, err)

	info, err := os.Stat(nested)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestCreateMigration_InvalidName(t *testing.T) {
	_, err := CreateMigration(t.TempDir(), "!!!", "")
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestListMigrations(t *testing.T) {
	dir := t.TempDir()
	for _, f := range []string{
		"000003_integration.up.sql",
		"000003_integration.down.sql",
		"000001_pricing.up.sql",
		"000001_pricing.down.sql",
		"000002_commission.up.sql",
		"000002_commission.down.sql",
		"README.md",
		".gitkeep",
		"notes.up.sql",
		"v2_bad.up.sql",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, f), []byte("-- test"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "000009_dir.up.sql"), 0o755))

	files, err := ListMigrations(dir)
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.Equal(t, "000001_pricing", files[0].Base())
	assert.Equal(t, "000002_commission", files[1].Base())
	assert.Equal(t, "000003_integration", files[2].Base())
}

func TestListMigrations_MissingDirectory(t *testing.T) {
	files, err := ListMigrations(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	assert.Empty(t, files)
}

// The shipped migrations must be contiguous and paired.
func TestShippedMigrations(t *testing.T) {
	dir := filepath.Join("..", "..", "..", "migrations")
	files, err := ListMigrations(dir)
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for i, f := range files {
		assert.Equal(t, uint(i+1), f.Version, f.Base())
		_, err := os.Stat(f.DownPath)
		assert.NoError(t, err, "missing down file for %s", f.Base())
	}
}
