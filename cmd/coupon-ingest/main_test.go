package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/bits-and-blooms/bloom/v3"
	pgzip "github.com/klauspost/pgzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeGzFile(t *testing.T, dir, name string, codes []string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)

	gz := pgzip.NewWriter(f)
	for _, code := range codes {
		_, err := gz.Write([]byte(code + "\n"))
		require.NoError(t, err)
	}
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())
	return path
}

func TestFindValidCodes(t *testing.T) {
	dir := t.TempDir()

	// ALLTHREE appears in every file, TWOFILES in two, LONESOME in one.
	// short and waytoolongcode fall outside the accepted length range.
	files := []string{
		writeGzFile(t, dir, "couponbase1.gz", []string{"ALLTHREE", "TWOFILES", "short"}),
		writeGzFile(t, dir, "couponbase2.gz", []string{"ALLTHREE", "TWOFILES", "LONESOME"}),
		writeGzFile(t, dir, "couponbase3.gz", []string{"ALLTHREE", "waytoolongcode"}),
	}

	ctx := context.Background()

	// Small filters instead of buildBloomFilters: the production capacity
	// is sized for 100M+ codes and allocates far too much for a unit test.
	filters := make([]*bloom.BloomFilter, len(files))
	for i, path := range files {
		filters[i] = bloom.NewWithEstimates(1000, bloomFPR)
		require.NoError(t, streamGzFile(ctx, path, func(code string) {
			if len(code) >= minCodeLen && len(code) <= maxCodeLen {
				filters[i].AddString(code)
			}
		}))
	}

	valid, err := findValidCodes(ctx, files, filters)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"ALLTHREE", "TWOFILES"}, valid)
}

func TestStreamGzFileCancelled(t *testing.T) {
	dir := t.TempDir()
	path := writeGzFile(t, dir, "codes.gz", []string{"ALLTHREE"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := streamGzFile(ctx, path, func(string) {})
	require.ErrorIs(t, err, context.Canceled)
}
