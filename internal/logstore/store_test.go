package logstore

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStoreCreateReturnsUniqueExistingFile(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)

	at := time.Date(2026, 2, 16, 3, 0, 1, 0, time.UTC)
	path, err := s.Create(at)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, int64(0), info.Size())

	path2, err := s.Create(at)
	require.NoError(t, err)
	require.NotEqual(t, path, path2)
}

func TestAppendThenReadAllRoundTrips(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)

	path, err := s.Create(time.Now())
	require.NoError(t, err)

	require.NoError(t, s.Append(path, "hello", time.Now().UTC()))
	require.NoError(t, s.Append(path, "world\r\n", time.Now().UTC()))

	res, err := s.Read(path, NewAllFilter())
	require.NoError(t, err)
	require.Equal(t, 2, res.TotalRecords)
	require.Equal(t, 2, res.ReturnedRecords)
	require.Equal(t, "hello\nworld", res.TextBody)
}

func TestReadLastNClampsToAvailable(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	path, err := s.Create(time.Now())
	require.NoError(t, err)

	for _, line := range []string{"a", "b", "c"} {
		require.NoError(t, s.Append(path, line, time.Now().UTC()))
	}

	filter, err := NewLastNFilter(100)
	require.NoError(t, err)
	res, err := s.Read(path, filter)
	require.NoError(t, err)
	require.Equal(t, 3, res.ReturnedRecords)
	require.Equal(t, "a\nb\nc", res.TextBody)

	filter, err = NewLastNFilter(2)
	require.NoError(t, err)
	res, err = s.Read(path, filter)
	require.NoError(t, err)
	require.Equal(t, "b\nc", res.TextBody)
}

func TestReadEmptyFileLinesFilter(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	path, err := s.Create(time.Now())
	require.NoError(t, err)

	filter, err := NewLastNFilter(1)
	require.NoError(t, err)
	res, err := s.Read(path, filter)
	require.NoError(t, err)
	require.Equal(t, 0, res.TotalRecords)
	require.Equal(t, "", res.TextBody)
}

func TestReadSinceSeconds(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	path, err := s.Create(time.Now())
	require.NoError(t, err)

	old := time.Now().UTC().Add(-10 * time.Second)
	require.NoError(t, s.Append(path, "stale", old))
	require.NoError(t, s.Append(path, "fresh", time.Now().UTC()))

	filter, err := NewSinceSecondsFilter(2)
	require.NoError(t, err)
	res, err := s.Read(path, filter)
	require.NoError(t, err)
	require.Equal(t, "fresh", res.TextBody)
}

func TestReadSkipsMalformedTail(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	path, err := s.Create(time.Now())
	require.NoError(t, err)

	require.NoError(t, s.Append(path, "good", time.Now().UTC()))

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString(`{"timestamp":"2026-0`)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	res, err := s.Read(path, NewAllFilter())
	require.NoError(t, err)
	require.Equal(t, 1, res.TotalRecords)
	require.Equal(t, "good", res.TextBody)
}

func TestReadMissingFile(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)

	_, err := s.Read(filepath.Join(dir, "nope.log"), NewAllFilter())
	require.ErrorIs(t, err, ErrNotFound)
}
