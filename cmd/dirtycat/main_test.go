package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestSetupLogger(t *testing.T) {
	newApp := func() *cli.App {
		return &cli.App{
			Name: "test",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "log-level",
					Aliases: []string{"l"},
					Value:   "info",
				},
			},
			Before: setupLogger,
			Action: func(c *cli.Context) error {
				return nil
			},
		}
	}

	t.Run("valid log levels", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "error"} {
			t.Run(level, func(t *testing.T) {
				err := newApp().Run([]string{"test", "--log-level", level})
				require.NoError(t, err)
			})
		}
	})

	t.Run("case insensitive log levels", func(t *testing.T) {
		for _, level := range []string{"DEBUG", "Info", "WaRn", "ERROR"} {
			t.Run(level, func(t *testing.T) {
				err := newApp().Run([]string{"test", "--log-level", level})
				require.NoError(t, err)
			})
		}
	})

	t.Run("invalid log level returns error", func(t *testing.T) {
		err := newApp().Run([]string{"test", "--log-level", "verbose"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})

	t.Run("log-level flag has alias -l", func(t *testing.T) {
		err := newApp().Run([]string{"test", "-l", "debug"})
		require.NoError(t, err)
	})
}

func TestReadValues(t *testing.T) {
	t.Run("reads one value per line", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "values.txt")
		require.NoError(t, os.WriteFile(path, []byte("london\nlondom\nparis\n"), 0644))

		values, err := readValues(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"london", "londom", "paris"}, values)
	})

	t.Run("keeps blank lines", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "values.txt")
		require.NoError(t, os.WriteFile(path, []byte("a\n\nb\n"), 0644))

		values, err := readValues(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "", "b"}, values)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := readValues(filepath.Join(t.TempDir(), "nope.txt"))
		assert.Error(t, err)
	})
}

func TestCountClusters(t *testing.T) {
	assert.Equal(t, 0, countClusters(nil))
	assert.Equal(t, 2, countClusters([]int{1, 2, 1, 2}))
}

func TestFitEncodeRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "db")
	inputPath := filepath.Join(tmpDir, "values.txt")
	require.NoError(t, os.WriteFile(inputPath,
		[]byte("london\nlondom\nparis\npariss\ntokyo\n"), 0644))

	t.Run("fit agglomerative", func(t *testing.T) {
		err := run([]string{"dirtycat", "fit",
			"--db", dbPath,
			"--name", "cities",
			"--input", inputPath,
			"--threshold", "3"})
		require.NoError(t, err)
	})

	t.Run("encode with the stored model", func(t *testing.T) {
		err := run([]string{"dirtycat", "encode",
			"--db", dbPath,
			"--name", "cities",
			"--input", inputPath})
		require.NoError(t, err)
	})

	t.Run("clusters listing", func(t *testing.T) {
		err := run([]string{"dirtycat", "clusters",
			"--db", dbPath,
			"--name", "cities"})
		require.NoError(t, err)
	})

	t.Run("models list and delete", func(t *testing.T) {
		require.NoError(t, run([]string{"dirtycat", "models", "list", "--db", dbPath}))
		require.NoError(t, run([]string{"dirtycat", "models", "delete", "--db", dbPath, "--name", "cities"}))

		err := run([]string{"dirtycat", "clusters", "--db", dbPath, "--name", "cities"})
		assert.Error(t, err)
	})

	t.Run("missing model", func(t *testing.T) {
		err := run([]string{"dirtycat", "encode",
			"--db", dbPath,
			"--name", "nope",
			"--input", inputPath})
		assert.Error(t, err)
	})
}

func TestFitDistanceKind(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "db")
	inputPath := filepath.Join(tmpDir, "values.txt")
	require.NoError(t, os.WriteFile(inputPath,
		[]byte("london\nlondom\nparis\npariss\ntokyo\n"), 0644))

	require.NoError(t, run([]string{"dirtycat", "fit",
		"--db", dbPath,
		"--name", "cities-proj",
		"--input", inputPath,
		"--kind", "distance",
		"--components", "2"}))

	require.NoError(t, run([]string{"dirtycat", "encode",
		"--db", dbPath,
		"--name", "cities-proj",
		"--input", inputPath}))
}

func TestFitInvalidKind(t *testing.T) {
	tmpDir := t.TempDir()
	inputPath := filepath.Join(tmpDir, "values.txt")
	require.NoError(t, os.WriteFile(inputPath, []byte("a\nb\n"), 0644))

	err := run([]string{"dirtycat", "fit",
		"--db", filepath.Join(tmpDir, "db"),
		"--name", "x",
		"--input", inputPath,
		"--kind", "onehot"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid kind")
}
