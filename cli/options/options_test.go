package options

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/statecommit/balance-mpt/pkg/config"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli"
	"go.uber.org/zap/zapcore"
)

func TestGetConfigFromContext(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		set := flag.NewFlagSet("flagSet", flag.ExitOnError)
		ctx := cli.NewContext(cli.NewApp(), set, nil)
		cfg, err := GetConfigFromContext(ctx)
		require.NoError(t, err)
		require.Equal(t, config.Default(), cfg)
	})
	t.Run("file", func(t *testing.T) {
		p := filepath.Join(t.TempDir(), "config.yml")
		require.NoError(t, os.WriteFile(p, []byte("ApplicationConfiguration:\n  Trie:\n    History: 3\n"), 0644))
		set := flag.NewFlagSet("flagSet", flag.ExitOnError)
		set.String("config-file", p, "")
		ctx := cli.NewContext(cli.NewApp(), set, nil)
		cfg, err := GetConfigFromContext(ctx)
		require.NoError(t, err)
		require.Equal(t, 3, cfg.ApplicationConfiguration.Trie.History)
	})
}

func TestHandleLoggingParams(t *testing.T) {
	d := t.TempDir()
	testLog := filepath.Join(d, "file.log")

	t.Run("logdir is a file", func(t *testing.T) {
		logfile := filepath.Join(d, "logdir")
		require.NoError(t, os.WriteFile(logfile, []byte{1, 2, 3}, os.ModePerm))
		cfg := config.ApplicationConfiguration{
			LogPath: filepath.Join(logfile, "file.log"),
		}
		_, lvl, err := HandleLoggingParams(false, cfg)
		require.Error(t, err)
		require.Nil(t, lvl)
	})

	t.Run("invalid level", func(t *testing.T) {
		cfg := config.ApplicationConfiguration{
			LogPath:  testLog,
			LogLevel: "qwerty",
		}
		_, lvl, err := HandleLoggingParams(false, cfg)
		require.Error(t, err)
		require.Nil(t, lvl)
	})

	t.Run("default", func(t *testing.T) {
		cfg := config.ApplicationConfiguration{
			LogPath: testLog,
		}
		logger, lvl, err := HandleLoggingParams(false, cfg)
		require.NoError(t, err)
		t.Cleanup(func() { _ = logger.Sync() })
		require.Equal(t, zapcore.InfoLevel, lvl.Level())

		logger.Info("written")
		require.FileExists(t, testLog)
	})

	t.Run("warn", func(t *testing.T) {
		cfg := config.ApplicationConfiguration{
			LogPath:  testLog,
			LogLevel: "warn",
		}
		logger, lvl, err := HandleLoggingParams(false, cfg)
		require.NoError(t, err)
		t.Cleanup(func() { _ = logger.Sync() })
		require.Equal(t, zapcore.WarnLevel, lvl.Level())
	})

	t.Run("debug", func(t *testing.T) {
		cfg := config.ApplicationConfiguration{
			LogPath:  testLog,
			LogLevel: "warn",
		}
		logger, lvl, err := HandleLoggingParams(true, cfg)
		require.NoError(t, err)
		t.Cleanup(func() { _ = logger.Sync() })
		require.Equal(t, zapcore.DebugLevel, lvl.Level())
	})
}
