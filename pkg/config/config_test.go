package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := &Config{
		DBPath:          "/var/lib/wsd",
		DownloadURLBase: "https://wsd.example.org/dl",
		APIRoot:         "/api",
		TypesFile:       "/etc/wsd/types.txt",
		ShockServer:     "https://shock.example.org",
		HTTPAddr:        ":7000",
	}
	cfg.Mongo = MongoConfig{Host: "localhost:27017", Database: "wsd", ClientThreads: 4}
	ApplyDefaults(cfg)
	return cfg
}

func TestApplyDefaultsFillsZeroValues(t *testing.T) {
	cfg := validConfig()
	require.Equal(t, 3600*time.Second, cfg.DownloadLifetime)
	require.Equal(t, "INFO", cfg.Logging.Level)
	require.Equal(t, "text", cfg.Logging.Format)
	require.Equal(t, 1, cfg.DBLaneWorkers)
	require.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestValidateAcceptsWellFormedConfig(t *testing.T) {
	require.NoError(t, Validate(validConfig()))
}

func TestValidateRejectsMissingDBPath(t *testing.T) {
	cfg := validConfig()
	cfg.DBPath = ""
	require.Error(t, Validate(cfg))
}

func TestValidateRejectsBadShockURL(t *testing.T) {
	cfg := validConfig()
	cfg.ShockServer = "not-a-url"
	require.Error(t, Validate(cfg))
}

func TestSplitAdminListTrimsAndDropsEmpty(t *testing.T) {
	got := splitAdminList(" alice ; bob;;carol ")
	require.Equal(t, []string{"alice", "bob", "carol"}, got)
}

func TestSplitAdminListEmpty(t *testing.T) {
	require.Nil(t, splitAdminList(""))
}
