package config

import (
	"bufio"
	"errors"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

// Config stores all configuration for the application. The values are read
// by viper from a config file or environment variables. Everything here is
// wiring; none of it carries pipeline logic.
type Config struct {
	URLs     []string `mapstructure:"urls"`
	URLsFile string   `mapstructure:"urls_file"`

	DataDir    string `mapstructure:"data_dir"`
	ArchiveDir string `mapstructure:"archive_dir"`
	Watchlist  string `mapstructure:"watchlist"`

	Fetch FetchConfig `mapstructure:"fetch"`

	// RunLock enables the optional sentinel-file check that refuses to
	// start while a prior run's lock is still present.
	RunLock bool `mapstructure:"run_lock"`
}

// FetchConfig tunes the page-fetching collaborator.
type FetchConfig struct {
	Threads        int    `mapstructure:"threads"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	UserAgent      string `mapstructure:"user_agent"`
	CacheDir       string `mapstructure:"cache_dir"`
}

// LoadConfig reads config.yaml from path, with environment variables
// (SALEWATCH_DATA_DIR, SALEWATCH_FETCH_THREADS, ...) taking precedence.
// A missing config file is not an error; defaults apply.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetDefault("data_dir", "./data")
	v.SetDefault("archive_dir", "./data/archive")
	v.SetDefault("fetch.threads", 2)
	v.SetDefault("fetch.timeout_seconds", 20)
	v.SetDefault("fetch.user_agent", defaultUserAgent)
	v.SetDefault("run_lock", false)

	v.SetEnvPrefix("salewatch")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// TargetURLs merges the inline URL list with the optional one-per-line
// URLs file. Blank lines and #-comments are skipped.
func (c Config) TargetURLs() ([]string, error) {
	urls := append([]string(nil), c.URLs...)
	if c.URLsFile == "" {
		return urls, nil
	}

	f, err := os.Open(c.URLsFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return urls, nil
}
