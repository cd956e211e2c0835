package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const (
	defaultListenAddr    = ":3001"
	defaultRPCURL        = "https://eth.llamarpc.com"
	defaultETHPriceUSD   = "3500"
	defaultLLMEndpoint   = "http://localhost:11434/api/generate"
	defaultLLMModel      = "qwen2.5:0.5b"
	defaultLLMTimeout    = 15 * time.Second
	defaultLLMRetries    = 2
	defaultHistoryCap    = 50
	defaultWatchInterval = time.Hour
)

// LLM configures the generative backend used by the risk, planner and
// governance stages.
type LLM struct {
	Enabled     bool
	Endpoint    string
	Model       string
	Temperature float64
	TopP        float64
	Timeout     time.Duration
	MaxRetries  int
}

// Watch configures scheduled scans of a fixed set of addresses.
type Watch struct {
	Addresses []string
	Interval  time.Duration
}

// Config is the resolved service configuration.
type Config struct {
	ListenAddr      string
	RPCURL          string
	ETHPriceUSD     decimal.Decimal
	LLM             LLM
	HistoryCapacity int
	Watch           Watch
	TLSDomains      []string
	TLSCacheDir     string
}

// ConfigTmp mirrors the yaml file layout before validation.
type ConfigTmp struct {
	ListenAddr     string        `yaml:"listen_addr,omitempty"`
	RPCURL         string        `yaml:"rpc_url,omitempty"`
	ETHPriceUSDStr string        `yaml:"eth_price_usd,omitempty"`
	LLMEnabled     *bool         `yaml:"llm_enabled,omitempty"`
	LLMEndpoint    string        `yaml:"llm_endpoint,omitempty"`
	LLMModel       string        `yaml:"llm_model,omitempty"`
	TemperatureStr string        `yaml:"llm_temperature,omitempty"`
	TopPStr        string        `yaml:"llm_top_p,omitempty"`
	LLMTimeout     time.Duration `yaml:"llm_timeout,omitempty"`
	LLMRetriesStr  string        `yaml:"llm_retries,omitempty"`
	HistoryCapStr  string        `yaml:"history_capacity,omitempty"`
	WatchAddresses []string      `yaml:"watch_addresses,omitempty"`
	WatchInterval  time.Duration `yaml:"watch_interval,omitempty"`
	TLSDomains     []string      `yaml:"tls_domains,omitempty"`
	TLSCacheDir    string        `yaml:"tls_cache_dir,omitempty"`
}

// Get resolves configuration from --config yaml when given, otherwise from
// flags and environment variables.
func Get() (Config, error) {
	configPath := flag.String("config", "", "path to yaml config")
	listen := flag.String("listen", "", "listen address, example: :3001")
	rpcURL := flag.String("rpc-url", "", "Ethereum JSON-RPC endpoint")
	flag.Parse()

	if *configPath != "" {
		return getYaml(*configPath)
	}

	cfg := Defaults()
	if *listen != "" {
		cfg.ListenAddr = *listen
	}
	if *rpcURL != "" {
		cfg.RPCURL = *rpcURL
	}
	applyEnv(&cfg)

	return cfg, nil
}

// Defaults returns the configuration mirroring the reference deployment.
func Defaults() Config {
	price, _ := decimal.NewFromString(defaultETHPriceUSD)
	return Config{
		ListenAddr:  defaultListenAddr,
		RPCURL:      defaultRPCURL,
		ETHPriceUSD: price,
		LLM: LLM{
			Enabled:     true,
			Endpoint:    defaultLLMEndpoint,
			Model:       defaultLLMModel,
			Temperature: 0.3,
			TopP:        0.8,
			Timeout:     defaultLLMTimeout,
			MaxRetries:  defaultLLMRetries,
		},
		HistoryCapacity: defaultHistoryCap,
		Watch: Watch{
			Interval: defaultWatchInterval,
		},
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.ListenAddr = ":" + v
	}
	if v := os.Getenv("RPC_URL"); v != "" {
		cfg.RPCURL = v
	}
	if v := os.Getenv("LLM_ENDPOINT"); v != "" {
		cfg.LLM.Endpoint = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("LLM_ENABLED"); v != "" {
		cfg.LLM.Enabled = v == "true" || v == "1"
	}
}

func getYaml(path string) (Config, error) {
	var tmp ConfigTmp

	f, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(f, &tmp); err != nil {
		return Config{}, err
	}

	cfg := Defaults()

	if tmp.ListenAddr != "" {
		cfg.ListenAddr = tmp.ListenAddr
	}
	if tmp.RPCURL != "" {
		cfg.RPCURL = tmp.RPCURL
	}
	if tmp.ETHPriceUSDStr != "" {
		price, err := decimal.NewFromString(tmp.ETHPriceUSDStr)
		if err != nil {
			return Config{}, fmt.Errorf("incorrect 'eth_price_usd' param in yaml config (must be a decimal), error: %w", err)
		}
		if price.LessThanOrEqual(decimal.Zero) {
			return Config{}, fmt.Errorf("incorrect 'eth_price_usd' param in yaml config: must be positive")
		}
		cfg.ETHPriceUSD = price
	}

	if tmp.LLMEnabled != nil {
		cfg.LLM.Enabled = *tmp.LLMEnabled
	}
	if tmp.LLMEndpoint != "" {
		cfg.LLM.Endpoint = tmp.LLMEndpoint
	}
	if tmp.LLMModel != "" {
		cfg.LLM.Model = tmp.LLMModel
	}
	if tmp.TemperatureStr != "" {
		t, err := strconv.ParseFloat(tmp.TemperatureStr, 64)
		if err != nil {
			return Config{}, fmt.Errorf("incorrect 'llm_temperature' param in yaml config, error: %w", err)
		}
		cfg.LLM.Temperature = t
	}
	if tmp.TopPStr != "" {
		t, err := strconv.ParseFloat(tmp.TopPStr, 64)
		if err != nil {
			return Config{}, fmt.Errorf("incorrect 'llm_top_p' param in yaml config, error: %w", err)
		}
		cfg.LLM.TopP = t
	}
	if tmp.LLMTimeout > 0 {
		cfg.LLM.Timeout = tmp.LLMTimeout
	}
	if tmp.LLMRetriesStr != "" {
		retries, err := strconv.Atoi(tmp.LLMRetriesStr)
		if err != nil || retries <= 0 {
			return Config{}, fmt.Errorf("incorrect 'llm_retries' param in yaml config (must be a positive integer)")
		}
		cfg.LLM.MaxRetries = retries
	}
	if tmp.HistoryCapStr != "" {
		capacity, err := strconv.Atoi(tmp.HistoryCapStr)
		if err != nil || capacity <= 0 {
			return Config{}, fmt.Errorf("incorrect 'history_capacity' param in yaml config (must be a positive integer)")
		}
		cfg.HistoryCapacity = capacity
	}

	for _, addr := range tmp.WatchAddresses {
		addr = strings.TrimSpace(addr)
		if addr == "" {
			return Config{}, fmt.Errorf("incorrect 'watch_addresses' param in yaml config: empty address")
		}
		cfg.Watch.Addresses = append(cfg.Watch.Addresses, addr)
	}
	if tmp.WatchInterval > 0 {
		cfg.Watch.Interval = tmp.WatchInterval
	}

	cfg.TLSDomains = tmp.TLSDomains
	cfg.TLSCacheDir = tmp.TLSCacheDir

	applyEnv(&cfg)

	return cfg, nil
}
