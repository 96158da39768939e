package config

import (
	"flag"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env      string         `yaml:"env" env-default:"local"`
	HTTP     HTTPConfig     `yaml:"http"`
	Upstream UpstreamConfig `yaml:"upstream"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Admin    AdminConfig    `yaml:"admin"`
}

type HTTPConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port" env-default:"8090"`
}

// UpstreamConfig points at the hotels service. BaseURL may be a relative
// path (when a reverse proxy fronts the API); MediaOrigin is the origin the
// uploaded photos are actually served from and is only consulted when
// BaseURL carries no origin of its own.
type UpstreamConfig struct {
	BaseURL     string `yaml:"base_url" env-required:"true"`
	MediaOrigin string `yaml:"media_origin" env-default:"http://localhost:8080"`
}

type CatalogConfig struct {
	PageSize           int `yaml:"page_size" env-default:"10"`
	HydrateConcurrency int `yaml:"hydrate_concurrency" env-default:"4"`
}

type AdminConfig struct {
	CredentialsFile string `yaml:"credentials_file" env-default:"data/admin_basic.json"`
}

func MustLoad() *Config {
	path := fetchConfigPath()
	if path == "" {
		panic("config path is empty")
	}

	return MustLoadPath(path)
}

func MustLoadPath(configPath string) *Config {
	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		panic("cannot read config: " + err.Error())
	}

	return &cfg
}

func fetchConfigPath() string {
	var res string

	// --config="path/to/config.yaml"
	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	return res
}
