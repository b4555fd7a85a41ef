package config

import (
	"io/ioutil"
	"os"

	"gopkg.in/yaml.v2"
)

// AppConfig holds file-based defaults for the example programs.
// Command-line flags override any value set here.
type AppConfig struct {
	AWS struct {
		Region             string `yaml:"region"`
		AccessKey          string `yaml:"accessKey"`
		SecretKey          string `yaml:"secretKey"`
		CredentialsFile    string `yaml:"credentialsFile"`
		CredentialsProfile string `yaml:"credentialsProfile"`
		Retries            int    `yaml:"retries"`
	}
	Queue struct {
		Name     string `yaml:"name"`
		WaitTime int    `yaml:"waitTime"`
	}
	Consumer struct {
		Workers     int    `yaml:"workers"`
		LogLevel    string `yaml:"loglevel"`
		MetricsAddr string `yaml:"metricsAddr"`
	}
	Storage struct {
		DSN string `yaml:"dsn"`
	}
}

// Read loads configuration from path, falling back to the CFG_PATH
// environment variable. An empty path with no CFG_PATH set yields a
// zero-valued config, which is fine when everything comes from flags.
func Read(path string) (*AppConfig, error) {
	if path == "" {
		path = os.Getenv("CFG_PATH")
	}
	cfg := &AppConfig{}
	if path == "" {
		return cfg, nil
	}
	buff, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	err = yaml.Unmarshal(buff, cfg)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}
