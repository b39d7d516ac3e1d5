package store

import (
	"fmt"
	"net/url"

	"github.com/kelseyhightower/envconfig"
)

func NewConfig() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

type Config struct {
	DatabaseName string `envconfig:"TESTORDERS_STORE_DATABASE" default:"testorders"`
	Hosts        string `envconfig:"TESTORDERS_STORE_ADDRESSES" default:"localhost"`
	OptParams    string `envconfig:"TESTORDERS_STORE_OPT_PARAMS"`
	Password     string `envconfig:"TESTORDERS_STORE_PASSWORD"`
	Scheme       string `envconfig:"TESTORDERS_STORE_SCHEME" default:"mongodb"`
	Ssl          bool   `envconfig:"TESTORDERS_STORE_TLS"`
	User         string `envconfig:"TESTORDERS_STORE_USERNAME"`
}

func (c *Config) GetConnectionString() (string, error) {
	cs := url.URL{
		Scheme: c.Scheme,
		Host:   c.Hosts,
		Path:   "/",
	}
	if cs.Scheme == "" {
		cs.Scheme = "mongodb"
	}
	if cs.Host == "" {
		cs.Host = "localhost"
	}
	if c.User != "" {
		if c.Password != "" {
			cs.User = url.UserPassword(c.User, c.Password)
		} else {
			cs.User = url.User(c.User)
		}
	}

	cs.RawQuery = fmt.Sprintf("ssl=%t", c.Ssl)
	if c.OptParams != "" {
		cs.RawQuery += "&" + c.OptParams
	}
	return cs.String(), nil
}
