package es

import (
	"errors"
	"fmt"
	"io"

	"github.com/elastic/go-elasticsearch/v9"
)

var ErrNoAddress = errors.New("elasticsearch: ES_URL is empty")

type Config struct {
	URL      string
	User     string
	Password string
}

func NewClient(cfg Config) (*elasticsearch.Client, error) {
	if cfg.URL == "" {
		return nil, ErrNoAddress
	}

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.User,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch: create client: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("elasticsearch: info: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("elasticsearch: info returned %s: %s", res.Status(), body)
	}

	return client, nil
}
