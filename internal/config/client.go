package config

import "github.com/caarlos0/env/v11"

type ClientConfig struct {
	ServerURL     string `env:"SERVER_URL" envDefault:"http://localhost:8080"`
	GameID        string `env:"GAME_ID"`
	ParticipantID string `env:"PARTICIPANT_ID"`
	DisplayName   string `env:"DISPLAY_NAME" envDefault:"bot"`
}

func LoadClient() (ClientConfig, error) {
	var cfg ClientConfig
	err := env.Parse(&cfg)
	return cfg, err
}
