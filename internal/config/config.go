package config

import (
	"time"

	"github.com/urfave/cli/v3"
)

type Config struct {
	App
	Storage
	Describe
	HTTP
}

type App struct {
	TempDirectory string
}

type Storage struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type Describe struct {
	URL            string
	APIKey         string
	RequestTimeout time.Duration
}

type HTTP struct {
	Host         string
	Port         string
	IdleTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func Load(cmd *cli.Command) *Config {
	return &Config{
		App: App{
			TempDirectory: cmd.String("temp-dir"),
		},
		Storage: Storage{
			Endpoint:  cmd.String("storage-endpoint"),
			AccessKey: cmd.String("storage-access-key"),
			SecretKey: cmd.String("storage-secret-key"),
			Bucket:    cmd.String("storage-bucket"),
			UseSSL:    cmd.Bool("storage-use-ssl"),
		},
		Describe: Describe{
			URL:            cmd.String("describe-url"),
			APIKey:         cmd.String("describe-api-key"),
			RequestTimeout: cmd.Duration("describe-timeout"),
		},
		HTTP: HTTP{
			Host:         cmd.String("http-host"),
			Port:         cmd.String("http-port"),
			IdleTimeout:  cmd.Duration("http-idle-timeout"),
			ReadTimeout:  cmd.Duration("http-read-timeout"),
			WriteTimeout: cmd.Duration("http-write-timeout"),
		},
	}
}
