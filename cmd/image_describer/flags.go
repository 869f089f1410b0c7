package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/frasal/image_describer/internal/app"
	"github.com/frasal/image_describer/internal/config"
	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"
)

var version = "dev"

func cmd() *cli.Command {
	return &cli.Command{
		Name:    "image_describer",
		Usage:   "image description & feedback service",
		Version: version,
		Flags:   flags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log, ok := ctx.Value(loggerKey{}).(*slog.Logger)
			if !ok {
				return errors.New("failed to get logger from context")
			}

			cfg := config.Load(cmd)

			return app.New(log, cfg).Run(ctx)
		},
	}
}

func flags() []cli.Flag {
	var config string

	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Validator:   validateConfig,
			Usage:       "Load configuration from `FILE`",
			Destination: &config,
		},
		&cli.StringFlag{
			Name:    "temp-dir",
			Aliases: []string{"t"},
			Usage:   "Set directory for temporary image files",
			Value:   "temp",
			Sources: cli.NewValueSourceChain(yaml.YAML("app.temp_dir", altsrc.NewStringPtrSourcer(&config))),
		},
		&cli.StringFlag{
			Name:     "storage-endpoint",
			Usage:    "Set object storage endpoint",
			Sources:  cli.NewValueSourceChain(yaml.YAML("storage.endpoint", altsrc.NewStringPtrSourcer(&config))),
			Required: true,
		},
		&cli.StringFlag{
			Name:     "storage-access-key",
			Usage:    "Set object storage access key",
			Sources:  cli.NewValueSourceChain(yaml.YAML("storage.access_key", altsrc.NewStringPtrSourcer(&config))),
			Required: true,
		},
		&cli.StringFlag{
			Name:     "storage-secret-key",
			Usage:    "Set object storage secret key",
			Sources:  cli.NewValueSourceChain(yaml.YAML("storage.secret_key", altsrc.NewStringPtrSourcer(&config))),
			Required: true,
		},
		&cli.StringFlag{
			Name:     "storage-bucket",
			Usage:    "Set object storage bucket name",
			Value:    "images",
			Sources:  cli.NewValueSourceChain(yaml.YAML("storage.bucket", altsrc.NewStringPtrSourcer(&config))),
			Required: true,
		},
		&cli.BoolFlag{
			Name:    "storage-use-ssl",
			Usage:   "Use TLS for object storage connections",
			Value:   true,
			Sources: cli.NewValueSourceChain(yaml.YAML("storage.use_ssl", altsrc.NewStringPtrSourcer(&config))),
		},
		&cli.StringFlag{
			Name:     "describe-url",
			Usage:    "Set inference endpoint URL",
			Sources:  cli.NewValueSourceChain(yaml.YAML("describe.url", altsrc.NewStringPtrSourcer(&config))),
			Required: true,
		},
		&cli.StringFlag{
			Name:    "describe-api-key",
			Usage:   "Set inference endpoint API key",
			Sources: cli.NewValueSourceChain(yaml.YAML("describe.api_key", altsrc.NewStringPtrSourcer(&config))),
		},
		&cli.DurationFlag{
			Name:    "describe-timeout",
			Usage:   "Set inference request timeout",
			Value:   90 * time.Second,
			Sources: cli.NewValueSourceChain(yaml.YAML("describe.timeout", altsrc.NewStringPtrSourcer(&config))),
		},
		&cli.StringFlag{
			Name:    "http-host",
			Usage:   "Set HTTP server host",
			Value:   "0.0.0.0",
			Sources: cli.NewValueSourceChain(yaml.YAML("http.host", altsrc.NewStringPtrSourcer(&config))),
		},
		&cli.StringFlag{
			Name:    "http-port",
			Usage:   "Set HTTP server port",
			Value:   "3000",
			Sources: cli.NewValueSourceChain(yaml.YAML("http.port", altsrc.NewStringPtrSourcer(&config))),
		},
		&cli.DurationFlag{
			Name:    "http-idle-timeout",
			Usage:   "Set HTTP server idle timeout",
			Value:   1 * time.Minute,
			Sources: cli.NewValueSourceChain(yaml.YAML("http.idle_timeout", altsrc.NewStringPtrSourcer(&config))),
		},
		&cli.DurationFlag{
			Name:    "http-read-timeout",
			Usage:   "Set HTTP server read timeout",
			Value:   30 * time.Second,
			Sources: cli.NewValueSourceChain(yaml.YAML("http.read_timeout", altsrc.NewStringPtrSourcer(&config))),
		},
		&cli.DurationFlag{
			Name:    "http-write-timeout",
			Usage:   "Set HTTP server write timeout",
			Value:   2 * time.Minute,
			Sources: cli.NewValueSourceChain(yaml.YAML("http.write_timeout", altsrc.NewStringPtrSourcer(&config))),
		},
	}
}

func validateConfig(config string) error {
	info, err := os.Stat(config)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%q does not exist", config)
		}
		return fmt.Errorf("failed to stat %q: %w", config, err)
	}

	if info.IsDir() {
		return fmt.Errorf("%q is a directory, not a file", config)
	}

	ext := filepath.Ext(info.Name())
	if ext != ".yml" && ext != ".yaml" {
		return fmt.Errorf("invalid extension %q", config)
	}

	return nil
}
