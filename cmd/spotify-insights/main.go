// Command spotify-insights runs the Spotify insights web application.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/viper"
	"github.com/urfave/cli/v3"
	"golang.org/x/time/rate"

	"github.com/justestif/go-spotify-insights/internal/auth"
	"github.com/justestif/go-spotify-insights/internal/config"
	"github.com/justestif/go-spotify-insights/internal/insights"
	"github.com/justestif/go-spotify-insights/internal/logging"
	"github.com/justestif/go-spotify-insights/internal/metrics"
	"github.com/justestif/go-spotify-insights/internal/spotify"
	"github.com/justestif/go-spotify-insights/internal/web"
)

func main() {
	app := &cli.Command{
		Name:  "spotify-insights",
		Usage: "Serve mood and genre insights for a Spotify account",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "addr",
				Aliases: []string{"a"},
				Usage:   "Address to listen on (overrides ADDR)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level: debug, info, warn or error (overrides LOG_LEVEL)",
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Path to a dotenv file",
				Value: ".env",
			},
		},
		Action: serve,
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func serve(ctx context.Context, cmd *cli.Command) error {
	if err := config.LoadEnvFile(cmd.String("env-file")); err != nil {
		return err
	}

	v := viper.New()
	if addr := cmd.String("addr"); addr != "" {
		v.Set("server.addr", addr)
	}
	if level := cmd.String("log-level"); level != "" {
		v.Set("server.log_level", level)
	}

	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	logger := logging.New(os.Stderr, cfg.Server.LogLevel)
	m := metrics.New()

	// One limiter for every session: Spotify rate limits per application.
	limiter := rate.NewLimiter(rate.Limit(cfg.Spotify.RequestsPerSecond), cfg.Spotify.Burst)
	upstream := m.Transport(http.DefaultTransport)

	client := spotify.New(spotify.Config{
		BaseURL:   cfg.Spotify.APIURL,
		Transport: upstream,
		Limiter:   limiter,
	})

	refresher := auth.NewRefresher(auth.RefresherConfig{
		TokenURL:     cfg.Spotify.TokenURL,
		ClientID:     cfg.Spotify.ClientID,
		ClientSecret: cfg.Spotify.ClientSecret,
		HTTPClient:   &http.Client{Transport: upstream},
	})
	gate := auth.NewGate(auth.NewTokenStore(), refresher,
		auth.WithLogger(logger),
		auth.WithMetrics(m),
	)

	server, err := web.NewServer(web.ServerConfig{
		Addr: cfg.Server.Addr,
		Authenticator: auth.NewAuthenticator(auth.AuthenticatorConfig{
			ClientID:     cfg.Spotify.ClientID,
			ClientSecret: cfg.Spotify.ClientSecret,
			RedirectURI:  cfg.Spotify.RedirectURI,
			TokenURL:     cfg.Spotify.TokenURL,
		}),
		Gate:          gate,
		Sessions:      web.NewSessionStore(cfg.Session.TTL),
		Users:         client,
		Insights:      insights.New(gate, client, insights.WithLogger(logger), insights.WithMetrics(m)),
		SessionSecret: cfg.Session.Secret,
		SecureCookies: strings.HasPrefix(cfg.Spotify.RedirectURI, "https://"),
		Metrics:       m,
		Logger:        logger,
	})
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	return server.Run(ctx)
}
