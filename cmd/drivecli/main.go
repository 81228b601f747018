package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/Jumpaku/go-drivecli"
	"github.com/Jumpaku/go-drivecli/auth"
	"github.com/Jumpaku/go-drivecli/config"
	"github.com/Jumpaku/go-drivecli/gdrive"
	"github.com/Jumpaku/go-drivecli/logging"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app := newApp(os.Stdout, connect)
	if err := app.RunContext(ctx, os.Args); err != nil {
		logging.Default(false).Errorf("%v", err)
		stop()
		os.Exit(1)
	}
}

// connect authenticates with the credentials named by cfg and opens a Drive session.
func connect(ctx context.Context, cfg config.Config, log *logging.Logger) (*drivecli.Session, error) {
	oauthConfig, err := auth.LoadConfig(cfg.ClientSecrets, drive.DriveScope)
	if err != nil {
		return nil, fmt.Errorf("could not find the app credentials file: %w", err)
	}
	client, err := auth.NewHTTPClient(ctx, oauthConfig, cfg.Credentials, auth.Options{
		Prompt: auth.StdinPrompter(os.Stdin, os.Stdout),
		Logger: log,
	})
	if err != nil {
		return nil, err
	}
	service, err := drive.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}
	session := drivecli.NewSession(gdrive.New(service))
	session.RootID = cfg.RootID
	return session, nil
}
