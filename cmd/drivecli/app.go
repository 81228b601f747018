package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/Jumpaku/go-drivecli"
	"github.com/Jumpaku/go-drivecli/config"
	derrors "github.com/Jumpaku/go-drivecli/errors"
	"github.com/Jumpaku/go-drivecli/logging"
	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
)

var (
	ErrNoAction       = errors.New("select one of the following actions: --list, --upload, --download or --remove")
	ErrTooManyActions = errors.New("select just one of the following actions: --list, --upload, --download or --remove")
	ErrWrongArgs      = errors.New("wrong number of arguments")
)

// connectFunc builds the session a command runs against.
type connectFunc func(ctx context.Context, cfg config.Config, log *logging.Logger) (*drivecli.Session, error)

type action struct {
	flag  string
	usage string
	args  []string
	run   func(ctx context.Context, env *env, args []string) error
}

var actions = []action{
	{flag: "list", usage: "List files from drive", args: []string{"<drive_path>"}, run: runList},
	{flag: "upload", usage: "Upload a file or folder from local to drive", args: []string{"<local_source_path>", "<drive_destination_path>"}, run: runUpload},
	{flag: "download", usage: "Download a file or folder from drive to local", args: []string{"<drive_object_path>", "<local_destination_path>"}, run: runDownload},
	{flag: "remove", usage: "Remove a file or folder from drive", args: []string{"<drive_path>"}, run: runRemove},
}

// env is what an action works with once flags are parsed and the session is open.
type env struct {
	cfg    config.Config
	log    *logging.Logger
	client *drivecli.Client
}

func newApp(out io.Writer, connect connectFunc) *cli.App {
	flags := []cli.Flag{}
	for _, a := range actions {
		flags = append(flags, &cli.BoolFlag{
			Name:    a.flag,
			Aliases: []string{a.flag[:1]},
			Usage:   fmt.Sprintf("%s: %s", a.usage, strings.Join(a.args, " ")),
		})
	}
	flags = append(flags,
		&cli.BoolFlag{Name: "debug", Aliases: []string{"v"}, Usage: "Activate debug logging"},
		&cli.BoolFlag{Name: "permanent", Usage: "Delete permanently instead of moving to the trash"},
		&cli.BoolFlag{Name: "strict", Usage: "Fail when a path segment matches more than one object"},
		&cli.IntFlag{Name: "workers", Aliases: []string{"w"}, Usage: "Number of concurrent transfers", Value: 1},
		&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "Configuration file", Value: config.DefaultPath()},
	)

	return &cli.App{
		Name:            "drivecli",
		Usage:           "manage files in Google Drive from the terminal",
		UsageText:       "drivecli [-v] (-l <path> | -u <local> <remote> | -d <remote> <local> | -r <path>)",
		Flags:           flags,
		Writer:          out,
		ErrWriter:       out,
		HideHelpCommand: true,
		Action: func(c *cli.Context) error {
			return run(c, out, connect)
		},
	}
}

func run(c *cli.Context, out io.Writer, connect connectFunc) error {
	selected, err := selectAction(c)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	log := logging.New(out, logging.LevelInfo)
	if cfg.Debug {
		log.SetLevel(logging.LevelDebug)
	}
	log.Debugf("Validated parameters: action=%s args=%v", selected.flag, c.Args().Slice())

	log.Debugf("Authenticating with Drive API")
	session, err := connect(c.Context, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to authenticate: %w", err)
	}
	log.Debugf("Successfully authenticated")

	e := &env{cfg: cfg, log: log}
	e.client = drivecli.New(session,
		drivecli.WithStrictPaths(cfg.Strict),
		drivecli.WithWorkers(cfg.Workers),
		drivecli.WithObserver(e.observe),
	)
	return selected.run(c.Context, e, c.Args().Slice())
}

func selectAction(c *cli.Context) (action, error) {
	var selected []action
	for _, a := range actions {
		if c.Bool(a.flag) {
			selected = append(selected, a)
		}
	}
	switch len(selected) {
	case 0:
		return action{}, ErrNoAction
	case 1:
	default:
		return action{}, ErrTooManyActions
	}
	a := selected[0]
	if c.NArg() != len(a.args) {
		return action{}, fmt.Errorf("--%s expects %s, got %d arguments: %w", a.flag, strings.Join(a.args, " "), c.NArg(), ErrWrongArgs)
	}
	return a, nil
}

func loadConfig(c *cli.Context) (config.Config, error) {
	cfg, err := config.Load(c.String("config"), !c.IsSet("config"))
	if err != nil {
		return config.Config{}, err
	}
	if c.IsSet("debug") {
		cfg.Debug = c.Bool("debug")
	}
	if c.IsSet("permanent") {
		cfg.Trash = !c.Bool("permanent")
	}
	if c.IsSet("strict") {
		cfg.Strict = c.Bool("strict")
	}
	if c.IsSet("workers") {
		cfg.Workers = c.Int("workers")
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func (e *env) observe(item drivecli.TransferItem, err error) {
	switch {
	case err != nil:
		e.log.Errorf("Failed to %s '%s': %v", item.Direction, item.Source, err)
	case item.IsDir:
		e.log.Infof("Created directory '%s'", item.Destination)
	case item.Direction == drivecli.DirectionUpload:
		e.log.Infof("Uploaded '%s' to '%s' in drive", item.Source, item.Destination)
	default:
		e.log.Infof("Downloaded '%s' from drive to '%s'", item.Source, item.Destination)
	}
}

func runList(ctx context.Context, e *env, args []string) error {
	path := drivecli.Path(args[0])
	e.log.Debugf("Getting files and directories from '%s' path", path)
	objects, err := e.client.List(ctx, path)
	if err != nil {
		return err
	}
	e.log.Infof("Drive files on path '%s': %d", path, len(objects))
	for _, o := range objects {
		if o.IsDir {
			e.log.Infof("%s/", color.BlueString(o.Name))
		} else {
			e.log.Infof("%s", o.Name)
		}
	}
	return nil
}

func runUpload(ctx context.Context, e *env, args []string) error {
	local, remote := args[0], drivecli.Path(args[1])
	e.log.Infof("Uploading '%s' from local path to '%s' in drive", local, remote)
	report, err := e.client.Upload(ctx, local, remote)
	e.summarize(report)
	return err
}

func runDownload(ctx context.Context, e *env, args []string) error {
	remote, local := drivecli.Path(args[0]), args[1]
	e.log.Infof("Downloading '%s' from drive to '%s' local path", remote, local)
	report, err := e.client.Download(ctx, remote, local)
	e.summarize(report)
	return err
}

func runRemove(ctx context.Context, e *env, args []string) error {
	path := drivecli.Path(args[0])
	e.log.Infof("Removing '%s' from drive", path)
	obj, err := e.client.Remove(ctx, path, e.cfg.Trash)
	if err != nil {
		return err
	}
	if e.cfg.Trash {
		e.log.Infof("Moved '%s' (%s) to the trash", path, obj.ID)
	} else {
		e.log.Infof("Deleted '%s' (%s) permanently", path, obj.ID)
	}
	return nil
}

func (e *env) summarize(report drivecli.Report) {
	for _, s := range report.Skipped {
		e.log.Warnf("Skipped '%s'", s)
	}
	failed := report.Failed()
	e.log.Infof("%d files transferred, %d failed, %d directories created", len(report.Results)-len(failed), len(failed), report.Dirs)

	kinds := map[string]int{}
	for _, res := range failed {
		kind := "unknown error"
		if c := derrors.Category(res.Err); c != nil {
			kind = c.Error()
		}
		kinds[kind]++
	}
	for _, kind := range slices.Sorted(maps.Keys(kinds)) {
		e.log.Errorf("%d failed with %s", kinds[kind], kind)
	}
}
