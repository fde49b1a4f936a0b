package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/feedlog/internal/calendar"
	"github.com/julianstephens/feedlog/internal/cli"
	"github.com/julianstephens/feedlog/internal/config"
	"github.com/julianstephens/feedlog/internal/constants"
	apperrors "github.com/julianstephens/feedlog/internal/errors"
	"github.com/julianstephens/feedlog/internal/feeding"
	"github.com/julianstephens/feedlog/internal/keyring"
	"github.com/julianstephens/feedlog/internal/logger"
	"github.com/julianstephens/feedlog/internal/storage"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Config file path." type:"path"`
	DB      string `name:"db" help:"SQLite file path or PostgreSQL connection string, overriding the config file. PostgreSQL passwords must NOT be embedded; use the OS keyring or .pgpass instead."`
	Debug   bool   `help:"Log debug output to stderr."`

	Init     cli.InitCmd     `cmd:"" help:"Initialize feedlog storage."`
	Migrate  cli.MigrateCmd  `cmd:"" help:"Run database migrations."`
	Serve    cli.ServeCmd    `cmd:"" help:"Serve the HTTP API."`
	Tui      cli.TuiCmd      `cmd:"" help:"Launch the interactive dashboard." default:"1"`
	Feed     cli.FeedCmd     `cmd:"" help:"Record a feeding now."`
	Today    cli.TodayCmd    `cmd:"" help:"Show today's feeding summary."`
	Reset    cli.ResetCmd    `cmd:"" help:"Delete today's feedings."`
	Week     cli.WeekCmd     `cmd:"" help:"Show the seven-day report."`
	Timeline cli.TimelineCmd `cmd:"" help:"Show the seven-day hour grid."`
	Export   cli.ExportCmd   `cmd:"" help:"Export the seven-day report as PDF."`
	Edit     cli.EditCmd     `cmd:"" help:"Change the time of a feeding."`
	Delete   cli.DeleteCmd   `cmd:"" help:"Delete a feeding."`
	Doctor   cli.DoctorCmd   `cmd:"" help:"Run health checks and diagnostics."`
	Transfer cli.TransferCmd `cmd:"" help:"Copy every feeding into another store."`
	Backup   struct {
		Create  cli.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    cli.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore cli.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage database backups."`
	Keyring struct {
		Set    cli.KeyringSetCmd    `cmd:"" help:"Store a PostgreSQL connection string in the OS keyring."`
		Get    cli.KeyringGetCmd    `cmd:"" help:"Show the stored connection string with the password masked."`
		Delete cli.KeyringDeleteCmd `cmd:"" help:"Remove the stored connection string."`
		Status cli.KeyringStatusCmd `cmd:"" help:"Check OS keyring availability."`
	} `cmd:"" help:"Manage database credentials in the OS keyring."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Pet feeding tracker with days that start at 04:00"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)
	command := ctx.Command()

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		apperrors.Fatal(err)
	}
	if CLI.DB != "" {
		cfg.Database = config.ExpandPath(CLI.DB)
	}

	if err := logger.Init(logger.Config{
		Debug:   CLI.Debug || cfg.Logging.Debug,
		LogDir:  cfg.Logging.Dir,
		Console: strings.HasPrefix(command, "serve"),
	}); err != nil {
		apperrors.Fatalf("failed to initialize logger: %v", err)
	}

	appCtx := &cli.Context{Config: cfg}

	// keyring commands manage credentials and never touch the store
	if strings.HasPrefix(command, "keyring") {
		if err := ctx.Run(appCtx); err != nil {
			apperrors.Fatal(err)
		}
		return
	}

	store, err := openStore(cfg)
	if err != nil {
		apperrors.Fatal(err)
	}
	defer store.Close()

	loc, err := calendar.LoadLocation(cfg.Feeding.Timezone)
	if err != nil {
		apperrors.Fatal(err)
	}
	cal, err := calendar.New(cfg.Feeding.DayStartHour, loc, nil)
	if err != nil {
		apperrors.Fatal(err)
	}

	appCtx.Store = store
	appCtx.Service = feeding.NewService(store, cal, feeding.Options{
		DefaultAmount:     cfg.Feeding.DefaultAmount,
		DailyLimit:        cfg.Feeding.DailyLimit,
		UnderfedThreshold: cfg.Feeding.UnderfedThreshold,
	})

	if command != "init" {
		if err := store.Load(); err != nil {
			if command != "doctor" {
				apperrors.Fatal(err)
			}
			logger.Warn("Store failed to load", "error", err)
		}
	}

	if err := ctx.Run(appCtx); err != nil {
		store.Close()
		apperrors.Fatal(err)
	}
}

// openStore resolves the configured database, reading the connection string
// from the OS keyring when the config asks for it.
func openStore(cfg *config.Config) (storage.Provider, error) {
	if !cfg.UsesKeyring() {
		return storage.New(cfg.Database)
	}

	dsn, err := keyring.GetConnectionString()
	if errors.Is(err, keyring.ErrNotFound) {
		return nil, fmt.Errorf("config selects the keyring but none is stored; run '%s keyring set <connection-string>'", constants.AppName)
	}
	if err != nil {
		return nil, err
	}
	return storage.NewTrusted(dsn), nil
}
