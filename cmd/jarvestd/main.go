// Command jarvestd runs the session-credential harvesting daemon.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/afero"
	"github.com/urfave/cli"

	"github.com/jarvest/jarvest/common"
	"github.com/jarvest/jarvest/internal/browser"
	"github.com/jarvest/jarvest/internal/config"
	"github.com/jarvest/jarvest/internal/extscript"
	"github.com/jarvest/jarvest/internal/harvest"
	"github.com/jarvest/jarvest/internal/server"
	"github.com/jarvest/jarvest/pkg/credstore"
	"github.com/jarvest/jarvest/pkg/credstore/keyring"
	"github.com/jarvest/jarvest/pkg/logger"
)

func main() {
	app := cli.App{
		Name:      "jarvestd",
		HelpName:  "jarvestd",
		Usage:     "browser session credential harvesting daemon",
		Version:   common.Version,
		UsageText: "jarvestd <command> [arguments...]",
		Commands: []cli.Command{
			{
				Name:   "serve",
				Usage:  "run the daemon and serve the RPC endpoint",
				Action: serve,
			},
			{
				Name:   "harvest",
				Usage:  "run one harvest and print the result as JSON",
				Action: oneShot,
				Flags: []cli.Flag{
					cli.StringFlag{
						Name:  "profile, p",
						Usage: "force a single browser profile candidate",
					},
					cli.StringFlag{
						Name:  "url, u",
						Usage: "override the target URL",
					},
				},
			},
			{
				Name:    "version",
				Aliases: []string{"v"},
				Usage:   "print the installed version",
				Action: func(*cli.Context) error {
					fmt.Println(common.AppName, common.Version)
					return nil
				},
			},
		},
		Action:      serve,
		HideVersion: true,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "jarvestd:", err.Error())
		os.Exit(1)
	}
}

// core bundles the wired components shared by the daemon and the
// one-shot command.
type core struct {
	cfg    config.Config
	log    logger.Logger
	engine *harvest.Engine
}

func setup() (*core, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, err
	}

	var l logger.Logger = logger.NewStandardLogger(log.New(os.Stderr, "", log.LstdFlags))
	if cfg.Debug {
		// Debug runs also keep a file trail next to the temp workspaces.
		path := filepath.Join(os.TempDir(), "jarvestd.log")
		if f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600); err == nil {
			l = logger.NewMultiLogger(l, logger.NewStandardLogger(log.New(f, "", log.LstdFlags)))
		}
	}

	seed, err := setupSeed(l)
	if err != nil {
		return nil, err
	}

	var adapter *extscript.Adapter
	if cfg.AdapterScript != "" {
		adapter, err = extscript.Load(l, cfg.AdapterScript)
		if err != nil {
			return nil, fmt.Errorf("adapter script: %w", err)
		}
	}

	sel := &harvest.Selector{
		FS:      afero.NewOsFs(),
		Driver:  browser.NewChromeDriver(),
		Log:     l,
		Adapter: adapter,
		Cfg: harvest.SelectorConfig{
			ProfileRoot:        cfg.ProfileRoot,
			PreferredProfile:   cfg.PreferredProfile,
			AlternateCount:     cfg.AlternateCount,
			TargetURL:          cfg.TargetURL,
			Headless:           cfg.Headless,
			UserAgent:          cfg.UserAgent,
			WaitPolicy:         cfg.WaitPolicy,
			NavTimeout:         cfg.NavTimeout,
			ReverifyTimeout:    cfg.ReverifyTimeout,
			PollBudget:         cfg.PollBudget,
			ReverifyPollBudget: cfg.ReverifyPollBudget,
		},
	}

	engine := harvest.NewEngine(l, sel, &harvest.Cache{TTL: cfg.CacheTTL}, seed)
	return &core{cfg: cfg, log: l, engine: engine}, nil
}

// setupSeed builds the encrypted seed store. The encryption key lives in
// the OS keyring when one is available, with a file fallback. A broken
// store degrades to an in-memory seed rather than refusing to start.
func setupSeed(l logger.Logger) (*harvest.SeedState, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		l.Warning("no user config dir, seed will not persist: %v", err)
		return harvest.NewSeedState(nil)
	}
	appDir := filepath.Join(configDir, common.AppName)
	if err := os.MkdirAll(appDir, 0o700); err != nil {
		l.Warning("config dir unavailable, seed will not persist: %v", err)
		return harvest.NewSeedState(nil)
	}

	key, err := keyring.GetOrCreate(keyring.New(common.AppName), keyring.NewFileKeyStore(appDir))
	if err != nil {
		l.Warning("no encryption key, seed will not persist: %v", err)
		return harvest.NewSeedState(nil)
	}
	store, err := credstore.NewSeedStore(filepath.Join(appDir, "seed.bin"), key)
	if err != nil {
		l.Warning("seed store unavailable, seed will not persist: %v", err)
		return harvest.NewSeedState(nil)
	}
	return harvest.NewSeedState(store)
}

func serve(*cli.Context) error {
	rt, err := setup()
	if err != nil {
		return err
	}
	defer rt.log.Close()

	rpc := server.NewRPCServer(&server.RPCConfig{
		Secret:  rt.cfg.AccessKey,
		Version: common.Version,
	}, rt.engine, rt.log)
	srv := server.NewServer(rt.log, rpc, rt.cfg.TCPPort)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt.log.Info("%s %s starting", common.AppName, common.Version)
	return srv.Start(ctx)
}

func oneShot(c *cli.Context) error {
	rt, err := setup()
	if err != nil {
		return err
	}
	defer rt.log.Close()

	m, err := rt.engine.GetSessionMaterial(context.Background(), harvest.MaterialParams{
		TargetURL:    c.String("url"),
		Profile:      c.String("profile"),
		ForceRefresh: true,
	})
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
