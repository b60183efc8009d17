package main

import (
	"fmt"
	"os"
	"path/filepath"

	"SeedSleuth/internal/cli"
	"SeedSleuth/internal/oracle"
	"SeedSleuth/pkg/appcfg"
	"SeedSleuth/pkg/config"
	"SeedSleuth/pkg/logx"
)

func main() { os.Exit(run()) }

// run returns the exit code. Deferred closers must run before os.Exit.
func run() int {
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "getwd: %v\n", err)
		return 2
	}

	appConf, err := appcfg.Load(filepath.Join(cwd, "configs", "app.yaml"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "load app config: %v (use defaults: ru/info)\n", err)
		appConf = appcfg.Default()
	}

	if err := logx.Init(logx.Config{
		Level:                appConf.LogLevel,
		ConsoleOnly:          true,
		HideSecretsInConsole: appConf.HideSecretsInConsole,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "log init: %v\n", err)
		return 1
	}
	defer logx.Close()

	providersPath := appConf.ProvidersPath
	if !filepath.IsAbs(providersPath) {
		providersPath = filepath.Join(cwd, providersPath)
	}
	providers, err := config.LoadOrDefault(providersPath)
	if err != nil {
		logx.S().Errorw("load providers", "path", providersPath, "err", err)
		return 1
	}
	orc := oracle.FromConfig(providers)
	defer orc.Close()

	logx.S().Infow("seedsleuth started",
		"cwd", cwd,
		"lang", appConf.Language,
		"log_level", appConf.LogLevel,
		"hide_secrets_in_console", appConf.HideSecretsInConsole,
		"completion", appConf.Completion,
		"providers", providersPath,
	)

	r, err := cli.NewRunner(appConf, providers, orc)
	if err != nil {
		logx.S().Errorw("init runner", "err", err)
		return 1
	}
	r.Run()
	return 0
}
