// Command plugdemo declares a small plugin and drives it through the
// simulated host: load, application start, a settings-menu session with a
// user edit, and shutdown. It exists to show the declaration surfaces
// working together; the real host is the console plugin loader.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/halcyonic/pluginkit/config"
	"github.com/halcyonic/pluginkit/internal/hostsim"
	"github.com/halcyonic/pluginkit/patch"
	"github.com/halcyonic/pluginkit/plugin"
	"github.com/halcyonic/pluginkit/storage"
)

// reportFn is the signature of the intercepted log function.
type reportFn func(msg string)

var osReport *patch.Entry[reportFn]

func declare(log *zap.Logger) {
	plugin.MustDeclare(plugin.Info{
		Name:        "Plugdemo",
		Version:     "1.0.0",
		Author:      "pluginkit",
		License:     "MIT",
		Description: "Demonstrates the plugin declaration surfaces",
	})
	plugin.MustUseStorage("plugdemo")

	osReport = patch.Replace(patch.LibraryCoreinit, "OSReport", reportFn(func(msg string) {
		log.Info("intercepted report", zap.String("msg", msg))
		osReport.Original()(msg)
	}))

	plugin.OnInit(func() {
		if err := config.Register("Plugdemo", buildMenu); err != nil {
			log.Fatal("menu registration failed", zap.Error(err))
		}
	})
	plugin.OnDeinit(func() {
		log.Info("plugin deinitialized")
	})
	plugin.OnApplicationStarts(func() {
		log.Info("application started",
			zap.Bool("greeting", storage.LoadOrDefault[bool]("greeting")))
	})
}

func buildMenu() []config.Node {
	return []config.Node{
		config.Label{Text: "Plugdemo settings"},
		config.Toggle{
			ID:       "greeting",
			Text:     "Greet on start",
			Default:  true,
			TrueText: "on", FalseText: "off",
		},
		config.Range{
			ID:   "volume",
			Text: "Volume",
			Default: 80, Min: 0, Max: 100,
		},
		config.Category{
			Title: "Advanced",
			Children: []config.Node{
				config.Select{
					ID:      "log_level",
					Text:    "Log level",
					Default: 1,
					Options: []string{"debug", "info", "warn", "error"},
				},
			},
		},
	}
}

func run(log *zap.Logger) error {
	declare(log)

	loader := hostsim.NewLoader(hostsim.Options{
		Log:         log,
		StoragePath: os.Getenv("PLUGDEMO_STORE"),
		Symbols: map[string]any{
			"OSReport": reportFn(func(msg string) {
				fmt.Println("OSReport:", msg)
			}),
		},
	})
	if err := loader.Load(); err != nil {
		return err
	}
	if err := loader.StartApplication(); err != nil {
		return err
	}

	// Calls through the wrapper are well-defined once the plugin is active.
	osReport.Replacement()("hello from the intercepted function")

	// One settings session: the user flips the greeting off.
	menu := loader.Menu()
	if err := menu.Open(); err != nil {
		return err
	}
	if err := menu.SetToggle("greeting", false); err != nil {
		return err
	}
	menu.Close()

	log.Info("stored settings",
		zap.Strings("keys", loader.Backend().Keys("*")),
		zap.Bool("greeting", storage.LoadOrDefault[bool]("greeting")),
		zap.Int32("volume", storage.LoadOrDefault[int32]("volume")),
	)

	if err := loader.EndApplication(); err != nil {
		return err
	}
	return loader.Shutdown()
}

func main() {
	// Optional .env for PLUGDEMO_STORE; absence is fine.
	_ = godotenv.Load()

	log, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(log); err != nil {
		log.Fatal("plugdemo failed", zap.Error(err))
	}
}
