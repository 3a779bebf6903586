package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/unicampus-app/unicampus/internal/client/config"
	"github.com/unicampus-app/unicampus/internal/client/gateway"
	"github.com/unicampus-app/unicampus/internal/client/securestore"
	"github.com/unicampus-app/unicampus/internal/client/services"
	"github.com/unicampus-app/unicampus/internal/logging"

	_ "modernc.org/sqlite"
)

// App wires the secure store, the authenticated gateway and the
// application services behind an interactive command loop.
type App struct {
	config   *config.Config
	store    *securestore.Store
	gw       *gateway.Gateway
	auth     *services.AuthService
	schedule *services.ScheduleService
	academic *services.AcademicService
	userName string
	reader   *bufio.Reader
	out      io.Writer
}

func NewApp(cfg *config.Config) (*App, error) {
	ctx := context.Background()

	log := logging.NewText(os.Stderr, cfg.LogLevel)

	store, err := securestore.Open(ctx, cfg.StorePath, cfg.StorePath+".key")
	if err != nil {
		return nil, fmt.Errorf("open secure store: %w", err)
	}

	gw := gateway.New(cfg.BaseURL, store, log, cfg.RequestTimeout, cfg.RefreshTimeout)

	a := &App{
		config:   cfg,
		store:    store,
		gw:       gw,
		auth:     services.NewAuthService(gw, log),
		schedule: services.NewScheduleService(gw, store, log),
		academic: services.NewAcademicService(gw),
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
	}
	gw.OnSignOut(a.onSignOut)

	return a, nil
}

// onSignOut runs when the gateway gives up on refreshing the credential.
// The command loop is single threaded, so the flag flip is race free.
func (a *App) onSignOut() {
	a.userName = ""
	fmt.Fprintln(a.out, "Session expired, please sign in again.")
}

func (a *App) Run(ctx context.Context) {
	defer a.store.Close()
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.auth.IsLoggedIn(context.Background())
}
