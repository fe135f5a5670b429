package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/samber/lo"

	"github.com/Bhanuteja12-coder/Vidhi-Saarathi-AI/internal/auth"
	"github.com/Bhanuteja12-coder/Vidhi-Saarathi-AI/internal/blob"
	"github.com/Bhanuteja12-coder/Vidhi-Saarathi-AI/internal/dispatch"
	"github.com/Bhanuteja12-coder/Vidhi-Saarathi-AI/internal/gemini"
	"github.com/Bhanuteja12-coder/Vidhi-Saarathi-AI/internal/lawyers"
	"github.com/Bhanuteja12-coder/Vidhi-Saarathi-AI/internal/server"
	"github.com/Bhanuteja12-coder/Vidhi-Saarathi-AI/internal/store"
	"github.com/Bhanuteja12-coder/Vidhi-Saarathi-AI/pkg/config"
	"github.com/Bhanuteja12-coder/Vidhi-Saarathi-AI/pkg/logger"
	"github.com/Bhanuteja12-coder/Vidhi-Saarathi-AI/pkg/util"
)

// Version will be set by GoReleaser
var Version = config.AppVersion

func main() {
	printer := util.NewPrinter(os.Stdout)

	cfg, err := config.New()
	if err != nil {
		printer.PrintError(fmt.Sprintf("config: %v", err))
		os.Exit(2)
	}

	logger.Init(cfg.Debug)
	logger.SetLevel(cfg.LogLevel)
	defer logger.Sync()

	if cfg.Version {
		printer.Printf("vidhi-saarathi %s\n", Version)
		return
	}

	if len(cfg.Args) > 0 && cfg.Args[0] == "token" {
		if err := runToken(cfg, cfg.Args[1:], printer); err != nil {
			printer.PrintError(err.Error())
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, printer); err != nil {
		printer.PrintError(err.Error())
		logger.Sync()
		os.Exit(1)
	}
}

// runToken mints a bearer token for manual testing of the protected routes
func runToken(cfg *config.Config, args []string, printer *util.Printer) error {
	userID, email := "local_12345", "test@example.com"
	if len(args) > 0 {
		userID = args[0]
	}
	if len(args) > 1 {
		email = args[1]
	}

	token, err := auth.NewIssuer(cfg.AuthSecret, cfg.TokenTTL).Issue(userID, email)
	if err != nil {
		return fmt.Errorf("issue token: %w", err)
	}
	printer.Println(token)
	return nil
}

func run(ctx context.Context, cfg *config.Config, printer *util.Printer) error {
	client, err := gemini.NewHTTPClient(cfg.ProxyURL)
	if err != nil {
		return err
	}

	dispatcher, err := newDispatcher(cfg, client)
	if errors.Is(err, dispatch.ErrNoCredentials) {
		return fmt.Errorf("%w: set GEMINI_API_KEY_1 (and optionally _2, _3)", err)
	}
	if err != nil {
		return err
	}

	users, records, closeStore, err := openStores(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	deps := server.Deps{
		Analyzer:   dispatcher,
		Users:      users,
		Records:    records,
		Tokens:     auth.NewIssuer(cfg.AuthSecret, cfg.TokenTTL),
		Lawyers:    lawyers.NewDirectory(filepath.Join(cfg.DataDir, "lawyers.json")),
		HTTPClient: client,
	}

	baseURL := cfg.PublicBaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("http://localhost:%d", cfg.Port)
	}
	if blobs, err := blob.NewFSStore(cfg.UploadDir, baseURL, cfg.AuthSecret); err != nil {
		logger.Warnf("FIR uploads disabled: %v", err)
	} else {
		deps.Blobs = blobs
	}

	if cfg.UsingDefaultSecret() {
		logger.Warnf("AUTH_SECRET is not set; tokens and download links use the built-in development secret")
	}

	srv := server.New(cfg, deps)
	printBanner(printer, cfg, dispatcher, baseURL)

	err = srv.Start(ctx)
	if server.IsServerStart(err) {
		return err
	}
	if err != nil {
		logger.Errorf("shutdown: %v", err)
	}
	logger.Infof("Server stopped")
	return nil
}

func newDispatcher(cfg *config.Config, client *http.Client) (*dispatch.Dispatcher, error) {
	models := lo.Map(cfg.Models, func(m config.ModelConfig, _ int) dispatch.Model {
		return dispatch.Model{
			Name:        m.Name,
			URL:         m.URL,
			Priority:    m.Priority,
			Timeout:     m.Timeout,
			Description: m.Description,
		}
	})
	keys := lo.Map(cfg.Keys, func(k config.KeyConfig, _ int) dispatch.Key {
		return dispatch.Key{Name: k.Name, Value: k.Key, Priority: k.Priority}
	})

	return dispatch.New(models, keys,
		dispatch.WithClient(client),
		dispatch.WithMaxRetries(cfg.MaxRetries),
		dispatch.WithBaseDelay(cfg.BaseDelay),
		dispatch.WithMinTextLength(cfg.MinResponseLength),
		dispatch.WithQuotaTimeout(cfg.QuotaTimeout),
	)
}

// openStores picks the database when DATABASE_URL is set. Without it accounts
// live in a JSON file and saved queries/uploads metadata are unavailable.
func openStores(cfg *config.Config) (store.UserStore, store.RecordStore, func(), error) {
	if cfg.DatabaseURL != "" {
		db, err := store.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		closer := func() {
			if err := db.Close(); err != nil {
				logger.Warnf("close database: %v", err)
			}
		}
		return db, db, closer, nil
	}

	path := filepath.Join(cfg.DataDir, "users.json")
	users, err := store.NewFileStore(path)
	if err != nil {
		return nil, nil, nil, err
	}
	logger.Warnf("DATABASE_URL not set: accounts stored in %s, query history disabled", path)
	return users, nil, func() {}, nil
}

func printBanner(p *util.Printer, cfg *config.Config, d *dispatch.Dispatcher, baseURL string) {
	p.PrintTitle(fmt.Sprintf("%s v%s", config.AppName, config.AppVersion), util.EmojiScale)
	p.Printf("%s Server running on: %s\n\n", util.EmojiRocket, baseURL)

	models := lo.Map(d.Models(), func(m dispatch.ModelInfo, _ int) []string {
		return []string{strconv.Itoa(m.Priority), m.Name, strconv.FormatFloat(m.TimeoutSeconds(), 'f', -1, 64) + "s", m.Description}
	})
	p.Printf("%s AI models\n", util.EmojiRobot)
	p.PrintTable([]string{"PRIORITY", "MODEL", "TIMEOUT", "DESCRIPTION"}, models)

	keys := lo.FilterMap(cfg.Keys, func(k config.KeyConfig, _ int) ([]string, bool) {
		return []string{strconv.Itoa(k.Priority), k.Name, util.MaskKey(k.Key, 4, 4)}, k.Key != ""
	})
	p.Printf("\n%s API keys\n", util.EmojiKey)
	p.PrintTable([]string{"PRIORITY", "NAME", "KEY"}, keys)

	p.Printf("\n%s retries per pair: %d, base delay: %s\n", util.EmojiGear, cfg.MaxRetries, cfg.BaseDelay)
	p.PrintSeparator()
}
