package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/ljos/budzilla/internal/budzilla"
	"github.com/ljos/budzilla/internal/config"
	"github.com/ljos/budzilla/internal/extension"
	"github.com/ljos/budzilla/internal/httpcache"
	"github.com/ljos/budzilla/internal/logging"
	"github.com/ljos/budzilla/internal/session"
)

// app holds everything a search command needs, wired from the config.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	sessions *session.FileStore
	cache    *httpcache.Store // nil when the cache could not be opened
	provider *session.Provider
	client   *budzilla.Client
	closers  []io.Closer
}

// loadConfig loads --config (or the default file) and checks it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("cannot load config: %w\nRun 'budzilla init' first.", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w\nEdit ~/.budzilla/budzilla.yaml or set BUDZILLA_* variables.", err)
	}
	return cfg, nil
}

// openLogger opens the rotating log file at the configured level. --verbose
// forces debug.
func openLogger(cfg *config.Config) (*slog.Logger, io.Closer, error) {
	path, err := config.LogPath()
	if err != nil {
		return nil, nil, err
	}
	level := logging.ParseLevel(cfg.LogLevel)
	if flagVerbose {
		level = slog.LevelDebug
	}
	logger, closer := logging.New(path, level)
	return logger, closer, nil
}

func openApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg}

	logger, closer, err := openLogger(cfg)
	if err != nil {
		return nil, err
	}
	a.logger = logger
	a.closers = append(a.closers, closer)

	sessPath, err := config.SessionPath()
	if err != nil {
		a.Close()
		return nil, err
	}
	a.sessions = session.NewFileStore(sessPath, cfg.SessionTTLDuration())

	timeout := cfg.TimeoutDuration()
	a.provider = session.NewProvider(session.Options{
		AuthURL:  cfg.AuthURL,
		Username: cfg.Username,
		Password: cfg.Password,
		Client:   &http.Client{Timeout: timeout},
		Store:    a.sessions,
		Logger:   logger.With("component", "session"),
	})

	var transport http.RoundTripper = http.DefaultTransport
	if cachePath, err := config.ResponseCachePath(); err == nil {
		if store, err := httpcache.Open(cachePath); err != nil {
			logger.Warn("response cache unavailable", "path", cachePath, "error", err)
		} else {
			a.cache = store
			a.closers = append(a.closers, store)
			transport = httpcache.NewTransport(transport, store, cfg.ResponseTTLDuration(), logger.With("component", "httpcache"))
		}
	}
	a.client = budzilla.NewClient(cfg.EntryURL, &http.Client{Timeout: timeout, Transport: transport}, userAgent())

	return a, nil
}

// handler builds the launcher event handler. noCache skips response cache
// lookups for every fetch it makes.
func (a *app) handler(noCache bool) *extension.Handler {
	return extension.NewHandler(extension.Options{
		Tokens:     a.provider,
		Entries:    a.client,
		Clipboard:  extension.SystemClipboard{},
		Threshold:  a.cfg.Threshold,
		MaxResults: a.cfg.MaxResults,
		NoCache:    noCache,
		Logger:     a.logger.With("component", "extension"),
	})
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i].Close()
	}
}

// signalContext is canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// withRequestID tags ctx so the log lines and the X-Request-ID header of
// one command share an id.
func withRequestID(ctx context.Context) context.Context {
	return budzilla.WithRequestID(ctx, uuid.NewString())
}
