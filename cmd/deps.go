package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/wordiz/internal/config"
	"github.com/abhisek/wordiz/internal/listen"
	"github.com/abhisek/wordiz/internal/session"
	"github.com/abhisek/wordiz/internal/speech"
	"github.com/abhisek/wordiz/internal/store"
	"github.com/abhisek/wordiz/internal/wordstore"
)

// deps bundles what every command builds from the configuration.
type deps struct {
	cfg    *config.Config
	logger *zap.Logger
	client *wordstore.Client
	store  *store.Store
}

// openDeps loads configuration and builds the logger and API client.
// The store is opened only when withStore is set.
func openDeps(cmd *cobra.Command, withStore bool) (*deps, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	d := &deps{cfg: cfg, logger: newLogger(cfg)}
	d.client = newClient(cfg, cfg.API.BaseURL, d.logger)

	if withStore {
		dbPath, err := resolveDBPath(cmd, cfg)
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("resolve DB path: %w", err)
		}
		st, err := store.Open(dbPath)
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("open store: %w", err)
		}
		d.store = st
	}
	return d, nil
}

func newClient(cfg *config.Config, baseURL string, logger *zap.Logger) *wordstore.Client {
	return wordstore.New(baseURL,
		wordstore.WithTimeout(cfg.API.Timeout),
		wordstore.WithSessionCookie(cfg.API.SessionCookie),
		wordstore.WithLogger(logger))
}

// Close releases the store and flushes the logger.
func (d *deps) Close() {
	if d.store != nil {
		d.store.Close()
	}
	_ = d.logger.Sync()
}

// machine builds the session machine over the store. openDeps must have
// been called with withStore.
func (d *deps) machine() *session.Machine {
	return session.NewMachine(
		wordstore.NewLoader(d.client, d.logger),
		d.client,
		d.store.SessionRepo(),
		session.WithHistory(d.store.EventRepo()),
		session.WithLogger(d.logger),
	)
}

// synthesizer picks the speech engine. The remote engine talks to
// speech.remote_url, which is the word store unless configured otherwise.
func (d *deps) synthesizer() (speech.Synthesizer, error) {
	remote := d.client
	if d.cfg.Speech.RemoteURL != d.cfg.API.BaseURL {
		remote = newClient(d.cfg, d.cfg.Speech.RemoteURL, d.logger)
	}
	return speech.New(d.cfg.Speech.Engine, remote, d.logger)
}

// scheduler builds a playback scheduler with the configured pacing.
func (d *deps) scheduler(synth speech.Synthesizer, opts ...listen.Option) *listen.Scheduler {
	cfg := listen.Config{Rate: d.cfg.Listen.Rate, Pause: d.cfg.Listen.Pause}
	opts = append(opts, listen.WithLogger(d.logger))
	return listen.NewScheduler(synth, cfg, opts...)
}
