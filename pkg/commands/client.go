package commands

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"

	"rmoflow/pkg/app"
	"rmoflow/pkg/cache"
	"rmoflow/pkg/commands/options"
	"rmoflow/pkg/config"
	"rmoflow/pkg/events"
	"rmoflow/pkg/notify"
	"rmoflow/pkg/remote"
	"rmoflow/pkg/remote/local"
	"rmoflow/pkg/remote/supabase"
)

// client bundles the wired backends for one command invocation.
type client struct {
	cfg   *config.Config
	store *local.Store
	blobs remote.BlobStore
	id    *local.Identity
	cache *cache.Cache
	svc   *app.Service
	sess  *app.Session
	msgs  chan tea.Msg
	log   *logrus.Logger
}

// newClient loads config and stands the backends up. The caller owns close.
func newClient() (*client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log := logrus.New()
	log.SetLevel(logrus.WarnLevel)

	store, err := local.NewStore(cfg.BasePath, log)
	if err != nil {
		return nil, err
	}

	var blobs remote.BlobStore
	switch cfg.BlobBackend {
	case config.BackendSupabase:
		blobs = supabase.NewBlobStore(cfg.Supabase.ProjectID, cfg.Supabase.APIKey, cfg.Supabase.Bucket)
	default:
		lb, err := local.NewBlobStore(cfg.BasePath)
		if err != nil {
			store.Close()
			return nil, err
		}
		blobs = lb
	}

	id, err := local.NewIdentity(cfg.BasePath)
	if err != nil {
		store.Close()
		return nil, err
	}

	c := cache.New()
	msgs := make(chan tea.Msg, 64)
	emit := func(m tea.Msg) {
		select {
		case msgs <- m:
		default:
		}
	}

	hub := notify.NewHub(notify.TerminalSink{Out: color.Output})
	svc := app.NewService(store, blobs, id, c, hub, log)
	sess := app.NewSession(store, id, c, emit, log)

	return &client{
		cfg:   cfg,
		store: store,
		blobs: blobs,
		id:    id,
		cache: c,
		svc:   svc,
		sess:  sess,
		msgs:  msgs,
		log:   log,
	}, nil
}

func (c *client) close() {
	c.sess.Stop()
	c.store.Close()
}

// signIn authenticates and blocks until the initial snapshots land in the
// cache, so one-shot commands see current data.
func (c *client) signIn(ctx context.Context, auth *options.AuthOptions) error {
	if err := auth.Validate(); err != nil {
		return err
	}
	c.sess.Start()
	if _, err := c.id.SignIn(ctx, auth.Email, auth.Password); err != nil {
		return fmt.Errorf("sign in: %w", err)
	}

	seen := make(map[events.Collection]bool)
	deadline := time.After(3 * time.Second)
	for len(seen) < 4 {
		select {
		case m := <-c.msgs:
			if cu, ok := m.(events.CacheUpdatedMsg); ok {
				seen[cu.Collection] = true
			}
		case <-deadline:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
