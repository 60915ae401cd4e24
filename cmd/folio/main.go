package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/dfryer1193/folio/blog/domain"
	"github.com/dfryer1193/folio/blog/persistence"
	"github.com/dfryer1193/folio/internal/config"
	"github.com/dfryer1193/folio/internal/logger"
	"github.com/dfryer1193/folio/shared/db/sqlite"
	"github.com/dfryer1193/folio/shared/mongodb"
	"github.com/rs/zerolog/log"
)

const usage = `usage: folio <command> [flags]

commands:
  migrate   copy locally cached posts to the remote store
  export    write posts as JSON (-source auto|remote|cache, -o file)
`

type app struct {
	gateway *persistence.Gateway
	cache   domain.LocalCache
	out     io.Writer
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := logger.Init(cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cacheDB := sqlite.NewSQLiteDB(&sqlite.SQLiteConfig{Path: cfg.CacheDBPath})
	if err := cacheDB.Connect(); err != nil {
		log.Fatal().Err(err).Str("path", cfg.CacheDBPath).Msg("Failed to open local cache")
	}
	defer cacheDB.Close()
	cache := persistence.NewCache(cacheDB.DB())

	var remote domain.RemotePostStore
	remoteDB := mongodb.NewMongoDB(mongodb.MongoConfig{
		URI:        cfg.MongoURI,
		Database:   cfg.MongoDatabase,
		Collection: cfg.MongoCollection,
		Timeout:    cfg.MongoTimeout,
	})
	if err := remoteDB.Connect(ctx); err == nil {
		remote = persistence.NewMongoPostStore(remoteDB.Collection())
		defer remoteDB.Close(context.Background())
	} else if !errors.Is(err, mongodb.ErrNotConfigured) {
		log.Error().Err(err).Msg("Remote store unreachable")
	}

	a := &app{
		gateway: persistence.NewGateway(remote, cache),
		cache:   cache,
		out:     os.Stdout,
	}
	if err := a.run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New(usage)
	}

	switch args[0] {
	case "migrate":
		fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		return a.migrate(ctx)
	case "export":
		fs := flag.NewFlagSet("export", flag.ContinueOnError)
		source := fs.String("source", "auto", "auto, remote or cache")
		output := fs.String("o", "", "output file, stdout when empty")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		return a.export(ctx, *source, *output)
	default:
		return fmt.Errorf("unknown command %q\n\n%s", args[0], usage)
	}
}

func (a *app) migrate(ctx context.Context) error {
	n, err := a.gateway.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("failed to migrate posts: %w", err)
	}
	fmt.Fprintf(a.out, "migrated %d post(s)\n", n)
	return nil
}

// export with source auto reads the remote store and falls back to the cache.
func (a *app) export(ctx context.Context, source, output string) error {
	var (
		posts []*domain.Post
		err   error
	)
	switch source {
	case "remote":
		posts, err = a.gateway.FetchAll(ctx)
	case "cache":
		posts, err = a.cache.LoadPosts(ctx)
	case "auto":
		posts, err = a.gateway.FetchAll(ctx)
		if errors.Is(err, domain.ErrBackendUnavailable) {
			log.Warn().Err(err).Msg("Exporting from local cache")
			posts, err = a.cache.LoadPosts(ctx)
		}
	default:
		return fmt.Errorf("unknown source %q", source)
	}
	if err != nil {
		return fmt.Errorf("failed to read posts: %w", err)
	}
	if posts == nil {
		posts = []*domain.Post{}
	}

	w := a.out
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", output, err)
		}
		defer f.Close()
		w = f
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(posts); err != nil {
		return fmt.Errorf("failed to write posts: %w", err)
	}
	return nil
}
