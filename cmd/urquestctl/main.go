// urquestctl is the operator CLI: it applies migrations and runs the
// ranking and review operations directly against the configured store.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/fastygo/urquest/domain"
	"github.com/fastygo/urquest/internal/config"
	pgInfra "github.com/fastygo/urquest/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/urquest/internal/infrastructure/redis"
	"github.com/fastygo/urquest/internal/infrastructure/storage"
	"github.com/fastygo/urquest/pkg/logger"
	"github.com/fastygo/urquest/repository"
	redisRepo "github.com/fastygo/urquest/repository/redis"
	"github.com/fastygo/urquest/usecase/access"
	profileUC "github.com/fastygo/urquest/usecase/profile"
	submissionUC "github.com/fastygo/urquest/usecase/submission"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	storage  string
	boltPath string
	down     bool
	feedback string
	logLevel string
	noCache  bool
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	var opts options
	flagSet := pflag.NewFlagSet("urquestctl", pflag.ContinueOnError)
	flagSet.StringVar(&opts.storage, "storage", "", "storage driver override (postgres or bolt)")
	flagSet.StringVar(&opts.boltPath, "bolt-path", "", "bolt database file override")
	flagSet.BoolVar(&opts.down, "down", false, "migrate: roll every migration back instead of applying")
	flagSet.StringVarP(&opts.feedback, "feedback", "f", "", "review: feedback stored with the decision")
	flagSet.StringVar(&opts.logLevel, "log-level", "warn", "log level")
	flagSet.BoolVar(&opts.noCache, "no-cache", false, "do not touch the Redis leaderboard cache")
	flagSet.SetInterspersed(true)
	flagSet.Usage = func() { printHelp(stdout, flagSet) }

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	rest := flagSet.Args()
	if len(rest) == 0 {
		printHelp(stdout, flagSet)
		return fmt.Errorf("missing command")
	}

	if opts.storage != "" {
		os.Setenv("STORAGE_DRIVER", opts.storage)
	}
	if opts.boltPath != "" {
		os.Setenv("BOLTDB_PATH", opts.boltPath)
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logger.New(logger.Config{Level: opts.logLevel, Encoding: "console", Service: "urquestctl"})
	if err != nil {
		return err
	}
	defer log.Sync()

	command, params := rest[0], rest[1:]
	if command == "migrate" {
		return migrate(cfg, opts, log, stdout)
	}

	store, err := storage.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()

	switch command {
	case "leaderboard":
		cache, closeCache := openCache(ctx, cfg, opts, log)
		defer closeCache()
		profiles := profileUC.New(store.Users, store.Submissions, cache, log)
		entries, err := profiles.RefreshLeaderboard(ctx)
		if err != nil {
			return err
		}
		return printJSON(stdout, entries)

	case "profile":
		if len(params) != 1 {
			return fmt.Errorf("usage: urquestctl profile <user-id>")
		}
		profiles := profileUC.New(store.Users, store.Submissions, nil, log)
		profile, err := profiles.Profile(ctx, params[0])
		if err != nil {
			return err
		}
		return printJSON(stdout, profile)

	case "review":
		if len(params) != 2 {
			return fmt.Errorf("usage: urquestctl review <submission-id> approve|reject")
		}
		id, err := strconv.ParseInt(params[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid submission id %q", params[0])
		}
		decision, err := domain.ParseDecision(params[1])
		if err != nil {
			return err
		}
		cache, closeCache := openCache(ctx, cfg, opts, log)
		defer closeCache()
		evaluator := access.NewEvaluator(store.Users, store.Organizations, store.Roles)
		submissions := submissionUC.New(store.Tasks, store.Users, store.Submissions, cache, evaluator, log)
		sub, err := submissions.Review(ctx, id, decision, opts.feedback)
		if err != nil {
			return err
		}
		return printJSON(stdout, sub)
	}
	return fmt.Errorf("unknown command %q", command)
}

// openCache connects to the server's leaderboard cache so operator approvals
// invalidate it. Without Redis the server keeps serving its cached board for
// at most LEADERBOARD_CACHE_TTL.
func openCache(ctx context.Context, cfg *config.Config, opts options, log *zap.Logger) (repository.LeaderboardCache, func()) {
	if opts.noCache {
		return nil, func() {}
	}
	redisCfg := cfg.Redis
	redisCfg.ConnectMaxElapsed = 0
	client, err := redisInfra.NewClient(ctx, redisCfg, log)
	if err != nil {
		log.Warn("leaderboard cache unavailable, server board may be stale until its ttl",
			zap.Duration("ttl", cfg.Leaderboard.CacheTTL),
			zap.Error(err),
		)
		return nil, func() {}
	}
	return redisRepo.NewLeaderboardCache(client, cfg.Leaderboard.CacheTTL), func() { _ = client.Close() }
}

func migrate(cfg *config.Config, opts options, log *zap.Logger, stdout io.Writer) error {
	if cfg.Storage.Driver != config.StoragePostgres {
		fmt.Fprintf(stdout, "storage driver %s has no migrations\n", cfg.Storage.Driver)
		return nil
	}
	dir := pgInfra.Up
	if opts.down {
		dir = pgInfra.Down
	}
	if err := pgInfra.Migrate(cfg.Database, cfg.Migrations.Path, dir, log); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "migrations %s: ok\n", dir)
	return nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printHelp(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, `urquestctl: operator commands for UrQuest.

Usage:
  urquestctl [flags] <command> [args]

Commands:
  migrate                              apply (or with --down, roll back) SQL migrations
  leaderboard                          print the top %d users
  profile <user-id>                    print a user's XP, level, rank and history
  review <submission-id> approve|reject  settle a pending submission

Flags:
%s`, domain.LeaderboardSize, strings.TrimRight(flagSet.FlagUsages(), "\n")+"\n")
}
