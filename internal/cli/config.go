// Package cli holds the shared wiring conventions of the replyflow
// commands: engine construction from flags and bot-file seeding.
package cli

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/replyflow/replyflow"
	"github.com/replyflow/replyflow/internal/logging"
	"github.com/replyflow/replyflow/pkg/adapters/memory"
	"github.com/replyflow/replyflow/pkg/adapters/rag"
	redisstore "github.com/replyflow/replyflow/pkg/adapters/redis"
	"github.com/replyflow/replyflow/pkg/ports"
)

// Options collects the flag values shared by the serve, chat and mcp
// commands.
type Options struct {
	Backend       string // "memory" or "redis"
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
	SessionTTL    time.Duration
	RAGURL        string
	RAGTimeout    time.Duration
	HistoryLimit  int
	Debug         bool
}

// NewLogger builds the standard CLI logger for the given debug setting.
func NewLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return logging.New(level)
}

// CreateStore initializes the document store the options select.
func CreateStore(opts Options) (ports.Store, error) {
	switch opts.Backend {
	case "", "memory":
		return memory.NewStore(), nil
	case "redis":
		storeOpts := []redisstore.Option{}
		if opts.RedisPrefix != "" {
			storeOpts = append(storeOpts, redisstore.WithPrefix(opts.RedisPrefix))
		}
		if opts.SessionTTL > 0 {
			storeOpts = append(storeOpts, redisstore.WithSessionTTL(opts.SessionTTL))
		}
		return redisstore.New(opts.RedisAddr, opts.RedisPassword, opts.RedisDB, storeOpts...), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q (want memory or redis)", opts.Backend)
	}
}

// CreateEngine initializes a replyflow engine with standard CLI conventions.
func CreateEngine(opts Options, logger *slog.Logger, extra ...replyflow.Option) (*replyflow.Engine, error) {
	store, err := CreateStore(opts)
	if err != nil {
		return nil, err
	}

	engineOpts := []replyflow.Option{
		replyflow.WithStore(store),
		replyflow.WithLogger(logger),
	}
	if opts.RAGURL != "" {
		ragOpts := []rag.Option{}
		if opts.RAGTimeout > 0 {
			ragOpts = append(ragOpts, rag.WithTimeout(opts.RAGTimeout))
		}
		engineOpts = append(engineOpts, replyflow.WithAnswerer(rag.New(opts.RAGURL, ragOpts...)))
	}
	if opts.HistoryLimit > 0 {
		engineOpts = append(engineOpts, replyflow.WithHistoryLimit(opts.HistoryLimit))
	}
	engineOpts = append(engineOpts, extra...)

	return replyflow.New(engineOpts...), nil
}
