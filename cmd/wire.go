// ABOUTME: Builds the session store, client, lobby and controller for a command
// ABOUTME: Picks the token store backend and the log destination from configuration

package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/markalston/tictactoe-client/internal/client"
	"github.com/markalston/tictactoe-client/internal/config"
	"github.com/markalston/tictactoe-client/internal/game"
	"github.com/markalston/tictactoe-client/internal/lobby"
	"github.com/markalston/tictactoe-client/internal/logger"
	"github.com/markalston/tictactoe-client/internal/session"
)

// runtime holds the wired components shared by every command
type runtime struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *session.Store
	api     *client.Client
	lobby   *lobby.Directory
	closers []func() error
}

// newRuntime wires components from configuration, logging to logOut
func newRuntime(ctx context.Context, logOut io.Writer) (*runtime, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	log := logger.New(logOut, cfg.LogLevel, cfg.LogFormat)
	rt := &runtime{cfg: cfg, logger: log}

	tokens, err := rt.tokenStore(ctx)
	if err != nil {
		return nil, err
	}

	// The client reads the token through the store, which is built after it
	var store *session.Store
	rt.api = client.New(cfg.APIURL,
		client.WithTimeout(cfg.RequestTimeout),
		client.WithLogger(log),
		client.WithTokenSource(func() string { return store.Token() }),
	)
	store = session.New(rt.api, tokens, session.WithLogger(log))
	rt.store = store
	rt.lobby = lobby.New(rt.api, store)

	log.Debug("Runtime ready", "api_url", cfg.APIURL, "token_store", cfg.TokenStore, "config_dir", cfg.ConfigDir)
	return rt, nil
}

func (rt *runtime) tokenStore(ctx context.Context) (session.TokenStore, error) {
	switch rt.cfg.TokenStore {
	case config.TokenStoreRedis:
		rs, err := session.NewRedisStore(ctx, rt.cfg.Redis.Addr, rt.cfg.Redis.Profile)
		if err != nil {
			return nil, err
		}
		rt.closers = append(rt.closers, rs.Close)
		return rs, nil
	default:
		return session.NewFileStore(rt.cfg.ConfigDir), nil
	}
}

// controller builds a game controller using the configured poll interval
func (rt *runtime) controller() *game.Controller {
	return game.New(game.Deps{
		Lobby:    rt.lobby,
		API:      rt.api,
		Session:  rt.store,
		Interval: rt.cfg.PollInterval,
		Logger:   rt.logger,
	})
}

// restore loads the saved session and fails when there is none
func (rt *runtime) restore(ctx context.Context) error {
	if err := rt.store.Restore(ctx); err != nil {
		return err
	}
	if !rt.store.Authenticated() {
		return errNotLoggedIn
	}
	return nil
}

func (rt *runtime) Close() {
	for _, c := range rt.closers {
		if err := c(); err != nil {
			rt.logger.Warn("Failed to close resource", "error", err)
		}
	}
}
