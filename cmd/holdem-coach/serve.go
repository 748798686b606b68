package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/lox/holdem-coach/internal/server"
	"golang.org/x/sync/errgroup"
)

type ServeCmd struct {
	Addr string `help:"Listen address, overrides the server block (host:port)"`
}

func (c *ServeCmd) Run(cli *CLI) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e, err := cli.setup(ctx, false)
	if err != nil {
		return err
	}
	defer e.close()

	sess, err := e.newSession(ctx)
	if err != nil {
		return err
	}

	addr := e.cfg.ServerAddress()
	if c.Addr != "" {
		addr = c.Addr
	}

	srv := server.NewServer(sess, e.logger)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.ListenAndServe(gctx, addr)
	})
	g.Go(func() error {
		<-gctx.Done()
		return sess.Close()
	})
	return g.Wait()
}
