package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/simplog/internal/client/cli"
	"github.com/dmitrijs2005/simplog/internal/client/client"
	"github.com/dmitrijs2005/simplog/internal/client/config"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		return 2
	}

	var conn *client.GRPCClient
	dial := func(cfg *config.Config) (cli.API, error) {
		c, err := client.Dial(cfg.ServerEndpointAddr, cfg.Token, cfg.RequestTimeout)
		if err != nil {
			return nil, err
		}
		conn = c
		return c, nil
	}

	root := cli.NewRootCommand(cfg, dial, os.Stdin, os.Stdout)
	err = root.ExecuteContext(context.Background())
	if conn != nil {
		_ = conn.Close()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}
