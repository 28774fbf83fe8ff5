/*
Example application driving the engine package with the testbed game.
*/
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/greenmatthew/velecs/engine"
	"github.com/greenmatthew/velecs/testbed"
)

func main() {
	config, err := engine.LoadApplicationConfig("application.toml")
	if err != nil {
		panic(err)
	}

	tb := testbed.NewTestGame(config)

	eng, err := engine.New(tb.Game)
	if err != nil {
		panic(err)
	}
	tb.BindAssets(eng.Assets())

	if err := eng.Initialize(); err != nil {
		panic(err)
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	go func() {
		<-sigCh
		_ = eng.Shutdown()
		os.Exit(0)
	}()

	if err := eng.Run(); err != nil {
		panic(err)
	}
}
