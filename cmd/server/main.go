package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/trustkeeper/internal/prompt"
	"github.com/dmitrijs2005/trustkeeper/internal/server"
	"github.com/dmitrijs2005/trustkeeper/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	prompter := prompt.NewTerminal(os.Stdin, os.Stdout, int(os.Stdin.Fd()))

	app, err := server.NewApp(ctx, cfg, prompter, os.Stderr)
	if err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		os.Exit(1)
	}

}
