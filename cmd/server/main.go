package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/dmitrijs2005/gophstore/internal/server"
	"github.com/dmitrijs2005/gophstore/internal/server/auth"
	"github.com/dmitrijs2005/gophstore/internal/server/config"
)

func main() {

	// server hash-secret <secret> prints a digest usable as client_secret
	if len(os.Args) == 3 && os.Args[1] == "hash-secret" {
		digest, err := auth.HashSecret(os.Args[2])
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(digest)
		return
	}

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := server.NewApp(cfg)

	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
