package main

import (
	"log"

	"github.com/hexarch/items-api/internal/config"
	"github.com/hexarch/items-api/internal/db"
	"github.com/hexarch/items-api/internal/server"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	conn, err := db.Connect(cfg)
	if err != nil {
		log.Fatalf("db connect error: %v", err)
	}
	if err := db.Migrate(conn); err != nil {
		log.Fatalf("auto migrate error: %v", err)
	}

	srv := server.New(cfg, conn)

	addr := ":" + cfg.Port
	log.Printf("starting %s on %s", cfg.AppName, addr)
	if err := srv.Start(addr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
