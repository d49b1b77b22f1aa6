package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/johnquangdev/talk-assistant/pkg/config"
	"github.com/johnquangdev/talk-assistant/pkg/jwt"
)

// Issues an API access token for a client, e.g. a recording frontend.
func main() {
	clientID := flag.String("client", "", "client id written into the token")
	role := flag.String("role", "recorder", "role claim")
	flag.Parse()

	if *clientID == "" {
		log.Fatal("-client is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.JWT.AccessSecret == "" {
		log.Fatal("JWT_ACCESS_SECRET is not set")
	}

	manager := jwt.NewManager(cfg.JWT.AccessSecret, cfg.JWT.AccessExpiry, cfg.JWT.Issuer)
	token, err := manager.GenerateAccessToken(*clientID, *role)
	if err != nil {
		log.Fatalf("Failed to generate token: %v", err)
	}
	fmt.Println(token)
}
