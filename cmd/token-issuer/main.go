// Command token-issuer prints a bearer token for calling the API when
// authentication is enabled. It signs with the same SCHOLAR_AUTH_JWT_SECRET
// the server uses.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/phrazzld/scholar-api/internal/config"
	"github.com/phrazzld/scholar-api/internal/service/auth"
)

func main() {
	subject := flag.String("subject", "", "identity recorded in the token's sub claim")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	if err := run(*subject, *ttl); err != nil {
		fmt.Fprintf(os.Stderr, "token-issuer: %v\n", err)
		os.Exit(1)
	}
}

func run(subject string, ttl time.Duration) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if !cfg.Auth.Enabled() {
		return fmt.Errorf("auth is disabled; set %s_AUTH_JWT_SECRET", config.EnvPrefix)
	}

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return err
	}
	token, err := jwtService.GenerateToken(context.Background(), subject, ttl)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
