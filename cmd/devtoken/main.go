package main

// Mint a bearer token for local testing against the API:
//   JWT_SECRET=... go run ./cmd/devtoken -sub user-1 -email me@example.com

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"coverage-backend/internal/shared/auth"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "devtoken: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("devtoken", flag.ContinueOnError)
	sub := fs.String("sub", "", "subject (user id)")
	email := fs.String("email", "", "email claim")
	name := fs.String("name", "", "name claim")
	ttl := fs.Duration("ttl", time.Hour, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*sub) == "" {
		return fmt.Errorf("-sub is required")
	}
	if *ttl <= 0 {
		return fmt.Errorf("-ttl must be positive")
	}

	now := time.Now().UTC()
	token, err := auth.SignJWT(auth.Claims{
		Sub:   *sub,
		Email: *email,
		Name:  *name,
		Iat:   now.Unix(),
		Exp:   now.Add(*ttl).Unix(),
	})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, token)
	return err
}
