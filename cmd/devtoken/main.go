// Package main mints an access token for local development.
//
//	go run ./cmd/devtoken -company 1 -perm report:profitability:read
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"campos/internal/config"
	"campos/internal/domain/auth"
)

func main() {
	var (
		userID    = flag.String("user", "dev", "user id (uid claim)")
		companyID = flag.Int64("company", 0, "company id (cid claim), required")
		perms     = flag.String("perm", "report:profitability:read", "comma separated permissions")
		admin     = flag.Bool("admin", false, "grant every permission")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	svc := auth.NewJWTService(auth.JWTConfig{
		Secret:         cfg.JWT.Secret,
		Issuer:         cfg.JWT.Issuer,
		AccessTokenTTL: cfg.JWT.AccessTokenTTL,
	})

	var permissions []string
	for _, p := range strings.Split(*perms, ",") {
		if p = strings.TrimSpace(p); p != "" {
			permissions = append(permissions, p)
		}
	}

	token, expiresAt, err := svc.GenerateAccessToken(auth.TokenSubject{
		UserID:      *userID,
		CompanyID:   *companyID,
		Permissions: permissions,
		IsAdmin:     *admin,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "generate token: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "expires at %s\n", expiresAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Println(token)
}
