// Mints an access token for manual testing. Usage:
//
//	JWT_SECRET=... go run ./scripts/gen-jwt [user-id] [role]
package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"race-weekend-api/internal/identity"
)

func main() {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "change-me"
	}

	userID := int64(1)
	if len(os.Args) > 1 {
		n, err := strconv.ParseInt(os.Args[1], 10, 64)
		if err != nil {
			fmt.Fprintln(os.Stderr, "user-id must be an integer")
			os.Exit(1)
		}
		userID = n
	}
	role := identity.RoleUser
	if len(os.Args) > 2 {
		r, ok := identity.ParseRole(os.Args[2])
		if !ok {
			fmt.Fprintln(os.Stderr, "role must be user or admin")
			os.Exit(1)
		}
		role = r
	}

	signed, err := identity.SignToken(secret, userID, role, 24*time.Hour)
	if err != nil {
		panic(err)
	}
	fmt.Println(signed)
}
