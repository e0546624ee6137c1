// Command tokengen issues a signed token for one of the floor roles, for
// terminals and screens that have no login of their own.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/yeremiapane/restaurant-floor/utils"
)

func main() {
	role := flag.String("role", utils.RoleWaiter, "role: "+strings.Join(utils.Roles, ", "))
	subject := flag.String("subject", "", "who the token is for, e.g. a device name")
	ttl := flag.Duration("ttl", 12*time.Hour, "token lifetime")
	flag.Parse()

	_ = godotenv.Load()
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		utils.ErrorLogger.Fatal("JWT_SECRET is not set")
	}
	if !utils.ValidRole(*role) {
		utils.ErrorLogger.Fatalf("unknown role %q", *role)
	}
	if *subject == "" {
		*subject = *role
	}

	token, err := utils.GenerateToken([]byte(secret), *subject, *role, *ttl)
	if err != nil {
		utils.ErrorLogger.Fatal(err)
	}
	fmt.Println(token)
}
