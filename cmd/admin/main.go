package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/redreserve/redreserve-backend/internal/auth"
	"github.com/redreserve/redreserve-backend/pkg/config"
	"github.com/redreserve/redreserve-backend/pkg/db"
	"github.com/redreserve/redreserve-backend/pkg/enums"
	"github.com/redreserve/redreserve-backend/pkg/logger"
	"github.com/redreserve/redreserve-backend/pkg/security"
)

const tempPasswordLength = 16

// admin provisions administrator accounts; self-service signup only ever creates users.
func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "admin"})

	_ = godotenv.Load()

	name := flag.String("name", "", "display name of the account")
	email := flag.String("email", "", "login email of the account")
	password := flag.String("password", "", "initial password (generated when empty)")
	role := flag.String("role", string(enums.AccountRoleAdmin), "account role: admin|user")
	flag.Parse()

	if strings.TrimSpace(*name) == "" || strings.TrimSpace(*email) == "" {
		fmt.Fprintln(os.Stderr, "usage: admin -name NAME -email EMAIL [-password PASSWORD] [-role admin|user]")
		os.Exit(2)
	}

	accountRole, err := enums.ParseAccountRole(*role)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid role: %v\n", err)
		os.Exit(2)
	}

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "admin",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	reg, err := auth.NewRegisterService(auth.RegisterServiceParams{
		Tx:             dbClient,
		PasswordConfig: cfg.Password,
	})
	requireResource(ctx, logg, "register service", err)

	secret := *password
	generated := false
	if secret == "" {
		secret, err = security.GenerateTempPassword(tempPasswordLength)
		requireResource(ctx, logg, "password generator", err)
		generated = true
	}

	summary, err := reg.Provision(ctx, *name, *email, secret, accountRole)
	if err != nil {
		fmt.Fprintf(os.Stderr, "provision failed: %v\n", err)
		os.Exit(1)
	}

	logg.Info(logg.WithFields(ctx, map[string]any{
		"user_id": summary.ID.String(),
		"role":    string(accountRole),
	}), "account provisioned")

	fmt.Printf("provisioned %s <%s> as %s\n", summary.Name, summary.Email, accountRole)
	if generated {
		fmt.Printf("temporary password: %s\n", secret)
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
