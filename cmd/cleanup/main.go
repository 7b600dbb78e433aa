// Command cleanup deletes salary records, either all of them or those of one
// user.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/SaranyaKannan28/summer-internship/config"
	"github.com/SaranyaKannan28/summer-internship/database"
	"github.com/SaranyaKannan28/summer-internship/logging"
)

func main() {
	email := flag.String("email", "", "only delete the records owned by this user")
	flag.Parse()

	if err := cleanup(*email); err != nil {
		fmt.Fprintf(os.Stderr, "cleanup: %v\n", err)
		os.Exit(1)
	}
}

func cleanup(email string) error {
	cfg, err := config.Load(nil)
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.LogLevel, "console", os.Stdout)
	if err != nil {
		return err
	}

	ctx := context.Background()
	db, err := database.Open(ctx, cfg.DatabaseURL, log)
	if err != nil {
		return err
	}
	defer database.Close(db)

	var ownerID *uint
	if email != "" {
		user, err := database.NewUserStore(db).FindByEmail(ctx, email)
		if err != nil {
			return fmt.Errorf("find user %s: %w", email, err)
		}
		ownerID = &user.ID
	}

	n, err := database.NewSalaryStore(db).DeleteAll(ctx, ownerID)
	if err != nil {
		return err
	}
	log.Info().Int64("deleted", n).Str("email", email).Msg("cleanup finished")
	return nil
}
