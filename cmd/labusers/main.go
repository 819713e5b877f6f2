// Command labusers is the offline user-administration tool. It operates on
// the same SQLite database as the server, with no coordination beyond the
// idempotent schema migrations both processes run on open.
//
// Usage:
//
//	labusers add <email> <password>
//	labusers list
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	sqliteadapter "github.com/mwhitfield/labserver/internal/adapter/driven/sqlite"
	"github.com/mwhitfield/labserver/internal/auth"
	"github.com/mwhitfield/labserver/internal/config"
	"github.com/mwhitfield/labserver/internal/domain/model"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		usage()
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, err := sqliteadapter.NewDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}

	users := sqliteadapter.NewUserRepo(db)
	ctx := context.Background()

	switch args[0] {
	case "add":
		if len(args) != 3 {
			usage()
			return fmt.Errorf("add requires <email> and <password>")
		}
		return addUser(ctx, users, args[1], args[2])
	case "list":
		return listUsers(ctx, users)
	default:
		usage()
		return fmt.Errorf("unknown command %q", args[0])
	}
}

// addUser upserts one user keyed by email. Running it again with a new
// password replaces the stored hash and salt; last write wins.
func addUser(ctx context.Context, users *sqliteadapter.UserRepo, email, password string) error {
	hash, salt, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	user := model.User{Email: email, PasswordHash: hash, Salt: salt}
	if err := users.Upsert(ctx, user); err != nil {
		return err
	}

	fmt.Printf("User %s added/updated successfully.\n", email)
	return nil
}

func listUsers(ctx context.Context, users *sqliteadapter.UserRepo) error {
	emails, err := users.ListEmails(ctx)
	if err != nil {
		return err
	}

	if len(emails) == 0 {
		fmt.Println("No users found.")
		return nil
	}

	fmt.Println("Registered Users:")
	for _, email := range emails {
		fmt.Printf("- %s\n", email)
	}
	return nil
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  labusers add <email> <password>")
	fmt.Fprintln(os.Stderr, "  labusers list")
}
