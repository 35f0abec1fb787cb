// seed registers development accounts for local testing through the same provisioning path
// as the HTTP API. Idempotent: accounts that already exist are left alone.
package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"org-membership-service/internal/app"
	"org-membership-service/internal/config"
	"org-membership-service/internal/db"
	"org-membership-service/internal/observability"
	"org-membership-service/internal/platform/apperr"
	provisioning "org-membership-service/internal/provisioning/service"
	userdomain "org-membership-service/internal/user/domain"
)

const (
	devUserEmail = "dev@example.com"
	memberEmail  = "member@example.com"
	devPassword  = "password123"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}
	log, err := observability.NewLogger(cfg.LogLevel, "text", nil)
	if err != nil {
		logrus.Fatalf("logger: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	ctx := context.Background()
	a, err := app.Build(ctx, cfg, conn, log, nil)
	if err != nil {
		log.Fatalf("app: %v", err)
	}

	dev, err := ensureUser(ctx, a.Provisioning, userdomain.Registration{
		Email: devUserEmail, FirstName: "Dev", LastName: "User", Password: devPassword,
	})
	if err != nil {
		log.Fatalf("seed dev user: %v", err)
	}
	member, err := ensureUser(ctx, a.Provisioning, userdomain.Registration{
		Email: memberEmail, FirstName: "Member", LastName: "User", Password: devPassword,
	})
	if err != nil {
		log.Fatalf("seed member user: %v", err)
	}

	orgs, err := a.Provisioning.ListOrganizationsForUser(ctx, dev)
	if err != nil {
		log.Fatalf("list dev organizations: %v", err)
	}
	for _, o := range orgs {
		if o.CreatedBy != dev.ID {
			continue
		}
		err := a.Provisioning.AddUserToOrganization(ctx, o.ID, member.ID)
		if err != nil && !errors.Is(err, apperr.ErrAlreadyMember) {
			log.Fatalf("add member to %s: %v", o.Name, err)
		}
		log.Infof("%s is a member of %q", memberEmail, o.Name)
		break
	}

	log.Info("Seed completed successfully.")
	fmt.Printf("Dev login: %s / %s\n", devUserEmail, devPassword)
	fmt.Printf("Member login: %s / %s\n", memberEmail, devPassword)
}

// ensureUser registers reg unless the email is already taken, then logs in to return the user.
func ensureUser(ctx context.Context, p *provisioning.AccountProvisioning, reg userdomain.Registration) (*userdomain.User, error) {
	res, err := p.Register(ctx, reg)
	if err == nil {
		return res.User, nil
	}
	if !errors.Is(err, apperr.ErrDuplicateEmail) {
		return nil, err
	}
	login, err := p.Login(ctx, reg.Email, reg.Password)
	if err != nil {
		return nil, fmt.Errorf("%s exists but the dev password does not match: %w", reg.Email, err)
	}
	return login.User, nil
}
