package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/subcommands"

	"github.com/mamadbah2/stocktake/internal/service/auth"
)

type tokenCmd struct {
	uid   string
	email string
	ttl   time.Duration
}

func (*tokenCmd) Name() string     { return "token" }
func (*tokenCmd) Synopsis() string { return "issue a bearer token" }
func (*tokenCmd) Usage() string {
	return `token -uid <user id> [-email <address>] [-ttl 720h]

  Signs a token with JWT_SECRET. The role is resolved by the server when the
  token is presented, not baked into it.
`
}

func (c *tokenCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.uid, "uid", "", "user id (token subject)")
	f.StringVar(&c.email, "email", "", "email claim")
	f.DurationVar(&c.ttl, "ttl", 30*24*time.Hour, "token lifetime")
}

func (c *tokenCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.uid == "" {
		fmt.Fprintln(os.Stderr, "-uid is required")
		return subcommands.ExitUsageError
	}

	a, err := openApp(ctx, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "stockctl: %v\n", err)
		return subcommands.ExitFailure
	}

	svc, err := auth.NewService(a.cfg.Auth.JWTSecret, nil, a.logger.Named("svc.auth"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "token: %v\n", err)
		return subcommands.ExitFailure
	}

	token, err := svc.IssueToken(c.uid, c.email, c.ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "token: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Println(token)
	return subcommands.ExitSuccess
}
