// Command qgclient is a smoke client for the synchronization core: it logs
// in, prints the render-gate decision, optionally submits codes, and shows
// the server-confirmed balance after each step.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/quotegarden/client-core/internal/app"
	"github.com/quotegarden/client-core/internal/core/domain"
	"github.com/quotegarden/client-core/internal/infrastructure/config"
	"github.com/quotegarden/client-core/pkg/logger"
)

func main() {
	email := flag.String("email", "", "log in with this email")
	password := flag.String("password", "", "password for -email")
	redeem := flag.String("redeem", "", "submit a redeem code after login")
	referral := flag.String("referral", "", "submit a referral code after login")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.Env == "development"})

	a, err := app.Init(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("wiring client core")
	}
	a.Start(ctx)

	if *email != "" {
		if err := a.Sessions.Login(ctx, *email, *password); err != nil {
			log.Fatal().Err(err).Msg("login failed")
		}
	}
	printSession(ctx, a)
	printView(a)

	if *redeem != "" {
		out, err := a.Economy.Redeem(ctx, *redeem)
		if err != nil {
			log.Error().Err(err).Msg("redeem failed")
		} else {
			fmt.Printf("redeem: %s\n", out.Message)
		}
		printSession(ctx, a)
	}

	if *referral != "" {
		out, err := a.Economy.UseReferral(ctx, *referral)
		if err != nil {
			log.Error().Err(err).Msg("referral failed")
		} else {
			fmt.Printf("referral bonus: %d flowers\n", out.Bonus)
		}
		printSession(ctx, a)
	}
}

func printSession(ctx context.Context, a *app.App) {
	sess, err := a.Sessions.Current(ctx)
	if err != nil {
		fmt.Printf("session: unavailable (%v)\n", err)
		return
	}
	if sess.Status != domain.SessionPresent {
		fmt.Printf("session: %s\n", sess.Status)
		return
	}
	fmt.Printf("session: %s (%s), %d flowers, referral code %s\n",
		sess.User.Username, sess.User.Role, sess.User.Flowers, sess.User.ReferralCode)
}

func printView(a *app.App) {
	view := a.View()
	fmt.Printf("shell: %s\n", view.Shell)
	if view.Notification != nil {
		fmt.Printf("notification (%s): %s\n", view.Notification.Type, view.Notification.Message)
	}
}
