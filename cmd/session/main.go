// Command session logs in to the auth service and watches the credential
// until it expires or the user signs out.
//
// While running it reads single-letter commands from stdin:
//
//	p  show the profile
//	e  extend the session (only meaningful during a countdown)
//	d  dismiss the countdown
//	l  log out now
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/aussiebroadwan/tabsession/pkg/authsdk"
	"github.com/aussiebroadwan/tabsession/pkg/slogx"

	"github.com/spf13/pflag"
)

type options struct {
	server      string
	email       string
	remember    bool
	credentials string
	warning     time.Duration
	interval    time.Duration
	countdown   time.Duration
	logLevel    string
}

func parseFlags(args []string) (options, error) {
	var opts options

	home, _ := os.UserHomeDir()
	defaults := authsdk.DefaultMonitorOptions()

	fs := pflag.NewFlagSet("session", pflag.ContinueOnError)
	fs.StringVarP(&opts.server, "server", "s", "http://localhost:8080", "auth service base URL")
	fs.StringVarP(&opts.email, "email", "e", "", "log in as this email (password is read from TABSESSION_PASSWORD or stdin)")
	fs.BoolVarP(&opts.remember, "remember", "r", false, "persist the credential across runs")
	fs.StringVar(&opts.credentials, "credentials", filepath.Join(home, ".tabsession", "credentials.json"), "durable credential file")
	fs.DurationVar(&opts.warning, "warning", defaults.WarningThreshold, "warn this long before expiry")
	fs.DurationVar(&opts.interval, "interval", defaults.CheckInterval, "credential check interval")
	fs.DurationVar(&opts.countdown, "countdown", authsdk.DefaultCoordinatorOptions().Countdown, "grace period after the warning")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	return opts, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "session:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, in io.Reader, out io.Writer) error {
	logger := slogx.New(slogx.Config{
		Service: "tabsession-cli",
		Level:   opts.logLevel,
		Format:  "text",
		Output:  os.Stderr,
	})

	store := authsdk.NewCredentialStore(authsdk.NewFileStorage(opts.credentials), authsdk.NewMemoryStorage())
	client := authsdk.NewSDKClient(opts.server, store, authsdk.WithLogger(logger))

	lines := bufio.NewScanner(in)

	if opts.email != "" {
		password, err := readPassword(lines, out)
		if err != nil {
			return err
		}
		resp, err := client.Login(ctx, opts.email, password, opts.remember)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s Welcome, %s.\n", resp.Message, resp.User.FullName)
	} else if _, ok, err := store.Token(); err != nil {
		return err
	} else if !ok {
		return errors.New("no stored credential; pass --email to log in")
	}

	signedOut := make(chan struct{})
	var once sync.Once
	logout := authsdk.NewLogoutOrchestrator(store, authsdk.NavigatorFunc(func(target string) {
		fmt.Fprintf(out, "signed out, continue at %s\n", target)
		once.Do(func() { close(signedOut) })
	}), authsdk.WithLogoutLogger(logger))

	gw := authsdk.NewGateway(client, logout)

	mon := authsdk.NewMonitor(store, logout, authsdk.MonitorOptions{
		WarningThreshold: opts.warning,
		CheckInterval:    opts.interval,
		AutoLogout:       true,
		ShowWarning:      true,
	},
		authsdk.WithMonitorLogger(logger),
		authsdk.WithNotifier(authsdk.NotifierFunc(func(message string, _ authsdk.State) {
			fmt.Fprintln(out, message)
		})),
	)
	coord := authsdk.NewCoordinator(logout, store, authsdk.CoordinatorOptions{Countdown: opts.countdown},
		authsdk.WithCoordinatorLogger(logger),
	)

	var last authsdk.Status = -1
	mon.OnState(func(s authsdk.State) {
		if s.Status == last {
			return
		}
		last = s.Status
		fmt.Fprintf(out, "session %s (%s)\n", s.Status, s.Label)
	})
	coord.OnChange(func(c authsdk.CountdownState) {
		if c.Active {
			fmt.Fprintf(out, "logging out in %ds [e]xtend [d]ismiss [l]ogout\n", c.SecondsLeft)
		}
	})

	w := authsdk.NewWatch(mon, coord)
	w.Start(ctx)
	defer w.Close()

	commands := make(chan string)
	go func() {
		defer close(commands)
		for lines.Scan() {
			select {
			case commands <- strings.TrimSpace(lines.Text()):
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-signedOut:
			return nil
		case cmd, ok := <-commands:
			if !ok {
				// Stdin closed; keep watching until expiry or a signal.
				commands = nil
				continue
			}
			handleCommand(ctx, cmd, gw, coord, out)
		}
	}
}

func handleCommand(ctx context.Context, cmd string, gw *authsdk.Gateway, coord *authsdk.Coordinator, out io.Writer) {
	switch cmd {
	case "p":
		profile, err := gw.Profile(ctx)
		if err != nil {
			fmt.Fprintln(out, "profile:", err)
			return
		}
		fmt.Fprintf(out, "%s <%s> role=%s expires in %s\n",
			profile.User.FullName, profile.User.Email, profile.User.Role,
			authsdk.FormatRemaining(profile.Expiry-time.Now().Unix()))
	case "e":
		if err := coord.Extend(ctx); err != nil {
			fmt.Fprintln(out, "extend:", err)
		}
	case "d":
		coord.Dismiss()
	case "l":
		coord.LogoutNow()
	case "":
	default:
		fmt.Fprintf(out, "unknown command %q\n", cmd)
	}
}

func readPassword(lines *bufio.Scanner, out io.Writer) (string, error) {
	if pw := os.Getenv("TABSESSION_PASSWORD"); pw != "" {
		return pw, nil
	}
	fmt.Fprint(out, "password: ")
	if !lines.Scan() {
		if err := lines.Err(); err != nil {
			return "", err
		}
		return "", errors.New("no password given")
	}
	return strings.TrimSpace(lines.Text()), nil
}
