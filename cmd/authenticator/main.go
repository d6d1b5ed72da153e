// Command authenticator is a terminal front end for the authenticator core:
// it enrolls accounts, shows codes and approves login requests.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrymomot/mfakit/pkg/account"
	"github.com/dmitrymomot/mfakit/pkg/applock"
	"github.com/dmitrymomot/mfakit/pkg/config"
	"github.com/dmitrymomot/mfakit/pkg/credential"
	"github.com/dmitrymomot/mfakit/pkg/kvstore"
	"github.com/dmitrymomot/mfakit/pkg/logger"
	"github.com/dmitrymomot/mfakit/pkg/signature"
)

const usage = `usage: authenticator [-env file] <command> [args]

commands:
  add <otpauth-uri | setup-json>   enroll an account from QR content
  list                             list accounts with their current codes
  code <id>                        print the current code of one account
  verify <id> <code>               check a code against the +/-1 step window
  delete <id>                      remove an account and its credentials
  qr <id> <file.png>               export an account as a setup QR code
  approve <login-json>             approve a login request interactively
  pin <id> <pin>                   set the account PIN and enable the method
  lock <pin|off>                   set or remove the app lock PIN
  keygen                           print a new AUTH_STORE_KEY
`

// app holds the wired components shared by every command.
type app struct {
	log      *slog.Logger
	cfg      config.Config
	registry *account.Registry
	creds    *credential.Service
	lock     *applock.Lock
	deviceID string
	in       *lineReader
	out      io.Writer
}

func main() {
	envFile := flag.String("env", "", "load settings from this .env file")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *envFile, args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, envFile string, args []string) error {
	if args[0] == "keygen" {
		return keygen(os.Stdout)
	}

	var paths []string
	if envFile != "" {
		paths = append(paths, envFile)
	}
	if err := config.LoadEnv(paths...); err != nil && (envFile != "" || !errors.Is(err, fs.ErrNotExist)) {
		return err
	}
	var cfg config.Config
	if err := config.Load(&cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logger.New(append(cfg.LoggerOptions("authenticator"), logger.WithOutput(os.Stderr))...)
	logger.SetAsDefault(log)

	kv, closer, err := kvstore.Open(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer closer.Close()

	deviceID, err := signature.LoadOrCreateDeviceID(ctx, kv)
	if err != nil {
		return err
	}

	creds := credential.NewService(credential.NewKVStore(kv), credential.WithLogger(log))
	a := &app{
		log:      log,
		cfg:      cfg,
		registry: account.NewRegistry(kv, account.WithCredentials(creds), account.WithLogger(log)),
		creds:    creds,
		lock:     applock.New(kv, applock.WithLogger(log)),
		deviceID: deviceID,
		in:       newLineReader(os.Stdin, os.Stdout),
		out:      os.Stdout,
	}

	if err := a.unlock(ctx); err != nil {
		return err
	}
	return a.dispatch(ctx, args[0], args[1:])
}

func (a *app) dispatch(ctx context.Context, cmd string, args []string) error {
	need := func(n int) error {
		if len(args) != n {
			return fmt.Errorf("%s: expected %d argument(s), got %d\n\n%s", cmd, n, len(args), usage)
		}
		return nil
	}

	switch cmd {
	case "add":
		if err := need(1); err != nil {
			return err
		}
		return a.add(ctx, args[0])
	case "list":
		return a.list(ctx)
	case "code":
		if err := need(1); err != nil {
			return err
		}
		return a.code(ctx, args[0])
	case "verify":
		if err := need(2); err != nil {
			return err
		}
		return a.verify(ctx, args[0], args[1])
	case "delete":
		if err := need(1); err != nil {
			return err
		}
		return a.remove(ctx, args[0])
	case "qr":
		if err := need(2); err != nil {
			return err
		}
		return a.exportQR(ctx, args[0], args[1])
	case "approve":
		if err := need(1); err != nil {
			return err
		}
		return a.approve(ctx, args[0])
	case "pin":
		if err := need(2); err != nil {
			return err
		}
		return a.setPIN(ctx, args[0], args[1])
	case "lock":
		if err := need(1); err != nil {
			return err
		}
		return a.setLock(ctx, args[0])
	default:
		return fmt.Errorf("unknown command %q\n\n%s", cmd, usage)
	}
}
