package main

import (
	"context"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dmitrymomot/mfakit/pkg/account"
	"github.com/dmitrymomot/mfakit/pkg/applock"
	"github.com/dmitrymomot/mfakit/pkg/approval"
	"github.com/dmitrymomot/mfakit/pkg/kvstore"
	"github.com/dmitrymomot/mfakit/pkg/totp"
)

const qrSize = 256

func keygen(w io.Writer) error {
	key, err := kvstore.GenerateKey()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "AUTH_STORE_KEY=%s\n", base64.StdEncoding.EncodeToString(key))
	return err
}

func (a *app) add(ctx context.Context, content string) error {
	draft, err := account.ParseEnrollment(content)
	if err != nil {
		return err
	}
	acc, err := a.registry.Add(ctx, draft)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "added %s (%s)\n", acc.ID, displayName(acc))
	if problems := account.ValidateCentralized(acc); acc.IsCentralizedAuth && len(problems) > 0 {
		fmt.Fprintf(a.out, "warning: login approval will not work: %v\n", problems)
	}
	return nil
}

func (a *app) list(ctx context.Context) error {
	accounts, err := a.registry.List(ctx)
	if err != nil {
		return err
	}
	if len(accounts) == 0 {
		fmt.Fprintln(a.out, "no accounts")
		return nil
	}

	codes := totp.NewGenerator()
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tACCOUNT\tCODE\tLEFT\tMETHODS")
	for i := range accounts {
		acc := &accounts[i]
		code, err := codes.Code(acc.Secret, acc.TOTPParams())
		if err != nil {
			code = "invalid"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%ds\t%v\n", acc.ID, displayName(acc), code, codes.Remaining(acc.Period), acc.EnabledMethods())
	}
	return tw.Flush()
}

func (a *app) code(ctx context.Context, id string) error {
	acc, err := a.registry.Get(ctx, id)
	if err != nil {
		return err
	}
	codes := totp.NewGenerator()
	code, err := codes.Code(acc.Secret, acc.TOTPParams())
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s (%ds left)\n", code, codes.Remaining(acc.Period))
	return nil
}

func (a *app) verify(ctx context.Context, id, code string) error {
	acc, err := a.registry.Get(ctx, id)
	if err != nil {
		return err
	}
	ok, err := validateCode(acc, code, time.Now())
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("code is not valid")
	}
	fmt.Fprintln(a.out, "code is valid")
	return nil
}

// validateCode accepts the current step and one step either side.
func validateCode(acc *account.Account, code string, now time.Time) (bool, error) {
	params := acc.TOTPParams()
	if params.Digits == totp.DefaultDigits && params.Period == totp.DefaultPeriod && acc.Algorithm == "" {
		return totp.ValidateTOTP(acc.Secret, code)
	}
	step := time.Duration(params.Period) * time.Second
	for _, offset := range []time.Duration{0, -step, step} {
		params.Time = now.Add(offset)
		want, err := totp.Generate(acc.Secret, params)
		if err != nil {
			return false, err
		}
		if subtle.ConstantTimeCompare([]byte(want), []byte(code)) == 1 {
			return true, nil
		}
	}
	return false, nil
}

func (a *app) remove(ctx context.Context, id string) error {
	acc, err := a.registry.Get(ctx, id)
	if err != nil {
		return err
	}
	ok, err := a.in.confirm(fmt.Sprintf("Delete %s? This cannot be undone.", displayName(acc)))
	if err != nil || !ok {
		return err
	}
	if err := a.registry.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "deleted %s\n", id)
	return nil
}

func (a *app) exportQR(ctx context.Context, id, path string) error {
	acc, err := a.registry.Get(ctx, id)
	if err != nil {
		return err
	}
	content, err := acc.ExportContent()
	if err != nil {
		return err
	}
	png, err := account.ExportQR(content, qrSize)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, png, 0o600); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "wrote %s\n", path)
	return nil
}

func (a *app) setPIN(ctx context.Context, id, pin string) error {
	acc, err := a.registry.CompleteSetup(ctx, id, account.MethodPIN, func(ctx context.Context, accountID string) error {
		return a.creds.SetupPIN(ctx, accountID, pin)
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "PIN enabled for %s, methods: %v\n", acc.ID, acc.EnabledMethods())
	return nil
}

func (a *app) setLock(ctx context.Context, arg string) error {
	if arg == "off" {
		if err := a.lock.Reset(ctx); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "app lock removed")
		return nil
	}

	if err := a.lock.SetPIN(ctx, arg); err != nil {
		return err
	}
	enabled, typ := true, applock.TypePIN
	cfg, err := a.lock.Configure(ctx, applock.Update{Enabled: &enabled, Type: &typ})
	if err != nil {
		return err
	}
	if err := a.lock.Touch(ctx); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "app lock enabled, timeout %ds\n", cfg.Timeout)
	return nil
}

// unlock asks for the app lock PIN or pattern when the lock timeout elapsed.
func (a *app) unlock(ctx context.Context) error {
	locked, err := a.lock.ShouldLock(ctx)
	if err != nil {
		return err
	}
	if !locked {
		return a.lock.Touch(ctx)
	}
	cfg, err := a.lock.Config(ctx)
	if err != nil {
		return err
	}

	switch cfg.Type {
	case applock.TypePIN:
		pin, err := a.in.prompt("App PIN: ")
		if err != nil {
			return err
		}
		return a.lock.Unlock(ctx, pin, nil)
	case applock.TypePattern:
		points, err := a.in.pattern("App pattern (r,c-r,c-...): ")
		if err != nil {
			return err
		}
		return a.lock.Unlock(ctx, "", points)
	default:
		return errors.New("app is locked with a method this terminal cannot provide")
	}
}

func (a *app) approve(ctx context.Context, payload string) error {
	approver := approval.NewApprover(a.registry,
		approval.WithCredentials(a.creds),
		approval.WithPrompter(&terminalPrompter{in: a.in}),
		approval.WithDeviceID(a.deviceID),
		approval.WithClientOptions(a.cfg.ClientOptions()...),
		approval.WithLogger(a.log),
	)

	flow, err := approver.BeginPayload(ctx, []byte(payload))
	if err != nil {
		return errors.New(approval.UserMessage(err))
	}

	req := flow.Request()
	fmt.Fprintf(a.out, "Login request for %s", req.Email)
	if req.AppName != "" {
		fmt.Fprintf(a.out, " to %s", req.AppName)
	}
	fmt.Fprintf(a.out, "\nAccount: %s (matched %s)\n", displayName(flow.Account()), flow.Tier())

	for {
		if err := a.chooseMethod(ctx, flow); err != nil {
			return err
		}
		if flow.State().Terminal() {
			fmt.Fprintln(a.out, "Login denied.")
			return nil
		}

		res, err := flow.Approve(ctx)
		switch {
		case err == nil:
			fmt.Fprintln(a.out, orDefault(res.Message, "Login approved."))
			return nil
		case errors.Is(err, approval.ErrCanceled):
			fmt.Fprintln(a.out, approval.UserMessage(err))
			return flow.Deny(ctx)
		case flow.State() == approval.StateLocalFailed:
			fmt.Fprintln(a.out, approval.UserMessage(err))
			continue
		default:
			return errors.New(approval.UserMessage(err))
		}
	}
}

// chooseMethod lets the user switch methods or deny when more than one
// method is enabled.
func (a *app) chooseMethod(ctx context.Context, flow *approval.Flow) error {
	methods := flow.Methods()
	if len(methods) < 2 && flow.State() != approval.StateLocalFailed {
		return nil
	}
	for i, m := range methods {
		marker := " "
		if m == flow.Selected() {
			marker = "*"
		}
		fmt.Fprintf(a.out, " %s %d) %s\n", marker, i+1, m)
	}
	answer, err := a.in.prompt("Method number, empty for default, d to deny: ")
	if err != nil {
		return err
	}
	switch answer {
	case "":
		return nil
	case "d", "deny":
		return flow.Deny(ctx)
	}
	var n int
	if _, err := fmt.Sscanf(answer, "%d", &n); err != nil || n < 1 || n > len(methods) {
		fmt.Fprintln(a.out, "no such method, keeping", flow.Selected())
		return nil
	}
	return flow.Select(ctx, methods[n-1])
}

func displayName(acc *account.Account) string {
	if acc == nil {
		return ""
	}
	if acc.Issuer == "" {
		return acc.Label
	}
	return acc.Issuer + ": " + acc.Label
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
