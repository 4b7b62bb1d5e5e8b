package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"contact-service/internal/auth"
	"contact-service/pkg/contactclient"
	"contact-service/pkg/submission"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if !errors.Is(err, contactclient.ErrInvalid) && !errors.Is(err, contactclient.ErrNotSent) {
			fmt.Fprintln(os.Stderr, err)
		}
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "contact",
		Short:         "Send a message through the portfolio contact form",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newSendCmd(), newTokenCmd())
	return root
}

type sendOptions struct {
	values   submission.Submission
	endpoint string
	timeout  time.Duration
}

func newSendCmd() *cobra.Command {
	opts := &sendOptions{}

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Validate and submit a contact message",
		Long: `Validates the fields locally and, when they are all valid, issues one
POST to the contact service. Nothing is retried.

Example:
  contact send --name Alice --email alice@example.com \
    --subject Hello --message "I would like to work with you."`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSend(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), opts)
		},
	}

	endpoint := os.Getenv("CONTACT_ENDPOINT")
	if endpoint == "" {
		endpoint = "http://localhost:8080"
	}

	cmd.Flags().StringVar(&opts.values.Name, "name", "", "Your name")
	cmd.Flags().StringVar(&opts.values.Email, "email", "", "Your email address")
	cmd.Flags().StringVar(&opts.values.Subject, "subject", "", "Message subject")
	cmd.Flags().StringVar(&opts.values.Message, "message", "", "Message body")
	cmd.Flags().StringVar(&opts.endpoint, "endpoint", endpoint, "Contact service base URL (or set CONTACT_ENDPOINT)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", contactclient.DefaultTimeout, "HTTP timeout")

	return cmd
}

func runSend(ctx context.Context, stdout, stderr io.Writer, opts *sendOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	form := contactclient.NewForm(
		contactclient.NewClient(opts.endpoint, opts.timeout),
		func(n contactclient.Notification) {
			if n.Kind == contactclient.Success {
				fmt.Fprintln(stdout, n.Text)
				return
			}
			fmt.Fprintln(stderr, n.Text)
		},
	)
	form.Set(opts.values)

	err := form.Submit(ctx)
	if errors.Is(err, contactclient.ErrInvalid) {
		fe := form.Errors()
		fields := make([]string, 0, len(fe))
		for f := range fe {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		for _, f := range fields {
			fmt.Fprintf(stderr, "%s: %s\n", f, fe[f])
		}
	}
	return err
}

func newTokenCmd() *cobra.Command {
	var (
		secret  string
		subject string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an admin bearer token for the messages API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return errors.New("a secret is required, pass --secret or set JWT_SECRET")
			}
			token, err := auth.IssueToken([]byte(secret), subject, auth.RoleAdmin, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&secret, "secret", os.Getenv("JWT_SECRET"), "HS256 signing secret (or set JWT_SECRET)")
	cmd.Flags().StringVar(&subject, "subject", "admin", "Token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "Token lifetime")

	return cmd
}
