package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/h190k/formrelay/internal/config"
	"github.com/h190k/formrelay/internal/server"
)

var formsCmd = &cobra.Command{
	Use:   "forms",
	Short: "List the forms the server accepts",
	Long: `List every registered form with its required fields and recipients.
Forms come from FORMS_FILE when set, otherwise the built-in contact,
support and newsletter forms are used.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		registry, err := server.NewRegistry(cfg)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tFIELDS\tRECIPIENTS")
		for _, s := range registry.List() {
			def, _ := registry.Lookup(s.ID)
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				def.ID, def.DisplayName,
				strings.Join(def.RequiredFields, ","),
				strings.Join(def.Recipients, ","))
		}
		return w.Flush()
	},
}

var checkConfigCmd = &cobra.Command{
	Use:   "check-config",
	Short: "Validate configuration without starting the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		if _, err := server.NewRegistry(cfg); err != nil {
			return err
		}

		captchaProvider := "disabled"
		switch {
		case cfg.TurnstileSecret != "":
			captchaProvider = "turnstile"
		case cfg.RecaptchaSecret != "":
			captchaProvider = "recaptcha"
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Configuration OK")
		fmt.Fprintf(out, "  Environment:     %s\n", cfg.Environment)
		fmt.Fprintf(out, "  Port:            %s\n", cfg.Port)
		fmt.Fprintf(out, "  Mail transport:  %s\n", cfg.MailTransport)
		fmt.Fprintf(out, "  Sender:          %s\n", cfg.MailUser)
		fmt.Fprintf(out, "  CAPTCHA:         %s\n", captchaProvider)
		fmt.Fprintf(out, "  Allowed domains: %s\n", strings.Join(cfg.AllowedDomains, ", "))
		fmt.Fprintf(out, "  CORS origins:    %s\n", strings.Join(cfg.CORSOrigins, ", "))
		if len(cfg.TrustedProxies) > 0 {
			fmt.Fprintf(out, "  Trusted proxies: %s\n", strings.Join(cfg.TrustedProxies, ", "))
		}
		if cfg.TurnstileSecret != "" && cfg.RecaptchaSecret != "" {
			fmt.Fprintln(out, "  Warning: both CAPTCHA secrets are set; Turnstile is used")
		}
		return nil
	},
}

var checkSMTPCmd = &cobra.Command{
	Use:   "check-smtp",
	Short: "Connect and authenticate against the SMTP relay",
	Long: `Dial the configured SMTP relay, upgrade with STARTTLS unless
SMTP_REQUIRE_TLS=false and authenticate with the configured credentials.
No message is sent.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if cfg.MailTransport != config.TransportSMTP {
			return fmt.Errorf("MAIL_TRANSPORT is %q, not smtp", cfg.MailTransport)
		}

		timeout, _ := cmd.Flags().GetDuration("timeout")
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		s := spinner.New(spinner.CharSets[14], 120*time.Millisecond, spinner.WithWriter(os.Stderr))
		s.Suffix = " Connecting to " + cfg.SMTPAddr + "..."
		s.Start()
		err = server.NewSMTPSender(cfg).Check(ctx)
		s.Stop()

		if err != nil {
			return fmt.Errorf("SMTP check failed: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Authenticated to %s as %s\n", cfg.SMTPAddr, cfg.MailUser)
		return nil
	},
}
