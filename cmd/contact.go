package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/folio/internal/contact"
)

var (
	contactName    string
	contactEmail   string
	contactMessage string
	contactNoWait  bool

	// contactScheduler runs the reset to idle. Tests swap it.
	contactScheduler contact.Scheduler = contact.TimerScheduler{}
)

var contactCmd = &cobra.Command{
	Use:   "contact",
	Short: "Send one contact form submission",
	Long: `Validate and send one contact form submission, printing each change
the form would show: field errors, the submit control's label and color,
and the reset to idle two seconds after the result.

Examples:
  folio contact --name Ada --email ada@example.com --message "Hello"
  folio contact --name Ada --email ada@example.com --message "Hi" --endpoint https://formspree.io/f/xyz`,
	RunE: runContact,
}

func init() {
	rootCmd.AddCommand(contactCmd)

	contactCmd.Flags().StringVar(&contactName, "name", "", "sender name")
	contactCmd.Flags().StringVar(&contactEmail, "email", "", "sender email address")
	contactCmd.Flags().StringVarP(&contactMessage, "message", "m", "", "message body")
	contactCmd.Flags().String("endpoint", "", "submission endpoint (default "+contact.DefaultEndpoint+")")
	contactCmd.Flags().BoolVar(&contactNoWait, "no-wait", false, "exit as soon as the result is known")

	_ = viper.BindPFlag("contact.endpoint", contactCmd.Flags().Lookup("endpoint"))
}

func runContact(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reset := make(chan contact.Status, 1)
	ctrl := contact.NewController(
		&terminalUI{w: cmd.OutOrStdout()},
		contact.NewHTTPSender(cfg.Contact.Endpoint, nil),
		contact.WithLogger(logger),
		contact.WithLabels(contact.Labels{Idle: cfg.Contact.IdleLabel}),
		contact.WithScheduler(contactScheduler),
		contact.WithResetHook(func(from contact.Status) { reset <- from }),
	)
	defer ctrl.Close()

	out := ctrl.Submit(ctx, contact.Fields{
		Name:    contactName,
		Email:   contactEmail,
		Message: contactMessage,
	})
	if !out.Status.Terminal() {
		return out.Err
	}

	if !contactNoWait {
		select {
		case <-reset:
		case <-ctx.Done():
		}
	}
	return out.Err
}

// terminalUI prints the form's changes as lines of text. Cleared errors
// are not printed.
type terminalUI struct {
	w io.Writer
}

func (t *terminalUI) SetFieldError(field contact.Field, message string) {
	if message != "" {
		fmt.Fprintf(t.w, "  %s: %s\n", field, message)
	}
}

func (t *terminalUI) SetControlState(label string, enabled bool, color contact.ColorTag) {
	state := "enabled"
	if !enabled {
		state = "disabled"
	}
	if color != contact.ColorNone {
		fmt.Fprintf(t.w, "[%s] %s (%s)\n", state, label, color)
		return
	}
	fmt.Fprintf(t.w, "[%s] %s\n", state, label)
}

func (t *terminalUI) ClearFields() {
	fmt.Fprintln(t.w, "fields cleared")
}
