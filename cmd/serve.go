package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/folio/internal/server"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"s"},
	Short:   "Serve the portfolio page",
	Long: `Serve the portfolio page with its contact form until interrupted.

The page works without scripting: the gallery filter and theme switch are
links and forms, and the contact form posts to /contact. Browsers with
scripting drive the form over the /ws live connection instead.

Examples:
  folio serve
  folio serve --port 3000
  folio serve --host 0.0.0.0 --static ./static`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 0, "port to serve on (default 8080)")
	serveCmd.Flags().String("host", "", "host to bind to (default localhost)")
	serveCmd.Flags().String("static", "", "directory served under /static/")

	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("server.static_dir", serveCmd.Flags().Lookup("static"))
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	srv, err := server.New(cfg, server.WithLogger(logger))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Start(ctx)
}
