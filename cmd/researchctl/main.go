package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"researchagent/internal/cli"
	"researchagent/internal/client"
)

var (
	serverURL string
	interval  time.Duration
	timeout   time.Duration
	output    string
	plain     bool
)

var rootCmd = &cobra.Command{
	Use:   "researchctl [topic]",
	Short: "Submit a research topic and watch it complete",
	Long: `researchctl submits a research topic to the research service, polls the
job until it finishes, and writes the resulting report as an HTML page.`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().StringVar(&serverURL, "server", "http://localhost:8080", "research service base URL")
	rootCmd.Flags().DurationVar(&interval, "interval", 2*time.Second, "status poll interval")
	rootCmd.Flags().DurationVar(&timeout, "timeout", 15*time.Minute, "give up after this much total time")
	rootCmd.Flags().StringVarP(&output, "output", "o", "report.html", "file to write the report to")
	rootCmd.Flags().BoolVar(&plain, "plain", false, "line-by-line output instead of a progress bar")
}

func run(cmd *cobra.Command, args []string) error {
	log := logrus.New()
	log.SetOutput(os.Stderr)

	topic := strings.TrimSpace(strings.Join(args, " "))
	if topic == "" {
		var err error
		topic, err = cli.ChooseTopic()
		if err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api := client.New(serverURL)
	ctrl := client.NewController(api, cli.NewView(plain, log), log)
	ctrl.Interval = interval
	ctrl.MaxWait = timeout

	res, err := ctrl.Run(ctx, topic)
	if err != nil {
		return err
	}

	page := client.BuildResultPage(res)
	if err := os.WriteFile(output, []byte(page), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	fmt.Printf("Report written to %s\n", output)
	fmt.Printf("Download the presentation: %s\n", res.DownloadURL)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
