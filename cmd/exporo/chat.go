package main

import (
	"bufio"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/magungh1/exporo-sme-export-assistant/internal/bootstrap"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long: `Reads utterances from stdin, one per line, and prints the assistant's reply.

Ask for an assessment with a phrase like "cek kesiapan ekspor ke Jepang".
Type "exit" to quit.`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().String("user", "cli", "user id the session and profile belong to")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	userID, _ := cmd.Flags().GetString("user")
	app, err := bootstrap.Build(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	out := cmd.OutOrStdout()
	scanner := bufio.NewScanner(cmd.InOrStdin())
	fmt.Fprint(out, "> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "exit" || line == "quit":
			return nil
		case line == "":
		default:
			res, err := app.Pipeline.ProcessUtterance(ctx, userID, line)
			if err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
			} else {
				fmt.Fprintln(out, res.Text)
			}
		}
		if ctx.Err() != nil {
			return nil
		}
		fmt.Fprint(out, "> ")
	}
	return scanner.Err()
}
