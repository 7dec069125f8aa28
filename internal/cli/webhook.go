package cli

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/robalobadob/guesstheword/internal/telegram"
)

func init() {
	cmd := &cobra.Command{
		Use:   "webhook",
		Short: "Manage the Telegram webhook registration",
	}

	set := &cobra.Command{
		Use:   "set [url]",
		Short: "Register the webhook (url defaults to $WEBHOOK_URL)",
		Args:  cobra.MaximumNArgs(1),
		Run:   runWebhookSet,
	}
	set.Flags().String("secret", "", "Secret token (default: $WEBHOOK_SECRET, or a generated one)")

	del := &cobra.Command{
		Use:   "delete",
		Short: "Remove the webhook so the bot can long-poll",
		Run:   runWebhookDelete,
	}

	cmd.AddCommand(set, del)
	RootCmd.AddCommand(cmd)
}

func botClient() *telegram.Client {
	if cfg.BotToken == "" {
		exitErr("telegram", errors.New("BOT_TOKEN is required"))
	}
	return telegram.New(cfg.TelegramAPI, cfg.BotToken, cfg.HTTPTimeout)
}

func runWebhookSet(cmd *cobra.Command, args []string) {
	url := cfg.WebhookURL
	if len(args) == 1 {
		url = args[0]
	}
	if url == "" {
		exitErr("webhook set", errors.New("no url given and WEBHOOK_URL is empty"))
	}

	secret, _ := cmd.Flags().GetString("secret")
	if secret == "" {
		secret = cfg.WebhookSecret
	}
	generated := false
	if secret == "" {
		secret = uuid.NewString()
		generated = true
	}

	if err := botClient().SetWebhook(cmd.Context(), url, secret); err != nil {
		exitErr("webhook set", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "webhook set: %s\n", url)
	if generated {
		fmt.Fprintf(cmd.OutOrStdout(), "WEBHOOK_SECRET=%s\n", secret)
	}
}

func runWebhookDelete(cmd *cobra.Command, args []string) {
	if err := botClient().DeleteWebhook(cmd.Context()); err != nil {
		exitErr("webhook delete", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "webhook deleted")
}
