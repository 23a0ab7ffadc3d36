package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

type envSection struct {
	title string
	notes []string
	flags []string
}

var envSections = []envSection{
	{
		title: "Telegram Configuration (Required)",
		notes: []string{
			"Bot token from @BotFather",
			"The voting chat ID is shown by the bot's /id command",
		},
		flags: []string{"telegram-enabled", "telegram-bot-token", "telegram-voting-chat-id", "telegram-voting-thread-id"},
	},
	{
		title: "Spotify Configuration (Required)",
		notes: []string{
			"Get these from https://developer.spotify.com/dashboard",
			"The redirect URL must be registered in the Spotify app",
		},
		flags: []string{
			"spotify-client-id", "spotify-client-secret", "spotify-redirect-url",
			"spotify-token-path", "spotify-market", "spotify-short-hosts",
		},
	},
	{
		title: "Application Settings",
		flags: []string{
			"language", "flood-limit-per-minute", "max-concurrent-events",
			"event-timeout", "http-timeout", "max-vote-claims",
		},
	},
	{
		title: "HTTP Server Configuration",
		flags: []string{"server-host", "server-port"},
	},
	{
		title: "Logging Configuration",
		flags: []string{"log-level", "log-file"},
	},
}

func generateEnvExample(cmd *cobra.Command) error {
	fmt.Println("Generating .env.example file from current configuration...")

	content := generateEnvExampleContent(cmd)

	if err := os.WriteFile(".env.example", []byte(content), 0o600); err != nil {
		return fmt.Errorf("failed to write .env.example: %w", err)
	}

	fmt.Println("✅ Successfully generated .env.example file")
	return nil
}

func generateEnvExampleContent(cmd *cobra.Command) string {
	var content strings.Builder

	content.WriteString("# =============================================================================\n")
	content.WriteString("# QueueVote Configuration\n")
	content.WriteString("# =============================================================================\n")
	content.WriteString("#\n")
	content.WriteString("# Copy this file to .env and update with your values\n")
	content.WriteString("# All environment variables have CLI flag equivalents (use --help to see them)\n")
	content.WriteString("#\n")
	fmt.Fprintf(&content, "# Format: %s_<SETTING>=value\n", envPrefix)
	content.WriteString("# CLI equivalent: --<setting>\n")
	content.WriteString("\n")

	for _, section := range envSections {
		writeEnvSection(&content, cmd, section)
	}

	content.WriteString("# Spotify login: send /spotifylogin in the voting chat, open the URL,\n")
	content.WriteString("# then paste the URL you were redirected to back into the chat.\n")

	return content.String()
}

func writeEnvSection(content *strings.Builder, cmd *cobra.Command, section envSection) {
	content.WriteString("# -----------------------------------------------------------------------------\n")
	fmt.Fprintf(content, "# %s\n", section.title)
	content.WriteString("# -----------------------------------------------------------------------------\n")
	for _, note := range section.notes {
		fmt.Fprintf(content, "# %s\n", note)
	}
	fmt.Fprintf(content, "# CLI: --%s\n", strings.Join(section.flags, ", --"))

	for _, name := range section.flags {
		f := cmd.PersistentFlags().Lookup(name)
		if f == nil {
			continue
		}
		value := strings.Trim(f.DefValue, "[]")
		fmt.Fprintf(content, "%s=%s  # %s\n", flagToEnvVar(name), value, f.Usage)
	}
	content.WriteString("\n")
}

func flagToEnvVar(flagName string) string {
	return envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(flagName, "-", "_"))
}
