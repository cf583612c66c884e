package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/gravitrone/spilltag/internal/api"
	"github.com/gravitrone/spilltag/internal/config"
)

const pingTimeout = 5 * time.Second

// RunInteractiveLogin prompts for the server and token, checks the server
// answers like a CloudSpill gallery, and persists config.
func RunInteractiveLogin(in io.Reader, out io.Writer) error {
	reader := bufio.NewReader(in)

	fmt.Fprintf(out, "server [%s]: ", api.DefaultBaseURL)
	server := readLine(reader)
	if server == "" {
		server = api.DefaultBaseURL
	}

	fmt.Fprint(out, "username: ")
	username := readLine(reader)

	fmt.Fprint(out, "api token: ")
	token := readLine(reader)
	if token == "" {
		return fmt.Errorf("api token is required")
	}

	client := api.NewClient(server, token)
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	info, err := client.Ping(ctx)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	cfg := &config.Config{
		ServerURL: client.BaseURL(),
		APIKey:    token,
		Username:  username,
	}
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	fmt.Fprintf(out, "connected to %s (data version %s)\n", cfg.ServerURL, orUnknown(info.DataVersion))
	fmt.Fprintf(out, "config saved to %s\n", config.Path())
	return nil
}

// LoginCmd returns the `spilltag login` command.
func LoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Connect to a CloudSpill server",
		RunE: func(c *cobra.Command, _ []string) error {
			return RunInteractiveLogin(os.Stdin, c.OutOrStdout())
		},
	}
}

// LoadClient reads config and builds an API client for it.
func LoadClient() (*config.Config, *api.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("not logged in: %w", err)
	}
	return cfg, api.NewClient(cfg.ServerURL, cfg.APIKey), nil
}

func readLine(r *bufio.Reader) string {
	line, _ := r.ReadString('\n')
	return strings.TrimSpace(line)
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
