package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gravitrone/spilltag/internal/tags"
)

// TagsCmd returns the `spilltag tags` command group.
func TagsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "Inspect and change tags without the editor",
	}
	cmd.AddCommand(tagsListCmd())
	cmd.AddCommand(tagsShowCmd())
	cmd.AddCommand(tagsPutCmd())
	return cmd
}

func tagsListCmd() *cobra.Command {
	var prefix string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the tags the server knows",
		RunE: func(c *cobra.Command, _ []string) error {
			_, client, err := LoadClient()
			if err != nil {
				return err
			}
			known, err := client.KnownTags(context.Background())
			if err != nil {
				return fmt.Errorf("list tags: %w", err)
			}
			if prefix != "" {
				known = tags.NewIndex(known).Match(prefix)
			}
			if len(known) == 0 {
				fmt.Fprintln(c.OutOrStdout(), "no tags found")
				return nil
			}
			for _, tag := range known {
				fmt.Fprintf(c.OutOrStdout(), "  %s\n", tag)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&prefix, "match", "m", "", "only show tags matching this text, best matches first")
	return cmd
}

func tagsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <item-id>",
		Short: "Show the tags of one item",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			id, err := ParseItemID(args[0])
			if err != nil {
				return err
			}
			_, client, err := LoadClient()
			if err != nil {
				return err
			}
			list, err := client.ItemTags(context.Background(), id)
			if err != nil {
				return fmt.Errorf("show tags: %w", err)
			}
			fmt.Fprintln(c.OutOrStdout(), strings.Join(list, ", "))
			return nil
		},
	}
}

func tagsPutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "put <item-id> <spec>",
		Short: "Apply a change spec such as \"beach,-draft\" to an item",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			id, err := ParseItemID(args[0])
			if err != nil {
				return err
			}
			spec := tags.JoinSpec(tags.SplitSpec(args[1]))
			if spec == "" {
				return fmt.Errorf("empty tag spec")
			}
			_, client, err := LoadClient()
			if err != nil {
				return err
			}
			if err := client.PutItemTags(context.Background(), id, spec); err != nil {
				return fmt.Errorf("put tags: %w", err)
			}
			fmt.Fprintf(c.OutOrStdout(), "item %d: %s\n", id, spec)
			return nil
		},
	}
}

// ParseItemID parses a positive gallery item id.
func ParseItemID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid item id %q", s)
	}
	return id, nil
}
