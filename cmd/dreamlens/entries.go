package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"dreamlens/internal/journal"
	"dreamlens/internal/store"
)

// parseTags turns "emotion:fear,place:airport" into tags. A value without a
// category becomes a custom tag.
func parseTags(raw string) []journal.Tag {
	if raw == "" {
		return nil
	}
	var tags []journal.Tag
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		category, value, found := strings.Cut(part, ":")
		if !found {
			tags = append(tags, journal.Tag{Category: journal.TagCustom, Value: part})
			continue
		}
		tags = append(tags, journal.Tag{
			Category: journal.TagCategory(strings.TrimSpace(category)),
			Value:    strings.TrimSpace(value),
		})
	}
	return tags
}

func formatTags(tags []journal.Tag) string {
	parts := make([]string, 0, len(tags))
	for _, t := range tags {
		parts = append(parts, fmt.Sprintf("%s:%s", t.Category, t.Value))
	}
	return strings.Join(parts, ", ")
}

func newCaptureCmd() *cobra.Command {
	var (
		title    string
		tagsFlag string
		when     string
	)
	cmd := &cobra.Command{
		Use:   "capture [body]",
		Short: "Record a new dream entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			entry := &journal.Entry{
				Title: title,
				Body:  args[0],
				Tags:  parseTags(tagsFlag),
			}
			if when != "" {
				t, err := time.Parse("2006-01-02", when)
				if err != nil {
					return fmt.Errorf("invalid --date (want YYYY-MM-DD): %w", err)
				}
				entry.RecordedAt = t
			}
			if err := a.store.CreateEntry(entry); err != nil {
				return err
			}
			fmt.Println(entry.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "entry title")
	cmd.Flags().StringVar(&tagsFlag, "tags", "", "comma-separated category:value tags")
	cmd.Flags().StringVar(&when, "date", "", "recorded date (YYYY-MM-DD, default now)")
	return cmd
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List entries, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			entries, err := a.store.ListEntries()
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("No entries yet.")
				return nil
			}
			for _, e := range entries {
				title := e.Title
				if title == "" {
					title = "(untitled)"
				}
				fmt.Printf("%s  %s  %s\n", e.ID, e.RecordedAt.Format("2006-01-02"), title)
			}
			return nil
		},
	}
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <entry-id>",
		Short: "Show an entry with its analyses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			entry, err := a.store.GetEntry(args[0])
			if err != nil {
				return err
			}
			if entry == nil {
				return fmt.Errorf("entry %s not found", args[0])
			}

			if entry.Title != "" {
				fmt.Printf("Title: %s\n", entry.Title)
			}
			fmt.Printf("Recorded: %s\n", entry.RecordedAt.Format(time.RFC1123))
			if len(entry.Tags) > 0 {
				fmt.Printf("Tags: %s\n", formatTags(entry.Tags))
			}
			fmt.Printf("\n%s\n", entry.Body)

			analyses, err := a.store.GetAnalysesForEntry(entry.ID)
			if err != nil {
				return err
			}
			for _, an := range analyses {
				fmt.Printf("\n--- Analysis %s (%s, %s, %s) ---\n", an.ID, an.Lens, an.Model, an.CreatedAt.Format("2006-01-02 15:04"))
				fmt.Println(an.Content)
			}
			return nil
		},
	}
}

func newEditCmd() *cobra.Command {
	var (
		title    string
		body     string
		tagsFlag string
	)
	cmd := &cobra.Command{
		Use:   "edit <entry-id>",
		Short: "Update an entry's title, body or tags",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			var patch store.EntryPatch
			if cmd.Flags().Changed("title") {
				patch.Title = &title
			}
			if cmd.Flags().Changed("body") {
				patch.Body = &body
			}
			if cmd.Flags().Changed("tags") {
				tags := parseTags(tagsFlag)
				patch.Tags = &tags
			}
			if _, err := a.store.UpdateEntry(args[0], patch); err != nil {
				return err
			}
			fmt.Println("Updated.")
			return nil
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "new title")
	cmd.Flags().StringVarP(&body, "body", "b", "", "new body")
	cmd.Flags().StringVar(&tagsFlag, "tags", "", "replacement tags (category:value, comma-separated)")
	return cmd
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <entry-id>",
		Short: "Delete an entry and all of its analyses and conversations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.store.DeleteEntry(args[0]); err != nil {
				return err
			}
			fmt.Println("Deleted.")
			return nil
		},
	}
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show journal statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			stats, err := a.store.Stats()
			if err != nil {
				return err
			}
			fmt.Printf("Entries:       %d\n", stats.Entries)
			fmt.Printf("Analyses:      %d\n", stats.Analyses)
			fmt.Printf("Conversations: %d\n", stats.Conversations)
			fmt.Printf("Symbols:       %d\n", stats.Symbols)
			return nil
		},
	}
}
