package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/conneroisu/folio/internal/gallery"
)

var (
	projectsFilter     string
	projectsCategories bool
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List the project catalog",
	Long: `List the projects in the catalog and whether the given filter shows
them. Without gallery.file the built-in catalog is used.

Examples:
  folio projects
  folio projects --filter web
  folio projects --categories`,
	Args: cobra.NoArgs,
	RunE: runProjects,
}

func init() {
	rootCmd.AddCommand(projectsCmd)

	projectsCmd.Flags().StringVarP(&projectsFilter, "filter", "f", gallery.FilterAll, "category to show, or all")
	projectsCmd.Flags().BoolVar(&projectsCategories, "categories", false, "list the filter buttons instead")
}

func runProjects(cmd *cobra.Command, _ []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	projects := gallery.DefaultProjects()
	if cfg.Gallery.File != "" {
		if projects, err = gallery.LoadCatalog(cfg.Gallery.File); err != nil {
			return err
		}
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)

	if projectsCategories {
		fmt.Fprintf(w, "%s\t%s\n", gallery.FilterAll, "All")
		for _, c := range gallery.Categories(projects) {
			fmt.Fprintf(w, "%s\t%s\n", c, gallery.Label(c))
		}
		return w.Flush()
	}

	for _, p := range projects {
		mark := " "
		if gallery.Matches(p, projectsFilter) {
			mark = "✓"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", mark, p.Title, gallery.Label(p.Category), strings.Join(p.Tags, ", "))
	}
	return w.Flush()
}
