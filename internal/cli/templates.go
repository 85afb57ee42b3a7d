package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/photobook/pkg/catalog"
)

// templatesCommand creates the templates command.
func (c *CLI) templatesCommand() *cobra.Command {
	var (
		catalogPath string
		dumpYAML    bool
	)

	cmd := &cobra.Command{
		Use:   "templates [n]",
		Short: "List the page templates of the catalog",
		Long: `List the page templates of the catalog.

With n, only the templates a group of n photos would be laid out on are
shown. When the catalog has no template with exactly n slots the nearest
larger slot count is used, else the nearest smaller one.

--yaml prints the built-in catalog as a starting point for a custom one.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dumpYAML {
				_, err := os.Stdout.Write(catalog.DefaultYAML())
				return err
			}

			if !cmd.Flags().Changed("catalog") {
				cfg, err := c.loadConfig()
				if err != nil {
					return err
				}
				catalogPath = cfg.Catalog.Path
			}
			cat, err := loadCatalog(catalogPath)
			if err != nil {
				return err
			}

			if len(args) == 0 {
				printTemplates(cat.All())
				return nil
			}
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 1 {
				return fmt.Errorf("invalid photo count %q", args[0])
			}
			ts, k := cat.For(n)
			if k != n {
				printWarning("No %d-slot templates, using %d-slot ones", n, k)
			}
			printTemplates(ts)
			return nil
		},
	}

	cmd.Flags().StringVar(&catalogPath, "catalog", "", "template catalog YAML (default: built-in catalog)")
	cmd.Flags().BoolVar(&dumpYAML, "yaml", false, "print the built-in catalog as YAML")

	return cmd
}

// printTemplates prints each template with its slots.
func printTemplates(ts []catalog.Template) {
	for i, t := range ts {
		if i > 0 {
			printNewline()
		}
		title := StyleTitle.Render(t.ID)
		if t.Description != "" {
			title += " " + StyleDim.Render(t.Description)
		}
		fmt.Println(title)

		tall, wide := t.Counts()
		printDetail("%d slots · %d tall · %d wide · hero slot %d", t.Len(), tall, wide, t.HeroSlot()+1)
		for j, s := range t.Slots {
			fmt.Printf("  %s %s %s\n",
				StyleNumber.Render(strconv.Itoa(j+1)),
				StyleValue.Render(fmt.Sprintf("x=%.3f y=%.3f w=%.3f h=%.3f", s.X, s.Y, s.W, s.H)),
				StyleDim.Render(strings.Join([]string{
					"ar " + strconv.FormatFloat(s.Aspect(), 'f', 3, 64),
					s.Category().String(),
				}, " · ")))
		}
	}
}
