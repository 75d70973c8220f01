package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mysticcoders/freshbooks-tools/internal/render"
)

var teamJSON bool

var teamCmd = &cobra.Command{
	Use:   "team",
	Short: "List everyone across the team, staff, and project directories",
	Args:  cobra.NoArgs,
	RunE:  runTeam,
}

func init() {
	teamCmd.Flags().BoolVar(&teamJSON, "json", false, "Output JSON")
}

func runTeam(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	client, err := newClient(ctx)
	if err != nil {
		return err
	}
	ident, _, err := newResolvers(client)
	if err != nil {
		return err
	}

	members, err := ident.Members(ctx)
	if err != nil {
		return fmt.Errorf("listing team: %w", err)
	}

	if teamJSON {
		type row struct {
			IdentityID int64  `json:"identity_id"`
			Name       string `json:"name"`
			Email      string `json:"email,omitempty"`
			Role       string `json:"role,omitempty"`
			Source     string `json:"source"`
			Active     bool   `json:"active"`
		}
		rows := make([]row, 0, len(members))
		for _, m := range members {
			rows = append(rows, row{
				IdentityID: m.IdentityID,
				Name:       m.Name,
				Email:      m.Email,
				Role:       m.Role,
				Source:     string(m.Source),
				Active:     m.Active,
			})
		}
		return printJSON(rows)
	}

	if len(members) == 0 {
		fmt.Println("No team members found.")
		return nil
	}

	fmt.Println(render.Header.Render(fmt.Sprintf("%-24s  %-30s  %-16s  %-8s  %s",
		"Name", "Email", "Role", "Source", "Active")))
	for _, m := range members {
		line := fmt.Sprintf("%-24s  %-30s  %-16s  %-8s  %s",
			clip(m.Name, 24), clip(m.Email, 30), clip(m.Role, 16), m.Source, check(m.Active))
		if !m.Active {
			line = render.Dim.Render(line)
		}
		fmt.Println(line)
	}
	fmt.Printf("\n%d members\n", len(members))
	return nil
}
