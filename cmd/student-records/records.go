package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/aanand-mishra/student-records/internal/form"
	"github.com/aanand-mishra/student-records/internal/types"
)

// Export formats.
const (
	formatJSON = "json"
	formatYAML = "yaml"
)

var storeAnnotations = map[string]string{needsStore: "true"}

// ── list ─────────────────────────────────────────────────────────────────

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:         "list",
		Short:       "Print the records table",
		Args:        cobra.NoArgs,
		Annotations: storeAnnotations,
		RunE: func(*cobra.Command, []string) error {
			_, err := fmt.Fprintln(a.out, renderTable(a.store.List()))
			return err
		},
	}
}

// renderTable draws the list with the index each row is addressed by, or
// the empty-table text.
func renderTable(students []types.Student) string {
	if len(students) == 0 {
		return form.EmptyTableText
	}

	rows := make([][]string, 0, len(students))
	for i, s := range students {
		rows = append(rows, []string{strconv.Itoa(i), s.Name, s.ID, s.Email, s.Contact})
	}

	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)

	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Index", "Name", "Student ID", "Email", "Contact").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		}).
		String()
}

// ── add / update ─────────────────────────────────────────────────────────

type studentFlags struct {
	name, id, email, contact string
}

func (f *studentFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "student name (letters and spaces)")
	cmd.Flags().StringVar(&f.id, "id", "", "student ID (digits, unique)")
	cmd.Flags().StringVar(&f.email, "email", "", "email address")
	cmd.Flags().StringVar(&f.contact, "contact", "", "contact number (10 or more digits)")
}

// apply overlays the flags the user set onto base.
func (f *studentFlags) apply(cmd *cobra.Command, base types.Student) types.Student {
	if cmd.Flags().Changed("name") {
		base.Name = f.name
	}
	if cmd.Flags().Changed("id") {
		base.ID = f.id
	}
	if cmd.Flags().Changed("email") {
		base.Email = f.email
	}
	if cmd.Flags().Changed("contact") {
		base.Contact = f.contact
	}
	return base
}

func newAddCmd(a *app) *cobra.Command {
	var flags studentFlags

	cmd := &cobra.Command{
		Use:         "add",
		Short:       "Append a student",
		Example:     `  student-records add --name "Jane Doe" --id 101 --email jane@example.com --contact 5551234567`,
		Args:        cobra.NoArgs,
		Annotations: storeAnnotations,
		RunE: func(cmd *cobra.Command, _ []string) error {
			session := form.NewSession(a.store)

			outcome, err := session.Submit(cmd.Context(), flags.apply(cmd, types.Student{}))
			if err != nil {
				return a.userError(err)
			}

			a.logger.Info("student added", zap.String("id", strings.TrimSpace(flags.id)))
			_, err = fmt.Fprintln(a.out, form.SuccessMessage(outcome))
			return err
		},
	}
	flags.register(cmd)
	return cmd
}

func newUpdateCmd(a *app) *cobra.Command {
	var flags studentFlags

	cmd := &cobra.Command{
		Use:   "update <index>",
		Short: "Replace the student at a position",
		Long: `Replaces the student at <index> (as shown by list). Fields whose flag is
not given keep their current value.`,
		Example:     `  student-records update 0 --email jane.doe@example.com`,
		Args:        cobra.ExactArgs(1),
		Annotations: storeAnnotations,
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseIndex(args[0])
			if err != nil {
				return err
			}

			session := form.NewSession(a.store)
			current, err := session.StartEdit(index)
			if err != nil {
				return a.userError(err)
			}

			outcome, err := session.Submit(cmd.Context(), flags.apply(cmd, current))
			if err != nil {
				return a.userError(err)
			}

			a.logger.Info("student updated", zap.Int("index", index))
			_, err = fmt.Fprintln(a.out, form.SuccessMessage(outcome))
			return err
		},
	}
	flags.register(cmd)
	return cmd
}

// ── delete ───────────────────────────────────────────────────────────────

func newDeleteCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:         "delete <index>",
		Short:       "Remove the student at a position",
		Args:        cobra.ExactArgs(1),
		Annotations: storeAnnotations,
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseIndex(args[0])
			if err != nil {
				return err
			}

			confirm := func() bool { return yes || a.confirm(form.ConfirmDeletePrompt) }

			deleted, err := form.NewSession(a.store).Delete(cmd.Context(), index, confirm)
			if err != nil {
				return a.userError(err)
			}
			if !deleted {
				_, err = fmt.Fprintln(a.out, "Delete cancelled.")
				return err
			}

			a.logger.Info("student deleted", zap.Int("index", index))
			_, err = fmt.Fprintln(a.out, "Student deleted.")
			return err
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "delete without asking")
	return cmd
}

// confirm asks prompt on out and reads a y/yes answer from in.
func (a *app) confirm(prompt string) bool {
	if _, err := fmt.Fprintf(a.out, "%s (y/n) ", prompt); err != nil {
		return false
	}

	answer, err := bufio.NewReader(a.in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// ── export ───────────────────────────────────────────────────────────────

func newExportCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:         "export",
		Short:       "Write the list to stdout as JSON or YAML",
		Args:        cobra.NoArgs,
		Annotations: storeAnnotations,
		RunE: func(*cobra.Command, []string) error {
			return export(a.out, format, a.store.List())
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatJSON, "output format: json or yaml")
	return cmd
}

func export(w io.Writer, format string, students []types.Student) error {
	if students == nil {
		students = []types.Student{}
	}

	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(students)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(students); err != nil {
			return fmt.Errorf("export yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q: must be %s or %s", format, formatJSON, formatYAML)
	}
}

func parseIndex(arg string) (int, error) {
	index, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid index %q: must be an integer", arg)
	}
	return index, nil
}
