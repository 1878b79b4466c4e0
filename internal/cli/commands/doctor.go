package commands

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/lkml2cube/internal/cli/output"
	"github.com/leapstack-labs/lkml2cube/internal/convert"
	"github.com/leapstack-labs/lkml2cube/pkg/core"
	"github.com/spf13/cobra"
)

// DoctorOptions holds options for the doctor command.
type DoctorOptions struct {
	Format  string // Output format: text, markdown, json
	RootDir string
}

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand() *cobra.Command {
	opts := &DoctorOptions{}
	cmd := &cobra.Command{
		Use:   "doctor <file_path>",
		Short: "Check how completely a LookML project converts to Cube",
		Long: `Run the LookML to Cube conversion without writing files and report
everything that could not be converted as-is.

The report includes:
- Project summary (views, explores, generated cubes and views)
- Conversion checks grouped by category (Types, Joins, Inheritance, References)
- Health score (0-100)
- Actionable recommendations

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON: Machine-readable format`,
		Example: `  # Check a project
  lkml2cube doctor "models/**/*.lkml" --rootdir models

  # Output as JSON
  lkml2cube doctor models/orders.explore.lkml --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctor(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, markdown, json")
	cmd.Flags().String("rootdir", "", "Directory that absolute include paths are resolved against")
	cmd.Flags().String("fail-on", "", "Exit non-zero on diagnostics at or above this severity (error, warning, info)")

	return cmd
}

// DoctorOutput is the JSON output for the doctor command.
type DoctorOutput struct {
	Summary         ProjectSummary `json:"summary"`
	HealthChecks    []HealthCheck  `json:"health_checks"`
	Score           int            `json:"score"`
	Recommendations []string       `json:"recommendations"`
	IssueCount      int            `json:"issue_count"`
}

// ProjectSummary contains project-level statistics.
type ProjectSummary struct {
	Views     int `json:"views"`
	Explores  int `json:"explores"`
	Cubes     int `json:"cubes"`
	CubeViews int `json:"cube_views"`
	Joins     int `json:"joins"`
}

// HealthCheck is the outcome of one diagnostic class.
type HealthCheck struct {
	Code       string   `json:"code"`
	Name       string   `json:"name"`
	Group      string   `json:"group"`
	Status     string   `json:"status"` // "pass", "warn", "error"
	IssueCount int      `json:"issue_count"`
	Details    []string `json:"details,omitempty"`
}

// checkDef describes a diagnostic class reported by doctor.
type checkDef struct {
	Code           string
	Name           string
	Group          string
	Recommendation string
}

// doctorChecks lists the forward-conversion diagnostic classes, sorted by group then code.
var doctorChecks = []checkDef{
	{core.CodeInheritCycle, "extends-cycle", "inheritance", "Break cycles in extends chains"},
	{core.CodeUnknownParent, "unknown-parent", "inheritance", "Include the files declaring every extended view"},
	{core.CodeJoinCycle, "join-cycle", "joins", "Remove circular joins from explores"},
	{core.CodeMalformedEdge, "malformed-join", "joins", "Write sql_on conditions that reference exactly the joined view and one other view"},
	{core.CodeUnreachable, "unreachable-join", "joins", "Join every view through a path that starts at the explore's base view"},
	{core.CodeDuplicateName, "duplicate-name", "references", "Give explores distinct labels or pass --use-explores-name"},
	{core.CodeMissingSource, "missing-source", "references", "Give every view a sql_table_name or derived_table"},
	{core.CodeUndefinedSet, "undefined-set", "references", "Declare the sets used in drill_fields"},
	{core.CodeUnknownEntity, "unknown-view", "references", "Include the views joined by explores"},
	{core.CodeInvalidTier, "invalid-tier", "types", "Use numeric tier boundaries"},
	{core.CodeSkippedMember, "skipped-member", "types", "Replace list measures with a supported aggregate"},
	{core.CodeTooFewTiers, "too-few-tiers", "types", "Give tier dimensions at least two boundaries"},
	{core.CodeUnsupportedType, "unsupported-type", "types", "Change unsupported dimension and measure types to ones Cube can represent"},
}

func runDoctor(cmd *cobra.Command, pattern string, opts *DoctorOptions) error {
	cc := NewCommandContext(cmd)
	r := cc.Renderer

	// Override renderer if format flag is set
	if opts.Format != "" {
		r = output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(opts.Format))
	}

	model, err := loadLookML(cc, pattern)
	if err != nil {
		return err
	}

	conv := cc.Converter()
	m := convert.FromLookML(model)
	run := conv.Views
	if len(m.Explores) == 0 {
		run = conv.Cubes
	}
	res, err := run(m)
	if err != nil {
		return err
	}

	doctorOutput := buildDoctorOutput(m, res)

	switch r.EffectiveMode() {
	case output.ModeJSON:
		err = r.JSON(doctorOutput)
	case output.ModeMarkdown:
		err = renderDoctorMarkdown(r, doctorOutput)
	default:
		err = renderDoctorText(r, doctorOutput)
	}
	if err != nil {
		return err
	}
	return checkFailOn(cc.Cfg.FailOn, res.Diagnostics)
}

func buildDoctorOutput(m *core.Model, res *convert.Result) *DoctorOutput {
	summary := ProjectSummary{
		Views:     len(m.Entities),
		Explores:  len(m.Explores),
		Cubes:     len(res.Cube.Cubes),
		CubeViews: len(res.Cube.Views),
	}
	for _, c := range res.Cube.Cubes {
		summary.Joins += len(c.Joins)
	}

	byCode := make(map[string]core.Diagnostics)
	for _, d := range res.Diagnostics {
		byCode[d.Code] = append(byCode[d.Code], d)
	}

	healthChecks := make([]HealthCheck, 0, len(doctorChecks))
	for _, def := range doctorChecks {
		diags := byCode[def.Code]
		status := "pass"
		if len(diags) > 0 {
			status = "warn"
			if diags.Count(core.SeverityError) > 0 {
				status = "error"
			}
		}

		details := make([]string, 0, len(diags))
		for _, d := range diags {
			if d.Entity != "" {
				details = append(details, d.Entity+": "+d.Message)
			} else {
				details = append(details, d.Message)
			}
		}

		healthChecks = append(healthChecks, HealthCheck{
			Code:       def.Code,
			Name:       def.Name,
			Group:      def.Group,
			Status:     status,
			IssueCount: len(diags),
			Details:    details,
		})
	}

	return &DoctorOutput{
		Summary:         summary,
		HealthChecks:    healthChecks,
		Score:           calculateHealthScore(healthChecks, summary.Views),
		Recommendations: generateRecommendations(healthChecks),
		IssueCount:      len(res.Diagnostics),
	}
}

// calculateHealthScore computes a health score from 0-100.
// With more views, each individual issue has less impact. Errors count double.
func calculateHealthScore(checks []HealthCheck, viewCount int) int {
	if len(checks) == 0 {
		return 100
	}

	score := 100.0

	basePenalty := 5.0
	if viewCount > 10 {
		basePenalty = 3.0
	}
	if viewCount > 50 {
		basePenalty = 2.0
	}
	if viewCount > 100 {
		basePenalty = 1.0
	}

	for _, check := range checks {
		switch check.Status {
		case "error":
			score -= float64(check.IssueCount) * basePenalty * 2
		case "warn":
			score -= float64(check.IssueCount) * basePenalty
		}
	}

	return int(min(max(score, 0), 100))
}

// generateRecommendations returns up to five recommendations for failing checks.
func generateRecommendations(checks []HealthCheck) []string {
	var recommendations []string
	seen := make(map[string]bool)

	for _, check := range checks {
		if check.IssueCount == 0 {
			continue
		}

		rec := getRecommendation(check.Code)
		if rec != "" && !seen[rec] {
			recommendations = append(recommendations, rec)
			seen[rec] = true
		}
	}

	if len(recommendations) > 5 {
		recommendations = recommendations[:5]
	}
	return recommendations
}

// getRecommendation returns the recommendation for a diagnostic code.
func getRecommendation(code string) string {
	for _, def := range doctorChecks {
		if def.Code == code {
			return def.Recommendation
		}
	}
	return ""
}

func renderDoctorText(r *output.Renderer, out *DoctorOutput) error {
	styles := r.Styles()

	r.Println("")
	r.Println(styles.Header.Render("LookML Conversion Health Report"))
	r.Println(styles.Muted.Render(strings.Repeat("=", 55)))
	r.Println("")

	r.Println(styles.Header.Render("Project Summary"))
	r.Printf("   Views: %d | Explores: %d\n", out.Summary.Views, out.Summary.Explores)
	r.Printf("   Cubes: %d | Cube views: %d | Joins: %d\n", out.Summary.Cubes, out.Summary.CubeViews, out.Summary.Joins)
	r.Println("")

	r.Println(styles.Header.Render("Conversion Checks"))
	r.Println("")

	currentGroup := ""
	titleCaser := cases.Title(language.English)
	for _, check := range out.HealthChecks {
		if check.Group != currentGroup {
			currentGroup = check.Group
			r.Println(styles.Key.Render("   " + titleCaser.String(currentGroup)))
			r.Println(styles.Muted.Render("   " + strings.Repeat("-", 40)))
		}

		icon := styles.Success.Render("✓")
		switch check.Status {
		case "warn":
			icon = styles.Warning.Render("!")
		case "error":
			icon = styles.Error.Render("✗")
		}

		status := fmt.Sprintf("%s %s", icon, check.Name)
		if check.IssueCount > 0 {
			status += fmt.Sprintf(" (%d issues)", check.IssueCount)
		}
		r.Println("   " + status)

		// Show first 3 details for issues
		for i, detail := range check.Details {
			if i >= 3 {
				r.Println(styles.Muted.Render(fmt.Sprintf("       ... and %d more", len(check.Details)-3)))
				break
			}
			r.Println(styles.Muted.Render("       - " + detail))
		}
	}
	r.Println("")

	r.Println(styles.Muted.Render(strings.Repeat("=", 55)))
	scoreStyle := styles.Success
	if out.Score < 70 {
		scoreStyle = styles.Warning
	}
	if out.Score < 50 {
		scoreStyle = styles.Error
	}
	r.Printf("   Health Score: %s\n", scoreStyle.Render(fmt.Sprintf("%d/100", out.Score)))
	r.Println("")

	if len(out.Recommendations) > 0 {
		r.Println(styles.Header.Render("Recommendations"))
		for i, rec := range out.Recommendations {
			r.Printf("   %d. %s\n", i+1, rec)
		}
		r.Println("")
	}

	return nil
}

func renderDoctorMarkdown(r *output.Renderer, out *DoctorOutput) error {
	r.Println("# LookML Conversion Health Report")
	r.Println("")

	r.Println("## Project Summary")
	r.Println("")
	r.Println(output.FormatKeyValue("Views", fmt.Sprint(out.Summary.Views)))
	r.Println(output.FormatKeyValue("Explores", fmt.Sprint(out.Summary.Explores)))
	r.Println(output.FormatKeyValue("Cubes", fmt.Sprint(out.Summary.Cubes)))
	r.Println(output.FormatKeyValue("Cube views", fmt.Sprint(out.Summary.CubeViews)))
	r.Println(output.FormatKeyValue("Joins", fmt.Sprint(out.Summary.Joins)))
	r.Println("")

	r.Println("## Conversion Checks")
	r.Println("")

	currentGroup := ""
	titleCaser := cases.Title(language.English)
	for _, check := range out.HealthChecks {
		if check.Group != currentGroup {
			currentGroup = check.Group
			r.Println("### " + titleCaser.String(currentGroup))
			r.Println("")
		}

		status := "PASS"
		switch check.Status {
		case "warn":
			status = "WARN"
		case "error":
			status = "ERROR"
		}

		r.Printf("- **[%s]** %s", status, check.Name)
		if check.IssueCount > 0 {
			r.Printf(" (%d issues)", check.IssueCount)
		}
		r.Println("")

		for _, detail := range check.Details {
			r.Printf("  - %s\n", detail)
		}
	}
	r.Println("")

	r.Println("## Health Score")
	r.Println("")
	r.Printf("**%d/100**\n", out.Score)
	r.Println("")

	if len(out.Recommendations) > 0 {
		r.Println("## Recommendations")
		r.Println("")
		for i, rec := range out.Recommendations {
			r.Printf("%d. %s\n", i+1, rec)
		}
		r.Println("")
	}

	return nil
}
