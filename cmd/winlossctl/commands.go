package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/V4T54L/winloss/internal/domain"
	"github.com/V4T54L/winloss/internal/query"
	"github.com/V4T54L/winloss/internal/usecase"
)

// filterOptions holds the interview filters of a single invocation. Each
// command that filters gets its own value bound to its own flags.
type filterOptions struct {
	from        string
	to          string
	competitors []string
	outcomes    []string
	programs    []string
	upcoming    bool
	source      string
}

func (f *filterOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.from, "from", "", "start date or ISO timestamp (YYYY-MM-DD), needs --to")
	cmd.Flags().StringVar(&f.to, "to", "", "end date or ISO timestamp, a bare YYYY-MM-DD includes the whole day; needs --from")
	cmd.Flags().StringSliceVar(&f.competitors, "competitors", nil, "comma-separated competitor names")
	cmd.Flags().StringSliceVar(&f.outcomes, "outcomes", nil, "comma-separated outcomes (Won, Lost, Churn, Renew, No Decision)")
	cmd.Flags().StringSliceVar(&f.programs, "programs", nil, "comma-separated program ids")
	cmd.Flags().BoolVar(&f.upcoming, "upcoming", false, "only scheduled or in-progress interviews")
}

func (f filterOptions) criteria() query.Criteria {
	c := query.Criteria{
		From:         strings.TrimSpace(f.from),
		To:           endOfDay(strings.TrimSpace(f.to)),
		Competitors:  clean(f.competitors),
		ProgramIDs:   clean(f.programs),
		UpcomingOnly: f.upcoming,
		Source:       f.source,
	}
	for _, o := range clean(f.outcomes) {
		c.Outcomes = append(c.Outcomes, domain.Outcome(o))
	}
	return c
}

// endOfDay widens a date-only upper bound to the last millisecond of that
// UTC day, since the server reads a bare date as midnight.
func endOfDay(to string) string {
	if _, err := time.Parse(time.DateOnly, to); err != nil {
		return to
	}
	return to + "T23:59:59.999Z"
}

func clean(items []string) []string {
	var out []string
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// --- interviews ---

var interviewsCmd = &cobra.Command{
	Use:   "interviews",
	Short: "Browse and import interviews",
}

var interviewFilters filterOptions

var interviewsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List interviews matching the given filters",
	Long: `List interviews matching the given filters.

Examples:
  winlossctl interviews list --outcomes Won,Renew
  winlossctl interviews list --from 2024-01-01 --to 2024-03-31 --competitors webex
  winlossctl interviews list --upcoming`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		interviews, err := newAPIClient().ListInterviews(cmd.Context(), interviewFilters.criteria())
		if err != nil {
			return err
		}
		return render(interviews, func() {
			rows := make([][]string, 0, len(interviews))
			for _, iv := range interviews {
				title := iv.Title
				if iv.IsBlindSpot {
					title = iv.AnonymizedTitle
				}
				rows = append(rows, []string{iv.ID, iv.Date, string(iv.Status), orDash(string(iv.Outcome)), truncate(title, 48)})
			}
			printTable([]string{"ID", "DATE", "STATUS", "OUTCOME", "TITLE"}, rows)
		})
	},
}

var interviewsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one interview as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		interview, err := newAPIClient().GetInterview(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(interview)
	},
}

var interviewsShareCmd = &cobra.Command{
	Use:   "share <id>",
	Short: "Resolve an interview share link the way a public viewer sees it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		interview, err := newAPIClient().ShareInterview(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(interview)
	},
}

var interviewsImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Bulk import interviews from a JSON or NDJSON file",
	Long: `Bulk import interviews from a JSON or NDJSON file.

Files ending in .ndjson or .jsonl are sent as newline-delimited JSON; anything
else is sent as a JSON object or array. Rejected records are listed with
their position in the file.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading file: %w", err)
		}
		contentType := "application/json"
		switch strings.ToLower(filepath.Ext(args[0])) {
		case ".ndjson", ".jsonl":
			contentType = "application/x-ndjson"
		}

		result, err := newAPIClient().ImportInterviews(cmd.Context(), bytes.NewReader(data), contentType)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(result)
		}
		printSuccess("Imported %d interviews", result.Imported)
		for _, r := range result.Rejected {
			printWarning("line %d (%s): %s", r.Line, orDash(r.ID), r.Reason)
		}
		return nil
	},
}

func init() {
	interviewFilters.bind(interviewsListCmd)
	interviewsListCmd.Flags().StringVar(&interviewFilters.source, "source", "", "named pre-filter, e.g. dashboard_pipeline")
	interviewsCmd.AddCommand(interviewsListCmd, interviewsShowCmd, interviewsShareCmd, interviewsImportCmd)
}

// --- prompts ---

var promptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "Manage the prompt library",
}

var promptsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List prompts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		prompts, err := newAPIClient().ListPrompts(cmd.Context())
		if err != nil {
			return err
		}
		return render(prompts, func() {
			rows := make([][]string, 0, len(prompts))
			for _, p := range prompts {
				rows = append(rows, []string{p.ID, p.Name, truncate(p.Description, 60)})
			}
			printTable([]string{"ID", "NAME", "DESCRIPTION"}, rows)
		})
	},
}

var promptInput usecase.PromptInput

var promptsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a prompt",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(promptInput.Name) == "" || strings.TrimSpace(promptInput.PromptText) == "" {
			return fmt.Errorf("--name and --text are required")
		}
		prompt, err := newAPIClient().CreatePrompt(cmd.Context(), promptInput)
		if err != nil {
			return err
		}
		printSuccess("Created prompt %s", prompt.ID)
		return nil
	},
}

var promptsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update fields of a prompt",
	Long: `Update fields of a prompt. Only the flags you pass are sent.

Example:
  winlossctl prompts update prompt-1 --description "Short summary"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fields := changedFields(cmd, map[string]string{
			"name":        "name",
			"description": "description",
			"text":        "promptText",
		})
		if len(fields) == 0 {
			return fmt.Errorf("nothing to update: pass at least one of --name, --description, --text")
		}
		prompt, err := newAPIClient().UpdatePrompt(cmd.Context(), args[0], fields)
		if err != nil {
			return err
		}
		printSuccess("Updated prompt %s", prompt.ID)
		return nil
	},
}

var promptsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a prompt",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := newAPIClient().DeletePrompt(cmd.Context(), args[0]); err != nil {
			return err
		}
		printSuccess("Deleted prompt %s", args[0])
		return nil
	},
}

func init() {
	promptsCreateCmd.Flags().StringVar(&promptInput.Name, "name", "", "prompt name")
	promptsCreateCmd.Flags().StringVar(&promptInput.Description, "description", "", "prompt description")
	promptsCreateCmd.Flags().StringVar(&promptInput.PromptText, "text", "", "prompt text")

	promptsUpdateCmd.Flags().String("name", "", "new name")
	promptsUpdateCmd.Flags().String("description", "", "new description")
	promptsUpdateCmd.Flags().String("text", "", "new prompt text")

	promptsCmd.AddCommand(promptsListCmd, promptsCreateCmd, promptsUpdateCmd, promptsDeleteCmd)
}

// changedFields maps each flag the user set to its JSON field name.
func changedFields(cmd *cobra.Command, flagToField map[string]string) map[string]any {
	fields := map[string]any{}
	for flag, field := range flagToField {
		if cmd.Flags().Changed(flag) {
			v, _ := cmd.Flags().GetString(flag)
			fields[field] = v
		}
	}
	return fields
}

// --- reports ---

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Generate and browse aggregate reports",
}

var reportInput usecase.GenerateReportInput

var reportsGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate an aggregate report over interviews",
	Long: `Generate an aggregate report over interviews.

Example:
  winlossctl reports generate --interviews interview-1,interview-2 --prompt prompt-1`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		in := usecase.GenerateReportInput{InterviewIDs: clean(reportInput.InterviewIDs), PromptID: reportInput.PromptID}
		if len(in.InterviewIDs) == 0 || in.PromptID == "" {
			return fmt.Errorf("--interviews and --prompt are required")
		}
		report, err := newAPIClient().GenerateReport(cmd.Context(), in)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(report)
		}
		printSuccess("Generated report %s", report.ID)
		printStatus("Title", "%s", report.Title)
		printStatus("Summary", "%s", report.GeneratedSummary)
		return nil
	},
}

var reportRange struct{ from, to string }

var reportsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List aggregate reports, optionally within a date range",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reports, err := newAPIClient().ListAggregateReports(cmd.Context(), reportRange.from, reportRange.to)
		if err != nil {
			return err
		}
		return render(reports, func() {
			rows := make([][]string, 0, len(reports))
			for _, r := range reports {
				rows = append(rows, []string{r.ID, r.DateGenerated, strconv.Itoa(len(r.SourceInterviewIDs)), truncate(r.Title, 60)})
			}
			printTable([]string{"ID", "GENERATED", "INTERVIEWS", "TITLE"}, rows)
		})
	},
}

var reportsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one aggregate report as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := newAPIClient().GetAggregateReport(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(report)
	},
}

func init() {
	reportsGenerateCmd.Flags().StringSliceVar(&reportInput.InterviewIDs, "interviews", nil, "comma-separated interview ids")
	reportsGenerateCmd.Flags().StringVar(&reportInput.PromptID, "prompt", "", "prompt id")
	reportsListCmd.Flags().StringVar(&reportRange.from, "from", "", "start date (YYYY-MM-DD), needs --to")
	reportsListCmd.Flags().StringVar(&reportRange.to, "to", "", "end date (YYYY-MM-DD), needs --from")
	reportsCmd.AddCommand(reportsGenerateCmd, reportsListCmd, reportsShowCmd)
}

// --- users ---

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage workspace users",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		users, err := newAPIClient().ListUsers(cmd.Context())
		if err != nil {
			return err
		}
		return render(users, func() {
			rows := make([][]string, 0, len(users))
			for _, u := range users {
				rows = append(rows, []string{u.ID, u.Name, u.Email, string(u.Role)})
			}
			printTable([]string{"ID", "NAME", "EMAIL", "ROLE"}, rows)
		})
	},
}

var usersShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one user as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := newAPIClient().GetUser(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(user)
	},
}

var userInput struct{ name, email, role string }

var usersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if userInput.name == "" || userInput.email == "" {
			return fmt.Errorf("--name and --email are required")
		}
		user, err := newAPIClient().CreateUser(cmd.Context(), usecase.UserInput{
			Name:  userInput.name,
			Email: userInput.email,
			Role:  domain.UserRole(userInput.role),
		})
		if err != nil {
			return err
		}
		printSuccess("Created user %s", user.ID)
		return nil
	},
}

var usersUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update fields of a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fields := changedFields(cmd, map[string]string{
			"name":  "name",
			"email": "email",
			"role":  "role",
		})
		if len(fields) == 0 {
			return fmt.Errorf("nothing to update: pass at least one of --name, --email, --role")
		}
		user, err := newAPIClient().UpdateUser(cmd.Context(), args[0], fields)
		if err != nil {
			return err
		}
		printSuccess("Updated user %s", user.ID)
		return nil
	},
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := newAPIClient().DeleteUser(cmd.Context(), args[0]); err != nil {
			return err
		}
		printSuccess("Deleted user %s", args[0])
		return nil
	},
}

func init() {
	usersCreateCmd.Flags().StringVar(&userInput.name, "name", "", "display name")
	usersCreateCmd.Flags().StringVar(&userInput.email, "email", "", "email address")
	usersCreateCmd.Flags().StringVar(&userInput.role, "role", string(domain.RoleViewer), "Admin, Editor or Viewer")

	usersUpdateCmd.Flags().String("name", "", "new display name")
	usersUpdateCmd.Flags().String("email", "", "new email address")
	usersUpdateCmd.Flags().String("role", "", "new role")

	usersCmd.AddCommand(usersListCmd, usersShowCmd, usersCreateCmd, usersUpdateCmd, usersDeleteCmd)
}

// --- dashboard ---

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Dashboard summaries",
}

var dashboardStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show trailing-window interview stats",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		stats, err := newAPIClient().DashboardStats(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(stats)
		}
		printStatus("Interviews", "%d", stats.TotalInterviews)
		printStatus("Completed", "%d", stats.CompletedInterviews)
		printStatus("Win rate", "%d%%", stats.WinRate)
		printStatus("Key competitor", "%s (%d mentions)", orDash(stats.KeyCompetitor.Name), stats.KeyCompetitor.MentionCount)
		rows := make([][]string, 0, len(stats.ChartData))
		for _, p := range stats.ChartData {
			rows = append(rows, []string{p.Name, strconv.Itoa(p.Wins), strconv.Itoa(p.Losses)})
		}
		printTable([]string{"PERIOD", "WINS", "LOSSES"}, rows)
		return nil
	},
}

var dashboardQuotesCmd = &cobra.Command{
	Use:   "quotes",
	Short: "Show recent customer quotes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		quotes, err := newAPIClient().DashboardQuotes(cmd.Context())
		if err != nil {
			return err
		}
		return render(quotes, func() {
			for _, q := range quotes {
				fmt.Fprintf(stdout, "%q\n  %s, %s\n", q.Text, q.ParticipantInfo, q.InterviewTitle)
			}
		})
	},
}

var analyticsFilters filterOptions

var dashboardAnalyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Show win/loss themes, competitor mentions and feature sentiment",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := newAPIClient().Analytics(cmd.Context(), analyticsFilters.criteria())
		if err != nil {
			return err
		}
		return render(data, func() {
			rows := make([][]string, 0, len(data.CompetitorMentions))
			for _, m := range data.CompetitorMentions {
				rows = append(rows, []string{m.Name, strconv.Itoa(m.Count)})
			}
			printTable([]string{"COMPETITOR", "MENTIONS"}, rows)
			fmt.Fprintln(stdout)
			rows = rows[:0]
			for _, s := range data.ProductFeedbackSentiment {
				rows = append(rows, []string{s.Feature, strconv.Itoa(s.Positive), strconv.Itoa(s.Negative), strconv.Itoa(s.Neutral)})
			}
			printTable([]string{"FEATURE", "POSITIVE", "NEGATIVE", "NEUTRAL"}, rows)
		})
	},
}

var dashboardCompetitorsCmd = &cobra.Command{
	Use:   "competitors",
	Short: "List every competitor named in interview reports",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		names, err := newAPIClient().Competitors(cmd.Context())
		if err != nil {
			return err
		}
		return render(names, func() {
			for _, n := range names {
				fmt.Fprintln(stdout, n)
			}
		})
	},
}

var dashboardProgramsCmd = &cobra.Command{
	Use:   "programs",
	Short: "List programs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		programs, err := newAPIClient().Programs(cmd.Context())
		if err != nil {
			return err
		}
		return render(programs, func() {
			rows := make([][]string, 0, len(programs))
			for _, p := range programs {
				rows = append(rows, []string{p.ID, p.Name})
			}
			printTable([]string{"ID", "NAME"}, rows)
		})
	},
}

func init() {
	analyticsFilters.bind(dashboardAnalyticsCmd)
	dashboardCmd.AddCommand(dashboardStatsCmd, dashboardQuotesCmd, dashboardAnalyticsCmd, dashboardCompetitorsCmd, dashboardProgramsCmd)
}

// --- chat ---

var chatCmd = &cobra.Command{
	Use:   "chat <message>",
	Short: "Ask the insights assistant a question",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reply, err := newAPIClient().Chat(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, reply)
		return nil
	},
}
