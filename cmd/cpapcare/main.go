package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/nhle/cpapcare/internal/app"
	"github.com/nhle/cpapcare/internal/model"
	"github.com/nhle/cpapcare/internal/schedule"
	"github.com/nhle/cpapcare/internal/store"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	overdueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	dueStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

var configPath string

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp wires the core from the configured paths. The caller must defer
// a.Close().
func newApp() (*app.App, error) {
	return app.New(configPath)
}

var rootCmd = &cobra.Command{
	Use:   "cpapcare",
	Short: "Track recurring maintenance for CPAP equipment",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path")

	componentCmd.AddCommand(componentAddCmd, componentListCmd, componentUseCmd,
		componentRetireCmd, componentRemoveCmd)
	actionCmd.AddCommand(actionAddCmd, actionListCmd, actionInitCmd)
	rootCmd.AddCommand(componentCmd, actionCmd, dueCmd, completeCmd, skipCmd,
		snoozeCmd, rescheduleCmd, statsCmd, watchCmd)
}

// component commands

var componentCmd = &cobra.Command{
	Use:   "component",
	Short: "Manage equipment components",
}

var componentAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a component",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		category, _ := cmd.Flags().GetString("category")
		mode, _ := cmd.Flags().GetString("mode")
		notes, _ := cmd.Flags().GetString("notes")

		id, err := a.AddComponent(cmd.Context(), model.Component{
			Name:         args[0],
			Category:     category,
			TrackingMode: mode,
			Notes:        notes,
		})
		if err != nil {
			return err
		}
		fmt.Printf("added component %s (%s)\n", args[0], id)
		return nil
	},
}

var componentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List components",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		all, _ := cmd.Flags().GetBool("all")
		components, err := a.Store.GetComponents(cmd.Context(), all)
		if err != nil {
			return err
		}

		fmt.Println(headerStyle.Render("Components"))
		for _, c := range components {
			line := fmt.Sprintf("%-36s  %-20s  %-13s  uses=%d", c.ID, c.Name, c.Category, c.UsageCount)
			if !c.Active {
				line = dimStyle.Render(line + "  (retired)")
			}
			fmt.Println(line)
		}
		return nil
	},
}

var componentUseCmd = &cobra.Command{
	Use:   "use <component-id>",
	Short: "Record nights of use for a component",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		count, _ := cmd.Flags().GetInt("count")
		total, err := a.Engine.UpdateUsage(cmd.Context(), args[0], count)
		if err != nil {
			return err
		}
		fmt.Printf("usage recorded, total %d\n", total)
		return nil
	},
}

var componentRetireCmd = &cobra.Command{
	Use:   "retire <component-id>",
	Short: "Retire a component (soft delete)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()
		return a.Store.SetComponentActive(cmd.Context(), args[0], false)
	},
}

var componentRemoveCmd = &cobra.Command{
	Use:   "remove <component-id>",
	Short: "Delete a component and all its actions, logs, and configs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()
		return a.Store.DeleteComponent(cmd.Context(), args[0])
	},
}

// action commands

var actionCmd = &cobra.Command{
	Use:   "action",
	Short: "Manage maintenance actions",
}

var actionAddCmd = &cobra.Command{
	Use:   "add <component-id> <type>",
	Short: "Add a recurring maintenance action",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		freq, _ := cmd.Flags().GetInt("every")
		unit, _ := cmd.Flags().GetString("unit")
		strategy, _ := cmd.Flags().GetString("strategy")
		desc, _ := cmd.Flags().GetString("desc")
		at, _ := cmd.Flags().GetString("at")
		instructions, _ := cmd.Flags().GetString("instructions")

		action := model.MaintenanceAction{
			ComponentID:      args[0],
			ActionType:       args[1],
			Description:      desc,
			Frequency:        freq,
			Unit:             unit,
			ReminderStrategy: strategy,
			Instructions:     instructions,
		}
		if at != "" {
			action.NotificationTime = &at
		}

		id, err := a.AddAction(cmd.Context(), action)
		if err != nil {
			return err
		}
		if err := a.Engine.Initialize(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Printf("added action %s (%s)\n", args[1], id)
		return nil
	},
}

var actionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List maintenance actions",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		actions, err := a.Store.GetActions(cmd.Context(), actionFilterFromFlags(cmd))
		if err != nil {
			return err
		}

		now := a.Clock.Now()
		fmt.Println(headerStyle.Render("Actions"))
		for _, act := range actions {
			due := "uninitialized"
			if act.NextDue != nil {
				due = act.NextDue.Format("2006-01-02 15:04")
				switch {
				case schedule.IsOverdue(*act.NextDue, now):
					due = overdueStyle.Render(due + fmt.Sprintf("  (%dd overdue)", schedule.DaysOverdue(*act.NextDue, now)))
				case schedule.IsDueToday(*act.NextDue, now):
					due = dueStyle.Render(due + "  (due today)")
				}
			}
			fmt.Printf("%-36s  %-20s  every %d %s  due %s\n",
				act.ID, act.ActionType, act.Frequency, act.Unit, due)
		}
		return nil
	},
}

var actionInitCmd = &cobra.Command{
	Use:   "init <action-id>",
	Short: "Set the first due date on an action",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()
		return a.Engine.Initialize(cmd.Context(), args[0])
	},
}

// lifecycle commands

var dueCmd = &cobra.Command{
	Use:   "due",
	Short: "Show actions needing attention, most urgent first",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		items, err := a.Selector.DueItems(cmd.Context(), a.Clock.Now())
		if err != nil {
			return err
		}
		if len(items) == 0 {
			fmt.Println(okStyle.Render("Nothing due."))
			return nil
		}

		fmt.Println(headerStyle.Render("Due"))
		for _, item := range items {
			status := dueStyle.Render("due today")
			if item.Overdue {
				status = overdueStyle.Render(fmt.Sprintf("overdue %dh", item.HoursOverdue))
			}
			fmt.Printf("%-36s  %-18s  %-20s  %s\n",
				item.Action.ID, item.Component.Name, item.Action.ActionType, status)
		}
		return nil
	},
}

var completeCmd = &cobra.Command{
	Use:   "complete <action-id>",
	Short: "Record a completion and advance the schedule",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		notes, _ := cmd.Flags().GetString("notes")
		result, err := a.Engine.Complete(cmd.Context(), args[0], a.Clock.Now(), notes)
		if err != nil {
			return err
		}

		msg := fmt.Sprintf("completed, next due %s", result.NextDue.Format("2006-01-02 15:04"))
		if result.WasOverdue {
			msg += dimStyle.Render("  (was overdue)")
		}
		fmt.Println(okStyle.Render(msg))
		return nil
	},
}

var skipCmd = &cobra.Command{
	Use:   "skip <action-id>",
	Short: "Skip this occurrence without logging it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()
		return a.Engine.Skip(cmd.Context(), args[0])
	},
}

var snoozeCmd = &cobra.Command{
	Use:   "snooze <action-id>",
	Short: "Push the due date forward by some hours",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		hours, _ := cmd.Flags().GetInt("hours")
		return a.Engine.Snooze(cmd.Context(), args[0], hours)
	},
}

var rescheduleCmd = &cobra.Command{
	Use:   "reschedule <action-id> <date>",
	Short: "Override the due date (YYYY-MM-DD or RFC 3339)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		newDate, err := parseDate(args[1])
		if err != nil {
			return err
		}
		return a.Engine.Reschedule(cmd.Context(), args[0], newDate)
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show streak and compliance",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		window, _ := cmd.Flags().GetInt("window")
		streak, err := a.Analytics.Streak(cmd.Context())
		if err != nil {
			return err
		}
		compliance, err := a.Analytics.Compliance(cmd.Context(), window)
		if err != nil {
			return err
		}

		fmt.Println(headerStyle.Render("Maintenance stats"))
		fmt.Printf("streak:     %s\n", okStyle.Render(fmt.Sprintf("%d days", streak)))
		fmt.Printf("compliance: %s\n", okStyle.Render(fmt.Sprintf("%d%% over %d days", compliance, window)))
		return nil
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the periodic due-item checker until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		checker := a.NewChecker()
		checker.Start()
		defer checker.Stop()

		fmt.Printf("checking every %d minutes, ctrl-c to stop\n",
			a.Config.Check.IntervalMinutes)

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		return nil
	},
}

func init() {
	componentAddCmd.Flags().String("category", model.CategoryOther, "component category")
	componentAddCmd.Flags().String("mode", model.TrackingCalendar, "tracking mode")
	componentAddCmd.Flags().String("notes", "", "free-text note")
	componentListCmd.Flags().Bool("all", false, "include retired components")
	componentUseCmd.Flags().Int("count", 1, "nights of use to add")

	actionAddCmd.Flags().Int("every", 1, "cadence frequency")
	actionAddCmd.Flags().String("unit", model.UnitDays, "cadence unit (days or uses)")
	actionAddCmd.Flags().String("strategy", model.ReminderStandard, "reminder strategy")
	actionAddCmd.Flags().String("desc", "", "description")
	actionAddCmd.Flags().String("at", "", "notification time of day (HH:MM)")
	actionAddCmd.Flags().String("instructions", "", "instructions text")
	actionListCmd.Flags().String("component", "", "filter by component id")

	completeCmd.Flags().String("notes", "", "completion notes")
	snoozeCmd.Flags().Int("hours", 4, "hours to snooze")
	statsCmd.Flags().Int("window", 30, "compliance window in days")
}

// actionFilterFromFlags builds a store filter from the list command flags.
func actionFilterFromFlags(cmd *cobra.Command) store.ActionFilter {
	var filter store.ActionFilter
	if componentID, _ := cmd.Flags().GetString("component"); componentID != "" {
		filter.ComponentID = &componentID
	}
	return filter
}

// parseDate accepts YYYY-MM-DD or RFC 3339.
func parseDate(s string) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD or RFC 3339", s)
	}
	return t, nil
}
