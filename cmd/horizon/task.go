package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/horizon-sh/horizon/internal/models"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks",
}

var taskAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a new task",
	RunE:  runTaskAdd,
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	RunE:  runTaskList,
}

var taskShowCmd = &cobra.Command{
	Use:   "show [task-id]",
	Short: "Show task details",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskShow,
}

var taskCompleteCmd = &cobra.Command{
	Use:   "complete [task-id]",
	Short: "Mark a task completed",
	Args:  cobra.ExactArgs(1),
	RunE:  taskAction("complete", "Completed task %s\n"),
}

var taskPlanCmd = &cobra.Command{
	Use:   "plan [task-id]",
	Short: "Move a task into planning",
	Args:  cobra.ExactArgs(1),
	RunE:  taskAction("plan", "Task %s moved to planning\n"),
}

var taskActivateCmd = &cobra.Command{
	Use:   "activate [task-id]",
	Short: "Reactivate a task",
	Args:  cobra.ExactArgs(1),
	RunE:  taskAction("activate", "Task %s is active again\n"),
}

var taskDismissCmd = &cobra.Command{
	Use:   "dismiss [task-id]",
	Short: "Dismiss the stale flag on a task",
	Args:  cobra.ExactArgs(1),
	RunE:  taskAction("dismiss-stale", "Dismissed staleness for task %s\n"),
}

var taskReopenCmd = &cobra.Command{
	Use:   "reopen [task-id]",
	Short: "Re-enable the stale check for a task",
	Args:  cobra.ExactArgs(1),
	RunE:  taskAction("reopen-stale", "Stale check re-enabled for task %s\n"),
}

var taskDeleteCmd = &cobra.Command{
	Use:   "delete [task-id]",
	Short: "Delete a task and its subtasks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := apiDelete("/tasks/" + args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted task %s\n", args[0])
		return nil
	},
}

var (
	taskTitle    string
	taskNotes    string
	taskPriority string
	taskDue      string
	taskDueType  string
	taskParent   string
	taskSpace    string
	taskStatus   string
)

func init() {
	taskCmd.AddCommand(taskAddCmd, taskListCmd, taskShowCmd, taskCompleteCmd,
		taskPlanCmd, taskActivateCmd, taskDismissCmd, taskReopenCmd, taskDeleteCmd)

	taskAddCmd.Flags().StringVar(&taskTitle, "title", "", "Task title (required)")
	taskAddCmd.Flags().StringVar(&taskNotes, "notes", "", "Task notes")
	taskAddCmd.Flags().StringVar(&taskPriority, "priority", "normal", "Priority (normal, high)")
	taskAddCmd.Flags().StringVar(&taskDue, "due", "", "Due date (YYYY-MM-DD or RFC3339)")
	taskAddCmd.Flags().StringVar(&taskDueType, "due-type", "soft", "Due date type (soft, hard)")
	taskAddCmd.Flags().StringVar(&taskParent, "parent", "", "Parent task ID (creates a subtask)")
	taskAddCmd.Flags().StringVar(&taskSpace, "space", "", "Space slug")
	taskAddCmd.MarkFlagRequired("title")

	taskListCmd.Flags().StringVar(&taskStatus, "status", "", "Filter by status (active, planning, completed)")
}

func runTaskAdd(cmd *cobra.Command, args []string) error {
	body := map[string]string{
		"title":          taskTitle,
		"notes":          taskNotes,
		"priority":       taskPriority,
		"due_date":       taskDue,
		"due_date_type":  taskDueType,
		"parent_task_id": taskParent,
		"space_slug":     taskSpace,
	}

	resp, err := apiPost("/tasks", body)
	if err != nil {
		return err
	}

	var task models.Task
	if err := json.Unmarshal(resp, &task); err != nil {
		return err
	}

	fmt.Printf("Created task: %s\n", task.ID)
	return nil
}

func runTaskList(cmd *cobra.Command, args []string) error {
	url := "/tasks"
	if taskStatus != "" {
		url += "?status=" + taskStatus
	}

	resp, err := apiGet(url)
	if err != nil {
		return err
	}

	var tasks []models.Task
	if err := json.Unmarshal(resp, &tasks); err != nil {
		return err
	}

	if len(tasks) == 0 {
		fmt.Println("No tasks found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tPRIORITY\tDUE")
	for _, t := range tasks {
		due := ""
		if t.DueDate != nil {
			due = t.DueDate.Local().Format("2006-01-02")
			if t.DueDateType == models.DueDateHard {
				due += "!"
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			truncateID(t.ID), truncate(t.Title, 40), t.Status, t.Priority, due)
	}
	w.Flush()
	return nil
}

func runTaskShow(cmd *cobra.Command, args []string) error {
	resp, err := apiGet("/tasks/" + args[0])
	if err != nil {
		return err
	}

	var task models.Task
	if err := json.Unmarshal(resp, &task); err != nil {
		return err
	}

	fmt.Printf("ID:        %s\n", task.ID)
	fmt.Printf("Title:     %s\n", task.Title)
	if task.Notes != "" {
		fmt.Printf("Notes:     %s\n", task.Notes)
	}
	fmt.Printf("Status:    %s\n", task.Status)
	fmt.Printf("Priority:  %s\n", task.Priority)
	if task.DueDate != nil {
		fmt.Printf("Due:       %s (%s)\n", task.DueDate.Local().Format("2006-01-02 15:04"), task.DueDateType)
	}
	if task.SpaceName != "" {
		fmt.Printf("Space:     %s\n", task.SpaceName)
	}
	fmt.Printf("Activity:  %s\n", task.LastActivityAt.Local().Format("2006-01-02 15:04"))
	fmt.Printf("Created:   %s\n", task.CreatedAt.Local().Format("2006-01-02 15:04"))

	subResp, err := apiGet("/tasks/" + args[0] + "/subtasks")
	if err == nil {
		var subs []models.Task
		if json.Unmarshal(subResp, &subs) == nil && len(subs) > 0 {
			fmt.Println("Subtasks:")
			for _, s := range subs {
				fmt.Printf("  [%s] %s (%s)\n", truncateID(s.ID), s.Title, s.Status)
			}
		}
	}
	return nil
}

// taskAction builds a RunE that POSTs a single task action.
func taskAction(action, doneMsg string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if _, err := apiPost("/tasks/"+args[0]+"/"+action, nil); err != nil {
			return err
		}
		fmt.Printf(doneMsg, args[0])
		return nil
	}
}
