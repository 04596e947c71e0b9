// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"todo/internal/service"
)

// FormatTask formats a task line.
// Format: "{ID:>4}  [ ] {TITLE}\n", with [x] for completed tasks.
func FormatTask(w io.Writer, task service.Task) {
	mark := " "
	if task.Completed {
		mark = "x"
	}
	fmt.Fprintf(w, "%4d  [%s] %s\n", task.ID, mark, normalizeTitle(task.Title))
}

// FormatTasks formats tasks in the given order.
func FormatTasks(w io.Writer, tasks []service.Task) {
	for _, t := range tasks {
		FormatTask(w, t)
	}
}

// FormatSession formats the signed-in user.
func FormatSession(w io.Writer, sess *service.Session) {
	if sess == nil {
		fmt.Fprintln(w, "anonymous")
		return
	}
	fmt.Fprintf(w, "signed in as %s\n", sess.User.Email)
	if sess.Token != nil && !sess.Token.Expiry.IsZero() {
		fmt.Fprintf(w, "token expires %s\n", sess.Token.Expiry.Format("2006-01-02 15:04:05"))
	}
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
