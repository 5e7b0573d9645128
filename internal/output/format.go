// Package output provides formatters for CLI output.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"aptodo/internal/service"
)

// Output formats accepted by list --format.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Messages printed in place of a task list.
const (
	NoListMessage  = "no todo list (run: aptodo createlist)"
	NoTasksMessage = "no tasks found"
)

// FormatTask formats a task line.
// Format: "{ID:>4}  [x] {CONTENT}  {SHORT ADDRESS}\n"
func FormatTask(w io.Writer, task service.Task) {
	fmt.Fprintf(w, "%4s  %s %s  %s\n", task.TaskID, Checkbox(task.Completed), NormalizeContent(task.Content), ShortAddress(task.Address))
}

// Checkbox renders a completion marker.
func Checkbox(completed bool) string {
	if completed {
		return "[x]"
	}
	return "[ ]"
}

// ShortAddress abbreviates an account address to 0x + first 4 + ... + last 4
// hex digits. Short addresses are returned unchanged.
func ShortAddress(addr string) string {
	hex := strings.TrimPrefix(addr, "0x")
	if len(hex) <= 8 {
		return addr
	}
	return "0x" + hex[:4] + "..." + hex[len(hex)-4:]
}

// NormalizeContent normalizes task content for display.
// - Empty or whitespace-only content becomes "(untitled)"
// - Newlines are replaced with spaces
func NormalizeContent(content string) string {
	content = strings.ReplaceAll(content, "\r", " ")
	content = strings.ReplaceAll(content, "\n", " ")

	if strings.TrimSpace(content) == "" {
		return "(untitled)"
	}
	return content
}

// ListDocument is the structured form of list output.
type ListDocument struct {
	Account string         `json:"account" yaml:"account"`
	HasList bool           `json:"has_list" yaml:"has_list"`
	Tasks   []service.Task `json:"tasks" yaml:"tasks"`
}

// ValidFormat reports whether f is a known output format.
func ValidFormat(f string) bool {
	switch f {
	case FormatText, FormatJSON, FormatYAML:
		return true
	}
	return false
}

// WriteList writes the list of account in the given format.
// A nil list means the account has no list.
func WriteList(w io.Writer, format, account string, list *service.TaskList, quiet bool) error {
	switch format {
	case FormatJSON, FormatYAML:
		doc := ListDocument{Account: account, HasList: list != nil, Tasks: []service.Task{}}
		if list != nil {
			doc.Tasks = append(doc.Tasks, list.Tasks...)
		}
		if format == FormatJSON {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(doc)
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	case FormatText, "":
		switch {
		case list == nil:
			if !quiet {
				fmt.Fprintln(w, NoListMessage)
			}
		case len(list.Tasks) == 0:
			if !quiet {
				fmt.Fprintln(w, NoTasksMessage)
			}
		default:
			for _, task := range list.Tasks {
				FormatTask(w, task)
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}
