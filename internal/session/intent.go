package session

// Intent is a user action that writes to the ledger.
type Intent interface {
	// Name describes the action in logs and errors.
	Name() string
	intent()
}

// CreateList creates the account's list.
type CreateList struct{}

// AddTask appends a task with Content to the list.
type AddTask struct {
	Content string
}

// CompleteTask marks a task as completed. Completion is one-way: a false
// Checked is ignored and never reaches the ledger.
type CompleteTask struct {
	TaskID  string
	Checked bool
}

func (CreateList) Name() string   { return "create list" }
func (AddTask) Name() string      { return "add task" }
func (CompleteTask) Name() string { return "complete task" }

func (CreateList) intent()   {}
func (AddTask) intent()      {}
func (CompleteTask) intent() {}
