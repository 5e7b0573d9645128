package service

import "encoding/json"

// Account is the identity of a connected wallet.
type Account struct {
	Address   string `json:"address"`
	PublicKey string `json:"public_key,omitempty"`
}

// Task represents a single on-chain task record.
type Task struct {
	TaskID    string `json:"task_id" yaml:"task_id"`
	Address   string `json:"address" yaml:"address"`
	Content   string `json:"content" yaml:"content"`
	Completed bool   `json:"completed" yaml:"completed"`
}

// TaskList is the task collection owned by one account.
// A nil *TaskList means the account has not created a list yet.
type TaskList struct {
	Owner string `json:"owner" yaml:"owner"`
	Tasks []Task `json:"tasks" yaml:"tasks"`
}

// Clone returns a deep copy of l. Clone of nil is nil.
func (l *TaskList) Clone() *TaskList {
	if l == nil {
		return nil
	}
	tasks := make([]Task, len(l.Tasks))
	copy(tasks, l.Tasks)
	return &TaskList{Owner: l.Owner, Tasks: tasks}
}

// Resource is a typed record stored under an account.
type Resource struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// TableItemRequest identifies one entry of an on-chain table.
type TableItemRequest struct {
	KeyType   string `json:"key_type"`
	ValueType string `json:"value_type"`
	Key       string `json:"key"`
}

// EntryFunctionPayload is a call to a public entry function.
type EntryFunctionPayload struct {
	Function      string   `json:"function"`
	TypeArguments []string `json:"type_arguments"`
	Arguments     []any    `json:"arguments"`
}

// PendingTransaction is returned by a successful submission.
type PendingTransaction struct {
	Hash string `json:"hash"`
}

// Event is an event emitted by a committed transaction.
type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Transaction is a committed transaction.
type Transaction struct {
	Hash     string  `json:"hash"`
	Version  string  `json:"version"`
	Success  bool    `json:"success"`
	VMStatus string  `json:"vm_status"`
	Events   []Event `json:"events"`
}
