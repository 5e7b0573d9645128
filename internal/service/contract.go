package service

// Module and entry point names of the todo list contract.
const (
	ModuleName = "todolist"

	ResourceName = "TodoList"
	TaskTypeName = "Task"

	EntryCreateList   = "create_list"
	EntryCreateTask   = "create_task"
	EntryCompleteTask = "complete_task"

	// TaskKeyType is the key type of the tasks table.
	TaskKeyType = "u64"
)

// Contract names the deployed todo list module.
type Contract struct {
	// Address is the account the module is published under.
	Address string
}

// ResourceType returns the fully qualified TodoList resource type.
func (c Contract) ResourceType() string {
	return c.qualify(ResourceName)
}

// TaskType returns the fully qualified Task struct type.
func (c Contract) TaskType() string {
	return c.qualify(TaskTypeName)
}

// EntryFunction returns the fully qualified name of an entry function.
func (c Contract) EntryFunction(name string) string {
	return c.qualify(name)
}

// Payload builds an entry function payload with no type arguments.
func (c Contract) Payload(entry string, args ...any) EntryFunctionPayload {
	if args == nil {
		args = []any{}
	}
	return EntryFunctionPayload{
		Function:      c.EntryFunction(entry),
		TypeArguments: []string{},
		Arguments:     args,
	}
}

func (c Contract) qualify(name string) string {
	return c.Address + "::" + ModuleName + "::" + name
}
