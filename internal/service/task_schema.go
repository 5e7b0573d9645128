package service

import (
	"encoding/json"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// taskSchemaJSON describes a Task table item as served by the fullnode.
// u64 fields are encoded as decimal strings.
const taskSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["task_id", "address", "content", "completed"],
  "properties": {
    "task_id": {"type": "string", "pattern": "^[0-9]+$"},
    "address": {"type": "string", "pattern": "^0x[0-9a-fA-F]+$"},
    "content": {"type": "string"},
    "completed": {"type": "boolean"}
  }
}`

var taskSchema = jsonschema.MustCompileString("aptodo://task.schema.json", taskSchemaJSON)

// TaskRecordError reports a table item that does not look like a Task.
type TaskRecordError struct {
	Path    string
	Message string
}

func (e *TaskRecordError) Error() string {
	if e.Path == "" {
		return "invalid task record: " + e.Message
	}
	return fmt.Sprintf("invalid task record at %s: %s", e.Path, e.Message)
}

// DecodeTask validates a raw table item against the Task schema and decodes it.
func DecodeTask(raw json.RawMessage) (Task, error) {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Task{}, &TaskRecordError{Message: err.Error()}
	}
	if err := taskSchema.Validate(doc); err != nil {
		return Task{}, schemaError(err)
	}

	var task Task
	if err := json.Unmarshal(raw, &task); err != nil {
		return Task{}, &TaskRecordError{Message: err.Error()}
	}
	return task, nil
}

// schemaError reduces a validation error to its first leaf cause.
func schemaError(err error) error {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return &TaskRecordError{Message: err.Error()}
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	path := strings.TrimPrefix(ve.InstanceLocation, "/")
	return &TaskRecordError{Path: strings.ReplaceAll(path, "/", "."), Message: ve.Message}
}
