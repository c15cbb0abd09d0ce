package task

import "encoding/json"

const SpeciesTaskType = "SpeciesTask"

type Task interface {
	TaskType() string
	TaskValue() ([]byte, error)
}

// DefaultTaskValue provides a common implementation for TaskValue
func DefaultTaskValue(task Task) ([]byte, error) {
	return json.Marshal(task)
}

// UnmarshalTask decodes a task value produced by TaskValue.
func UnmarshalTask[T any](value []byte) (*T, error) {
	t := new(T)
	if err := json.Unmarshal(value, t); err != nil {
		return nil, err
	}
	return t, nil
}
