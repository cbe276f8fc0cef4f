package tool

import "fmt"

// ErrToolNotFound is returned when a tool call references an unregistered tool.
type ErrToolNotFound struct {
	Name string
}

func (e *ErrToolNotFound) Error() string {
	return fmt.Sprintf("tool: not found: %s", e.Name)
}

// ErrToolAlreadyRegistered is returned when registering a tool with a duplicate name.
type ErrToolAlreadyRegistered struct {
	Name string
}

func (e *ErrToolAlreadyRegistered) Error() string {
	return fmt.Sprintf("tool: already registered: %s", e.Name)
}

// ErrInvalidTool is returned when a tool definition cannot be registered.
type ErrInvalidTool struct {
	Name   string
	Reason string
}

func (e *ErrInvalidTool) Error() string {
	if e.Name == "" {
		return "tool: invalid: " + e.Reason
	}
	return fmt.Sprintf("tool: invalid %s: %s", e.Name, e.Reason)
}
