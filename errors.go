package mhw

import "errors"

// Sentinel errors returned by mhw and its sub-packages.
// Use errors.Is to test for them; call sites wrap them with context.
var (
	// ErrNullPointer is returned when a required parameter record, command
	// buffer, resource or settings table is missing.
	ErrNullPointer = errors.New("mhw: null pointer")

	// ErrInvalidParameter is returned when a parameter is out of range,
	// such as a resource location outside the command.
	ErrInvalidParameter = errors.New("mhw: invalid parameter")

	// ErrNoOSInterface is returned by every command-building call of an
	// interface constructed without an OS interface.
	ErrNoOSInterface = errors.New("mhw: no OS interface")

	// ErrCommandBufferFull is returned when a command does not fit in the
	// remaining space of a command buffer. Nothing is written.
	ErrCommandBufferFull = errors.New("mhw: command buffer full")

	// ErrUnknownGeneration is returned when a generation name is not registered.
	ErrUnknownGeneration = errors.New("mhw: unknown generation")

	// ErrInvalidLocation is returned when a command location does not
	// refer to a command previously appended to the buffer.
	ErrInvalidLocation = errors.New("mhw: invalid command location")
)
