package common

import (
	"context"
	"fmt"
	"io"
	"time"

	"hireforge/internal/errors"
)

// CreateInputFunc defines how to create the operation input from file contents.
type CreateInputFunc[Input any] func(contents []string) (Input, error)

// LogDetailsFunc defines how to log the start of an operation.
type LogDetailsFunc[Input any] func(input Input, cfg CommandConfig)

// OperationFunc is a generation step run by a file-based command.
type OperationFunc[Input, Output any] func(context.Context, Input) (Output, error)

// CommandIO carries the helpers and streams a command runs against.
type CommandIO struct {
	Files  *FileProcessor
	Output *OutputHandler
	Stdin  io.Reader
}

// RunAICommand encapsulates the common logic for file-based CLI commands:
// read the argument files ("-" is stdin), build the input, run the
// operation and write the result. A []byte result is written as is;
// anything else goes through the formatter registry.
func RunAICommand[Input, Output any](
	ctx context.Context,
	logger *errors.Logger,
	cio CommandIO,
	cmdConfig CommandConfig,
	args []string,
	createInput CreateInputFunc[Input],
	operation OperationFunc[Input, Output],
	logDetails LogDetailsFunc[Input],
) (Output, error) {
	var zero Output

	contents := make([]string, len(args))
	for i, arg := range args {
		content, err := cio.Files.ReadNotes(arg, cio.Stdin)
		if err != nil {
			return zero, err
		}
		contents[i] = content
	}

	input, err := createInput(contents)
	if err != nil {
		return zero, fmt.Errorf("failed to create input from file contents: %w", err)
	}

	if logDetails != nil {
		logDetails(input, cmdConfig)
	}

	start := time.Now()
	result, err := operation(ctx, input)
	if err != nil {
		return zero, err
	}
	logger.Info("Generation step completed", "duration", time.Since(start).Round(time.Millisecond))

	if raw, ok := any(result).([]byte); ok {
		return result, cio.Output.WriteBinary(raw, cmdConfig.OutputFile)
	}
	return result, cio.Output.HandleOutput(result, cmdConfig)
}
