package common

import (
	"context"
	"time"

	"placementpulse/internal/errors"
)

// OperationFunc produces a command's result
type OperationFunc[Output any] func(context.Context) (Output, error)

// RunCommand runs op and writes its result through the output handler.
// The output format is validated before op runs so a bad flag fails fast.
func RunCommand[Output any](
	ctx context.Context,
	logger *errors.Logger,
	cmdConfig CommandConfig,
	name string,
	op OperationFunc[Output],
) error {
	if logger == nil {
		logger = errors.NewNopLogger()
	}
	if err := ValidateOutputFormat(cmdConfig.OutputFormat, cmdConfig.SupportedFormats); err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidFormat, err.Error(), nil)
	}

	start := time.Now()
	result, err := op(ctx)
	if err != nil {
		return err
	}
	logger.Debug("Command completed", "command", name, "duration", time.Since(start))

	return NewOutputHandler(logger).HandleOutput(result, cmdConfig)
}
