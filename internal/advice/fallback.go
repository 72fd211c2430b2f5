package advice

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// FallbackModel retries a failed call once on a secondary model.
type FallbackModel struct {
	primary   Model
	secondary Model
	logger    *zap.Logger
}

// NewFallbackModel returns primary unchanged when secondary is nil.
func NewFallbackModel(primary, secondary Model, logger *zap.Logger) Model {
	if secondary == nil {
		return primary
	}
	if primary == nil {
		return secondary
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FallbackModel{primary: primary, secondary: secondary, logger: logger}
}

// Name implements Model.
func (f *FallbackModel) Name() string {
	return f.primary.Name() + "+" + f.secondary.Name()
}

// Generate implements Model. A cancelled context is not retried.
func (f *FallbackModel) Generate(ctx context.Context, req Request) (*Response, error) {
	resp, err := f.primary.Generate(ctx, req)
	if err == nil {
		return resp, nil
	}
	if errors.Is(err, context.Canceled) || ctx.Err() != nil {
		return nil, err
	}

	f.logger.Warn("Primary model failed, using fallback",
		zap.String("primary", f.primary.Name()),
		zap.String("fallback", f.secondary.Name()),
		zap.Error(err),
	)

	resp, fbErr := f.secondary.Generate(ctx, req)
	if fbErr != nil {
		return nil, errors.Join(err, fbErr)
	}
	return resp, nil
}
