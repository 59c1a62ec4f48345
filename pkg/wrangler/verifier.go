// pkg/wrangler/verifier.go
package wrangler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mhamadwd/Data-Wrangler/pkg/connector"
	"github.com/mhamadwd/Data-Wrangler/pkg/converter"
	"github.com/mhamadwd/Data-Wrangler/pkg/model"
)

// Verifier checks exported tables against the in-memory data
type Verifier struct {
	logger  *zap.Logger
	timeout time.Duration
}

// NewVerifier creates a new verifier
func NewVerifier(logger *zap.Logger) *Verifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Verifier{
		logger:  logger,
		timeout: time.Minute,
	}
}

// WithTimeout sets a custom timeout for verification queries
func (v *Verifier) WithTimeout(timeout time.Duration) *Verifier {
	v.timeout = timeout
	return v
}

// VerifyRowCount compares the sink's row count for name with the table
func (v *Verifier) VerifyRowCount(
	ctx context.Context,
	sink connector.DatabaseConnector,
	name string,
	table *model.Table,
) (bool, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	query := "SELECT COUNT(*) FROM " + converter.QualifiedName(sink.Schema(), name)

	var targetCount int64
	if err := sink.DB().GetContext(ctx, &targetCount, query); err != nil {
		return false, 0, fmt.Errorf("failed to count rows in %s: %w", name, err)
	}

	expected := int64(table.NumRows())
	matches := expected == targetCount
	if matches {
		v.logger.Info("Row count verification successful",
			zap.String("sink", sink.Name()),
			zap.String("table", name),
			zap.Int64("count", targetCount))
	} else {
		v.logger.Warn("Row count mismatch",
			zap.String("sink", sink.Name()),
			zap.String("table", name),
			zap.Int64("expected", expected),
			zap.Int64("actual", targetCount),
			zap.Int64("difference", expected-targetCount))
	}

	return matches, targetCount, nil
}
