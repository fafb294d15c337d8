package ports

import (
	"context"

	"socialgap/domain/population"
)

// TableSource loads the population table once at startup. Implementations
// are files (xlsx, csv) or a database table.
type TableSource interface {
	Load(ctx context.Context) (*population.Table, error)
	// Describe names the source for logs
	Describe() string
}
