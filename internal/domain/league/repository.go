package league

import "context"

// Repository describes league persistence needs from use cases.
type Repository interface {
	List(ctx context.Context) ([]League, error)
	GetByAbbreviation(ctx context.Context, abbreviation string) (League, bool, error)
	// GetOrCreate returns the stored league for the abbreviation, creating
	// it from the argument when absent. The flag reports creation.
	GetOrCreate(ctx context.Context, item League) (League, bool, error)
	Update(ctx context.Context, item League) error
}
