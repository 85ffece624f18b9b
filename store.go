package stockbook

import "context"

// Store persists a whole Portfolio.
//
// Implementations wrap ErrStoreNotInitialized when Load or Save is called
// before Create, and ErrStoreCorrupt when persisted data cannot be decoded.
type Store interface {
	// Create initializes empty storage. If it already exists, Create returns an
	// error wrapping ErrStoreAlreadyExists and leaves it untouched.
	Create(ctx context.Context) error
	// Load replaces p's content with the persisted snapshot. On error p is
	// left unchanged. The resulting order is unspecified.
	Load(ctx context.Context, p *Portfolio) error
	// Save atomically replaces the persisted snapshot with p's content.
	Save(ctx context.Context, p *Portfolio) error
}
