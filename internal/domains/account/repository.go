package account

import "context"

// Repository is the account data access contract.
type Repository interface {
	Get(ctx context.Context, id string) (*Account, error)

	// Create writes the profile record, rejecting a display name held
	// by a different verified account with ErrDuplicateDisplayName. A
	// record that already exists under the id is merged, keeping its
	// creation time.
	Create(ctx context.Context, acct *Account) error

	// Update applies a partial profile update. A changed display name
	// is checked for duplicates; an unchanged one is not.
	Update(ctx context.Context, id string, patch ProfilePatch) (*Account, error)

	Delete(ctx context.Context, id string) error

	// SetEmailVerified pushes the provider-observed verification flag
	// into the stored profile.
	SetEmailVerified(ctx context.Context, id string, verified bool) error

	// DisplayNameExists reports whether a verified account other than
	// excludeID holds the name (case-insensitive). Unverified accounts
	// never count as collisions.
	DisplayNameExists(ctx context.Context, name, excludeID string) (bool, error)
}
