package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"blog-backend/internal/domains/account"
	"blog-backend/internal/infrastructure/docstore"
)

// accountRepository implements account.Repository on the document
// store.
type accountRepository struct {
	store docstore.Store
}

func NewAccountRepository(store docstore.Store) account.Repository {
	return &accountRepository{store: store}
}

func (r *accountRepository) Get(ctx context.Context, id string) (*account.Account, error) {
	var acct account.Account
	err := r.store.Get(ctx, account.Collection, id, &acct)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, account.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	acct.ID = id
	return &acct, nil
}

func (r *accountRepository) Create(ctx context.Context, acct *account.Account) error {
	if acct.DisplayName != "" {
		taken, err := r.DisplayNameExists(ctx, acct.DisplayName, acct.ID)
		if err != nil {
			return fmt.Errorf("check display name: %w", err)
		}
		if taken {
			return account.ErrDuplicateDisplayName
		}
	}

	now := time.Now()
	acct.DisplayNameLower = account.NormalizeDisplayName(acct.DisplayName)
	acct.UpdatedAt = now

	// A record may already exist for the id (repeat social sign-in);
	// merge into it and keep its creation time.
	var existing account.Account
	err := r.store.Get(ctx, account.Collection, acct.ID, &existing)
	switch {
	case err == nil:
		acct.CreatedAt = existing.CreatedAt
		patch := map[string]interface{}{
			"email":            acct.Email,
			"displayName":      acct.DisplayName,
			"displayNameLower": acct.DisplayNameLower,
			"photoURL":         acct.PhotoURL,
			"emailVerified":    acct.EmailVerified,
			"updatedAt":        acct.UpdatedAt,
		}
		if err := r.store.Update(ctx, account.Collection, acct.ID, patch); err != nil {
			return fmt.Errorf("merge account: %w", err)
		}
		return nil
	case errors.Is(err, docstore.ErrNotFound):
		acct.CreatedAt = now
		if err := r.store.Set(ctx, account.Collection, acct.ID, acct); err != nil {
			return fmt.Errorf("create account: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("create account: %w", err)
	}
}

func (r *accountRepository) Update(ctx context.Context, id string, patch account.ProfilePatch) (*account.Account, error) {
	current, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{
		"updatedAt": time.Now(),
	}

	if patch.DisplayName != nil {
		// Only a changed name pays for the duplicate check.
		if *patch.DisplayName != current.DisplayName {
			taken, err := r.DisplayNameExists(ctx, *patch.DisplayName, id)
			if err != nil {
				return nil, fmt.Errorf("check display name: %w", err)
			}
			if taken {
				return nil, account.ErrDuplicateDisplayName
			}
		}
		fields["displayName"] = *patch.DisplayName
		fields["displayNameLower"] = account.NormalizeDisplayName(*patch.DisplayName)
		current.DisplayName = *patch.DisplayName
		current.DisplayNameLower = account.NormalizeDisplayName(*patch.DisplayName)
	}
	if patch.PhotoURL != nil {
		fields["photoURL"] = *patch.PhotoURL
		current.PhotoURL = *patch.PhotoURL
	}
	if patch.Bio != nil {
		fields["bio"] = *patch.Bio
		current.Bio = *patch.Bio
	}

	if err := r.store.Update(ctx, account.Collection, id, fields); err != nil {
		return nil, fmt.Errorf("update account: %w", err)
	}
	return current, nil
}

func (r *accountRepository) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, account.Collection, id); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return nil
}

func (r *accountRepository) SetEmailVerified(ctx context.Context, id string, verified bool) error {
	err := r.store.Update(ctx, account.Collection, id, map[string]interface{}{
		"emailVerified": verified,
		"updatedAt":     time.Now(),
	})
	if errors.Is(err, docstore.ErrNotFound) {
		return account.ErrAccountNotFound
	}
	if err != nil {
		return fmt.Errorf("set email verified: %w", err)
	}
	return nil
}

// DisplayNameExists scans the collection and compares case-folded
// names. Only verified accounts count; the owner's own record never
// collides with itself.
func (r *accountRepository) DisplayNameExists(ctx context.Context, name, excludeID string) (bool, error) {
	if name == "" {
		return false, nil
	}
	normalized := account.NormalizeDisplayName(name)

	docs, err := r.store.Query(ctx, account.Collection, docstore.Query{})
	if err != nil {
		return false, fmt.Errorf("scan accounts: %w", err)
	}

	for _, doc := range docs {
		var other account.Account
		if err := doc.Decode(&other); err != nil {
			continue
		}
		if excludeID != "" && doc.ID == excludeID {
			continue
		}
		if !other.EmailVerified {
			continue
		}
		if account.NormalizeDisplayName(other.DisplayName) == normalized {
			return true, nil
		}
	}
	return false, nil
}
