package account

import (
	"strings"
	"time"
)

// Collection is the document collection accounts live in.
const Collection = "users"

// Account is the stored profile record for a signed-up user. The
// identity provider owns credentials and the verification flag; this
// record is the document-store projection of that user, with
// DisplayNameLower maintained as the case-folded key the uniqueness
// check runs on.
type Account struct {
	ID               string    `json:"uid"`
	Email            string    `json:"email"`
	DisplayName      string    `json:"displayName"`
	DisplayNameLower string    `json:"displayNameLower"`
	PhotoURL         string    `json:"photoURL"`
	Bio              string    `json:"bio"`
	EmailVerified    bool      `json:"emailVerified"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// NormalizeDisplayName keeps the invariant: lower(displayName) when
// set, empty otherwise.
func NormalizeDisplayName(name string) string {
	if name == "" {
		return ""
	}
	return strings.ToLower(name)
}

// ProfilePatch is a partial profile update. Nil fields are left
// untouched.
type ProfilePatch struct {
	DisplayName *string
	PhotoURL    *string
	Bio         *string
}
