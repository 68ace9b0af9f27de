package auth

import (
	"github.com/dmitrijs2005/contestfund/internal/common"
	"github.com/dmitrijs2005/contestfund/internal/server/models"
)

// RequireIdentity rejects anonymous callers.
func RequireIdentity(caller models.Identity) error {
	if caller == "" {
		return common.ErrorUnauthorized
	}
	return nil
}

// RequireOwner succeeds only when caller is the stored owner identity;
// otherwise it returns denied. There are no roles and no delegation.
func RequireOwner(caller, owner models.Identity, denied error) error {
	if caller == "" || caller != owner {
		return denied
	}
	return nil
}
