package auth

import (
	"testing"

	"github.com/dmitrijs2005/contestfund/internal/common"
	"github.com/dmitrijs2005/contestfund/internal/server/models"
	"github.com/stretchr/testify/assert"
)

func TestRequireIdentity(t *testing.T) {
	assert.ErrorIs(t, RequireIdentity(""), common.ErrorUnauthorized)
	assert.NoError(t, RequireIdentity("alice"))
}

func TestRequireOwner(t *testing.T) {
	tests := []struct {
		name   string
		caller string
		owner  string
		ok     bool
	}{
		{name: "owner", caller: "alice", owner: "alice", ok: true},
		{name: "stranger", caller: "mallory", owner: "alice"},
		{name: "anonymous", caller: "", owner: "alice"},
		{name: "anonymous vs empty owner", caller: "", owner: ""},
		{name: "case sensitive", caller: "Alice", owner: "alice"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RequireOwner(models.Identity(tt.caller), models.Identity(tt.owner), common.ErrUnauthorizedVoter)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, common.ErrUnauthorizedVoter)
		})
	}
}
