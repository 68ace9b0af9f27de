package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/contestfund/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContestService_Create(t *testing.T) {
	f := newFixture(t)
	deadline := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)

	id, err := f.contests.Create(context.Background(), owner, "Title", "Description", deadline)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	c, err := f.contests.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Title", c.Title)
	assert.Equal(t, "Description", c.Description)
	assert.True(t, deadline.Equal(c.Deadline))
	assert.Equal(t, owner, c.Owner)
	assert.Zero(t, c.PrizePool)
	assert.False(t, c.Closed)
}

func TestContestService_Create_PastDeadlineAccepted(t *testing.T) {
	f := newFixture(t)
	_, err := f.contests.Create(context.Background(), owner, "t", "d", time.Now().Add(-time.Hour))
	assert.NoError(t, err)
}

func TestContestService_Create_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name        string
		owner       string
		title       string
		description string
		wantErr     error
	}{
		{name: "anonymous", owner: "", title: "t", wantErr: common.ErrorUnauthorized},
		{name: "title too long", owner: "o", title: strings.Repeat("x", 65), wantErr: common.ErrInvalidInput},
		{name: "description too long", owner: "o", title: "t", description: strings.Repeat("x", 129), wantErr: common.ErrInvalidInput},
		{name: "bounds inclusive", owner: "o", title: strings.Repeat("x", 64), description: strings.Repeat("x", 128)},
		{name: "empty strings", owner: "o"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.contests.Create(ctx, identity(tt.owner), tt.title, tt.description, time.Now())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestContestService_Close(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.createContest(t)

	assert.ErrorIs(t, f.contests.Close(ctx, id, funderA), common.ErrorUnauthorized)
	assert.False(t, f.contest(t, id).Closed)

	require.NoError(t, f.contests.Close(ctx, id, owner))
	assert.True(t, f.contest(t, id).Closed)

	assert.ErrorIs(t, f.contests.Close(ctx, id, owner), common.ErrAlreadyClosed)
	// a non-owner is refused before the closed flag is looked at
	assert.ErrorIs(t, f.contests.Close(ctx, id, funderA), common.ErrorUnauthorized)
	assert.True(t, f.contest(t, id).Closed)
}

func TestContestService_Close_MovesNoFunds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.createContest(t)
	f.fund(t, id, funderA, 3_000_000)

	require.NoError(t, f.contests.Close(ctx, id, owner))
	assert.Equal(t, int64(3_000_000), f.contest(t, id).PrizePool)
	assert.Equal(t, int64(3_000_000), f.ledger.PoolBalance(id))
}

func TestContestService_Close_NotFound(t *testing.T) {
	f := newFixture(t)
	assert.ErrorIs(t, f.contests.Close(context.Background(), "missing", owner), common.ErrorNotFound)
}

func TestContestService_Get_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.contests.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}
