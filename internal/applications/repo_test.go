package applications

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/jobtracker/jobtracker-backend/pkg/db/dbtest"
	"github.com/jobtracker/jobtracker-backend/pkg/db/models"
	"github.com/jobtracker/jobtracker-backend/pkg/enums"
)

func seedOwner(t *testing.T, conn *gorm.DB) uuid.UUID {
	t.Helper()
	owner := models.User{
		ID:          uuid.New(),
		Email:       uuid.NewString() + "@example.com",
		Role:        enums.RoleUser,
		IsActive:    true,
		DisplayName: "owner",
	}
	require.NoError(t, conn.Create(&owner).Error)
	return owner.ID
}

func newApplicationRow(owner uuid.UUID, company string) *models.JobApplication {
	return &models.JobApplication{
		UserID:          owner,
		Company:         company,
		Position:        "Engineer",
		Status:          enums.ApplicationStatusApplied,
		ApplicationDate: datatypes.Date(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)),
	}
}

func TestRepositoryScopesReadsToOwner(t *testing.T) {
	ctx := context.Background()
	conn := dbtest.Open(t).DB()
	repo := NewRepository(conn)
	owner, other := seedOwner(t, conn), seedOwner(t, conn)

	row := newApplicationRow(owner, "Acme")
	require.NoError(t, repo.Create(ctx, row))
	assert.NotEqual(t, uuid.Nil, row.ID)

	found, err := repo.FindForOwner(ctx, owner, row.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", found.Company)

	_, err = repo.FindForOwner(ctx, other, row.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositorySaveKeepsOwnerFilter(t *testing.T) {
	ctx := context.Background()
	conn := dbtest.Open(t).DB()
	repo := NewRepository(conn)
	owner, other := seedOwner(t, conn), seedOwner(t, conn)

	row := newApplicationRow(owner, "Acme")
	require.NoError(t, repo.Create(ctx, row))

	hijack := *row
	hijack.UserID = other
	hijack.Company = "Hijacked"
	require.NoError(t, repo.Save(ctx, &hijack))

	found, err := repo.FindForOwner(ctx, owner, row.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", found.Company)

	row.Status = enums.ApplicationStatusOffer
	row.Notes = "verbal offer"
	require.NoError(t, repo.Save(ctx, row))

	found, err = repo.FindForOwner(ctx, owner, row.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.ApplicationStatusOffer, found.Status)
	assert.Equal(t, "verbal offer", found.Notes)
}

func TestRepositoryDeleteForOwner(t *testing.T) {
	ctx := context.Background()
	conn := dbtest.Open(t).DB()
	repo := NewRepository(conn)
	owner, other := seedOwner(t, conn), seedOwner(t, conn)

	row := newApplicationRow(owner, "Acme")
	require.NoError(t, repo.Create(ctx, row))

	removed, err := repo.DeleteForOwner(ctx, other, row.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	removed, err = repo.DeleteForOwner(ctx, owner, row.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.DeleteForOwner(ctx, owner, row.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestRepositoryListForOwnerNewestFirst(t *testing.T) {
	ctx := context.Background()
	conn := dbtest.Open(t).DB()
	repo := NewRepository(conn)
	owner, other := seedOwner(t, conn), seedOwner(t, conn)

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	for i, company := range []string{"First", "Second", "Third"} {
		row := newApplicationRow(owner, company)
		row.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, repo.Create(ctx, row))
	}
	require.NoError(t, repo.Create(ctx, newApplicationRow(other, "Elsewhere")))

	rows, err := repo.ListForOwner(ctx, owner)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Third", "Second", "First"}, []string{rows[0].Company, rows[1].Company, rows[2].Company})

	empty, err := repo.ListForOwner(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, empty)
}
