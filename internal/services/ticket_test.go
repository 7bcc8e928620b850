package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ticket-desk/internal/dto"
	"ticket-desk/internal/entities"
	"ticket-desk/internal/repositories/repotest"
	apperrors "ticket-desk/pkg/errors"
)

var (
	alice = &entities.User{ID: 1, Email: "alice@example.com", FullName: "Alice"}
	bob   = &entities.User{ID: 2, Email: "bob@example.com", FullName: "Bob"}
	admin = &entities.User{ID: 3, Email: "admin@example.com", FullName: "Admin", IsAdmin: 1}
)

func newTicketService(t *testing.T) (*TicketService, *repotest.TicketRepo) {
	t.Helper()
	_, cache := newCache(t)
	repo := repotest.NewTicketRepo()
	repo.Names[alice.ID] = alice.FullName
	repo.Names[bob.ID] = bob.FullName
	return NewTicketService(repo, repotest.TxManager{}, cache, zap.NewNop()), repo
}

func createTicket(t *testing.T, svc *TicketService, owner *entities.User, title string) *dto.TicketResponseDTO {
	t.Helper()
	created, err := svc.CreateTicket(asUser(owner), dto.CreateTicketDTO{
		Title: title, Description: "something broke", Category: "Technical Support", Priority: "Low",
	})
	require.NoError(t, err)
	return created
}

func TestTicketService_CreateTicket(t *testing.T) {
	svc, _ := newTicketService(t)

	created, err := svc.CreateTicket(asUser(alice), dto.CreateTicketDTO{
		Title:             "  Refund & invoice  ",
		Description:       "Please refund",
		Category:          "Billing and Payments",
		Priority:          "Low",
		ExtractedEntities: map[string]string{"email": "a@b.com"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Refund & invoice", created.Title)
	assert.Equal(t, "Please refund", created.Description)
	assert.Equal(t, entities.TicketStatusNew, created.Status)
	assert.Equal(t, alice.ID, created.OwnerID)
	assert.False(t, created.Rating.Valid)
	assert.False(t, created.FirstResponseSeconds.Valid)
	assert.Nil(t, created.OwnerName)

	_, err = svc.CreateTicket(asUser(alice), dto.CreateTicketDTO{Title: "   ", Description: "x", Category: "c", Priority: "p"})
	assert.Error(t, err)

	_, err = svc.CreateTicket(context.Background(), dto.CreateTicketDTO{Title: "t", Description: "d"})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestTicketService_CreateTicketKeepsText(t *testing.T) {
	svc, _ := newTicketService(t)

	for _, text := range []string{
		"x<y",
		"if a<b and c>d then",
		"NullPointerException in Map<K,V>.get()",
		"use 5 &amp; 6",
		"&lt;script&gt;alert(1)&lt;/script&gt;",
	} {
		created, err := svc.CreateTicket(asUser(alice), dto.CreateTicketDTO{
			Title: text, Description: text, Category: "Technical Support", Priority: "Low",
		})
		require.NoError(t, err)
		assert.Equal(t, text, created.Title)
		assert.Equal(t, text, created.Description)
	}
}

func TestTicketService_GetTicketsVisibility(t *testing.T) {
	svc, _ := newTicketService(t)
	createTicket(t, svc, alice, "a1")
	createTicket(t, svc, bob, "b1")
	createTicket(t, svc, alice, "a2")

	own, err := svc.GetTickets(asUser(alice), dto.TicketListQuery{})
	require.NoError(t, err)
	require.Len(t, own, 2)
	for _, ticket := range own {
		assert.Equal(t, alice.ID, ticket.OwnerID)
		assert.Nil(t, ticket.OwnerName)
	}
	assert.Equal(t, "a2", own[0].Title)

	all, err := svc.GetTickets(asUser(admin), dto.TicketListQuery{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.NotNil(t, all[1].OwnerName)
	assert.Equal(t, "Bob", *all[1].OwnerName)
}

func TestTicketService_GetTicketsPaging(t *testing.T) {
	svc, _ := newTicketService(t)
	for i := 0; i < 5; i++ {
		createTicket(t, svc, alice, "t")
	}

	skip, limit := 1, 2
	page, err := svc.GetTickets(asUser(alice), dto.TicketListQuery{Skip: &skip, Limit: &limit})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, uint64(4), page[0].ID)

	zero := 0
	page, err = svc.GetTickets(asUser(alice), dto.TicketListQuery{Limit: &zero})
	require.NoError(t, err)
	assert.Empty(t, page)

	page, err = svc.GetTickets(asUser(admin), dto.TicketListQuery{Limit: &zero})
	require.NoError(t, err)
	assert.Empty(t, page)

	negative := -1
	_, err = svc.GetTickets(asUser(alice), dto.TicketListQuery{Skip: &negative})
	assert.Error(t, err)
}

func TestTicketFilter_Defaults(t *testing.T) {
	filter, err := ticketFilter(dto.TicketListQuery{})
	require.NoError(t, err)
	assert.Equal(t, uint64(DefaultTicketLimit), filter.Limit)
	assert.Equal(t, uint64(0), filter.Offset)

	huge := 10000
	filter, err = ticketFilter(dto.TicketListQuery{Limit: &huge})
	require.NoError(t, err)
	assert.Equal(t, uint64(MaxTicketLimit), filter.Limit)
	assert.False(t, filter.NoLimit)

	zero := 0
	filter, err = ticketFilter(dto.TicketListQuery{Limit: &zero})
	require.NoError(t, err)
	assert.Equal(t, uint64(0), filter.Limit)
	assert.False(t, filter.NoLimit)
}

func TestTicketService_ReviewTicket(t *testing.T) {
	svc, repo := newTicketService(t)
	created := createTicket(t, svc, alice, "a1")
	svc.now = func() time.Time { return repo.Tickets[0].CreatedAt.Add(90 * time.Second) }

	for _, rating := range []int{0, 6} {
		_, err := svc.ReviewTicket(asUser(alice), created.ID, dto.ReviewTicketDTO{Rating: rating})
		assert.ErrorIs(t, err, apperrors.ErrInvalidRating)
	}

	reviewed, err := svc.ReviewTicket(asUser(alice), created.ID, dto.ReviewTicketDTO{Rating: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, reviewed.Rating.Int)
	require.True(t, reviewed.FirstResponseSeconds.Valid)
	assert.Equal(t, 90, reviewed.FirstResponseSeconds.Int)

	svc.now = func() time.Time { return repo.Tickets[0].CreatedAt.Add(time.Hour) }
	again, err := svc.ReviewTicket(asUser(alice), created.ID, dto.ReviewTicketDTO{Rating: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, again.Rating.Int)
	assert.Equal(t, 90, again.FirstResponseSeconds.Int)
}

func TestTicketService_ReviewNotOwned(t *testing.T) {
	svc, _ := newTicketService(t)
	created := createTicket(t, svc, alice, "a1")

	_, err := svc.ReviewTicket(asUser(bob), created.ID, dto.ReviewTicketDTO{Rating: 4})
	assert.ErrorIs(t, err, apperrors.ErrTicketNotFound)

	_, err = svc.ReviewTicket(asUser(alice), 999, dto.ReviewTicketDTO{Rating: 4})
	assert.ErrorIs(t, err, apperrors.ErrTicketNotFound)
}

func TestTicketService_ReviewClockSkew(t *testing.T) {
	svc, repo := newTicketService(t)
	created := createTicket(t, svc, alice, "a1")
	svc.now = func() time.Time { return repo.Tickets[0].CreatedAt.Add(-time.Minute) }

	reviewed, err := svc.ReviewTicket(asUser(alice), created.ID, dto.ReviewTicketDTO{Rating: 1})
	require.NoError(t, err)
	assert.Equal(t, 0, reviewed.FirstResponseSeconds.Int)
}
