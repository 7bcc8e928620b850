package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticket-desk/internal/entities"
)

func TestNewTicketResponse_Projection(t *testing.T) {
	rating := 4
	ticket := &entities.Ticket{
		ID: 7, Title: "t", Description: "d", Category: "General Inquiry", Priority: "Low",
		Status: entities.TicketStatusNew, CreatedAt: time.Now(), Rating: &rating,
		OwnerID: 3, OwnerName: "Ada Lovelace",
	}

	userView, err := json.Marshal(NewTicketResponse(ticket, false))
	require.NoError(t, err)
	var plain map[string]interface{}
	require.NoError(t, json.Unmarshal(userView, &plain))
	_, hasOwner := plain["owner_name"]
	assert.False(t, hasOwner)
	assert.Equal(t, float64(4), plain["rating"])
	assert.Nil(t, plain["first_response_seconds"])
	assert.Equal(t, map[string]interface{}{}, plain["extracted_entities"])

	adminView := NewTicketResponse(ticket, true)
	require.NotNil(t, adminView.OwnerName)
	assert.Equal(t, "Ada Lovelace", *adminView.OwnerName)
}

func TestNewUserResponse_HidesPassword(t *testing.T) {
	out, err := json.Marshal(NewUserResponse(&entities.User{ID: 1, Email: "a@b.com", HashedPassword: "secret", IsAdmin: 1}))
	require.NoError(t, err)
	assert.NotContains(t, string(out), "secret")
	assert.Contains(t, string(out), `"is_admin":1`)
}
