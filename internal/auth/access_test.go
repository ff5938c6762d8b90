package auth

import (
	"testing"

	"marketplace-order-service/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	const (
		buyerID  = int64(2)
		sellerID = int64(1)
	)

	tests := []struct {
		name       string
		principal  models.Principal
		want       Access
		canView    bool
		canMessage bool
	}{
		{
			name:       "buyer",
			principal:  models.Principal{UserID: buyerID, Role: models.RoleUser},
			want:       AccessBuyer,
			canView:    true,
			canMessage: true,
		},
		{
			name:       "seller",
			principal:  models.Principal{UserID: sellerID, Role: models.RoleUser},
			want:       AccessSeller,
			canView:    true,
			canMessage: true,
		},
		{
			name:       "admin",
			principal:  models.Principal{UserID: 9, Role: models.RoleAdmin},
			want:       AccessAdmin,
			canView:    true,
			canMessage: false,
		},
		{
			name:      "stranger",
			principal: models.Principal{UserID: 3, Role: models.RoleUser},
			want:      AccessNone,
		},
		{
			// Classified as a participant for views and transitions, but the
			// admin role still bars conversation writes.
			name:       "admin who is also the buyer counts as buyer",
			principal:  models.Principal{UserID: buyerID, Role: models.RoleAdmin},
			want:       AccessBuyer,
			canView:    true,
			canMessage: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.principal, buyerID, sellerID)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.canView, got.CanView())
			assert.Equal(t, tt.canMessage, CanMessage(tt.principal, buyerID, sellerID))
		})
	}
}
