package authstate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/heatloop/go-authstate"
)

func TestDefaultSubscription(t *testing.T) {
	sub := authstate.DefaultSubscription()

	assert.Equal(t, authstate.SubscriptionTrial, sub.Status)
	assert.Equal(t, authstate.PlanFree, sub.Plan)
	assert.Nil(t, sub.ExpiresAt)
}
