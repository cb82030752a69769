package marketplace

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPaidOrder(t *testing.T) *Order {
	t.Helper()
	tenantID := uuid.New()
	listing := newActiveListing(t, tenantID)
	order, err := NewOrder(tenantID, uuid.New(), listing, PayWithCredits)
	require.NoError(t, err)
	require.NoError(t, order.MarkPaid())
	return order
}

func TestNewDispute(t *testing.T) {
	order := newPaidOrder(t)

	d, err := NewDispute(order, order.BuyerID, "prompt does not match the preview")
	require.NoError(t, err)
	assert.Equal(t, DisputeOpen, d.Status)
	assert.Equal(t, OpenedByBuyer, d.Opener)
	assert.True(t, d.IsOpen())

	d2, err := NewDispute(order, order.SellerID, "buyer abuse")
	require.NoError(t, err)
	assert.Equal(t, OpenedBySeller, d2.Opener)

	// a third party cannot open a dispute
	_, err = NewDispute(order, uuid.New(), "reason")
	assert.Error(t, err)

	_, err = NewDispute(order, order.BuyerID, "  ")
	assert.Error(t, err)
}

func TestNewDisputePendingOrder(t *testing.T) {
	tenantID := uuid.New()
	listing := newActiveListing(t, tenantID)
	order, err := NewOrder(tenantID, uuid.New(), listing, PayWithCredits)
	require.NoError(t, err)

	_, err = NewDispute(order, order.BuyerID, "reason")
	assert.Error(t, err)
}

func TestDisputeResolve(t *testing.T) {
	order := newPaidOrder(t)
	d, err := NewDispute(order, order.BuyerID, "not as described")
	require.NoError(t, err)

	// must be picked up first
	assert.Error(t, d.Resolve("done", true))

	admin := uuid.New()
	require.NoError(t, d.PickUp(admin))
	assert.Equal(t, DisputeInProgress, d.Status)
	require.NotNil(t, d.AssigneeID)
	assert.Error(t, d.PickUp(admin)) // already in progress

	assert.Error(t, d.Resolve("  ", true))

	require.NoError(t, d.Resolve("refund granted", true))
	assert.Equal(t, DisputeResolved, d.Status)
	assert.True(t, d.RefundIssued)
	assert.False(t, d.IsOpen())

	events := d.GetDomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, EventDisputeResolved, events[0].EventType())

	assert.Error(t, d.Close("done"))
}

func TestDisputeClose(t *testing.T) {
	order := newPaidOrder(t)
	d, err := NewDispute(order, order.BuyerID, "not as described")
	require.NoError(t, err)

	// open disputes may be closed without pick-up
	require.NoError(t, d.Close("withdrawn by buyer"))
	assert.Equal(t, DisputeClosed, d.Status)
	assert.Error(t, d.PickUp(uuid.New()))
	assert.Error(t, d.Resolve("x", false))
}
