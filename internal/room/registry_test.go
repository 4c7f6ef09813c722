package room

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnychainX/Live-Commerce-Chat/internal/domain"
)

func TestRegistry_CreateAndGet(t *testing.T) {
	reg := NewRegistry(newFakeClock(), Limits{})

	st, hostKey := reg.Create(CreateSpec{
		Name:         "gadget drop",
		Product:      domain.Product{Name: "earbuds", Description: "wireless", PurchaseLink: "https://shop.example/earbuds"},
		StreamURL:    "rtmp://stream.example/live",
		HostClientID: "creator",
	})

	require.NotEmpty(t, st.ID())
	require.NotEmpty(t, hostKey)

	got, err := reg.Get(st.ID())
	require.NoError(t, err)
	assert.Same(t, st, got)

	room := got.Snapshot()
	assert.Equal(t, "gadget drop", room.Name)
	assert.Equal(t, "earbuds", room.Product.Name)
	assert.Equal(t, "creator", room.HostClientID)
	assert.Equal(t, 0, room.ViewerCount)
}

func TestRegistry_GetUnknown(t *testing.T) {
	reg := NewRegistry(newFakeClock(), Limits{})

	_, err := reg.Get("no-such-room")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestRegistry_List(t *testing.T) {
	reg := NewRegistry(newFakeClock(), Limits{})

	assert.Empty(t, reg.List())

	a, _ := reg.Create(CreateSpec{Name: "room a"})
	b, _ := reg.Create(CreateSpec{Name: "room b"})

	rooms := reg.List()
	require.Len(t, rooms, 2)

	ids := map[string]bool{}
	for _, r := range rooms {
		ids[r.ID] = true
	}
	assert.True(t, ids[a.ID()])
	assert.True(t, ids[b.ID()])
}

func TestRegistry_IndependentInstances(t *testing.T) {
	regA := NewRegistry(newFakeClock(), Limits{})
	regB := NewRegistry(newFakeClock(), Limits{})

	st, _ := regA.Create(CreateSpec{Name: "only in a"})

	_, err := regB.Get(st.ID())
	assert.ErrorIs(t, err, ErrRoomNotFound)
	assert.Empty(t, regB.List())
}

func TestRegistry_HostKeysDiffer(t *testing.T) {
	reg := NewRegistry(newFakeClock(), Limits{})

	_, keyA := reg.Create(CreateSpec{Name: "a"})
	_, keyB := reg.Create(CreateSpec{Name: "b"})

	assert.NotEqual(t, keyA, keyB)
}
