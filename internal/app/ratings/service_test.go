package ratings_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/taborra-agent/internal/adapters/storage/memory"
	"github.com/PabloGalante/taborra-agent/internal/app/ratings"
	"github.com/PabloGalante/taborra-agent/internal/domain"
)

func TestSummary(t *testing.T) {
	ctx := context.Background()
	store := memory.NewRatingStore()
	for _, r := range []domain.Rating{
		{Rating: 5, DeviceType: "modelo_1555", ProblemType: "anular_zona"},
		{Rating: 3, DeviceType: "modelo_1555", ProblemType: "anular_zona"},
		{Rating: 1, DeviceType: "modelo_1555", ProblemType: "muestra_falla"},
		{Rating: 4, DeviceType: "modelo_5500", ProblemType: "emite_sonido"},
	} {
		r := r
		require.NoError(t, store.SaveRating(ctx, &r))
	}

	svc := ratings.NewService(store)

	all, err := svc.Summary(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 4, all.Total)
	assert.InDelta(t, 3.25, all.Average, 1e-9)
	assert.Equal(t, []ratings.Entry{
		{DeviceType: "modelo_1555", ProblemType: "anular_zona", Count: 2, Average: 4},
		{DeviceType: "modelo_1555", ProblemType: "muestra_falla", Count: 1, Average: 1},
		{DeviceType: "modelo_5500", ProblemType: "emite_sonido", Count: 1, Average: 4},
	}, all.Entries)

	one, err := svc.Summary(ctx, "modelo_5500")
	require.NoError(t, err)
	assert.Equal(t, 1, one.Total)
	require.Len(t, one.Entries, 1)

	empty, err := ratings.NewService(nil).Summary(ctx, "")
	require.NoError(t, err)
	assert.Zero(t, empty.Total)
	assert.Empty(t, empty.Entries)
}
