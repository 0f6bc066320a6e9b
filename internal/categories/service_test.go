package categories

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tally-dev/tally/internal/categorize"
)

func TestDefaults_CoverBuiltInRules(t *testing.T) {
	defaults := make(map[string]bool)
	for _, name := range Defaults() {
		defaults[name] = true
	}

	for _, r := range categorize.DefaultRules() {
		assert.True(t, defaults[r.Category], "missing default category %q", r.Category)
	}
	assert.True(t, defaults[categorize.Uncategorized])
}

func TestService_SeedsEachUser(t *testing.T) {
	svc := NewService(Defaults()...)

	ctx := context.Background()

	income, err := svc.ResolveCategory(ctx, "u1", categorize.Income)
	require.NoError(t, err)
	assert.Equal(t, int64(1), income)

	pets, err := svc.ResolveCategory(ctx, "u2", "Pets")
	require.NoError(t, err)
	assert.Equal(t, int64(len(Defaults())+1), pets, "seeded names take the first IDs")
}

func TestService_ResolveCategory(t *testing.T) {
	svc := NewService("Groceries")
	ctx := context.Background()

	id, err := svc.ResolveCategory(ctx, "u1", "Groceries")
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	pets, err := svc.ResolveCategory(ctx, "u1", "Pets")
	require.NoError(t, err)
	assert.Equal(t, int64(2), pets)

	again, err := svc.ResolveCategory(ctx, "u1", "Pets")
	require.NoError(t, err)
	assert.Equal(t, pets, again)

	// Users are independent.
	other, err := svc.ResolveCategory(ctx, "u2", "Pets")
	require.NoError(t, err)
	assert.Equal(t, int64(2), other)
}

func TestService_Concurrent(t *testing.T) {
	svc := NewService()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, name := range []string{"A", "B", "C"} {
				_, err := svc.ResolveCategory(ctx, "u1", name)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	d, err := svc.ResolveCategory(ctx, "u1", "D")
	require.NoError(t, err)
	assert.Equal(t, int64(4), d)
}
