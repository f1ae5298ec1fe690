package resolver

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStore_ConcurrentWrites(t *testing.T) {
	store := NewStore()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			link := fmt.Sprintf("https://example.com/%d", i%10)
			store.SetTitle(link, fmt.Sprintf("title %d", i))
			store.SetRedirect(link, link+"/final")
			_, _ = store.Title(link)
		}(i)
	}
	wg.Wait()

	assert.Len(t, store.Titles(), 10)
	assert.Len(t, store.Redirects(), 10)
}

func TestStore_CopiesAreIndependent(t *testing.T) {
	store := NewStore()
	store.SetTitle("a", "A")

	titles := store.Titles()
	titles["a"] = "changed"
	titles["b"] = "B"

	got, ok := store.Title("a")
	assert.True(t, ok)
	assert.Equal(t, "A", got)
	_, ok = store.Title("b")
	assert.False(t, ok)
}

func TestStore_LastWriteWins(t *testing.T) {
	store := NewStore()
	store.SetTitle("a", "first")
	store.SetTitle("a", "second")

	got, _ := store.Title("a")
	assert.Equal(t, "second", got)
}
