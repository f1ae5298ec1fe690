package linkify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lukemcguire/linktitle/markdown"
	"github.com/lukemcguire/linktitle/result"
)

type fakeResolver struct {
	resolutions map[string]result.Resolution
	calls       [][]string
}

func (f *fakeResolver) ResolveBatch(_ context.Context, links []string) *result.Result {
	f.calls = append(f.calls, links)
	res := &result.Result{}
	seen := make(map[string]bool)
	for _, link := range links {
		if seen[link] {
			continue
		}
		seen[link] = true
		if r, ok := f.resolutions[link]; ok {
			res.Resolutions = append(res.Resolutions, r)
		}
	}
	return res
}

func TestConvert(t *testing.T) {
	source := "Read https://a.example, see https://old.example and https://a.example again.\n"
	doc := markdown.Parse([]byte(source))

	fake := &fakeResolver{resolutions: map[string]result.Resolution{
		"https://a.example": {
			Link: "https://a.example", URL: "https://a.example",
			Title: "Alpha [1] (a.example)", Resolved: true,
		},
		"https://old.example": {
			Link: "https://old.example", URL: "https://new.example",
			Title: "old.example", Kind: result.KindHTTP, StatusCode: 404,
		},
	}}

	res, err := Convert(context.Background(), doc, fake)
	require.NoError(t, err)
	require.NotNil(t, res)
	require.Len(t, fake.calls, 1, "all links resolve in a single batch")

	out, err := doc.Bytes()
	require.NoError(t, err)
	assert.Equal(t,
		"Read [Alpha \\[1\\] (a.example)](https://a.example), see [old.example](https://new.example) and [Alpha \\[1\\] (a.example)](https://a.example) again.\n",
		string(out))
}

func TestConvert_MissingResolutionStillRendered(t *testing.T) {
	doc := markdown.Parse([]byte("go to https://lost.example\n"))

	_, err := Convert(context.Background(), doc, &fakeResolver{})
	require.NoError(t, err)

	out, err := doc.Bytes()
	require.NoError(t, err)
	assert.Equal(t, "go to [https://lost.example](https://lost.example)\n", string(out))
}

func TestConvert_NoLinks(t *testing.T) {
	doc := markdown.Parse([]byte("nothing to see\n"))
	fake := &fakeResolver{}

	res, err := Convert(context.Background(), doc, fake)
	require.NoError(t, err)
	assert.Empty(t, res.Resolutions)
	assert.Empty(t, fake.calls)
}

type brokenSource struct{}

func (brokenSource) SelectedLinkRegions() []markdown.Region {
	return []markdown.Region{{Start: 0, End: 5, Link: "https://a.example", Text: "https"}}
}

func (brokenSource) ReplaceRegion(markdown.Region, string) error {
	return markdown.ErrRegionMismatch
}

func TestConvert_ReplaceError(t *testing.T) {
	_, err := Convert(context.Background(), brokenSource{}, &fakeResolver{})
	assert.ErrorIs(t, err, markdown.ErrRegionMismatch)
}
