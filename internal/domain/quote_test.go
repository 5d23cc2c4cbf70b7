package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewQuote(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		category  string
		wantField string
		want      Quote
	}{
		{
			name:     "trims content",
			text:     "  Stay hungry.  ",
			category: " Motivation\t",
			want:     Quote{ID: "loc-1", Text: "Stay hungry.", Category: "Motivation"},
		},
		{
			name:      "empty text",
			text:      "   ",
			category:  "Motivation",
			wantField: "text",
		},
		{
			name:      "empty category",
			text:      "Stay hungry.",
			category:  "",
			wantField: "category",
		},
		{
			name:      "reserved category",
			text:      "Stay hungry.",
			category:  "all",
			wantField: "category",
		},
		{
			name:      "reserved category in another case",
			text:      "Stay hungry.",
			category:  " All ",
			wantField: "category",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := NewQuote("loc-1", tt.text, tt.category)

			if tt.wantField != "" {
				require.Error(t, err)
				assert.True(t, IsValidation(err))

				var validationErr *ValidationError
				require.ErrorAs(t, err, &validationErr)
				assert.Equal(t, tt.wantField, validationErr.Field)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, q)
			assert.False(t, q.Synced())
		})
	}
}

func TestFilterByCategory_SelectsMatchingInOrder(t *testing.T) {
	quotes := []Quote{
		{ID: "loc-1", Text: "first", Category: "Motivation"},
		{ID: "loc-2", Text: "second", Category: "Life"},
		{ID: "loc-3", Text: "third", Category: "Motivation"},
	}

	filtered := FilterByCategory(quotes, "Motivation")

	require.Len(t, filtered, 2)
	assert.Equal(t, "loc-1", filtered[0].ID)
	assert.Equal(t, "loc-3", filtered[1].ID)
}

func TestFilterByCategory_AllReturnsEverything(t *testing.T) {
	quotes := []Quote{
		{ID: "loc-1", Text: "first", Category: "Motivation"},
		{ID: "loc-2", Text: "second", Category: "Life"},
	}

	assert.Equal(t, quotes, FilterByCategory(quotes, CategoryAll))
	assert.Equal(t, quotes, FilterByCategory(quotes, ""))
	assert.Equal(t, quotes, FilterByCategory(quotes, "ALL"))
}

func TestIsAllCategories(t *testing.T) {
	for category, want := range map[string]bool{
		"":           true,
		"all":        true,
		"All":        true,
		"ALL":        true,
		"Allegories": false,
		"Life":       false,
	} {
		assert.Equal(t, want, IsAllCategories(category), "%q", category)
	}
}

func TestValidateCategory(t *testing.T) {
	require.NoError(t, ValidateCategory("Life"))
	assert.True(t, IsValidation(ValidateCategory("  ")))
	assert.True(t, IsValidation(ValidateCategory("aLL")))
}

func TestFilterByCategory_DoesNotAliasInput(t *testing.T) {
	quotes := []Quote{{ID: "loc-1", Text: "first", Category: "Motivation"}}

	filtered := FilterByCategory(quotes, CategoryAll)
	filtered[0].Text = "changed"

	assert.Equal(t, "first", quotes[0].Text)
}

func TestFilterByCategory_UnknownCategoryIsEmpty(t *testing.T) {
	quotes := []Quote{{ID: "loc-1", Text: "first", Category: "Motivation"}}

	assert.Empty(t, FilterByCategory(quotes, "Humor"))
}

func TestCategories_FirstSeenOrder(t *testing.T) {
	quotes := []Quote{
		{Category: "Life"},
		{Category: "Motivation"},
		{Category: "Life"},
		{Category: "Humor"},
	}

	assert.Equal(t, []string{"Life", "Motivation", "Humor"}, Categories(quotes))
	assert.Empty(t, Categories(nil))
}

func TestHasCategory(t *testing.T) {
	quotes := []Quote{{Category: "Life"}}

	assert.True(t, HasCategory(quotes, "Life"))
	assert.False(t, HasCategory(quotes, "life"))
}

func TestQuote_SameContent(t *testing.T) {
	a := Quote{ID: "loc-1", Text: "A", Category: "X"}

	assert.True(t, a.SameContent(Quote{ID: "srv-1", ServerID: "srv-1", Text: "A", Category: "X"}))
	assert.False(t, a.SameContent(Quote{Text: "A", Category: "Y"}))
	assert.False(t, a.SameContent(Quote{Text: "B", Category: "X"}))
}

func TestLocalID(t *testing.T) {
	assert.Equal(t, "loc-7", LocalID(7))

	n, ok := LocalSequence("loc-12")
	assert.True(t, ok)
	assert.Equal(t, 12, n)

	for _, id := range []string{"srv-12", "loc-", "loc-x", "loc--1", ""} {
		_, ok := LocalSequence(id)
		assert.False(t, ok, id)
	}
}

func TestServerKey(t *testing.T) {
	assert.Equal(t, "srv-101", ServerKey("101"))
}

func TestMaxLocalSequence(t *testing.T) {
	quotes := []Quote{{ID: "loc-3"}, {ID: "srv-40"}, {ID: "loc-11"}, {ID: "loc-2"}}

	assert.Equal(t, 11, MaxLocalSequence(quotes))
	assert.Equal(t, 0, MaxLocalSequence(nil))
}
