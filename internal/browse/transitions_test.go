package browse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func pagedContext() Context {
	c := DefaultContext()
	c.Mode = ModePopular
	c.Page = 3
	c.TotalPages = 5
	return c
}

var pageResetting = []Transition{
	SetKind(KindTV),
	SetMode(ModeTopRated),
	SetWindow(WindowWeek),
	SelectGenre(28, "Action"),
	SelectProvider(8, "Netflix"),
	SubmitSearch("alien"),
	SetYear(2001),
	SetCountry("fr"),
	SetSortKey("vote_average.desc"),
	ResetFilters(),
}

func TestChangesResetPage(t *testing.T) {
	for _, first := range pageResetting {
		for _, second := range pageResetting {
			c := pagedContext().Apply(first)
			c.Page, c.TotalPages = 4, 9
			c = c.Apply(second)
			assert.Equal(t, 1, c.Page, "%s then %s", first, second)
		}
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	c := pagedContext()
	before := c
	for _, tr := range pageResetting {
		_ = c.Apply(tr)
	}
	assert.Equal(t, before, c)
}

func TestSetKindStartsOver(t *testing.T) {
	c := pagedContext().Apply(SelectGenre(28, "Action")).Apply(SetWindow(WindowWeek)).Apply(SelectProvider(8, "Netflix"))
	c = c.Apply(SetKind(KindAnimation))

	assert.Equal(t, KindAnimation, c.Kind)
	assert.Equal(t, ModeTrending, c.Mode)
	assert.Equal(t, WindowDay, c.Window)
	assert.Zero(t, c.GenreID)
	assert.Zero(t, c.ProviderID)
	assert.Empty(t, c.ProviderName)
}

func TestPagingBounds(t *testing.T) {
	c := DefaultContext()
	assert.Equal(t, c, c.Apply(PrevPage()), "prev at first page")
	assert.Equal(t, c, c.Apply(NextPage()), "next at last page")

	c.TotalPages = 2
	c = c.Apply(NextPage())
	assert.Equal(t, 2, c.Page)
	assert.Equal(t, c, c.Apply(NextPage()))
	assert.Equal(t, 1, c.Apply(PrevPage()).Page)
}

func TestRefusedTransitions(t *testing.T) {
	c := pagedContext()
	refused := []Transition{
		SubmitSearch(""),
		SubmitSearch("   \t"),
		SelectGenre(0, "None"),
		SelectGenre(-4, "Negative"),
		SelectProvider(0, ""),
		SetKind("music"),
		SetMode(ModeByGenre),
		SetMode("favourites"),
		SetWindow("month"),
		SetYear(-1),
		{},
	}
	for _, tr := range refused {
		assert.Equal(t, c, c.Apply(tr), "%s", tr)
	}
}

func TestSubmitSearchTrims(t *testing.T) {
	c := DefaultContext().Apply(SubmitSearch("  blade runner "))
	assert.Equal(t, ModeSearch, c.Mode)
	assert.Equal(t, "blade runner", c.SearchText)
}

func TestResetFiltersRestoresDefaults(t *testing.T) {
	c := DefaultContext().
		Apply(SetYear(1984)).
		Apply(SetCountry("jp")).
		Apply(SetSortKey("vote_count.desc")).
		Apply(SelectProvider(337, "Disney Plus"))
	assert.Equal(t, "JP", c.Filters.Country)

	c = c.Apply(ResetFilters())

	assert.Equal(t, Filters{SortKey: DefaultSortKey}, c.Filters)
	assert.Zero(t, c.ProviderID)
	assert.Equal(t, ModePopular, c.Mode)
}

func TestResetFiltersKeepsOtherModes(t *testing.T) {
	c := DefaultContext().Apply(SelectGenre(35, "Comedy")).Apply(SetYear(2000))
	c = c.Apply(ResetFilters())
	assert.Equal(t, ModeByGenre, c.Mode)
	assert.Equal(t, int64(35), c.GenreID)
}

func TestSetSortKeyBlankRestoresDefault(t *testing.T) {
	c := DefaultContext().Apply(SetSortKey("revenue.desc")).Apply(SetSortKey(" "))
	assert.Equal(t, DefaultSortKey, c.Filters.SortKey)
}

func TestTitles(t *testing.T) {
	cases := map[string]Context{
		"Trending Today":              DefaultContext(),
		"Trending TV Shows This Week": DefaultContext().Apply(SetKind(KindTV)).Apply(SetWindow(WindowWeek)),
		"Popular Animations":          DefaultContext().Apply(SetKind(KindAnimation)).Apply(SetMode(ModePopular)),
		"Coming Soon":                 DefaultContext().Apply(SetMode(ModeUpcoming)),
		"Airing Today":                DefaultContext().Apply(SetKind(KindTV)).Apply(SetMode(ModeUpcoming)),
		"Action Movies":               DefaultContext().Apply(SelectGenre(28, "Action")),
		"Netflix TV Shows":            DefaultContext().Apply(SetKind(KindTV)).Apply(SelectProvider(8, "Netflix")),
		`TV Search Results: "dark"`:   DefaultContext().Apply(SetKind(KindTV)).Apply(SubmitSearch("dark")),
		`Search Results: "alien"`:     DefaultContext().Apply(SubmitSearch("alien")),
		"Top Rated":                   DefaultContext().Apply(SetMode(ModeTopRated)),
		"Top Rated TV Shows":          DefaultContext().Apply(SetKind(KindTV)).Apply(SetMode(ModeTopRated)),
		"Trending Animation Today":    DefaultContext().Apply(SetKind(KindAnimation)),
	}
	for want, c := range cases {
		assert.Equal(t, want, c.Title())
	}
}
