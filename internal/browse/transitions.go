package browse

import "strings"

// Transition is one named user intent. Apply it with Context.Apply or
// Controller.Dispatch.
type Transition struct {
	name  string
	apply func(Context) Context
	// force fetches even when the derived request is unchanged.
	force bool
}

func (t Transition) String() string { return t.name }

// Apply returns the state after t. A refused transition returns c unchanged.
func (c Context) Apply(t Transition) Context {
	if t.apply == nil {
		return c
	}
	return t.apply(c)
}

// firstPage resets paging. TotalPages is unknown until the new collection
// arrives, so it drops back to 1 and paging forward waits for the response.
func firstPage(c Context) Context {
	c.Page = 1
	c.TotalPages = 1
	return c
}

func clearSelection(c Context) Context {
	c.GenreID, c.GenreName = 0, ""
	c.ProviderID, c.ProviderName = 0, ""
	c.SearchText = ""
	return c
}

// SetKind switches section and starts over on today's trending titles.
// Filters are kept.
func SetKind(k Kind) Transition {
	return Transition{name: "setKind", apply: func(c Context) Context {
		if !k.valid() {
			return c
		}
		c = clearSelection(c)
		c.Kind = k
		c.Mode = ModeTrending
		c.Window = WindowDay
		return firstPage(c)
	}}
}

// SetMode selects a collection that needs no argument. byGenre, byProvider
// and search are entered through SelectGenre, SelectProvider and SubmitSearch.
func SetMode(m Mode) Transition {
	return Transition{name: "setMode", apply: func(c Context) Context {
		switch m {
		case ModeTrending, ModeNowPlaying, ModePopular, ModeTopRated, ModeUpcoming:
		default:
			return c
		}
		c = clearSelection(c)
		c.Mode = m
		return firstPage(c)
	}}
}

// SetWindow shows trending titles for w.
func SetWindow(w Window) Transition {
	return Transition{name: "setWindow", apply: func(c Context) Context {
		if w != WindowDay && w != WindowWeek {
			return c
		}
		c = clearSelection(c)
		c.Mode = ModeTrending
		c.Window = w
		return firstPage(c)
	}}
}

func SelectGenre(id int64, name string) Transition {
	return Transition{name: "selectGenre", apply: func(c Context) Context {
		if id <= 0 {
			return c
		}
		c = clearSelection(c)
		c.Mode = ModeByGenre
		c.GenreID = id
		c.GenreName = strings.TrimSpace(name)
		return firstPage(c)
	}}
}

func SelectProvider(id int64, name string) Transition {
	return Transition{name: "selectProvider", apply: func(c Context) Context {
		if id <= 0 {
			return c
		}
		c = clearSelection(c)
		c.Mode = ModeByProvider
		c.ProviderID = id
		c.ProviderName = strings.TrimSpace(name)
		return firstPage(c)
	}}
}

// SubmitSearch is refused for blank text; the current collection stays.
func SubmitSearch(text string) Transition {
	return Transition{name: "submitSearch", apply: func(c Context) Context {
		text := strings.TrimSpace(text)
		if text == "" {
			return c
		}
		c = clearSelection(c)
		c.Mode = ModeSearch
		c.SearchText = text
		return firstPage(c)
	}}
}

func NextPage() Transition {
	return Transition{name: "nextPage", apply: func(c Context) Context {
		if c.Page < c.TotalPages {
			c.Page++
		}
		return c
	}}
}

func PrevPage() Transition {
	return Transition{name: "prevPage", apply: func(c Context) Context {
		if c.Page > 1 {
			c.Page--
		}
		return c
	}}
}

// SetYear filters by release (or first air) year. 0 clears the filter.
func SetYear(year int) Transition {
	return Transition{name: "setYear", apply: func(c Context) Context {
		if year < 0 {
			return c
		}
		c.Filters.Year = year
		return firstPage(c)
	}}
}

// SetCountry filters by ISO 3166-1 region. "" clears the filter.
func SetCountry(code string) Transition {
	return Transition{name: "setCountry", apply: func(c Context) Context {
		c.Filters.Country = strings.ToUpper(strings.TrimSpace(code))
		return firstPage(c)
	}}
}

// SetSortKey changes the discover order. "" restores the default.
func SetSortKey(key string) Transition {
	return Transition{name: "setSortKey", apply: func(c Context) Context {
		sortKey := strings.TrimSpace(key)
		if sortKey == "" {
			sortKey = DefaultSortKey
		}
		c.Filters.SortKey = sortKey
		return firstPage(c)
	}}
}

// ResetFilters clears year, country and provider and restores the default
// order. A provider collection falls back to popular titles.
func ResetFilters() Transition {
	return Transition{name: "resetFilters", apply: func(c Context) Context {
		c.Filters = Filters{SortKey: DefaultSortKey}
		c.ProviderID, c.ProviderName = 0, ""
		if c.Mode == ModeByProvider {
			c.Mode = ModePopular
		}
		return firstPage(c)
	}}
}

// Refresh refetches the current collection without changing state.
func Refresh() Transition {
	return Transition{name: "refresh", apply: func(c Context) Context { return c }, force: true}
}
