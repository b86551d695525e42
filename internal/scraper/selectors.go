package scraper

// Selectors locates page elements. The defaults track the current catalog markup and
// are expected to drift; callers may override any of them.
type Selectors struct {
	// Browser locators, evaluated with chromedp.BySearch (CSS or XPath).
	SeeMoreButton   string
	ExpandKeywords  string
	SeeMoreKeywords string

	// Listing entry markup.
	ListingItem   string
	ItemTitle     string
	ItemYear      string
	ItemRating    string
	ItemSummary   string
	ItemDetailURL string

	// Detail page markup.
	DetailGenres string
	KeywordItem  string

	// Taxonomy accordions.
	GenreSection   string
	KeywordSection string
	ChipName       string
	ChipCount      string
}

// DefaultSelectors returns the locators for the catalog's feature-film search page.
func DefaultSelectors() Selectors {
	return Selectors{
		SeeMoreButton:   `//span[contains(@class, 'single-page-see-more-button')]/button`,
		ExpandKeywords:  `//*[@id="keywordsAccordion"]/div[1]/label/span[2]`,
		SeeMoreKeywords: `//div[@id="accordion-item-keywordsAccordion"]//button[contains(., 'more')]`,

		ListingItem:   "li.ipc-metadata-list-summary-item",
		ItemTitle:     "h3.ipc-title__text",
		ItemYear:      "span.dli-title-metadata-item",
		ItemRating:    "span.ipc-rating-star--rating",
		ItemSummary:   "div.ipc-html-content-inner-div",
		ItemDetailURL: "a.ipc-lockup-overlay",

		DetailGenres: `div[data-testid="interests"] a`,
		KeywordItem:  `li[data-testid="list-summary-item"]`,

		GenreSection:   "div#accordion-item-genreAccordion",
		KeywordSection: "div#accordion-item-keywordsAccordion",
		ChipName:       "span.ipc-chip__text",
		ChipCount:      "span.ipc-chip__count",
	}
}
