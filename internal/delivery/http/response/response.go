package response

import "github.com/user/catalog-scraper/internal/entity"

const (
	StatusSuccess = "SUCCESS"
	StatusFailed  = "FAILED"
)

// Envelope wraps every JSON body the API returns.
type Envelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// ItemSummary is a DTO for list entries.
type ItemSummary struct {
	ID      int64   `json:"id"`
	Title   string  `json:"title"`
	Year    int     `json:"year"`
	Rating  float64 `json:"rating"`
	Summary string  `json:"summary"`
}

// ItemDetail is a DTO for a single item, mirroring entity.Item
type ItemDetail struct {
	ID        int64    `json:"id"`
	Title     string   `json:"title"`
	Year      int      `json:"year"`
	Rating    float64  `json:"rating"`
	Summary   string   `json:"summary"`
	Directors []string `json:"directors"`
	Cast      []string `json:"cast"`
	Tags      []string `json:"tags"`
}

func NewItemSummaries(items []*entity.Item) []ItemSummary {
	out := make([]ItemSummary, 0, len(items))
	for _, it := range items {
		out = append(out, ItemSummary{
			ID:      it.ID,
			Title:   it.Title,
			Year:    it.Year,
			Rating:  it.Rating,
			Summary: it.Summary,
		})
	}
	return out
}

func NewItemDetail(it *entity.Item) ItemDetail {
	return ItemDetail{
		ID:        it.ID,
		Title:     it.Title,
		Year:      it.Year,
		Rating:    it.Rating,
		Summary:   it.Summary,
		Directors: orEmpty(it.Directors),
		Cast:      orEmpty(it.Cast),
		Tags:      orEmpty(it.Tags),
	}
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
