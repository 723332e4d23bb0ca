// internal/workers/data-access/search-scholarships/models.go
package searchscholarships

type Input struct {
	IndexName  string                 `json:"indexName,omitempty"`
	Keywords   string                 `json:"keywords,omitempty"`
	Filters    map[string]interface{} `json:"filters,omitempty"`
	Pagination Pagination             `json:"pagination"`
}

type Pagination struct {
	From int `json:"from"`
	Size int `json:"size"`
}

type Output struct {
	Data      []map[string]interface{} `json:"data"`
	TotalHits int64                    `json:"totalHits"`
	MaxScore  float64                  `json:"maxScore"`
	Took      int64                    `json:"took"` // milliseconds
}
