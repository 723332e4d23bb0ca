// internal/workers/data-access/search-scholarships/queries/builders.go
package queries

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/elastic/go-elasticsearch/v8/esapi"
)

var ErrMissingIndex = errors.New("index name is required")

// ScholarshipSearch describes a catalog search request.
type ScholarshipSearch struct {
	Index      string
	Keywords   string
	Filters    map[string]interface{}
	Pagination struct {
		From int
		Size int
	}
}

// BuildQuery assembles the search request body. Only active scholarships
// are ever returned regardless of the supplied filters.
func BuildQuery(ss ScholarshipSearch) (*esapi.SearchRequest, error) {
	if ss.Index == "" {
		return nil, ErrMissingIndex
	}

	body, _ := json.Marshal(BuildQueryBody(ss))

	req := esapi.SearchRequest{
		Index: []string{ss.Index},
		Body:  strings.NewReader(string(body)),
		From:  &ss.Pagination.From,
		Size:  &ss.Pagination.Size,
	}

	return &req, nil
}

func BuildQueryBody(ss ScholarshipSearch) map[string]interface{} {
	mustClauses := []interface{}{}
	filterClauses := []interface{}{
		map[string]interface{}{
			"term": map[string]interface{}{"is_active": true},
		},
	}

	if ss.Keywords != "" {
		mustClauses = append(mustClauses, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  ss.Keywords,
				"fields": []string{"title^3", "description^2", "provider"},
				"type":   "best_fields",
			},
		})
	}

	if provider, ok := ss.Filters["provider"].(string); ok && provider != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"provider": provider},
		})
	}

	if education, ok := ss.Filters["educationLevel"].(string); ok && education != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"education_levels": education},
		})
	}

	if field, ok := ss.Filters["fieldOfStudy"].(string); ok && field != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"fields_of_study": field},
		})
	}

	if category, ok := ss.Filters["category"].(string); ok && category != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"categories": category},
		})
	}

	if amountRange, ok := ss.Filters["amountRange"].(map[string]interface{}); ok {
		rangeBody := map[string]interface{}{}
		if min, ok := toFloat(amountRange["min"]); ok && min > 0 {
			rangeBody["gte"] = min
		}
		if max, ok := toFloat(amountRange["max"]); ok && max > 0 {
			rangeBody["lte"] = max
		}
		if len(rangeBody) > 0 {
			filterClauses = append(filterClauses, map[string]interface{}{
				"range": map[string]interface{}{"amount": rangeBody},
			})
		}
	}

	if deadlineAfter, ok := ss.Filters["deadlineAfter"].(string); ok && deadlineAfter != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"range": map[string]interface{}{
				"application_deadline": map[string]interface{}{"gte": deadlineAfter},
			},
		})
	}

	if len(mustClauses) == 0 {
		mustClauses = append(mustClauses, map[string]interface{}{"match_all": map[string]interface{}{}})
	}

	query := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must":   mustClauses,
				"filter": filterClauses,
			},
		},
	}

	if sortBy, ok := ss.Filters["sortBy"].(string); ok {
		switch sortBy {
		case "amount":
			query["sort"] = []map[string]interface{}{{"amount": "desc"}}
		case "deadline":
			query["sort"] = []map[string]interface{}{{"application_deadline": "asc"}}
		}
	}

	return query
}

// clampPagination bounds page parameters to 0 <= from, 1 <= size <= 100.
func clampPagination(ss *ScholarshipSearch) {
	if ss.Pagination.From < 0 {
		ss.Pagination.From = 0
	}
	if ss.Pagination.Size < 1 {
		ss.Pagination.Size = 20
	}
	if ss.Pagination.Size > 100 {
		ss.Pagination.Size = 100
	}
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
