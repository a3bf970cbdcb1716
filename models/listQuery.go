package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

const defaultListLimit = 10

// ListQuery carries the react-admin style list parameters the admin
// frontend sends as JSON-encoded query strings:
//
//	filter={"member_id":7}  sort=["id","DESC"]  range=[0,25]
//
// Range is [offset, limit].
type ListQuery struct {
	Filter map[string]interface{}
	Sort   []string
	Range  []int
}

var ErrBadListQuery = errors.New("error decoding filter, sort or range parameters")

func ParseListQuery(filterStr, sortStr, rangeStr string) (ListQuery, error) {
	var q ListQuery
	if filterStr != "" {
		if err := json.Unmarshal([]byte(filterStr), &q.Filter); err != nil {
			return q, ErrBadListQuery
		}
	}
	if sortStr != "" {
		if err := json.Unmarshal([]byte(sortStr), &q.Sort); err != nil {
			return q, ErrBadListQuery
		}
	}
	if rangeStr != "" {
		if err := json.Unmarshal([]byte(rangeStr), &q.Range); err != nil {
			return q, ErrBadListQuery
		}
	}
	return q, nil
}

// Apply builds the filtered, ordered, paginated query. Field names are
// checked against the caller's column allowlist so request input never
// reaches SQL unvalidated.
func (q ListQuery) Apply(db *gorm.DB, columns map[string]bool) (*gorm.DB, error) {
	for field, value := range q.Filter {
		if field != "id" && !columns[field] {
			return nil, fmt.Errorf("cannot filter on %q", field)
		}
		switch v := value.(type) {
		case []interface{}:
			db = db.Where(fmt.Sprintf("%s IN ?", field), v)
		default:
			db = db.Where(fmt.Sprintf("%s = ?", field), v)
		}
	}

	if len(q.Sort) == 2 {
		field := q.Sort[0]
		if field != "id" && !columns[field] {
			return nil, fmt.Errorf("cannot sort on %q", field)
		}
		order := strings.ToUpper(q.Sort[1])
		if order != "ASC" && order != "DESC" {
			return nil, fmt.Errorf("invalid sort order %q", q.Sort[1])
		}
		db = db.Order(field + " " + order)
	} else {
		db = db.Order("id")
	}

	if len(q.Range) == 2 && q.Range[0] >= 0 && q.Range[1] > 0 {
		db = db.Offset(q.Range[0]).Limit(q.Range[1])
	} else {
		db = db.Offset(0).Limit(defaultListLimit)
	}

	return db, nil
}
