package api

// PredicateOperator is the comparison applied by one filter.
type PredicateOperator int32

const (
	Equals PredicateOperator = iota
	NotEquals
	In
	NotIn
	Between
	IsNull
	IsNotNull
	ILike
	Like
	Greater
	GreaterOrEqual
	Less
	LessOrEqual
	GeoIntersect
	GeoWithin
	GeoDisjoint
)

var predicateNames = map[PredicateOperator]string{
	Equals:         "EQUALS",
	NotEquals:      "NOT_EQUALS",
	In:             "IN",
	NotIn:          "NOT_IN",
	Between:        "BETWEEN",
	IsNull:         "IS_NULL",
	IsNotNull:      "IS_NOT_NULL",
	ILike:          "ILIKE",
	Like:           "LIKE",
	Greater:        "GREATER",
	GreaterOrEqual: "GREATER_OR_EQUAL",
	Less:           "LESS",
	LessOrEqual:    "LESS_OR_EQUAL",
	GeoIntersect:   "GEO_INTERSECT",
	GeoWithin:      "GEO_WITHIN",
	GeoDisjoint:    "GEO_DISJOINT",
}

func (p PredicateOperator) String() string {
	if name, ok := predicateNames[p]; ok {
		return name
	}
	return "UNKNOWN"
}

// ComparisonOperator joins a filter to the ones before it.
type ComparisonOperator int32

const (
	And ComparisonOperator = iota
	Or
)

type SortOrder int32

const (
	Ascending SortOrder = iota
	Descending
)

type FilterOption struct {
	SearchField        string              `json:"search_field"`
	SearchValue        []string            `json:"search_value"`
	PredicateOperator  PredicateOperator   `json:"predicate_operator"`
	ComparisonOperator *ComparisonOperator `json:"comparison_operator,omitempty"`
}

type SortOption struct {
	SortField string    `json:"sort_field"`
	SortOrder SortOrder `json:"sort_order"`
}

// AdvancedSearchFilter is a search request. PageNumber is 1-based; a zero ResultsPerPage
// selects the server default.
type AdvancedSearchFilter struct {
	Filters        []FilterOption `json:"filters"`
	PageNumber     int32          `json:"page_number"`
	ResultsPerPage int32          `json:"results_per_page"`
	OrderBy        []SortOption   `json:"order_by"`
}

func (f *AdvancedSearchFilter) add(op ComparisonOperator, field string, pred PredicateOperator, values ...string) *AdvancedSearchFilter {
	opt := FilterOption{SearchField: field, SearchValue: values, PredicateOperator: pred}
	if len(f.Filters) > 0 {
		opt.ComparisonOperator = &op
	}
	f.Filters = append(f.Filters, opt)
	return f
}

// NewSearch starts an empty filter that matches every row.
func NewSearch() *AdvancedSearchFilter {
	return &AdvancedSearchFilter{}
}

func (f *AdvancedSearchFilter) Where(field string, pred PredicateOperator, values ...string) *AdvancedSearchFilter {
	return f.add(And, field, pred, values...)
}

func (f *AdvancedSearchFilter) OrWhere(field string, pred PredicateOperator, values ...string) *AdvancedSearchFilter {
	return f.add(Or, field, pred, values...)
}

func (f *AdvancedSearchFilter) SearchEquals(field, value string) *AdvancedSearchFilter {
	return f.Where(field, Equals, value)
}

func (f *AdvancedSearchFilter) SearchIsNull(field string) *AdvancedSearchFilter {
	return f.Where(field, IsNull)
}

func (f *AdvancedSearchFilter) SearchBetween(field, from, to string) *AdvancedSearchFilter {
	return f.Where(field, Between, from, to)
}

func (f *AdvancedSearchFilter) Page(number, perPage int32) *AdvancedSearchFilter {
	f.PageNumber = number
	f.ResultsPerPage = perPage
	return f
}

func (f *AdvancedSearchFilter) Sort(field string, order SortOrder) *AdvancedSearchFilter {
	f.OrderBy = append(f.OrderBy, SortOption{SortField: field, SortOrder: order})
	return f
}
