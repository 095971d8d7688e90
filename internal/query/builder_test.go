package query_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acgeoffrey/budget-tracker-api/internal/query"
	"github.com/acgeoffrey/budget-tracker-api/internal/utils"
)

func testResource() *query.Resource {
	return &query.Resource{
		Table: "records",
		Filterable: map[string]bool{
			"title":    true,
			"amount":   true,
			"category": true,
			"date":     true,
		},
		Sortable: map[string]bool{
			"title":  true,
			"amount": true,
			"date":   true,
		},
		Selectable:  []string{"record_id", "title", "amount", "category", "date", "user_id"},
		SearchField: "title",
		DefaultSort: []query.SortField{{Field: "date", Desc: true}},
		OwnerColumn: "user_id",
	}
}

func TestBuild_Defaults(t *testing.T) {
	spec, err := query.Build(url.Values{}, testResource())
	require.NoError(t, err)

	assert.Empty(t, spec.Filters)
	assert.Empty(t, spec.Search)
	assert.Equal(t, []query.SortField{{Field: "date", Desc: true}}, spec.Sort)
	assert.Equal(t, []string{"record_id", "title", "amount", "category", "date", "user_id"}, spec.Projection)
	assert.Equal(t, 1, spec.Page)
	assert.Equal(t, 100, spec.Limit)
	assert.Equal(t, 0, spec.Offset())
}

func TestBuild_EqualityFilter(t *testing.T) {
	params := url.Values{}
	params.Set("category", "food")

	spec, err := query.Build(params, testResource())
	require.NoError(t, err)

	require.Len(t, spec.Filters, 1)
	assert.Equal(t, query.Filter{Field: "category", Op: "=", Value: "food"}, spec.Filters[0])
}

func TestBuild_BracketOperators(t *testing.T) {
	tests := []struct {
		key        string
		expectedOp string
	}{
		{"amount[eq]", "="},
		{"amount[gte]", ">="},
		{"amount[gt]", ">"},
		{"amount[lte]", "<="},
		{"amount[lt]", "<"},
		{"amount[ne]", "<>"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			params := url.Values{}
			params.Set(tt.key, "100")

			spec, err := query.Build(params, testResource())
			require.NoError(t, err)

			require.Len(t, spec.Filters, 1)
			assert.Equal(t, "amount", spec.Filters[0].Field)
			assert.Equal(t, tt.expectedOp, spec.Filters[0].Op)
			assert.Equal(t, "100", spec.Filters[0].Value)
		})
	}
}

func TestBuild_UnknownOperatorRejected(t *testing.T) {
	params := url.Values{}
	params.Set("amount[regex]", ".*")

	_, err := query.Build(params, testResource())
	require.Error(t, err)
	assert.True(t, utils.IsValidationError(err))
}

func TestBuild_UnknownFilterFieldRejected(t *testing.T) {
	params := url.Values{}
	params.Set("password_hash", "x")

	_, err := query.Build(params, testResource())
	require.Error(t, err)
	assert.True(t, utils.IsValidationError(err))
}

func TestBuild_OwnerFilterSilentlyDropped(t *testing.T) {
	params := url.Values{}
	params.Set("user_id", "42")
	params.Set("user", "42")

	spec, err := query.Build(params, testResource())
	require.NoError(t, err)
	assert.Empty(t, spec.Filters)
}

func TestBuild_SortAscendingAndDescending(t *testing.T) {
	params := url.Values{}
	params.Set("sort", "-amount,title")

	spec, err := query.Build(params, testResource())
	require.NoError(t, err)

	require.Len(t, spec.Sort, 2)
	assert.Equal(t, query.SortField{Field: "amount", Desc: true}, spec.Sort[0])
	assert.Equal(t, query.SortField{Field: "title", Desc: false}, spec.Sort[1])
}

func TestBuild_SortUnknownFieldRejected(t *testing.T) {
	params := url.Values{}
	params.Set("sort", "salt")

	_, err := query.Build(params, testResource())
	require.Error(t, err)
	assert.True(t, utils.IsValidationError(err))
}

func TestBuild_FieldProjection(t *testing.T) {
	params := url.Values{}
	params.Set("fields", "title,amount")

	spec, err := query.Build(params, testResource())
	require.NoError(t, err)
	assert.Equal(t, []string{"title", "amount"}, spec.Projection)
}

func TestBuild_ProjectionUnknownFieldRejected(t *testing.T) {
	params := url.Values{}
	params.Set("fields", "password_hash")

	_, err := query.Build(params, testResource())
	require.Error(t, err)
	assert.True(t, utils.IsValidationError(err))
}

func TestBuild_Pagination(t *testing.T) {
	params := url.Values{}
	params.Set("page", "2")
	params.Set("limit", "10")

	spec, err := query.Build(params, testResource())
	require.NoError(t, err)

	assert.Equal(t, 2, spec.Page)
	assert.Equal(t, 10, spec.Limit)
	assert.Equal(t, 10, spec.Offset())
}

func TestBuild_PaginationClamping(t *testing.T) {
	params := url.Values{}
	params.Set("page", "-3")
	params.Set("limit", "0")

	spec, err := query.Build(params, testResource())
	require.NoError(t, err)

	assert.Equal(t, 1, spec.Page)
	assert.Equal(t, 100, spec.Limit)
}

func TestBuild_LimitCapped(t *testing.T) {
	params := url.Values{}
	params.Set("limit", "100000")

	spec, err := query.Build(params, testResource())
	require.NoError(t, err)
	assert.Equal(t, 500, spec.Limit)
}

func TestBuild_NonNumericPaginationRejected(t *testing.T) {
	for _, param := range []string{"page", "limit"} {
		t.Run(param, func(t *testing.T) {
			params := url.Values{}
			params.Set(param, "abc")

			_, err := query.Build(params, testResource())
			require.Error(t, err)
			assert.True(t, utils.IsValidationError(err))
		})
	}
}

func TestBuild_Search(t *testing.T) {
	params := url.Values{}
	params.Set("search", "groceries")

	spec, err := query.Build(params, testResource())
	require.NoError(t, err)
	assert.Equal(t, "groceries", spec.Search)
}

func TestBuild_SearchWithoutSearchField(t *testing.T) {
	res := testResource()
	res.SearchField = ""

	params := url.Values{}
	params.Set("search", "groceries")

	_, err := query.Build(params, res)
	require.Error(t, err)
	assert.True(t, utils.IsValidationError(err))
}

func TestBuild_MalformedBracketKey(t *testing.T) {
	params := url.Values{}
	params.Set("amount[gte", "100")

	_, err := query.Build(params, testResource())
	require.Error(t, err)
	assert.True(t, utils.IsValidationError(err))
}
