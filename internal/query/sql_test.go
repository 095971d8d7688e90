package query_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acgeoffrey/budget-tracker-api/internal/query"
)

func TestToSQL_ScopesToOwner(t *testing.T) {
	spec, err := query.Build(url.Values{}, testResource())
	require.NoError(t, err)

	sql, args := spec.ToSQL(testResource(), query.Scope{UserID: 42})

	assert.Contains(t, sql, "user_id = $1")
	assert.Contains(t, sql, "FROM records")
	assert.Contains(t, sql, "ORDER BY date DESC")
	assert.Contains(t, sql, "LIMIT $2 OFFSET $3")
	assert.Equal(t, []interface{}{int64(42), 100, 0}, args)
}

func TestToSQL_AdminSkipsOwnerScope(t *testing.T) {
	spec, err := query.Build(url.Values{}, testResource())
	require.NoError(t, err)

	sql, args := spec.ToSQL(testResource(), query.Scope{UserID: 42, Admin: true})

	assert.NotContains(t, sql, "user_id =")
	assert.Equal(t, []interface{}{100, 0}, args)
}

func TestToSQL_OwnerScopeSurvivesClientFilters(t *testing.T) {
	// A client supplying filters must never widen the scope past its own rows
	params := url.Values{}
	params.Set("amount[gte]", "100")
	params.Set("category", "food")

	spec, err := query.Build(params, testResource())
	require.NoError(t, err)

	sql, args := spec.ToSQL(testResource(), query.Scope{UserID: 7})

	assert.Contains(t, sql, "user_id = $1")
	assert.Equal(t, int64(7), args[0])
	assert.Contains(t, sql, "amount >= ")
	assert.Contains(t, sql, "category = ")
}

func TestToSQL_SearchClause(t *testing.T) {
	params := url.Values{}
	params.Set("search", "rent")

	spec, err := query.Build(params, testResource())
	require.NoError(t, err)

	sql, args := spec.ToSQL(testResource(), query.Scope{UserID: 1})

	assert.Contains(t, sql, "title ILIKE $2")
	assert.Contains(t, args, "%rent%")
}

func TestToSQL_Projection(t *testing.T) {
	params := url.Values{}
	params.Set("fields", "title,amount")

	spec, err := query.Build(params, testResource())
	require.NoError(t, err)

	sql, _ := spec.ToSQL(testResource(), query.Scope{UserID: 1})
	assert.Contains(t, sql, "SELECT title, amount FROM records")
}

func TestToSQL_PaginationOffset(t *testing.T) {
	params := url.Values{}
	params.Set("page", "3")
	params.Set("limit", "25")

	spec, err := query.Build(params, testResource())
	require.NoError(t, err)

	_, args := spec.ToSQL(testResource(), query.Scope{UserID: 1})

	// limit and offset travel last
	assert.Equal(t, 25, args[len(args)-2])
	assert.Equal(t, 50, args[len(args)-1])
}

func TestCountSQL_IgnoresPaginationAndSort(t *testing.T) {
	params := url.Values{}
	params.Set("page", "4")
	params.Set("limit", "10")
	params.Set("sort", "-amount")
	params.Set("category", "food")

	spec, err := query.Build(params, testResource())
	require.NoError(t, err)

	sql, args := spec.CountSQL(testResource(), query.Scope{UserID: 9})

	assert.Contains(t, sql, "SELECT COUNT(*) FROM records")
	assert.NotContains(t, sql, "ORDER BY")
	assert.NotContains(t, sql, "LIMIT")
	assert.Equal(t, []interface{}{int64(9), "food"}, args)
}
