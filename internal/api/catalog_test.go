package api_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

func TestCatalog(t *testing.T) {
	a := setupAPI(t)
	testhelpers.CreateIngredient(t, a.db, "Salt", "g")
	testhelpers.CreateIngredient(t, a.db, "sugar", "g")
	testhelpers.CreateIngredient(t, a.db, "pepper", "g")
	tag := testhelpers.CreateTag(t, a.db, "breakfast", "#E26C2D")

	resp := a.do(http.MethodGet, "/api/ingredients?name=s", "", nil)
	assertStatus(t, http.StatusOK, resp)
	var ingredients []map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &ingredients))
	require.Len(t, ingredients, 2)
	assert.Equal(t, "Salt", ingredients[0]["name"])
	assert.Equal(t, "sugar", ingredients[1]["name"])

	resp = a.do(http.MethodGet, "/api/tags/"+tag.ID.String(), "", nil)
	assertStatus(t, http.StatusOK, resp)
	assert.Equal(t, map[string]interface{}{
		"id": tag.ID.String(), "name": "breakfast", "color": "#E26C2D", "slug": "breakfast",
	}, decode(t, resp))

	assertStatus(t, http.StatusNotFound, a.do(http.MethodGet, "/api/tags/"+uuid.NewString(), "", nil))
	assertStatus(t, http.StatusNotFound, a.do(http.MethodGet, "/api/ingredients/42", "", nil))
}
