package casing

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCamelCase(t *testing.T) {
	tests := map[string]string{
		"fk_customer":        "fkCustomer",
		"pk_person":          "pkPerson",
		"order_date":         "orderDate",
		"createdAt":          "createdAt",
		"total_orders_value": "totalOrdersValue",
		"product-category":   "productCategory",
		"Foo Bar":            "fooBar",
		"__FOO_BAR__":        "fooBar",
		"XMLHttpRequest":     "xmlHttpRequest",
		"address2":           "address2",
		"line_2_total":       "line2Total",
		"ID":                 "id",
		"user_ID":            "userId",
		"":                   "",
		"___":                "",
	}
	for in, want := range tests {
		assert.Equal(t, want, CamelCase(in), "CamelCase(%q)", in)
	}
}

func TestKeysRecursesIntoObjectsAndArrays(t *testing.T) {
	in := map[string]any{
		"personal_info": map[string]any{
			"pk_person": json.Number("7"),
			"address": []any{
				map[string]any{"street_name": "Rua A"},
				"as_is_string",
			},
		},
		"count_orders": json.Number("3"),
	}

	out, ok := Keys(in).(map[string]any)
	require.True(t, ok)
	info := out["personalInfo"].(map[string]any)
	assert.Equal(t, json.Number("7"), info["pkPerson"])

	addresses := info["address"].([]any)
	require.Len(t, addresses, 2)
	assert.Equal(t, "Rua A", addresses[0].(map[string]any)["streetName"])
	assert.Equal(t, "as_is_string", addresses[1], "string values must not be rewritten")
	assert.Equal(t, json.Number("3"), out["countOrders"])
}

func TestKeysLeavesInputUntouched(t *testing.T) {
	in := map[string]any{"fk_address": 1}
	_ = Keys(in)
	_, stillSnake := in["fk_address"]
	assert.True(t, stillSnake)
}

func TestNormalize(t *testing.T) {
	out, err := Normalize([]byte(`{"data":[{"unit_price":"1000.50","stock_qty":12345678901234567890}]}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":[{"unitPrice":"1000.50","stockQty":12345678901234567890}]}`, string(out))

	_, err = Normalize([]byte(`{"data":`))
	assert.Error(t, err)

	empty, err := Normalize(nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
