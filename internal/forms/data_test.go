package forms

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDataUnmarshalKeepsOrder(t *testing.T) {
	t.Parallel()

	var d Data
	err := json.Unmarshal([]byte(`{"zeta":"z","alpha":1,"mid":null,"flag":true,"list":[1,"a"]}`), &d)
	require.NoError(t, err)

	require.True(t, d.Defined())
	require.Equal(t, 5, d.Len())

	names := make([]string, 0, d.Len())
	for _, f := range d.Fields() {
		names = append(names, f.Name)
	}
	require.Equal(t, []string{"zeta", "alpha", "mid", "flag", "list"}, names)

	require.True(t, d.Has("mid"))
	require.False(t, d.Has("missing"))

	text, ok := d.Text("alpha")
	require.True(t, ok)
	require.Equal(t, "1", text)

	text, _ = d.Text("mid")
	require.Equal(t, "", text)

	text, _ = d.Text("flag")
	require.Equal(t, "true", text)

	text, _ = d.Text("list")
	require.Equal(t, `[1,"a"]`, text)
}

func TestDataUnmarshalRejectsNonObject(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{`[]`, `"text"`, `42`} {
		var d Data
		err := d.UnmarshalJSON([]byte(raw))
		require.ErrorIs(t, err, ErrNotObject, raw)
	}

	var d Data
	require.Error(t, d.UnmarshalJSON([]byte(`{"a":`)))

	require.NoError(t, d.UnmarshalJSON([]byte(`null`)))
	require.False(t, d.Defined())
}

func TestDataInsideStruct(t *testing.T) {
	t.Parallel()

	var req struct {
		FormID string `json:"form_id"`
		Data   Data   `json:"data"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"form_id":"contact"}`), &req))
	require.False(t, req.Data.Defined())

	require.NoError(t, json.Unmarshal([]byte(`{"form_id":"contact","data":{}}`), &req))
	require.True(t, req.Data.Defined())
	require.Equal(t, 0, req.Data.Len())
}

func TestDataMarshalJSON(t *testing.T) {
	t.Parallel()

	d := NewData(
		Field{Name: "b", Value: "two"},
		Field{Name: "a", Value: float64(1)},
		Field{Name: "b", Value: "again"},
	)

	out, err := json.Marshal(d)
	require.NoError(t, err)
	require.JSONEq(t, `{"b":"again","a":1}`, string(out))
	require.Equal(t, `{"b":"again","a":1}`, string(out))
}

func TestDataKeepsSubmittedText(t *testing.T) {
	t.Parallel()

	var d Data
	require.NoError(t, json.Unmarshal([]byte(
		`{"phone": 12345678901234567890, "id": 9007199254740993, "price": 1.50, "meta": {"z": 1, "a": [2, "<x>"]}}`), &d))

	text, ok := d.Text("phone")
	require.True(t, ok)
	require.Equal(t, "12345678901234567890", text)

	text, _ = d.Text("id")
	require.Equal(t, "9007199254740993", text)

	text, _ = d.Text("price")
	require.Equal(t, "1.50", text)

	text, _ = d.Text("meta")
	require.Equal(t, `{"z":1,"a":[2,"<x>"]}`, text)

	raw, ok := d.Raw("meta")
	require.True(t, ok)
	require.Equal(t, `{"z":1,"a":[2,"<x>"]}`, string(raw))

	_, ok = d.Raw("missing")
	require.False(t, ok)

	out, err := d.MarshalJSON()
	require.NoError(t, err)
	require.Equal(t,
		`{"phone":12345678901234567890,"id":9007199254740993,"price":1.50,"meta":{"z":1,"a":[2,"<x>"]}}`,
		string(out))
}

func TestDataBuiltValuesNotHTMLEscaped(t *testing.T) {
	t.Parallel()

	d := NewData(
		Field{Name: "note", Value: "<b>&</b>"},
		Field{Name: "tags", Value: []string{"<a>"}},
	)

	out, err := d.MarshalJSON()
	require.NoError(t, err)
	require.Equal(t, `{"note":"<b>&</b>","tags":["<a>"]}`, string(out))

	text, _ := d.Text("tags")
	require.Equal(t, `["<a>"]`, text)
}
