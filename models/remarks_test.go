package models

import (
	"encoding/json"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemarks_UnmarshalText(t *testing.T) {
	var r Remarks
	require.NoError(t, json.Unmarshal([]byte(`"paid early"`), &r))
	assert.False(t, r.IsBreakdown())
	assert.Equal(t, "paid early", r.Text)

	out, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `"paid early"`, string(out))
}

func TestRemarks_UnmarshalNull(t *testing.T) {
	r := PlainText("something")
	require.NoError(t, json.Unmarshal([]byte(`null`), &r))
	assert.True(t, r.IsZero())

	out, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, "null", string(out))
}

func TestRemarks_BreakdownList(t *testing.T) {
	in := `{"components":[
		{"name":"Basic","value":40000,"type":"earning"},
		{"name":"HRA","value":10000,"type":"earning"},
		{"name":"PF","value":5000,"type":"deduction"}
	]}`

	var r Remarks
	require.NoError(t, json.Unmarshal([]byte(in), &r))
	require.True(t, r.IsBreakdown())
	assert.Len(t, r.Breakdown.Components, 3)
	assert.Equal(t, 50000.0, r.Breakdown.TotalEarnings)
	assert.Equal(t, 5000.0, r.Breakdown.TotalDeductions)
	assert.Equal(t, 45000.0, r.Breakdown.Net)
}

func TestRemarks_BreakdownKeyed(t *testing.T) {
	in := `{"components":{
		"b":{"name":"Tax","value":100,"type":"deduction"},
		"a":{"name":"Basic","value":1000,"type":"earning"}
	},"totalEarnings":1000,"totalDeductions":100,"net":900}`

	var r Remarks
	require.NoError(t, json.Unmarshal([]byte(in), &r))
	require.True(t, r.IsBreakdown())
	require.Len(t, r.Breakdown.Components, 2)
	assert.Equal(t, "Basic", r.Breakdown.Components[0].Name)
	assert.Equal(t, "Tax", r.Breakdown.Components[1].Name)
	assert.Equal(t, 900.0, r.Breakdown.Net)
}

func TestRemarks_Invalid(t *testing.T) {
	var r Remarks
	assert.Error(t, json.Unmarshal([]byte(`42`), &r))
}

func TestRemarks_ObjectFallsBackToText(t *testing.T) {
	for _, raw := range []string{`{"note":"paid early"}`, `{"components":"x"}`} {
		var r Remarks
		require.NoError(t, json.Unmarshal([]byte(raw), &r), raw)
		assert.False(t, r.IsBreakdown(), raw)
		assert.Equal(t, raw, r.Text)

		out, err := json.Marshal(r)
		require.NoError(t, err)
		assert.JSONEq(t, strconv.Quote(raw), string(out))

		v, err := r.Value()
		require.NoError(t, err)
		var back Remarks
		require.NoError(t, back.Scan(v))
		assert.Equal(t, r, back)
	}
}

func TestParseRemarks(t *testing.T) {
	assert.Equal(t, "plain", ParseRemarks("plain").Text)
	assert.Equal(t, "{not json", ParseRemarks("{not json").Text)

	r := ParseRemarks(`{"components":[{"name":"Basic","value":10,"type":"earning"}]}`)
	require.True(t, r.IsBreakdown())
	assert.Equal(t, 10.0, r.Breakdown.Net)
}

func TestRemarks_ValueScanRoundTrip(t *testing.T) {
	orig := BreakdownRemarks(Breakdown{Components: []Component{
		{Name: "Basic", Value: 300, Type: ComponentEarning},
		{Name: "Loan", Value: 50, Type: ComponentDeduction},
	}})
	assert.Equal(t, 250.0, orig.Breakdown.Net)

	v, err := orig.Value()
	require.NoError(t, err)

	var got Remarks
	require.NoError(t, got.Scan(v))
	assert.Equal(t, orig, got)

	v, err = Remarks{}.Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	require.NoError(t, got.Scan([]byte("text")))
	assert.Equal(t, PlainText("text"), got)
	require.NoError(t, got.Scan(nil))
	assert.True(t, got.IsZero())
	assert.Error(t, got.Scan(1))
}
