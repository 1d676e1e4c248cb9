package llm

import (
	"testing"

	"github.com/stretchr/testify/require"

	pkgerrors "github.com/redreserve/redreserve-backend/pkg/errors"
)

func TestStripJSONFence(t *testing.T) {
	require.Equal(t, `{"a":1}`, StripJSONFence("```json\n{\"a\":1}\n```"))
	require.Equal(t, `{"a":1}`, StripJSONFence("```JSON {\"a\":1}```"))
	require.Equal(t, `{"a":1}`, StripJSONFence("```\n{\"a\":1}\n```"))
	require.Equal(t, `{"a":1}`, StripJSONFence(`  {"a":1} `))
}

func TestDecodeJSON(t *testing.T) {
	var out struct {
		BloodGroup string `json:"bloodGroup"`
	}
	require.NoError(t, DecodeJSON("```json\n{\"bloodGroup\":\"O+\"}\n```", &out))
	require.Equal(t, "O+", out.BloodGroup)

	for _, raw := range []string{"", "not json", "```json\n```"} {
		err := DecodeJSON(raw, &out)
		typed := pkgerrors.As(err)
		require.NotNil(t, typed, "raw=%q", raw)
		require.Equal(t, pkgerrors.CodeInvalidOutput, typed.Code())
		require.Equal(t, InvalidJSONMessage, typed.Message())
	}
}
